package intake

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"starz-engine/internal/config"
	"starz-engine/internal/domain"
	"starz-engine/internal/presence"
	"starz-engine/internal/recommend"
	"starz-engine/internal/store"
)

// ProcessLeads filters, scores and stores a batch of captured leads.
// Each newly inserted lead gets its recommendation run at intake time; the
// top confidence becomes the stored heat score and the fired rule ids the
// tags. researcher may be nil (presence lookups disabled).
func ProcessLeads(ctx context.Context, db *sql.DB, cfg config.Config, researcher *presence.Researcher, leads []domain.Lead, onNewLead func(id int64, company string)) (added int) {
	eng := recommend.NewFromConfig(cfg)
	now := time.Now().UTC()

	for _, lead := range leads {
		keep, why := ShouldKeepLead(lead)
		if !keep {
			log.Printf("[intake:%s] skipped (%s) company=%q email=%q", lead.Source, why, lead.Company, lead.Email)
			continue
		}

		scored := lead
		// Presence fallback: when the lead text carries no industry signal,
		// fold the company's website title into the notes before scoring.
		if researcher != nil && eng.Profile.InferIndustry(lead.Company+" "+lead.Notes) == recommend.IndustryGeneral {
			rep, err := researcher.Research(ctx, lead.Company)
			if err != nil {
				log.Printf("[intake:%s] presence lookup err company=%q err=%v", lead.Source, lead.Company, err)
			} else if rep.SiteTitle != "" {
				scored.Notes = strings.TrimSpace(scored.Notes + " " + rep.SiteTitle)
			}
		}

		recs := eng.Generate(scored, recommend.ActionNone, now)
		score := 0
		tags := make([]string, 0, len(recs))
		for _, c := range recs {
			tags = append(tags, c.ID)
			if c.Confidence > score {
				score = c.Confidence
			}
		}

		id, ok, err := store.InsertLeadIfNew(ctx, db, store.LeadInsert{
			Lead:       lead,
			Score:      score,
			Tags:       tags,
			ReceivedAt: now,
		})
		if err != nil {
			log.Printf("[intake:%s] insert error: %v company=%q source_id=%q", lead.Source, err, lead.Company, lead.SourceID)
			continue
		}
		if !ok {
			continue
		}

		added++
		if onNewLead != nil {
			onNewLead(id, lead.Company)
		}
	}

	return added
}
