// Package recommend derives ranked coaching recommendations for a CRM lead.
//
// The pipeline is a pure, single pass: extract facts from the raw lead,
// run every rule in a fixed catalog, then filter and rank what fired.
// Time is always an explicit parameter, so for a fixed (lead, action, now)
// the output is identical across calls and safe for concurrent use.
package recommend

import (
	"sort"
	"time"

	"starz-engine/internal/config"
	"starz-engine/internal/domain"
)

type Engine struct {
	Profile Profile
}

func New(p Profile) Engine {
	return Engine{Profile: p}
}

func NewFromConfig(cfg config.Config) Engine {
	return Engine{Profile: ProfileFromConfig(cfg)}
}

// Generate runs extract -> evaluate -> rank for one lead.
func (e Engine) Generate(lead domain.Lead, action Action, now time.Time) []Candidate {
	facts := e.Profile.ExtractFacts(lead, action, now)
	return e.Rank(e.Evaluate(facts))
}

// Evaluate runs every catalog rule against the facts and returns the raw
// candidates in catalog order, unfiltered. Confidence is clamped to [0,100].
func (e Engine) Evaluate(f FactSet) []Candidate {
	var out []Candidate
	for _, rule := range e.Profile.catalog() {
		c := rule(f)
		if c == nil {
			continue
		}
		if c.Confidence < 0 {
			c.Confidence = 0
		}
		if c.Confidence > 100 {
			c.Confidence = 100
		}
		out = append(out, *c)
	}
	return out
}

// Rank drops candidates at or below the confidence floor and orders the rest
// by priority, high first. The sort is stable so catalog order breaks ties
// within a priority band; no truncation happens here.
func (e Engine) Rank(cands []Candidate) []Candidate {
	kept := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Confidence > e.Profile.ConfidenceFloor {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return priorityRank(kept[i].Priority) > priorityRank(kept[j].Priority)
	})
	return kept
}
