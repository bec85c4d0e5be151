package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"starz-engine/internal/config"
	"starz-engine/internal/domain"
	"starz-engine/internal/events"
	"starz-engine/internal/recommend"
	"starz-engine/internal/store"
)

type LeadsHandler struct {
	DB         *sql.DB
	Hub        *events.Hub
	CfgVal     *atomic.Value // stores config.Config
	DeleteLead func(ctx context.Context, db *sql.DB, id int64) error
}

func (h LeadsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sort := q.Get("sort")
	window := q.Get("window")

	leads, err := store.ListLeads(r.Context(), h.DB, store.ListLeadsOpts{
		Sort: sort, Window: window, Limit: 50000,
	})
	if err != nil {
		WriteError(w, r, 500, "list_failed", err.Error())
		return
	}
	writeJSON(w, leads)
}

type createLeadReq struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
	Source  string `json:"source"`
	Budget  int    `json:"budget"`
}

// Create is the manual capture path. The lead is scored exactly like an
// intake lead so the list view shows a heat score either way.
func (h LeadsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, 400, "invalid_json", err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Company) == "" {
		WriteError(w, r, 400, "invalid_lead", "lead needs a name or a company")
		return
	}

	now := time.Now().UTC()
	lead := domain.Lead{
		Name:      strings.TrimSpace(req.Name),
		Company:   strings.TrimSpace(req.Company),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Notes:     strings.TrimSpace(req.Notes),
		Source:    strings.ToLower(strings.TrimSpace(req.Source)),
		Budget:    req.Budget,
		CreatedAt: now,
	}
	if lead.Source == "" {
		lead.Source = "manual"
	}

	cfg := h.CfgVal.Load().(config.Config)
	recs := recommend.NewFromConfig(cfg).Generate(lead, recommend.ActionNone, now)
	score := 0
	tags := make([]string, 0, len(recs))
	for _, c := range recs {
		tags = append(tags, c.ID)
		if c.Confidence > score {
			score = c.Confidence
		}
	}

	id, _, err := store.InsertLeadIfNew(r.Context(), h.DB, store.LeadInsert{
		Lead: lead, Score: score, Tags: tags, ReceivedAt: now,
	})
	if err != nil {
		WriteError(w, r, 500, "insert_failed", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.New(reqID, events.TypeLeadCreated, map[string]any{"id": id, "company": lead.Company}))

	got, err := store.GetLead(r.Context(), h.DB, id)
	if err != nil {
		WriteError(w, r, 500, "lookup_failed", err.Error())
		return
	}
	writeJSON(w, got)
}

// GetByPath serves /leads/{id} and /leads/{id}/recommendations.
func (h LeadsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/leads/")
	if idStr, ok := strings.CutSuffix(rest, "/recommendations"); ok {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil || id <= 0 {
			WriteError(w, r, 400, "invalid_id", "invalid id")
			return
		}
		recommendForLead(w, r, h.DB, h.CfgVal, id)
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, 400, "invalid_id", "invalid id")
		return
	}
	lead, err := store.GetLead(r.Context(), h.DB, id)
	if err != nil {
		if err == sql.ErrNoRows {
			WriteError(w, r, 404, "not_found", "lead not found")
			return
		}
		WriteError(w, r, 500, "lookup_failed", err.Error())
		return
	}
	writeJSON(w, lead)
}

func (h LeadsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/leads/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, r, 400, "invalid_id", "invalid id")
		return
	}

	if err := h.DeleteLead(r.Context(), h.DB, id); err != nil {
		WriteError(w, r, 500, "delete_failed", err.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.New(reqID, events.TypeLeadDeleted, map[string]any{"id": id}))
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
