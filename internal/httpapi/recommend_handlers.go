package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"starz-engine/internal/config"
	"starz-engine/internal/domain"
	"starz-engine/internal/recommend"
	"starz-engine/internal/store"
)

type RecommendHandler struct {
	DB     *sql.DB
	CfgVal *atomic.Value // stores config.Config
}

type recommendReq struct {
	Lead   domain.Lead `json:"lead"`
	Action string      `json:"action"`
	// Now overrides the clock (RFC3339). Empty means time.Now.
	Now string `json:"now"`
}

type recommendResp struct {
	Action          string                `json:"action"`
	GeneratedAt     string                `json:"generated_at"`
	Recommendations []recommend.Candidate `json:"recommendations"`
}

// Generate scores an ad-hoc lead payload without touching the store.
func (h RecommendHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req recommendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, 400, "invalid_json", err.Error())
		return
	}

	now := time.Now()
	if req.Now != "" {
		t, err := time.Parse(time.RFC3339, req.Now)
		if err != nil {
			WriteError(w, r, 400, "invalid_now", "now must be RFC3339")
			return
		}
		now = t
	}

	cfg := h.CfgVal.Load().(config.Config)
	action := recommend.Action(strings.ToLower(strings.TrimSpace(req.Action)))
	recs := recommend.NewFromConfig(cfg).Generate(req.Lead, action, now)

	writeJSON(w, recommendResp{
		Action:          string(action),
		GeneratedAt:     now.UTC().Format(time.RFC3339),
		Recommendations: recs,
	})
}

// recommendForLead loads a stored lead and scores it fresh. Shared with the
// /leads/{id}/recommendations route.
func recommendForLead(w http.ResponseWriter, r *http.Request, db *sql.DB, cfgVal *atomic.Value, id int64) {
	lead, err := store.GetLead(r.Context(), db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			WriteError(w, r, 404, "not_found", "lead not found")
			return
		}
		WriteError(w, r, 500, "lookup_failed", err.Error())
		return
	}

	now := time.Now()
	q := r.URL.Query()
	if v := q.Get("now"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			WriteError(w, r, 400, "invalid_now", "now must be RFC3339")
			return
		}
		now = t
	}

	cfg := cfgVal.Load().(config.Config)
	action := recommend.Action(strings.ToLower(strings.TrimSpace(q.Get("action"))))
	recs := recommend.NewFromConfig(cfg).Generate(lead, action, now)

	writeJSON(w, recommendResp{
		Action:          string(action),
		GeneratedAt:     now.UTC().Format(time.RFC3339),
		Recommendations: recs,
	})
}
