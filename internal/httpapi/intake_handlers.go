package httpapi

import (
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"starz-engine/internal/config"
	"starz-engine/internal/events"
	"starz-engine/internal/intake"
)

type IntakeHandler struct {
	DB           *sql.DB
	CfgVal       *atomic.Value // config.Config
	IntakeStatus *atomic.Value // intake.Status
	Hub          *events.Hub
	RunIntake    func(db *sql.DB, cfg config.Config, onNewLead func(id int64, company string)) (added int, err error)
}

func (h IntakeHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.IntakeStatus.Load().(intake.Status)
	writeJSON(w, st)
}

func (h IntakeHandler) Run(w http.ResponseWriter, r *http.Request) {
	st := h.IntakeStatus.Load().(intake.Status)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.IntakeStatus.Store(intake.Status{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastError: "",
		LastAdded: 0,
		LastOkAt:  st.LastOkAt,
	})

	reqID := RequestIDFrom(r.Context())
	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		h.Hub.Publish(events.New(reqID, events.TypeIntakeStarted, nil))
		added, err := h.RunIntake(h.DB, cfg, func(id int64, company string) {
			h.Hub.Publish(events.New(reqID, events.TypeLeadCreated, map[string]any{"id": id, "company": company}))
		})

		now := time.Now().Format(time.RFC3339)
		next := h.IntakeStatus.Load().(intake.Status)
		next.Running = false
		next.LastRunAt = now
		next.LastAdded = added
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.IntakeStatus.Store(next)
		h.Hub.Publish(events.New(reqID, events.TypeIntakeDone, map[string]any{"added": added}))
	}()

	writeJSON(w, map[string]any{"ok": true})
}
