package poll

import (
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"starz-engine/internal/config"
	"starz-engine/internal/events"
	"starz-engine/internal/intake"
	"starz-engine/internal/presence"
)

// StartPoller drives the intake pipeline on the configured interval and
// keeps the latest status in intakeStatus for the API to report.
func StartPoller(db *sql.DB, cfgVal *atomic.Value, intakeStatus *atomic.Value, hub *events.Hub) {
	go func() {
		researcher := presence.NewResearcher(db)

		for {
			cfgAny := cfgVal.Load()
			if cfgAny == nil {
				time.Sleep(5 * time.Second)
				continue
			}
			cfg := cfgAny.(config.Config)

			interval := time.Duration(cfg.Polling.IntakeSeconds) * time.Second
			if interval <= 0 {
				interval = 60 * time.Second
			}
			time.Sleep(interval)

			if !cfg.Intake.Email.Enabled {
				continue
			}

			st := loadStatus(intakeStatus)
			st.Running = true
			st.LastRunAt = time.Now().Format(time.RFC3339)
			intakeStatus.Store(st)

			added, err := PollOnce(db, cfg, researcher, func(id int64, company string) {
				hub.Publish(events.New("", events.TypeLeadCreated, map[string]any{
					"id":      id,
					"company": company,
				}))
			})

			st = loadStatus(intakeStatus)
			st.Running = false
			st.LastAdded = added

			if err != nil {
				st.LastError = err.Error()
				log.Printf("[poll] error: %v", err)
			} else {
				st.LastError = ""
				st.LastOkAt = time.Now().Format(time.RFC3339)
				log.Printf("[poll] ok added=%d", added)
			}
			intakeStatus.Store(st)
		}
	}()
}

func loadStatus(v *atomic.Value) intake.Status {
	if st, ok := v.Load().(intake.Status); ok {
		return st
	}
	return intake.Status{}
}
