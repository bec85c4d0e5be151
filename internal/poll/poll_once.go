package poll

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"starz-engine/internal/config"
	"starz-engine/internal/intake"
	"starz-engine/internal/intake/email"
	"starz-engine/internal/presence"
)

// fetcherSpan bounds one fetcher's fetch + process + finalize run.
const fetcherSpan = 5 * time.Minute

// PollOnce runs every enabled fetcher concurrently, processes the captured
// leads, then finalizes each source (e.g. marks emails seen). Fetcher
// failures are logged and skipped; one broken source never blocks the rest.
func PollOnce(db *sql.DB, cfg config.Config, researcher *presence.Researcher, onNewLead func(id int64, company string)) (added int, err error) {
	var fetchers []intake.Fetcher
	if cfg.Intake.Email.Enabled {
		fetchers = append(fetchers, &email.Fetcher{Cfg: cfg})
	}
	return runFetchers(context.Background(), db, cfg, researcher, fetchers, onNewLead)
}

// runFetchers drives each fetcher in its own goroutine and keeps that
// fetcher's context alive until Finalize returns. Sources that hold a live
// connection across the batch (IMAP) rely on this: marking messages
// consumed happens strictly after their leads hit the store, on a
// connection that is still open.
func runFetchers(parent context.Context, db *sql.DB, cfg config.Config, researcher *presence.Researcher, fetchers []intake.Fetcher, onNewLead func(id int64, company string)) (added int, err error) {
	if len(fetchers) == 0 {
		return 0, nil
	}

	var mu sync.Mutex
	var g errgroup.Group

	for _, f := range fetchers {
		f := f
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(parent, fetcherSpan)
			defer cancel()

			log.Printf("[%s] running...", f.Name())
			res, ferr := f.Fetch(fctx)
			if ferr != nil {
				log.Printf("[intake:%s] error: %v", f.Name(), ferr)
				return nil
			}

			log.Printf("[poll] source=%s leads=%d", res.Source, len(res.Leads))

			if len(res.Leads) > 0 {
				// Fetches overlap; processing doesn't. InsertLeadIfNew
				// reads SELECT changes() after its insert and must not
				// interleave with another source's writes.
				mu.Lock()
				added += intake.ProcessLeads(fctx, db, cfg, researcher, res.Leads, onNewLead)
				mu.Unlock()
			}

			if res.Finalize != nil {
				if ferr := res.Finalize(fctx); ferr != nil {
					log.Printf("[poll] finalize source=%s err=%v", res.Source, ferr)
				}
			}
			return nil
		})
	}

	_ = g.Wait()
	return added, nil
}
