package poll

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starz-engine/internal/config"
	"starz-engine/internal/domain"
	"starz-engine/internal/intake"
	"starz-engine/internal/store"
)

type fakeFetcher struct {
	name     string
	leads    []domain.Lead
	fetchErr error
	db       *sql.DB

	mu             sync.Mutex
	finalized      bool
	finalizeCtxErr error
	storedAtFinal  int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context) (intake.Result, error) {
	if f.fetchErr != nil {
		return intake.Result{}, f.fetchErr
	}
	return intake.Result{
		Source: f.name,
		Leads:  f.leads,
		Finalize: func(ctx context.Context) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.finalized = true
			f.finalizeCtxErr = ctx.Err()
			rows, err := store.ListLeads(ctx, f.db, store.ListLeadsOpts{Limit: 100})
			if err != nil {
				return err
			}
			f.storedAtFinal = len(rows)
			return nil
		},
	}, nil
}

func openPollDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "starz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))
	return db
}

func pollConfig() config.Config {
	var cfg config.Config
	cfg.BusinessHours.Timezone = "America/New_York"
	return cfg
}

// The finalize contract: a source is finalized only after its leads are in
// the store, and with a context that has not been torn down behind it.
// Sources keeping a connection open between fetch and finalize depend on
// both halves.
func TestRunFetchersFinalizesAfterProcessingWithLiveContext(t *testing.T) {
	db := openPollDB(t)

	f := &fakeFetcher{
		name: "fake",
		db:   db.Pool,
		leads: []domain.Lead{{
			Name:      "Joe",
			Company:   "Joe's HVAC Repair",
			Email:     "joe@example.com",
			Source:    "bark",
			CreatedAt: time.Now().UTC(),
			SourceID:  "fake:1",
		}},
	}

	added, err := runFetchers(context.Background(), db.Pool, pollConfig(), nil, []intake.Fetcher{f}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	require.True(t, f.finalized, "finalize must run")
	assert.NoError(t, f.finalizeCtxErr, "finalize context must still be live")
	assert.Equal(t, 1, f.storedAtFinal, "lead must be stored before finalize")
}

func TestRunFetchersBrokenSourceDoesNotBlockOthers(t *testing.T) {
	db := openPollDB(t)

	broken := &fakeFetcher{name: "broken", db: db.Pool, fetchErr: errors.New("dial failed")}
	good := &fakeFetcher{
		name: "good",
		db:   db.Pool,
		leads: []domain.Lead{{
			Name:     "Ana",
			Company:  "Ana's Diner",
			Email:    "ana@example.com",
			SourceID: "fake:2",
		}},
	}

	added, err := runFetchers(context.Background(), db.Pool, pollConfig(), nil, []intake.Fetcher{broken, good}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.False(t, broken.finalized)
	assert.True(t, good.finalized)
}

func TestRunFetchersNoFetchers(t *testing.T) {
	db := openPollDB(t)
	added, err := runFetchers(context.Background(), db.Pool, pollConfig(), nil, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestPollOnceEmailDisabled(t *testing.T) {
	db := openPollDB(t)
	added, err := PollOnce(db.Pool, pollConfig(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, added)
}
