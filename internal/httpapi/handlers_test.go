package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starz-engine/internal/config"
	"starz-engine/internal/events"
	"starz-engine/internal/intake"
	"starz-engine/internal/store"
)

func testDeps(t *testing.T) Deps {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "starz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	var cfg config.Config
	cfg.App.Port = 5599
	cfg.Polling.IntakeSeconds = 60
	cfg.Polling.CleanupHours = 24
	cfg.BusinessHours.Timezone = "America/New_York"
	cfg.BusinessHours.StartHour = 9
	cfg.BusinessHours.EndHour = 18
	cfg.Scoring.ConfidenceFloor = 75
	cfg.Scoring.StandardBudget = 5000
	cfg.Scoring.HighBudget = 10000
	cfg.Scoring.HighIntentSources = []string{"bark"}

	cfg, vr := config.NormalizeAndValidate(cfg)
	require.True(t, vr.OK(), "test config must validate: %v", vr.Errors)

	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)

	intakeStatus := &atomic.Value{}
	intakeStatus.Store(intake.Status{})

	return Deps{
		DB:           db.Pool,
		Hub:          events.NewHub(),
		CfgVal:       cfgVal,
		IntakeStatus: intakeStatus,
		DeleteLead: func(ctx context.Context, db *sql.DB, id int64) error {
			return store.DeleteLead(ctx, db, id)
		},
		RunIntake: func(db *sql.DB, cfg config.Config, onNewLead func(id int64, company string)) (int, error) {
			return 0, nil
		},
	}
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateGetDeleteLead(t *testing.T) {
	mux := NewMux(testDeps(t))

	rec := doJSON(t, mux, http.MethodPost, "/leads", `{
		"name": "Joe",
		"company": "Joe's HVAC Repair",
		"email": "joe@example.com",
		"source": "bark",
		"budget": 12000
	}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	rec = doJSON(t, mux, http.MethodGet, "/leads", "")
	require.Equal(t, 200, rec.Code)
	var listed []store.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Joe's HVAC Repair", listed[0].Company)
	// High-budget bark lead scores hot at intake.
	assert.Equal(t, 95, listed[0].Score)
	assert.Contains(t, listed[0].Tags, "high-budget-strategy")

	rec = doJSON(t, mux, http.MethodDelete, "/leads/1", "")
	require.Equal(t, 200, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/leads/1", "")
	assert.Equal(t, 404, rec.Code)
}

func TestCreateLeadRejectsEmpty(t *testing.T) {
	mux := NewMux(testDeps(t))

	rec := doJSON(t, mux, http.MethodPost, "/leads", `{"email": "x@y.com"}`)
	assert.Equal(t, 400, rec.Code)

	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "invalid_lead", e.Error.Code)
}

func TestRecommendationsAdHoc(t *testing.T) {
	mux := NewMux(testDeps(t))

	// Tuesday 2 PM Eastern, business hours.
	rec := doJSON(t, mux, http.MethodPost, "/api/recommendations", `{
		"lead": {"company": "Joe's HVAC Repair", "source": "bark", "budget": 12000},
		"action": "calling",
		"now": "2026-03-03T14:00:00-05:00"
	}`)
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var resp recommendResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ids := make([]string, 0, len(resp.Recommendations))
	for _, c := range resp.Recommendations {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{
		"new-lead-urgency",
		"high-budget-strategy",
		"bark-lead-strategy",
		"hvac-industry-strategy",
		"calling-best-practices",
	}, ids)
}

func TestRecommendationsForStoredLead(t *testing.T) {
	mux := NewMux(testDeps(t))

	rec := doJSON(t, mux, http.MethodPost, "/leads", `{
		"company": "Joe's HVAC Repair",
		"source": "bark",
		"budget": 12000
	}`)
	require.Equal(t, 200, rec.Code)

	// Saturday 11 PM Eastern: off hours warning should fire for calling.
	rec = doJSON(t, mux, http.MethodGet, "/leads/1/recommendations?action=calling&now=2026-03-07T23:00:00-05:00", "")
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var resp recommendResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	ids := make([]string, 0, len(resp.Recommendations))
	for _, c := range resp.Recommendations {
		ids = append(ids, c.ID)
	}
	assert.Contains(t, ids, "off-hours-calling-warning")
}

func TestRecommendationsBadNow(t *testing.T) {
	mux := NewMux(testDeps(t))

	rec := doJSON(t, mux, http.MethodPost, "/api/recommendations", `{
		"lead": {"company": "x"},
		"now": "yesterday"
	}`)
	assert.Equal(t, 400, rec.Code)
}

func TestConfigGetAndValidate(t *testing.T) {
	mux := NewMux(testDeps(t))

	rec := doJSON(t, mux, http.MethodGet, "/config", "")
	require.Equal(t, 200, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/config/validate", "")
	require.Equal(t, 200, rec.Code)
	var vr config.Validation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vr))
	assert.Empty(t, vr.Errors)
}

func TestIntakeStatusAndRun(t *testing.T) {
	d := testDeps(t)
	ran := make(chan struct{})
	d.RunIntake = func(db *sql.DB, cfg config.Config, onNewLead func(id int64, company string)) (int, error) {
		close(ran)
		return 3, nil
	}
	mux := NewMux(d)

	rec := doJSON(t, mux, http.MethodGet, "/intake/status", "")
	require.Equal(t, 200, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/intake/run", "")
	require.Equal(t, 200, rec.Code)
	<-ran
}

func TestMethodNotAllowed(t *testing.T) {
	mux := NewMux(testDeps(t))

	rec := doJSON(t, mux, http.MethodPut, "/leads", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	mux := NewMux(testDeps(t))
	h := Chain(mux, RequestID, Recover)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
