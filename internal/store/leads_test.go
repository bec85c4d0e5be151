package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starz-engine/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "starz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestInsertLeadDedupesOnSourceID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	in := LeadInsert{
		Lead: domain.Lead{
			Company:  "Joe's HVAC Repair",
			Source:   "bark",
			Budget:   12000,
			SourceID: "email:42",
		},
		Score:      95,
		Tags:       []string{"new-lead-urgency", "high-budget-strategy"},
		ReceivedAt: time.Now().UTC(),
	}

	id, added, err := InsertLeadIfNew(ctx, db.Pool, in)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Positive(t, id)

	_, added, err = InsertLeadIfNew(ctx, db.Pool, in)
	require.NoError(t, err)
	assert.False(t, added, "same source_id must not insert twice")

	// No source_id means no dedupe key: both inserts land.
	manual := in
	manual.Lead.SourceID = ""
	_, added, err = InsertLeadIfNew(ctx, db.Pool, manual)
	require.NoError(t, err)
	assert.True(t, added)
	_, added, err = InsertLeadIfNew(ctx, db.Pool, manual)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestListLeadsSortAndTags(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seed := []LeadInsert{
		{Lead: domain.Lead{Company: "Alpha Plumbing", SourceID: "a"}, Score: 50, ReceivedAt: now},
		{Lead: domain.Lead{Company: "Beta Dental", SourceID: "b"}, Score: 90, Tags: []string{"new-lead-urgency"}, ReceivedAt: now},
		{Lead: domain.Lead{Company: "Gamma Cafe", SourceID: "c"}, Score: 70, ReceivedAt: now},
	}
	for _, in := range seed {
		_, added, err := InsertLeadIfNew(ctx, db.Pool, in)
		require.NoError(t, err)
		require.True(t, added)
	}

	leads, err := ListLeads(ctx, db.Pool, ListLeadsOpts{Sort: "score"})
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "Beta Dental", leads[0].Company)
	assert.Equal(t, []string{"new-lead-urgency"}, leads[0].Tags)

	byCompany, err := ListLeads(ctx, db.Pool, ListLeadsOpts{Sort: "company"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha Plumbing", byCompany[0].Company)
}

func TestGetAndDeleteLead(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	created := time.Now().UTC().Truncate(time.Second)

	id, _, err := InsertLeadIfNew(ctx, db.Pool, LeadInsert{
		Lead: domain.Lead{
			Name:      "Joe Carter",
			Company:   "Joe's HVAC Repair",
			Email:     "joe@example.com",
			Budget:    12000,
			CreatedAt: created,
			SourceID:  "email:7",
		},
		ReceivedAt: created,
	})
	require.NoError(t, err)

	got, err := GetLead(ctx, db.Pool, id)
	require.NoError(t, err)
	assert.Equal(t, "Joe's HVAC Repair", got.Company)
	assert.Equal(t, 12000, got.Budget)
	assert.True(t, got.CreatedAt.Equal(created))

	require.NoError(t, DeleteLead(ctx, db.Pool, id))
	_, err = GetLead(ctx, db.Pool, id)
	assert.Error(t, err)
}

func TestCompanyDomainCache(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cd, err := GetCompanyDomain(ctx, db.Pool, "Joe's HVAC Repair")
	require.NoError(t, err)
	assert.Empty(t, cd.Domain)

	require.NoError(t, UpsertCompanyDomain(ctx, db.Pool, "  Joe's   HVAC Repair ", CompanyDomain{
		Domain:    "JoesHVAC.com",
		SiteTitle: "Joe's HVAC Repair - Heating & Cooling",
	}))

	cd, err = GetCompanyDomain(ctx, db.Pool, "joe's hvac repair")
	require.NoError(t, err)
	assert.Equal(t, "joeshvac.com", cd.Domain)
	assert.Equal(t, "Joe's HVAC Repair - Heating & Cooling", cd.SiteTitle)
	assert.False(t, cd.FetchedAt.IsZero())
}

func TestCompanyDomainCachesMisses(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// No row at all: zero FetchedAt.
	cd, err := GetCompanyDomain(ctx, db.Pool, "Phantom Plumbing")
	require.NoError(t, err)
	assert.True(t, cd.FetchedAt.IsZero())

	// A miss is stored as an empty-domain row with a timestamp.
	require.NoError(t, UpsertCompanyDomain(ctx, db.Pool, "Phantom Plumbing", CompanyDomain{}))

	cd, err = GetCompanyDomain(ctx, db.Pool, "phantom plumbing")
	require.NoError(t, err)
	assert.Empty(t, cd.Domain)
	assert.False(t, cd.FetchedAt.IsZero())
}
