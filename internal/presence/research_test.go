package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"starz-engine/internal/store"
)

func TestIsBlockedDomain(t *testing.T) {
	assert.True(t, isBlockedDomain("yelp.com"))
	assert.True(t, isBlockedDomain("m.facebook.com"))
	assert.True(t, isBlockedDomain("bark.com"))
	assert.False(t, isBlockedDomain("joeshvac.com"))
	assert.False(t, isBlockedDomain("notyelp.com"))
}

func TestDecodeDDGRedirect(t *testing.T) {
	got := decodeDDGRedirect("https://duckduckgo.com/l/?uddg=https%3A%2F%2Fjoeshvac.com%2F&rut=abc")
	assert.Equal(t, "https://joeshvac.com/", got)

	// Non-redirect links pass through untouched.
	assert.Equal(t, "https://example.com/x", decodeDDGRedirect("https://example.com/x"))
}

func TestSanitizeCompanyForSearch(t *testing.T) {
	assert.Equal(t, "Joe's HVAC Repair", sanitizeCompanyForSearch("Joe's HVAC Repair, LLC"))
	assert.Equal(t, "Acme", sanitizeCompanyForSearch("  Acme   Inc. "))
}

func TestFreshMiss(t *testing.T) {
	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

	// Never looked up: not a miss.
	assert.False(t, freshMiss(store.CompanyDomain{}, now))

	// Resolved entries are hits regardless of age.
	assert.False(t, freshMiss(store.CompanyDomain{Domain: "joeshvac.com", FetchedAt: now.Add(-365 * 24 * time.Hour)}, now))

	// A recent miss suppresses re-searching; an expired one doesn't.
	assert.True(t, freshMiss(store.CompanyDomain{FetchedAt: now.Add(-time.Hour)}, now))
	assert.False(t, freshMiss(store.CompanyDomain{FetchedAt: now.Add(-negativeTTL - time.Minute)}, now))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("  short  ", 300))

	// Cut lands mid-rune; the whole rune goes, the string stays valid.
	s := "abéé" // 6 bytes
	got := truncateRunes(s, 5)
	assert.Equal(t, "abé", got)
	assert.LessOrEqual(t, len(got), 5)
}
