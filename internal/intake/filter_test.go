package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"starz-engine/internal/domain"
)

func TestShouldKeepLead(t *testing.T) {
	cases := []struct {
		name   string
		lead   domain.Lead
		keep   bool
		reason string
	}{
		{"full lead", domain.Lead{Name: "Joe", Company: "Joe's HVAC", Email: "j@x.com"}, true, ""},
		{"company only", domain.Lead{Company: "Joe's HVAC"}, true, ""},
		{"empty", domain.Lead{}, false, "anonymous"},
		{"name but nothing to contact", domain.Lead{Name: "Joe"}, false, "no_contact"},
		{"link spam", domain.Lead{Company: "x", Notes: "http://a http://b http://c http://d"}, false, "link_spam"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			keep, reason := ShouldKeepLead(tc.lead)
			assert.Equal(t, tc.keep, keep)
			assert.Equal(t, tc.reason, reason)
		})
	}
}
