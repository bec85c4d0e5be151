package intake

import (
	"strings"

	"starz-engine/internal/domain"
)

// ShouldKeepLead drops captures that can't be worked: nothing to call or
// write to, or obvious link spam in the notes.
func ShouldKeepLead(lead domain.Lead) (keep bool, reason string) {
	name := strings.TrimSpace(lead.Name)
	company := strings.TrimSpace(lead.Company)
	if name == "" && company == "" {
		return false, "anonymous"
	}

	if strings.TrimSpace(lead.Email) == "" &&
		strings.TrimSpace(lead.Phone) == "" &&
		company == "" {
		return false, "no_contact"
	}

	if strings.Count(strings.ToLower(lead.Notes), "http") > 3 {
		return false, "link_spam"
	}

	return true, ""
}
