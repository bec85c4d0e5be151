package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// NormalizePhone strips formatting down to digits, keeping a leading +.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseBudget pulls a dollar amount out of notifier text like "$5,000" or
// "$5,000 - $10,000/month" (the upper bound wins for ranges). Returns 0 if
// no amount is found.
func ParseBudget(s string) int {
	best := 0
	cur := 0
	inNum := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + int(r-'0')
			inNum = true
		case r == ',' && inNum:
			// thousands separator inside a number
		default:
			if inNum && cur > best {
				best = cur
			}
			cur = 0
			inNum = false
		}
	}
	if inNum && cur > best {
		best = cur
	}
	return best
}
