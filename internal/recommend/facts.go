package recommend

import (
	"strings"
	"time"

	"starz-engine/internal/domain"
)

type Industry string

const (
	IndustryRestaurant Industry = "restaurant"
	IndustryHVAC       Industry = "hvac"
	IndustryPlumbing   Industry = "plumbing"
	IndustryElectrical Industry = "electrical"
	IndustryHealthcare Industry = "healthcare"
	IndustryLegal      Industry = "legal"
	IndustryGeneral    Industry = "general"
)

type BudgetTier string

const (
	BudgetNone     BudgetTier = "none"
	BudgetStandard BudgetTier = "standard"
	BudgetHigh     BudgetTier = "high"
)

// Action is what the rep is about to do with the lead, supplied by the UI.
type Action string

const (
	ActionNone       Action = ""
	ActionCalling    Action = "calling"
	ActionEmailing   Action = "emailing"
	ActionScheduling Action = "scheduling"
)

// FactSet is everything the rules look at, derived once per evaluation.
// Rules never read the lead or the clock directly.
type FactSet struct {
	Industry         Industry
	LeadAgeHours     float64
	Budget           int
	BudgetTier       BudgetTier
	Source           string
	HighIntentSource bool
	Action           Action
	IsBusinessHours  bool
}

// industryOrder fixes the first-match-wins priority for keyword inference.
var industryOrder = []Industry{
	IndustryRestaurant,
	IndustryHVAC,
	IndustryPlumbing,
	IndustryElectrical,
	IndustryHealthcare,
	IndustryLegal,
}

var industryKeywords = map[Industry][]string{
	IndustryRestaurant: {"restaurant", "cafe", "diner", "bistro", "pizzeria", "bakery", "catering", "grill", "eatery", "food truck"},
	IndustryHVAC:       {"hvac", "heating", "cooling", "air conditioning", "furnace", "refrigeration", "ductwork"},
	IndustryPlumbing:   {"plumbing", "plumber", "drain", "sewer", "water heater", "pipe repair"},
	IndustryElectrical: {"electric", "electrician", "wiring", "lighting", "solar panel"},
	IndustryHealthcare: {"dental", "dentist", "clinic", "medical", "chiropract", "physician", "wellness", "orthodont"},
	IndustryLegal:      {"law firm", "attorney", "lawyer", "legal", "paralegal"},
}

// ExtractFacts derives the fact set for one lead. now is explicit so the
// whole pipeline is deterministic; missing lead fields fall back to neutral
// values, never errors.
func (p Profile) ExtractFacts(lead domain.Lead, action Action, now time.Time) FactSet {
	f := FactSet{
		Budget: lead.Budget,
		Source: strings.ToLower(strings.TrimSpace(lead.Source)),
		Action: action,
	}

	f.Industry = p.InferIndustry(lead.Company + " " + lead.Notes)

	if !lead.CreatedAt.IsZero() {
		f.LeadAgeHours = now.Sub(lead.CreatedAt).Hours()
	}

	switch {
	case lead.Budget <= 0:
		f.BudgetTier = BudgetNone
	case lead.Budget >= p.HighBudget:
		f.BudgetTier = BudgetHigh
	case lead.Budget > p.StandardBudget:
		f.BudgetTier = BudgetStandard
	default:
		f.BudgetTier = BudgetNone
	}

	for _, s := range p.HighIntentSources {
		if f.Source == s {
			f.HighIntentSource = true
			break
		}
	}

	f.IsBusinessHours = p.InBusinessHours(now)
	return f
}

// InferIndustry returns the first industry whose keyword set matches the
// text, in fixed priority order. No partial scoring; first match wins.
func (p Profile) InferIndustry(text string) Industry {
	text = strings.ToLower(text)
	for _, ind := range industryOrder {
		for _, kw := range industryKeywords[ind] {
			if strings.Contains(text, kw) {
				return ind
			}
		}
		for _, kw := range p.ExtraKeywords[ind] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(text, kw) {
				return ind
			}
		}
	}
	return IndustryGeneral
}
