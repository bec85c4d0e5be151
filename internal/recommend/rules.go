package recommend

import "fmt"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Category string

const (
	CategoryUrgency  Category = "urgency"
	CategoryRecovery Category = "recovery"
	CategoryIndustry Category = "industry"
	CategoryCoaching Category = "coaching"
	CategoryBudget   Category = "budget"
	CategoryTiming   Category = "timing"
	CategorySource   Category = "source"
)

// Candidate is one scored, not-yet-filtered recommendation.
type Candidate struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Confidence  int      `json:"confidence"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	ActionItems []string `json:"action_items"`
	Context     string   `json:"context"`
}

// Rule maps a fact set to zero or one candidate. Rules are independent:
// every rule in the catalog runs on every evaluation.
type Rule func(f FactSet) *Candidate

// catalog order is fixed; it is the tie-break between candidates of equal
// priority after ranking.
func (p Profile) catalog() []Rule {
	return []Rule{
		newLeadRule,
		staleLeadRule,
		industryRule,
		actionRule,
		p.highBudgetRule,
		offHoursRule,
		highIntentSourceRule,
	}
}

func newLeadRule(f FactSet) *Candidate {
	if f.LeadAgeHours > 24 {
		return nil
	}
	return &Candidate{
		ID:         "new-lead-urgency",
		Category:   CategoryUrgency,
		Priority:   PriorityHigh,
		Confidence: 95,
		Title:      "Strike While the Lead Is Hot",
		Message:    "This lead came in within the last 24 hours. Contact rates drop sharply after the first day, so reach out now.",
		ActionItems: []string{
			"Call within the next hour if possible",
			"Reference what they asked about, not a generic pitch",
			"Book the follow-up before you hang up",
		},
		Context: fmt.Sprintf("Lead is %.0f hours old; first-day contact converts several times better than day two.", f.LeadAgeHours),
	}
}

func staleLeadRule(f FactSet) *Candidate {
	if f.LeadAgeHours <= 72 {
		return nil
	}
	return &Candidate{
		ID:         "stale-lead-recovery",
		Category:   CategoryRecovery,
		Priority:   PriorityHigh,
		Confidence: 85,
		Title:      "Re-Engage Before It Goes Cold",
		Message:    "This lead has sat for more than three days. Lead with fresh value, not an apology for the delay.",
		ActionItems: []string{
			"Open with a new insight or local result, not \"just checking in\"",
			"Offer a no-commitment website or visibility audit",
			"Switch channel: if calls went unanswered, try a short text or email",
		},
		Context: fmt.Sprintf("Lead is %.0f hours old; recovery outreach works best when it adds something new.", f.LeadAgeHours),
	}
}

type industryPlay struct {
	confidence int
	title      string
	message    string
	actions    []string
	context    string
}

var industryPlays = map[Industry]industryPlay{
	IndustryRestaurant: {
		confidence: 90,
		title:      "Restaurant Growth Playbook",
		message:    "Restaurants buy on foot traffic and reviews. Anchor the pitch on local search and their Google profile.",
		actions: []string{
			"Pull up their Google Business profile before the call",
			"Lead with review volume vs. the competitor two blocks over",
			"Pitch geo-targeted ads around lunch and dinner windows",
		},
		context: "Restaurant owners respond to concrete local numbers, not marketing vocabulary.",
	},
	IndustryHVAC: {
		confidence: 88,
		title:      "HVAC Seasonal Angle",
		message:    "HVAC demand is seasonal and urgent. Sell being first in local results when a unit dies.",
		actions: []string{
			"Ask what their slow season looks like and pitch filling it",
			"Lead with emergency-call search terms they're missing",
			"Quote LSA (Local Services Ads) alongside organic work",
		},
		context: "HVAC owners think in service calls per week; translate traffic into booked calls.",
	},
	IndustryPlumbing: {
		confidence: 88,
		title:      "Plumbing Lead Economics",
		message:    "Plumbers know exactly what a job is worth. Frame the spend as cost per booked job, not clicks.",
		actions: []string{
			"Ask their average ticket for a water heater swap",
			"Work backwards from one extra job per week",
			"Flag after-hours emergency search as the premium slot",
		},
		context: "A cost-per-job frame beats impressions talk with trade owners every time.",
	},
	IndustryElectrical: {
		confidence: 88,
		title:      "Electrical Contractor Angle",
		message:    "Electricians split between service calls and project work. Find out which side they want to grow.",
		actions: []string{
			"Ask residential service vs. commercial bid mix",
			"Pitch panel-upgrade and EV-charger search terms",
			"Mention license-number trust signals in ad copy",
		},
		context: "Project-heavy shops care about fewer, bigger leads; service shops want volume.",
	},
	IndustryHealthcare: {
		confidence: 89,
		title:      "Healthcare Practice Positioning",
		message:    "Practices grow on trust and reviews. Keep compliance in mind and sell patient acquisition cost.",
		actions: []string{
			"Lead with reputation management alongside ads",
			"Ask what a new patient is worth over a year",
			"Avoid promising outcomes; promise visibility",
		},
		context: "Healthcare buyers are cautious; a compliance-aware pitch stands out.",
	},
	IndustryLegal: {
		confidence: 89,
		title:      "Law Firm Intake Focus",
		message:    "Legal clicks are expensive; intake speed is where firms actually lose money. Sell the whole funnel.",
		actions: []string{
			"Ask how fast their intake returns a missed call",
			"Pitch practice-area landing pages over a generic site",
			"Quote case value to justify premium keywords",
		},
		context: "Firms already know ads are costly; differentiation is conversion, not clicks.",
	},
}

func industryRule(f FactSet) *Candidate {
	play, ok := industryPlays[f.Industry]
	if !ok {
		return nil
	}
	return &Candidate{
		ID:          string(f.Industry) + "-industry-strategy",
		Category:    CategoryIndustry,
		Priority:    PriorityMedium,
		Confidence:  play.confidence,
		Title:       play.title,
		Message:     play.message,
		ActionItems: play.actions,
		Context:     play.context,
	}
}

func actionRule(f FactSet) *Candidate {
	switch f.Action {
	case ActionCalling:
		return &Candidate{
			ID:         "calling-best-practices",
			Category:   CategoryCoaching,
			Priority:   PriorityMedium,
			Confidence: 92,
			Title:      "Before You Dial",
			Message:    "Thirty seconds of prep doubles the odds of a real conversation.",
			ActionItems: []string{
				"Say their name and company in the first sentence",
				"State one specific reason you're calling them",
				"Have two open questions ready before any pitch",
			},
			Context: "Reps who open with a specific observation hold the line past the first ten seconds.",
		}
	case ActionEmailing:
		return &Candidate{
			ID:         "email-outreach-tips",
			Category:   CategoryCoaching,
			Priority:   PriorityMedium,
			Confidence: 87,
			Title:      "Make the Email Scannable",
			Message:    "Owners read email on their phone between jobs. Three short lines beat three paragraphs.",
			ActionItems: []string{
				"Subject line: their business name, not yours",
				"One concrete observation, one offer, one ask",
				"End with a single yes/no question",
			},
			Context: "Short, specific email gets replies; brochures get archived.",
		}
	case ActionScheduling:
		return &Candidate{
			ID:         "scheduling-follow-through",
			Category:   CategoryCoaching,
			Priority:   PriorityMedium,
			Confidence: 88,
			Title:      "Lock the Meeting Down",
			Message:    "A scheduled call without a confirmation loop is a coin flip.",
			ActionItems: []string{
				"Send the invite while still on the phone",
				"Confirm the day before by text, not email",
				"Attach one relevant talking point to the invite",
			},
			Context: "No-show rates drop sharply with a day-before text confirmation.",
		}
	}
	return nil
}

func (p Profile) highBudgetRule(f FactSet) *Candidate {
	if f.BudgetTier == BudgetNone || f.Budget <= p.StandardBudget {
		return nil
	}
	return &Candidate{
		ID:         "high-budget-strategy",
		Category:   CategoryBudget,
		Priority:   PriorityHigh,
		Confidence: 93,
		Title:      "Treat This as a Key Account",
		Message:    "The stated budget puts this lead in the top tier. Bring a senior closer and a multi-channel plan.",
		ActionItems: []string{
			"Loop in a senior rep before the first call",
			"Prepare a cross-channel proposal, not a single product",
			"Offer a strategy session instead of a quote",
		},
		Context: fmt.Sprintf("Stated budget of $%d clears the premium threshold; undersized pitches lose these deals.", f.Budget),
	}
}

func offHoursRule(f FactSet) *Candidate {
	if f.Action != ActionCalling || f.IsBusinessHours {
		return nil
	}
	return &Candidate{
		ID:         "off-hours-calling-warning",
		Category:   CategoryTiming,
		Priority:   PriorityMedium,
		Confidence: 80,
		Title:      "It's Outside Business Hours",
		Message:    "Calling a business line off-hours mostly hits voicemail and can read as pushy. Queue it instead.",
		ActionItems: []string{
			"Schedule the call for the next business morning",
			"Send a short email now so you're first in the inbox",
			"If you must leave voicemail, keep it under 20 seconds",
		},
		Context: "Outside the Mon-Fri working window; connect rates roughly halve off-hours.",
	}
}

func highIntentSourceRule(f FactSet) *Candidate {
	if !f.HighIntentSource {
		return nil
	}
	return &Candidate{
		ID:         f.Source + "-lead-strategy",
		Category:   CategorySource,
		Priority:   PriorityHigh,
		Confidence: 94,
		Title:      "This Lead Asked to Be Contacted",
		Message:    "Leads from " + f.Source + " actively requested quotes and are talking to competitors right now. Speed wins.",
		ActionItems: []string{
			"Respond before the platform's other bidders do",
			"Quote a range up front; these buyers expect numbers",
			"Ask what other quotes they've received",
		},
		Context: "Source \"" + f.Source + "\" is a request-for-quote marketplace; intent is already proven.",
	}
}
