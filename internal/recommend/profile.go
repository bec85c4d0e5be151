package recommend

import (
	"log"
	"strings"
	"time"

	"starz-engine/internal/config"
)

// Profile holds the tunables the rule engine evaluates against. A Profile is
// immutable once built; Generate never reads config or the wall clock behind
// the caller's back.
type Profile struct {
	Location  *time.Location
	StartHour int // inclusive, local hour
	EndHour   int // exclusive, local hour

	StandardBudget  int
	HighBudget      int
	ConfidenceFloor int

	HighIntentSources []string

	// Extra keywords appended to the built-in table, keyed by industry.
	ExtraKeywords map[Industry][]string
}

func DefaultProfile() Profile {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return Profile{
		Location:          loc,
		StartHour:         9,
		EndHour:           18,
		StandardBudget:    5000,
		HighBudget:        10000,
		ConfidenceFloor:   75,
		HighIntentSources: []string{"bark"},
	}
}

// ProfileFromConfig overlays cfg onto the defaults. Zero-valued fields keep
// the default so a sparse config stays sane.
func ProfileFromConfig(cfg config.Config) Profile {
	p := DefaultProfile()

	if tz := strings.TrimSpace(cfg.BusinessHours.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			p.Location = loc
		} else {
			log.Printf("[recommend] invalid business_hours.timezone=%q, keeping %s", tz, p.Location)
		}
	}
	if cfg.BusinessHours.StartHour > 0 {
		p.StartHour = cfg.BusinessHours.StartHour
	}
	if cfg.BusinessHours.EndHour > 0 {
		p.EndHour = cfg.BusinessHours.EndHour
	}
	if cfg.Scoring.StandardBudget > 0 {
		p.StandardBudget = cfg.Scoring.StandardBudget
	}
	if cfg.Scoring.HighBudget > 0 {
		p.HighBudget = cfg.Scoring.HighBudget
	}
	if cfg.Scoring.ConfidenceFloor > 0 {
		p.ConfidenceFloor = cfg.Scoring.ConfidenceFloor
	}
	if len(cfg.Scoring.HighIntentSources) > 0 {
		var srcs []string
		for _, s := range cfg.Scoring.HighIntentSources {
			s = strings.ToLower(strings.TrimSpace(s))
			if s != "" {
				srcs = append(srcs, s)
			}
		}
		p.HighIntentSources = srcs
	}
	if len(cfg.Industries) > 0 {
		p.ExtraKeywords = make(map[Industry][]string, len(cfg.Industries))
		for name, kws := range cfg.Industries {
			p.ExtraKeywords[Industry(strings.ToLower(strings.TrimSpace(name)))] = kws
		}
	}
	return p
}

// InBusinessHours reports whether now falls inside the Mon-Fri working
// window in the profile's location.
func (p Profile) InBusinessHours(now time.Time) bool {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := local.Hour()
	return h >= p.StartHour && h < p.EndHour
}
