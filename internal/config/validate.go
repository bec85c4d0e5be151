package config

import (
	"fmt"
	"strings"
	"time"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong or
// suspicious about it. Errors block a save; warnings don't.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Scoring.HighIntentSources = trimList(out.Scoring.HighIntentSources)
	out.Intake.Email.SearchSubjectAny = trimList(out.Intake.Email.SearchSubjectAny)
	for k, kws := range out.Industries {
		out.Industries[k] = trimList(kws)
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Polling.IntakeSeconds <= 0 {
		res.addErr("polling.intake_seconds must be > 0")
	} else if out.Polling.IntakeSeconds < 10 {
		res.addWarn("polling.intake_seconds is very low (%d) and may cause rate limits.", out.Polling.IntakeSeconds)
	}
	if out.Polling.CleanupHours <= 0 {
		res.addErr("polling.cleanup_hours must be > 0")
	}

	if tz := strings.TrimSpace(out.BusinessHours.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			res.addErr("business_hours.timezone is not a valid IANA zone: %q", tz)
		}
	}
	if out.BusinessHours.StartHour < 0 || out.BusinessHours.StartHour > 23 {
		res.addErr("business_hours.start_hour must be 0..23")
	}
	if out.BusinessHours.EndHour < 1 || out.BusinessHours.EndHour > 24 {
		res.addErr("business_hours.end_hour must be 1..24")
	}
	if out.BusinessHours.StartHour >= out.BusinessHours.EndHour {
		res.addErr("business_hours.start_hour must be before end_hour")
	}

	if out.Scoring.ConfidenceFloor < 0 || out.Scoring.ConfidenceFloor > 100 {
		res.addErr("scoring.confidence_floor must be 0..100")
	}
	if out.Scoring.StandardBudget < 0 || out.Scoring.HighBudget < 0 {
		res.addErr("scoring budget thresholds must be >= 0")
	}
	if out.Scoring.HighBudget > 0 && out.Scoring.StandardBudget >= out.Scoring.HighBudget {
		res.addErr("scoring.standard_budget must be below scoring.high_budget")
	}
	if len(out.Scoring.HighIntentSources) == 0 {
		res.addWarn("scoring.high_intent_sources is empty; the source rule will never fire.")
	}

	// email required fields if enabled (password not required here; it's in keychain)
	if out.Intake.Email.Enabled {
		if strings.TrimSpace(out.Intake.Email.IMAPHost) == "" {
			res.addErr("intake.email.imap_host is required when intake.email.enabled=true")
		}
		if out.Intake.Email.IMAPPort == 0 {
			res.addErr("intake.email.imap_port is required when intake.email.enabled=true")
		}
		if strings.TrimSpace(out.Intake.Email.Username) == "" {
			res.addErr("intake.email.username is required when intake.email.enabled=true")
		}
		if strings.TrimSpace(out.Intake.Email.Mailbox) == "" {
			res.addErr("intake.email.mailbox is required when intake.email.enabled=true")
		}
		if len(out.Intake.Email.SearchSubjectAny) == 0 {
			res.addWarn("intake.email.search_subject_any is empty; email intake may pick up unrelated mail.")
		}
	}

	return out, res
}
