package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type EmailIntake struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	IMAPHost         string   `yaml:"imap_host" json:"imap_host"`
	IMAPPort         int      `yaml:"imap_port" json:"imap_port"`
	Username         string   `yaml:"username" json:"username"`
	Mailbox          string   `yaml:"mailbox" json:"mailbox"`
	MaxMessages      int      `yaml:"max_messages" json:"max_messages"`
	SearchSubjectAny []string `yaml:"search_subject_any" json:"search_subject_any"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Polling struct {
		IntakeSeconds int `yaml:"intake_seconds" json:"intake_seconds"`
		CleanupHours  int `yaml:"cleanup_hours" json:"cleanup_hours"`
	} `yaml:"polling" json:"polling"`

	BusinessHours struct {
		Timezone  string `yaml:"timezone" json:"timezone"`
		StartHour int    `yaml:"start_hour" json:"start_hour"`
		EndHour   int    `yaml:"end_hour" json:"end_hour"`
	} `yaml:"business_hours" json:"business_hours"`

	Scoring struct {
		ConfidenceFloor   int      `yaml:"confidence_floor" json:"confidence_floor"`
		StandardBudget    int      `yaml:"standard_budget" json:"standard_budget"`
		HighBudget        int      `yaml:"high_budget" json:"high_budget"`
		HighIntentSources []string `yaml:"high_intent_sources" json:"high_intent_sources"`
	} `yaml:"scoring" json:"scoring"`

	Intake struct {
		Email EmailIntake `yaml:"email" json:"email"`
	} `yaml:"intake" json:"intake"`

	// Extra industry keywords merged into the built-in tables.
	// Keys are industry names (restaurant, hvac, ...).
	Industries map[string][]string `yaml:"industries" json:"industries"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
