package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type IndustriesFile struct {
	Industries        map[string][]string `yaml:"industries"`
	HighIntentSources []string            `yaml:"high_intent_sources"`
}

// OverlayIndustries merges an optional industries file into cfg. Keyword
// lists replace per industry; the source list replaces wholesale.
func OverlayIndustries(cfg *Config, industriesPath string) error {
	b, err := os.ReadFile(industriesPath)
	if err != nil {
		// Missing overlay file should not kill startup
		return nil
	}

	var f IndustriesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return err
	}

	if len(f.Industries) > 0 {
		if cfg.Industries == nil {
			cfg.Industries = make(map[string][]string)
		}
		for k, kws := range f.Industries {
			cfg.Industries[k] = kws
		}
	}
	if len(f.HighIntentSources) > 0 {
		cfg.Scoring.HighIntentSources = f.HighIntentSources
	}
	return nil
}
