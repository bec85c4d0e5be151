package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// EnsureUserConfig copies the shipped default config into dataDir on first
// run. An existing user config is never touched.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	b, err := os.ReadFile(defaultPath)
	if err != nil {
		return "", fmt.Errorf("read default config: %w", err)
	}
	if err := os.WriteFile(userPath, b, 0o644); err != nil {
		return "", err
	}

	log.Printf("[config] bootstrapped %s from %s", userPath, defaultPath)
	return userPath, nil
}
