package main

import (
	"fmt"
	"path/filepath"

	"github.com/micha/aeonium-menu/config"
)

const rendererLogName = "renderer.log"

// resolveConfigDir returns the -config flag value made absolute, or the
// default config directory.
func resolveConfigDir(flagValue string) (string, error) {
	if flagValue != "" {
		abs, err := filepath.Abs(flagValue)
		if err != nil {
			return "", fmt.Errorf("could not resolve config directory: %w", err)
		}
		return abs, nil
	}
	return config.DefaultDir()
}

func stateDir() (string, error) {
	dir, err := config.StateDir()
	if err != nil {
		return "", fmt.Errorf("could not get state directory: %w", err)
	}
	return dir, nil
}
