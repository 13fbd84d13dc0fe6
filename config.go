package main

import (
	"fmt"

	"github.com/micha/aeonium-menu/config"
	"github.com/micha/aeonium-menu/logger"
)

// loadSettings loads the config from dir and logs where it came from.
func loadSettings(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", config.Path(dir), err)
	}
	logger.Debugf("[config] loaded %s: %+v", config.Path(dir), *cfg)
	return cfg, nil
}
