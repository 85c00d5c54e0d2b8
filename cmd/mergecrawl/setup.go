package main

import (
	"fmt"
	"time"

	"github.com/vovakirdan/mergecrawl/internal/config"
	"github.com/vovakirdan/mergecrawl/internal/defs"
	"github.com/vovakirdan/mergecrawl/internal/game"
)

// loadDefs opens the built-in content pack plus any packs under --content.
func loadDefs() (*defs.Database, error) {
	db := defs.NewDatabase(logger)
	if err := defs.Open(db, flagContent); err != nil {
		return nil, err
	}
	for _, err := range db.Validate() {
		logger.Warn("content", "err", err)
	}
	return db, nil
}

// loadConfig reads the game config and applies --difficulty on top.
func loadConfig() (config.GameConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.GameConfig{}, err
	}
	if flagDifficulty != "" {
		preset, ok := config.ParsePreset(flagDifficulty)
		if !ok {
			return config.GameConfig{}, fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", flagDifficulty)
		}
		config.ApplyPreset(&cfg, preset)
	}
	return cfg, nil
}

// gameOptions builds the session options shared by every command.
func gameOptions() (game.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return game.Options{}, err
	}
	db, err := loadDefs()
	if err != nil {
		return game.Options{}, err
	}
	return game.Options{
		Config: cfg,
		DB:     db,
		Seed:   seed(),
		Logger: logger,
	}, nil
}

func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}
