package main

import (
	"os"

	"github.com/littbk/rpg-battle/internal/config"
	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		logging.Warn("failed to read .env", err, nil)
	}
	// The YAML file is optional; RPG_BATTLE_CONFIG overrides its location.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = constants.DefaultConfigPath
	}
	cfg := loadConfigOrExit(configPath)
	if !cfg.Discord.Enabled() {
		logging.Warn("token relay disabled", nil, logging.Fields{"hint": constants.ErrMissingDiscordEnv})
	}

	repo := createRepositoryOrExit(cfg)
	router := newRouter(cfg, repo)

	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: cfg.ServerAddress})
	if err := router.Run(cfg.ServerAddress); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
