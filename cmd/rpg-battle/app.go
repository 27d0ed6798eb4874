package main

import (
	"github.com/littbk/rpg-battle/internal/config"
	"github.com/littbk/rpg-battle/internal/logging"
	"github.com/littbk/rpg-battle/internal/storage"
)

func loadConfigOrExit(path string) *config.LoadedConfig {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logging.Fatal("Missing or invalid rpg-battle configuration", err, logging.Fields{"config_path": path})
	}
	return cfg
}

func createRepositoryOrExit(cfg *config.LoadedConfig) storage.Repository {
	db, err := storage.OpenAndMigrate(cfg.DatabasePath, cfg.SeedCombatants)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": cfg.DatabasePath})
	}
	return storage.NewSQLiteRepository(db)
}
