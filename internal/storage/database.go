package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/littbk/rpg-battle/internal/engine"
	"github.com/littbk/rpg-battle/internal/game"
	"github.com/littbk/rpg-battle/internal/logging"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the SQLite database at dataSourceName, migrates the
// schema and seeds the configured combatants into an empty table. The pool
// is capped at one connection so ":memory:" databases stay shared.
func OpenAndMigrate(dataSourceName string, seeds []game.Combatant) (*gorm.DB, error) {
	if err := ensureParentDir(dataSourceName); err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&game.Combatant{}, &game.Encounter{}); err != nil {
		return nil, err
	}
	if err := seedCombatants(db, seeds); err != nil {
		return nil, err
	}
	logging.Info("database ready", logging.Fields{"dsn": dataSourceName})
	return db, nil
}

func seedCombatants(db *gorm.DB, seeds []game.Combatant) error {
	if len(seeds) == 0 {
		return nil
	}
	var count int64
	if err := db.Model(&game.Combatant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	rows := make([]game.Combatant, 0, len(seeds))
	for _, c := range seeds {
		c.ID = 0
		engine.Normalize(&c)
		rows = append(rows, c)
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("seed combatants: %w", err)
	}
	logging.Info("combatants seeded", logging.Fields{"count": len(rows)})
	return nil
}

func ensureParentDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}
