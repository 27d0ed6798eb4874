package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/littbk/rpg-battle/internal/api"
	"github.com/littbk/rpg-battle/internal/config"
	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/service"
	"github.com/littbk/rpg-battle/internal/storage"
)

// newRouter wires the services over repo and registers every route. The
// combatant store and the roster share one KeyedLocker so activation and
// updates on the same name never interleave.
func newRouter(cfg *config.LoadedConfig, repo storage.Repository) *gin.Engine {
	locks := service.NewKeyedLocker()
	store := service.NewCombatantStore(repo, storage.ProfileStore{Dir: cfg.ProfileDir}, locks, cfg.Template)
	roster := service.NewRoster(repo, locks)
	queue := service.NewBattleQueue(repo)

	handler := api.NewCombatHandler(store, roster, queue, cfg.StreamInterval, cfg.CORSOrigins)
	authHandler := api.NewAuthHandler(cfg.Discord)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{constants.HeaderOrigin, constants.HeaderContentType},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api.RegisterRoutes(router, handler, authHandler)
	return router
}
