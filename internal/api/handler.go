package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/service"
)

// CombatHandler groups the combatant, roster and battle queue handlers.
type CombatHandler struct {
	store          *service.CombatantStore
	roster         *service.Roster
	queue          *service.BattleQueue
	streamInterval time.Duration
	upgrader       websocket.Upgrader
}

// NewCombatHandler creates a handler over the given services. Websocket
// upgrades are accepted from allowedOrigins and from clients that send no
// Origin header.
func NewCombatHandler(store *service.CombatantStore, roster *service.Roster, queue *service.BattleQueue, streamInterval time.Duration, allowedOrigins []string) *CombatHandler {
	if streamInterval <= 0 {
		streamInterval = 2 * time.Second
	}
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &CombatHandler{
		store:          store,
		roster:         roster,
		queue:          queue,
		streamInterval: streamInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get(constants.HeaderOrigin)
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}
