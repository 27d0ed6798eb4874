package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/logging"
)

const (
	streamWriteWait = 10 * time.Second
	streamPongWait  = 60 * time.Second
)

// StreamBattleQueue upgrades to a websocket and pushes the turn order for
// ?channel= whenever it changes. Unchanged ticks send a ping instead.
func (h *CombatHandler) StreamBattleQueue(c *gin.Context) {
	channel := c.Query(constants.QueryChannel)
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrChannelRequired})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", err, logging.Fields{constants.LogFieldRemote: c.ClientIP()})
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Clients only send control frames; the read loop keeps pongs flowing
	// and notices when the peer goes away.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var last []byte
	push := func() error {
		res, err := h.queue.TurnOrder(ctx, channel)
		if err != nil {
			logging.Error(constants.ErrFailedFetchQueue, err, logging.Fields{constants.LogFieldChannel: channel})
			return nil
		}
		b, err := json.Marshal(res)
		if err != nil {
			return err
		}
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if bytes.Equal(b, last) {
			return conn.WriteMessage(websocket.PingMessage, nil)
		}
		last = b
		return conn.WriteMessage(websocket.TextMessage, b)
	}

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()
	for {
		if err := push(); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
