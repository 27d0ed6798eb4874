package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/littbk/rpg-battle/internal/constants"
)

type ActingRequest struct {
	Name string `json:"name"`
}

// GetBattleQueue returns the turn order for ?channel=.
func (h *CombatHandler) GetBattleQueue(c *gin.Context) {
	channel := c.Query(constants.QueryChannel)
	if channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrChannelRequired})
		return
	}
	res, err := h.queue.TurnOrder(c.Request.Context(), channel)
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchQueue)
		return
	}
	c.Header(constants.CacheControlHeader, constants.CacheControlNoCache)
	c.JSON(http.StatusOK, res)
}

// SetActing forces a combatant to act first in the channel.
func (h *CombatHandler) SetActing(c *gin.Context) {
	var req ActingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	if err := h.queue.SetActing(c.Request.Context(), c.Param(constants.ParamChannel), req.Name); err != nil {
		respondError(c, err, constants.ErrFailedUpdateQueue)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearActing removes the channel's override.
func (h *CombatHandler) ClearActing(c *gin.Context) {
	if err := h.queue.ClearActing(c.Request.Context(), c.Param(constants.ParamChannel)); err != nil {
		respondError(c, err, constants.ErrFailedUpdateQueue)
		return
	}
	c.Status(http.StatusNoContent)
}
