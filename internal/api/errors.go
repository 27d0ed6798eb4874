package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/logging"
	"github.com/littbk/rpg-battle/internal/service"
)

// respondError maps service errors to HTTP statuses. failed is the message
// used for unexpected errors, whose details are logged but not returned.
func respondError(c *gin.Context, err error, failed string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrResourceNotFound, constants.JSONKeyDetails: err.Error()})
	case errors.Is(err, service.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrCombatantExists, constants.JSONKeyDetails: err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
	case errors.Is(err, service.ErrLinkContention):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: failed, constants.JSONKeyDetails: err.Error()})
	default:
		logging.Error(failed, err, logging.Fields{constants.LogFieldPath: c.FullPath()})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: failed})
	}
}

// respondJSON writes v with snake_case timestamp keys.
func respondJSON(c *gin.Context, status int, v interface{}) {
	out, err := MarshalIntoSnakeTimestamps(v)
	if err != nil {
		logging.Error(constants.ErrFailedEncode, err, logging.Fields{constants.LogFieldPath: c.FullPath()})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedEncode})
		return
	}
	c.JSON(status, out)
}
