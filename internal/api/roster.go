package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/game"
)

type RosterRequest struct {
	Participant game.Participant `json:"participant"`
	Name        string           `json:"name"`
}

// ListActive returns every active combatant.
func (h *CombatHandler) ListActive(c *gin.Context) {
	active, err := h.roster.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchCombatants)
		return
	}
	respondJSON(c, http.StatusOK, active)
}

// GetParticipantCombatant returns the active combatant of a participant.
func (h *CombatHandler) GetParticipantCombatant(c *gin.Context) {
	found, err := h.roster.FindActiveByController(c.Request.Context(), c.Param(constants.ParamParticipantID))
	if err != nil {
		respondError(c, err, constants.ErrNoActiveCombatant)
		return
	}
	respondJSON(c, http.StatusOK, found)
}

// ResolveParticipant returns the combatant a participant acts with, given
// ?id=, ?username= and ?bot=.
func (h *CombatHandler) ResolveParticipant(c *gin.Context) {
	bot, _ := strconv.ParseBool(c.Query(constants.QueryBot))
	p := game.Participant{
		ID:       c.Query(constants.QueryParticipantID),
		Username: c.Query(constants.QueryUsername),
		Bot:      bot,
	}
	found, err := h.roster.ResolveForParticipant(c.Request.Context(), p)
	if err != nil {
		respondError(c, err, constants.ErrNoActiveCombatant)
		return
	}
	respondJSON(c, http.StatusOK, found)
}

// Activate makes the named combatant the participant's only active one.
func (h *CombatHandler) Activate(c *gin.Context) {
	var req RosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	found, err := h.roster.ActivateExclusively(c.Request.Context(), req.Participant, req.Name)
	if err != nil {
		respondError(c, err, constants.ErrFailedActivate)
		return
	}
	respondJSON(c, http.StatusOK, found)
}

// Give reassigns the first combatant matching the partial name.
func (h *CombatHandler) Give(c *gin.Context) {
	var req RosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	found, err := h.roster.Give(c.Request.Context(), req.Name, req.Participant)
	if err != nil {
		respondError(c, err, constants.ErrFailedGive)
		return
	}
	respondJSON(c, http.StatusOK, found)
}
