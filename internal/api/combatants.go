package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/game"
)

type CreateCombatantRequest struct {
	Name   string     `json:"name"`
	Fields game.Patch `json:"fields"`
}

// ListCombatants returns every combatant, or the first one whose name
// contains ?match= when given.
func (h *CombatHandler) ListCombatants(c *gin.Context) {
	if match, ok := c.GetQuery(constants.QueryMatch); ok {
		found, err := h.store.FindByPartialName(c.Request.Context(), match)
		if err != nil {
			respondError(c, err, constants.ErrFailedFetchCombatants)
			return
		}
		respondJSON(c, http.StatusOK, found)
		return
	}
	all, err := h.store.List(c.Request.Context())
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchCombatants)
		return
	}
	respondJSON(c, http.StatusOK, all)
}

// CreateCombatant creates a combatant from the template plus the request
// fields.
func (h *CombatHandler) CreateCombatant(c *gin.Context) {
	var req CreateCombatantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := h.store.Create(c.Request.Context(), req.Name, req.Fields)
	if err != nil {
		respondError(c, err, constants.ErrFailedCreateCombatant)
		return
	}
	respondJSON(c, http.StatusCreated, res)
}

// GetCombatant returns one combatant by name.
func (h *CombatHandler) GetCombatant(c *gin.Context) {
	found, err := h.store.Read(c.Request.Context(), c.Param(constants.ParamName))
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchCombatants)
		return
	}
	respondJSON(c, http.StatusOK, found)
}

// PatchCombatant overwrites the fields present in the body.
func (h *CombatHandler) PatchCombatant(c *gin.Context) {
	var patch game.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := h.store.OverwriteUpdate(c.Request.Context(), c.Param(constants.ParamName), patch)
	if err != nil {
		respondError(c, err, constants.ErrFailedUpdateCombatant)
		return
	}
	respondJSON(c, http.StatusOK, res)
}

// AddToCombatant adds the deltas in the body to the numeric pools.
func (h *CombatHandler) AddToCombatant(c *gin.Context) {
	var deltas game.Patch
	if err := c.ShouldBindJSON(&deltas); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := h.store.AdditiveUpdate(c.Request.Context(), c.Param(constants.ParamName), deltas)
	if err != nil {
		respondError(c, err, constants.ErrFailedUpdateCombatant)
		return
	}
	respondJSON(c, http.StatusOK, res)
}

// DeleteCombatant removes a combatant and its profile document.
func (h *CombatHandler) DeleteCombatant(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param(constants.ParamName)); err != nil {
		respondError(c, err, constants.ErrFailedDeleteCombatant)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCombatantProfile serves the stored profile document as-is.
func (h *CombatHandler) GetCombatantProfile(c *gin.Context) {
	b, err := h.store.Profile(c.Request.Context(), c.Param(constants.ParamName))
	if err != nil {
		respondError(c, err, constants.ErrProfileNotFound)
		return
	}
	c.Header(constants.CacheControlHeader, constants.CacheControlNoCache)
	c.Data(http.StatusOK, constants.ContentTypeJSON, b)
}
