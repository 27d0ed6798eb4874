package api

import (
	"github.com/gin-gonic/gin"

	"github.com/littbk/rpg-battle/internal/constants"
)

// RegisterRoutes wires every endpoint onto router.
func RegisterRoutes(router *gin.Engine, h *CombatHandler, auth *AuthHandler) {
	router.GET("/", Health)
	router.GET(constants.RouteHealth, Health)

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.POST(constants.RouteToken, auth.ExchangeToken)

		apiRoutes.GET(constants.RouteCombatants, h.ListCombatants)
		apiRoutes.POST(constants.RouteCombatants, h.CreateCombatant)
		apiRoutes.GET(constants.RouteCombatantByName, h.GetCombatant)
		apiRoutes.PATCH(constants.RouteCombatantByName, h.PatchCombatant)
		apiRoutes.DELETE(constants.RouteCombatantByName, h.DeleteCombatant)
		apiRoutes.POST(constants.RouteCombatantAdd, h.AddToCombatant)
		apiRoutes.GET(constants.RouteCombatantProfile, h.GetCombatantProfile)

		apiRoutes.GET(constants.RouteRosterActive, h.ListActive)
		apiRoutes.GET(constants.RouteRosterParticipant, h.GetParticipantCombatant)
		apiRoutes.GET(constants.RouteRosterResolve, h.ResolveParticipant)
		apiRoutes.POST(constants.RouteRosterActivate, h.Activate)
		apiRoutes.POST(constants.RouteRosterGive, h.Give)

		apiRoutes.GET(constants.RouteBattleQueue, h.GetBattleQueue)
		apiRoutes.GET(constants.RouteBattleQueueStream, h.StreamBattleQueue)
		apiRoutes.PUT(constants.RouteBattleQueueActing, h.SetActing)
		apiRoutes.DELETE(constants.RouteBattleQueueActing, h.ClearActing)
	}
}
