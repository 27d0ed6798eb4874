package engine

import (
	"sort"

	"github.com/littbk/rpg-battle/internal/game"
)

// ActingStep is the initiative forced onto the combatant named by the
// facilitator override so it is shown first.
const ActingStep = 9999

// TurnOrderEntry is the slice of a combatant the turn order needs.
type TurnOrderEntry struct {
	Name           string `json:"name"`
	BattlerID      string `json:"battler_id"`
	InitiativeStep int    `json:"initiative_step"`
}

// TurnOrderResult is the computed order. Current acts now; OnDeck follows in
// order. Empty is set when nobody is active.
type TurnOrderResult struct {
	Current *TurnOrderEntry  `json:"current"`
	OnDeck  []TurnOrderEntry `json:"on_deck"`
	Empty   bool             `json:"empty"`
}

// Sequence returns the full order, current first.
func (r TurnOrderResult) Sequence() []TurnOrderEntry {
	if r.Current == nil {
		return nil
	}
	out := make([]TurnOrderEntry, 0, len(r.OnDeck)+1)
	out = append(out, *r.Current)
	return append(out, r.OnDeck...)
}

// EntriesFromCombatants projects the active combatants of cs into turn
// order entries, preserving input order. Inactive records are skipped.
func EntriesFromCombatants(cs []game.Combatant) []TurnOrderEntry {
	out := make([]TurnOrderEntry, 0, len(cs))
	for i := range cs {
		if !cs[i].Active {
			continue
		}
		out = append(out, TurnOrderEntry{
			Name:           cs[i].Name,
			BattlerID:      cs[i].BattlerID,
			InitiativeStep: cs[i].InitiativeStep,
		})
	}
	return out
}

// ComputeTurnOrder orders roster by initiative, highest first. When acting
// exactly matches an entry name (case-sensitive, as stored), that entry is
// moved to the front with ActingStep; an unknown acting name is ignored.
// Equal steps keep their roster order. The input slice is not modified.
func ComputeTurnOrder(roster []TurnOrderEntry, acting string) TurnOrderResult {
	if len(roster) == 0 {
		return TurnOrderResult{OnDeck: []TurnOrderEntry{}, Empty: true}
	}
	rest := make([]TurnOrderEntry, 0, len(roster))
	var prioritized *TurnOrderEntry
	for i := range roster {
		if prioritized == nil && acting != "" && roster[i].Name == acting {
			e := roster[i]
			e.InitiativeStep = ActingStep
			prioritized = &e
			continue
		}
		rest = append(rest, roster[i])
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].InitiativeStep > rest[j].InitiativeStep
	})
	if prioritized != nil {
		return TurnOrderResult{Current: prioritized, OnDeck: rest}
	}
	current := rest[0]
	return TurnOrderResult{Current: &current, OnDeck: rest[1:]}
}
