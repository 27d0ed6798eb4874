package storage

import (
	"context"
	"errors"

	"github.com/littbk/rpg-battle/internal/game"
)

var (
	// ErrNotFound is returned when no row matches a lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateName is returned when a write collides with another
	// combatant's normalized name.
	ErrDuplicateName = errors.New("duplicate combatant name")
)

// Repository is the durable store for combatants and per-channel encounter
// state. Combatants are addressed by their normalized name (NameKey).
// Implementations perform each method as one atomic write; callers are
// responsible for serializing read-modify-write sequences.
type Repository interface {
	CreateCombatant(ctx context.Context, c *game.Combatant) error
	GetCombatantByKey(ctx context.Context, key string) (*game.Combatant, error)
	// SaveCombatant persists every column of an existing record.
	SaveCombatant(ctx context.Context, c *game.Combatant) error
	// SaveCombatants persists several records in one transaction.
	SaveCombatants(ctx context.Context, cs []*game.Combatant) error
	DeleteCombatantByKey(ctx context.Context, key string) error
	ListCombatants(ctx context.Context) ([]game.Combatant, error)
	// ListActiveCombatants scans for active records, ordered by id.
	ListActiveCombatants(ctx context.Context) ([]game.Combatant, error)
	FindActiveByController(ctx context.Context, controllerID string) (*game.Combatant, error)

	GetEncounter(ctx context.Context, channelID string) (*game.Encounter, error)
	// SetEncounterActing upserts the acting override for a channel. An
	// empty name clears it.
	SetEncounterActing(ctx context.Context, channelID, actingName string) error
}
