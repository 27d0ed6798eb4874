package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/dedupe"
	"github.com/littbk/rpg-battle/internal/engine"
	"github.com/littbk/rpg-battle/internal/game"
	"github.com/littbk/rpg-battle/internal/logging"
	"github.com/littbk/rpg-battle/internal/storage"
)

// EncounterRepo is the repository surface used by BattleQueue.
type EncounterRepo interface {
	GetEncounter(ctx context.Context, channelID string) (*game.Encounter, error)
	SetEncounterActing(ctx context.Context, channelID, actingName string) error
	ListActiveCombatants(ctx context.Context) ([]game.Combatant, error)
}

// BattleQueue computes the turn order shown for a channel and stores the
// facilitator's acting override.
type BattleQueue struct {
	repo EncounterRepo
}

func NewBattleQueue(repo EncounterRepo) *BattleQueue {
	return &BattleQueue{repo: repo}
}

// TurnOrder returns the current order for channelID. A channel without an
// encounter row has no override. Concurrent polls for one channel share a
// single computation.
func (q *BattleQueue) TurnOrder(ctx context.Context, channelID string) (engine.TurnOrderResult, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return engine.TurnOrderResult{}, fmt.Errorf("%w: channel is required", ErrInvalidInput)
	}
	v, err, _ := dedupe.QueueGroup.Do(dedupe.Key(channelID), func() (interface{}, error) {
		return q.compute(context.WithoutCancel(ctx), channelID)
	})
	if err != nil {
		return engine.TurnOrderResult{}, err
	}
	return v.(engine.TurnOrderResult), nil
}

func (q *BattleQueue) compute(ctx context.Context, channelID string) (engine.TurnOrderResult, error) {
	acting := ""
	enc, err := q.repo.GetEncounter(ctx, channelID)
	switch {
	case err == nil:
		acting = enc.ActingName
	case errors.Is(err, storage.ErrNotFound):
	default:
		return engine.TurnOrderResult{}, err
	}
	roster, err := q.repo.ListActiveCombatants(ctx)
	if err != nil {
		return engine.TurnOrderResult{}, err
	}
	return engine.ComputeTurnOrder(engine.EntriesFromCombatants(roster), acting), nil
}

// SetActing forces name to act first in channelID. The name is matched
// exactly against the roster when the order is computed.
func (q *BattleQueue) SetActing(ctx context.Context, channelID, name string) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: channel and name are required", ErrInvalidInput)
	}
	if err := q.repo.SetEncounterActing(ctx, channelID, name); err != nil {
		return err
	}
	dedupe.MarkWrite()
	logging.Info("acting override set", logging.Fields{
		constants.LogFieldChannel: channelID,
		constants.LogFieldActing:  name,
	})
	return nil
}

// ClearActing removes the override for channelID.
func (q *BattleQueue) ClearActing(ctx context.Context, channelID string) error {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return fmt.Errorf("%w: channel is required", ErrInvalidInput)
	}
	if err := q.repo.SetEncounterActing(ctx, channelID, ""); err != nil {
		return err
	}
	dedupe.MarkWrite()
	logging.Info("acting override cleared", logging.Fields{constants.LogFieldChannel: channelID})
	return nil
}
