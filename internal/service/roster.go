package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/dedupe"
	"github.com/littbk/rpg-battle/internal/game"
	"github.com/littbk/rpg-battle/internal/keys"
	"github.com/littbk/rpg-battle/internal/logging"
	"github.com/littbk/rpg-battle/internal/storage"
)

// RosterRepo is the repository surface used by Roster.
type RosterRepo interface {
	GetCombatantByKey(ctx context.Context, key string) (*game.Combatant, error)
	SaveCombatant(ctx context.Context, c *game.Combatant) error
	SaveCombatants(ctx context.Context, cs []*game.Combatant) error
	ListCombatants(ctx context.Context) ([]game.Combatant, error)
	ListActiveCombatants(ctx context.Context) ([]game.Combatant, error)
	FindActiveByController(ctx context.Context, controllerID string) (*game.Combatant, error)
}

// Roster answers which combatants are active and which one belongs to a
// participant. It shares its KeyedLocker with CombatantStore.
type Roster struct {
	repo  RosterRepo
	locks *KeyedLocker
}

func NewRoster(repo RosterRepo, locks *KeyedLocker) *Roster {
	if locks == nil {
		locks = NewKeyedLocker()
	}
	return &Roster{repo: repo, locks: locks}
}

// ListActive returns every active record ordered by id. Concurrent scans
// share one query.
func (r *Roster) ListActive(ctx context.Context) ([]game.Combatant, error) {
	v, err, _ := dedupe.RosterGroup.Do(dedupe.Key("active"), func() (interface{}, error) {
		return r.repo.ListActiveCombatants(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	shared := v.([]game.Combatant)
	out := make([]game.Combatant, len(shared))
	copy(out, shared)
	return out, nil
}

// FindActiveByController returns the active record controlled by
// participantID.
func (r *Roster) FindActiveByController(ctx context.Context, participantID string) (*game.Combatant, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	c, err := r.repo.FindActiveByController(ctx, participantID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("active combatant for participant %s: %w", participantID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// owns reports whether p controls c. Records created before ids were
// tracked carry only the username.
func owns(p game.Participant, c *game.Combatant) bool {
	if c.ControllerID != "" {
		return c.ControllerID == p.ID
	}
	return p.Username != "" && keys.SameName(c.ControllerName, p.Username)
}

func (r *Roster) owned(ctx context.Context, p game.Participant) ([]*game.Combatant, error) {
	all, err := r.repo.ListCombatants(ctx)
	if err != nil {
		return nil, err
	}
	var out []*game.Combatant
	for i := range all {
		if owns(p, &all[i]) {
			out = append(out, &all[i])
		}
	}
	return out, nil
}

// ActivateExclusively marks the participant's record called name as the
// only active one among the participant's records. Records controlled by
// other participants are never touched. Legacy records matched by username
// get their ControllerID backfilled.
func (r *Roster) ActivateExclusively(ctx context.Context, p game.Participant, name string) (*game.Combatant, error) {
	key := keys.NameKey(name)
	if key == "" || strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: participant id and name are required", ErrInvalidInput)
	}

	for attempt := 1; attempt <= maxLinkAttempts; attempt++ {
		before, err := r.owned(ctx, p)
		if err != nil {
			return nil, err
		}
		lockKeys := make([]string, 0, len(before)+1)
		locked := make(map[string]struct{}, len(before)+1)
		for _, c := range append(before, &game.Combatant{Name: name}) {
			k := keys.NameKey(c.Name)
			lockKeys = append(lockKeys, k)
			locked[k] = struct{}{}
		}

		unlock := r.locks.Lock(lockKeys...)
		c, retry, err := r.activateLocked(ctx, p, name, key, locked)
		unlock()
		if !retry {
			return c, err
		}
	}
	return nil, fmt.Errorf("roster for %q: %w", p.ID, ErrLinkContention)
}

func (r *Roster) activateLocked(ctx context.Context, p game.Participant, name, key string, locked map[string]struct{}) (*game.Combatant, bool, error) {
	records, err := r.owned(ctx, p)
	if err != nil {
		return nil, false, err
	}
	var target *game.Combatant
	for _, c := range records {
		if _, ok := locked[keys.NameKey(c.Name)]; !ok {
			return nil, true, nil
		}
		if keys.NameKey(c.Name) == key {
			target = c
		}
	}
	if target == nil {
		return nil, false, fmt.Errorf("combatant %q for participant %s: %w", name, p.ID, ErrNotFound)
	}

	var changed []*game.Combatant
	for _, c := range records {
		dirty := false
		if want := c == target; c.Active != want {
			c.Active = want
			dirty = true
		}
		if c.ControllerID == "" {
			c.ControllerID = p.ID
			dirty = true
		}
		if dirty {
			changed = append(changed, c)
		}
	}
	if len(changed) > 0 {
		if err := r.repo.SaveCombatants(ctx, changed); err != nil {
			return nil, false, storageErr(err, name)
		}
		dedupe.MarkWrite()
	}
	logging.Info("combatant activated", logging.Fields{
		constants.LogFieldName:   target.Name,
		constants.LogFieldPartID: p.ID,
	})
	return target, false, nil
}

// Give reassigns the first record whose name contains fragment to the
// participant. The record is deactivated so the new controller keeps at
// most one active record.
func (r *Roster) Give(ctx context.Context, fragment string, to game.Participant) (*game.Combatant, error) {
	if keys.NameKey(fragment) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(to.ID) == "" && strings.TrimSpace(to.Username) == "" {
		return nil, fmt.Errorf("%w: participant is required", ErrInvalidInput)
	}
	all, err := r.repo.ListCombatants(ctx)
	if err != nil {
		return nil, err
	}
	var key string
	for i := range all {
		if keys.ContainsName(all[i].Name, fragment) {
			key = keys.NameKey(all[i].Name)
			break
		}
	}
	if key == "" {
		return nil, fmt.Errorf("combatant matching %q: %w", fragment, ErrNotFound)
	}

	unlock := r.locks.Lock(key)
	defer unlock()
	c, err := r.repo.GetCombatantByKey(ctx, key)
	if err != nil {
		return nil, storageErr(err, fragment)
	}
	c.ControllerID = to.ID
	c.ControllerName = to.Username
	c.Active = false
	if err := r.repo.SaveCombatant(ctx, c); err != nil {
		return nil, storageErr(err, c.Name)
	}
	dedupe.MarkWrite()
	logging.Info("combatant reassigned", logging.Fields{
		constants.LogFieldName:     c.Name,
		constants.LogFieldPartID:   to.ID,
		constants.LogFieldUsername: to.Username,
	})
	return c, nil
}

// ResolveForParticipant returns the record a participant acts with. Bots
// act as the record named after their username; humans act with their
// active record. The reserved mob username never resolves.
func (r *Roster) ResolveForParticipant(ctx context.Context, p game.Participant) (*game.Combatant, error) {
	if keys.SameName(p.Username, game.MobUsername) {
		return nil, fmt.Errorf("participant %q: %w", p.Username, ErrNotFound)
	}
	if p.Bot {
		key := keys.NameKey(p.Username)
		if key == "" {
			return nil, fmt.Errorf("%w: bot username is required", ErrInvalidInput)
		}
		c, err := r.repo.GetCombatantByKey(ctx, key)
		if err != nil {
			return nil, storageErr(err, p.Username)
		}
		return c, nil
	}
	if p.ID != "" {
		c, err := r.FindActiveByController(ctx, p.ID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	// Legacy records carry only the username.
	active, err := r.repo.ListActiveCombatants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range active {
		if active[i].ControllerID == "" && owns(p, &active[i]) {
			return &active[i], nil
		}
	}
	return nil, fmt.Errorf("active combatant for %q: %w", p.Username, ErrNotFound)
}
