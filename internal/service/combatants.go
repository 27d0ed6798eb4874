package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/dedupe"
	"github.com/littbk/rpg-battle/internal/engine"
	"github.com/littbk/rpg-battle/internal/game"
	"github.com/littbk/rpg-battle/internal/keys"
	"github.com/littbk/rpg-battle/internal/logging"
	"github.com/littbk/rpg-battle/internal/storage"
)

// maxLinkAttempts bounds how often an update re-reads a record whose link
// changed while it waited for the pair lock.
const maxLinkAttempts = 3

const reasonRosterActivation = "controlled records are activated through the roster"

// CombatantRepo is the minimal repository interface required by
// CombatantStore. Using a small interface simplifies testing.
type CombatantRepo interface {
	CreateCombatant(ctx context.Context, c *game.Combatant) error
	GetCombatantByKey(ctx context.Context, key string) (*game.Combatant, error)
	SaveCombatant(ctx context.Context, c *game.Combatant) error
	DeleteCombatantByKey(ctx context.Context, key string) error
	ListCombatants(ctx context.Context) ([]game.Combatant, error)
}

// ProfileFiles stores the on-disk profile document of each combatant.
type ProfileFiles interface {
	Read(key string) ([]byte, error)
	Remove(key string) error
	Rename(oldKey, newKey string) error
}

// UpdateResult is returned by every write. Rejected lists the patch keys
// that were not applied; Propagated reports whether the twin was written.
type UpdateResult struct {
	Combatant  *game.Combatant     `json:"combatant"`
	Rejected   []engine.FieldError `json:"rejected,omitempty"`
	Propagated bool                `json:"propagated"`
}

type applyFunc func(c *game.Combatant, p game.Patch) (game.Patch, []engine.FieldError)

// CombatantStore owns every write to combatant records. Writes to one
// name, and to its twin, are serialized through the shared KeyedLocker.
type CombatantStore struct {
	repo     CombatantRepo
	profiles ProfileFiles
	locks    *KeyedLocker
	template game.Combatant
}

// NewCombatantStore builds a store. profiles may be nil; template seeds
// every created record.
func NewCombatantStore(repo CombatantRepo, profiles ProfileFiles, locks *KeyedLocker, template game.Combatant) *CombatantStore {
	if locks == nil {
		locks = NewKeyedLocker()
	}
	template.ID = 0
	template.Name = ""
	return &CombatantStore{repo: repo, profiles: profiles, locks: locks, template: template}
}

// Create persists a new record seeded from the template plus initial.
// Malformed initial fields are rejected individually.
func (s *CombatantStore) Create(ctx context.Context, name string, initial game.Patch) (*UpdateResult, error) {
	key := keys.NameKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	unlock := s.locks.Lock(key)
	defer unlock()

	if _, err := s.repo.GetCombatantByKey(ctx, key); err == nil {
		return nil, fmt.Errorf("combatant %q: %w", name, ErrAlreadyExists)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	c := s.template.Clone()
	fields := make(game.Patch, len(initial))
	for k, v := range initial {
		if game.Field(k) == game.FieldName {
			continue
		}
		fields[k] = v
	}
	fields, guarded := guardActivation(c, fields, engine.ApplyOverwrite)
	_, rejected := engine.ApplyOverwrite(c, fields)
	rejected = append(guarded, rejected...)
	c.Name = name
	engine.Normalize(c)

	if err := s.repo.CreateCombatant(ctx, c); err != nil {
		return nil, storageErr(err, name)
	}
	dedupe.MarkWrite()
	if len(rejected) > 0 {
		logging.Warn("combatant created with rejected fields", nil, logging.Fields{
			constants.LogFieldName:     c.Name,
			constants.LogFieldRejected: rejected,
		})
	}
	logging.Info("combatant created", logging.Fields{constants.LogFieldName: c.Name})
	return &UpdateResult{Combatant: c, Rejected: rejected}, nil
}

// Read returns the record for name or an ErrNotFound error.
func (s *CombatantStore) Read(ctx context.Context, name string) (*game.Combatant, error) {
	key := keys.NameKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	c, err := s.repo.GetCombatantByKey(ctx, key)
	if err != nil {
		return nil, storageErr(err, name)
	}
	return c, nil
}

// OverwriteUpdate applies patch field by field, clamps, persists and then
// mirrors the accepted game.OverwriteMirrorFields onto the twin.
func (s *CombatantStore) OverwriteUpdate(ctx context.Context, name string, patch game.Patch) (*UpdateResult, error) {
	return s.update(ctx, name, patch, engine.ApplyOverwrite, game.OverwriteMirrorFields)
}

// AdditiveUpdate adds deltas to the game.AdditiveFields of the record and
// sends the same deltas to the twin.
func (s *CombatantStore) AdditiveUpdate(ctx context.Context, name string, deltas game.Patch) (*UpdateResult, error) {
	return s.update(ctx, name, deltas, engine.ApplyAdditive, game.AdditiveFields)
}

func (s *CombatantStore) update(ctx context.Context, name string, patch game.Patch, apply applyFunc, mirror game.FieldSet) (*UpdateResult, error) {
	key := keys.NameKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(patch) == 0 {
		return nil, rejectedErr(nil)
	}
	for attempt := 1; attempt <= maxLinkAttempts; attempt++ {
		cur, err := s.repo.GetCombatantByKey(ctx, key)
		if err != nil {
			return nil, storageErr(err, name)
		}
		twinKey := plannedTwin(cur, patch, apply)

		unlock := s.locks.Lock(key, twinKey)
		res, retry, err := s.updateLocked(ctx, name, key, twinKey, patch, apply, mirror)
		unlock()
		if !retry {
			return res, err
		}
		logging.Info("link changed while waiting for lock; retrying", logging.Fields{
			constants.LogFieldName:    name,
			constants.LogFieldAttempt: attempt,
		})
	}
	return nil, fmt.Errorf("combatant %q: %w", name, ErrLinkContention)
}

// updateLocked runs with key and twinKey held. retry is true when the
// stored link no longer matches the locked twin.
func (s *CombatantStore) updateLocked(ctx context.Context, name, key, twinKey string, patch game.Patch, apply applyFunc, mirror game.FieldSet) (res *UpdateResult, retry bool, err error) {
	c, err := s.repo.GetCombatantByKey(ctx, key)
	if err != nil {
		return nil, false, storageErr(err, name)
	}
	if plannedTwin(c, patch, apply) != twinKey {
		return nil, true, nil
	}

	patch, guarded := guardActivation(c, patch, apply)
	accepted, rejected := apply(c, patch)
	rejected = append(guarded, rejected...)
	if len(accepted) == 0 {
		return nil, false, rejectedErr(rejected)
	}
	newKey := keys.NameKey(c.Name)
	if newKey == "" {
		return nil, false, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	engine.Normalize(c)
	if err := s.repo.SaveCombatant(ctx, c); err != nil {
		return nil, false, storageErr(err, c.Name)
	}
	dedupe.MarkWrite()
	if newKey != key && s.profiles != nil {
		if err := s.profiles.Rename(key, newKey); err != nil {
			logging.Error("failed to move profile after rename", err, logging.Fields{constants.LogFieldKey: key, constants.LogFieldName: c.Name})
		}
	}
	if len(rejected) > 0 {
		logging.Warn("patch fields rejected", nil, logging.Fields{
			constants.LogFieldName:     c.Name,
			constants.LogFieldRejected: rejected,
		})
	}

	res = &UpdateResult{Combatant: c, Rejected: rejected}
	if twinKey != "" && twinKey != key && twinKey != newKey {
		res.Propagated = s.propagate(ctx, c, twinKey, mirror.Filter(accepted), apply)
	}
	return res, false, nil
}

// propagate mirrors fields onto the twin. It writes the twin directly and
// never follows the twin's own link. Failures are logged and never undo
// the primary write.
func (s *CombatantStore) propagate(ctx context.Context, src *game.Combatant, twinKey string, fields game.Patch, apply applyFunc) bool {
	if len(fields) == 0 {
		return false
	}
	lf := logging.Fields{constants.LogFieldName: src.Name, constants.LogFieldTwin: src.LinkedName}

	twin, err := s.repo.GetCombatantByKey(ctx, twinKey)
	if errors.Is(err, storage.ErrNotFound) {
		logging.Info("linked combatant missing; propagation skipped", lf)
		return false
	}
	if err != nil {
		logging.Error("failed to load linked combatant", err, lf)
		return false
	}
	if _, rejected := apply(twin, fields); len(rejected) > 0 {
		lf[constants.LogFieldRejected] = rejected
		logging.Warn("linked combatant rejected mirrored fields", nil, lf)
	}
	engine.Normalize(twin)
	if err := s.repo.SaveCombatant(ctx, twin); err != nil {
		logging.Error("failed to save linked combatant", err, lf)
		return false
	}
	dedupe.MarkWrite()
	return true
}

// guardActivation drops an "active" key that would turn on a record with a
// controller. Those records are activated through Roster.ActivateExclusively
// so a participant keeps at most one active record. Deactivation and mobs
// are unaffected.
func guardActivation(c *game.Combatant, patch game.Patch, apply applyFunc) (game.Patch, []engine.FieldError) {
	if _, ok := patch[string(game.FieldActive)]; !ok || c.Active {
		return patch, nil
	}
	probe := c.Clone()
	apply(probe, patch)
	if !probe.Active || probe.ControllerID == "" {
		return patch, nil
	}
	kept := make(game.Patch, len(patch)-1)
	for k, v := range patch {
		if k != string(game.FieldActive) {
			kept[k] = v
		}
	}
	return kept, []engine.FieldError{{Field: string(game.FieldActive), Reason: reasonRosterActivation}}
}

// plannedTwin returns the twin key the record links to once patch has been
// applied, without touching c.
func plannedTwin(c *game.Combatant, patch game.Patch, apply applyFunc) string {
	probe := c.Clone()
	apply(probe, patch)
	return keys.NameKey(probe.LinkedName)
}

// Delete removes the record and its profile document. The twin is left
// untouched.
func (s *CombatantStore) Delete(ctx context.Context, name string) error {
	key := keys.NameKey(name)
	if key == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.repo.DeleteCombatantByKey(ctx, key); err != nil {
		return storageErr(err, name)
	}
	dedupe.MarkWrite()
	if s.profiles != nil {
		if err := s.profiles.Remove(key); err != nil {
			logging.Error("failed to remove profile", err, logging.Fields{constants.LogFieldKey: key})
		}
	}
	logging.Info("combatant deleted", logging.Fields{constants.LogFieldName: name})
	return nil
}

// List returns every stored record ordered by id.
func (s *CombatantStore) List(ctx context.Context) ([]game.Combatant, error) {
	return s.repo.ListCombatants(ctx)
}

// FindByPartialName returns the first record whose normalized name
// contains the normalized fragment.
func (s *CombatantStore) FindByPartialName(ctx context.Context, fragment string) (*game.Combatant, error) {
	if keys.NameKey(fragment) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	all, err := s.repo.ListCombatants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if keys.ContainsName(all[i].Name, fragment) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("combatant matching %q: %w", fragment, ErrNotFound)
}

// Profile returns the raw profile document stored for name.
func (s *CombatantStore) Profile(ctx context.Context, name string) ([]byte, error) {
	key := keys.NameKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if s.profiles == nil {
		return nil, fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	b, err := s.profiles.Read(key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("profile %q: %w", name, ErrNotFound)
		}
		return nil, storageErr(err, name)
	}
	return b, nil
}
