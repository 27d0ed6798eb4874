package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/littbk/rpg-battle/internal/game"
	"github.com/littbk/rpg-battle/internal/keys"
	"github.com/littbk/rpg-battle/internal/storage"
)

// mockRepo is an in-memory storage.Repository. It hands out copies so
// callers cannot mutate stored state without saving.
type mockRepo struct {
	mu         sync.Mutex
	nextID     uint
	combatants map[uint]game.Combatant
	encounters map[string]game.Encounter
	saves      map[string]int
	failSave   map[string]error
}

var _ storage.Repository = (*mockRepo)(nil)

func newMockRepo(seed ...game.Combatant) *mockRepo {
	m := &mockRepo{
		combatants: make(map[uint]game.Combatant),
		encounters: make(map[string]game.Encounter),
		saves:      make(map[string]int),
		failSave:   make(map[string]error),
	}
	for i := range seed {
		c := seed[i]
		if err := m.CreateCombatant(context.Background(), &c); err != nil {
			panic(err)
		}
	}
	return m
}

func (m *mockRepo) findLocked(key string) (game.Combatant, bool) {
	for _, c := range m.combatants {
		if c.NameKey == key {
			return c, true
		}
	}
	return game.Combatant{}, false
}

func (m *mockRepo) checkUniqueLocked(c *game.Combatant) error {
	c.NameKey = keys.NameKey(c.Name)
	if c.NameKey == "" {
		return errors.New("empty name key")
	}
	for id, other := range m.combatants {
		if id != c.ID && other.NameKey == c.NameKey {
			return storage.ErrDuplicateName
		}
	}
	return nil
}

func (m *mockRepo) CreateCombatant(ctx context.Context, c *game.Combatant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = 0
	if err := m.checkUniqueLocked(c); err != nil {
		return err
	}
	m.nextID++
	c.ID = m.nextID
	m.combatants[c.ID] = *c
	return nil
}

func (m *mockRepo) GetCombatantByKey(ctx context.Context, key string) (*game.Combatant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.findLocked(key)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (m *mockRepo) saveLocked(c *game.Combatant) error {
	if _, ok := m.combatants[c.ID]; !ok {
		return storage.ErrNotFound
	}
	if err := m.failSave[keys.NameKey(c.Name)]; err != nil {
		return err
	}
	if err := m.checkUniqueLocked(c); err != nil {
		return err
	}
	m.combatants[c.ID] = *c
	m.saves[c.NameKey]++
	return nil
}

func (m *mockRepo) SaveCombatant(ctx context.Context, c *game.Combatant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(c)
}

func (m *mockRepo) SaveCombatants(ctx context.Context, cs []*game.Combatant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make(map[uint]game.Combatant, len(m.combatants))
	for id, c := range m.combatants {
		snapshot[id] = c
	}
	for _, c := range cs {
		if err := m.saveLocked(c); err != nil {
			m.combatants = snapshot
			return err
		}
	}
	return nil
}

func (m *mockRepo) DeleteCombatantByKey(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.findLocked(key)
	if !ok {
		return storage.ErrNotFound
	}
	delete(m.combatants, c.ID)
	return nil
}

func (m *mockRepo) sortedLocked(keep func(game.Combatant) bool) []game.Combatant {
	out := make([]game.Combatant, 0, len(m.combatants))
	for _, c := range m.combatants {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockRepo) ListCombatants(ctx context.Context) ([]game.Combatant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(func(game.Combatant) bool { return true }), nil
}

func (m *mockRepo) ListActiveCombatants(ctx context.Context) ([]game.Combatant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedLocked(func(c game.Combatant) bool { return c.Active }), nil
}

func (m *mockRepo) FindActiveByController(ctx context.Context, controllerID string) (*game.Combatant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := m.sortedLocked(func(c game.Combatant) bool { return c.Active && c.ControllerID == controllerID })
	if len(found) == 0 {
		return nil, storage.ErrNotFound
	}
	return &found[0], nil
}

func (m *mockRepo) GetEncounter(ctx context.Context, channelID string) (*game.Encounter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.encounters[channelID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &e, nil
}

func (m *mockRepo) SetEncounterActing(ctx context.Context, channelID, actingName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encounters[channelID] = game.Encounter{ChannelID: channelID, ActingName: actingName}
	return nil
}

// get is a test helper that fails loudly on a missing record.
func (m *mockRepo) get(key string) game.Combatant {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.findLocked(keys.NameKey(key))
	if !ok {
		panic("missing combatant " + key)
	}
	return c
}

func (m *mockRepo) saveCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[keys.NameKey(key)]
}

// mockProfiles records profile operations in memory.
type mockProfiles struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (p *mockProfiles) Read(key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.docs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

func (p *mockProfiles) Remove(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.docs, key)
	return nil
}

func (p *mockProfiles) Rename(oldKey, newKey string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if b, ok := p.docs[oldKey]; ok {
		p.docs[newKey] = b
		delete(p.docs, oldKey)
	}
	return nil
}
