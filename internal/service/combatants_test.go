package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/littbk/rpg-battle/internal/game"
)

func newTestStore(seed ...game.Combatant) (*CombatantStore, *mockRepo, *mockProfiles) {
	repo := newMockRepo(seed...)
	profiles := &mockProfiles{docs: map[string][]byte{}}
	tmpl := game.Combatant{HPMax: 10, HPCurrent: 10, EnergyMax: 5, EnergyCurrent: 5, LifeDice: "1d6"}
	return NewCombatantStore(repo, profiles, NewKeyedLocker(), tmpl), repo, profiles
}

func TestCreate_DuplicateNameFails(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.Create(ctx, "Rex", game.Patch{"hp_max": 20}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	for _, name := range []string{"Rex", "REX", "  rex "} {
		_, err := s.Create(ctx, name, nil)
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("create %q: expected ErrAlreadyExists, got %v", name, err)
		}
	}
}

func TestCreate_SeedsFromTemplate(t *testing.T) {
	s, repo, _ := newTestStore()
	res, err := s.Create(context.Background(), "Rex", game.Patch{
		"hp_current": 50,
		"money":      "lots",
		"name":       "Ignored",
		"battler_id": "r1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := repo.get("rex")
	if c.Name != "Rex" || c.LifeDice != "1d6" || c.BattlerID != "r1" {
		t.Fatalf("unexpected record: %+v", c)
	}
	if c.HPCurrent != 10 {
		t.Fatalf("expected hp clamped to template max 10, got %d", c.HPCurrent)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Field != "money" {
		t.Fatalf("expected money rejected, got %+v", res.Rejected)
	}
}

func TestCreate_EmptyNameIsInvalid(t *testing.T) {
	s, _, _ := newTestStore()
	if _, err := s.Create(context.Background(), "   ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRead_MissingIsNotFound(t *testing.T) {
	s, _, _ := newTestStore()
	if _, err := s.Read(context.Background(), "Ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverwriteUpdate_ClampsAndRejectsPerField(t *testing.T) {
	s, repo, _ := newTestStore(game.Combatant{Name: "Rex", HPMax: 100, HPCurrent: 80, EnergyMax: 10})
	res, err := s.OverwriteUpdate(context.Background(), "rex", game.Patch{
		"hp_current":     500,
		"energy_current": "x",
		"position":       "front",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := repo.get("Rex")
	if c.HPCurrent != 100 {
		t.Fatalf("expected hp clamped to 100, got %d", c.HPCurrent)
	}
	if c.Position != "front" {
		t.Fatalf("expected position applied, got %q", c.Position)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Field != "energy_current" {
		t.Fatalf("expected energy_current rejected, got %+v", res.Rejected)
	}
	if res.Propagated {
		t.Fatalf("unlinked record must not propagate")
	}
}

func TestOverwriteUpdate_AllFieldsRejected(t *testing.T) {
	s, repo, _ := newTestStore(game.Combatant{Name: "Rex", HPMax: 10})
	_, err := s.OverwriteUpdate(context.Background(), "Rex", game.Patch{"hp_current": "lots"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.saveCount("Rex") != 0 {
		t.Fatalf("nothing should be saved")
	}
}

func TestOverwriteUpdate_MissingIsNotFound(t *testing.T) {
	s, _, _ := newTestStore()
	_, err := s.OverwriteUpdate(context.Background(), "Ghost", game.Patch{"money": 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverwriteUpdate_PropagatesAllowListOnly(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "Luz", LinkedName: "Sombra", ControllerID: "p1", InitiativeStep: 5, HPMax: 100},
		game.Combatant{Name: "Sombra", ControllerID: "p2", InitiativeStep: 7, HPMax: 50},
	)
	res, err := s.OverwriteUpdate(context.Background(), "Luz", game.Patch{
		"position":        "flank",
		"hp_current":      70,
		"controller_id":   "p9",
		"initiative_step": 99,
		"active":          true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Propagated {
		t.Fatalf("expected propagation to twin")
	}
	twin := repo.get("Sombra")
	if twin.Position != "flank" {
		t.Fatalf("position should mirror, got %q", twin.Position)
	}
	if twin.HPCurrent != 50 {
		t.Fatalf("twin hp should clamp to its own max 50, got %d", twin.HPCurrent)
	}
	if twin.ControllerID != "p2" || twin.InitiativeStep != 7 || twin.Active {
		t.Fatalf("identity fields must not mirror: %+v", twin)
	}
}

func TestOverwriteUpdate_RenameDoesNotPropagate(t *testing.T) {
	s, repo, profiles := newTestStore(
		game.Combatant{Name: "Luz", LinkedName: "Sombra"},
		game.Combatant{Name: "Sombra"},
	)
	profiles.docs["luz"] = []byte(`{"bio":"x"}`)

	res, err := s.OverwriteUpdate(context.Background(), "Luz", game.Patch{"name": "Aurora"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Propagated {
		t.Fatalf("name must never propagate")
	}
	if repo.get("Aurora").LinkedName != "Sombra" {
		t.Fatalf("renamed record lost its link")
	}
	if repo.get("Sombra").Name != "Sombra" {
		t.Fatalf("twin name changed")
	}
	if _, ok := profiles.docs["aurora"]; !ok {
		t.Fatalf("profile should follow the rename")
	}
}

func TestOverwriteUpdate_RenameCollision(t *testing.T) {
	s, _, _ := newTestStore(game.Combatant{Name: "Luz"}, game.Combatant{Name: "Sombra"})
	_, err := s.OverwriteUpdate(context.Background(), "Luz", game.Patch{"name": "SOMBRA"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAdditiveUpdate_TwinReceivesSameDeltas(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "Primary", HPCurrent: 80, HPMax: 100, LinkedName: "Twin"},
		game.Combatant{Name: "Twin", HPCurrent: 40, HPMax: 50},
	)
	res, err := s.AdditiveUpdate(context.Background(), "Primary", game.Patch{"hp_current": 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Propagated {
		t.Fatalf("expected propagation")
	}
	if got := repo.get("Primary").HPCurrent; got != 100 {
		t.Fatalf("primary hp: expected 100, got %d", got)
	}
	if got := repo.get("Twin").HPCurrent; got != 50 {
		t.Fatalf("twin hp: expected 50, got %d", got)
	}
}

func TestAdditiveUpdate_DeltaNotTotal(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "Primary", HPCurrent: 80, HPMax: 100, ActionPoints: 1, LinkedName: "Twin"},
		game.Combatant{Name: "Twin", HPCurrent: 10, HPMax: 50, ActionPoints: 3},
	)
	if _, err := s.AdditiveUpdate(context.Background(), "Primary", game.Patch{"hp_current": -5, "action_points": 0.5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twin := repo.get("Twin")
	if twin.HPCurrent != 5 || twin.ActionPoints != 3.5 {
		t.Fatalf("twin should receive deltas: %+v", twin)
	}
}

func TestAdditiveUpdate_OnlyAdditiveFields(t *testing.T) {
	s, repo, _ := newTestStore(game.Combatant{Name: "Rex", HPMax: 10, Money: 3})
	_, err := s.AdditiveUpdate(context.Background(), "Rex", game.Patch{"money": 5})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.get("Rex").Money != 3 {
		t.Fatalf("money must not change")
	}
}

func TestAdditiveUpdate_NaNCoercedToZero(t *testing.T) {
	s, repo, _ := newTestStore(game.Combatant{Name: "Rex", ActionPoints: 2})
	if _, err := s.AdditiveUpdate(context.Background(), "Rex", game.Patch{"action_points": "NaN"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.get("Rex").ActionPoints; got != 0 {
		t.Fatalf("expected NaN coerced to 0, got %v", got)
	}
}

func TestUpdate_DanglingLinkStillWritesPrimary(t *testing.T) {
	s, repo, _ := newTestStore(game.Combatant{Name: "Solo", LinkedName: "Gone", HPMax: 10})
	res, err := s.OverwriteUpdate(context.Background(), "Solo", game.Patch{"position": "rear"})
	if err != nil {
		t.Fatalf("dangling link must not fail the write: %v", err)
	}
	if res.Propagated {
		t.Fatalf("nothing to propagate to")
	}
	if repo.get("Solo").Position != "rear" {
		t.Fatalf("primary write lost")
	}
}

func TestUpdate_TwinFailureKeepsPrimary(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "A", LinkedName: "B"},
		game.Combatant{Name: "B"},
	)
	repo.failSave["b"] = errors.New("disk full")
	res, err := s.OverwriteUpdate(context.Background(), "A", game.Patch{"target": "orc"})
	if err != nil {
		t.Fatalf("propagation failure must not fail the write: %v", err)
	}
	if res.Propagated {
		t.Fatalf("propagation should be reported as failed")
	}
	if repo.get("A").Target != "orc" {
		t.Fatalf("primary write lost")
	}
}

func TestUpdate_MutualLinkIsNotReentrant(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "A", LinkedName: "B"},
		game.Combatant{Name: "B", LinkedName: "A"},
	)
	if _, err := s.OverwriteUpdate(context.Background(), "A", game.Patch{"money": 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.saveCount("A") != 1 || repo.saveCount("B") != 1 {
		t.Fatalf("expected one write per record, got A=%d B=%d", repo.saveCount("A"), repo.saveCount("B"))
	}
	if repo.get("B").Money != 4 {
		t.Fatalf("twin not updated")
	}
}

func TestUpdate_SelfLinkDoesNotPropagate(t *testing.T) {
	s, repo, _ := newTestStore(game.Combatant{Name: "Echo", LinkedName: "ECHO", HPMax: 100, HPCurrent: 10})
	res, err := s.AdditiveUpdate(context.Background(), "Echo", game.Patch{"hp_current": 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Propagated || repo.get("Echo").HPCurrent != 15 {
		t.Fatalf("self link must apply the delta once: %+v", repo.get("Echo"))
	}
}

func TestUpdate_LinkChangedInPatchLocksNewTwin(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "A", LinkedName: "B"},
		game.Combatant{Name: "B"},
		game.Combatant{Name: "C"},
	)
	if _, err := s.OverwriteUpdate(context.Background(), "A", game.Patch{"linked_name": "C", "status1": "poisoned"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.get("C").Status1 != "poisoned" {
		t.Fatalf("new twin should receive mirrored fields")
	}
	if repo.get("B").Status1 != "" {
		t.Fatalf("old twin must not change")
	}
}

func TestConcurrentAdditiveUpdates_NoLostUpdates(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "A", LinkedName: "B", HPMax: 1000},
		game.Combatant{Name: "B", LinkedName: "A", HPMax: 1000},
	)
	const perSide = 40
	var wg sync.WaitGroup
	for i := 0; i < perSide; i++ {
		for _, name := range []string{"A", "B"} {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				if _, err := s.AdditiveUpdate(context.Background(), name, game.Patch{"hp_current": 1}); err != nil {
					t.Errorf("update %s: %v", name, err)
				}
			}(name)
		}
	}
	wg.Wait()

	for _, name := range []string{"A", "B"} {
		if got := repo.get(name).HPCurrent; got != 2*perSide {
			t.Fatalf("%s: expected hp %d, got %d", name, 2*perSide, got)
		}
	}
	if n := s.locks.size(); n != 0 {
		t.Fatalf("expected locks released, %d still held", n)
	}
}

func TestDelete_RemovesRecordAndProfileButNotTwin(t *testing.T) {
	s, repo, profiles := newTestStore(
		game.Combatant{Name: "A", LinkedName: "B"},
		game.Combatant{Name: "B"},
	)
	profiles.docs["a"] = []byte(`{}`)
	ctx := context.Background()

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Read(ctx, "A"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted record to be gone, got %v", err)
	}
	if _, ok := profiles.docs["a"]; ok {
		t.Fatalf("profile should be removed")
	}
	if repo.get("B").Name != "B" {
		t.Fatalf("twin must survive")
	}
	if err := s.Delete(ctx, "A"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.OverwriteUpdate(ctx, "B", game.Patch{"money": 1}); err != nil {
		t.Fatalf("twin still writable: %v", err)
	}
}

func TestFindByPartialName(t *testing.T) {
	s, _, _ := newTestStore(game.Combatant{Name: "Sir Lancelot"}, game.Combatant{Name: "Lady Morgana"})
	ctx := context.Background()
	c, err := s.FindByPartialName(ctx, "LANCE")
	if err != nil || c.Name != "Sir Lancelot" {
		t.Fatalf("expected Sir Lancelot, got %+v (%v)", c, err)
	}
	if _, err := s.FindByPartialName(ctx, "merlin"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.FindByPartialName(ctx, " "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProfile(t *testing.T) {
	s, _, profiles := newTestStore()
	profiles.docs["rex"] = []byte(`{"age":3}`)
	b, err := s.Profile(context.Background(), "REX")
	if err != nil || string(b) != `{"age":3}` {
		t.Fatalf("unexpected profile %q (%v)", b, err)
	}
	if _, err := s.Profile(context.Background(), "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOverwriteUpdate_ControlledActivationGoesThroughRoster(t *testing.T) {
	s, repo, _ := newTestStore(
		game.Combatant{Name: "Knight", ControllerID: "p1", Active: true},
		game.Combatant{Name: "Rogue", ControllerID: "p1"},
		game.Combatant{Name: "Goblin"},
	)
	ctx := context.Background()

	res, err := s.OverwriteUpdate(ctx, "Rogue", game.Patch{"active": true, "position": "rear"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Field != "active" {
		t.Fatalf("expected active rejected, got %+v", res.Rejected)
	}
	if c := repo.get("rogue"); c.Active || c.Position != "rear" {
		t.Fatalf("expected position applied and record still inactive: %+v", c)
	}

	if _, err := s.OverwriteUpdate(ctx, "Rogue", game.Patch{"active": true}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.OverwriteUpdate(ctx, "Knight", game.Patch{"active": false}); err != nil {
		t.Fatalf("deactivation must be allowed: %v", err)
	}
	if _, err := s.OverwriteUpdate(ctx, "Goblin", game.Patch{"active": true}); err != nil || !repo.get("goblin").Active {
		t.Fatalf("mobs must be activatable by patch: %v", err)
	}

	res, err = s.Create(ctx, "Bard", game.Patch{"controller_id": "p1", "active": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.get("bard").Active || len(res.Rejected) != 1 || res.Rejected[0].Field != "active" {
		t.Fatalf("controlled record must be created inactive, got %+v / %+v", repo.get("bard"), res.Rejected)
	}
}
