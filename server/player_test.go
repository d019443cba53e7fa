package server

import (
	"errors"
	"testing"

	"nebula/game"
)

func TestRosterJoinIsUniqueByName(t *testing.T) {
	r := NewRoster()
	a, err := r.Join("A")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if a.ID == "" || a.Name != "A" || a.HasInstance {
		t.Fatalf("unexpected player %+v", a)
	}
	if _, err := r.Join("A"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	b, _ := r.Join("B")
	if b.ID == a.ID {
		t.Fatalf("generated ids must differ")
	}
	players := r.Players()
	if len(players) != 2 || players[0].Name != "A" || players[1].Name != "B" {
		t.Fatalf("unexpected roster %+v", players)
	}
}

func TestRosterMissingPlayer(t *testing.T) {
	r := NewRoster()
	if _, err := r.Touch("x"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("touch: %v", err)
	}
	if err := r.Bind("x", 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("bind: %v", err)
	}
	if err := r.SubmitInput("x", game.Input{}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("submit: %v", err)
	}
	if _, ok := r.Remove("x"); ok {
		t.Fatalf("remove of a missing player must report false")
	}
}

func TestSampleSeesButtonsOnce(t *testing.T) {
	r := NewRoster()
	r.Join("A")
	r.Join("idle")
	r.Bind("A", 7)
	r.SubmitInput("A", game.Input{Dir: game.DirLeft, LightAttack: true, Jump: true})

	first := r.Sample()
	if len(first) != 1 {
		t.Fatalf("only bound players are sampled, got %v", first)
	}
	if in := first[7]; !in.LightAttack || !in.Jump || in.Dir != game.DirLeft {
		t.Fatalf("unexpected first sample %+v", in)
	}

	second := r.Sample()
	if in := second[7]; in.LightAttack || in.Jump || in.Dir != game.DirLeft {
		t.Fatalf("buttons must reset and direction persist, got %+v", in)
	}

	for _, p := range r.Players() {
		if p.LastSeen != 2 {
			t.Fatalf("every player ages per sample, %s is at %d", p.Name, p.LastSeen)
		}
	}
}

func TestEvictStale(t *testing.T) {
	r := NewRoster()
	r.Join("quiet")
	r.Join("busy")
	for i := 0; i < 3; i++ {
		r.Sample()
		r.Touch("busy")
	}
	gone := r.EvictStale(2)
	if len(gone) != 1 || gone[0].Name != "quiet" || gone[0].LastSeen != 3 {
		t.Fatalf("unexpected evictions %+v", gone)
	}
	if _, ok := r.Get("busy"); !ok || r.Len() != 1 {
		t.Fatalf("busy player must stay")
	}
}

func TestWorldStoreBeforeFirstTick(t *testing.T) {
	w := NewWorldStore()
	if w.Ready() || w.Tick() != 0 {
		t.Fatalf("store must start empty")
	}
	if _, err := w.Spawn(0); !errors.Is(err, ErrWorldNotReady) {
		t.Fatalf("spawn: %v", err)
	}
	if _, ok := w.Snapshot(); ok {
		t.Fatalf("no snapshot before the first tick")
	}

	tick, _ := w.Advance(nil, game.Catalog{0: game.DefaultCharacter()}, game.DefaultRules())
	if tick != 1 || !w.Ready() {
		t.Fatalf("first advance must create the world, tick=%d", tick)
	}
	if err := w.Remove(3); !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("remove: %v", err)
	}
	if err := w.Rebind(3, 0); !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("rebind: %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	w := NewWorldStore()
	catalog := game.Catalog{0: game.DefaultCharacter()}
	w.Advance(nil, catalog, game.DefaultRules())
	id, _ := w.Spawn(0)

	snap, _ := w.Snapshot()
	snap.Characters[id].Position.X = 99
	delete(snap.Characters, id)

	w.View(func(m *game.Map) {
		ci, ok := m.Characters[id]
		if !ok || ci.Position.X != 0 {
			t.Fatalf("snapshot shares state with the live world")
		}
	})
}
