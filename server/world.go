package server

import (
	"github.com/sasha-s/go-deadlock"

	"nebula/game"
)

// WorldStore guards the world snapshot. The snapshot does not exist until
// the first tick produces it.
type WorldStore struct {
	mu deadlock.Mutex
	m  *game.Map
}

func NewWorldStore() *WorldStore {
	return &WorldStore{}
}

// Ready reports whether the first tick has run.
func (w *WorldStore) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.m != nil
}

// View runs fn on the live map under the lock. fn must not block or keep m.
func (w *WorldStore) View(fn func(m *game.Map)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.m == nil {
		return ErrWorldNotReady
	}
	fn(w.m)
	return nil
}

// Update is View for callers that can fail.
func (w *WorldStore) Update(fn func(m *game.Map) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.m == nil {
		return ErrWorldNotReady
	}
	return fn(w.m)
}

// Snapshot returns a deep copy that can be encoded without holding the lock.
func (w *WorldStore) Snapshot() (*game.Map, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.m == nil {
		return nil, false
	}
	return w.m.Clone(), true
}

// Tick returns the current tick counter, 0 before the first tick.
func (w *WorldStore) Tick() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.m == nil {
		return 0
	}
	return w.m.Counter
}

// Spawn allocates a new instance of character.
func (w *WorldStore) Spawn(character uint32) (uint32, error) {
	var id uint32
	err := w.View(func(m *game.Map) { id = m.NewInstance(character) })
	return id, err
}

// Remove deletes an instance.
func (w *WorldStore) Remove(id uint32) error {
	return w.Update(func(m *game.Map) error {
		if !m.Remove(id) {
			return ErrInstanceNotFound
		}
		return nil
	})
}

// Rebind switches an instance to another definition, keeping its id.
func (w *WorldStore) Rebind(id, character uint32) error {
	return w.Update(func(m *game.Map) error {
		if !m.Rebind(id, character) {
			return ErrInstanceNotFound
		}
		return nil
	})
}

// Advance runs one simulation step, creating the world on the first call.
// It returns the new tick and the instances whose definition is missing.
func (w *WorldStore) Advance(inputs map[uint32]game.Input, catalog game.Catalog, rules game.Rules) (uint64, []uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.m == nil {
		w.m = game.NewMap()
	}
	w.m.Counter++
	w.m.SetInputs(inputs)
	orphans := w.m.Update(catalog, rules)
	return w.m.Counter, orphans
}
