package server

import (
	"fmt"
	"sort"

	"github.com/oklog/ulid/v2"
	"github.com/sasha-s/go-deadlock"

	"nebula/game"
)

// Player is one joined session. Name is the uniqueness key; ID is only a
// generated label.
type Player struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	LastSeen    uint64     `json:"last_seen"` // ticks since the last request
	Instance    uint32     `json:"instance"`
	HasInstance bool       `json:"has_instance"`
	Input       game.Input `json:"input"`
}

// Roster is the set of joined players keyed by name. Every method is one
// short critical section; callers get copies, never pointers into the map.
type Roster struct {
	mu      deadlock.Mutex
	players map[string]*Player
}

func NewRoster() *Roster {
	return &Roster{players: make(map[string]*Player)}
}

// Join registers name. A name already present is rejected with ErrNameTaken
// and the existing record is left alone.
func (r *Roster) Join(name string) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[name]; ok {
		return Player{}, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}
	p := &Player{ID: ulid.Make().String(), Name: name}
	r.players[name] = p
	return *p, nil
}

// Get returns a copy of the named player.
func (r *Roster) Get(name string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[name]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Touch marks the player as seen and returns a copy of it.
func (r *Roster) Touch(name string) (Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[name]
	if !ok {
		return Player{}, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	p.LastSeen = 0
	return *p, nil
}

// Bind records the instance the player now controls.
func (r *Roster) Bind(name string, instance uint32) error {
	return r.with(name, func(p *Player) {
		p.Instance, p.HasInstance = instance, true
	})
}

// Unbind clears the player's instance reference.
func (r *Roster) Unbind(name string) error {
	return r.with(name, func(p *Player) {
		p.Instance, p.HasInstance = 0, false
	})
}

// Remove deletes the named player and returns its last state.
func (r *Roster) Remove(name string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[name]
	if !ok {
		return Player{}, false
	}
	delete(r.players, name)
	return *p, true
}

func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Players returns copies of every player ordered by name.
func (r *Roster) Players() []Player {
	r.mu.Lock()
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Roster) with(name string, fn func(p *Player)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	fn(p)
	return nil
}
