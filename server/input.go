package server

import (
	"nebula/game"
)

// SubmitInput replaces the pending input of a player and marks it as seen.
func (r *Roster) SubmitInput(name string, in game.Input) error {
	return r.with(name, func(p *Player) {
		p.Input = in
		p.LastSeen = 0
	})
}

// Sample takes the per-tick copy of every controlled instance's input, then
// clears the one-shot buttons and ages every player by one tick. Both happen
// in the same critical section, so a button press is seen by exactly one tick.
func (r *Roster) Sample() map[uint32]game.Input {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint32]game.Input, len(r.players))
	for _, p := range r.players {
		if p.HasInstance {
			out[p.Instance] = p.Input
		}
		p.Input.ResetButtons()
		p.LastSeen++
	}
	return out
}

// EvictStale removes every player not seen for more than limit ticks and
// returns them so their instances can be released.
func (r *Roster) EvictStale(limit uint64) []Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Player
	for name, p := range r.players {
		if p.LastSeen > limit {
			out = append(out, *p)
			delete(r.players, name)
		}
	}
	return out
}
