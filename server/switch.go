package server

import (
	"errors"
	"fmt"

	"nebula/game"
)

// SwitchCharacter creates, replaces or removes the instance controlled by
// name. Roster and world are locked one after the other, never together; a
// player or instance that disappears in between yields ErrStateChanged.
//
//	none × some  spawn a new instance and bind it
//	some × none  remove the instance and unbind
//	some × some  rebind the instance in place, keeping its id
//	none × none  nothing
func (s *Server) SwitchCharacter(name string, target *uint32) error {
	if target != nil {
		if _, ok := s.catalog.Get(*target); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownCharacter, *target)
		}
	}

	p, err := s.roster.Touch(name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	found := false
	err = s.world.View(func(m *game.Map) {
		if p.HasInstance {
			_, found = m.Characters[p.Instance]
		}
	})
	if err != nil {
		return err
	}
	if s.afterLookup != nil {
		s.afterLookup()
	}

	switch {
	case !found && target != nil:
		id, err := s.world.Spawn(*target)
		if err != nil {
			return changed(err)
		}
		if err := s.roster.Bind(name, id); err != nil {
			// the player left in between: do not leak the instance
			_ = s.world.Remove(id)
			return changed(err)
		}
		p.Instance, p.HasInstance = id, true

	case found && target == nil:
		if err := s.world.Remove(p.Instance); err != nil {
			return changed(err)
		}
		if err := s.roster.Unbind(name); err != nil {
			return changed(err)
		}

	case found && target != nil:
		if err := s.world.Rebind(p.Instance, *target); err != nil {
			return changed(err)
		}

	default:
		if p.HasInstance {
			// reference to an instance that no longer exists
			_ = s.roster.Unbind(name)
		}
		return nil
	}

	s.metrics.IncSwitch()
	ev := LedgerEvent{PlayerID: p.ID, PlayerName: name, Kind: LedgerSwitch, Character: target}
	if target != nil {
		ev.Instance = &p.Instance
	}
	s.record(ev)
	Log.Infow("character switch", "player", name, "instance", p.Instance, "character", target)
	return nil
}

func changed(err error) error {
	if errors.Is(err, ErrWorldNotReady) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStateChanged, err)
}
