package server

import (
	"testing"

	"nebula/protocol"
)

func TestSwitchReportsConcurrentChanges(t *testing.T) {
	cases := []struct {
		name   string
		bound  bool
		target *uint32
		// interleave runs between the existence check and the mutation
		interleave func(s *Server)
	}{
		{
			name:       "player leaves before bind",
			target:     protocol.CharacterID(0),
			interleave: func(s *Server) { s.roster.Remove("A") },
		},
		{
			name:       "instance removed before rebind",
			bound:      true,
			target:     protocol.CharacterID(1),
			interleave: func(s *Server) { s.world.Remove(0) },
		},
		{
			name:       "instance removed before release",
			bound:      true,
			interleave: func(s *Server) { s.world.Remove(0) },
		},
		{
			name:       "player leaves before unbind",
			bound:      true,
			interleave: func(s *Server) { s.roster.Remove("A") },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.Tick()
			join(t, s, "A")
			if tc.bound {
				decodeMap(t, switchTo(t, s, "A", protocol.CharacterID(0)))
			}
			switches := s.metrics.Switches

			s.afterLookup = func() { tc.interleave(s) }
			expectStatus(t, switchTo(t, s, "A", tc.target), protocol.StatusServerError)
			s.afterLookup = nil

			snap, _ := s.world.Snapshot()
			if len(snap.Characters) != 0 {
				t.Fatalf("instance leaked: %+v", snap.Characters)
			}
			if s.metrics.Switches != switches {
				t.Fatalf("a failed switch must not be counted")
			}
		})
	}
}

func TestSwitchAfterEvictionIsUnauthorized(t *testing.T) {
	s := newTestServer(t)
	s.SetStaleTicks(1)
	s.Tick()
	join(t, s, "A")
	s.Tick()
	s.Tick()
	if _, ok := s.roster.Get("A"); ok {
		t.Fatalf("A should have been evicted")
	}
	expectStatus(t, switchTo(t, s, "A", protocol.CharacterID(0)), protocol.StatusUnauthorized)
}
