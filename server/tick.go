package server

import (
	"context"
	"time"
)

// Tick runs one simulation step: sample inputs, advance the world, then
// release players that have gone quiet. It returns the new tick counter.
func (s *Server) Tick() uint64 {
	inputs := s.roster.Sample()
	tick, orphans := s.world.Advance(inputs, s.catalog, s.rules())
	for _, id := range orphans {
		Log.Debugw("instance has no definition", "instance", id, "tick", tick)
	}

	limit := s.StaleTicks()
	if limit == 0 {
		return tick
	}
	for _, p := range s.roster.EvictStale(limit) {
		ev := LedgerEvent{PlayerID: p.ID, PlayerName: p.Name, Kind: LedgerEvict, Tick: tick}
		if p.HasInstance {
			if err := s.world.Remove(p.Instance); err == nil {
				id := p.Instance
				ev.Instance = &id
			}
		}
		s.metrics.IncEviction()
		s.record(ev)
		Log.Infow("player evicted", "player", p.Name, "idle_ticks", p.LastSeen, "tick", tick)
	}
	return tick
}

// RunTicker advances the world every Config.TickPeriod until ctx is done.
// Ticks never overlap; a tick that takes longer than the period delays the
// next one.
func (s *Server) RunTicker(ctx context.Context) {
	period := s.cfg.TickPeriod
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	Log.Infof("tick loop started, period %v", period)
	for {
		select {
		case <-ctx.Done():
			Log.Info("tick loop stopped")
			return
		case <-ticker.C:
			start := time.Now()
			tick := s.Tick()
			elapsed := time.Since(start)
			s.metrics.AddTick(elapsed.Nanoseconds())
			if elapsed > period {
				s.metrics.IncOverrun()
				Log.Warnf("tick %d took %v, period is %v", tick, elapsed, period)
			}
		}
	}
}
