package server

import (
	"sync/atomic"

	"nebula/protocol"
)

// Metrics are the runtime counters exported on /metrics.
type Metrics struct {
	TickCount       int64 // ticks run
	TotalTickNs     int64 // time spent inside ticks
	Overruns        int64 // ticks that took longer than the period
	Requests        int64 // answered requests
	TransportErrors int64 // connections dropped before an answer
	Joins           int64
	Switches        int64
	Evictions       int64
	Spectators      int64 // open websocket feeds

	byStatus [protocol.StatusNotImplemented + 1]int64
}

func (m *Metrics) IncTransportError() { atomic.AddInt64(&m.TransportErrors, 1) }
func (m *Metrics) IncJoin()           { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncSwitch()         { atomic.AddInt64(&m.Switches, 1) }
func (m *Metrics) IncEviction()       { atomic.AddInt64(&m.Evictions, 1) }
func (m *Metrics) IncOverrun()        { atomic.AddInt64(&m.Overruns, 1) }
func (m *Metrics) AddSpectator(d int64) {
	atomic.AddInt64(&m.Spectators, d)
}

func (m *Metrics) IncStatus(s protocol.Status) {
	atomic.AddInt64(&m.Requests, 1)
	if int(s) >= 0 && int(s) < len(m.byStatus) {
		atomic.AddInt64(&m.byStatus[s], 1)
	}
}

// StatusCount returns how many answers carried s.
func (m *Metrics) StatusCount(s protocol.Status) int64 {
	if int(s) < 0 || int(s) >= len(m.byStatus) {
		return 0
	}
	return atomic.LoadInt64(&m.byStatus[s])
}

func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot returns a read-only copy for JSON output.
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	statuses := make(map[string]int64, len(m.byStatus))
	for i := range m.byStatus {
		statuses[protocol.Status(i).String()] = atomic.LoadInt64(&m.byStatus[i])
	}
	return map[string]any{
		"tick_count":       tick,
		"avg_tick_ms":      avgMs,
		"tick_overruns":    atomic.LoadInt64(&m.Overruns),
		"requests":         atomic.LoadInt64(&m.Requests),
		"requests_by_code": statuses,
		"transport_errors": atomic.LoadInt64(&m.TransportErrors),
		"joins":            atomic.LoadInt64(&m.Joins),
		"switches":         atomic.LoadInt64(&m.Switches),
		"evictions":        atomic.LoadInt64(&m.Evictions),
		"spectators":       atomic.LoadInt64(&m.Spectators),
	}
}
