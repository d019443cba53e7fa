package server

import (
	"crypto/subtle"
	"math"
	"sync/atomic"
	"time"

	"nebula/game"
)

// Server owns the two shared stores and hands them to both the connection
// handler and the tick loop.
type Server struct {
	cfg     Config
	catalog game.Catalog
	roster  *Roster
	world   *WorldStore
	metrics *Metrics
	ledger  Ledger
	now     func() time.Time

	// afterLookup runs between the two critical sections of a character
	// switch. Nil outside tests.
	afterLookup func()

	// runtime tunables, see /admin/config
	step       atomic.Uint64 // math.Float64bits
	staleTicks atomic.Uint64
}

// New builds a server around a loaded catalog. A nil ledger records nothing
// and a non-positive body limit falls back to the default.
func New(cfg Config, catalog game.Catalog, ledger Ledger) *Server {
	if ledger == nil {
		ledger = NopLedger{}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	if catalog == nil {
		catalog = game.Catalog{0: game.DefaultCharacter()}
	}
	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		roster:  NewRoster(),
		world:   NewWorldStore(),
		metrics: &Metrics{},
		ledger:  ledger,
		now:     time.Now,
	}
	s.SetMoveStep(cfg.Step)
	s.SetStaleTicks(cfg.StaleTicks)
	return s
}

func (s *Server) Config() Config        { return s.cfg }
func (s *Server) Catalog() game.Catalog { return s.catalog }
func (s *Server) Roster() *Roster       { return s.roster }
func (s *Server) World() *WorldStore    { return s.world }
func (s *Server) Metrics() *Metrics     { return s.metrics }

// MoveStep is the per-tick displacement of a held direction.
func (s *Server) MoveStep() float64 { return math.Float64frombits(s.step.Load()) }

func (s *Server) SetMoveStep(step float64) { s.step.Store(math.Float64bits(step)) }

func (s *Server) StaleTicks() uint64 { return s.staleTicks.Load() }

func (s *Server) SetStaleTicks(n uint64) { s.staleTicks.Store(n) }

func (s *Server) rules() game.Rules {
	r := game.DefaultRules()
	r.Step = s.MoveStep()
	return r
}

func (s *Server) authorized(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password)) == 1
}
