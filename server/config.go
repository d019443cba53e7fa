package server

import (
	"time"

	"nebula/game"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr            string
	Password        string
	TickPeriod      time.Duration
	Step            float64
	CharactersDir   string
	StaleTicks      uint64 // 0 disables eviction
	ReadTimeout     time.Duration
	MaxBodyBytes    int
	ServerName      string
	AdminAddr       string // empty disables the admin listener
	SpectatorPeriod time.Duration
	LedgerPath      string // empty disables the session ledger
	LogFile         string
	LogLevel        string
}

func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:3621",
		TickPeriod:      30 * time.Millisecond,
		Step:            game.DefaultRules().Step,
		CharactersDir:   "./assets/characters/",
		StaleTicks:      1000,
		ReadTimeout:     10 * time.Second,
		MaxBodyBytes:    1 << 20,
		ServerName:      "nebula",
		SpectatorPeriod: 100 * time.Millisecond,
		LogLevel:        "info",
	}
}
