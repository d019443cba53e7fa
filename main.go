package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/invopop/jsonschema"

	"nebula/game"
	"nebula/server"
)

// Nebula game server: the game protocol listener, the tick loop and the
// optional admin listener share one Server.
func main() {
	cfg := server.DefaultConfig()
	var schema bool
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "game listen address")
	flag.StringVar(&cfg.Password, "password", os.Getenv("NEBULA_PASSWORD"), "server password (env NEBULA_PASSWORD)")
	flag.DurationVar(&cfg.TickPeriod, "tick", cfg.TickPeriod, "simulation tick period")
	flag.Float64Var(&cfg.Step, "step", cfg.Step, "per-tick walking displacement")
	flag.StringVar(&cfg.CharactersDir, "characters", cfg.CharactersDir, "directory of <id>.json character definitions")
	flag.Uint64Var(&cfg.StaleTicks, "stale-ticks", cfg.StaleTicks, "evict players silent for this many ticks, 0 disables")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "per-connection read deadline, 0 disables")
	flag.IntVar(&cfg.MaxBodyBytes, "max-body", cfg.MaxBodyBytes, "largest accepted request body in bytes")
	flag.StringVar(&cfg.ServerName, "name", cfg.ServerName, "value of the Server response header")
	flag.StringVar(&cfg.AdminAddr, "admin", cfg.AdminAddr, "admin/metrics/websocket listen address, empty disables")
	flag.DurationVar(&cfg.SpectatorPeriod, "spectator-period", cfg.SpectatorPeriod, "websocket world feed period")
	flag.StringVar(&cfg.LedgerPath, "ledger", cfg.LedgerPath, "sqlite file for the session ledger, empty disables")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "rolling log file, stderr when empty")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.BoolVar(&schema, "schema", false, "print the JSON schema of character definition files and exit")
	flag.Parse()

	if schema {
		if err := printSchema(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "schema: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer server.SyncLogger()

	if cfg.TickPeriod <= 0 {
		server.Log.Fatalf("tick period must be positive, got %v", cfg.TickPeriod)
	}
	if cfg.MaxBodyBytes <= 0 {
		server.Log.Fatalf("max body must be positive, got %d", cfg.MaxBodyBytes)
	}
	if cfg.Password == "" {
		server.Log.Warn("no server password set; any client can join")
	}

	catalog := game.LoadCatalog(cfg.CharactersDir, server.Log)
	server.Log.Infof("loaded %d character definitions %v", len(catalog), catalog.IDs())

	var ledger server.Ledger
	if cfg.LedgerPath != "" {
		l, err := server.OpenLedger(cfg.LedgerPath)
		if err != nil {
			server.Log.Fatalf("ledger: %v", err)
		}
		ledger = l
	}

	srv := server.New(cfg, catalog, ledger)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.RunTicker(ctx)

	var admin *http.Server
	if cfg.AdminAddr != "" {
		admin = &http.Server{Addr: cfg.AdminAddr, Handler: srv.AdminHandler()}
		go func() {
			server.Log.Infof("admin listening on %s", cfg.AdminAddr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				server.Log.Errorf("admin listen: %v", err)
			}
		}()
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		server.Log.Errorf("game server: %v", err)
		stop()
	}

	server.Log.Info("shutting down...")
	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = admin.Shutdown(shutdownCtx)
		cancel()
	}
	if ledger != nil {
		if err := ledger.Close(); err != nil {
			server.Log.Warnf("close ledger: %v", err)
		}
	}
}

// characterSchema describes the <id>.json definition file format.
func characterSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{}
	s := reflector.Reflect(&game.Character{})
	s.Title = "Nebula character definition"
	s.Description = "Contents of <id>.json in the characters directory"
	return s
}

func printSchema(w io.Writer) error {
	data, err := json.MarshalIndent(characterSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
