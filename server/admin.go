package server

import (
	"encoding/json"
	"net/http"
)

// AdminHandler serves the operator endpoints and the spectator feed:
//
//	GET  /admin/config     live tunables
//	POST /admin/config     update step, staleTicks and logLevel
//	GET  /admin/players    roster
//	GET  /admin/sessions   ledger history, ?player=name to filter
//	GET  /metrics          runtime counters
//	GET  /healthz
//	GET  /ws               websocket world feed
func (s *Server) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("/admin/players", s.HandlePlayers)
	mux.HandleFunc("/admin/sessions", s.HandleSessions)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", s.HandleWS)
	return mux
}

type adminConfig struct {
	Step         *float64 `json:"step,omitempty"`
	StaleTicks   *uint64  `json:"staleTicks,omitempty"`
	LogLevel     *string  `json:"logLevel,omitempty"`
	TickPeriodMs int64    `json:"tickPeriodMs,omitempty"`
}

// HandleAdminConfig reads or hot-updates the runtime tunables.
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		step, stale, level := s.MoveStep(), s.StaleTicks(), Level.Level().String()
		writeJSON(w, http.StatusOK, adminConfig{
			Step:         &step,
			StaleTicks:   &stale,
			LogLevel:     &level,
			TickPeriodMs: s.cfg.TickPeriod.Milliseconds(),
		})
	case http.MethodPost:
		var body adminConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Step != nil && *body.Step < 0 {
			http.Error(w, "step must not be negative", http.StatusBadRequest)
			return
		}
		if body.LogLevel != nil {
			if err := Level.UnmarshalText([]byte(*body.LogLevel)); err != nil {
				http.Error(w, "invalid logLevel", http.StatusBadRequest)
				return
			}
		}
		if body.Step != nil {
			s.SetMoveStep(*body.Step)
		}
		if body.StaleTicks != nil {
			s.SetStaleTicks(*body.StaleTicks)
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		Log.Infof("config updated: step=%.3f staleTicks=%d logLevel=%s",
			s.MoveStep(), s.StaleTicks(), Level.Level())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePlayers lists the roster.
func (s *Server) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.roster.Players())
}

// HandleSessions lists ledger events, oldest first.
func (s *Server) HandleSessions(w http.ResponseWriter, r *http.Request) {
	events, err := s.ledger.Events(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		Log.Warnf("sessions: %v", err)
		http.Error(w, "ledger unavailable", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []LedgerEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleMetrics reports the runtime counters and the current tick.
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"tick":    s.world.Tick(),
		"players": s.roster.Len(),
		"metrics": s.metrics.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
