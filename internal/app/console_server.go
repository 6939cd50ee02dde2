package app

import (
	"context"
	"encoding/json"
	"fincsops/clients/botapi"
	"fincsops/config"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader for live snapshot push
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsPushInterval is how often a connected browser receives the current view.
const wsPushInterval = 2 * time.Second

// ConsoleServer serves the operator console: embedded pages, the JSON state
// API, command routes and the live WebSocket feed. Every route goes through
// the access gate.
type ConsoleServer struct {
	logger     *zap.Logger
	store      *StateStore
	dispatcher *Dispatcher
	api        *botapi.Client
	gate       *Gate
	rawLimit   int

	srv *http.Server
}

func NewConsoleServer(logger *zap.Logger, cfg *config.Config, store *StateStore, dispatcher *Dispatcher, api *botapi.Client) *ConsoleServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleServer{
		logger:     logger,
		store:      store,
		dispatcher: dispatcher,
		api:        api,
		gate:       NewGate(cfg),
		rawLimit:   cfg.Sync.RawLimit,
	}
}

// Routes builds the console router. Split out from Start so tests can drive
// it through httptest.
func (s *ConsoleServer) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.gate.Middleware)

	// Pages
	r.HandleFunc("/", pageHandler(dashboardPageHTML)).Methods("GET")
	r.HandleFunc("/signals", pageHandler(signalsPageHTML)).Methods("GET")
	r.HandleFunc("/actions", pageHandler(actionsPageHTML)).Methods("GET")
	r.HandleFunc("/raw", pageHandler(rawPageHTML)).Methods("GET")
	r.HandleFunc("/settings", pageHandler(settingsPageHTML)).Methods("GET")
	r.HandleFunc("/static/console.css", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte(consoleCSS))
	}).Methods("GET")

	// State API
	r.HandleFunc("/api/state", s.handleState).Methods("GET")
	r.HandleFunc("/api/raw", s.handleRaw).Methods("GET")

	// Commands
	r.HandleFunc("/api/bot/start", s.command(func(req *http.Request) CommandState {
		return s.dispatcher.Start(req.Context())
	})).Methods("POST")
	r.HandleFunc("/api/bot/stop", s.command(func(req *http.Request) CommandState {
		return s.dispatcher.Stop(req.Context())
	})).Methods("POST")
	r.HandleFunc("/api/bot/run-once", s.command(func(req *http.Request) CommandState {
		return s.dispatcher.RunOnce(req.Context())
	})).Methods("POST")
	r.HandleFunc("/api/bot/dry-run", s.command(func(req *http.Request) CommandState {
		return s.dispatcher.ToggleDryRun(req.Context())
	})).Methods("POST")
	r.HandleFunc("/api/settings", s.handleSaveSettings).Methods("POST")
	r.HandleFunc("/api/saxo/auth-url", s.handleSaxoAuthURL).Methods("GET")
	r.HandleFunc("/api/saxo/auth-exchange", s.handleSaxoExchange).Methods("POST")

	// Operational endpoints
	r.Handle("/metrics", MetricsHandler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	// Live feed
	r.HandleFunc("/ws", s.handleWS)

	return r
}

// Start begins serving in the background.
func (s *ConsoleServer) Start(addr string) {
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	go func() {
		s.logger.Info("console server listening",
			zap.String("addr", addr),
			zap.Bool("gateEnabled", s.gate.Enabled()),
		)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("console server error", zap.Error(err))
		}
	}()
}

// Shutdown stops the server, letting in-flight requests finish.
func (s *ConsoleServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// stateResponse is the full console state: merged snapshot view, display
// projections and per-command status.
type stateResponse struct {
	StatusCard    StatusCard                `json:"status_card"`
	Status        *botapi.Status            `json:"status"`
	Settings      *botapi.Settings          `json:"settings"`
	Signals       []SignalRow               `json:"signals"`
	Actions       []ActionRow               `json:"actions"`
	Saxo          SaxoCard                  `json:"saxo"`
	Pending       Intent                    `json:"pending"`
	LastSyncError string                    `json:"last_sync_error,omitempty"`
	SyncedAt      time.Time                 `json:"synced_at"`
	Commands      map[Command]CommandState `json:"commands"`
}

func (s *ConsoleServer) currentState() stateResponse {
	view := s.store.View()
	return stateResponse{
		StatusCard:    BuildStatusCard(view.Status),
		Status:        view.Status,
		Settings:      view.Settings,
		Signals:       SignalRows(view.Signals),
		Actions:       ActionRows(view.Actions),
		Saxo:          BuildSaxoCard(view.Saxo),
		Pending:       view.Pending,
		LastSyncError: view.LastSyncError,
		SyncedAt:      view.SyncedAt,
		Commands:      s.dispatcher.States(),
	}
}

func (s *ConsoleServer) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.currentState())
}

// handleRaw proxies the raw-capture audit feed on demand; it is not part of
// the sync tick.
func (s *ConsoleServer) handleRaw(w http.ResponseWriter, r *http.Request) {
	limit := s.rawLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	captures, err := s.api.Raw(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"raw": RawRows(captures)})
}

// command adapts a dispatcher call to HTTP. A pending phase in the returned
// state means the slot was already busy and the dispatch was rejected.
func (s *ConsoleServer) command(run func(*http.Request) CommandState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := run(r)
		writeJSON(w, commandHTTPStatus(state), state)
	}
}

func commandHTTPStatus(state CommandState) int {
	switch state.Phase {
	case PhasePending:
		return http.StatusConflict
	case PhaseError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

func (s *ConsoleServer) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var draft SettingsDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	state := s.dispatcher.SaveSettings(r.Context(), draft)
	writeJSON(w, commandHTTPStatus(state), state)
}

func (s *ConsoleServer) handleSaxoAuthURL(w http.ResponseWriter, r *http.Request) {
	url, state := s.dispatcher.SaxoAuthURL(r.Context())
	writeJSON(w, commandHTTPStatus(state), map[string]any{
		"url":   url,
		"state": state,
	})
}

func (s *ConsoleServer) handleSaxoExchange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	state := s.dispatcher.SaxoExchange(r.Context(), body.Code)
	writeJSON(w, commandHTTPStatus(state), state)
}

func (s *ConsoleServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	// Send once immediately, then on the interval.
	if err := conn.WriteJSON(s.currentState()); err != nil {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(s.currentState()); err != nil {
				return // Client disconnected
			}
		}
	}
}

func pageHandler(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(page))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
