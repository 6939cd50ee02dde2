package app

import (
	"context"
	clts "fincsops/clients"
	"fincsops/config"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight console requests may linger
// after the loop stops.
const shutdownTimeout = 5 * time.Second

// Runner wires the store, synchronizer, dispatcher and console server and
// drives them until the context is cancelled.
type Runner struct {
	clients *clts.Clients
	cfg     *config.Config

	store      *StateStore
	sync       *Synchronizer
	dispatcher *Dispatcher
	server     *ConsoleServer
}

func NewRunner(clients *clts.Clients, cfg *config.Config) *Runner {
	store := NewStateStore()
	sync := NewSynchronizer(clients.Logger, clients.Bot, store, clients.Notifier, cfg.Sync.Interval, cfg.Sync.FeedLimit)
	dispatcher := NewDispatcher(clients.Logger, clients.Bot, store, sync)
	server := NewConsoleServer(clients.Logger, cfg, store, dispatcher, clients.Bot)

	return &Runner{
		clients:    clients,
		cfg:        cfg,
		store:      store,
		sync:       sync,
		dispatcher: dispatcher,
		server:     server,
	}
}

// Run blocks until ctx is cancelled, then shuts the console down cleanly.
func (r *Runner) Run(ctx context.Context) error {
	logger := r.clients.Logger

	logger.Info("starting operations console",
		zap.String("apiBase", r.clients.Bot.BaseURL()),
		zap.String("listenAddr", r.cfg.Server.ListenAddr),
		zap.Duration("syncInterval", r.cfg.Sync.Interval),
	)

	r.server.Start(r.cfg.Server.ListenAddr)

	// Blocks until cancellation; in-flight reads at teardown are abandoned
	// and any stragglers are discarded by the store's sequence check.
	r.sync.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("console shutdown incomplete", zap.Error(err))
	}

	if err := r.clients.Notifier.Close(); err != nil {
		logger.Warn("notifier close failed", zap.Error(err))
	}

	logger.Info("operations console stopped")
	return nil
}
