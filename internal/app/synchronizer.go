package app

import (
	"context"
	"fincsops/clients/botapi"
	"fincsops/clients/notifier"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Synchronizer keeps the local snapshot fresh. Each tick fans out the five
// read calls concurrently and commits the results as a unit. Status and
// settings are critical: either failing fails the tick and leaves the
// previous snapshot in place. Signals, actions and broker health degrade
// independently to empty data.
//
// Ticks are allowed to overlap; the store's sequence check discards a commit
// that would roll state back behind a newer tick.
type Synchronizer struct {
	logger    *zap.Logger
	api       *botapi.Client
	store     *StateStore
	notifier  notifier.Notifier
	interval  time.Duration
	feedLimit int

	seq atomic.Uint64

	// Edge-trigger bookkeeping for operator alerts. Ticks may overlap, so
	// this state needs its own lock.
	alertMu          sync.Mutex
	lastAlertedError string
	sawRunning       bool
}

func NewSynchronizer(logger *zap.Logger, api *botapi.Client, store *StateStore, n notifier.Notifier, interval time.Duration, feedLimit int) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		logger:    logger,
		api:       api,
		store:     store,
		notifier:  n,
		interval:  interval,
		feedLimit: feedLimit,
	}
}

// Run executes the sync loop until the context is cancelled. The first tick
// fires immediately so the console never starts blank.
func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("state synchronizer started",
		zap.Duration("interval", s.interval),
		zap.Int("feedLimit", s.feedLimit),
	)

	s.SyncNow(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("state synchronizer shutting down")
			return
		case <-ticker.C:
			// Each tick runs on its own goroutine; a slow remote cannot
			// stall the schedule, and stale results are dropped on commit.
			go s.SyncNow(ctx)
		}
	}
}

// SyncNow runs one sync tick. Safe to call concurrently with the loop; the
// dispatcher uses it to reconcile right after a command.
func (s *Synchronizer) SyncNow(ctx context.Context) {
	seq := s.seq.Add(1)
	start := time.Now()

	var (
		status   *botapi.Status
		settings *botapi.Settings
		signals  []botapi.Signal
		actions  []botapi.ActionRecord
		saxo     *botapi.SaxoHealth
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		st, err := s.api.Status(gctx)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		status = st
		return nil
	})

	g.Go(func() error {
		se, err := s.api.Settings(gctx)
		if err != nil {
			return fmt.Errorf("settings: %w", err)
		}
		settings = se
		return nil
	})

	g.Go(func() error {
		sigs, err := s.api.Signals(gctx, s.feedLimit)
		if err != nil {
			// A feed that failed only because a critical read already
			// cancelled the group is not a degradation.
			if gctx.Err() == nil {
				s.logger.Warn("signals feed degraded", zap.Error(err))
				feedDegraded.WithLabelValues("signals").Inc()
			}
			sigs = nil
		}
		signals = sigs
		return nil
	})

	g.Go(func() error {
		acts, err := s.api.Actions(gctx, s.feedLimit)
		if err != nil {
			if gctx.Err() == nil {
				s.logger.Warn("actions feed degraded", zap.Error(err))
				feedDegraded.WithLabelValues("actions").Inc()
			}
			acts = nil
		}
		actions = acts
		return nil
	})

	g.Go(func() error {
		health, err := s.api.SaxoHealth(gctx)
		if err != nil {
			if gctx.Err() == nil {
				s.logger.Warn("saxo health feed degraded", zap.Error(err))
				feedDegraded.WithLabelValues("saxo_health").Inc()
			}
			health = nil
		}
		saxo = health
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("sync tick failed", zap.Uint64("seq", seq), zap.Error(err))
		s.store.Fail(seq, err.Error())
		syncTicks.WithLabelValues("failed").Inc()
		syncDuration.Observe(time.Since(start).Seconds())
		return
	}

	if signals == nil {
		signals = []botapi.Signal{}
	}
	if actions == nil {
		actions = []botapi.ActionRecord{}
	}

	// Read intent before the commit clears it: a stop the operator asked for
	// must not raise an alert.
	intent := s.store.PendingIntent()

	committed := s.store.Commit(Snapshot{
		Status:   status,
		Settings: settings,
		Signals:  signals,
		Actions:  actions,
		Saxo:     saxo,
		Seq:      seq,
		SyncedAt: start,
	})

	syncDuration.Observe(time.Since(start).Seconds())
	if !committed {
		s.logger.Debug("stale tick discarded", zap.Uint64("seq", seq))
		syncTicks.WithLabelValues("stale").Inc()
		return
	}
	syncTicks.WithLabelValues("committed").Inc()
	lastCommitTime.SetToCurrentTime()

	s.observeStatus(status, intent)
}

// observeStatus raises edge-triggered operator alerts off a freshly committed
// status: a new error string, or a running-to-stopped flip the operator did
// not request.
func (s *Synchronizer) observeStatus(status *botapi.Status, intent Intent) {
	if s.notifier == nil || status == nil {
		return
	}

	s.alertMu.Lock()
	defer s.alertMu.Unlock()

	if status.LastError != nil && *status.LastError != "" {
		if *status.LastError != s.lastAlertedError {
			s.lastAlertedError = *status.LastError
			s.notifier.SendOpsAlert(notifier.OpsAlert{
				Severity:  notifier.SeverityWarning,
				Title:     "bot reported an error",
				Detail:    *status.LastError,
				Timestamp: time.Now(),
			})
		}
	} else {
		s.lastAlertedError = ""
	}

	requestedStop := intent.Running != nil && !*intent.Running
	if s.sawRunning && !status.Running && !requestedStop {
		s.notifier.SendOpsAlert(notifier.OpsAlert{
			Severity:  notifier.SeverityCritical,
			Title:     "bot stopped unexpectedly",
			Detail:    "scheduler reports not running",
			Timestamp: time.Now(),
		})
	}
	s.sawRunning = status.Running
}
