package app

import (
	"fincsops/clients/botapi"
	"sync"
	"time"
)

// Snapshot is one committed view of remote truth. It is replaced wholesale on
// every successful sync tick; consumers never observe a partial merge.
type Snapshot struct {
	Status   *botapi.Status
	Settings *botapi.Settings
	Signals  []botapi.Signal
	Actions  []botapi.ActionRecord
	Saxo     *botapi.SaxoHealth

	// Envelope, not remote data: tick sequence and commit time.
	Seq      uint64
	SyncedAt time.Time
}

// Intent holds unconfirmed operator intent layered over the confirmed
// snapshot. The server stays the source of truth: intent is display-only and
// is cleared by the next successful commit.
type Intent struct {
	Running *bool `json:"running,omitempty"`
	DryRun  *bool `json:"dry_run,omitempty"`
}

// StateStore owns the confirmed snapshot, the pending intent and the last
// sync error. All access goes through the mutex; commits are atomic.
type StateStore struct {
	mu        sync.RWMutex
	confirmed Snapshot
	intent    Intent
	lastErr   string
	committed bool
}

func NewStateStore() *StateStore {
	return &StateStore{}
}

// Commit replaces the confirmed snapshot. A snapshot from a tick older than
// the committed one is discarded, so overlapping ticks cannot roll state
// backwards. A successful commit clears pending intent and the sync error.
func (s *StateStore) Commit(snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committed && snap.Seq <= s.confirmed.Seq {
		return false
	}

	s.confirmed = snap
	s.intent = Intent{}
	s.lastErr = ""
	s.committed = true
	return true
}

// Fail records a tick failure. The confirmed snapshot is left untouched.
func (s *StateStore) Fail(seq uint64, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A failure from a tick older than the committed snapshot is stale noise.
	if s.committed && seq <= s.confirmed.Seq {
		return
	}
	s.lastErr = msg
}

// SetRunningIntent records an optimistic running flag ahead of server
// confirmation.
func (s *StateStore) SetRunningIntent(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent.Running = &running
}

// SetDryRunIntent records an optimistic dry-run flag ahead of server
// confirmation.
func (s *StateStore) SetDryRunIntent(dryRun bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent.DryRun = &dryRun
}

// PendingIntent returns a copy of the current intent.
func (s *StateStore) PendingIntent() Intent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.intent
}

// Confirmed returns the last committed snapshot as-is, without intent.
func (s *StateStore) Confirmed() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.confirmed
}

// SnapshotView is what consumers (API, pages, WebSocket) read: the confirmed
// snapshot with pending intent merged over the status flags.
type SnapshotView struct {
	Status   *botapi.Status        `json:"status"`
	Settings *botapi.Settings      `json:"settings"`
	Signals  []botapi.Signal       `json:"signals"`
	Actions  []botapi.ActionRecord `json:"actions"`
	Saxo     *botapi.SaxoHealth    `json:"saxo"`

	Pending       Intent    `json:"pending"`
	LastSyncError string    `json:"last_sync_error,omitempty"`
	SyncedAt      time.Time `json:"synced_at"`
}

// View merges intent over the confirmed snapshot. The status value is copied
// before mutation so the confirmed snapshot is never aliased.
func (s *StateStore) View() SnapshotView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := SnapshotView{
		Status:        s.confirmed.Status,
		Settings:      s.confirmed.Settings,
		Signals:       s.confirmed.Signals,
		Actions:       s.confirmed.Actions,
		Saxo:          s.confirmed.Saxo,
		Pending:       s.intent,
		LastSyncError: s.lastErr,
		SyncedAt:      s.confirmed.SyncedAt,
	}

	if view.Status != nil && (s.intent.Running != nil || s.intent.DryRun != nil) {
		status := *view.Status
		if s.intent.Running != nil {
			status.Running = *s.intent.Running
		}
		if s.intent.DryRun != nil {
			status.DryRun = *s.intent.DryRun
		}
		view.Status = &status
	}

	return view
}
