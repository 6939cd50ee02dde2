package app

import (
	"context"
	"errors"
	"fincsops/clients/botapi"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Command names a dispatchable operator action.
type Command string

const (
	CommandStart        Command = "start"
	CommandStop         Command = "stop"
	CommandRunOnce      Command = "run-once"
	CommandDryRun       Command = "dry-run"
	CommandSaveSettings Command = "save-settings"
	CommandSaxoAuthURL  Command = "saxo-auth-url"
	CommandSaxoExchange Command = "saxo-auth-exchange"
)

// Phase is the per-command state machine: idle -> pending -> success|error.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePending Phase = "pending"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// CommandState is the visible state of one command slot.
type CommandState struct {
	Phase     Phase     `json:"phase"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrCommandPending rejects a dispatch while the same command is in flight.
var ErrCommandPending = errors.New("command already in flight")

// Dispatcher translates operator intent into bot service calls. Optimistic
// intent is applied before the network call resolves and is never rolled
// back on failure - the next sync tick is authoritative either way.
type Dispatcher struct {
	logger *zap.Logger
	api    *botapi.Client
	store  *StateStore
	sync   *Synchronizer

	mu     sync.Mutex
	states map[Command]*CommandState
}

func NewDispatcher(logger *zap.Logger, api *botapi.Client, store *StateStore, sync *Synchronizer) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logger: logger,
		api:    api,
		store:  store,
		sync:   sync,
		states: make(map[Command]*CommandState),
	}
}

// States returns a copy of every command slot's current state.
func (d *Dispatcher) States() map[Command]CommandState {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[Command]CommandState, len(d.states))
	for cmd, st := range d.states {
		out[cmd] = *st
	}
	return out
}

// State returns the current state of one command slot.
func (d *Dispatcher) State(cmd Command) CommandState {
	d.mu.Lock()
	defer d.mu.Unlock()

	if st, ok := d.states[cmd]; ok {
		return *st
	}
	return CommandState{Phase: PhaseIdle}
}

func (d *Dispatcher) begin(cmd Command) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if st, ok := d.states[cmd]; ok && st.Phase == PhasePending {
		return ErrCommandPending
	}
	d.states[cmd] = &CommandState{Phase: PhasePending, UpdatedAt: time.Now()}
	return nil
}

// finish releases the slot on both paths so the operator can retry at once.
func (d *Dispatcher) finish(cmd Command, err error, okMsg string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := d.states[cmd]
	st.UpdatedAt = time.Now()
	if err != nil {
		st.Phase = PhaseError
		st.Message = errorMessage(err)
		commandsTotal.WithLabelValues(string(cmd), "error").Inc()
		return
	}
	st.Phase = PhaseSuccess
	st.Message = okMsg
	commandsTotal.WithLabelValues(string(cmd), "success").Inc()
}

// errorMessage keeps the remote detail verbatim and falls back to a generic
// string for transport-level failures with no useful text.
func errorMessage(err error) string {
	var apiErr *botapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "operation failed"
}

// resync pulls fresh state right after a successful command so the optimistic
// guess is confirmed or corrected within one interval.
func (d *Dispatcher) resync(ctx context.Context) {
	if d.sync != nil {
		d.sync.SyncNow(ctx)
	}
}

// Start starts the bot. The running flag flips locally before the call
// resolves.
func (d *Dispatcher) Start(ctx context.Context) CommandState {
	if err := d.begin(CommandStart); err != nil {
		return d.State(CommandStart)
	}

	d.store.SetRunningIntent(true)
	err := d.api.StartBot(ctx)
	d.finish(CommandStart, err, "start sent")
	if err == nil {
		d.resync(ctx)
	} else {
		d.logger.Warn("start command failed", zap.Error(err))
	}
	return d.State(CommandStart)
}

// Stop stops the bot with the mirrored optimistic flip.
func (d *Dispatcher) Stop(ctx context.Context) CommandState {
	if err := d.begin(CommandStop); err != nil {
		return d.State(CommandStop)
	}

	d.store.SetRunningIntent(false)
	err := d.api.StopBot(ctx)
	d.finish(CommandStop, err, "stop sent")
	if err == nil {
		d.resync(ctx)
	} else {
		d.logger.Warn("stop command failed", zap.Error(err))
	}
	return d.State(CommandStop)
}

// RunOnce triggers one manual cycle. A structured result renders as a count
// summary; anything else falls back to a generic acknowledgement.
func (d *Dispatcher) RunOnce(ctx context.Context) CommandState {
	if err := d.begin(CommandRunOnce); err != nil {
		return d.State(CommandRunOnce)
	}

	resp, err := d.api.RunOnce(ctx)
	d.finish(CommandRunOnce, err, RunOnceSummary(resp))
	if err == nil {
		d.resync(ctx)
	} else {
		d.logger.Warn("run-once command failed", zap.Error(err))
	}
	return d.State(CommandRunOnce)
}

// ToggleDryRun flips dry-run relative to the currently displayed value
// (confirmed state with any pending intent already merged).
func (d *Dispatcher) ToggleDryRun(ctx context.Context) CommandState {
	if err := d.begin(CommandDryRun); err != nil {
		return d.State(CommandDryRun)
	}

	target := true
	if st := d.store.View().Status; st != nil {
		target = !st.DryRun
	}

	d.store.SetDryRunIntent(target)
	_, err := d.api.UpdateDryRun(ctx, target)
	okMsg := "dry-run off"
	if target {
		okMsg = "dry-run on"
	}
	d.finish(CommandDryRun, err, okMsg)
	if err == nil {
		d.resync(ctx)
	} else {
		d.logger.Warn("dry-run toggle failed", zap.Error(err))
	}
	return d.State(CommandDryRun)
}

// SaveSettings normalizes a form draft into a full settings document and
// submits it (full replace, never a partial patch).
func (d *Dispatcher) SaveSettings(ctx context.Context, draft SettingsDraft) CommandState {
	if err := d.begin(CommandSaveSettings); err != nil {
		return d.State(CommandSaveSettings)
	}

	settings, err := draft.Normalize()
	if err == nil {
		_, err = d.api.SaveSettings(ctx, settings)
	}
	d.finish(CommandSaveSettings, err, "settings saved")
	if err == nil {
		d.resync(ctx)
	} else {
		d.logger.Warn("save-settings failed", zap.Error(err))
	}
	return d.State(CommandSaveSettings)
}

// SaxoAuthURL fetches a broker authorization URL for the operator to open.
func (d *Dispatcher) SaxoAuthURL(ctx context.Context) (string, CommandState) {
	if err := d.begin(CommandSaxoAuthURL); err != nil {
		return "", d.State(CommandSaxoAuthURL)
	}

	url, err := d.api.SaxoAuthURL(ctx)
	d.finish(CommandSaxoAuthURL, err, "authorization URL ready")
	if err != nil {
		d.logger.Warn("saxo auth-url failed", zap.Error(err))
	}
	return url, d.State(CommandSaxoAuthURL)
}

// SaxoExchange trades a pasted authorization code for broker tokens.
func (d *Dispatcher) SaxoExchange(ctx context.Context, code string) CommandState {
	if err := d.begin(CommandSaxoExchange); err != nil {
		return d.State(CommandSaxoExchange)
	}

	code = trimmed(code)
	var (
		resp *botapi.AuthExchangeResponse
		err  error
	)
	if code == "" {
		err = errors.New("authorization code is empty")
	} else {
		resp, err = d.api.SaxoAuthExchange(ctx, code)
	}

	okMsg := "tokens saved"
	if resp != nil && resp.ExpiresAt > 0 {
		okMsg = fmt.Sprintf("tokens saved, expires %s", FormatEpoch(&resp.ExpiresAt))
	}
	d.finish(CommandSaxoExchange, err, okMsg)
	if err == nil {
		d.resync(ctx)
	} else {
		d.logger.Warn("saxo auth-exchange failed", zap.Error(err))
	}
	return d.State(CommandSaxoExchange)
}

// SettingsDraft is the settings form as submitted: allowed pairs as one
// comma-separated text field, numerics as strings. Normalize applies the
// submission-time coercion rules.
type SettingsDraft struct {
	PollInterval     string `json:"poll_interval"`
	AllowedPairs     string `json:"allowed_pairs"`
	MaxLotCap        string `json:"max_lot_cap"`
	DedupWindow      string `json:"dedup_window"`
	DryRun           bool   `json:"dry_run"`
	MaxOpenPositions string `json:"max_open_positions"`
	MaxTotalUnits    string `json:"max_total_units"`
}

// Normalize converts the draft into a full Settings document: pairs split on
// commas with empty entries discarded, numerics parsed and range-checked.
func (d SettingsDraft) Normalize() (botapi.Settings, error) {
	var s botapi.Settings

	pollInterval, err := strconv.Atoi(trimmed(d.PollInterval))
	if err != nil || pollInterval < 1 {
		return s, errors.New("poll_interval must be a positive integer")
	}

	maxLotCap, err := strconv.ParseFloat(trimmed(d.MaxLotCap), 64)
	if err != nil || maxLotCap <= 0 || maxLotCap > 1 {
		return s, errors.New("max_lot_cap must be a number in (0, 1]")
	}

	dedupWindow, err := strconv.Atoi(trimmed(d.DedupWindow))
	if err != nil || dedupWindow < 0 {
		return s, errors.New("dedup_window must be a non-negative integer")
	}

	maxOpenPositions, err := strconv.Atoi(trimmed(d.MaxOpenPositions))
	if err != nil || maxOpenPositions < 0 {
		return s, errors.New("max_open_positions must be a non-negative integer")
	}

	maxTotalUnits, err := strconv.Atoi(trimmed(d.MaxTotalUnits))
	if err != nil || maxTotalUnits < 0 {
		return s, errors.New("max_total_units must be a non-negative integer")
	}

	s = botapi.Settings{
		PollInterval:     pollInterval,
		AllowedPairs:     SplitPairs(d.AllowedPairs),
		MaxLotCap:        maxLotCap,
		DedupWindow:      dedupWindow,
		DryRun:           d.DryRun,
		MaxOpenPositions: maxOpenPositions,
		MaxTotalUnits:    maxTotalUnits,
	}
	return s, nil
}
