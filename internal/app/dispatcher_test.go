package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"fincsops/clients/botapi"
	"fincsops/config"

	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T, handler http.Handler) (*Dispatcher, *StateStore, func()) {
	t.Helper()

	server := httptest.NewServer(handler)
	cfg := &config.Config{
		API: config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second},
	}
	store := NewStateStore()
	api := botapi.NewClient(zap.NewNop(), cfg)
	return NewDispatcher(zap.NewNop(), api, store, nil), store, server.Close
}

func TestStartAppliesIntentBeforeResolve(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(inFlight)
		<-release
		w.WriteHeader(http.StatusOK)
	})
	dispatcher, store, done := newTestDispatcher(t, handler)
	defer done()

	store.Commit(snapAt(1, false))

	go dispatcher.Start(context.Background())
	<-inFlight

	// The call has not returned yet; the view must already show running.
	if view := store.View(); view.Status == nil || !view.Status.Running {
		t.Error("running intent not applied before the call resolved")
	}
	close(release)
}

func TestStartRejectedWhilePending(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(inFlight)
		<-release
		w.WriteHeader(http.StatusOK)
	})
	dispatcher, _, done := newTestDispatcher(t, handler)
	defer done()

	go dispatcher.Start(context.Background())
	<-inFlight

	state := dispatcher.Start(context.Background())
	if state.Phase != PhasePending {
		t.Errorf("expected pending rejection, got %s", state.Phase)
	}
	close(release)
}

func TestStartFailureKeepsIntent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"detail": "bot already running"}`))
	})
	dispatcher, store, done := newTestDispatcher(t, handler)
	defer done()

	store.Commit(snapAt(1, false))
	state := dispatcher.Start(context.Background())

	if state.Phase != PhaseError {
		t.Fatalf("unexpected phase: %s", state.Phase)
	}
	if state.Message != "bot already running" {
		t.Errorf("remote detail not surfaced: %s", state.Message)
	}
	// No rollback: the next sync tick reconciles the guess.
	if view := store.View(); !view.Status.Running {
		t.Error("optimistic intent rolled back on failure")
	}
}

func TestRunOnceRendersCountSummary(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok","result":{"processed":10,"submitted":7,"failed":["a","b"],"skipped":[]}}`))
	})
	dispatcher, _, done := newTestDispatcher(t, handler)
	defer done()

	state := dispatcher.RunOnce(context.Background())
	if state.Phase != PhaseSuccess {
		t.Fatalf("unexpected phase: %s", state.Phase)
	}
	if state.Message != "processed 10, submitted 7, failed 2, skipped 0" {
		t.Errorf("unexpected summary: %s", state.Message)
	}
}

func TestRunOnceWithoutResultFallsBack(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	dispatcher, _, done := newTestDispatcher(t, handler)
	defer done()

	state := dispatcher.RunOnce(context.Background())
	if state.Message != "command sent" {
		t.Errorf("unexpected summary: %s", state.Message)
	}
}

func TestToggleDryRunTargetsDisplayedValue(t *testing.T) {
	var sent map[string]bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/settings" {
			sent = map[string]bool{}
			if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
				t.Errorf("decode: %v", err)
			}
		}
		w.Write([]byte(`{}`))
	})
	dispatcher, store, done := newTestDispatcher(t, handler)
	defer done()

	snap := snapAt(1, true)
	snap.Status.DryRun = true
	store.Commit(snap)

	state := dispatcher.ToggleDryRun(context.Background())
	if state.Phase != PhaseSuccess {
		t.Fatalf("unexpected phase: %s", state.Phase)
	}
	if on, ok := sent["dry_run"]; !ok || on {
		t.Errorf("expected dry_run false, sent %+v", sent)
	}
	if state.Message != "dry-run off" {
		t.Errorf("unexpected message: %s", state.Message)
	}
}

func TestSaxoExchangeRejectsEmptyCode(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("empty code reached the service")
	})
	dispatcher, _, done := newTestDispatcher(t, handler)
	defer done()

	state := dispatcher.SaxoExchange(context.Background(), "   ")
	if state.Phase != PhaseError {
		t.Fatalf("unexpected phase: %s", state.Phase)
	}
	if state.Message != "authorization code is empty" {
		t.Errorf("unexpected message: %s", state.Message)
	}
}

func TestNormalizeSplitsPairs(t *testing.T) {
	draft := SettingsDraft{
		PollInterval:     "30",
		AllowedPairs:     " USDJPY , EURUSD ,, ",
		MaxLotCap:        "0.8",
		DedupWindow:      "60",
		DryRun:           true,
		MaxOpenPositions: "8",
		MaxTotalUnits:    "400000",
	}

	settings, err := draft.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(settings.AllowedPairs, []string{"USDJPY", "EURUSD"}) {
		t.Errorf("unexpected pairs: %+v", settings.AllowedPairs)
	}
	if settings.PollInterval != 30 || settings.MaxLotCap != 0.8 || !settings.DryRun {
		t.Errorf("unexpected settings: %+v", settings)
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	base := SettingsDraft{
		PollInterval:     "30",
		AllowedPairs:     "USDJPY",
		MaxLotCap:        "0.8",
		DedupWindow:      "60",
		MaxOpenPositions: "8",
		MaxTotalUnits:    "400000",
	}

	cases := []struct {
		name   string
		mutate func(*SettingsDraft)
	}{
		{"zero poll interval", func(d *SettingsDraft) { d.PollInterval = "0" }},
		{"non-numeric poll interval", func(d *SettingsDraft) { d.PollInterval = "soon" }},
		{"lot cap above one", func(d *SettingsDraft) { d.MaxLotCap = "1.5" }},
		{"zero lot cap", func(d *SettingsDraft) { d.MaxLotCap = "0" }},
		{"negative dedup window", func(d *SettingsDraft) { d.DedupWindow = "-1" }},
		{"negative open positions", func(d *SettingsDraft) { d.MaxOpenPositions = "-2" }},
	}

	for _, tc := range cases {
		draft := base
		tc.mutate(&draft)
		if _, err := draft.Normalize(); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
