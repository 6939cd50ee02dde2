package botapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fincsops/config"

	"go.uber.org/zap"
)

func newTestClient(serverURL string) *Client {
	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL: serverURL,
			Timeout: 5 * time.Second,
		},
	}
	return NewClient(zap.NewNop(), cfg)
}

func TestNewClientStripsTrailingSlash(t *testing.T) {
	client := newTestClient("http://bot.internal:8000/")

	if client.BaseURL() != "http://bot.internal:8000" {
		t.Errorf("unexpected base URL: %s", client.BaseURL())
	}
}

func TestStatusParsesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if cc := r.Header.Get("Cache-Control"); cc != "no-cache" {
			t.Errorf("unexpected cache control: %s", cc)
		}
		lastScrape := "2026-08-30T10:00:00Z"
		json.NewEncoder(w).Encode(Status{
			Running:      true,
			LastScrape:   &lastScrape,
			PollInterval: 15,
			DryRun:       true,
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Running {
		t.Error("expected running")
	}
	if status.LastScrape == nil || *status.LastScrape != "2026-08-30T10:00:00Z" {
		t.Errorf("unexpected last scrape: %v", status.LastScrape)
	}
	if status.LastError != nil {
		t.Error("expected nil last error")
	}
}

func TestErrorExtractsDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "bot already running"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.StartBot(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Message != "bot already running" {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("unexpected status: %d", apiErr.Status)
	}
}

func TestErrorFallsBackToBodyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("scheduler crashed"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Status(context.Background())
	if err == nil || err.Error() != "scheduler crashed" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestErrorFallsBackToGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Settings(context.Background())
	if err == nil || err.Error() != "request failed (503)" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSignalsSendsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "6" {
			t.Errorf("unexpected limit: %s", got)
		}
		json.NewEncoder(w).Encode([]Signal{
			{Pair: "USDJPY", Action: "ENTRY", Side: "LONG", SizeRatio: 0.2},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	signals, err := client.Signals(context.Background(), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signals) != 1 || signals[0].Pair != "USDJPY" {
		t.Errorf("unexpected signals: %+v", signals)
	}
}

func TestNonArrayDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"detail": "not a list"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	actions, err := client.Actions(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actions == nil || len(actions) != 0 {
		t.Errorf("expected empty slice, got %+v", actions)
	}
}

func TestSaveSettingsSubmitsFullDocument(t *testing.T) {
	var received Settings
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/settings" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(received)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	saved, err := client.SaveSettings(context.Background(), Settings{
		PollInterval: 30,
		AllowedPairs: []string{"USDJPY", "EURUSD"},
		MaxLotCap:    0.8,
		DryRun:       true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if received.PollInterval != 30 || len(received.AllowedPairs) != 2 {
		t.Errorf("full document not submitted: %+v", received)
	}
	if saved.MaxLotCap != 0.8 {
		t.Errorf("unexpected echo: %+v", saved)
	}
}

func TestRunOnceParsesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"ok","result":{"processed":10,"submitted":7,"failed":["a","b"],"skipped":[]}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Result == nil || resp.Result.Processed != 10 || len(resp.Result.Failed) != 2 {
		t.Errorf("unexpected result: %+v", resp.Result)
	}
}

func TestSaxoAuthExchangePostsCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "abc123" {
			t.Errorf("unexpected code: %s", body["code"])
		}
		json.NewEncoder(w).Encode(AuthExchangeResponse{ExpiresAt: 1790000000})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.SaxoAuthExchange(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ExpiresAt != 1790000000 {
		t.Errorf("unexpected expiry: %d", resp.ExpiresAt)
	}
}
