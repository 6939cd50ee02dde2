package app

import (
	"reflect"
	"strings"
	"testing"

	"fincsops/clients/botapi"
)

func TestFormatTimeHandlesAbsentAndMalformed(t *testing.T) {
	if got := FormatTime(nil); got != "-" {
		t.Errorf("nil: got %s", got)
	}
	empty := ""
	if got := FormatTime(&empty); got != "-" {
		t.Errorf("empty: got %s", got)
	}
	garbage := "yesterday-ish"
	if got := FormatTime(&garbage); got != "yesterday-ish" {
		t.Errorf("malformed value not passed through: %s", got)
	}
	iso := "2026-08-30T10:15:00Z"
	if got := FormatTime(&iso); got == "-" || got == iso {
		t.Errorf("parseable value not formatted: %s", got)
	}
}

func TestSplitPairs(t *testing.T) {
	got := SplitPairs(" USDJPY , EURUSD ,, ")
	if !reflect.DeepEqual(got, []string{"USDJPY", "EURUSD"}) {
		t.Errorf("unexpected pairs: %+v", got)
	}
	if got := SplitPairs(""); len(got) != 0 {
		t.Errorf("empty input produced %+v", got)
	}
}

func TestRunOnceSummary(t *testing.T) {
	resp := &botapi.RunOnceResponse{
		Status: "ok",
		Result: &botapi.RunOnceResult{
			Processed: 10,
			Submitted: 7,
			Failed:    []string{"a", "b"},
			Skipped:   []string{},
		},
	}
	if got := RunOnceSummary(resp); got != "processed 10, submitted 7, failed 2, skipped 0" {
		t.Errorf("unexpected summary: %s", got)
	}
	if got := RunOnceSummary(nil); got != "command sent" {
		t.Errorf("unexpected fallback: %s", got)
	}
	if got := RunOnceSummary(&botapi.RunOnceResponse{Status: "ok"}); got != "command sent" {
		t.Errorf("unexpected fallback without result: %s", got)
	}
}

func TestBuildStatusCard(t *testing.T) {
	card := BuildStatusCard(nil)
	if card.RunningLabel != "unknown" || card.LastScrape != "-" {
		t.Errorf("unexpected empty card: %+v", card)
	}

	errText := "scrape timeout"
	card = BuildStatusCard(&botapi.Status{Running: true, LastError: &errText})
	if card.RunningLabel != "running" || card.LastError != "scrape timeout" {
		t.Errorf("unexpected card: %+v", card)
	}
}

func TestSignalRowsMarkAdditionalSize(t *testing.T) {
	rows := SignalRows([]botapi.Signal{
		{Pair: "USDJPY", SizeRatio: 0.25, IsAdditional: true},
		{Pair: "EURUSD", SizeRatio: 0.5},
	})
	if rows[0].Size != "25.0% add" {
		t.Errorf("unexpected size: %s", rows[0].Size)
	}
	if rows[1].Size != "50.0%" {
		t.Errorf("unexpected size: %s", rows[1].Size)
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash(""); got != "-" {
		t.Errorf("empty hash: %s", got)
	}
	if got := shortHash("abcdef0123456789"); got != "abcdef01" {
		t.Errorf("long hash: %s", got)
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("short hash: %s", got)
	}
}

func TestRefreshCountdown(t *testing.T) {
	at := int64(1790000000)

	expired := int64(-10)
	card := BuildSaxoCard(&botapi.SaxoHealth{RefreshExpiresAt: &at, RefreshExpiresInSeconds: &expired})
	if card.RefreshCountdown != "expired" {
		t.Errorf("unexpected countdown: %s", card.RefreshCountdown)
	}

	threeDays := int64(3 * 86400)
	card = BuildSaxoCard(&botapi.SaxoHealth{RefreshExpiresAt: &at, RefreshExpiresInSeconds: &threeDays})
	if card.RefreshCountdown != "expires in 3d" {
		t.Errorf("unexpected countdown: %s", card.RefreshCountdown)
	}

	partialDay := int64(3600)
	card = BuildSaxoCard(&botapi.SaxoHealth{RefreshExpiresAt: &at, RefreshExpiresInSeconds: &partialDay})
	if card.RefreshCountdown != "expires in 1d" {
		t.Errorf("unexpected countdown: %s", card.RefreshCountdown)
	}

	farOut := int64(30 * 86400)
	card = BuildSaxoCard(&botapi.SaxoHealth{RefreshExpiresAt: &at, RefreshExpiresInSeconds: &farOut})
	if strings.HasPrefix(card.RefreshCountdown, "expires in") {
		t.Errorf("far-out expiry rendered as countdown: %s", card.RefreshCountdown)
	}
}

func TestBuildSaxoCardStates(t *testing.T) {
	card := BuildSaxoCard(nil)
	if card.State != "unknown" {
		t.Errorf("nil health: %s", card.State)
	}

	equity := 10234.5
	card = BuildSaxoCard(&botapi.SaxoHealth{OK: true, Env: "live", Equity: &equity})
	if card.State != "ok" || card.Equity != "10234.50" {
		t.Errorf("unexpected card: %+v", card)
	}

	errText := "token refresh failed"
	card = BuildSaxoCard(&botapi.SaxoHealth{Error: &errText})
	if card.State != "error" || card.Error != "token refresh failed" {
		t.Errorf("unexpected card: %+v", card)
	}
}
