package app

import (
	"fincsops/clients/botapi"
	"fmt"
	"strings"
	"time"
)

// Pure, stateless projections of the synchronized state into display rows.
// Nothing here touches the store or the network.

const displayTimeLayout = "2006-01-02 15:04:05"

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// FormatTime renders a nullable service timestamp for display, falling back
// to the raw string when the shape is unexpected and "-" when absent.
func FormatTime(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, *value); err == nil {
			return t.Local().Format(displayTimeLayout)
		}
	}
	return *value
}

// FormatEpoch renders nullable epoch seconds for display.
func FormatEpoch(value *int64) string {
	if value == nil || *value == 0 {
		return "-"
	}
	return time.Unix(*value, 0).Local().Format(displayTimeLayout)
}

// SplitPairs normalizes the comma-separated allowed-pairs field: entries are
// trimmed and empties discarded.
func SplitPairs(raw string) []string {
	parts := strings.Split(raw, ",")
	pairs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// RunOnceSummary renders a manual-cycle result. Without the structured shape
// it falls back to a generic acknowledgement.
func RunOnceSummary(resp *botapi.RunOnceResponse) string {
	if resp == nil || resp.Result == nil {
		return "command sent"
	}
	r := resp.Result
	return fmt.Sprintf("processed %d, submitted %d, failed %d, skipped %d",
		r.Processed, r.Submitted, len(r.Failed), len(r.Skipped))
}

// StatusCard is the dashboard's operational summary.
type StatusCard struct {
	Running           bool   `json:"running"`
	RunningLabel      string `json:"running_label"`
	LastScrape        string `json:"last_scrape"`
	LastNewSegment    string `json:"last_new_segment"`
	ScrapeLastAttempt string `json:"scrape_last_attempt"`
	ScrapeLastSuccess string `json:"scrape_last_success"`
	PollInterval      int    `json:"poll_interval"`
	DryRun            bool   `json:"dry_run"`
	LatestSignal      string `json:"latest_signal"`
	LastError         string `json:"last_error"`
}

// BuildStatusCard projects a status (with intent already merged) into
// display fields.
func BuildStatusCard(status *botapi.Status) StatusCard {
	if status == nil {
		return StatusCard{RunningLabel: "unknown", LastScrape: "-", LastNewSegment: "-",
			ScrapeLastAttempt: "-", ScrapeLastSuccess: "-", LatestSignal: "-", LastError: "-"}
	}

	label := "stopped"
	if status.Running {
		label = "running"
	}

	latest := "-"
	if status.LatestSignal != nil && *status.LatestSignal != "" {
		latest = *status.LatestSignal
	}
	lastErr := "-"
	if status.LastError != nil && *status.LastError != "" {
		lastErr = *status.LastError
	}

	return StatusCard{
		Running:           status.Running,
		RunningLabel:      label,
		LastScrape:        FormatTime(status.LastScrape),
		LastNewSegment:    FormatTime(status.LastNewSegment),
		ScrapeLastAttempt: FormatTime(status.ScrapeLastAttempt),
		ScrapeLastSuccess: FormatTime(status.ScrapeLastSuccess),
		PollInterval:      status.PollInterval,
		DryRun:            status.DryRun,
		LatestSignal:      latest,
		LastError:         lastErr,
	}
}

// SignalRow is one display row of the signals table.
type SignalRow struct {
	Detected string `json:"detected"`
	Pair     string `json:"pair"`
	Action   string `json:"action"`
	Side     string `json:"side"`
	Size     string `json:"size"`
	Source   string `json:"source"`
}

func SignalRows(signals []botapi.Signal) []SignalRow {
	rows := make([]SignalRow, 0, len(signals))
	for _, sig := range signals {
		size := fmt.Sprintf("%.1f%%", sig.SizeRatio*100)
		if sig.IsAdditional {
			size += " add"
		}
		rows = append(rows, SignalRow{
			Detected: FormatTime(&sig.DetectedAt),
			Pair:     sig.Pair,
			Action:   sig.Action,
			Side:     sig.Side,
			Size:     size,
			Source:   sig.SourceText,
		})
	}
	return rows
}

// ActionRow is one display row of the executed-actions table.
type ActionRow struct {
	Created string `json:"created"`
	Type    string `json:"type"`
	Broker  string `json:"broker"`
	Status  string `json:"status"`
	Hash    string `json:"hash"`
	Error   string `json:"error"`
}

func ActionRows(actions []botapi.ActionRecord) []ActionRow {
	rows := make([]ActionRow, 0, len(actions))
	for _, act := range actions {
		errMsg := ""
		if act.ErrorMessage != nil {
			errMsg = *act.ErrorMessage
		}
		rows = append(rows, ActionRow{
			Created: FormatTime(&act.CreatedAt),
			Type:    act.ActionType,
			Broker:  act.Broker,
			Status:  act.Status,
			Hash:    shortHash(act.SegmentHash),
			Error:   errMsg,
		})
	}
	return rows
}

// RawRow is one display row of the raw-captures table.
type RawRow struct {
	Captured  string `json:"captured"`
	Channel   string `json:"channel"`
	Hash      string `json:"hash"`
	Processed bool   `json:"processed"`
	Text      string `json:"text"`
}

func RawRows(captures []botapi.RawCapture) []RawRow {
	rows := make([]RawRow, 0, len(captures))
	for _, rc := range captures {
		rows = append(rows, RawRow{
			Captured:  FormatTime(&rc.CapturedAt),
			Channel:   rc.ChannelName,
			Hash:      shortHash(rc.Hash),
			Processed: rc.Processed,
			Text:      rc.RawText,
		})
	}
	return rows
}

func shortHash(hash string) string {
	if hash == "" {
		return "-"
	}
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}

// SaxoCard is the broker-health panel.
type SaxoCard struct {
	State            string `json:"state"`
	Env              string `json:"env"`
	HasAccessToken   bool   `json:"has_access_token"`
	HasRefreshToken  bool   `json:"has_refresh_token"`
	Equity           string `json:"equity"`
	RefreshExpiresAt string `json:"refresh_expires_at"`
	RefreshCountdown string `json:"refresh_countdown"`
	Error            string `json:"error"`
}

// refreshWarnWindow is how close to refresh-token expiry the countdown turns
// into a day count.
const refreshWarnWindow = 7 * 24 * time.Hour

// BuildSaxoCard projects a broker-health snapshot. The countdown is derived
// only from the latest poll, never cached across cycles.
func BuildSaxoCard(health *botapi.SaxoHealth) SaxoCard {
	if health == nil {
		return SaxoCard{State: "unknown", Equity: "-", RefreshExpiresAt: "-", RefreshCountdown: "-"}
	}

	state := "error"
	if health.OK {
		state = "ok"
	}

	equity := "-"
	if health.Equity != nil {
		equity = fmt.Sprintf("%.2f", *health.Equity)
	}

	errMsg := ""
	if health.Error != nil {
		errMsg = *health.Error
	}

	return SaxoCard{
		State:            state,
		Env:              health.Env,
		HasAccessToken:   health.HasAccessToken,
		HasRefreshToken:  health.HasRefreshToken,
		Equity:           equity,
		RefreshExpiresAt: FormatEpoch(health.RefreshExpiresAt),
		RefreshCountdown: refreshCountdown(health),
		Error:            errMsg,
	}
}

func refreshCountdown(health *botapi.SaxoHealth) string {
	if health.RefreshExpiresAt == nil {
		return "-"
	}
	seconds := health.RefreshExpiresInSeconds
	if seconds == nil {
		return FormatEpoch(health.RefreshExpiresAt)
	}
	if *seconds <= 0 {
		return "expired"
	}
	if time.Duration(*seconds)*time.Second <= refreshWarnWindow {
		days := (*seconds + 86399) / 86400
		if days < 1 {
			days = 1
		}
		return fmt.Sprintf("expires in %dd", days)
	}
	return FormatEpoch(health.RefreshExpiresAt)
}
