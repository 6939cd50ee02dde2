package botapi

// Wire types for the bot service API. Timestamps stay as the strings the
// service sends; the console only formats them for display.

// Status is the bot's operational snapshot from GET /status.
type Status struct {
	Running           bool    `json:"running"`
	LastScrape        *string `json:"last_scrape"`
	LastNewSegment    *string `json:"last_new_segment"`
	ScrapeLastAttempt *string `json:"scrape_last_attempt"`
	ScrapeLastSuccess *string `json:"scrape_last_success"`
	PollInterval      int     `json:"poll_interval"`
	DryRun            bool    `json:"dry_run"`
	LatestSignal      *string `json:"latest_signal"`
	LastError         *string `json:"last_error"`
}

// Settings is the bot's editable, non-secret configuration.
type Settings struct {
	PollInterval     int      `json:"poll_interval"`
	AllowedPairs     []string `json:"allowed_pairs"`
	MaxLotCap        float64  `json:"max_lot_cap"`
	DedupWindow      int      `json:"dedup_window"`
	DryRun           bool     `json:"dry_run"`
	MaxOpenPositions int      `json:"max_open_positions"`
	MaxTotalUnits    int      `json:"max_total_units"`
}

// Signal is one parsed trading signal from GET /signals.
type Signal struct {
	DetectedAt   string  `json:"detected_at"`
	Pair         string  `json:"pair"`
	Action       string  `json:"action"` // ENTRY, TP, SL
	Side         string  `json:"side"`   // LONG, SHORT
	SizeRatio    float64 `json:"size_ratio"`
	IsAdditional bool    `json:"is_additional"`
	SourceText   string  `json:"source_text"`
}

// ActionRecord is one executed action from GET /actions.
type ActionRecord struct {
	CreatedAt    string  `json:"created_at"`
	ActionType   string  `json:"action_type"` // NEW, CLOSE
	Broker       string  `json:"broker"`      // SIMULATION, OANDA, ...
	Status       string  `json:"status"`      // PENDING, EXECUTED, FAILED
	SegmentHash  string  `json:"segment_hash,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// RawCapture is one raw scrape record from GET /raw.
type RawCapture struct {
	CapturedAt  string `json:"captured_at"`
	ChannelName string `json:"channel_name"`
	RawText     string `json:"raw_text"`
	Hash        string `json:"hash"`
	Processed   bool   `json:"processed"`
}

// SaxoHealth is the broker connection snapshot from GET /saxo/health.
type SaxoHealth struct {
	OK                      bool     `json:"ok"`
	Env                     string   `json:"env,omitempty"`
	HasAccessToken          bool     `json:"has_access_token"`
	HasRefreshToken         bool     `json:"has_refresh_token"`
	AccountKey              *string  `json:"account_key"`
	ClientKey               *string  `json:"client_key"`
	Equity                  *float64 `json:"equity"`
	RefreshExpiresAt        *int64   `json:"refresh_expires_at"`
	RefreshExpired          *bool    `json:"refresh_expired"`
	RefreshExpiresInSeconds *int64   `json:"refresh_expires_in_seconds"`
	Error                   *string  `json:"error"`
}

// RunOnceResult carries counts from a manual cycle.
type RunOnceResult struct {
	Processed int      `json:"processed"`
	Submitted int      `json:"submitted"`
	Failed    []string `json:"failed"`
	Skipped   []string `json:"skipped"`
}

// RunOnceResponse is the payload of POST /bot/run-once. Result may be absent
// on older service versions.
type RunOnceResponse struct {
	Status string         `json:"status"`
	Result *RunOnceResult `json:"result"`
}

// AuthURLResponse is the payload of GET /saxo/auth-url.
type AuthURLResponse struct {
	URL string `json:"url"`
}

// AuthExchangeResponse is the payload of POST /saxo/auth-exchange.
// ExpiresAt is epoch seconds.
type AuthExchangeResponse struct {
	ExpiresAt int64 `json:"expires_at"`
}
