package config

import (
	"net/url"
	"time"
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of config validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validate checks the config for invalid values.
func (c *Config) Validate() ValidationResult {
	var errors []ValidationError

	errors = append(errors, validateAPI(&c.API)...)
	errors = append(errors, validateServer(&c.Server)...)
	errors = append(errors, validateGate(&c.Gate)...)
	errors = append(errors, validateSync(&c.Sync)...)

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateAPI(a *APIConfig) []ValidationError {
	var errors []ValidationError

	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Message: "must be an absolute http(s) URL",
		})
	}

	if a.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout",
			Message: "must be positive",
		})
	}

	return errors
}

func validateServer(s *ServerConfig) []ValidationError {
	var errors []ValidationError

	if s.ListenAddr == "" {
		errors = append(errors, ValidationError{
			Field:   "server.listen_addr",
			Message: "must not be empty",
		})
	}

	return errors
}

func validateGate(g *GateConfig) []ValidationError {
	var errors []ValidationError

	// Half a credential pair is almost always a deployment mistake; the gate
	// would silently run wide open.
	if (g.Username == "") != (g.Password == "") {
		errors = append(errors, ValidationError{
			Field:   "gate",
			Message: "BASIC_AUTH_USER and BASIC_AUTH_PASS must be set together",
		})
	}

	return errors
}

func validateSync(s *SyncConfig) []ValidationError {
	var errors []ValidationError

	if s.Interval < 1*time.Second {
		errors = append(errors, ValidationError{
			Field:   "sync.interval",
			Message: "must be at least 1 second",
		})
	}

	if s.FeedLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "sync.feed_limit",
			Message: "must be at least 1",
		})
	}

	if s.RawLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "sync.raw_limit",
			Message: "must be at least 1",
		})
	}

	return errors
}
