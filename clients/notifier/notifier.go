package notifier

import (
	"time"
)

// Severity classifies an operator alert.
type Severity string

const (
	SeverityWarning  Severity = "warning"  // degraded but running
	SeverityCritical Severity = "critical" // bot stopped or erroring
)

// OpsAlert is one operator notification about the remote bot.
type OpsAlert struct {
	Severity  Severity
	Title     string // short headline, e.g. "bot reported an error"
	Detail    string // verbatim error text or transition description
	Timestamp time.Time
}

// Notifier is the interface for sending operator alerts to various channels.
type Notifier interface {
	// SendOpsAlert sends an operator alert notification.
	SendOpsAlert(alert OpsAlert)

	// Close cleans up any resources.
	Close() error
}

// MultiNotifier broadcasts alerts to multiple notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a new MultiNotifier with the given notifiers.
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	// Filter out nil notifiers
	var active []Notifier
	for _, n := range notifiers {
		if n != nil {
			active = append(active, n)
		}
	}
	return &MultiNotifier{notifiers: active}
}

// SendOpsAlert sends the alert to all registered notifiers.
func (m *MultiNotifier) SendOpsAlert(alert OpsAlert) {
	for _, n := range m.notifiers {
		n.SendOpsAlert(alert)
	}
}

// Close closes all registered notifiers.
func (m *MultiNotifier) Close() error {
	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
