package notifier

import (
	"errors"
	"testing"
	"time"
)

type recordingNotifier struct {
	alerts   []OpsAlert
	closed   bool
	closeErr error
}

func (r *recordingNotifier) SendOpsAlert(alert OpsAlert) {
	r.alerts = append(r.alerts, alert)
}

func (r *recordingNotifier) Close() error {
	r.closed = true
	return r.closeErr
}

func TestMultiNotifierFiltersNil(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}

	multi := NewMultiNotifier(a, nil, b, nil)
	multi.SendOpsAlert(OpsAlert{
		Severity:  SeverityWarning,
		Title:     "bot reported an error",
		Timestamp: time.Now(),
	})

	if len(a.alerts) != 1 || len(b.alerts) != 1 {
		t.Errorf("broadcast missed a channel: %d %d", len(a.alerts), len(b.alerts))
	}
}

func TestMultiNotifierCloseReturnsLastError(t *testing.T) {
	failErr := errors.New("session close failed")
	a := &recordingNotifier{closeErr: failErr}
	b := &recordingNotifier{}

	multi := NewMultiNotifier(a, b)
	if err := multi.Close(); err != failErr {
		t.Errorf("unexpected error: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("not all notifiers closed")
	}
}

func TestMultiNotifierEmpty(t *testing.T) {
	multi := NewMultiNotifier(nil, nil)
	multi.SendOpsAlert(OpsAlert{Title: "noop"})
	if err := multi.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
