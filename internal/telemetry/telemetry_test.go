package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAttrs_Sorted(t *testing.T) {
	t.Parallel()

	got := formatAttrs(map[string]interface{}{
		"reference": "FEE-1",
		"amount":    5000,
		"cause":     "not_found",
	})

	assert.Equal(t, "amount=5000 cause=not_found reference=FEE-1", got)
	assert.Empty(t, formatAttrs(nil))
}

func TestNilRecorderOnlyLogs(t *testing.T) {
	t.Parallel()

	var r *Recorder
	assert.NotPanics(t, func() {
		r.Event(EventSettlementFailed, map[string]interface{}{"reference": "FEE-1"})
		r.Alert("duplicate payment", errors.New("boom"), nil)
		r.Close()
	})
}

func TestRecorderWithoutBackends(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil, Options{Environment: "test"})
	assert.NotPanics(t, func() {
		r.Event(EventPaymentVerificationFailed, nil)
		r.Alert("malformed provider data", nil, map[string]interface{}{"reference": "FEE-2"})
	})
}
