package telemetry

import (
	"log"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rollbar/rollbar-go"
)

// Custom event names recorded in New Relic.
const (
	EventPaymentVerificationFailed = "PaymentVerificationFailed"
	EventSettlementFailed          = "SettlementFailed"
	EventPaymentSettled            = "PaymentSettled"
	EventWebhookRejected           = "WebhookRejected"
)

// Recorder sends structured events to New Relic and operator alerts to
// Rollbar. Either backend may be absent, in which case the event is only
// logged. A nil *Recorder logs too.
type Recorder struct {
	nrApp   *newrelic.Application
	rollbar bool
}

// Options configures a Recorder.
type Options struct {
	RollbarToken string
	Environment  string
	CodeVersion  string
	ServerHost   string
}

// NewRecorder creates a Recorder. Rollbar is enabled when a token is given.
func NewRecorder(nrApp *newrelic.Application, opts Options) *Recorder {
	r := &Recorder{nrApp: nrApp}

	if opts.RollbarToken != "" {
		rollbar.SetToken(opts.RollbarToken)
		rollbar.SetEnvironment(opts.Environment)
		if opts.CodeVersion != "" {
			rollbar.SetCodeVersion(opts.CodeVersion)
		}
		if opts.ServerHost != "" {
			rollbar.SetServerHost(opts.ServerHost)
		}
		r.rollbar = true
	}

	return r
}

// Event records a custom event with the given attributes.
func (r *Recorder) Event(name string, attrs map[string]interface{}) {
	log.Printf("[EVENT] Name=%s %s", name, formatAttrs(attrs))

	if r == nil || r.nrApp == nil {
		return
	}
	r.nrApp.RecordCustomEvent(name, attrs)
}

// Alert notifies operators of a failure that needs a human.
func (r *Recorder) Alert(msg string, err error, attrs map[string]interface{}) {
	log.Printf("[ALERT] %s: %v %s", msg, err, formatAttrs(attrs))

	if r == nil || !r.rollbar {
		return
	}
	extras := make(map[string]interface{}, len(attrs)+1)
	for k, v := range attrs {
		extras[k] = v
	}
	extras["alert"] = msg

	if err != nil {
		rollbar.Error(err, extras)
		return
	}
	rollbar.Error(msg, extras)
}

// Close flushes pending alerts.
func (r *Recorder) Close() {
	if r != nil && r.rollbar {
		rollbar.Close()
	}
}
