package app

import (
	"log"

	"github.com/newrelic/go-agent/v3/newrelic"

	"schoolfees/internal/config"
)

// NewRelicApplication starts the New Relic agent when enabled. It returns
// nil when the agent is disabled or fails to start.
func NewRelicApplication(cfg config.NewRelicConfig) *newrelic.Application {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil
	}

	nrApp, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		log.Printf("failed to initialize New Relic: %v", err)
		return nil
	}

	log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.AppName)
	return nrApp
}
