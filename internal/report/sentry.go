// Package report wires optional Sentry error reporting. With no DSN
// configured every call is a no-op.
package report

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"tracker.transitlive.org/internal/appconf"
)

var enabled bool

// Setup initializes Sentry when a DSN is configured.
func Setup(dsn string, env appconf.Environment, version string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env.String(),
		Release:     version,
	})
	if err != nil {
		return fmt.Errorf("initializing sentry: %w", err)
	}
	enabled = true
	return nil
}

// Flush drains pending events; call on shutdown.
func Flush() {
	if enabled {
		sentry.Flush(2 * time.Second)
	}
}

// CaptureError forwards err to Sentry when reporting is enabled.
func CaptureError(err error) {
	if enabled && err != nil {
		sentry.CaptureException(err)
	}
}

// CapturePanic forwards a recovered panic value to Sentry.
func CapturePanic(recovered any) {
	if enabled && recovered != nil {
		sentry.CurrentHub().Recover(recovered)
	}
}
