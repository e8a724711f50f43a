package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("DRIVEMIRROR_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Environment,
			Sources:     cli.EnvVars("DRIVEMIRROR_SENTRY_ENV"),
		},
	}
}

// Enabled reports whether a DSN is configured
func (c *Sentry) Enabled() bool {
	return c.DSN != ""
}

// Configure initializes the Sentry client. It does nothing without a DSN.
func (c *Sentry) Configure() error {
	if !c.Enabled() {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     "drivemirror@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize sentry", goerr.T(types.ErrTagInvalidArgument))
	}
	return nil
}

// Report sends err to Sentry and waits for delivery
func (c *Sentry) Report(err error) {
	if !c.Enabled() || err == nil {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("error_kind", types.ErrorKind(err))
		if errCtx := errorContext(err); errCtx != nil {
			scope.SetContext("goerr", errCtx)
		}
	})
	hub.CaptureException(err)
	hub.Flush(2 * time.Second)
}

// errorContext collects the goerr values of err, or nil when there are none
func errorContext(err error) sentry.Context {
	goErr := goerr.Unwrap(err)
	if goErr == nil {
		return nil
	}
	values := goErr.Values()
	if len(values) == 0 {
		return nil
	}

	errCtx := sentry.Context{}
	for k, v := range values {
		errCtx[k] = v
	}
	return errCtx
}
