package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

// Sentry is the flag-backed error reporting configuration
type Sentry struct {
	dsn string
	env string
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting (disabled when empty)",
			Category:    "Monitoring",
			Sources:     cli.EnvVars("DOORBELL_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Category:    "Monitoring",
			Sources:     cli.EnvVars("DOORBELL_SENTRY_ENV"),
			Destination: &x.env,
		},
	}
}

func (x Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.dsn != ""),
		slog.String("env", x.env),
	)
}

// Configure initializes the Sentry client when a DSN is set and returns
// a flush closer
func (x *Sentry) Configure() (func(), error) {
	if x.dsn == "" {
		logging.Default().Info("Sentry is not configured, error reporting disabled")
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.env,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Sentry")
	}

	logging.Default().Info("Sentry error reporting enabled", "env", x.env)
	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}
