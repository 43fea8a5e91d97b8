package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/doorbell-dev/doorbell/pkg/cli/config"
	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	app := &cli.Command{
		Name:    "doorbell",
		Usage:   "Public invite gateway with a live roster feed",
		Version: version,
		Flags:   append(loggerCfg.Flags(), sentryCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logCloser, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, logCloser)

			sentryCloser, err := sentryCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, sentryCloser)

			logging.Default().Info("Starting doorbell",
				"version", version,
				"logger", loggerCfg,
				"sentry", sentryCfg,
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for _, closer := range closers {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
