package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doorbell-dev/doorbell/pkg/cli/config"
	httpctrl "github.com/doorbell-dev/doorbell/pkg/controller/http"
	"github.com/doorbell-dev/doorbell/pkg/repository"
	"github.com/doorbell-dev/doorbell/pkg/service/roster"
	"github.com/doorbell-dev/doorbell/pkg/usecase"
	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var slackCfg config.Slack
	var inviteCfg config.Invite
	var captchaCfg config.Captcha

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":3000",
			Sources:     cli.EnvVars("DOORBELL_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, inviteCfg.Flags()...)
	flags = append(flags, captchaCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the invite gateway HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("serve configuration",
				"addr", addr,
				"slack", slackCfg,
				"invite", inviteCfg,
				"captcha", captchaCfg,
			)

			client, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure Slack client")
			}

			state := repository.NewRosterState()

			syncOpts := []roster.Option{}
			channels := inviteCfg.Channels()
			if len(channels) > 0 {
				syncOpts = append(syncOpts, roster.WithChannelDirectory())
			}
			sync := roster.New(client, state, slackCfg.Interval(), syncOpts...)

			// The dispatcher outlives individual requests; its context is
			// cancelled as part of shutdown
			hubCtx, hubCancel := context.WithCancel(ctx)
			defer hubCancel()

			hub := roster.NewBroadcaster(state)
			go hub.Run(hubCtx, sync.Events())

			verifier, err := captchaCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure captcha")
			}

			ucOpts := []usecase.Option{}
			if len(channels) > 0 {
				ucOpts = append(ucOpts, usecase.WithChannelAllowList(channels))
			}
			if emails := inviteCfg.Emails(); len(emails) > 0 {
				ucOpts = append(ucOpts, usecase.WithEmailAllowList(emails))
			}
			if inviteCfg.ConsentRequired() {
				ucOpts = append(ucOpts, usecase.WithConsentRequired())
			}
			if verifier != nil {
				ucOpts = append(ucOpts, usecase.WithCaptcha(verifier))
				logging.Default().Info("captcha verification enabled")
			}

			uc, err := usecase.NewInviteUseCase(client, state, ucOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to build invite orchestrator")
			}

			if err := sync.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start roster synchronizer")
			}
			sync.OnReady(func() {
				snapshot := sync.Snapshot()
				logging.Default().Info("roster ready",
					"total", snapshot.Total,
					"active", snapshot.Active,
				)
			})

			httpOpts := []httpctrl.Options{}
			if captchaCfg.Required() {
				httpOpts = append(httpOpts, httpctrl.WithCaptchaSiteKey(captchaCfg.SiteKey()))
			}
			if inviteCfg.ConsentRequired() {
				httpOpts = append(httpOpts, httpctrl.WithCoCURL(inviteCfg.CoCURL()))
			}

			handler, err := httpctrl.New(uc, sync, hub, slackCfg.Workspace(), httpOpts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				sync.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				sync.Stop()
				hubCancel()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
