package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doorbell-dev/doorbell/pkg/service/slackapi"
)

// Slack is the flag-backed configuration of the membership API access
type Slack struct {
	token     string
	workspace string
	interval  time.Duration
	pageDelay time.Duration
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-token",
			Usage:       "Slack API token of an admin account (required)",
			Category:    "Slack",
			Sources:     cli.EnvVars("DOORBELL_SLACK_TOKEN"),
			Destination: &x.token,
		},
		&cli.StringFlag{
			Name:        "slack-workspace",
			Usage:       "Slack workspace name, as in <workspace>.slack.com (required)",
			Category:    "Slack",
			Sources:     cli.EnvVars("DOORBELL_SLACK_WORKSPACE"),
			Destination: &x.workspace,
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Interval between roster poll cycles",
			Category:    "Slack",
			Value:       time.Minute,
			Sources:     cli.EnvVars("DOORBELL_POLL_INTERVAL"),
			Destination: &x.interval,
		},
		&cli.DurationFlag{
			Name:        "page-delay",
			Usage:       "Delay between listing pages, to respect fair-use limits",
			Category:    "Slack",
			Sources:     cli.EnvVars("DOORBELL_PAGE_DELAY"),
			Destination: &x.pageDelay,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("token.len", len(x.token)),
		slog.String("workspace", x.workspace),
		slog.String("interval", x.interval.String()),
		slog.String("page_delay", x.pageDelay.String()),
	)
}

// Workspace returns the workspace name
func (x *Slack) Workspace() string {
	return x.workspace
}

// Interval returns the poll interval
func (x *Slack) Interval() time.Duration {
	return x.interval
}

// Configure validates the flags and builds the Slack API client
func (x *Slack) Configure() (*slackapi.Client, error) {
	if x.token == "" {
		return nil, goerr.New("--slack-token is required")
	}
	if x.workspace == "" {
		return nil, goerr.New("--slack-workspace is required")
	}
	if x.interval <= 0 {
		return nil, goerr.New("--poll-interval must be positive", goerr.V("interval", x.interval))
	}

	return slackapi.New(x.token, x.workspace, slackapi.WithPageDelay(x.pageDelay))
}
