package config

import (
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"
)

// Invite is the flag-backed configuration of the invite policy
type Invite struct {
	channels []string
	emails   []string
	cocURL   string
}

func (x *Invite) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "channel",
			Usage:       "Restrict invites to the named channel (repeatable; unrestricted when empty)",
			Category:    "Invite",
			Sources:     cli.EnvVars("DOORBELL_CHANNELS"),
			Destination: &x.channels,
		},
		&cli.StringSliceFlag{
			Name:        "accept-email",
			Usage:       "Glob pattern of acceptable email addresses (repeatable; all accepted when empty)",
			Category:    "Invite",
			Sources:     cli.EnvVars("DOORBELL_ACCEPT_EMAILS"),
			Destination: &x.emails,
		},
		&cli.StringFlag{
			Name:        "coc-url",
			Usage:       "URL of a code of conduct the requester must agree to (optional)",
			Category:    "Invite",
			Sources:     cli.EnvVars("DOORBELL_COC_URL"),
			Destination: &x.cocURL,
		},
	}
}

func (x Invite) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("channels", x.Channels()),
		slog.Any("accept_emails", x.emails),
		slog.String("coc_url", x.cocURL),
	)
}

// Channels returns the allowed channel names with any leading '#'
// stripped
func (x *Invite) Channels() []string {
	names := make([]string, 0, len(x.channels))
	for _, ch := range x.channels {
		names = append(names, strings.TrimPrefix(ch, "#"))
	}
	return names
}

// Emails returns the acceptable email glob patterns
func (x *Invite) Emails() []string {
	return x.emails
}

// ConsentRequired reports whether a code of conduct is configured
func (x *Invite) ConsentRequired() bool {
	return x.cocURL != ""
}

// CoCURL returns the code of conduct URL, empty when unset
func (x *Invite) CoCURL() string {
	return x.cocURL
}
