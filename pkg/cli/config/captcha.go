package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doorbell-dev/doorbell/pkg/service/captcha"
)

// Captcha is the flag-backed reCAPTCHA configuration. The secret and
// the site key come as a pair; setting only one is a misconfiguration.
type Captcha struct {
	secret  string
	siteKey string
}

func (x *Captcha) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "recaptcha-secret",
			Usage:       "reCAPTCHA secret key (enables captcha verification)",
			Category:    "Captcha",
			Sources:     cli.EnvVars("DOORBELL_RECAPTCHA_SECRET"),
			Destination: &x.secret,
		},
		&cli.StringFlag{
			Name:        "recaptcha-sitekey",
			Usage:       "reCAPTCHA site key, served to the browser",
			Category:    "Captcha",
			Sources:     cli.EnvVars("DOORBELL_RECAPTCHA_SITEKEY"),
			Destination: &x.siteKey,
		},
	}
}

func (x Captcha) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.secret != ""),
		slog.Int("secret.len", len(x.secret)),
		slog.String("sitekey", x.siteKey),
	)
}

// Required reports whether captcha verification is enabled
func (x *Captcha) Required() bool {
	return x.secret != ""
}

// SiteKey returns the site key for the browser widget
func (x *Captcha) SiteKey() string {
	return x.siteKey
}

// Configure validates the key pairing and builds the verifier. It
// returns nil when captcha is disabled.
func (x *Captcha) Configure() (*captcha.Verifier, error) {
	if x.secret == "" && x.siteKey == "" {
		return nil, nil
	}
	if x.secret == "" || x.siteKey == "" {
		return nil, goerr.New("--recaptcha-secret and --recaptcha-sitekey must be set together")
	}

	return captcha.New(x.secret)
}
