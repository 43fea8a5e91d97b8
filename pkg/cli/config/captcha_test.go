package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/doorbell-dev/doorbell/pkg/cli/config"
)

func parseFlags(t *testing.T, flags []cli.Flag, args ...string) {
	t.Helper()
	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestCaptchaConfigure(t *testing.T) {
	t.Run("disabled when both keys are empty", func(t *testing.T) {
		var cfg config.Captcha
		parseFlags(t, cfg.Flags())

		verifier, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, verifier).Nil()
		gt.Bool(t, cfg.Required()).False()
	})

	t.Run("secret without site key is a misconfiguration", func(t *testing.T) {
		var cfg config.Captcha
		parseFlags(t, cfg.Flags(), "--recaptcha-secret", "sec")

		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("site key without secret is a misconfiguration", func(t *testing.T) {
		var cfg config.Captcha
		parseFlags(t, cfg.Flags(), "--recaptcha-sitekey", "site")

		_, err := cfg.Configure()
		gt.Error(t, err)
	})

	t.Run("paired keys build a verifier", func(t *testing.T) {
		var cfg config.Captcha
		parseFlags(t, cfg.Flags(), "--recaptcha-secret", "sec", "--recaptcha-sitekey", "site")

		verifier, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, verifier).NotNil()
		gt.Bool(t, cfg.Required()).True()
		gt.Value(t, cfg.SiteKey()).Equal("site")
	})
}
