package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/doorbell-dev/doorbell/pkg/utils/safe"
)

const (
	defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	verifyTimeout    = 10 * time.Second
)

// ErrVerificationFailed marks a captcha that the verification service
// rejected, as opposed to a transport failure reaching the service.
var ErrVerificationFailed = errors.New("captcha verification failed")

// Verifier checks reCAPTCHA tokens against the siteverify endpoint
type Verifier struct {
	secret    string
	verifyURL string
	httpc     *http.Client
}

// Option is a functional option for verifier configuration
type Option func(*Verifier)

// WithVerifyURL overrides the siteverify endpoint URL
func WithVerifyURL(u string) Option {
	return func(v *Verifier) {
		v.verifyURL = u
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(httpc *http.Client) Option {
	return func(v *Verifier) {
		v.httpc = httpc
	}
}

// New creates a verifier with the given shared secret
func New(secret string, opts ...Option) (*Verifier, error) {
	if secret == "" {
		return nil, goerr.New("captcha secret is required")
	}

	v := &Verifier{
		secret:    secret,
		verifyURL: defaultVerifyURL,
		httpc:     &http.Client{Timeout: verifyTimeout},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify checks the captcha token for the given client address. A
// non-success verdict returns an error wrapping ErrVerificationFailed.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	form.Set("remoteip", remoteIP)

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return goerr.Wrap(err, "failed to build captcha verification request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpc.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call captcha verification service")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return goerr.New("unexpected status from captcha verification service",
			goerr.V("status", resp.StatusCode))
	}

	var verdict struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return goerr.Wrap(err, "failed to decode captcha verification response")
	}

	if !verdict.Success {
		return goerr.Wrap(ErrVerificationFailed, "captcha rejected",
			goerr.V("codes", verdict.ErrorCodes))
	}
	return nil
}
