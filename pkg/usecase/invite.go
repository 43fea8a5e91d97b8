package usecase

import (
	"context"
	"errors"
	"net/mail"
	"slices"

	"github.com/gobwas/glob"
	"github.com/m-mizutani/goerr/v2"

	"github.com/doorbell-dev/doorbell/pkg/domain/interfaces"
	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/service/captcha"
	"github.com/doorbell-dev/doorbell/pkg/utils/errutil"
	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

// InviteUseCase validates invite requests and forwards accepted ones to
// the membership service. Each request runs as an independent short-lived
// task; the only shared state is the read-only channel resolver.
type InviteUseCase struct {
	inviter  interfaces.Inviter
	verifier interfaces.CaptchaVerifier
	resolver interfaces.ChannelResolver

	// channels is the allow-list; empty means unrestricted. The
	// restriction state is this list, never the directory contents, so an
	// unloaded directory cannot silently admit all channels.
	channels []string
	emails   []glob.Glob
	consent  bool
}

// Option is a functional option for orchestrator configuration
type Option func(*InviteUseCase) error

// WithChannelAllowList restricts invites to the named channels
func WithChannelAllowList(channels []string) Option {
	return func(uc *InviteUseCase) error {
		uc.channels = channels
		return nil
	}
}

// WithEmailAllowList restricts invites to emails matching any of the
// given glob patterns
func WithEmailAllowList(patterns []string) Option {
	return func(uc *InviteUseCase) error {
		globs := make([]glob.Glob, len(patterns))
		for i, pattern := range patterns {
			g, err := glob.Compile(pattern)
			if err != nil {
				return goerr.Wrap(err, "invalid email pattern", goerr.V("pattern", pattern))
			}
			globs[i] = g
		}
		uc.emails = globs
		return nil
	}
}

// WithConsentRequired makes agreement to the code of conduct mandatory
func WithConsentRequired() Option {
	return func(uc *InviteUseCase) error {
		uc.consent = true
		return nil
	}
}

// WithCaptcha enables captcha verification for every request
func WithCaptcha(verifier interfaces.CaptchaVerifier) Option {
	return func(uc *InviteUseCase) error {
		uc.verifier = verifier
		return nil
	}
}

// NewInviteUseCase creates an invite orchestrator
func NewInviteUseCase(inviter interfaces.Inviter, resolver interfaces.ChannelResolver, opts ...Option) (*InviteUseCase, error) {
	if inviter == nil {
		return nil, goerr.New("inviter is required")
	}
	if resolver == nil {
		return nil, goerr.New("channel resolver is required")
	}

	uc := &InviteUseCase{
		inviter:  inviter,
		resolver: resolver,
	}
	for _, opt := range opts {
		if err := opt(uc); err != nil {
			return nil, err
		}
	}
	return uc, nil
}

// Restricted reports whether a channel allow-list is configured
func (uc *InviteUseCase) Restricted() bool {
	return len(uc.channels) > 0
}

// Channels returns the configured channel allow-list
func (uc *InviteUseCase) Channels() []string {
	return uc.channels
}

// validate runs the ordered validation chain and resolves the channel ID
// when a restriction is configured. The first failing rule wins.
func (uc *InviteUseCase) validate(req model.InviteRequest) (string, error) {
	var channelID string
	if uc.Restricted() {
		if !slices.Contains(uc.channels, req.ChannelName) {
			return "", ErrChannelNotPermitted
		}
		id, ok := uc.resolver.ChannelID(req.ChannelName)
		if !ok {
			return "", ErrChannelNotFound
		}
		channelID = id
	}

	if req.Email == "" {
		return "", ErrNoEmail
	}
	if uc.verifier != nil && req.CaptchaToken == "" {
		return "", ErrInvalidCaptcha
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "", ErrInvalidEmail
	}
	if len(uc.emails) > 0 && !uc.emailAccepted(req.Email) {
		return "", ErrEmailNotAccepted
	}
	if uc.consent && !req.ConsentGiven {
		return "", ErrConsentRequired
	}

	return channelID, nil
}

func (uc *InviteUseCase) emailAccepted(email string) bool {
	for _, g := range uc.emails {
		if g.Match(email) {
			return true
		}
	}
	return false
}

// Submit validates one invite request, verifies the captcha when
// required, forwards the invite call and classifies its response.
func (uc *InviteUseCase) Submit(ctx context.Context, req model.InviteRequest) model.InviteOutcome {
	logger := logging.From(ctx)

	channelID, err := uc.validate(req)
	if err != nil {
		logger.Info("invite request rejected", "reason", err.Error())
		return model.Rejected(err.Error())
	}

	if uc.verifier != nil {
		if err := uc.verifier.Verify(ctx, req.CaptchaToken, req.ClientAddress); err != nil {
			if errors.Is(err, captcha.ErrVerificationFailed) {
				logger.Info("captcha rejected", "error", err.Error())
				return model.Rejected(ErrInvalidCaptcha.Error())
			}
			_ = errutil.Handle(ctx, err, "captcha verification unavailable")
			return model.TransportError("captcha verification unavailable")
		}
	}

	result, err := uc.inviter.Invite(ctx, req.Email, channelID)
	if err != nil {
		_ = errutil.Handle(ctx, err, "invite call failed")
		return model.TransportError("failed to reach the invite service")
	}

	if result.OK {
		logger.Info("invite sent", "channel", req.ChannelName)
	} else {
		logger.Info("invite declined by service", "error", result.Error, "needed", result.Needed)
	}
	return classifyInvite(result)
}

// classifyInvite maps the raw invite response onto the outcome taxonomy.
// Unrecognized service errors pass through verbatim.
func classifyInvite(result *model.InviteResult) model.InviteOutcome {
	if result.OK {
		return model.Accepted()
	}

	switch result.Error {
	case "missing_scope":
		if result.Needed == "admin" {
			return model.AdminScopeMissing()
		}
	case "already_invited":
		return model.AlreadyInvited()
	case "already_in_team":
		return model.AlreadyMember()
	}
	return model.Rejected(result.Error)
}
