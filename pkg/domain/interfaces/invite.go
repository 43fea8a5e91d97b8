package interfaces

import (
	"context"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
)

// Inviter sends a privileged invite call to the membership service. The
// returned result carries the raw ok/error/needed fields for the caller
// to classify; err is reserved for transport and malformed-response
// failures.
type Inviter interface {
	Invite(ctx context.Context, email, channelID string) (*model.InviteResult, error)
}

// CaptchaVerifier checks a captcha token against the verification service
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}
