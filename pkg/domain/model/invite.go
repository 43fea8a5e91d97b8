package model

import "github.com/doorbell-dev/doorbell/pkg/domain/types"

// InviteRequest carries the already-parsed fields of one invite request.
// Requests are per-call and never persisted.
type InviteRequest struct {
	ChannelName   string
	Email         string
	ConsentGiven  bool
	CaptchaToken  string
	ClientAddress string
}

// InviteResult is the raw response body of the invite API call. Needed is
// only populated on scope errors.
type InviteResult struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Needed string `json:"needed"`
}

// InviteOutcome is the classified result of one invite request. An outcome
// is constructed once and never mutated.
type InviteOutcome struct {
	Kind    types.OutcomeKind
	Message string
}

// Redirect reports whether the caller should redirect the visitor to the
// organization's sign-in page instead of showing an error.
func (o InviteOutcome) Redirect() bool {
	return o.Kind == types.OutcomeAlreadyMember
}

// Accepted means the invite was sent
func Accepted() InviteOutcome {
	return InviteOutcome{
		Kind:    types.OutcomeAccepted,
		Message: "WOOT. Check your email!",
	}
}

// Rejected means a validation rule or the service rejected the request
func Rejected(reason string) InviteOutcome {
	return InviteOutcome{
		Kind:    types.OutcomeRejected,
		Message: reason,
	}
}

// AlreadyInvited means an invite for this email is already pending
func AlreadyInvited() InviteOutcome {
	return InviteOutcome{
		Kind:    types.OutcomeAlreadyInvited,
		Message: "You have already been invited. Check for an email from feedback@slack.com.",
	}
}

// AlreadyMember means the email already belongs to the organization
func AlreadyMember() InviteOutcome {
	return InviteOutcome{
		Kind:    types.OutcomeAlreadyMember,
		Message: "Sending you to Slack...",
	}
}

// AdminScopeMissing means the configured credential lacks admin rights
func AdminScopeMissing() InviteOutcome {
	return InviteOutcome{
		Kind: types.OutcomeAdminScopeMissing,
		Message: "Missing admin scope: the token belongs to an account that is not an admin. " +
			"Provide a token from an admin account to invite users through the API.",
	}
}

// TransportError means the downstream call failed at the HTTP layer
func TransportError(msg string) InviteOutcome {
	return InviteOutcome{
		Kind:    types.OutcomeTransportError,
		Message: msg,
	}
}
