package types

import "github.com/m-mizutani/goerr/v2"

// OutcomeKind classifies the result of an invite request
type OutcomeKind string

const (
	// OutcomeAccepted means the invite was sent
	OutcomeAccepted OutcomeKind = "accepted"
	// OutcomeRejected means a validation rule or the service rejected the request
	OutcomeRejected OutcomeKind = "rejected"
	// OutcomeAlreadyInvited means an invite for this email is already pending
	OutcomeAlreadyInvited OutcomeKind = "already_invited"
	// OutcomeAlreadyMember means the email already belongs to the organization
	OutcomeAlreadyMember OutcomeKind = "already_member"
	// OutcomeAdminScopeMissing means the configured credential lacks admin rights
	OutcomeAdminScopeMissing OutcomeKind = "admin_scope_missing"
	// OutcomeTransportError means the downstream call failed at the HTTP layer
	OutcomeTransportError OutcomeKind = "transport_error"
)

// Validate checks if the OutcomeKind is valid
func (k OutcomeKind) Validate() error {
	switch k {
	case OutcomeAccepted, OutcomeRejected, OutcomeAlreadyInvited,
		OutcomeAlreadyMember, OutcomeAdminScopeMissing, OutcomeTransportError:
		return nil
	}
	return goerr.New("unknown outcome kind", goerr.V("kind", k))
}

// String returns the string representation of OutcomeKind
func (k OutcomeKind) String() string {
	return string(k)
}
