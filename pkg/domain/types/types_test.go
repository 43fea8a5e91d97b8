package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/doorbell-dev/doorbell/pkg/domain/types"
)

func TestEventKindValidate(t *testing.T) {
	kinds := []types.EventKind{
		types.EventFetch,
		types.EventChange,
		types.EventRefreshed,
		types.EventReady,
		types.EventError,
		types.EventRetry,
	}
	for _, kind := range kinds {
		gt.NoError(t, kind.Validate())
	}

	gt.Error(t, types.EventKind("bogus").Validate())
	gt.Error(t, types.EventKind("").Validate())
}

func TestChangeFieldValidate(t *testing.T) {
	gt.NoError(t, types.FieldTotal.Validate())
	gt.NoError(t, types.FieldActive.Validate())
	gt.Error(t, types.ChangeField("presence").Validate())
}

func TestOutcomeKindValidate(t *testing.T) {
	kinds := []types.OutcomeKind{
		types.OutcomeAccepted,
		types.OutcomeRejected,
		types.OutcomeAlreadyInvited,
		types.OutcomeAlreadyMember,
		types.OutcomeAdminScopeMissing,
		types.OutcomeTransportError,
	}
	for _, kind := range kinds {
		gt.NoError(t, kind.Validate())
	}

	gt.Error(t, types.OutcomeKind("maybe").Validate())
}
