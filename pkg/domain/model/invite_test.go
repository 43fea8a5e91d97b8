package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/domain/types"
)

func TestInviteOutcome(t *testing.T) {
	t.Run("only already-a-member outcomes redirect", func(t *testing.T) {
		gt.Bool(t, model.AlreadyMember().Redirect()).True()
		gt.Bool(t, model.Accepted().Redirect()).False()
		gt.Bool(t, model.AlreadyInvited().Redirect()).False()
		gt.Bool(t, model.Rejected("nope").Redirect()).False()
		gt.Bool(t, model.TransportError("down").Redirect()).False()
	})

	t.Run("rejection carries its reason verbatim", func(t *testing.T) {
		outcome := model.Rejected("invalid_email")
		gt.Value(t, outcome.Kind).Equal(types.OutcomeRejected)
		gt.Value(t, outcome.Message).Equal("invalid_email")
	})

	t.Run("every constructor yields a valid kind", func(t *testing.T) {
		outcomes := []model.InviteOutcome{
			model.Accepted(),
			model.Rejected("x"),
			model.AlreadyInvited(),
			model.AlreadyMember(),
			model.AdminScopeMissing(),
			model.TransportError("x"),
		}
		for _, outcome := range outcomes {
			gt.NoError(t, outcome.Kind.Validate())
		}
	})
}
