package interfaces

import (
	"context"
	"iter"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
)

// RosterSource provides organization state from the membership service
type RosterSource interface {
	// MemberPages returns a lazy, finite, non-restartable sequence of
	// member pages. A yielded error does not advance the page cursor:
	// continuing the loop retries the same page, breaking aborts the
	// listing. The source itself never retries.
	MemberPages(ctx context.Context) iter.Seq2[[]model.Member, error]

	// ListChannels retrieves the full channel listing
	ListChannels(ctx context.Context) ([]model.Channel, error)

	// TeamInfo retrieves the organization profile
	TeamInfo(ctx context.Context) (*model.OrgProfile, error)
}

// ChannelResolver resolves channel names to IDs against the channel
// directory. A missing name is not an error.
type ChannelResolver interface {
	ChannelID(name string) (string, bool)
}
