package roster_test

import (
	"context"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/slack-go/slack"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/domain/types"
	"github.com/doorbell-dev/doorbell/pkg/repository"
	"github.com/doorbell-dev/doorbell/pkg/service/roster"
)

// mockSource is a scriptable roster source. The member listing function
// is swappable mid-test to make consecutive cycles behave differently.
type mockSource struct {
	mu      sync.Mutex
	members func(yield func([]model.Member, error) bool)

	channels    []model.Channel
	channelsErr error
	profile     *model.OrgProfile
	profileErr  error
}

func newMockSource() *mockSource {
	return &mockSource{
		members: singlePage(),
		profile: &model.OrgProfile{Name: "Acme"},
	}
}

func (m *mockSource) setMembers(fn func(yield func([]model.Member, error) bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members = fn
}

func (m *mockSource) MemberPages(ctx context.Context) iter.Seq2[[]model.Member, error] {
	m.mu.Lock()
	fn := m.members
	m.mu.Unlock()
	return fn
}

func (m *mockSource) ListChannels(ctx context.Context) ([]model.Channel, error) {
	return m.channels, m.channelsErr
}

func (m *mockSource) TeamInfo(ctx context.Context) (*model.OrgProfile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

func singlePage(members ...model.Member) func(yield func([]model.Member, error) bool) {
	return func(yield func([]model.Member, error) bool) {
		yield(members, nil)
	}
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// drainEvents collects everything currently buffered on the stream
func drainEvents(events <-chan model.Event) []model.Event {
	var got []model.Event
	for {
		select {
		case ev := <-events:
			got = append(got, ev)
		default:
			return got
		}
	}
}

func countKind(events []model.Event, kind types.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestSyncFirstCycle(t *testing.T) {
	source := newMockSource()
	source.setMembers(singlePage(
		model.Member{ID: "U001", Presence: model.PresenceActive},
		model.Member{ID: "U002"},
		model.Member{ID: "U003", IsBot: true},
	))

	state := repository.NewRosterState()
	sync := roster.New(source, state, time.Hour)

	gt.Bool(t, sync.Ready()).False()
	gt.NoError(t, sync.Start(context.Background()))
	defer sync.Stop()

	waitFor(t, sync.Ready)

	gt.Value(t, sync.Snapshot()).Equal(model.RosterSnapshot{Total: 2, Active: 1})
	waitFor(t, func() bool { return sync.Profile().Name == "Acme" })

	events := drainEvents(sync.Events())
	gt.Value(t, countKind(events, types.EventFetch)).Equal(1)
	gt.Value(t, countKind(events, types.EventReady)).Equal(1)
	gt.Value(t, countKind(events, types.EventRefreshed)).Equal(1)
	// a nil previous snapshot makes both fields count as changed
	gt.Value(t, countKind(events, types.EventChange)).Equal(2)
}

func TestSyncUnchangedCycleEmitsNoChange(t *testing.T) {
	source := newMockSource()
	source.setMembers(singlePage(model.Member{ID: "U001", Presence: model.PresenceActive}))

	state := repository.NewRosterState()
	sync := roster.New(source, state, 10*time.Millisecond)

	gt.NoError(t, sync.Start(context.Background()))
	defer sync.Stop()

	// wait until at least three cycles completed
	var events []model.Event
	waitFor(t, func() bool {
		events = append(events, drainEvents(sync.Events())...)
		return countKind(events, types.EventRefreshed) >= 3
	})

	// only the first cycle observed a difference
	gt.Value(t, countKind(events, types.EventChange)).Equal(2)
}

func TestSyncFailedCycleKeepsSnapshot(t *testing.T) {
	source := newMockSource()
	source.setMembers(singlePage(
		model.Member{ID: "U001", Presence: model.PresenceActive},
		model.Member{ID: "U002"},
	))

	state := repository.NewRosterState()
	sync := roster.New(source, state, 10*time.Millisecond)

	gt.NoError(t, sync.Start(context.Background()))
	defer sync.Stop()

	waitFor(t, sync.Ready)
	want := model.RosterSnapshot{Total: 2, Active: 1}
	gt.Value(t, sync.Snapshot()).Equal(want)

	// every later cycle fails outright
	source.setMembers(func(yield func([]model.Member, error) bool) {
		yield(nil, goerr.New("listing exploded"))
	})

	var events []model.Event
	waitFor(t, func() bool {
		events = append(events, drainEvents(sync.Events())...)
		return countKind(events, types.EventRetry) >= 1
	})

	// last-known-good values survive the failure, readiness never reverts
	gt.Value(t, sync.Snapshot()).Equal(want)
	gt.Bool(t, sync.Ready()).True()
	gt.Bool(t, countKind(events, types.EventError) >= 1).True()
}

func TestSyncRateLimitRetriesSamePage(t *testing.T) {
	restore := roster.SetMinRetryAfter(time.Millisecond)
	defer restore()

	source := newMockSource()
	source.setMembers(func(yield func([]model.Member, error) bool) {
		if !yield(nil, &slack.RateLimitedError{RetryAfter: 0}) {
			return
		}
		// the consumer waited and came back for the same page
		yield([]model.Member{{ID: "U001", Presence: model.PresenceActive}}, nil)
	})

	state := repository.NewRosterState()
	sync := roster.New(source, state, time.Hour)

	gt.NoError(t, sync.Start(context.Background()))
	defer sync.Stop()

	waitFor(t, sync.Ready)
	gt.Value(t, sync.Snapshot()).Equal(model.RosterSnapshot{Total: 1, Active: 1})

	events := drainEvents(sync.Events())
	gt.Value(t, countKind(events, types.EventError)).Equal(1)
	// the rate limit never failed the cycle
	gt.Value(t, countKind(events, types.EventRetry)).Equal(0)
}

func TestSyncChannelDirectory(t *testing.T) {
	source := newMockSource()
	source.channels = []model.Channel{{ID: "C001", Name: "general"}}

	state := repository.NewRosterState()
	sync := roster.New(source, state, time.Hour, roster.WithChannelDirectory())

	gt.NoError(t, sync.Start(context.Background()))
	defer sync.Stop()

	waitFor(t, state.DirectoryLoaded)

	id, ok := sync.ChannelID("general")
	gt.Bool(t, ok).True()
	gt.Value(t, id).Equal("C001")
}

func TestSyncOnReady(t *testing.T) {
	source := newMockSource()
	source.setMembers(singlePage(model.Member{ID: "U001"}))

	state := repository.NewRosterState()
	sync := roster.New(source, state, time.Hour)

	gt.NoError(t, sync.Start(context.Background()))
	defer sync.Stop()

	waitFor(t, sync.Ready)

	// registration after readiness still fires
	fired := make(chan struct{})
	sync.OnReady(func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("OnReady callback never fired")
	}
}
