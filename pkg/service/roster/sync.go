package roster

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/doorbell-dev/doorbell/pkg/domain/interfaces"
	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/domain/types"
	"github.com/doorbell-dev/doorbell/pkg/repository"
	"github.com/doorbell-dev/doorbell/pkg/utils/async"
	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

// minRetryAfter floors the rate-limit wait: a zero or negative
// retry-after from the service must not turn into a tight loop.
var minRetryAfter = time.Second

// eventBufferSize bounds the synchronizer's event stream. Events are
// dropped rather than blocking the poll loop when the consumer lags.
const eventBufferSize = 64

// Sync owns the periodic roster poll loop. It is the sole writer of the
// roster state: snapshot, organization profile and channel directory are
// replaced wholesale each time, so concurrent readers stay lock-free.
//
// Architecture assumptions:
// - Single server instance (state is rebuilt from the membership API on boot)
// - Readiness transitions false to true exactly once per process lifetime
//   and never reverts, even when later polls fail: stale data is served
//   over no data.
type Sync struct {
	source   interfaces.RosterSource
	state    *repository.RosterState
	interval time.Duration

	// fetchDirectory is true iff a channel restriction is configured;
	// without one the paginated channel listing is skipped entirely.
	fetchDirectory bool

	// prev is the snapshot of the previous successful cycle, touched only
	// by the run goroutine
	prev *model.RosterSnapshot

	events    chan model.Event
	readyCh   chan struct{}
	readyOnce sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Option is a functional option for synchronizer configuration
type Option func(*Sync)

// WithChannelDirectory enables the one-time channel directory fetch at
// start. It must be set whenever a channel restriction is configured.
func WithChannelDirectory() Option {
	return func(s *Sync) {
		s.fetchDirectory = true
	}
}

// New creates a roster synchronizer polling at the given interval
func New(source interfaces.RosterSource, state *repository.RosterState, interval time.Duration, opts ...Option) *Sync {
	s := &Sync{
		source:   source,
		state:    state,
		interval: interval,
		events:   make(chan model.Event, eventBufferSize),
		readyCh:  make(chan struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the synchronizer's tagged event stream. The channel
// stays open for the process lifetime; the startup fetches emit from
// their own goroutines, so consumers stop via their own context instead
// of stream closure.
func (s *Sync) Events() <-chan model.Event {
	return s.events
}

// Snapshot returns the current roster snapshot
func (s *Sync) Snapshot() model.RosterSnapshot {
	return s.state.Snapshot()
}

// Profile returns the current organization profile, possibly empty
func (s *Sync) Profile() model.OrgProfile {
	return s.state.Profile()
}

// ChannelID resolves a channel name against the directory
func (s *Sync) ChannelID(name string) (string, bool) {
	return s.state.ChannelID(name)
}

// Ready reports whether at least one full poll cycle has succeeded
func (s *Sync) Ready() bool {
	select {
	case <-s.readyCh:
		return true
	default:
		return false
	}
}

// OnReady invokes fn once the first poll cycle succeeds, or immediately
// if the synchronizer is already ready. fn runs on its own goroutine.
func (s *Sync) OnReady(fn func()) {
	go func() {
		select {
		case <-s.readyCh:
			fn()
		case <-s.stopCh:
		}
	}()
}

// Start begins the poll loop in a background goroutine. The profile and
// directory fetches run detached so they never delay the member loop.
func (s *Sync) Start(ctx context.Context) error {
	logging.From(ctx).Info("roster synchronizer starting",
		"interval", s.interval.String(),
		"fetch_directory", s.fetchDirectory)

	go s.run(ctx)
	return nil
}

// Stop signals the poll loop to stop and waits for completion
func (s *Sync) Stop() {
	close(s.stopCh)
	<-s.doneCh
	logging.Default().Info("roster synchronizer stopped")
}

func (s *Sync) run(ctx context.Context) {
	defer close(s.doneCh)

	async.Dispatch(ctx, s.loadProfile)
	if s.fetchDirectory {
		async.Dispatch(ctx, s.loadDirectory)
	}

	var delay time.Duration // first cycle runs immediately
	for {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-s.stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}

		start := time.Now()
		if err := s.cycle(ctx); err != nil {
			if errors.Is(err, errStopped) {
				return
			}
			s.emit(model.ErrorEvent(err))
			s.emit(model.RetryEvent())
			// keep last-known-good values, back off to twice the interval
			delay = 2 * s.interval
			continue
		}

		// next cycle is scheduled relative to cycle start
		delay = max(s.interval-time.Since(start), 0)
	}
}

// errStopped aborts an in-flight cycle on shutdown
var errStopped = errors.New("synchronizer stopped")

// cycle performs one full poll: drain the member listing, recompute the
// snapshot, diff against the previous one and emit events. Rate limiting
// is waited out inside the cycle so the same page is retried rather than
// restarting the listing.
func (s *Sync) cycle(ctx context.Context) error {
	s.emit(model.FetchEvent())
	logger := logging.From(ctx)
	logger.Debug("fetching member roster")

	var members []model.Member
	for page, err := range s.source.MemberPages(ctx) {
		if err != nil {
			var rle *slack.RateLimitedError
			if !errors.As(err, &rle) {
				return goerr.Wrap(err, "member listing failed")
			}

			wait := max(rle.RetryAfter, minRetryAfter)
			s.emit(model.ErrorEvent(err))
			logger.Warn("rate limited, waiting before retrying the page", "wait", wait.String())

			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-s.stopCh:
				timer.Stop()
				return errStopped
			case <-ctx.Done():
				timer.Stop()
				return goerr.Wrap(ctx.Err(), "cancelled while rate limited")
			}
			continue // the fetcher retries the same page
		}
		members = append(members, page...)
	}

	snapshot := model.CountMembers(members)
	if s.prev == nil || snapshot.Total != s.prev.Total {
		s.emit(model.ChangeEvent(types.FieldTotal, snapshot.Total))
	}
	if s.prev == nil || snapshot.Active != s.prev.Active {
		s.emit(model.ChangeEvent(types.FieldActive, snapshot.Active))
	}

	s.state.ReplaceSnapshot(snapshot)
	s.prev = &snapshot

	s.readyOnce.Do(func() {
		close(s.readyCh)
		s.emit(model.ReadyEvent())
	})
	s.emit(model.RefreshedEvent())

	logger.Info("roster refreshed", "total", snapshot.Total, "active", snapshot.Active)
	return nil
}

func (s *Sync) loadProfile(ctx context.Context) error {
	profile, err := s.source.TeamInfo(ctx)
	if err != nil {
		s.emit(model.ErrorEvent(err))
		return goerr.Wrap(err, "failed to fetch organization profile")
	}

	s.state.ReplaceProfile(*profile)
	if profile.LogoURL == "" {
		logging.From(ctx).Warn("organization has no custom logo")
	}
	logging.From(ctx).Info("organization profile loaded", "name", profile.Name)
	return nil
}

func (s *Sync) loadDirectory(ctx context.Context) error {
	channels, err := s.source.ListChannels(ctx)
	if err != nil {
		s.emit(model.ErrorEvent(err))
		return goerr.Wrap(err, "failed to fetch channel directory")
	}

	s.state.ReplaceDirectory(model.NewChannelDirectory(channels))
	logging.From(ctx).Info("channel directory loaded", "channels", len(channels))
	return nil
}

// emit pushes an event without ever blocking the poll loop
func (s *Sync) emit(ev model.Event) {
	select {
	case s.events <- ev:
	default:
		logging.Default().Warn("event stream full, dropping event", "kind", ev.Kind)
	}
}
