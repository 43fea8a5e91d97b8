package roster

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/domain/types"
	"github.com/doorbell-dev/doorbell/pkg/repository"
	"github.com/doorbell-dev/doorbell/pkg/utils/errutil"
	"github.com/doorbell-dev/doorbell/pkg/utils/logging"
)

// observerBufferSize is the per-observer delivery buffer. Delivery is
// fire-and-forget: a full buffer drops the message instead of blocking
// the hub or the poll loop.
const observerBufferSize = 16

// Message is one frame delivered to an observer. A snapshot frame
// carries both counters, a change frame carries the changed field and
// its new value.
type Message struct {
	Type     types.EventKind       `json:"type"`
	Field    types.ChangeField     `json:"field,omitempty"`
	Value    int                   `json:"value"`
	Snapshot *model.RosterSnapshot `json:"snapshot,omitempty"`
}

// Broadcaster fans roster change events out to attached observers. It
// holds no per-observer state beyond the delivery channel.
type Broadcaster struct {
	state *repository.RosterState

	mu        sync.RWMutex
	observers map[string]chan Message
}

// NewBroadcaster creates a broadcaster reading snapshots from the given
// roster state
func NewBroadcaster(state *repository.RosterState) *Broadcaster {
	return &Broadcaster{
		state:     state,
		observers: make(map[string]chan Message),
	}
}

// Attach registers a new observer and returns its handle and delivery
// channel. The full current snapshot is queued first, so the observer is
// consistent regardless of arrival time relative to poll cycles.
func (b *Broadcaster) Attach() (string, <-chan Message) {
	ch := make(chan Message, observerBufferSize)
	snapshot := b.state.Snapshot()
	ch <- Message{Type: types.EventRefreshed, Snapshot: &snapshot}

	id := uuid.NewString()
	b.mu.Lock()
	b.observers[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Detach removes an observer and closes its delivery channel. Detaching
// an observer that already detached is a no-op.
func (b *Broadcaster) Detach(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.observers[id]; ok {
		delete(b.observers, id)
		close(ch)
	}
}

// Run dispatches the synchronizer's event stream until ctx is cancelled:
// change events fan out to observers, the rest are logged. It is meant
// to run on its own goroutine.
func (b *Broadcaster) Run(ctx context.Context, events <-chan model.Event) {
	logger := logging.From(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev.Kind {
			case types.EventChange:
				b.broadcast(Message{Type: types.EventChange, Field: ev.Field, Value: ev.Value})
			case types.EventFetch:
				logger.Debug("fetching roster data")
			case types.EventRefreshed:
				snapshot := b.state.Snapshot()
				logger.Debug("roster data refreshed", "total", snapshot.Total, "active", snapshot.Active)
			case types.EventReady:
				logger.Info("roster ready")
			case types.EventError:
				_ = errutil.Handle(ctx, ev.Err, "roster fetch failed")
			case types.EventRetry:
				logger.Info("poll cycle failed, will retry after backoff")
			}
		}
	}
}

func (b *Broadcaster) broadcast(msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.observers {
		select {
		case ch <- msg:
		default:
			logging.Default().Debug("observer buffer full, dropping message", "observer", id)
		}
	}
}
