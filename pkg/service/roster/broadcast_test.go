package roster_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/doorbell-dev/doorbell/pkg/domain/model"
	"github.com/doorbell-dev/doorbell/pkg/domain/types"
	"github.com/doorbell-dev/doorbell/pkg/repository"
	"github.com/doorbell-dev/doorbell/pkg/service/roster"
)

func recvMessage(t *testing.T, ch <-chan roster.Message) roster.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered before deadline")
		return roster.Message{}
	}
}

func TestBroadcasterAttach(t *testing.T) {
	state := repository.NewRosterState()
	state.ReplaceSnapshot(model.RosterSnapshot{Total: 42, Active: 7})
	hub := roster.NewBroadcaster(state)

	t.Run("snapshot frame arrives first", func(t *testing.T) {
		id, messages := hub.Attach()
		defer hub.Detach(id)

		msg := recvMessage(t, messages)
		gt.Value(t, msg.Type).Equal(types.EventRefreshed)
		gt.Value(t, msg.Snapshot).NotNil()
		gt.Value(t, *msg.Snapshot).Equal(model.RosterSnapshot{Total: 42, Active: 7})
	})

	t.Run("each observer gets its own handle", func(t *testing.T) {
		id1, _ := hub.Attach()
		id2, _ := hub.Attach()
		defer hub.Detach(id1)
		defer hub.Detach(id2)

		gt.Value(t, id1).NotEqual(id2)
	})
}

func TestBroadcasterDetach(t *testing.T) {
	state := repository.NewRosterState()
	hub := roster.NewBroadcaster(state)

	id, messages := hub.Attach()
	hub.Detach(id)

	// the delivery channel is drained of the snapshot and then closed
	recvMessage(t, messages)
	_, open := <-messages
	gt.Bool(t, open).False()

	// detaching twice is harmless
	hub.Detach(id)
}

func TestBroadcasterFanOut(t *testing.T) {
	state := repository.NewRosterState()
	hub := roster.NewBroadcaster(state)

	events := make(chan model.Event)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, events)

	id1, ch1 := hub.Attach()
	id2, ch2 := hub.Attach()
	defer hub.Detach(id1)
	defer hub.Detach(id2)

	// discard the snapshot frames
	recvMessage(t, ch1)
	recvMessage(t, ch2)

	events <- model.ChangeEvent(types.FieldActive, 9)

	for _, ch := range []<-chan roster.Message{ch1, ch2} {
		msg := recvMessage(t, ch)
		gt.Value(t, msg.Type).Equal(types.EventChange)
		gt.Value(t, msg.Field).Equal(types.FieldActive)
		gt.Value(t, msg.Value).Equal(9)
		gt.Value(t, msg.Snapshot).Nil()
	}
}

func TestMessageWireFormat(t *testing.T) {
	t.Run("zero-valued change frame keeps its value key", func(t *testing.T) {
		// active legitimately drops to 0 when the last member goes offline
		data, err := json.Marshal(roster.Message{
			Type:  types.EventChange,
			Field: types.FieldActive,
			Value: 0,
		})
		gt.NoError(t, err)

		var frame map[string]any
		gt.NoError(t, json.Unmarshal(data, &frame))
		gt.Value(t, frame["type"]).Equal("change")
		gt.Value(t, frame["field"]).Equal("active")
		gt.Value(t, frame["value"]).Equal(0.0)
	})

	t.Run("snapshot frame uses lowercase counter keys", func(t *testing.T) {
		snapshot := model.RosterSnapshot{Total: 3, Active: 1}
		data, err := json.Marshal(roster.Message{
			Type:     types.EventRefreshed,
			Snapshot: &snapshot,
		})
		gt.NoError(t, err)

		var frame struct {
			Snapshot map[string]any `json:"snapshot"`
		}
		gt.NoError(t, json.Unmarshal(data, &frame))
		gt.Value(t, frame.Snapshot["total"]).Equal(3.0)
		gt.Value(t, frame.Snapshot["active"]).Equal(1.0)
	})
}

func TestBroadcasterSlowObserver(t *testing.T) {
	state := repository.NewRosterState()
	hub := roster.NewBroadcaster(state)

	events := make(chan model.Event)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, events)

	id, _ := hub.Attach() // never reads its channel
	defer hub.Detach(id)

	// well past the per-observer buffer; delivery must never block the hub
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			events <- model.ChangeEvent(types.FieldTotal, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("a slow observer blocked the broadcaster")
	}
}
