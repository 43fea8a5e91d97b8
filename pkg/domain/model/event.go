package model

import "github.com/doorbell-dev/doorbell/pkg/domain/types"

// Event is one entry of the roster synchronizer's tagged event stream.
// Field and Value are set for change events, Err for error events.
type Event struct {
	Kind  types.EventKind
	Field types.ChangeField
	Value int
	Err   error
}

// FetchEvent marks the start of a poll cycle
func FetchEvent() Event {
	return Event{Kind: types.EventFetch}
}

// ChangeEvent carries one changed roster field and its new value
func ChangeEvent(field types.ChangeField, value int) Event {
	return Event{Kind: types.EventChange, Field: field, Value: value}
}

// RefreshedEvent signals a completed poll cycle
func RefreshedEvent() Event {
	return Event{Kind: types.EventRefreshed}
}

// ReadyEvent signals the first successful poll cycle
func ReadyEvent() Event {
	return Event{Kind: types.EventReady}
}

// ErrorEvent carries a fetch failure
func ErrorEvent(err error) Event {
	return Event{Kind: types.EventError, Err: err}
}

// RetryEvent signals that the failed cycle will be retried after backoff
func RetryEvent() Event {
	return Event{Kind: types.EventRetry}
}
