package types

import "github.com/m-mizutani/goerr/v2"

// EventKind tags a roster synchronizer event
type EventKind string

const (
	// EventFetch marks the start of a poll cycle
	EventFetch EventKind = "fetch"
	// EventChange carries a changed roster field and its new value
	EventChange EventKind = "change"
	// EventRefreshed signals a completed poll cycle, changed or not
	EventRefreshed EventKind = "data"
	// EventReady signals the first successful poll cycle of the process
	EventReady EventKind = "ready"
	// EventError carries a fetch failure
	EventError EventKind = "error"
	// EventRetry signals that a failed cycle will be retried after backoff
	EventRetry EventKind = "retry"
)

// Validate checks if the EventKind is valid
func (k EventKind) Validate() error {
	switch k {
	case EventFetch, EventChange, EventRefreshed, EventReady, EventError, EventRetry:
		return nil
	}
	return goerr.New("unknown event kind", goerr.V("kind", k))
}

// String returns the string representation of EventKind
func (k EventKind) String() string {
	return string(k)
}
