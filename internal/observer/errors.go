package observer

import (
	"errors"
	"fmt"
)

// ErrHandlerPanic is wrapped by a NotificationError when an action panicked.
var ErrHandlerPanic = errors.New("notification handler panicked")

// NotificationError reports a failed notification action.
type NotificationError struct {
	ObserverID string
	EventType  string
	// Action is the tag of the failing action, or "throttle" when waiting on
	// the observer's rate limiter failed.
	Action string
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("observer %s: %s action for %s event failed: %v", e.ObserverID, e.Action, e.EventType, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
