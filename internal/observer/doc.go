// Package observer delivers dialing notifications to subscribed observers.
//
// An Observer carries a set of tags. Two tags are built in:
//   - simple:   logs the bare number
//   - detailed: logs a descriptive dialing message
//
// Any other tag is backed by a custom Handler registered with
// AddCustomNotification, keyed by event type.
//
// # Dispatch
//
// Notify launches every applicable action concurrently and returns once all
// of them have finished. Built-in actions run for every Notify call as long as
// their tag is subscribed, whatever the event type; custom handlers only run
// when their tag equals the event type.
package observer
