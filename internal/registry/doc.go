// Package registry is the phone number registry.
//
// A Registry owns the set of known numbers, a bounded event history and the
// set of registered observers. Every successful operation appends one event
// to the history and mirrors it on the optional event bus. Dialing a known
// number fans the notification out to every observer concurrently and waits
// for all of them; observer failures are reported in the DialResult and never
// change whether the dial itself succeeded.
//
// Per number the lifecycle is Unknown -> Known (AddNumber) -> Unknown
// (RemoveNumber). Dial is only meaningful for Known numbers.
package registry
