package registry

import (
	"context"
	"sync"
	"time"

	"phonebook/internal/eventlog"
	"phonebook/internal/observer"
	"phonebook/internal/phone"
	logx "phonebook/pkg/logx"
)

// ObserverFailure is the outcome of one observer whose notification failed.
type ObserverFailure struct {
	ObserverID string
	Err        error
}

// DialResult describes a Dial call.
type DialResult struct {
	Number phone.Number
	// Dialed is false when the number was not registered; no observer was
	// notified and no event was recorded in that case.
	Dialed bool
	// Notified counts the observers the dial was fanned out to.
	Notified int
	Failures []ObserverFailure
	Took     time.Duration
}

// OK reports whether the number was dialed and every observer succeeded.
func (d DialResult) OK() bool { return d.Dialed && len(d.Failures) == 0 }

// Dial validates raw and, when its normalized form is registered, records a
// dial event and notifies every registered observer concurrently. It returns
// once all observers have finished. Observer failures are collected in the
// result; the returned error is only ever a validation error.
func (r *Registry) Dial(ctx context.Context, raw string) (DialResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	n, err := r.normalize("dial", raw)
	if err != nil {
		return DialResult{}, err
	}
	res := DialResult{Number: n}

	r.mu.Lock()
	_, ok := r.numbers[n]
	var targets []*observer.Observer
	if ok {
		r.record(eventlog.KindDial, string(n))
		targets = r.observers.Snapshot()
	}
	r.mu.Unlock()

	if !ok {
		r.log.Info("phone number not found", logx.String("op", "dial"), logx.String("number", string(n)))
		return res, nil
	}

	start := time.Now()
	res.Dialed = true
	res.Notified = len(targets)
	res.Failures = r.fanOut(ctx, n, targets)
	res.Took = time.Since(start)

	r.log.Info("phone number dialed",
		logx.String("number", string(n)),
		logx.Int("observers", res.Notified),
		logx.Int("failed", len(res.Failures)),
		logx.Duration("took", res.Took),
	)
	return res, nil
}

// fanOut notifies every target concurrently and returns the failures in
// target order.
func (r *Registry) fanOut(ctx context.Context, n phone.Number, targets []*observer.Observer) []ObserverFailure {
	if len(targets) == 0 {
		return nil
	}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	wg.Add(len(targets))
	for i, o := range targets {
		go func(i int, o *observer.Observer) {
			defer wg.Done()
			errs[i] = o.Notify(ctx, string(n), observer.EventDial)
		}(i, o)
	}
	wg.Wait()

	var failures []ObserverFailure
	for i, err := range errs {
		if err == nil {
			continue
		}
		id := targets[i].ID()
		r.log.Warn("observer notification failed", logx.String("observer", id), logx.String("number", string(n)), logx.Err(err))
		failures = append(failures, ObserverFailure{ObserverID: id, Err: err})
	}
	return failures
}
