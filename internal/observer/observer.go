package observer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	logx "phonebook/pkg/logx"
)

// Observer receives dialing notifications.
//
// It is safe for concurrent use.
type Observer struct {
	id      string
	log     logx.Logger
	limiter *rate.Limiter

	mu       sync.RWMutex
	tags     map[string]struct{}
	handlers map[string]Handler
}

type Option func(*Observer)

// WithLogger sets the sink used by the built-in actions.
func WithLogger(log logx.Logger) Option {
	return func(o *Observer) { o.log = log }
}

// WithRateLimit throttles Notify calls to r per second with the given burst.
// A non-positive r disables throttling.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *Observer) {
		if r <= 0 {
			o.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(r, burst)
	}
}

// New creates an observer subscribed to tags. An empty id is replaced by a
// random UUID.
func New(id string, tags ...string) *Observer {
	return NewWithOptions(id, tags)
}

func NewWithOptions(id string, tags []string, opts ...Option) *Observer {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	o := &Observer{
		id:       id,
		tags:     make(map[string]struct{}, len(tags)),
		handlers: map[string]Handler{},
	}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			o.tags[t] = struct{}{}
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.log.IsZero() {
		o.log = logx.Nop()
	}
	o.log = o.log.With(logx.String("observer", o.id))
	return o
}

func (o *Observer) ID() string { return o.id }

func (o *Observer) String() string { return o.id }

// Tags returns the subscribed tags, sorted.
func (o *Observer) Tags() []string {
	o.mu.RLock()
	out := make([]string, 0, len(o.tags))
	for t := range o.tags {
		out = append(out, t)
	}
	o.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (o *Observer) Subscribed(tag string) bool {
	o.mu.RLock()
	_, ok := o.tags[tag]
	o.mu.RUnlock()
	return ok
}

func (o *Observer) Subscribe(tag string) {
	if tag = strings.TrimSpace(tag); tag == "" {
		return
	}
	o.mu.Lock()
	o.tags[tag] = struct{}{}
	o.mu.Unlock()
}

// Unsubscribe drops tag. Custom handlers are matched by event type, not by
// tag, so a handler registered for tag keeps firing.
func (o *Observer) Unsubscribe(tag string) {
	o.mu.Lock()
	delete(o.tags, tag)
	o.mu.Unlock()
}

// AddCustomNotification registers h for eventType, replacing any previous
// handler, and subscribes the observer to eventType.
func (o *Observer) AddCustomNotification(eventType string, h Handler) {
	if h == nil {
		return
	}
	o.mu.Lock()
	o.handlers[eventType] = h
	o.tags[eventType] = struct{}{}
	o.mu.Unlock()
}

func (o *Observer) actions(eventType string) []action {
	o.mu.RLock()
	defer o.mu.RUnlock()

	acts := make([]action, 0, 3)
	if _, ok := o.tags[TagSimple]; ok {
		acts = append(acts, action{name: TagSimple, h: simpleAction(o.log)})
	}
	if _, ok := o.tags[TagDetailed]; ok {
		acts = append(acts, action{name: TagDetailed, h: detailedAction(o.log)})
	}
	if h, ok := o.handlers[eventType]; ok {
		acts = append(acts, action{name: eventType, h: h})
	}
	return acts
}

// Notify runs every applicable action for number concurrently and waits for
// all of them. The first failure, if any, is returned as a
// *NotificationError once every action has finished.
func (o *Observer) Notify(ctx context.Context, number, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if eventType == "" {
		eventType = EventDial
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return &NotificationError{ObserverID: o.id, EventType: eventType, Action: "throttle", Err: err}
		}
	}

	// Plain Group, not WithContext: a failing action must not cancel its siblings.
	var g errgroup.Group
	for _, a := range o.actions(eventType) {
		a := a
		g.Go(func() error { return o.run(ctx, a, number, eventType) })
	}
	return g.Wait()
}

func (o *Observer) run(ctx context.Context, a action, number, eventType string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &NotificationError{
				ObserverID: o.id,
				EventType:  eventType,
				Action:     a.name,
				Err:        fmt.Errorf("%w: %v", ErrHandlerPanic, r),
			}
		}
	}()
	if herr := a.h.Handle(ctx, number); herr != nil {
		return &NotificationError{ObserverID: o.id, EventType: eventType, Action: a.name, Err: herr}
	}
	return nil
}
