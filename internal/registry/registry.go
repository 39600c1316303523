package registry

import (
	"sort"
	"sync"
	"time"

	"phonebook/internal/eventbus"
	"phonebook/internal/eventlog"
	"phonebook/internal/observer"
	"phonebook/internal/phone"
	logx "phonebook/pkg/logx"
)

// Registry is safe for concurrent use. Its lock is never held while
// observer handlers run.
type Registry struct {
	log   logx.Logger
	bus   eventbus.Bus
	clock func() time.Time

	mu      sync.Mutex
	numbers map[phone.Number]struct{}

	history   *eventlog.Log
	observers *observer.Set
}

type options struct {
	capacity int
	log      logx.Logger
	bus      eventbus.Bus
	clock    func() time.Time
}

type Option func(*options)

// WithHistoryCapacity bounds the event history. Non-positive values keep the
// default of eventlog.DefaultCapacity.
func WithHistoryCapacity(n int) Option { return func(o *options) { o.capacity = n } }

func WithLogger(log logx.Logger) Option { return func(o *options) { o.log = log } }

// WithBus mirrors every appended event onto b.
func WithBus(b eventbus.Bus) Option { return func(o *options) { o.bus = b } }

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option { return func(o *options) { o.clock = now } }

func New(opts ...Option) *Registry {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.log.IsZero() {
		o.log = logx.Nop()
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return &Registry{
		log:       o.log.With(logx.String("comp", "registry")),
		bus:       o.bus,
		clock:     o.clock,
		numbers:   map[phone.Number]struct{}{},
		history:   eventlog.New(o.capacity),
		observers: observer.NewSet(),
	}
}

// record appends an event to the history and mirrors it on the bus.
func (r *Registry) record(kind eventlog.Kind, subject string) {
	e := eventlog.Event{Kind: kind, Number: subject, Time: r.clock()}
	r.history.Append(e)
	if r.bus != nil {
		r.bus.Publish(e)
	}
}

func (r *Registry) normalize(op, raw string) (phone.Number, error) {
	n, err := phone.Normalize(raw)
	if err != nil {
		r.log.Info("rejected phone number", logx.String("op", op), logx.String("input", raw), logx.Err(err))
		return "", err
	}
	return n, nil
}

// AddNumber validates raw and adds its normalized form. Re-adding a known
// number is allowed and still records an add event.
func (r *Registry) AddNumber(raw string) (phone.Number, error) {
	n, err := r.normalize("add", raw)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.numbers[n] = struct{}{}
	r.record(eventlog.KindAdd, string(n))
	r.mu.Unlock()

	r.log.Info("phone number added", logx.String("number", string(n)))
	return n, nil
}

// RemoveNumber validates raw and removes its normalized form. It reports
// false, without recording an event, when the number was not known.
func (r *Registry) RemoveNumber(raw string) (bool, error) {
	n, err := r.normalize("remove", raw)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	_, ok := r.numbers[n]
	if ok {
		delete(r.numbers, n)
		r.record(eventlog.KindRemove, string(n))
	}
	r.mu.Unlock()

	if ok {
		r.log.Info("phone number removed", logx.String("number", string(n)))
	} else {
		r.log.Info("phone number not found", logx.String("op", "remove"), logx.String("number", string(n)))
	}
	return ok, nil
}

// Known reports whether raw's normalized form is registered.
func (r *Registry) Known(raw string) (bool, error) {
	n, err := phone.Normalize(raw)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	_, ok := r.numbers[n]
	r.mu.Unlock()
	return ok, nil
}

// Numbers returns the known numbers, sorted.
func (r *Registry) Numbers() []phone.Number {
	r.mu.Lock()
	out := make([]phone.Number, 0, len(r.numbers))
	for n := range r.numbers {
		out = append(out, n)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AddObserver registers o and records an observerAdded event keyed by its id.
// A nil observer is ignored.
func (r *Registry) AddObserver(o *observer.Observer) {
	if o == nil {
		return
	}
	r.mu.Lock()
	r.observers.Add(o)
	r.record(eventlog.KindObserverAdded, o.ID())
	r.mu.Unlock()

	r.log.Info("observer added", logx.String("observer", o.ID()), logx.Strings("tags", o.Tags()))
}

// RemoveObserver unregisters o. It reports false, without recording an
// event, when o was not registered.
func (r *Registry) RemoveObserver(o *observer.Observer) bool {
	if o == nil {
		return false
	}
	r.mu.Lock()
	ok := r.observers.Remove(o)
	if ok {
		r.record(eventlog.KindObserverRemoved, o.ID())
	}
	r.mu.Unlock()

	if ok {
		r.log.Info("observer removed", logx.String("observer", o.ID()))
	}
	return ok
}

// Observers returns the registered observers, sorted by id.
func (r *Registry) Observers() []*observer.Observer {
	out := r.observers.Snapshot()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// History returns the recorded events matching f, oldest first.
func (r *Registry) History(f eventlog.Filter) []eventlog.Event {
	return r.history.Query(f)
}

// HistoryCapacity returns the configured event history bound.
func (r *Registry) HistoryCapacity() int { return r.history.Cap() }
