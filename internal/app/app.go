package app

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"phonebook/internal/config"
	"phonebook/internal/eventbus"
	"phonebook/internal/eventlog"
	"phonebook/internal/observer"
	"phonebook/internal/registry"
	logx "phonebook/pkg/logx"
)

var ErrNotStarted = errors.New("app not started")

// App wires config, logging, the event bus and the registry together and
// owns the background loops (event tail + config hot reload).
type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service
	bus  eventbus.Bus
	reg  *registry.Registry

	console *Console

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New loads cfgPath and builds a ready-to-use registry. Observers and seed
// numbers from the config are registered before New returns.
func New(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	return build(cfgm, cfg)
}

func build(cfgm *config.Manager, cfg *config.Config) (*App, error) {
	logs, log := logx.New(mapLogConfig(cfg))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	bus := eventbus.New()
	reg := registry.New(
		registry.WithHistoryCapacity(cfg.History.Capacity),
		registry.WithLogger(log),
		registry.WithBus(bus),
	)

	observers, err := buildObservers(cfg.Observers, log)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	for _, o := range observers {
		reg.AddObserver(o)
	}
	for _, raw := range cfg.Numbers {
		if _, err := reg.AddNumber(raw); err != nil {
			_ = logs.Close()
			return nil, err
		}
	}

	return &App{
		cfgm:    cfgm,
		log:     log.With(logx.String("comp", "app")),
		logs:    logs,
		bus:     bus,
		reg:     reg,
		console: NewConsole(reg),
	}, nil
}

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

// buildObservers maps observer config onto observers that log through log.
func buildObservers(cfgs []config.ObserverConfig, log logx.Logger) ([]*observer.Observer, error) {
	out := make([]*observer.Observer, 0, len(cfgs))
	for i, oc := range cfgs {
		opts := []observer.Option{WithObserverLogger(log)}
		every, err := config.ParseDurationField("observers["+strconv.Itoa(i)+"].min_interval", oc.MinInterval)
		if err != nil {
			return nil, err
		}
		if every > 0 {
			opts = append(opts, observer.WithRateLimit(rate.Every(every), oc.Burst))
		}
		tags := make([]string, 0, len(oc.Tags))
		for _, t := range oc.Tags {
			tags = append(tags, strings.TrimSpace(t))
		}
		out = append(out, observer.NewWithOptions(oc.ID, tags, opts...))
	}
	return out, nil
}

// WithObserverLogger tags built-in observer output so it stands apart from registry logs.
func WithObserverLogger(log logx.Logger) observer.Option {
	return observer.WithLogger(log.With(logx.String("comp", "observer")))
}

func (a *App) Registry() *registry.Registry { return a.reg }
func (a *App) Console() *Console            { return a.console }
func (a *App) Logger() logx.Logger          { return a.log }

// Start launches the background loops. It is idempotent.
func (a *App) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.group != nil {
		return nil
	}

	cctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(cctx)
	a.cancel = cancel
	a.group = g

	cfg := a.cfgm.Get()
	if cfg != nil && cfg.Events.Log {
		events, unsub := a.bus.Subscribe(cfg.Events.Buffer)
		g.Go(func() error {
			defer unsub()
			a.tailEvents(gctx, events)
			return nil
		})
	}

	sub := a.cfgm.Subscribe(8)
	g.Go(func() error {
		defer a.cfgm.Unsubscribe(sub)
		a.reloadLoop(gctx, sub)
		return nil
	})
	g.Go(func() error { return a.cfgm.Watch(gctx) })

	a.log.Info("phonebook started",
		logx.String("config", a.cfgm.Path()),
		logx.Int("numbers", len(a.reg.Numbers())),
		logx.Int("observers", len(a.reg.Observers())),
		logx.Int("history_capacity", a.reg.HistoryCapacity()),
	)
	return nil
}

// Stop cancels the background loops and waits for them, up to ctx.
func (a *App) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a.mu.Lock()
	g, cancel := a.group, a.cancel
	a.group, a.cancel = nil, nil
	a.mu.Unlock()
	if g == nil {
		return ErrNotStarted
	}

	cancel()
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	a.log.Info("phonebook stopped",
		logx.Int("events", len(a.reg.History(eventlog.Filter{}))),
		logx.Any("events_dropped", eventbus.Dropped(a.bus)),
	)
	_ = a.logs.Close()
	return err
}

func (a *App) tailEvents(ctx context.Context, events <-chan eventlog.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			a.log.Debug("event",
				logx.String("type", string(e.Kind)),
				logx.String("subject", e.Number),
				logx.Time("time", e.Time),
			)
		}
	}
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) {
	lastApplied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case newCfg, ok := <-sub:
			if !ok {
				return
			}
			a.applyConfig(lastApplied, newCfg)
			lastApplied = newCfg
		}
	}
}

// applyConfig applies the live-reloadable parts of newCfg (logging) and warns
// about the rest.
func (a *App) applyConfig(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config change summary", fields...)

	a.logs.Apply(mapLogConfig(newCfg))
	if config.RestartRequired(sections) {
		a.log.Warn("config changed outside logging; restart required for changes to take effect")
	}
}

// shutdownTimeout bounds Stop when called from the command entry point.
const shutdownTimeout = 5 * time.Second

// ShutdownContext returns a context bounded by the default shutdown timeout.
func ShutdownContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), shutdownTimeout)
}
