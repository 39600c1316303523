package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonebook/internal/phone"
)

const sampleYAML = `
logging:
  level: debug
  console: true
history:
  capacity: 25
events:
  log: true
observers:
  - id: ops
    tags: [simple, detailed]
    min_interval: 250ms
    burst: 2
  - id: audit
    tags: [detailed]
numbers:
  - "+1-234-567-8900"
  - "555 000 0000"
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()
	cfg, err := Decode("phonebook.yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
	assert.Equal(t, 25, cfg.History.Capacity)
	assert.True(t, cfg.Events.Log)
	assert.Equal(t, DefaultEventsBuffer, cfg.Events.Buffer)
	require.Len(t, cfg.Observers, 2)
	assert.Equal(t, ObserverConfig{ID: "ops", Tags: []string{"simple", "detailed"}, MinInterval: "250ms", Burst: 2}, cfg.Observers[0])
	assert.Equal(t, []string{"+1-234-567-8900", "555 000 0000"}, cfg.Numbers)
	require.NoError(t, Validate(cfg))
}

func TestDecodeFlowStyleExample(t *testing.T) {
	t.Parallel()
	const flow = `
logging: { level: info, console: true, file: { enabled: false, path: ./phonebook.log } }
history: { capacity: 100 }
events:  { buffer: 128 }
observers:
  - { id: ops, tags: [simple, detailed], min_interval: 250ms, burst: 2 }
numbers: ["+1-234-567-8900"]
`
	cfg, err := Decode("phonebook.yaml", []byte(flow))
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, "./phonebook.log", cfg.Logging.File.Path)
	assert.Equal(t, 100, cfg.History.Capacity)
	assert.Equal(t, 128, cfg.Events.Buffer)
	require.Len(t, cfg.Observers, 1)
	assert.Equal(t, ObserverConfig{ID: "ops", Tags: []string{"simple", "detailed"}, MinInterval: "250ms", Burst: 2}, cfg.Observers[0])
	assert.Equal(t, []string{"+1-234-567-8900"}, cfg.Numbers)

	_, err = Decode("phonebook.yaml", []byte("observers:\n  - { id: ops, rate_per_sec: 5 }\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_per_sec")
}

func TestDecodeJSONDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Decode("phonebook.json", []byte(`{"logging":{"console":false}}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, DefaultHistoryCapacity, cfg.History.Capacity)
	assert.Equal(t, DefaultEventsBuffer, cfg.Events.Buffer)
}

func TestDecodeEmptyYAML(t *testing.T) {
	t.Parallel()
	cfg, err := Decode("empty.yml", []byte("\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryCapacity, cfg.History.Capacity)
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown json field", path: "c.json", body: `{"histroy":{"capacity":3}}`},
		{name: "unknown yaml field", path: "c.yaml", body: "history:\n  size: 3\n"},
		{name: "trailing json", path: "c.json", body: `{} {}`},
		{name: "bad yaml", path: "c.yaml", body: "history: [\n"},
		{name: "wrong type", path: "c.json", body: `{"history":{"capacity":"ten"}}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(tt.path, []byte(tt.body))
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cfg := &Config{
		History: HistoryConfig{Capacity: -1},
		Observers: []ObserverConfig{
			{ID: "ops", Tags: []string{"simple"}},
			{ID: "ops", Tags: []string{"emergency"}, MinInterval: "soon", Burst: -1},
			{ID: " "},
		},
		Numbers: []string{"5550000000", "12"},
	}
	err := Validate(cfg)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"history.capacity",
		`observers[1].id: "ops" duplicates observers[0]`,
		`observers[1].tags[0]: unknown built-in tag "emergency"`,
		"observers[1].min_interval",
		"observers[1].burst",
		"observers[2].id: required",
		"numbers[1]",
	} {
		assert.Contains(t, msg, want)
	}
	assert.ErrorIs(t, err, phone.ErrInvalidFormat)
	assert.Error(t, Validate(nil))
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	d, err := ParseDurationField("x", " 1500ms ")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = ParseDurationField("x", "")
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = ParseDurationField("x", "-1s")
	assert.Error(t, err)
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	oldCfg := (&Config{}).Defaults()
	newCfg := (&Config{}).Defaults()
	newCfg.Logging.Level = "debug"
	newCfg.Observers = []ObserverConfig{{ID: "ops", Tags: []string{"simple"}}}

	sections, attrs := SummarizeConfigChange(oldCfg, newCfg)
	assert.Equal(t, []string{"logging", "observers"}, sections)
	assert.NotEmpty(t, attrs)
	assert.True(t, RestartRequired(sections))

	sections, _ = SummarizeConfigChange(oldCfg, oldCfg)
	assert.Empty(t, sections)
	assert.False(t, RestartRequired([]string{"logging"}))
}

func TestManagerLoadAndReload(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "phonebook.yaml", sampleYAML)

	m := NewManager(p)
	cfg, err := m.Load()
	require.NoError(t, err)
	assert.Same(t, cfg, m.Get())

	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	published, err := m.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, published, "unchanged content is not republished")

	writeFile(t, dir, "phonebook.yaml", "history:\n  capacity: 7\n")
	published, err = m.Reload(context.Background())
	require.NoError(t, err)
	require.True(t, published)
	got := <-sub
	assert.Equal(t, 7, got.History.Capacity)
	assert.Equal(t, 7, m.Get().History.Capacity)

	writeFile(t, dir, "phonebook.yaml", "numbers: [\"bogus\"]\n")
	_, err = m.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, 7, m.Get().History.Capacity, "rejected config is not committed")
}

func TestManagerLoadRejectsInvalid(t *testing.T) {
	t.Parallel()
	p := writeFile(t, t.TempDir(), "phonebook.json", `{"numbers":["123"]}`)
	_, err := NewManager(p).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, phone.ErrInvalidFormat)
}

func TestPublishKeepsLatest(t *testing.T) {
	t.Parallel()
	m := NewManager("unused.json")
	sub := m.Subscribe(1)
	first, second := &Config{}, &Config{}
	m.publish(first)
	m.publish(second)
	assert.Same(t, second, <-sub)

	m.Unsubscribe(sub)
	_, ok := <-sub
	assert.False(t, ok)
}

func TestWatchPublishesChanges(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p := writeFile(t, dir, "phonebook.yaml", "history:\n  capacity: 3\n")
	m := NewManager(p)
	_, err := m.Load()
	require.NoError(t, err)
	sub := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Keep rewriting until the watcher picks the change up; the first write
	// may land before the watcher is registered.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-sub:
			assert.Equal(t, 9, got.History.Capacity)
			return
		case <-tick.C:
			writeFile(t, dir, "phonebook.yaml", "history:\n  capacity: 9\n")
		case <-deadline:
			t.Fatal("config change was not published")
		}
	}
}
