package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonebook/internal/config"
	"phonebook/internal/eventlog"
	"phonebook/internal/phone"
	logx "phonebook/pkg/logx"
)

func writeConfig(t *testing.T, body string) (cfgPath, logPath string) {
	t.Helper()
	dir := t.TempDir()
	logPath = filepath.Join(dir, "phonebook.log")
	cfgPath = filepath.Join(dir, "phonebook.yaml")
	body = "logging:\n  level: debug\n  console: false\n  file:\n    enabled: true\n    path: " + logPath + "\n" + body
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, logPath
}

func TestNewSeedsRegistryFromConfig(t *testing.T) {
	cfgPath, _ := writeConfig(t, `
history:
  capacity: 10
observers:
  - id: ops
    tags: [simple, detailed]
  - id: pager
    tags: [simple]
    min_interval: 1ms
numbers:
  - "+1-234-567-8900"
`)
	a, err := New(cfgPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.logs.Close() })

	reg := a.Registry()
	assert.Equal(t, 10, reg.HistoryCapacity())
	assert.Equal(t, []phone.Number{"+12345678900"}, reg.Numbers())

	obs := reg.Observers()
	require.Len(t, obs, 2)
	assert.Equal(t, "ops", obs[0].ID())
	assert.Equal(t, []string{"detailed", "simple"}, obs[0].Tags())
	assert.Equal(t, "pager", obs[1].ID())

	assert.Equal(t,
		[]eventlog.Kind{eventlog.KindObserverAdded, eventlog.KindObserverAdded, eventlog.KindAdd},
		eventKinds(reg.History(eventlog.Filter{})))
}

func eventKinds(es []eventlog.Event) []eventlog.Kind {
	out := make([]eventlog.Kind, 0, len(es))
	for _, e := range es {
		out = append(out, e.Kind)
	}
	return out
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfgPath, _ := writeConfig(t, "numbers: [\"12\"]\n")
	_, err := New(cfgPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, phone.ErrInvalidFormat)

	_, err = New(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestStartDialStop(t *testing.T) {
	cfgPath, logPath := writeConfig(t, `
events:
  log: true
observers:
  - id: ops
    tags: [detailed]
numbers: ["555 000 0000"]
`)
	a, err := New(cfgPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx))
	require.NoError(t, a.Start(ctx), "Start is idempotent")

	out, err := a.Console().Exec(ctx, "dial 555-000-0000")
	require.NoError(t, err)
	assert.Equal(t, "dialed 5550000000 (1 observers notified)", out)

	assert.Eventually(t, func() bool {
		b, err := os.ReadFile(logPath)
		return err == nil && strings.Contains(string(b), `"type":"dial"`)
	}, 5*time.Second, 10*time.Millisecond, "event tail should log the dial")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx))
	assert.ErrorIs(t, a.Stop(stopCtx), ErrNotStarted)

	b, err := os.ReadFile(logPath)
	require.NoError(t, err)
	logs := string(b)
	assert.Contains(t, logs, "Now dialing 5550000000")
	assert.Contains(t, logs, "phone number dialed")
	assert.Contains(t, logs, `"type":"dial"`)
	assert.Contains(t, logs, `"config":"`+cfgPath+`"`)
	assert.Contains(t, logs, `"events_dropped":0`)
}

func TestApplyConfigSwapsLogging(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	a, err := New(cfgPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.logs.Close() })

	oldCfg := a.cfgm.Get()
	newCfg := *oldCfg
	newCfg.Logging.Level = "warn"
	a.applyConfig(oldCfg, &newCfg)
	assert.Equal(t, "warn", a.logs.Config().Level)

	// unchanged config leaves the service alone
	a.applyConfig(&newCfg, &newCfg)
	assert.Equal(t, "warn", a.logs.Config().Level)
}

func TestBuildObserversRejectsBadInterval(t *testing.T) {
	t.Parallel()
	_, err := buildObservers([]config.ObserverConfig{{ID: "x", MinInterval: "fast"}}, logx.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "observers[0].min_interval")
}
