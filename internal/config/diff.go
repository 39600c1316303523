package config

import (
	"reflect"
	"strings"

	logx "phonebook/pkg/logx"
)

// SummarizeConfigChange returns the changed top-level sections and
// structured attrs describing the new values, for logging.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 5)
	attrs := make([]logx.Field, 0, 8)

	if !strings.EqualFold(strings.TrimSpace(oldCfg.Logging.Level), strings.TrimSpace(newCfg.Logging.Level)) ||
		oldCfg.Logging.Console != newCfg.Logging.Console ||
		oldCfg.Logging.File.Enabled != newCfg.Logging.File.Enabled ||
		strings.TrimSpace(oldCfg.Logging.File.Path) != strings.TrimSpace(newCfg.Logging.File.Path) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if oldCfg.History != newCfg.History {
		changed = append(changed, "history")
		attrs = append(attrs, logx.Int("history.capacity", newCfg.History.Capacity))
	}
	if oldCfg.Events != newCfg.Events {
		changed = append(changed, "events")
		attrs = append(attrs, logx.Bool("events.log", newCfg.Events.Log), logx.Int("events.buffer", newCfg.Events.Buffer))
	}
	if !reflect.DeepEqual(oldCfg.Observers, newCfg.Observers) {
		changed = append(changed, "observers")
		attrs = append(attrs, logx.Int("observers.count", len(newCfg.Observers)))
	}
	if !reflect.DeepEqual(oldCfg.Numbers, newCfg.Numbers) {
		changed = append(changed, "numbers")
		attrs = append(attrs, logx.Int("numbers.count", len(newCfg.Numbers)))
	}
	return changed, attrs
}

// RestartRequired reports whether any changed section only takes effect at startup.
func RestartRequired(sections []string) bool {
	for _, s := range sections {
		switch s {
		case "history", "events", "observers", "numbers":
			return true
		}
	}
	return false
}
