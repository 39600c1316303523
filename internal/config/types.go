// Package config loads phonebook's configuration from JSON or YAML.
//
// Decoding is strict: unknown keys and trailing data are rejected so typos in
// a hot-reloaded file never silently change behavior.
package config

import "strings"

const (
	DefaultHistoryCapacity = 100
	DefaultEventsBuffer    = 128
	DefaultLogLevel        = "info"
)

type Config struct {
	Logging LoggingConfig `json:"logging"`
	History HistoryConfig `json:"history"`
	Events  EventsConfig  `json:"events"`

	// Observers are registered at startup. Only built-in tags (simple,
	// detailed) have an effect from config; custom handlers are code.
	Observers []ObserverConfig `json:"observers,omitempty"`

	// Numbers seeds the registry at startup. Raw form; normalized on load.
	Numbers []string `json:"numbers,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// HistoryConfig bounds the in-memory event history.
//
// Changing capacity requires a restart.
type HistoryConfig struct {
	Capacity int `json:"capacity"`
}

// EventsConfig controls the event bus tail that logs registry events.
type EventsConfig struct {
	Buffer int  `json:"buffer,omitempty"`
	Log    bool `json:"log"`
}

// ObserverConfig declares an observer.
//
// Example:
//
//	observers:
//	  - id: ops
//	    tags: [simple, detailed]
//	    min_interval: 250ms
//	    burst: 2
type ObserverConfig struct {
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
	// MinInterval is a Go duration string; notifications to this observer are
	// throttled to one per interval (after Burst). Empty or "0s" disables it.
	MinInterval string `json:"min_interval,omitempty"`
	Burst       int    `json:"burst,omitempty"`
}

// Defaults fills zero values in place and returns cfg.
func (c *Config) Defaults() *Config {
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = DefaultHistoryCapacity
	}
	if c.Events.Buffer <= 0 {
		c.Events.Buffer = DefaultEventsBuffer
	}
	return c
}
