package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"phonebook/internal/observer"
	"phonebook/internal/phone"
)

// ParseDurationField parses an optional, non-negative Go duration string.
// path names the config key in error messages.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// Validate reports every problem in cfg, joined.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error

	if cfg.History.Capacity < 0 {
		errs = append(errs, errors.New("history.capacity: must be >= 0"))
	}
	if cfg.Events.Buffer < 0 {
		errs = append(errs, errors.New("events.buffer: must be >= 0"))
	}

	seen := map[string]int{}
	for i, o := range cfg.Observers {
		path := fmt.Sprintf("observers[%d]", i)
		id := strings.TrimSpace(o.ID)
		if id == "" {
			errs = append(errs, fmt.Errorf("%s.id: required", path))
		} else if j, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("%s.id: %q duplicates observers[%d]", path, id, j))
		} else {
			seen[id] = i
		}
		for k, tag := range o.Tags {
			tag = strings.TrimSpace(tag)
			if tag != observer.TagSimple && tag != observer.TagDetailed {
				errs = append(errs, fmt.Errorf("%s.tags[%d]: unknown built-in tag %q", path, k, tag))
			}
		}
		if _, err := ParseDurationField(path+".min_interval", o.MinInterval); err != nil {
			errs = append(errs, err)
		}
		if o.Burst < 0 {
			errs = append(errs, fmt.Errorf("%s.burst: must be >= 0", path))
		}
	}

	for i, raw := range cfg.Numbers {
		if _, err := phone.Normalize(raw); err != nil {
			errs = append(errs, fmt.Errorf("numbers[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
