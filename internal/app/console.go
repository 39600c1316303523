package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"phonebook/internal/eventlog"
	"phonebook/internal/registry"
)

var ErrUnknownCommand = errors.New("unknown command")

const consoleHelp = `commands:
  add <number>                 register a number
  remove <number>              unregister a number
  dial <number>                dial a registered number and notify observers
  known <number>               report whether a number is registered
  numbers                      list registered numbers
  observers                    list observers and their tags
  history [kind] [--since=T] [--until=T]
                               show events (T is RFC3339); kind is one of
                               add, remove, dial, observerAdded, observerRemoved
  help                         show this text`

// Console maps text commands onto registry operations.
type Console struct {
	reg *registry.Registry
}

func NewConsole(reg *registry.Registry) *Console { return &Console{reg: reg} }

// Exec runs one command line and returns its printable output.
// Validation failures are returned as errors; "not found" is regular output.
func (c *Console) Exec(ctx context.Context, line string) (string, error) {
	toks := tokenizeCommandLine(line)
	if len(toks) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(toks[0]), toks[1:]
	// Numbers may be typed with spaces: "dial +1 555 000 0000".
	number := strings.Join(args, " ")

	switch cmd {
	case "add":
		n, err := c.reg.AddNumber(number)
		if err != nil {
			return "", err
		}
		return "added " + n.String(), nil

	case "remove", "rm":
		ok, err := c.reg.RemoveNumber(number)
		if err != nil {
			return "", err
		}
		if !ok {
			return "not found", nil
		}
		return "removed", nil

	case "dial":
		res, err := c.reg.Dial(ctx, number)
		if err != nil {
			return "", err
		}
		if !res.Dialed {
			return "not found", nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "dialed %s (%d observers notified)", res.Number, res.Notified)
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "\n  observer %s failed: %v", f.ObserverID, f.Err)
		}
		return b.String(), nil

	case "known":
		ok, err := c.reg.Known(number)
		if err != nil {
			return "", err
		}
		if !ok {
			return "unknown", nil
		}
		return "known", nil

	case "numbers", "ls":
		ns := c.reg.Numbers()
		if len(ns) == 0 {
			return "(none)", nil
		}
		lines := make([]string, 0, len(ns))
		for _, n := range ns {
			lines = append(lines, n.String())
		}
		return strings.Join(lines, "\n"), nil

	case "observers":
		obs := c.reg.Observers()
		if len(obs) == 0 {
			return "(none)", nil
		}
		lines := make([]string, 0, len(obs))
		for _, o := range obs {
			lines = append(lines, fmt.Sprintf("%s [%s]", o.ID(), strings.Join(o.Tags(), ", ")))
		}
		return strings.Join(lines, "\n"), nil

	case "history":
		f, err := parseHistoryFilter(args)
		if err != nil {
			return "", err
		}
		events := c.reg.History(f)
		if len(events) == 0 {
			return "(none)", nil
		}
		lines := make([]string, 0, len(events))
		for _, e := range events {
			lines = append(lines, fmt.Sprintf("%s %-15s %s", e.Time.Format(time.RFC3339), e.Kind, e.Number))
		}
		return strings.Join(lines, "\n"), nil

	case "help", "?":
		return consoleHelp, nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

func parseHistoryFilter(args []string) (eventlog.Filter, error) {
	pos, flags := splitFlags(args)
	var f eventlog.Filter
	if len(pos) > 1 {
		return f, fmt.Errorf("history: expected at most one kind, got %d", len(pos))
	}
	if len(pos) == 1 {
		k, ok := eventlog.ParseKind(pos[0])
		if !ok {
			return f, fmt.Errorf("history: unknown event kind %q", pos[0])
		}
		f.Kind = k
	}
	for key, val := range flags {
		t, err := time.Parse(time.RFC3339, val)
		switch key {
		case "since", "start":
			if err != nil {
				return f, fmt.Errorf("history: --%s: %w", key, err)
			}
			f.Start = t
		case "until", "end":
			if err != nil {
				return f, fmt.Errorf("history: --%s: %w", key, err)
			}
			f.End = t
		default:
			return f, fmt.Errorf("history: unknown flag --%s", key)
		}
	}
	return f, nil
}

// Run reads command lines from in until EOF or ctx is done, writing results
// to out. Command errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			res, err := c.Exec(ctx, line)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			if res != "" {
				fmt.Fprintln(out, res)
			}
		}
	}
}
