package observer

import (
	"context"

	logx "phonebook/pkg/logx"
)

const (
	TagSimple   = "simple"
	TagDetailed = "detailed"

	// EventDial is the event type used when Notify is given none.
	EventDial = "dial"
)

// Handler reacts to a notification for a single number.
type Handler interface {
	Handle(ctx context.Context, number string) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, number string) error

func (f HandlerFunc) Handle(ctx context.Context, number string) error { return f(ctx, number) }

// action is one unit of work selected for a Notify call.
type action struct {
	name string
	h    Handler
}

func simpleAction(log logx.Logger) Handler {
	return HandlerFunc(func(_ context.Context, number string) error {
		log.Info(number)
		return nil
	})
}

func detailedAction(log logx.Logger) Handler {
	return HandlerFunc(func(_ context.Context, number string) error {
		log.Info("Now dialing "+number, logx.String("number", number))
		return nil
	})
}
