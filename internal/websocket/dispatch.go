package websocket

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// HandlerFunc processes one inbound event for the given connection.
type HandlerFunc func(ctx context.Context, connID string, data json.RawMessage)

// Dispatcher routes inbound events to their registered handler by event
// kind. Handlers are registered once at wiring time, before any client
// connects, so dispatch reads the table without locking.
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
	}
}

func (d *Dispatcher) Register(event string, fn HandlerFunc) {
	d.handlers[event] = fn
}

func (d *Dispatcher) Dispatch(ctx context.Context, connID string, evt IncomingEvent) {
	fn, ok := d.handlers[evt.Type]
	if !ok {
		log.Warn().Str("connID", connID).Str("type", evt.Type).Msg("ws: unknown event type")
		return
	}

	fn(ctx, connID, evt.Data)
}
