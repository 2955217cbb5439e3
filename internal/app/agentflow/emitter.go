package agentflow

import (
	"context"

	"github.com/voyant-travel/voyant-agent/internal/domain"
)

// Emitter fans a turn's progress events out to one consumer. A nil *Emitter
// is valid and drops everything, so non-streaming callers run the same loop
// code without a channel.
type Emitter struct {
	ch chan domain.StreamEvent
}

func NewEmitter(buffer int) *Emitter {
	return &Emitter{ch: make(chan domain.StreamEvent, buffer)}
}

// Events is the consumer side. It is closed by Close once the turn ends.
func (e *Emitter) Events() <-chan domain.StreamEvent {
	if e == nil {
		return nil
	}
	return e.ch
}

// Emit delivers one event, giving up if the consumer is gone and the context
// is cancelled.
func (e *Emitter) Emit(ctx context.Context, ev domain.StreamEvent) {
	if e == nil {
		return
	}
	select {
	case e.ch <- ev:
	case <-ctx.Done():
	}
}

// Close ends the stream. Must be called exactly once, after the terminal
// event has been emitted.
func (e *Emitter) Close() {
	if e == nil {
		return
	}
	close(e.ch)
}
