package stage

import (
	"context"
	"log/slog"
)

// Handler describes the contract the driver needs from each pipeline stage.
// Prepare validates inputs and must not write outputs; Execute does the work.
type Handler interface {
	Prepare(context.Context) error
	Execute(context.Context) error
}

// LoggerAware is implemented by handlers that want the stage-scoped logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

// Func adapts a plain function into a Handler with no preparation step.
type Func func(context.Context) error

// Prepare implements Handler.
func (Func) Prepare(context.Context) error { return nil }

// Execute implements Handler.
func (f Func) Execute(ctx context.Context) error { return f(ctx) }
