package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"skyarea/internal/logging"
	"skyarea/internal/samples"
	"skyarea/internal/services"
	"skyarea/internal/skypost"
)

// AcquireState is a step of posterior acquisition.
type AcquireState string

const (
	StateNeedModel AcquireState = "need_model"
	StateLoading   AcquireState = "loading"
	StateBuilding  AcquireState = "building"
	StateReady     AcquireState = "ready"
	StateFailed    AcquireState = "failed"
)

// ErrConstructionExhausted marks a run whose every construction attempt failed.
var ErrConstructionExhausted = errors.New("could not generate sky posterior")

// acquisition is the outcome of obtaining a posterior.
type acquisition struct {
	posterior skypost.Posterior
	state     AcquireState
	attempts  int
	loaded    bool
}

type acquirer struct {
	engine skypost.Engine
	logger *slog.Logger
	state  AcquireState
}

func newAcquirer(engine skypost.Engine, logger *slog.Logger) *acquirer {
	return &acquirer{engine: engine, logger: logger, state: StateNeedModel}
}

func (a *acquirer) transition(next AcquireState, attrs ...logging.Attr) {
	args := append([]logging.Attr{
		logging.String("from", string(a.state)),
		logging.String("to", string(next)),
	}, attrs...)
	a.logger.Debug("posterior state changed", logging.Args(args...)...)
	a.state = next
}

// load deserializes a posterior snapshot. Failures are fatal.
func (a *acquirer) load(path string) (acquisition, error) {
	a.transition(StateLoading, logging.Path(path))
	file, err := os.Open(path)
	if err != nil {
		a.transition(StateFailed)
		return acquisition{state: a.state}, services.Wrap(services.ErrIO, "driver", "open posterior", path, err)
	}
	defer file.Close()

	posterior, err := a.engine.Load(file)
	if err != nil {
		a.transition(StateFailed)
		if !errors.Is(err, services.ErrDeserialize) {
			err = services.Wrap(services.ErrDeserialize, "driver", "load posterior", path, err)
		}
		return acquisition{state: a.state}, err
	}
	a.transition(StateReady)
	return acquisition{posterior: posterior, state: a.state, loaded: true}, nil
}

// build runs up to trials construction attempts. Retryable failures are
// logged and retried; fatal ones are returned at once.
func (a *acquirer) build(ctx context.Context, set samples.Set, trials int) (acquisition, error) {
	a.transition(StateBuilding, logging.Int("trials", trials), logging.Int("points", len(set)))

	var lastErr error
	for attempt := 1; attempt <= trials; attempt++ {
		if err := ctx.Err(); err != nil {
			a.transition(StateFailed)
			return acquisition{state: a.state, attempts: attempt - 1}, err
		}

		posterior, err := a.engine.Build(ctx, set)
		if err == nil {
			a.transition(StateReady, logging.Int("attempt", attempt), logging.Int("clusters", posterior.K()))
			return acquisition{posterior: posterior, state: a.state, attempts: attempt}, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			a.transition(StateFailed)
			return acquisition{state: a.state, attempts: attempt}, ctxErr
		}
		if !services.Retryable(err) {
			a.transition(StateFailed, logging.Int("attempt", attempt))
			return acquisition{state: a.state, attempts: attempt}, err
		}

		a.logger.Warn(
			"posterior construction attempt failed",
			logging.String(logging.FieldEventType, "attempt_failed"),
			logging.Int("attempt", attempt),
			logging.Int("trials", trials),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
	}

	a.transition(StateFailed)
	return acquisition{state: a.state, attempts: trials},
		fmt.Errorf("%w after %d trials: %w", ErrConstructionExhausted, trials, lastErr)
}
