package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"skyarea/internal/logging"
	"skyarea/internal/services"
	"skyarea/internal/stage"
)

// Options controls a single stage execution.
type Options struct {
	Logger    *slog.Logger
	Handler   stage.Handler
	StageName string
	Progress  *stage.Progress
}

// Run executes a stage, logging start, completion and failure once each.
// Cancellation is checked before the stage starts.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.StageName)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stageCtx := services.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stageLogger)
	}

	stageLogger.Info(
		fmt.Sprintf("%s started", stage.Label(opts.StageName)),
		logging.String(logging.FieldEventType, "stage_start"),
	)
	started := time.Now()

	err := opts.Handler.Prepare(stageCtx)
	if err == nil {
		err = opts.Handler.Execute(stageCtx)
	}
	elapsed := time.Since(started)
	if opts.Progress != nil {
		opts.Progress.End(opts.StageName, elapsed, err)
	}
	if err != nil {
		return handleFailure(stageLogger, elapsed, err)
	}

	stageLogger.Info(
		fmt.Sprintf("%s completed", stage.Label(opts.StageName)),
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

func handleFailure(logger *slog.Logger, elapsed time.Duration, stageErr error) error {
	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("error_kind", services.Kind(stageErr)),
		logging.Duration("elapsed", elapsed),
		logging.Error(stageErr),
	)
	return stageErr
}
