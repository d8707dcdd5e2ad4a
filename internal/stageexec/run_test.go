package stageexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"skyarea/internal/logging"
	"skyarea/internal/services"
	"skyarea/internal/stage"
)

type recordingHandler struct {
	prepareErr error
	executeErr error
	executed   bool
	logger     *slog.Logger
}

func (h *recordingHandler) Prepare(context.Context) error { return h.prepareErr }

func (h *recordingHandler) Execute(context.Context) error {
	h.executed = true
	return h.executeErr
}

func (h *recordingHandler) SetLogger(logger *slog.Logger) { h.logger = logger }

func newBufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

func TestRunSuccess(t *testing.T) {
	logger, buf := newBufferLogger(t)
	handler := &recordingHandler{}
	var progress stage.Progress

	ctx := services.WithRunID(context.Background(), "run-1")
	err := Run(ctx, Options{Logger: logger, Handler: handler, StageName: "load_samples", Progress: &progress})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !handler.executed {
		t.Fatal("handler not executed")
	}
	if handler.logger == nil {
		t.Fatal("stage logger not injected")
	}
	out := buf.String()
	for _, want := range []string{"stage_start", "stage_complete", "Load Samples started", `"run_id":"run-1"`, `"stage":"load_samples"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
	if timings := progress.Timings(); len(timings) != 1 || timings[0].Err != nil {
		t.Fatalf("unexpected timings %+v", timings)
	}
}

func TestRunPrepareFailureSkipsExecute(t *testing.T) {
	logger, buf := newBufferLogger(t)
	prepErr := services.Wrap(services.ErrValidation, "test", "prepare", "bad input", nil)
	handler := &recordingHandler{prepareErr: prepErr}

	err := Run(context.Background(), Options{Logger: logger, Handler: handler, StageName: "skymap"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if handler.executed {
		t.Fatal("execute should not run after prepare failure")
	}
	out := buf.String()
	if !strings.Contains(out, "stage_failure") || !strings.Contains(out, `"error_kind":"validation"`) {
		t.Fatalf("failure not logged:\n%s", out)
	}
	if strings.Count(out, "stage_failure") != 1 {
		t.Fatalf("failure should be logged once:\n%s", out)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handler := &recordingHandler{}
	err := Run(ctx, Options{Logger: logging.NewNop(), Handler: handler, StageName: "skymap"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if handler.executed {
		t.Fatal("handler should not run after cancellation")
	}
}

func TestRunNilHandler(t *testing.T) {
	if err := Run(context.Background(), Options{StageName: "x"}); err == nil {
		t.Fatal("expected error for nil handler")
	}
}
