package stage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"load_samples": "Load Samples",
		"skymap":       "Skymap",
		"":             "",
		"  p_value ":   "P Value",
	}
	for in, want := range tests {
		if got := Label(in); got != want {
			t.Fatalf("Label(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProgress(t *testing.T) {
	var p Progress
	boom := errors.New("boom")
	p.End("load_samples", time.Millisecond, nil)
	p.End("acquire", time.Second, boom)

	timings := p.Timings()
	if len(timings) != 2 {
		t.Fatalf("expected 2 timings, got %d", len(timings))
	}
	if timings[0].Label != "Load Samples" || timings[0].Err != nil {
		t.Fatalf("unexpected first timing %+v", timings[0])
	}
	if timings[1].Label != "Acquire" || !errors.Is(timings[1].Err, boom) {
		t.Fatalf("unexpected second timing %+v", timings[1])
	}

	timings[0].Name = "changed"
	if p.Timings()[0].Name != "load_samples" {
		t.Fatal("Timings must return a copy")
	}
}

func TestFuncHandler(t *testing.T) {
	called := false
	h := Func(func(context.Context) error {
		called = true
		return nil
	})
	if err := h.Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := h.Execute(context.Background()); err != nil || !called {
		t.Fatalf("Execute: %v called=%v", err, called)
	}
}
