package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"skyarea/internal/history"
	"skyarea/internal/services"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	event := 3
	pValue := 0.42
	started := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	run := &history.Run{
		StartedAt:      started,
		FinishedAt:     started.Add(90 * time.Second),
		SamplesPath:    "/data/posterior_samples.dat",
		OutputDir:      "/data/out",
		InjectionPath:  "/data/inj.xml",
		EventNum:       &event,
		TotalPoints:    5000,
		UsedPoints:     1000,
		Attempts:       2,
		Clusters:       3,
		Nside:          64,
		Areas:          []history.Area{{Level: 0.5, Area: 10}, {Level: 0.9, Area: 55.5}},
		PValue:         &pValue,
		SnapshotSHA256: "abc123",
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected run ID to be assigned")
	}

	got, err := store.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.SamplesPath != run.SamplesPath || got.Clusters != 3 || got.Nside != 64 {
		t.Fatalf("unexpected run %#v", got)
	}
	if got.EventNum == nil || *got.EventNum != 3 {
		t.Fatalf("event num not round-tripped: %v", got.EventNum)
	}
	if got.PValue == nil || *got.PValue != 0.42 {
		t.Fatalf("p-value not round-tripped: %v", got.PValue)
	}
	if len(got.Areas) != 2 || got.Areas[1].Area != 55.5 {
		t.Fatalf("areas not round-tripped: %v", got.Areas)
	}
	if got.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration %v", got.Duration())
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("started_at = %v, want %v", got.StartedAt, started)
	}
}

func TestGetMissing(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	offsets := []time.Duration{0, 500 * time.Millisecond, time.Second}
	for i, offset := range offsets {
		run := &history.Run{
			StartedAt:   base.Add(offset),
			FinishedAt:  base.Add(offset + time.Second),
			SamplesPath: "samples.dat",
			OutputDir:   "out",
			TotalPoints: i + 1,
			UsedPoints:  i + 1,
			Attempts:    1,
			Clusters:    1,
			Nside:       64,
		}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %d failed: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].TotalPoints != 3 || runs[1].TotalPoints != 2 {
		t.Fatalf("unexpected order: %d, %d", runs[0].TotalPoints, runs[1].TotalPoints)
	}
	if runs[0].PValue != nil || runs[0].EventNum != nil || runs[0].Areas != nil {
		t.Fatalf("optional fields should be empty: %#v", runs[0])
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		store, err := history.Open(path)
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("Close #%d failed: %v", i, err)
		}
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := history.Open("  "); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
