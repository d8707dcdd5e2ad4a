package testsupport

import (
	"path/filepath"
	"testing"

	"skyarea/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config whose writable paths live under a per-test
// temp directory. It applies any provided options and finalizes the result.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Logging.Level = "debug"
	cfgVal.Run.Seed = 1

	builder := &configBuilder{cfg: &cfgVal}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Finalize(); err != nil {
		t.Fatalf("finalize test config: %v", err)
	}
	return builder.cfg
}

// WithTrials overrides the construction attempt budget.
func WithTrials(trials int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.Trials = trials
	}
}

// WithoutHistory disables the run ledger.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithCoarseSkymap lowers pixel and area resolution so rendering stays fast.
func WithCoarseSkymap() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Skymap.PixelResolutionDeg = 15
		b.cfg.Clustering.AreaResolution = 8
	}
}
