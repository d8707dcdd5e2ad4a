package driver

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"skyarea/internal/config"
	"skyarea/internal/services"
)

// Output file names inside Options.OutDir.
const (
	SnapshotFile = "skypost.obj"
	SkymapFile   = "skymap.pdf"
	AssignFile   = "assign.pdf"
	AreasFile    = "areas.dat"
	PValueFile   = "p.dat"
	lockFile     = ".skyarea.lock"
)

// Options is the resolved configuration of one run. It is not modified
// after New.
type Options struct {
	OutDir        string
	SamplesPath   string
	InjectionPath string
	EventNum      int
	LoadPostPath  string
	// MaxPts caps the number of samples used; zero uses all of them.
	MaxPts    int
	Trials    int
	NoSkyArea bool
	Seed      int64

	// PixelResolution is the sky map resolution threshold in radians.
	PixelResolution float64
	BaseNside       int
	MaxNside        int
	PlotWidth       float64
	PlotHeight      float64
}

// OptionsFromConfig seeds run options from configuration defaults. Paths
// and other per-invocation values are left for the caller to fill.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Trials:          cfg.Run.Trials,
		NoSkyArea:       cfg.Run.NoSkyArea,
		Seed:            cfg.Run.Seed,
		PixelResolution: cfg.Skymap.PixelResolutionDeg * math.Pi / 180,
		BaseNside:       cfg.Skymap.BaseNside,
		MaxNside:        cfg.Skymap.MaxNside,
		PlotWidth:       cfg.Skymap.WidthInches,
		PlotHeight:      cfg.Skymap.HeightInches,
	}
}

// Validate checks the options that cannot be caught by flag parsing.
func (o Options) Validate() error {
	switch {
	case strings.TrimSpace(o.SamplesPath) == "":
		return services.Wrap(services.ErrConfiguration, "driver", "options", "samples path is required", nil)
	case strings.TrimSpace(o.OutDir) == "":
		return services.Wrap(services.ErrConfiguration, "driver", "options", "output directory is required", nil)
	case o.Trials <= 0:
		return services.Wrap(services.ErrConfiguration, "driver", "options", "trials must be positive", nil)
	case o.MaxPts < 0:
		return services.Wrap(services.ErrConfiguration, "driver", "options", "maxpts must not be negative", nil)
	case o.EventNum < 0:
		return services.Wrap(services.ErrConfiguration, "driver", "options", "eventnum must not be negative", nil)
	case !(o.PixelResolution > 0):
		return services.Wrap(services.ErrConfiguration, "driver", "options", "pixel resolution must be positive", nil)
	}
	return nil
}

// NewRand returns a random source for seed. Zero seeds from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
