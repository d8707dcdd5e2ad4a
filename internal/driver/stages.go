package driver

import (
	"context"
	"io"
	"log/slog"

	"gonum.org/v1/plot/vg"

	"skyarea/internal/fileutil"
	"skyarea/internal/healpix"
	"skyarea/internal/injection"
	"skyarea/internal/logging"
	"skyarea/internal/preflight"
	"skyarea/internal/report"
	"skyarea/internal/samples"
	"skyarea/internal/services"
	"skyarea/internal/skyplot"
	"skyarea/internal/skypost"
)

func (r *run) preflight(ctx context.Context) error {
	opts := r.d.opts
	results := preflight.RunAll(ctx, preflight.Paths{
		Samples:   opts.SamplesPath,
		Injection: opts.InjectionPath,
		Posterior: opts.LoadPostPath,
		OutputDir: opts.OutDir,
	})
	logger := r.stageLogger(ctx)
	for _, res := range results {
		logger.Debug("preflight check", logging.String("check", res.Name), logging.Bool("passed", res.Passed), logging.String("detail", res.Detail))
	}
	if err := preflight.Failed(results); err != nil {
		return services.Wrap(services.ErrConfiguration, "driver", "preflight", "", err)
	}
	return nil
}

func (r *run) loadSamples(ctx context.Context) error {
	set, err := samples.Load(r.d.opts.SamplesPath)
	if err != nil {
		return err
	}
	r.all = set
	r.result.TotalPoints = len(set)
	r.stageLogger(ctx).Info("samples loaded", logging.Int("points", len(set)), logging.Path(r.d.opts.SamplesPath))
	return nil
}

func (r *run) loadInjection(ctx context.Context) error {
	table, err := injection.Load(r.d.opts.InjectionPath)
	if err != nil {
		return err
	}
	rec, err := table.Select(r.d.opts.EventNum)
	if err != nil {
		return err
	}
	r.injection = &rec
	r.stageLogger(ctx).Info(
		"injection selected",
		logging.Int("event", r.d.opts.EventNum),
		logging.Degrees("longitude_deg", rec.Longitude),
		logging.Degrees("latitude_deg", rec.Latitude),
	)
	return nil
}

func (r *run) subsample(ctx context.Context) error {
	r.used = samples.Subsample(r.all, r.d.opts.MaxPts, r.d.rng)
	r.result.UsedPoints = len(r.used)
	if len(r.used) != len(r.all) {
		r.stageLogger(ctx).Info("samples subsampled", logging.Int("kept", len(r.used)), logging.Int("total", len(r.all)))
	}
	return nil
}

func (r *run) acquire(ctx context.Context) error {
	acq := newAcquirer(r.d.engine, r.stageLogger(ctx))
	var (
		got acquisition
		err error
	)
	if r.d.opts.LoadPostPath != "" {
		got, err = acq.load(r.d.opts.LoadPostPath)
	} else {
		got, err = acq.build(ctx, r.used, r.d.opts.Trials)
	}
	r.acquired = got
	r.result.Attempts = got.attempts
	if err != nil {
		return err
	}
	r.result.Loaded = got.loaded
	r.result.Clusters = got.posterior.K()
	return nil
}

// persistStage creates the output directory, locks it and rewrites the
// snapshot. It runs only once a posterior is ready, so failed runs leave no
// outputs.
type persistStage struct {
	r      *run
	logger *slog.Logger
}

func (s *persistStage) SetLogger(logger *slog.Logger) { s.logger = logger }

// Prepare rechecks the output directory, which may have changed while the
// posterior was being built.
func (s *persistStage) Prepare(context.Context) error {
	if s.r.acquired.posterior == nil {
		return services.Wrap(services.ErrValidation, "driver", "persist", "no posterior acquired", nil)
	}
	res := preflight.CheckOutputDirectory("output directory", s.r.d.opts.OutDir)
	if !res.Passed {
		return services.Wrap(services.ErrIO, "driver", "output directory", res.Detail, nil)
	}
	return nil
}

func (s *persistStage) Execute(context.Context) error {
	r := s.r
	if err := fileutil.EnsureDir(r.d.opts.OutDir); err != nil {
		return services.Wrap(services.ErrIO, "driver", "output directory", "", err)
	}
	lock, err := acquireOutputLock(r.d.opts.OutDir)
	if err != nil {
		return services.Wrap(services.ErrIO, "driver", "lock output directory", "", err)
	}
	r.lock = lock

	return r.writeOutput(s.logger, SnapshotFile, func(w io.Writer) error {
		return r.d.engine.Save(w, r.acquired.posterior)
	})
}

// skymapStage renders the all-sky density map.
type skymapStage struct {
	r      *run
	logger *slog.Logger
	nside  int
}

func (s *skymapStage) SetLogger(logger *slog.Logger) { s.logger = logger }

// Prepare resolves the pixel grid so an unusable resolution fails before
// any density is evaluated.
func (s *skymapStage) Prepare(context.Context) error {
	opts := s.r.d.opts
	nside, err := healpix.NsideForResolution(opts.BaseNside, opts.PixelResolution, opts.MaxNside)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "driver", "skymap resolution", "", err)
	}
	s.nside = nside
	s.logger.Debug("skymap grid resolved",
		logging.Int("nside", nside),
		logging.Degrees("resolution_deg", healpix.Resolution(nside)),
	)
	return nil
}

func (s *skymapStage) Execute(context.Context) error {
	r := s.r
	r.result.Nside = s.nside

	lon, lat := healpix.Centers(s.nside)
	coords := make([]skypost.Coord, len(lon))
	for i := range lon {
		coords[i] = skypost.Coord{Lon: lon[i], Lat: lat[i]}
	}
	density := r.acquired.posterior.Density(coords)
	s.logger.Debug("density evaluated", logging.Int("pixels", len(coords)))

	return r.writeOutput(s.logger, SkymapFile, func(w io.Writer) error {
		return skyplot.WriteSkymap(w, s.nside, density, r.plotOptions())
	})
}

func (r *run) renderAssignments(ctx context.Context) error {
	post := r.acquired.posterior
	pts := post.Points()
	ra := make([]float64, len(pts))
	sinDec := make([]float64, len(pts))
	for i, p := range pts {
		ra[i], sinDec[i] = p[0], p[1]
	}
	return r.writeOutput(r.stageLogger(ctx), AssignFile, func(w io.Writer) error {
		return skyplot.WriteAssignments(w, ra, sinDec, post.Assignments(), post.K(), r.plotOptions())
	})
}

func (r *run) credibleAreas(ctx context.Context) error {
	areas, err := r.acquired.posterior.Areas(report.CredibleLevels)
	if err != nil {
		return err
	}
	r.result.Levels = append([]float64(nil), report.CredibleLevels...)
	r.result.Areas = areas
	return r.writeOutput(r.stageLogger(ctx), AreasFile, func(w io.Writer) error {
		return report.WriteAreas(w, report.CredibleLevels, areas)
	})
}

func (r *run) injectionPValue(ctx context.Context) error {
	rec := r.injection
	values, err := r.acquired.posterior.PValues([]skypost.Coord{{Lon: rec.Longitude, Lat: rec.Latitude}})
	if err != nil {
		return err
	}
	if len(values) != 1 {
		return services.Wrap(services.ErrValidation, "driver", "p-value", "posterior returned no value for the injection", nil)
	}
	p := values[0]
	r.result.PValue = &p
	return r.writeOutput(r.stageLogger(ctx), PValueFile, func(w io.Writer) error {
		return report.WritePValues(w, values)
	})
}

func (r *run) writeOutput(logger *slog.Logger, name string, write func(io.Writer) error) error {
	path := r.outputPath(name)
	digest, err := fileutil.WriteAtomic(path, 0o644, write)
	if err != nil {
		return services.Wrap(services.ErrIO, "driver", "write "+name, "", err)
	}
	r.addOutput(digest)
	logger.Info(
		"output written",
		logging.Path(digest.Path),
		logging.Int("bytes", int(digest.Size)),
		logging.String("sha256", digest.SHA256),
	)
	return nil
}

func (r *run) plotOptions() skyplot.Options {
	return skyplot.Options{
		Width:  vg.Length(r.d.opts.PlotWidth) * vg.Inch,
		Height: vg.Length(r.d.opts.PlotHeight) * vg.Inch,
	}
}
