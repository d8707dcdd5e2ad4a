package driver

import (
	"context"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"skyarea/internal/fileutil"
	"skyarea/internal/history"
	"skyarea/internal/injection"
	"skyarea/internal/logging"
	"skyarea/internal/samples"
	"skyarea/internal/services"
	"skyarea/internal/skypost"
	"skyarea/internal/stage"
	"skyarea/internal/stageexec"
)

// Recorder persists completed runs.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Option customizes a Driver.
type Option func(*Driver)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) { d.logger = logger }
}

// WithRecorder enables the run ledger.
func WithRecorder(recorder Recorder) Option {
	return func(d *Driver) { d.recorder = recorder }
}

// WithRand sets the random source used for subsampling.
func WithRand(rng *rand.Rand) Option {
	return func(d *Driver) { d.rng = rng }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// Driver runs the post-processing pipeline for one set of options.
type Driver struct {
	opts     Options
	engine   skypost.Engine
	recorder Recorder
	logger   *slog.Logger
	rng      *rand.Rand
	now      func() time.Time
}

// New validates opts and constructs a Driver.
func New(opts Options, engine skypost.Engine, options ...Option) (*Driver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, services.Wrap(services.ErrConfiguration, "driver", "new", "posterior engine is required", nil)
	}
	d := &Driver{opts: opts, engine: engine, now: time.Now}
	for _, opt := range options {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.NewNop()
	}
	if d.rng == nil {
		d.rng = NewRand(opts.Seed)
	}
	return d, nil
}

// Result summarises a successful run.
type Result struct {
	RunID       string
	StartedAt   time.Time
	FinishedAt  time.Time
	TotalPoints int
	UsedPoints  int
	Attempts    int
	Loaded      bool
	Clusters    int
	Nside       int
	Levels      []float64
	Areas       []float64
	PValue      *float64
	Outputs     []fileutil.Digest
	Stages      []stage.Timing
}

// run carries the state shared by the stages of one invocation.
type run struct {
	d        *Driver
	logger   *slog.Logger
	progress stage.Progress
	lock     *outputLock

	all       samples.Set
	used      samples.Set
	injection *injection.Record
	acquired  acquisition
	result    Result
}

type namedStage struct {
	name    string
	handler stage.Handler
}

// Run executes every stage in order. The first failing stage aborts the
// run; outputs already written are left in place.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	r := &run{d: d, logger: logging.WithContext(ctx, d.logger)}
	r.result.RunID = runID
	r.result.StartedAt = d.now()
	defer func() {
		if err := r.lock.release(); err != nil {
			r.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	for _, s := range r.stages() {
		err := stageexec.Run(ctx, stageexec.Options{
			Logger:    d.logger,
			Handler:   s.handler,
			StageName: s.name,
			Progress:  &r.progress,
		})
		if err != nil {
			return nil, err
		}
	}

	r.result.FinishedAt = d.now()
	r.result.Stages = r.progress.Timings()
	r.recordHistory(ctx)
	r.logger.Info(
		"sky localization complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("clusters", r.result.Clusters),
		logging.Int("outputs", len(r.result.Outputs)),
		logging.Duration("elapsed", r.result.FinishedAt.Sub(r.result.StartedAt)),
	)
	return &r.result, nil
}

func (r *run) stages() []namedStage {
	opts := r.d.opts
	stages := []namedStage{
		{"preflight", stage.Func(r.preflight)},
		{"load_samples", stage.Func(r.loadSamples)},
	}
	if opts.InjectionPath != "" {
		stages = append(stages, namedStage{"load_injection", stage.Func(r.loadInjection)})
	}
	stages = append(stages,
		namedStage{"subsample", stage.Func(r.subsample)},
		namedStage{"acquire_posterior", stage.Func(r.acquire)},
		namedStage{"persist_posterior", &persistStage{r: r}},
		namedStage{"render_skymap", &skymapStage{r: r}},
		namedStage{"render_assignments", stage.Func(r.renderAssignments)},
	)
	if !opts.NoSkyArea {
		stages = append(stages, namedStage{"credible_areas", stage.Func(r.credibleAreas)})
	}
	if opts.InjectionPath != "" {
		stages = append(stages, namedStage{"injection_pvalue", stage.Func(r.injectionPValue)})
	}
	return stages
}

func (r *run) recordHistory(ctx context.Context) {
	if r.d.recorder == nil {
		return
	}
	res := r.result
	entry := &history.Run{
		ID:              res.RunID,
		StartedAt:       res.StartedAt,
		FinishedAt:      res.FinishedAt,
		SamplesPath:     r.d.opts.SamplesPath,
		OutputDir:       r.d.opts.OutDir,
		InjectionPath:   r.d.opts.InjectionPath,
		LoadedPosterior: res.Loaded,
		TotalPoints:     res.TotalPoints,
		UsedPoints:      res.UsedPoints,
		Attempts:        res.Attempts,
		Clusters:        res.Clusters,
		Nside:           res.Nside,
		PValue:          res.PValue,
	}
	if r.d.opts.InjectionPath != "" {
		event := r.d.opts.EventNum
		entry.EventNum = &event
	}
	for i, level := range res.Levels {
		entry.Areas = append(entry.Areas, history.Area{Level: level, Area: res.Areas[i]})
	}
	for _, out := range res.Outputs {
		if out.Path == r.outputPath(SnapshotFile) {
			entry.SnapshotSHA256 = out.SHA256
		}
	}
	if err := r.d.recorder.Record(ctx, entry); err != nil {
		r.logger.Warn("failed to record run history", logging.Error(err))
		return
	}
	r.logger.Debug("run recorded in history", logging.String("history_id", entry.ID))
}

func (r *run) stageLogger(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, r.d.logger)
}

func (r *run) addOutput(digest fileutil.Digest) {
	r.result.Outputs = append(r.result.Outputs, digest)
}

func (r *run) outputPath(name string) string {
	return filepath.Join(r.d.opts.OutDir, name)
}
