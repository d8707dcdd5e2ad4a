package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"skyarea/internal/config"
	"skyarea/internal/driver"
	"skyarea/internal/healpix"
	"skyarea/internal/history"
	"skyarea/internal/logging"
	"skyarea/internal/services"
	"skyarea/internal/skypost"
)

// runFlags holds the per-invocation flags of the root command.
type runFlags struct {
	outDir    string
	samples   string
	inj       string
	eventNum  int
	loadPost  string
	maxPts    int
	trials    int
	noSkyArea bool
	seed      int64
	summary   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.outDir, "outdir", ".", "Output directory (created if absent)")
	flags.StringVar(&f.samples, "samples", "", "Posterior sample file with ra and dec columns (required)")
	flags.StringVar(&f.inj, "inj", "", "LIGO_LW injection file (.xml or .xml.gz)")
	flags.IntVar(&f.eventNum, "eventnum", 0, "Row of the sim_inspiral table to use with --inj")
	flags.StringVar(&f.loadPost, "loadpost", "", "Load a saved posterior instead of building one")
	flags.IntVar(&f.maxPts, "maxpts", 0, "Maximum number of samples to use (0 uses all)")
	flags.IntVar(&f.trials, "trials", 10, "Maximum posterior construction attempts")
	flags.BoolVar(&f.noSkyArea, "noskyarea", false, "Skip credible area computation")
	flags.Int64Var(&f.seed, "seed", 0, "Random seed for subsampling and clustering (0 seeds from the clock)")
	flags.BoolVar(&f.summary, "summary", false, "Print a summary table (default when stdout is a terminal)")
}

// options resolves driver options: config supplies defaults, flags given
// explicitly on the command line win.
func (f *runFlags) options(cmd *cobra.Command, cfg *config.Config) (driver.Options, error) {
	opts := driver.OptionsFromConfig(cfg)
	flags := cmd.Flags()

	if strings.TrimSpace(f.samples) == "" {
		return opts, services.Wrap(services.ErrConfiguration, "cli", "flags", "--samples is required", nil)
	}
	var err error
	if opts.SamplesPath, err = config.ExpandPath(f.samples); err != nil {
		return opts, err
	}
	if opts.OutDir, err = config.ExpandPath(f.outDir); err != nil {
		return opts, err
	}
	if opts.InjectionPath, err = config.ExpandPath(f.inj); err != nil {
		return opts, err
	}
	if opts.LoadPostPath, err = config.ExpandPath(f.loadPost); err != nil {
		return opts, err
	}
	opts.EventNum = f.eventNum
	opts.MaxPts = f.maxPts
	if flags.Changed("trials") {
		opts.Trials = f.trials
	}
	if flags.Changed("noskyarea") {
		opts.NoSkyArea = f.noSkyArea
	}
	if flags.Changed("seed") {
		opts.Seed = f.seed
	}
	return opts, nil
}

func runSkyArea(cmd *cobra.Command, ctx *commandContext, flags *runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	opts, err := flags.options(cmd, cfg)
	if err != nil {
		return err
	}
	logger, err := ctx.logger()
	if err != nil {
		return err
	}

	areaNside, err := healpix.NsideForResolution(1, cfg.Clustering.AreaResolution*math.Pi/180, cfg.Skymap.MaxNside)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "area resolution", "", err)
	}

	rng := driver.NewRand(opts.Seed)
	engine := skypost.NewKDEEngine(skypost.Options{
		MaxClusters:      cfg.Clustering.MaxClusters,
		KMeansIterations: cfg.Clustering.KMeansIterations,
		KMeansRestarts:   cfg.Clustering.KMeansRestarts,
		MinClusterPoints: cfg.Clustering.MinClusterPoints,
		AreaNside:        areaNside,
		Rand:             rng,
		Logger:           logger,
	})

	driverOpts := []driver.Option{driver.WithLogger(logger), driver.WithRand(rng)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("run history unavailable", logging.Path(cfg.History.Path), logging.Error(err))
		} else {
			defer store.Close()
			driverOpts = append(driverOpts, driver.WithRecorder(store))
		}
	}

	d, err := driver.New(opts, engine, driverOpts...)
	if err != nil {
		return err
	}
	result, err := d.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	showSummary := flags.summary
	if !cmd.Flags().Changed("summary") {
		showSummary = isTerminal(out)
	}
	if showSummary {
		fmt.Fprintln(out, renderSummary(result))
	}
	return nil
}
