package config

const (
	defaultTrials             = 10
	defaultPixelResolutionDeg = 1.0
	defaultBaseNside          = 1
	defaultMaxNside           = 1024
	defaultPlotWidthInches    = 8
	defaultPlotHeightInches   = 5
	defaultMaxClusters        = 20
	defaultKMeansIterations   = 100
	defaultKMeansRestarts     = 5
	defaultMinClusterPoints   = 3
	defaultAreaResolutionDeg  = 0.5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultHistoryPath        = "~/.local/share/skyarea/history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Run: Run{
			Trials: defaultTrials,
		},
		Skymap: Skymap{
			PixelResolutionDeg: defaultPixelResolutionDeg,
			BaseNside:          defaultBaseNside,
			MaxNside:           defaultMaxNside,
			WidthInches:        defaultPlotWidthInches,
			HeightInches:       defaultPlotHeightInches,
		},
		Clustering: Clustering{
			MaxClusters:      defaultMaxClusters,
			KMeansIterations: defaultKMeansIterations,
			KMeansRestarts:   defaultKMeansRestarts,
			MinClusterPoints: defaultMinClusterPoints,
			AreaResolution:   defaultAreaResolutionDeg,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
