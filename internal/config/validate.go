package config

import (
	"errors"
	"fmt"
	"sort"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRun(); err != nil {
		return err
	}
	if err := c.validateSkymap(); err != nil {
		return err
	}
	if err := c.validateClustering(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRun() error {
	if c.Run.Trials <= 0 {
		return errors.New("run.trials must be positive")
	}
	return nil
}

func (c *Config) validateSkymap() error {
	if c.Skymap.PixelResolutionDeg <= 0 {
		return errors.New("skymap.pixel_resolution_deg must be positive")
	}
	if !isPowerOfTwo(c.Skymap.BaseNside) {
		return fmt.Errorf("skymap.base_nside must be a positive power of two, got %d", c.Skymap.BaseNside)
	}
	if !isPowerOfTwo(c.Skymap.MaxNside) || c.Skymap.MaxNside < c.Skymap.BaseNside {
		return fmt.Errorf("skymap.max_nside must be a power of two no smaller than base_nside, got %d", c.Skymap.MaxNside)
	}
	if c.Skymap.WidthInches <= 0 || c.Skymap.HeightInches <= 0 {
		return errors.New("skymap.width_inches and skymap.height_inches must be positive")
	}
	return nil
}

func (c *Config) validateClustering() error {
	if err := ensurePositiveMap(map[string]int{
		"clustering.max_clusters":       c.Clustering.MaxClusters,
		"clustering.kmeans_iterations":  c.Clustering.KMeansIterations,
		"clustering.kmeans_restarts":    c.Clustering.KMeansRestarts,
		"clustering.min_cluster_points": c.Clustering.MinClusterPoints,
	}); err != nil {
		return err
	}
	if c.Clustering.AreaResolution <= 0 {
		return errors.New("clustering.area_resolution_deg must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func isPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}
