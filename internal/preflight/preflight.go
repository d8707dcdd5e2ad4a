package preflight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Paths lists the files and directories a run touches. Empty entries are
// skipped.
type Paths struct {
	Samples   string
	Injection string
	Posterior string
	OutputDir string
	History   string
}

// RunAll executes all applicable preflight checks for the given paths.
func RunAll(ctx context.Context, paths Paths) []Result {
	var results []Result

	if paths.Samples != "" {
		results = append(results, CheckFileReadable("Samples file", paths.Samples))
	}
	if paths.Posterior != "" {
		results = append(results, CheckFileReadable("Posterior snapshot", paths.Posterior))
	}
	if paths.Injection != "" {
		results = append(results, CheckFileReadable("Injection file", paths.Injection))
	}
	if paths.OutputDir != "" {
		results = append(results, CheckOutputDirectory("Output directory", paths.OutputDir))
	}
	if paths.History != "" {
		results = append(results, CheckOutputDirectory("History directory", filepath.Dir(paths.History)))
	}
	if ctx.Err() != nil {
		results = append(results, Result{Name: "Context", Detail: ctx.Err().Error()})
	}
	return results
}

// Failed joins the details of every failed result into one error, or
// returns nil when all checks passed.
func Failed(results []Result) error {
	var failures []string
	for _, r := range results {
		if !r.Passed {
			failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return errors.New(strings.Join(failures, "; "))
}
