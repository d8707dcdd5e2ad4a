// Package report writes the plain-text result files of a run: the
// credible-area table and the injection p-value.
package report

import (
	"fmt"
	"io"
)

// CredibleLevels are the enclosed-probability levels reported in areas.dat.
var CredibleLevels = []float64{0.5, 0.75, 0.9}

const floatFormat = "%.18e"

// WriteAreas writes one "level area" row per level, in order.
func WriteAreas(w io.Writer, levels, areas []float64) error {
	if len(levels) != len(areas) {
		return fmt.Errorf("write areas: %d levels but %d areas", len(levels), len(areas))
	}
	for i := range levels {
		if _, err := fmt.Fprintf(w, floatFormat+" "+floatFormat+"\n", levels[i], areas[i]); err != nil {
			return fmt.Errorf("write areas: %w", err)
		}
	}
	return nil
}

// WritePValues writes one value per line.
func WritePValues(w io.Writer, values []float64) error {
	for _, v := range values {
		if _, err := fmt.Fprintf(w, floatFormat+"\n", v); err != nil {
			return fmt.Errorf("write p-value: %w", err)
		}
	}
	return nil
}
