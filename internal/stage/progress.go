package stage

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Timing records how one stage ended.
type Timing struct {
	Name     string
	Label    string
	Duration time.Duration
	Err      error
}

// Progress accumulates stage timings for a single run.
type Progress struct {
	timings []Timing
}

// End records the outcome of a finished stage.
func (p *Progress) End(name string, elapsed time.Duration, err error) {
	p.timings = append(p.timings, Timing{Name: name, Label: Label(name), Duration: elapsed, Err: err})
}

// Timings returns a copy of the recorded stage outcomes in completion order.
func (p *Progress) Timings() []Timing {
	out := make([]Timing, len(p.timings))
	copy(out, p.timings)
	return out
}

// Label converts a snake_case stage name into a title-cased display label.
func Label(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(name)
}
