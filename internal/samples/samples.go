package samples

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"skyarea/internal/services"
)

const (
	ColumnRA  = "ra"
	ColumnDec = "dec"
)

// Point is one posterior draw of sky position, in radians.
type Point struct {
	RA  float64
	Dec float64
}

// Set is an ordered collection of posterior draws.
type Set []Point

// Load reads a sample table from path.
func Load(path string) (Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "samples", "open", path, err)
	}
	defer file.Close()

	set, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Read parses a sample table, keeping the ra and dec columns in row order.
// Blank lines and lines starting with '#' after the header are skipped.
func Read(r io.Reader) (Set, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	var header []string
	for scanner.Scan() {
		lineNo++
		header = strings.Fields(scanner.Text())
		if len(header) > 0 {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "samples", "read header", "", err)
	}
	if len(header) == 0 {
		return nil, services.Wrap(services.ErrParse, "samples", "read header", "file has no header line", nil)
	}

	raIdx, decIdx := -1, -1
	for i, name := range header {
		switch name {
		case ColumnRA:
			if raIdx < 0 {
				raIdx = i
			}
		case ColumnDec:
			if decIdx < 0 {
				decIdx = i
			}
		}
	}
	if raIdx < 0 || decIdx < 0 {
		return nil, services.Wrap(services.ErrParse, "samples", "read header",
			fmt.Sprintf("header %q must name both %q and %q columns", strings.Join(header, " "), ColumnRA, ColumnDec), nil)
	}

	var set Set
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != len(header) {
			return nil, services.Wrap(services.ErrParse, "samples", fmt.Sprintf("line %d", lineNo),
				fmt.Sprintf("expected %d fields, found %d", len(header), len(fields)), nil)
		}
		// Every field is parsed so malformed rows fail even in ignored columns.
		var ra, dec float64
		for i, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, services.Wrap(services.ErrParse, "samples", fmt.Sprintf("line %d", lineNo),
					fmt.Sprintf("column %q", header[i]), err)
			}
			switch i {
			case raIdx:
				ra = value
			case decIdx:
				dec = value
			}
		}
		set = append(set, Point{RA: ra, Dec: dec})
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "samples", "read rows", "", err)
	}
	return set, nil
}

// Subsample returns maxpts points chosen without replacement through a
// uniformly random permutation. When maxpts is non-positive or not smaller
// than the set, the set is returned unchanged.
func Subsample(set Set, maxpts int, rng *rand.Rand) Set {
	if maxpts <= 0 || maxpts >= len(set) {
		return set
	}
	perm := rng.Perm(len(set))
	out := make(Set, maxpts)
	for i := 0; i < maxpts; i++ {
		out[i] = set[perm[i]]
	}
	return out
}

// Validate reports points that cannot be placed on the sky.
func (s Set) Validate() error {
	for i, p := range s {
		if math.IsNaN(p.RA) || math.IsInf(p.RA, 0) || math.IsNaN(p.Dec) || math.IsInf(p.Dec, 0) {
			return services.Wrap(services.ErrValidation, "samples", "validate", fmt.Sprintf("row %d is not finite", i), nil)
		}
		if p.Dec < -math.Pi/2 || p.Dec > math.Pi/2 {
			return services.Wrap(services.ErrValidation, "samples", "validate",
				fmt.Sprintf("row %d declination %g outside [-pi/2, pi/2]", i, p.Dec), nil)
		}
	}
	return nil
}
