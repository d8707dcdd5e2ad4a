package testsupport

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SampleBlob describes a Gaussian patch of sky positions in radians.
type SampleBlob struct {
	RA, Dec float64
	Sigma   float64
	Count   int
}

// WriteSamples writes a posterior sample table with the given header
// columns. Columns other than ra and dec are filled with the row index.
func WriteSamples(t testing.TB, path string, columns []string, seed int64, blobs ...SampleBlob) {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.WriteString(strings.Join(columns, " "))
	b.WriteByte('\n')
	row := 0
	for _, blob := range blobs {
		for i := 0; i < blob.Count; i++ {
			ra := math.Mod(blob.RA+blob.Sigma*rng.NormFloat64()+2*math.Pi, 2*math.Pi)
			dec := math.Max(-math.Pi/2+1e-6, math.Min(math.Pi/2-1e-6, blob.Dec+blob.Sigma*rng.NormFloat64()))
			fields := make([]string, len(columns))
			for c, name := range columns {
				switch name {
				case "ra":
					fields[c] = fmt.Sprintf("%.17g", ra)
				case "dec":
					fields[c] = fmt.Sprintf("%.17g", dec)
				default:
					fields[c] = fmt.Sprintf("%d", row)
				}
			}
			b.WriteString(strings.Join(fields, " "))
			b.WriteByte('\n')
			row++
		}
	}
	WriteFile(t, path, b.String())
}
