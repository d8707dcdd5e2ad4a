package skyplot

import (
	"bytes"
	"math"
	"testing"

	"skyarea/internal/healpix"
)

func TestInverseMollweideCentreAndEdge(t *testing.T) {
	lon, lat, ok := inverseMollweide(0, 0)
	if !ok || lon != 0 || lat != 0 {
		t.Fatalf("centre mapped to (%v, %v, %v)", lon, lat, ok)
	}
	if _, _, ok := inverseMollweide(2*math.Sqrt2, math.Sqrt2); ok {
		t.Fatal("corner of bounding box should fall outside the ellipse")
	}
	lon, _, ok = inverseMollweide(-math.Sqrt2, 0)
	if !ok || math.Abs(lon-math.Pi/2) > 1e-12 {
		t.Fatalf("left half should map to eastern longitudes, got %v", lon)
	}
	_, lat, ok = inverseMollweide(0, math.Sqrt2*0.999999)
	if !ok || lat < 1.5 {
		t.Fatalf("top edge should be near the pole, got %v", lat)
	}
}

func TestMollweideGridUniformMap(t *testing.T) {
	nside := 2
	density := make([]float64, healpix.Npix(nside))
	for i := range density {
		density[i] = 3
	}
	grid := newMollweideGrid(nside, density, 40)
	c, r := grid.Dims()
	if c != 40 || r != 20 {
		t.Fatalf("dims = %d x %d", c, r)
	}
	if grid.min != 3 || grid.max != 4 {
		t.Fatalf("flat map range should be widened, got [%v, %v]", grid.min, grid.max)
	}
	if !math.IsNaN(grid.Z(0, 0)) {
		t.Fatal("corner cell should be NaN")
	}
	if grid.Z(20, 10) != 3 {
		t.Fatalf("centre cell = %v", grid.Z(20, 10))
	}
}

func TestWriteSkymapProducesPDF(t *testing.T) {
	nside := 4
	density := make([]float64, healpix.Npix(nside))
	for i := range density {
		density[i] = float64(i)
	}
	var buf bytes.Buffer
	if err := WriteSkymap(&buf, nside, density, Options{Columns: 64}); err != nil {
		t.Fatalf("WriteSkymap failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:min(8, buf.Len())])
	}
}

func TestWriteSkymapRejectsWrongLength(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSkymap(&buf, 2, make([]float64, 10), Options{}); err == nil {
		t.Fatal("expected error for short density slice")
	}
}

func TestWriteAssignments(t *testing.T) {
	ra := []float64{0.1, 0.2, 3.0, 3.1}
	sinDec := []float64{0.5, 0.6, -0.4, -0.3}
	labels := []int{0, 0, 1, 1}
	var buf bytes.Buffer
	if err := WriteAssignments(&buf, ra, sinDec, labels, 2, Options{}); err != nil {
		t.Fatalf("WriteAssignments failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestWriteAssignmentsRejectsBadLabel(t *testing.T) {
	var buf bytes.Buffer
	err := WriteAssignments(&buf, []float64{0}, []float64{0}, []int{2}, 2, Options{})
	if err == nil {
		t.Fatal("expected error for out-of-range label")
	}
}
