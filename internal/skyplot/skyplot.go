// Package skyplot renders posterior sky maps and cluster assignment plots
// as PDF documents.
package skyplot

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"skyarea/internal/healpix"
)

const (
	defaultColumns = 720
	pdfFormat      = "pdf"
	paletteSize    = 256
)

// Options controls the page size and raster density of a rendered figure.
type Options struct {
	Width   vg.Length
	Height  vg.Length
	Columns int
	Title   string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 5 * vg.Inch
	}
	if o.Columns < 2 {
		o.Columns = defaultColumns
	}
	return o
}

// WriteSkymap renders a RING-ordered HEALPix density map in a Mollweide
// projection with right ascension increasing to the left.
func WriteSkymap(w io.Writer, nside int, density []float64, opts Options) error {
	if len(density) != healpix.Npix(nside) {
		return fmt.Errorf("skymap: %d values for nside %d (want %d)", len(density), nside, healpix.Npix(nside))
	}
	opts = opts.withDefaults()

	grid := newMollweideGrid(nside, density, opts.Columns)
	colors := moreland.SmoothBlueRed()
	colors.SetMin(grid.min)
	colors.SetMax(grid.max)

	heat := plotter.NewHeatMap(grid, colors.Palette(paletteSize))
	heat.Min = grid.min
	heat.Max = grid.max
	heat.NaN = color.Transparent
	heat.Rasterized = true

	p := plot.New()
	p.Title.Text = opts.Title
	p.Add(heat)
	p.HideAxes()
	p.X.Min, p.X.Max = -2*math.Sqrt2, 2*math.Sqrt2
	p.Y.Min, p.Y.Max = -math.Sqrt2, math.Sqrt2

	return writePDF(w, p, opts)
}

// WriteAssignments draws one scatter layer per cluster label with
// right ascension on x and sin(dec) on y.
func WriteAssignments(w io.Writer, ra, sinDec []float64, labels []int, k int, opts Options) error {
	if len(ra) != len(sinDec) || len(ra) != len(labels) {
		return fmt.Errorf("assignments: %d ra, %d sin(dec), %d labels", len(ra), len(sinDec), len(labels))
	}
	opts = opts.withDefaults()

	layers := make([]plotter.XYs, k)
	for i, label := range labels {
		if label < 0 || label >= k {
			return fmt.Errorf("assignments: label %d outside [0, %d)", label, k)
		}
		layers[label] = append(layers[label], plotter.XY{X: ra[i], Y: sinDec[i]})
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "α"
	p.Y.Label.Text = "sin δ"
	for i, xys := range layers {
		if len(xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("assignments: cluster %d: %w", i, err)
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("cluster %d", i), scatter)
	}
	p.Legend.Top = true

	return writePDF(w, p, opts)
}

func writePDF(w io.Writer, p *plot.Plot, opts Options) error {
	writer, err := p.WriterTo(opts.Width, opts.Height, pdfFormat)
	if err != nil {
		return fmt.Errorf("create pdf canvas: %w", err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
