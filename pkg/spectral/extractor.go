// Package spectral extracts per-wavelength mean/standard-deviation summaries
// from a region of interest of a hyperspectral cube. The region is either a
// single point or a polygon in normalized image coordinates; the result is
// one SpectralMean per cube channel.
//
// Degenerate regions (an empty polygon, a point outside the unit square, a
// polygon enclosing no pixel centers) yield the distinguishable no-sample
// sentinel spectrum rather than an error; malformed cubes are rejected with
// an explicit error before any work is done.
package spectral

import (
	"image"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"hyperspec/pkg/cube"
	"hyperspec/pkg/raster"
)

// maskThreshold is the majority cutoff above which a mask pixel counts as
// inside the polygon. Kept below raster.Inside so anti-aliased mask sources
// are tolerated as well.
const maskThreshold = 128

// Extractor computes spectra from cube regions. The zero value extracts
// serially; use NewExtractor to spread polygon accumulation over multiple
// workers.
type Extractor struct {
	workers int
}

// NewExtractor creates a spectrum extractor using up to workers goroutines
// for polygon accumulation. Values below 1 select runtime.NumCPU().
func NewExtractor(workers int) *Extractor {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Extractor{workers: workers}
}

// ExtractSpectrum computes a spectrum for the polygon on a default serial
// extractor. See Extractor.Extract.
func ExtractSpectrum(c *cube.Cube, poly Polygon) (Spectrum, error) {
	var e Extractor
	return e.Extract(c, poly)
}

// Extract computes the per-channel mean and standard deviation of the cube
// values covered by poly.
//
// Three cases by polygon length:
//
//   - 0 points: the sentinel spectrum, nil error.
//   - 1 point: the raw per-channel reading of the nearest pixel, Std 0. A
//     coordinate outside [0, 1] yields the sentinel spectrum.
//   - 2+ points: vertices are scaled to pixel coordinates, the polygon is
//     rasterized into an inclusion mask, and one pass over the inside pixels
//     accumulates per-channel sum and square sum. A polygon covering no
//     pixel centers yields the sentinel spectrum.
//
// The cube is validated first; a malformed cube is reported as an error
// wrapping cube.ErrInvalidCube.
func (e *Extractor) Extract(c *cube.Cube, poly Polygon) (Spectrum, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	res := newSentinel(c.Channels)

	switch {
	case len(poly) == 0:
		return res, nil
	case len(poly) == 1:
		return e.extractPoint(c, poly[0], res)
	default:
		return e.extractPolygon(c, poly, res)
	}
}

// extractPoint samples the single pixel nearest to the normalized point.
// No averaging takes place, so Std keeps its zero default.
func (e *Extractor) extractPoint(c *cube.Cube, p Point, res Spectrum) (Spectrum, error) {
	if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
		// Outside the cube's extent. Nothing to sample; the sentinel
		// result stays distinguishable from any real reading.
		return res, nil
	}

	px := int(math.Round(p.X * float64(c.Width-1)))
	py := int(math.Round(p.Y * float64(c.Height-1)))

	for z := 0; z < c.Channels; z++ {
		res[z] = SpectralMean{
			Wavelength: uint32(c.Wavelengths[z]),
			Value:      c.At(px, py, z),
		}
	}
	return res, nil
}

// extractPolygon rasterizes the polygon and reduces the covered pixels to a
// per-channel mean and population standard deviation in a single pass.
func (e *Extractor) extractPolygon(c *cube.Cube, poly Polygon, res Spectrum) (Spectrum, error) {
	verts := make([]image.Point, len(poly))
	for i, p := range poly {
		verts[i] = image.Point{
			X: int(math.Round(p.X * float64(c.Width-1))),
			Y: int(math.Round(p.Y * float64(c.Height-1))),
		}
	}
	mask := raster.Mask(verts, c.Width, c.Height)

	n, sum, sqSum := e.accumulate(c, mask)
	if n == 0 {
		// Degenerate polygon enclosing no pixel centers. Same contract as
		// the empty polygon: a sentinel result, not an error.
		return res, nil
	}

	for z := 0; z < c.Channels; z++ {
		mean := sum[z] / float64(n)

		// Single-pass variance via the second binomial identity:
		// sum(x - m)^2 = sum(x^2) - 2*m*sum(x) + n*m^2. Cancellation can
		// push the radicand a hair below zero; clamp before the root.
		radicand := (sqSum[z]-2*sum[z]*mean)/float64(n) + mean*mean
		if radicand < 0 {
			radicand = 0
		}

		res[z] = SpectralMean{
			Wavelength: uint32(c.Wavelengths[z]),
			Value:      mean,
			Std:        math.Sqrt(radicand),
		}
	}
	return res, nil
}

// accumulate sums value and value^2 per channel over all mask-covered pixels
// and counts them. With more than one worker the rows are split into fixed
// contiguous bands whose partial sums are merged in band order, keeping the
// result deterministic for a given worker count.
func (e *Extractor) accumulate(c *cube.Cube, mask []uint8) (n uint64, sum, sqSum []float64) {
	workers := e.workers
	if workers < 1 {
		workers = 1
	}
	if workers > c.Height {
		workers = c.Height
	}
	if workers == 1 {
		return accumulateRows(c, mask, 0, c.Height)
	}

	type partial struct {
		n          uint64
		sum, sqSum []float64
	}
	parts := make([]partial, workers)
	rowsPer := (c.Height + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		y0 := w * rowsPer
		y1 := y0 + rowsPer
		if y1 > c.Height {
			y1 = c.Height
		}
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		go func(idx, y0, y1 int) {
			defer wg.Done()
			n, s, sq := accumulateRows(c, mask, y0, y1)
			parts[idx] = partial{n: n, sum: s, sqSum: sq}
		}(w, y0, y1)
	}
	wg.Wait()

	sum = make([]float64, c.Channels)
	sqSum = make([]float64, c.Channels)
	for _, p := range parts {
		if p.sum == nil {
			continue
		}
		n += p.n
		floats.Add(sum, p.sum)
		floats.Add(sqSum, p.sqSum)
	}
	return n, sum, sqSum
}

// accumulateRows reduces the mask-covered pixels of rows [y0, y1).
func accumulateRows(c *cube.Cube, mask []uint8, y0, y1 int) (n uint64, sum, sqSum []float64) {
	sum = make([]float64, c.Channels)
	sqSum = make([]float64, c.Channels)
	row := make([]float64, c.Width*c.Channels)

	for y := y0; y < y1; y++ {
		c.Row(0, y, c.Width, row)
		for x := 0; x < c.Width; x++ {
			if mask[y*c.Width+x] <= maskThreshold {
				continue
			}
			n++
			px := row[x*c.Channels : (x+1)*c.Channels]
			for z, v := range px {
				sum[z] += v
				sqSum[z] += v * v
			}
		}
	}
	return n, sum, sqSum
}
