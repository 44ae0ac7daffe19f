// Package histogram computes grouped per-wavelength-band intensity
// histograms over a whole hyperspectral cube. Channels are partitioned into
// contiguous wavelength groups, and each group pools the raw values of all
// its channels into one fixed set of uniform value buckets spanning
// [0, maxVal].
//
// The value ceiling is either the type's nominal maximum or, on request, the
// true data maximum found by a full scan. Values outside [0, maxVal] are
// excluded from all buckets, never clamped into the edge buckets, so the sum
// of occurrences can fall short of the sample count when real data exceeds
// the nominal range.
package histogram

import (
	"fmt"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"hyperspec/pkg/cube"
)

// Histogram is the pooled intensity histogram of one wavelength group.
type Histogram struct {
	// Wavelength is the wavelength in nm of the group's middle channel.
	Wavelength uint32

	// Count holds the bucket labels: the lower value bound of each bucket,
	// divided by 100 for reflectance cubes.
	Count []float32

	// Occurrence holds the number of samples per bucket, index-aligned
	// with Count.
	Occurrence []uint64
}

// Vector is one Histogram per wavelength group, ordered by increasing
// channel index.
type Vector []Histogram

// Params configures a histogram extraction.
type Params struct {
	// MinElements is the statistical floor: the cube must hold strictly
	// more than MinElements raw values.
	MinElements int

	// CountBins is the number of uniform value buckets per group.
	CountBins int

	// WavelengthBins is the requested number of wavelength groups. The
	// group size is Channels/WavelengthBins truncated, and the group count
	// is Channels divided by that size, truncated again; trailing channels
	// that do not fill a group are dropped.
	WavelengthBins int

	// DetectMax scans the cube for its true maximum value instead of using
	// the element type's nominal maximum as the bucket range ceiling.
	DetectMax bool

	// Mode is the cube's processing mode. ModeReflectance divides the
	// bucket labels by 100; every other mode leaves them as raw values.
	Mode cube.ProcessingMode

	// Workers caps the number of goroutines used for accumulation. Values
	// below 1 select runtime.NumCPU().
	Workers int
}

// Extract computes one pooled histogram per wavelength group of the cube.
// The cube is validated first; a cube with no more than MinElements values,
// a bucket count below 1 or a group count outside [1, Channels] is rejected
// with an error wrapping cube.ErrInvalidArgument.
func Extract(c *cube.Cube, p Params) (Vector, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if total := c.Width * c.Height * c.Channels; total <= p.MinElements {
		return nil, fmt.Errorf("%w: cube holds %d elements, need more than %d",
			cube.ErrInvalidArgument, total, p.MinElements)
	}
	if p.CountBins < 1 {
		return nil, fmt.Errorf("%w: count bins %d, need at least 1",
			cube.ErrInvalidArgument, p.CountBins)
	}
	if p.WavelengthBins < 1 || p.WavelengthBins > c.Channels {
		return nil, fmt.Errorf("%w: wavelength bins %d outside [1, %d]",
			cube.ErrInvalidArgument, p.WavelengthBins, c.Channels)
	}

	maxVal := c.Elem.MaxValue()
	if p.DetectMax {
		maxVal = detectMax(c)
	}
	binSize := maxVal / float64(p.CountBins)

	// Both divisions truncate. A channel count that does not divide evenly
	// leaves the trailing channels out of every group.
	channelsPerGroup := c.Channels / p.WavelengthBins
	groupCount := c.Channels / channelsPerGroup

	occ := accumulate(c, p, maxVal, binSize, channelsPerGroup, groupCount)

	out := make(Vector, 0, groupCount)
	for g := 0; g < groupCount; g++ {
		h := Histogram{
			Wavelength: uint32(c.Wavelengths[g*channelsPerGroup+channelsPerGroup/2]),
			Count:      make([]float32, p.CountBins),
			Occurrence: occ[g],
		}
		for i := range h.Count {
			label := float64(i) * binSize
			if p.Mode == cube.ModeReflectance {
				label /= 100.0
			}
			h.Count[i] = float32(label)
		}
		out = append(out, h)
	}
	return out, nil
}

// detectMax scans the entire cube once and returns its largest value.
func detectMax(c *cube.Cube) float64 {
	row := make([]float64, c.Width*c.Channels)
	c.Row(0, 0, c.Width, row)
	max := floats.Max(row)
	for y := 1; y < c.Height; y++ {
		c.Row(0, y, c.Width, row)
		if m := floats.Max(row); m > max {
			max = m
		}
	}
	return max
}

// accumulate builds the per-group bucket counts. Rows are split into fixed
// contiguous bands, one partial count table per band, merged by addition;
// counts are integers, so the merge order cannot affect the result.
func accumulate(c *cube.Cube, p Params, maxVal, binSize float64, channelsPerGroup, groupCount int) [][]uint64 {
	workers := p.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > c.Height {
		workers = c.Height
	}
	if workers == 1 {
		return accumulateRows(c, p.CountBins, maxVal, binSize, channelsPerGroup, groupCount, 0, c.Height)
	}

	parts := make([][][]uint64, workers)
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
			parts[idx] = accumulateRows(c, p.CountBins, maxVal, binSize, channelsPerGroup, groupCount, y0, y1)
		}(w, y0, y1)
	}
	wg.Wait()

	occ := newCounts(groupCount, p.CountBins)
	for _, part := range parts {
		if part == nil {
			continue
		}
		for g := range part {
			for i, v := range part[g] {
				occ[g][i] += v
			}
		}
	}
	return occ
}

// accumulateRows pools the samples of rows [y0, y1) into per-group buckets.
// Values below 0 or above maxVal are dropped; a value exactly at maxVal
// lands in the last bucket so that a detected maximum bounds all samples.
func accumulateRows(c *cube.Cube, countBins int, maxVal, binSize float64, channelsPerGroup, groupCount, y0, y1 int) [][]uint64 {
	occ := newCounts(groupCount, countBins)
	grouped := groupCount * channelsPerGroup
	row := make([]float64, c.Width*c.Channels)

	for y := y0; y < y1; y++ {
		c.Row(0, y, c.Width, row)
		for x := 0; x < c.Width; x++ {
			px := row[x*c.Channels:]
			for z := 0; z < grouped; z++ {
				v := px[z]
				if v < 0 || v > maxVal {
					continue
				}
				idx := countBins - 1
				if v < maxVal {
					// Rounding in the division can land exactly on the
					// bucket count for values right at the ceiling.
					if idx = int(v / binSize); idx >= countBins {
						idx = countBins - 1
					}
				}
				occ[z/channelsPerGroup][idx]++
			}
		}
	}
	return occ
}

func newCounts(groups, bins int) [][]uint64 {
	occ := make([][]uint64, groups)
	for g := range occ {
		occ[g] = make([]uint64, bins)
	}
	return occ
}
