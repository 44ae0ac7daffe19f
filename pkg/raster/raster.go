// Package raster rasterizes polygons into binary inclusion masks over a
// pixel grid. The fill follows the conventional 2D-graphics polygon-fill
// rule: an even-odd scanline pass over pixel centers for the interior, plus
// a Bresenham pass over the boundary so that pixels on polygon edges and
// vertices always count as inside.
package raster

import (
	"image"
	"math"
	"sort"
)

// Inside is the mask value written for pixels covered by the polygon.
const Inside uint8 = 255

// Mask rasterizes the closed polygon described by verts into a w*h mask in
// row-major order. Covered pixels hold Inside, all others 0. Fewer than two
// vertices produce an empty mask. Vertices may lie outside the grid; the
// fill is clipped.
func Mask(verts []image.Point, w, h int) []uint8 {
	mask := make([]uint8, w*h)
	if len(verts) < 2 || w < 1 || h < 1 {
		return mask
	}

	fillSpans(mask, verts, w, h)

	// The scanline pass owns the interior but leaves parts of the boundary
	// uncovered (the half-open vertex rule drops the max-y edge). Drawing
	// the outline keeps every edge pixel inside.
	for i := range verts {
		drawLine(mask, verts[i], verts[(i+1)%len(verts)], w, h)
	}

	return mask
}

// fillSpans marks interior pixels using an even-odd scanline over pixel
// centers. Edges are treated half-open in y so shared vertices are counted
// exactly once.
func fillSpans(mask []uint8, verts []image.Point, w, h int) {
	var xs []float64
	for y := 0; y < h; y++ {
		xs = xs[:0]
		for i := range verts {
			p1 := verts[i]
			p2 := verts[(i+1)%len(verts)]
			if p1.Y == p2.Y {
				continue
			}
			ymin, ymax := p1.Y, p2.Y
			if ymin > ymax {
				ymin, ymax = ymax, ymin
			}
			if y < ymin || y >= ymax {
				continue
			}
			t := float64(y-p1.Y) / float64(p2.Y-p1.Y)
			xs = append(xs, float64(p1.X)+t*float64(p2.X-p1.X))
		}
		sort.Float64s(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			x0 := int(math.Ceil(xs[i]))
			x1 := int(math.Floor(xs[i+1]))
			if x0 < 0 {
				x0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			for x := x0; x <= x1; x++ {
				mask[y*w+x] = Inside
			}
		}
	}
}

// drawLine marks the pixels of the segment p1-p2 using integer Bresenham,
// skipping pixels outside the grid.
func drawLine(mask []uint8, p1, p2 image.Point, w, h int) {
	dx := abs(p2.X - p1.X)
	dy := abs(p2.Y - p1.Y)
	sx := 1
	if p1.X > p2.X {
		sx = -1
	}
	sy := 1
	if p1.Y > p2.Y {
		sy = -1
	}

	x, y := p1.X, p1.Y
	err := dx - dy
	for {
		if x >= 0 && x < w && y >= 0 && y < h {
			mask[y*w+x] = Inside
		}
		if x == p2.X && y == p2.Y {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
