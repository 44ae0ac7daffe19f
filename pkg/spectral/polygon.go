package spectral

// Point is a position in normalized image coordinates: (0, 0) is one corner
// of the cube's spatial extent and (1, 1) the opposite corner.
type Point struct {
	X float64
	Y float64
}

// Polygon is an ordered sequence of normalized points describing a region of
// interest. Its length selects the sampling mode: empty is a no-op, a single
// point samples one pixel, two or more points describe a fill area whose
// boundary follows the insertion order.
type Polygon []Point

// UnitSquare is the polygon covering the cube's entire spatial extent.
var UnitSquare = Polygon{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
