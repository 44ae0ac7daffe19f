// Package cube provides the read-only hyperspectral cube view consumed by the
// spectral and histogram extractors, together with the element type mapper
// that interprets the cube's raw buffer without copying it.
//
// A cube is a 2D spatial grid where every pixel carries a vector of
// per-channel (per-wavelength) intensity values. The buffer is laid out
// row-major with channels interleaved fastest: the element for pixel (x, y),
// channel z sits at index (y*Width+x)*Channels+z.
package cube

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports an unsupported element type description or an
// out-of-range parameter. Test with errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidCube reports a malformed cube view: bad geometry, a missing
// wavelength table, or a buffer inconsistent with the declared dimensions.
// Test with errors.Is.
var ErrInvalidCube = errors.New("invalid cube")

// Cube is a read-only view of an externally owned hyperspectral cube. The
// extractors never mutate it; all derived results are freshly allocated.
type Cube struct {
	// Width and Height are the spatial dimensions in pixels. Both must
	// exceed 1.
	Width  int
	Height int

	// Channels is the number of wavelength bands per pixel.
	Channels int

	// Wavelengths maps channel index to wavelength in nm. Its length must
	// equal Channels.
	Wavelengths []float64

	// Data is the raw element buffer, row-major with channels interleaved
	// fastest, little-endian. Its length must be
	// Width*Height*Channels*Elem.Size() bytes.
	Data []byte

	// Elem describes how Data is to be interpreted. Obtain it from
	// MapElemType.
	Elem ElemType
}

// Validate checks the cube's geometry, wavelength table and buffer size.
// The checks are always enforced, independent of build mode, and a violation
// is reported as a wrapped ErrInvalidCube.
func (c *Cube) Validate() error {
	if c.Width <= 1 || c.Height <= 1 {
		return fmt.Errorf("%w: spatial dimensions %dx%d, both must exceed 1",
			ErrInvalidCube, c.Width, c.Height)
	}
	if c.Channels < 1 || c.Channels > MaxChannels {
		return fmt.Errorf("%w: channel count %d outside [1, %d]",
			ErrInvalidCube, c.Channels, MaxChannels)
	}
	if c.Elem.Channels != c.Channels {
		return fmt.Errorf("%w: element type declares %d channels, cube has %d",
			ErrInvalidCube, c.Elem.Channels, c.Channels)
	}
	if len(c.Wavelengths) != c.Channels {
		return fmt.Errorf("%w: wavelength table has %d entries, want %d",
			ErrInvalidCube, len(c.Wavelengths), c.Channels)
	}
	want := c.Width * c.Height * c.Channels * c.Elem.Size()
	if len(c.Data) != want {
		return fmt.Errorf("%w: buffer is %d bytes, want %d",
			ErrInvalidCube, len(c.Data), want)
	}
	return nil
}

// At decodes the element for pixel (x, y), channel z as a float64. The
// coordinates are not bounds checked beyond the underlying slice access;
// call Validate first.
func (c *Cube) At(x, y, z int) float64 {
	idx := ((y*c.Width+x)*c.Channels + z) * c.Elem.Size()
	return c.Elem.decode(c.Data, idx)
}

// Row decodes all Channels*count elements of the count pixels starting at
// (x, y) into dst, which must have room for count*Channels values. It is the
// bulk access path used by the extractors to scan a cube row by row.
func (c *Cube) Row(x, y, count int, dst []float64) {
	size := c.Elem.Size()
	off := ((y*c.Width + x) * c.Channels) * size
	for i := 0; i < count*c.Channels; i++ {
		dst[i] = c.Elem.decode(c.Data, off)
		off += size
	}
}
