// Package synthetic builds small deterministic hyperspectral cubes in
// memory. The demo command and the package tests share these generators so
// neither needs acquisition hardware or cube files.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"

	"hyperspec/pkg/cube"
)

// New assembles a cube of the given geometry whose values come from the
// pattern function, evaluated per (x, y, z). The pattern values are encoded
// into the raw buffer with the requested element type, so they must be
// representable in it.
func New(w, h int, wavelengths []float64, kind cube.ElemKind, bytes int, pattern func(x, y, z int) float64) (*cube.Cube, error) {
	channels := len(wavelengths)
	elem, err := cube.MapElemType(kind, bytes, channels)
	if err != nil {
		return nil, err
	}

	vals := make([]float64, w*h*channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for z := 0; z < channels; z++ {
				vals[(y*w+x)*channels+z] = pattern(x, y, z)
			}
		}
	}

	data, err := Encode(elem, vals)
	if err != nil {
		return nil, err
	}
	return &cube.Cube{
		Width:       w,
		Height:      h,
		Channels:    channels,
		Wavelengths: wavelengths,
		Data:        data,
		Elem:        elem,
	}, nil
}

// Constant builds a cube where every pixel of channel z holds chanValues[z].
func Constant(w, h int, wavelengths, chanValues []float64, kind cube.ElemKind, bytes int) (*cube.Cube, error) {
	if len(chanValues) != len(wavelengths) {
		return nil, fmt.Errorf("channel values and wavelengths differ in length: %d vs %d",
			len(chanValues), len(wavelengths))
	}
	return New(w, h, wavelengths, kind, bytes, func(x, y, z int) float64 {
		return chanValues[z]
	})
}

// GradientX builds a cube whose values grow along the x axis, offset per
// channel: value(x, y, z) = x + z.
func GradientX(w, h int, wavelengths []float64, kind cube.ElemKind, bytes int) (*cube.Cube, error) {
	return New(w, h, wavelengths, kind, bytes, func(x, y, z int) float64 {
		return float64(x + z)
	})
}

// Random builds a cube filled with seeded pseudo-random integer values in
// [0, max]. The same seed always yields the same cube.
func Random(w, h int, wavelengths []float64, kind cube.ElemKind, bytes int, seed int64, max int) (*cube.Cube, error) {
	rng := rand.New(rand.NewSource(seed))
	return New(w, h, wavelengths, kind, bytes, func(x, y, z int) float64 {
		return float64(rng.Intn(max + 1))
	})
}

// Encode packs the values into a raw little-endian buffer of the element
// type, the inverse of the cube's element decoding.
func Encode(e cube.ElemType, vals []float64) ([]byte, error) {
	buf := make([]byte, len(vals)*e.Size())
	for i, v := range vals {
		off := i * e.Size()
		switch e.Kind {
		case cube.Unsigned:
			switch e.Bytes {
			case 1:
				buf[off] = byte(v)
			default:
				u := uint16(v)
				buf[off] = byte(u)
				buf[off+1] = byte(u >> 8)
			}
		case cube.Signed:
			switch e.Bytes {
			case 1:
				buf[off] = byte(int8(v))
			case 2:
				u := uint16(int16(v))
				buf[off] = byte(u)
				buf[off+1] = byte(u >> 8)
			default:
				u := uint32(int32(v))
				buf[off] = byte(u)
				buf[off+1] = byte(u >> 8)
				buf[off+2] = byte(u >> 16)
				buf[off+3] = byte(u >> 24)
			}
		case cube.Float:
			switch e.Bytes {
			case 2:
				u := float16Bits(v)
				buf[off] = byte(u)
				buf[off+1] = byte(u >> 8)
			case 4:
				u := math.Float32bits(float32(v))
				buf[off] = byte(u)
				buf[off+1] = byte(u >> 8)
				buf[off+2] = byte(u >> 16)
				buf[off+3] = byte(u >> 24)
			default:
				u := math.Float64bits(v)
				for b := 0; b < 8; b++ {
					buf[off+b] = byte(u >> (8 * b))
				}
			}
		default:
			return nil, fmt.Errorf("cannot encode element kind %v", e.Kind)
		}
	}
	return buf, nil
}

// float16Bits converts v to an IEEE 754 half precision bit pattern with
// round-to-nearest-even, saturating to infinity beyond the half range.
func float16Bits(v float64) uint16 {
	bits := math.Float64bits(v)
	sign := uint16(bits >> 48 & 0x8000)
	exp := int(bits>>52&0x7ff) - 1023
	frac := bits & 0xfffffffffffff

	switch {
	case math.IsNaN(v):
		return sign | 0x7e01
	case math.IsInf(v, 0) || exp > 15:
		return sign | 0x7c00
	case exp < -24:
		return sign
	case exp < -14:
		// Subnormal half: shift the implicit leading bit into the mantissa.
		shift := uint(-exp - 14 + 42)
		return sign | uint16((frac|1<<52)>>shift)
	default:
		mant := uint16(frac >> 42)
		// Round to nearest, ties to even.
		if frac&(1<<41) != 0 && (frac&((1<<41)-1) != 0 || mant&1 != 0) {
			mant++
			if mant == 1<<10 {
				mant = 0
				exp++
				if exp > 15 {
					return sign | 0x7c00
				}
			}
		}
		return sign | uint16(exp+15)<<10 | mant
	}
}
