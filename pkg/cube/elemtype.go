package cube

import (
	"fmt"
	"math"
)

// ElemKind identifies the numeric category of a cube's raw elements.
type ElemKind int

const (
	// Unsigned covers unsigned integer elements (8 or 16 bit).
	Unsigned ElemKind = iota

	// Signed covers signed integer elements (8, 16 or 32 bit).
	Signed

	// Float covers floating point elements (16, 32 or 64 bit).
	Float
)

// String returns a human readable name for the element kind.
func (k ElemKind) String() string {
	switch k {
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("ElemKind(%d)", int(k))
	}
}

// MaxChannels is the hard ceiling on the per-pixel channel count imposed
// by the multi-channel encoding scheme.
const MaxChannels = 511

// ElemType describes how the raw cube buffer is to be interpreted: the
// numeric category and byte width of a single element, plus the number of
// interleaved channels per pixel. An ElemType is obtained from MapElemType
// and addresses the buffer without any conversion or copying.
type ElemType struct {
	// Kind is the numeric category of each element.
	Kind ElemKind

	// Bytes is the width of a single element in bytes.
	Bytes int

	// Channels is the number of interleaved per-pixel channels.
	Channels int
}

// MapElemType maps a generic numeric element description plus a channel
// count to a multi-channel storage descriptor. It fails with an
// invalid-argument error when the channel count is outside [1, MaxChannels]
// or the byte width is unsupported for the category:
//
//	unsigned: 1 or 2 bytes
//	signed:   1, 2 or 4 bytes
//	float:    2, 4 or 8 bytes
func MapElemType(kind ElemKind, bytes, channels int) (ElemType, error) {
	if channels < 1 || channels > MaxChannels {
		return ElemType{}, fmt.Errorf("%w: channel count %d outside [1, %d]",
			ErrInvalidArgument, channels, MaxChannels)
	}

	switch kind {
	case Unsigned:
		if bytes != 1 && bytes != 2 {
			return ElemType{}, fmt.Errorf("%w: invalid width %d bytes for unsigned integer elements",
				ErrInvalidArgument, bytes)
		}
	case Signed:
		if bytes != 1 && bytes != 2 && bytes != 4 {
			return ElemType{}, fmt.Errorf("%w: invalid width %d bytes for signed integer elements",
				ErrInvalidArgument, bytes)
		}
	case Float:
		if bytes != 2 && bytes != 4 && bytes != 8 {
			return ElemType{}, fmt.Errorf("%w: invalid width %d bytes for floating point elements",
				ErrInvalidArgument, bytes)
		}
	default:
		return ElemType{}, fmt.Errorf("%w: unknown element kind %d", ErrInvalidArgument, int(kind))
	}

	return ElemType{Kind: kind, Bytes: bytes, Channels: channels}, nil
}

// Size returns the width of a single element in bytes.
func (e ElemType) Size() int {
	return e.Bytes
}

// MaxValue returns the largest value representable by the element's numeric
// type. This is the theoretical ceiling used by the histogram extractor when
// it is not asked to detect the true data maximum.
func (e ElemType) MaxValue() float64 {
	switch e.Kind {
	case Unsigned:
		switch e.Bytes {
		case 1:
			return math.MaxUint8
		default:
			return math.MaxUint16
		}
	case Signed:
		switch e.Bytes {
		case 1:
			return math.MaxInt8
		case 2:
			return math.MaxInt16
		default:
			return math.MaxInt32
		}
	default:
		switch e.Bytes {
		case 2:
			// Largest finite IEEE 754 half precision value.
			return 65504
		case 4:
			return math.MaxFloat32
		default:
			return math.MaxFloat64
		}
	}
}

// decode reads the element starting at buf[off] as a float64. The buffer is
// interpreted little-endian; off must be element-aligned and in range.
func (e ElemType) decode(buf []byte, off int) float64 {
	switch e.Kind {
	case Unsigned:
		switch e.Bytes {
		case 1:
			return float64(buf[off])
		default:
			return float64(uint16(buf[off]) | uint16(buf[off+1])<<8)
		}
	case Signed:
		switch e.Bytes {
		case 1:
			return float64(int8(buf[off]))
		case 2:
			return float64(int16(uint16(buf[off]) | uint16(buf[off+1])<<8))
		default:
			return float64(int32(uint32(buf[off]) | uint32(buf[off+1])<<8 |
				uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24))
		}
	default:
		switch e.Bytes {
		case 2:
			return float16ToFloat64(uint16(buf[off]) | uint16(buf[off+1])<<8)
		case 4:
			bits := uint32(buf[off]) | uint32(buf[off+1])<<8 |
				uint32(buf[off+2])<<16 | uint32(buf[off+3])<<24
			return float64(math.Float32frombits(bits))
		default:
			bits := uint64(buf[off]) | uint64(buf[off+1])<<8 |
				uint64(buf[off+2])<<16 | uint64(buf[off+3])<<24 |
				uint64(buf[off+4])<<32 | uint64(buf[off+5])<<40 |
				uint64(buf[off+6])<<48 | uint64(buf[off+7])<<56
			return math.Float64frombits(bits)
		}
	}
}

// float16ToFloat64 converts an IEEE 754 half precision bit pattern to float64.
// There is no half precision type in the standard library, so the expansion
// of sign, exponent and mantissa is done by hand.
func float16ToFloat64(bits uint16) float64 {
	sign := float64(1)
	if bits&0x8000 != 0 {
		sign = -1
	}
	exp := int((bits >> 10) & 0x1f)
	frac := float64(bits & 0x3ff)

	switch exp {
	case 0:
		// Subnormal: no implicit leading bit, exponent is fixed at -14.
		return sign * frac / 1024 * math.Exp2(-14)
	case 0x1f:
		if frac != 0 {
			return math.NaN()
		}
		return sign * math.Inf(1)
	default:
		return sign * (1 + frac/1024) * math.Exp2(float64(exp-15))
	}
}
