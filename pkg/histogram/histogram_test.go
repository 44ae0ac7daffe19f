package histogram

import (
	"errors"
	"reflect"
	"testing"

	"hyperspec/internal/synthetic"
	"hyperspec/pkg/cube"
)

func testWavelengths(channels int) []float64 {
	w := make([]float64, channels)
	for i := range w {
		w[i] = 500 + 10*float64(i)
	}
	return w
}

func sumOcc(h Histogram) uint64 {
	var total uint64
	for _, occ := range h.Occurrence {
		total += occ
	}
	return total
}

// TestHistogramConstantCube verifies the 4x4x2 reference scenario: with the
// nominal uint8 ceiling 255 and two buckets of width 127.5, channel 0 values
// of 100 land in bucket 0 and channel 1 values of 200 in bucket 1
func TestHistogramConstantCube(t *testing.T) {
	c, err := synthetic.Constant(4, 4, []float64{500, 510}, []float64{100, 200}, cube.Unsigned, 1)
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}

	out, err := Extract(c, Params{CountBins: 2, WavelengthBins: 2, Workers: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 wavelength groups, got %d", len(out))
	}

	if !reflect.DeepEqual(out[0].Occurrence, []uint64{16, 0}) {
		t.Errorf("Group 0 occurrence: expected [16 0], got %v", out[0].Occurrence)
	}
	if !reflect.DeepEqual(out[1].Occurrence, []uint64{0, 16}) {
		t.Errorf("Group 1 occurrence: expected [0 16], got %v", out[1].Occurrence)
	}
	if out[0].Wavelength != 500 || out[1].Wavelength != 510 {
		t.Errorf("Group wavelengths: expected 500/510, got %d/%d", out[0].Wavelength, out[1].Wavelength)
	}

	// Bucket labels are the lower bounds i*binSize with binSize 127.5
	wantLabels := []float32{0, 127.5}
	for g, h := range out {
		if !reflect.DeepEqual(h.Count, wantLabels) {
			t.Errorf("Group %d labels: expected %v, got %v", g, wantLabels, h.Count)
		}
	}
}

// TestHistogramDetectMax verifies that a detected maximum bounds all samples,
// including the maximum itself in the last bucket
func TestHistogramDetectMax(t *testing.T) {
	c, err := synthetic.Random(8, 8, testWavelengths(4), cube.Unsigned, 1, 5, 200)
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}

	out, err := Extract(c, Params{CountBins: 16, WavelengthBins: 2, DetectMax: true, Workers: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	channelsPerGroup := c.Channels / 2
	wantSamples := uint64(channelsPerGroup * c.Width * c.Height)
	for g, h := range out {
		if got := sumOcc(h); got != wantSamples {
			t.Errorf("Group %d: detect-max must count all %d samples, got %d", g, wantSamples, got)
		}
	}
}

// TestHistogramBoundInvariant verifies sum(occurrence) never exceeds the
// pooled sample count
func TestHistogramBoundInvariant(t *testing.T) {
	c, err := synthetic.Random(8, 8, testWavelengths(5), cube.Unsigned, 1, 9, 255)
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}

	out, err := Extract(c, Params{CountBins: 8, WavelengthBins: 2, Workers: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	channelsPerGroup := c.Channels / 2
	limit := uint64(channelsPerGroup * c.Width * c.Height)
	for g, h := range out {
		if got := sumOcc(h); got > limit {
			t.Errorf("Group %d: %d samples exceed the pool size %d", g, got, limit)
		}
	}
}

// TestHistogramNegativeExcluded verifies that out-of-range values are
// dropped entirely rather than clamped into the edge buckets
func TestHistogramNegativeExcluded(t *testing.T) {
	// Signed cube where channel 0 is entirely negative
	c, err := synthetic.New(4, 4, testWavelengths(2), cube.Signed, 1, func(x, y, z int) float64 {
		if z == 0 {
			return -5
		}
		return 50
	})
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}

	out, err := Extract(c, Params{CountBins: 4, WavelengthBins: 2, Workers: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if got := sumOcc(out[0]); got != 0 {
		t.Errorf("Negative-only group must count nothing, got %d", got)
	}
	if got := sumOcc(out[1]); got != 16 {
		t.Errorf("In-range group must count all 16 samples, got %d", got)
	}
}

// TestHistogramGroupTruncation verifies the integer-truncating group sizing:
// trailing channels that do not fill a group are dropped
func TestHistogramGroupTruncation(t *testing.T) {
	cases := []struct {
		channels, wavelengthBins int
		wantGroups               int
		wantMiddle               []int // channel index providing each group's wavelength
	}{
		// 10/4 -> 2 channels per group, 10/2 -> 5 groups
		{10, 4, 5, []int{1, 3, 5, 7, 9}},
		// 7/3 -> 2 channels per group, 7/2 -> 3 groups, channel 6 dropped
		{7, 3, 3, []int{1, 3, 5}},
		// Even split
		{8, 2, 2, []int{2, 6}},
	}

	for _, tc := range cases {
		c, err := synthetic.Constant(4, 4, testWavelengths(tc.channels),
			make([]float64, tc.channels), cube.Unsigned, 1)
		if err != nil {
			t.Fatalf("Failed to build cube: %v", err)
		}

		out, err := Extract(c, Params{CountBins: 4, WavelengthBins: tc.wavelengthBins, Workers: 1})
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if len(out) != tc.wantGroups {
			t.Errorf("C=%d bins=%d: expected %d groups, got %d",
				tc.channels, tc.wavelengthBins, tc.wantGroups, len(out))
			continue
		}
		for g, h := range out {
			want := uint32(c.Wavelengths[tc.wantMiddle[g]])
			if h.Wavelength != want {
				t.Errorf("C=%d bins=%d group %d: expected wavelength %d, got %d",
					tc.channels, tc.wavelengthBins, g, want, h.Wavelength)
			}
		}
	}
}

// TestHistogramReflectanceLabels verifies the /100 label scaling for
// reflectance cubes
func TestHistogramReflectanceLabels(t *testing.T) {
	c, err := synthetic.Constant(4, 4, []float64{500, 510}, []float64{10, 20}, cube.Unsigned, 1)
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}

	raw, err := Extract(c, Params{CountBins: 4, WavelengthBins: 1, Mode: cube.ModeRaw, Workers: 1})
	if err != nil {
		t.Fatalf("Extract (raw) failed: %v", err)
	}
	refl, err := Extract(c, Params{CountBins: 4, WavelengthBins: 1, Mode: cube.ModeReflectance, Workers: 1})
	if err != nil {
		t.Fatalf("Extract (reflectance) failed: %v", err)
	}

	for i := range raw[0].Count {
		if refl[0].Count[i] != raw[0].Count[i]/100 {
			t.Errorf("Label %d: expected %g, got %g", i, raw[0].Count[i]/100, refl[0].Count[i])
		}
	}
	// Occurrences are unaffected by the mode
	if !reflect.DeepEqual(raw[0].Occurrence, refl[0].Occurrence) {
		t.Error("Mode must only affect labels, not occurrences")
	}
}

// TestHistogramErrors verifies the invalid-argument rejections
func TestHistogramErrors(t *testing.T) {
	c, err := synthetic.Constant(4, 4, []float64{500, 510}, []float64{1, 2}, cube.Unsigned, 1)
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}

	cases := []struct {
		name   string
		params Params
	}{
		{"cube too small", Params{MinElements: 32, CountBins: 4, WavelengthBins: 1}},
		{"zero count bins", Params{CountBins: 0, WavelengthBins: 1}},
		{"zero wavelength bins", Params{CountBins: 4, WavelengthBins: 0}},
		{"wavelength bins exceed channels", Params{CountBins: 4, WavelengthBins: 3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Extract(c, tc.params); !errors.Is(err, cube.ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	bad := *c
	bad.Wavelengths = nil
	if _, err := Extract(&bad, Params{CountBins: 4, WavelengthBins: 1}); !errors.Is(err, cube.ErrInvalidCube) {
		t.Errorf("Expected ErrInvalidCube, got %v", err)
	}
}

// TestHistogramParallelMatchesSerial verifies the banded parallel counting
func TestHistogramParallelMatchesSerial(t *testing.T) {
	c, err := synthetic.Random(24, 20, testWavelengths(6), cube.Unsigned, 1, 13, 255)
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}

	serial, err := Extract(c, Params{CountBins: 16, WavelengthBins: 3, Workers: 1})
	if err != nil {
		t.Fatalf("Serial extraction failed: %v", err)
	}
	parallel, err := Extract(c, Params{CountBins: 16, WavelengthBins: 3, Workers: 4})
	if err != nil {
		t.Fatalf("Parallel extraction failed: %v", err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Error("Integer bucket counts must be identical across worker counts")
	}
}

// TestHistogramIdempotent verifies bit-identical repeated extraction
func TestHistogramIdempotent(t *testing.T) {
	c, err := synthetic.Random(16, 16, testWavelengths(4), cube.Unsigned, 1, 17, 255)
	if err != nil {
		t.Fatalf("Failed to build cube: %v", err)
	}
	p := Params{CountBins: 8, WavelengthBins: 2, DetectMax: true, Workers: 2}

	first, err := Extract(c, p)
	if err != nil {
		t.Fatalf("First extraction failed: %v", err)
	}
	second, err := Extract(c, p)
	if err != nil {
		t.Fatalf("Second extraction failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Repeated extraction with identical inputs must be bit-identical")
	}
}

// BenchmarkExtract benchmarks grouped histogram accumulation
func BenchmarkExtract(b *testing.B) {
	c, err := synthetic.Random(128, 128, testWavelengths(32), cube.Unsigned, 1, 1, 255)
	if err != nil {
		b.Fatalf("Failed to build cube: %v", err)
	}
	p := Params{CountBins: 64, WavelengthBins: 8, Workers: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Extract(c, p); err != nil {
			b.Fatalf("Extraction failed: %v", err)
		}
	}
}
