package spectral

// NoSampleValue is the default Value of a SpectralMean before any sample has
// been taken. A spectrum whose entries all carry this value is the sentinel
// result returned for empty polygons, out-of-range points and polygons that
// enclose no pixel centers.
const NoSampleValue = -999.0

// SpectralMean couples a wavelength with the mean value and standard
// deviation derived for its channel.
type SpectralMean struct {
	// Wavelength is the channel's wavelength in nm.
	Wavelength uint32

	// Value is the mean intensity (counts or reflectance, depending on the
	// cube's processing mode). Defaults to NoSampleValue.
	Value float64

	// Std is the population standard deviation for Value. Defaults to 0;
	// stays 0 for single-point samples, which have no variance.
	Std float64
}

// Spectrum is one SpectralMean per cube channel, index-aligned with the
// cube's channel order.
type Spectrum []SpectralMean

// Sampled reports whether the spectrum holds derived values rather than the
// no-sample sentinel. It inspects the first entry only: every extraction
// either fills all channels or none.
func (s Spectrum) Sampled() bool {
	if len(s) == 0 {
		return false
	}
	return s[0].Value != NoSampleValue || s[0].Wavelength != 0
}

// newSentinel returns the default spectrum for a cube with the given channel
// count: every entry at NoSampleValue with zero Std and wavelength.
func newSentinel(channels int) Spectrum {
	s := make(Spectrum, channels)
	for i := range s {
		s[i].Value = NoSampleValue
	}
	return s
}
