package cube

// ProcessingMode identifies the processing stage a cube's values come from.
// The enumeration belongs to the acquisition layer; the extractors only
// distinguish ModeReflectance, whose values are scaled percentages, from
// every other mode.
type ProcessingMode int

const (
	// ModeRaw holds unprocessed sensor counts.
	ModeRaw ProcessingMode = iota

	// ModeDarkSubtract holds counts with the dark reference subtracted.
	ModeDarkSubtract

	// ModeReflectance holds reflectance values scaled by 100. Histogram
	// bucket labels for reflectance cubes are divided back by 100.
	ModeReflectance

	// ModeSpectralRadiance holds calibrated spectral radiance.
	ModeSpectralRadiance
)

// String returns the YAML/CLI name of the processing mode.
func (m ProcessingMode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeDarkSubtract:
		return "darksubtract"
	case ModeReflectance:
		return "reflectance"
	case ModeSpectralRadiance:
		return "radiance"
	default:
		return "unknown"
	}
}

// ParseProcessingMode maps a mode name back to its ProcessingMode value.
// Unknown names map to ModeRaw.
func ParseProcessingMode(s string) ProcessingMode {
	switch s {
	case "darksubtract":
		return ModeDarkSubtract
	case "reflectance":
		return ModeReflectance
	case "radiance":
		return ModeSpectralRadiance
	default:
		return ModeRaw
	}
}
