package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"hyperspec/internal/synthetic"
	"hyperspec/pkg/config"
	"hyperspec/pkg/cube"
	"hyperspec/pkg/histogram"
	"hyperspec/pkg/spectral"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "hyperspec.yaml", "Path to YAML configuration file")
	width := flag.Int("width", 64, "Synthetic cube width in pixels")
	height := flag.Int("height", 64, "Synthetic cube height in pixels")
	channels := flag.Int("channels", 16, "Synthetic cube channel count")
	pattern := flag.String("pattern", "gradient", "Synthetic fill pattern: gradient, random")
	seed := flag.Int64("seed", 1, "Seed for the random pattern")
	polygonSpec := flag.String("polygon", "0,0;1,0;1,1;0,1", "Region of interest as x,y;x,y;... in normalized coordinates")
	maxChannelsShown := flag.Int("show", 8, "Maximum number of spectrum channels to print")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write default config: %v", err)
		}
		fmt.Printf("Wrote default configuration to %s\n", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	poly, err := parsePolygon(*polygonSpec)
	if err != nil {
		log.Fatalf("Failed to parse polygon: %v", err)
	}

	// Build a synthetic cube: wavelengths spaced 10 nm apart starting at
	// 450 nm, 8-bit unsigned elements.
	wavelengths := make([]float64, *channels)
	for i := range wavelengths {
		wavelengths[i] = 450 + 10*float64(i)
	}

	var c *cube.Cube
	switch *pattern {
	case "gradient":
		c, err = synthetic.GradientX(*width, *height, wavelengths, cube.Unsigned, 1)
	case "random":
		c, err = synthetic.Random(*width, *height, wavelengths, cube.Unsigned, 1, *seed, 255)
	default:
		log.Fatalf("Unknown pattern %q", *pattern)
	}
	if err != nil {
		log.Fatalf("Failed to build synthetic cube: %v", err)
	}

	if cfg.Output.Verbose {
		fmt.Println("================================")
		fmt.Println("HYPERSPEC SPECTRAL STATISTICS DEMO")
		fmt.Println("================================")
		fmt.Printf("Cube: %dx%d pixels, %d channels, %s elements (%d bytes)\n",
			c.Width, c.Height, c.Channels, c.Elem.Kind, c.Elem.Bytes)
		fmt.Printf("Polygon: %d vertices\n", len(poly))
	}

	// Spectrum extraction over the region of interest
	extractor := spectral.NewExtractor(cfg.Extraction.Workers)
	start := time.Now()
	spectrum, err := extractor.Extract(c, poly)
	if err != nil {
		log.Fatalf("Spectrum extraction failed: %v", err)
	}
	spectrumTime := time.Since(start)

	fmt.Printf("\nSpectrum (%d channels, %.2f ms):\n", len(spectrum), spectrumTime.Seconds()*1000)
	fmt.Println("wavelength      mean       std")
	fmt.Println("------------------------------")
	if !spectrum.Sampled() {
		fmt.Println("no sample available for this region")
	} else {
		for i, sm := range spectrum {
			if i >= *maxChannelsShown {
				fmt.Printf("... %d more channels\n", len(spectrum)-i)
				break
			}
			fmt.Printf("%7d nm %9.3f %9.3f\n", sm.Wavelength, sm.Value, sm.Std)
		}
	}

	// Histogram extraction over the whole cube
	params := histogram.Params{
		MinElements:    cfg.Histogram.MinElements,
		CountBins:      cfg.Histogram.CountBins,
		WavelengthBins: cfg.Histogram.WavelengthBins,
		DetectMax:      cfg.Histogram.DetectMax,
		Mode:           cube.ParseProcessingMode(cfg.Histogram.Mode),
		Workers:        cfg.Extraction.Workers,
	}
	start = time.Now()
	histograms, err := histogram.Extract(c, params)
	if err != nil {
		log.Fatalf("Histogram extraction failed: %v", err)
	}
	histogramTime := time.Since(start)

	fmt.Printf("\nHistograms (%d wavelength groups, %d buckets each, %.2f ms):\n",
		len(histograms), params.CountBins, histogramTime.Seconds()*1000)
	for _, h := range histograms {
		var total uint64
		peak := 0
		for i, occ := range h.Occurrence {
			total += occ
			if occ > h.Occurrence[peak] {
				peak = i
			}
		}
		fmt.Printf("  %d nm: %d samples, peak bucket %d (label %.2f, %d hits)\n",
			h.Wavelength, total, peak, h.Count[peak], h.Occurrence[peak])
	}

	if cfg.Output.Verbose {
		fmt.Printf("\nUsed %d workers\n", cfg.Extraction.Workers)
	}
}

// parsePolygon parses a "x,y;x,y;..." list of normalized coordinates.
// An empty string yields an empty polygon.
func parsePolygon(s string) (spectral.Polygon, error) {
	if strings.TrimSpace(s) == "" {
		return spectral.Polygon{}, nil
	}

	var poly spectral.Polygon
	for _, part := range strings.Split(s, ";") {
		coords := strings.Split(strings.TrimSpace(part), ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("vertex %q: want x,y", part)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %v", part, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %v", part, err)
		}
		poly = append(poly, spectral.Point{X: x, Y: y})
	}
	return poly, nil
}
