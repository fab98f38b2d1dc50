package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/skymath/wcsproj/internal/encode"
	"github.com/skymath/wcsproj/internal/graticule"
	"github.com/skymath/wcsproj/wcs"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		projCode    string
		ra          float64
		dec         float64
		pvSpec      string
		lonPole     float64
		latPole     float64
		width       int
		height      int
		scale       float64
		lonStep     float64
		latStep     float64
		labels      bool
		format      string
		quality     int
		output      string
		showVersion bool
	)

	flag.StringVar(&projCode, "proj", "AIT", "Projection code (one of wcs.Codes)")
	flag.Float64Var(&ra, "ra", 0, "Fiducial right ascension in degrees (CRVAL1)")
	flag.Float64Var(&dec, "dec", 0, "Fiducial declination in degrees (CRVAL2)")
	flag.StringVar(&pvSpec, "pv", "", "Projection parameters as idx=value pairs, comma separated")
	flag.Float64Var(&lonPole, "lonpole", math.NaN(), "Native longitude of the celestial pole in degrees (default: projection rule)")
	flag.Float64Var(&latPole, "latpole", math.NaN(), "Preferred native pole latitude in degrees")
	flag.IntVar(&width, "width", 800, "Image width in pixels")
	flag.IntVar(&height, "height", 600, "Image height in pixels")
	flag.Float64Var(&scale, "scale", 0, "Plane degrees per pixel (0 = fit 360 degrees of plane width)")
	flag.Float64Var(&lonStep, "lon-step", 30, "Meridian spacing in degrees")
	flag.Float64Var(&latStep, "lat-step", 15, "Parallel spacing in degrees")
	flag.BoolVar(&labels, "labels", true, "Draw coordinate labels")
	flag.StringVar(&format, "format", "", "Image encoding: png, jpeg, webp (default: from output extension)")
	flag.IntVar(&quality, "quality", 85, "JPEG/WebP quality 1-100")
	flag.StringVar(&output, "o", "grid.png", "Output file")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wcsgrid [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Render the coordinate graticule of a sky projection to an image.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("wcsgrid %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	pv, err := parsePV(pvSpec)
	if err != nil {
		log.Fatalf("Parsing -pv: %v", err)
	}

	var opts []wcs.Option
	if !math.IsNaN(lonPole) {
		opts = append(opts, wcs.WithLonPole(lonPole))
	}
	if !math.IsNaN(latPole) {
		opts = append(opts, wcs.WithLatPole(latPole))
	}

	proj, err := wcs.New(strings.ToUpper(projCode), ra, dec, pv, opts...)
	if err != nil {
		log.Fatalf("Building projection: %v", err)
	}

	if format == "" {
		format = formatFromExtension(output)
	}
	enc, err := encode.NewEncoder(format, quality)
	if err != nil {
		log.Fatalf("Creating encoder: %v", err)
	}

	img := graticule.Render(proj, graticule.Options{
		Width:   width,
		Height:  height,
		Scale:   scale,
		LonStep: lonStep,
		LatStep: latStep,
		Labels:  labels,
	})

	data, err := enc.Encode(img)
	if err != nil {
		log.Fatalf("Encoding %s: %v", enc.Format(), err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		log.Fatalf("Writing %s: %v", output, err)
	}

	log.Printf("Wrote %s plot of %s (%s) to %s (%d bytes)",
		enc.Format(), proj.Code(), proj.Name(), output, len(data))
}

func formatFromExtension(path string) string {
	switch {
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return "jpeg"
	case strings.HasSuffix(path, ".webp"):
		return "webp"
	default:
		return "png"
	}
}

// parsePV parses "idx=value" pairs separated by commas.
func parsePV(spec string) (map[int]float64, error) {
	if spec == "" {
		return nil, nil
	}
	pv := make(map[int]float64)
	for _, part := range strings.Split(spec, ",") {
		idx, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return nil, fmt.Errorf("malformed parameter %q, want idx=value", part)
		}
		i, err := strconv.Atoi(idx)
		if err != nil {
			return nil, fmt.Errorf("parameter index %q: %w", idx, err)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter value %q: %w", val, err)
		}
		pv[i] = v
	}
	return pv, nil
}
