package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"

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
		inverse     bool
		sexaOut     bool
		listCodes   bool
		showVersion bool
	)

	flag.StringVar(&projCode, "proj", "TAN", "Projection code (one of wcs.Codes)")
	flag.Float64Var(&ra, "ra", 0, "Fiducial right ascension in degrees (CRVAL1)")
	flag.Float64Var(&dec, "dec", 0, "Fiducial declination in degrees (CRVAL2)")
	flag.StringVar(&pvSpec, "pv", "", "Projection parameters as idx=value pairs, comma separated (e.g. 1=2,2=30)")
	flag.Float64Var(&lonPole, "lonpole", math.NaN(), "Native longitude of the celestial pole in degrees (default: projection rule)")
	flag.Float64Var(&latPole, "latpole", math.NaN(), "Preferred native pole latitude in degrees")
	flag.BoolVar(&inverse, "inverse", false, "Convert sky (lon lat) to plane (x y) instead of plane to sky")
	flag.BoolVar(&sexaOut, "sexa", false, "Print sky coordinates in sexagesimal notation")
	flag.BoolVar(&listCodes, "list", false, "List supported projection codes and exit")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wcsconv [flags] [x y [x y ...]]\n\n")
		fmt.Fprintf(os.Stderr, "Convert between projection-plane and celestial coordinates.\n")
		fmt.Fprintf(os.Stderr, "Coordinate pairs come from the arguments, or one pair per line on stdin.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("wcsconv %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if listCodes {
		for _, c := range wcs.Codes() {
			fmt.Println(c)
		}
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

	pairs, err := readPairs(flag.Args())
	if err != nil {
		log.Fatalf("Reading input: %v", err)
	}
	if len(pairs) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, pt := range pairs {
		if inverse {
			x, y, err := proj.FromSky(pt[0], pt[1])
			if err != nil {
				fmt.Fprintf(out, "# (%g, %g): %v\n", pt[0], pt[1], err)
				continue
			}
			fmt.Fprintf(out, "%.9f %.9f\n", x, y)
			continue
		}

		lon, lat, err := proj.ToSky(pt[0], pt[1])
		if err != nil {
			fmt.Fprintf(out, "# (%g, %g): %v\n", pt[0], pt[1], err)
			continue
		}
		if sexaOut {
			fmt.Fprintf(out, "%2.2s %2.1s\n",
				sexa.FmtRA(unit.RAFromDeg(lon)),
				sexa.FmtAngle(unit.AngleFromDeg(lat)))
			continue
		}
		fmt.Fprintf(out, "%.9f %.9f\n", lon, lat)
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

// readPairs collects coordinate pairs from the arguments, or from
// stdin (one pair per line) when no arguments are given.
func readPairs(args []string) ([][2]float64, error) {
	if len(args) > 0 {
		if len(args)%2 != 0 {
			return nil, fmt.Errorf("odd number of coordinates (%d), want pairs", len(args))
		}
		pairs := make([][2]float64, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			a, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return nil, fmt.Errorf("coordinate %q: %w", args[i], err)
			}
			b, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("coordinate %q: %w", args[i+1], err)
			}
			pairs = append(pairs, [2]float64{a, b})
		}
		return pairs, nil
	}

	var pairs [][2]float64
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %q: want two coordinates", line)
		}
		a, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		b, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		pairs = append(pairs, [2]float64{a, b})
	}
	return pairs, sc.Err()
}
