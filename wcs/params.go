package wcs

import "math"

// Param describes one named numeric parameter of a projection for
// configuration loaders and user interfaces. Index is the FITS PVi_m
// slot the parameter is conventionally read from; Min and Max bound the
// valid closed interval in the same unit as Default (degrees for
// angles, dimensionless otherwise). The core does not interpret this
// metadata beyond returning it.
type Param struct {
	Name    string
	Index   int
	Min     float64
	Max     float64
	Default float64
}

// paramSet holds the caller-supplied PV values keyed by slot index.
type paramSet map[int]float64

func (p paramSet) get(idx int, def float64) float64 {
	if v, ok := p[idx]; ok {
		return v
	}
	return def
}

func (p paramSet) has(idx int) bool {
	_, ok := p[idx]
	return ok
}

func unbounded(name string, idx int, def float64) Param {
	return Param{Name: name, Index: idx, Min: math.Inf(-1), Max: math.Inf(1), Default: def}
}
