package wcs

import (
	"errors"
	"fmt"
)

// ErrDomain reports a coordinate with no image under the projection:
// the point lies outside the projection's footprint, a denominator is
// singular for that specific input, or a root finder could not produce
// a solution. Per-point failures wrap ErrDomain; batch callers are
// expected to test for it with errors.Is, mask the pixel and continue.
var ErrDomain = errors.New("coordinate outside projection domain")

// ErrBadParam reports a projection parameter outside its mathematically
// required domain. It is only returned at construction time.
var ErrBadParam = errors.New("invalid projection parameter")

func domainErrf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDomain)...)
}

func paramErrf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrBadParam)...)
}
