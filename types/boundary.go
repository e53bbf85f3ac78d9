package types

import (
	"fmt"
	"strings"
)

// BoundaryCondition selects how coefficient indices outside [0, n) are
// resolved, both by the prefilter and by the interpolator.
type BoundaryCondition uint8

const (
	BC_Mirror BoundaryCondition = iota // whole sample mirror, period 2(n-1)
	BC_Repeat                          // clamp to the first/last coefficient
	BC_Zero                            // coefficients beyond the ends are zero
)

var BoundaryNameMap = map[string]BoundaryCondition{
	"mirror": BC_Mirror,
	"repeat": BC_Repeat,
	"zero":   BC_Zero,
}

func (bc BoundaryCondition) Name() string {
	for name, b := range BoundaryNameMap {
		if b == bc {
			return name
		}
	}
	return "none"
}

func (bc BoundaryCondition) String() string { return bc.Name() }

// ParseBoundaryCondition reads a boundary name, the empty string selects
// mirror.
func ParseBoundaryCondition(name string) (bc BoundaryCondition, err error) {
	var (
		ok bool
	)
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return BC_Mirror, nil
	}
	if bc, ok = BoundaryNameMap[name]; !ok {
		err = fmt.Errorf("%w: unknown boundary condition %q", ErrInvalidKernelParameter, name)
	}
	return
}
