package spline

import (
	"fmt"

	"github.com/gerddie/mia-sub002/types"
)

// Boundary is a boundary condition that has been checked against a kernel.
// The zero value is the mirror boundary, which every kernel supports.
type Boundary struct {
	bc types.BoundaryCondition
}

// NewBoundary validates bc for k. Repeat and zero boundaries are solved
// exactly only for kernels with at most one prefilter pole, so the
// B-splines of degree 4 and 5 support mirror only.
func NewBoundary(k *Kernel, bc types.BoundaryCondition) (b Boundary, err error) {
	switch bc {
	case types.BC_Mirror:
	case types.BC_Repeat, types.BC_Zero:
		if len(k.poles) > 1 {
			err = fmt.Errorf("%w: %s boundary with %d poles of kernel %s",
				types.ErrInvalidKernelParameter, bc, len(k.poles), k)
			return
		}
	default:
		err = fmt.Errorf("%w: boundary condition %d", types.ErrInvalidKernelParameter, bc)
		return
	}
	b.bc = bc
	return
}

func (b Boundary) Condition() types.BoundaryCondition { return b.bc }

func (b Boundary) String() string { return b.bc.Name() }

// Index maps i onto [0, n). For the zero boundary an index outside the
// range reports inside == false and its weight must be dropped.
func (b Boundary) Index(i, n int) (j int, inside bool) {
	switch b.bc {
	case types.BC_Repeat:
		return min(max(i, 0), n-1), true
	case types.BC_Zero:
		if i < 0 || i >= n {
			return 0, false
		}
		return i, true
	}
	return MirrorIndex(i, n), true
}

// MirrorIndex maps any integer index onto [0, n) by whole sample mirroring
// about 0 and n-1, repeated as often as needed. The period is 2(n-1).
func MirrorIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	var (
		period = 2*n - 2
	)
	if i < 0 {
		i = -i
	}
	if i >= period {
		i %= period
	}
	if i >= n {
		i = period - i
	}
	return i
}
