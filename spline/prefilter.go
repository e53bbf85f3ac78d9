package spline

import (
	"fmt"
	"math"

	"github.com/gerddie/mia-sub002/types"
	"github.com/gerddie/mia-sub002/utils"
)

var (
	polesBSpline2 = []float64{math.Sqrt(8) - 3}
	polesBSpline3 = []float64{math.Sqrt(3) - 2}
	polesOMoms3   = []float64{(math.Sqrt(105) - 13) / 8}
	polesBSpline4 = []float64{
		math.Sqrt(664-math.Sqrt(438976)) + math.Sqrt(304) - 19,
		math.Sqrt(664+math.Sqrt(438976)) - math.Sqrt(304) - 19,
	}
	polesBSpline5 = []float64{
		(math.Sqrt(270-math.Sqrt(70980)) + math.Sqrt(105) - 13) / 2,
		(math.Sqrt(270+math.Sqrt(70980)) - math.Sqrt(105) - 13) / 2,
	}
)

func polesOf(kt types.KernelType) []float64 {
	if kt.Family == types.KF_OMoms {
		return polesOMoms3
	}
	switch kt.Degree {
	case 2:
		return polesBSpline2
	case 3:
		return polesBSpline3
	case 4:
		return polesBSpline4
	case 5:
		return polesBSpline5
	}
	return nil
}

// FilterLine replaces the samples in c by the interpolation coefficients of
// the kernel, assuming whole sample mirror extension at both ends.
func (k *Kernel) FilterLine(c []float64) {
	var (
		n = len(c)
	)
	if n < 2 || len(k.poles) == 0 {
		return
	}
	for i := range c {
		c[i] *= k.gain
	}
	for _, z := range k.poles {
		c[0] = causalInit(c, z)
		for i := 1; i < n; i++ {
			c[i] += z * c[i-1]
		}
		c[n-1] = anticausalInit(c, z)
		for i := n - 2; i >= 0; i-- {
			c[i] = z * (c[i+1] - c[i])
		}
	}
}

// FilterLineBC is FilterLine for the boundary b.
func (k *Kernel) FilterLineBC(b Boundary, c []float64) {
	switch {
	case b.bc == types.BC_Mirror:
		k.FilterLine(c)
	case len(c) == 0 || len(k.poles) == 0:
	case len(k.poles) > 1:
		panic(fmt.Sprintf("%s boundary for kernel %s", b, k))
	default:
		k.filterBounded(b.bc, c)
	}
}

// causalInit sums the mirrored signal over one full period.
func causalInit(c []float64, z float64) float64 {
	var (
		n   = len(c)
		zn  = z
		iz  = 1 / z
		z2n = utils.POW(z, n-1)
		sum = c[0] + z2n*c[n-1]
	)
	z2n *= z2n * iz
	for i := 1; i < n-1; i++ {
		sum += (zn + z2n) * c[i]
		zn *= z
		z2n *= iz
	}
	return sum / (1 - zn*zn)
}

func anticausalInit(c []float64, z float64) float64 {
	var (
		n = len(c)
	)
	return (z / (z*z - 1)) * (z*c[n-2] + c[n-1])
}

/*
filterBounded solves the three tap system

	s[i] = a c[i-1] + b c[i] + a c[i+1],  a = -z/(1-z)^2,  b = (1+z^2)/(1-z)^2

with c[-1], c[n] fixed by the boundary: zero, or a copy of the end value for
repeat. Writing u[i] = c[i] - z c[i+1] the system factors into

	u[i] = (1-z)^2 s[i] + z u[i-1]      c[i] = u[i] + z c[i+1]

The far end closes exactly: c[n-1] = e u[n-1] with e = 1 (zero) or 1/(1-z)
(repeat). The near end needs u[-1] = gamma/z c[0], gamma = -z^2 (zero) or
z(1-z) (repeat), so the filter first runs with c[0] = 0 and then adds the
response to the first coefficient, which is linear in c[0].
*/
func (k *Kernel) filterBounded(bc types.BoundaryCondition, c []float64) {
	var (
		n        = len(c)
		z        = k.poles[0]
		g        = (1 - z) * (1 - z)
		gamma, e = -z * z, 1.
	)
	if bc == types.BC_Repeat {
		gamma, e = z*(1-z), 1/(1-z)
	}
	// response of c[i] to a unit c[0], over the m = n-1-i samples after i
	response := func(zi float64, m int) float64 {
		q := utils.POW(z, 2*m)
		return gamma * zi * ((1-q)/(1-z*z) + e*q)
	}
	c[0] *= g
	for i := 1; i < n; i++ {
		c[i] = g*c[i] + z*c[i-1]
	}
	c[n-1] *= e
	for i := n - 2; i >= 0; i-- {
		c[i] += z * c[i+1]
	}
	var (
		c0 = c[0] / (1 - response(1, n-1))
		zi = 1.
	)
	for i := range c {
		c[i] += c0 * response(zi, n-1-i)
		zi *= z
	}
}

// Prefilter converts the samples of f into interpolation coefficients in
// place, one axis after the other, with mirror boundaries. The caller must
// hold the only reference to f while it runs.
func Prefilter(k *Kernel, f *utils.Field) {
	PrefilterBC(k, Boundary{}, f)
}

// PrefilterBC is Prefilter for the boundary b.
func PrefilterBC(k *Kernel, b Boundary, f *utils.Field) {
	if len(k.poles) == 0 {
		return
	}
	var (
		r      = utils.NewR(f.Size...)
		maxLen int
	)
	for _, n := range f.Size {
		maxLen = max(maxLen, n)
	}
	buf := make([]float64, maxLen)
	for axis, n := range f.Size {
		line := buf[:n]
		for _, p0 := range r.LineStarts(axis) {
			for comp := 0; comp < f.NComp; comp++ {
				r.Gather(f, axis, comp, p0, line)
				k.FilterLineBC(b, line)
				r.Scatter(f, axis, comp, p0, line)
			}
		}
	}
}
