package spline

import (
	"fmt"
	"math"

	"github.com/gerddie/mia-sub002/types"
	"github.com/gerddie/mia-sub002/utils"
)

// MaxSupport is the largest number of samples any kernel touches per axis.
const MaxSupport = 6

// Kernel is an interpolation basis together with its prefilter poles.
// Kernels are immutable and safe for concurrent use.
type Kernel struct {
	kt    types.KernelType
	poles []float64
	gain  float64
	shift float64
}

func NewKernel(kt types.KernelType) (k *Kernel, err error) {
	switch kt.Family {
	case types.KF_BSpline:
		if kt.Degree < 0 || kt.Degree > 5 {
			err = fmt.Errorf("%w: B-spline degree %d not in [0,5]", types.ErrInvalidKernelParameter, kt.Degree)
			return
		}
	case types.KF_OMoms:
		if kt.Degree != 3 {
			err = fmt.Errorf("%w: O-Moms degree %d, only 3 is available", types.ErrInvalidKernelParameter, kt.Degree)
			return
		}
	default:
		err = fmt.Errorf("%w: kernel family %d", types.ErrInvalidKernelParameter, kt.Family)
		return
	}
	k = &Kernel{
		kt:    kt,
		poles: polesOf(kt),
		gain:  1,
	}
	if kt.Degree%2 == 0 {
		k.shift = 0.5
	}
	for _, z := range k.poles {
		k.gain *= (1 - z) * (1 - 1/z)
	}
	return
}

// ParseKernel builds a kernel from a descriptor like "bspline:d=3".
func ParseKernel(desc string) (k *Kernel, err error) {
	var kt types.KernelType
	if kt, err = types.ParseKernelType(desc); err != nil {
		return
	}
	return NewKernel(kt)
}

func (k *Kernel) Type() types.KernelType { return k.kt }
func (k *Kernel) Degree() int            { return k.kt.Degree }

// Size is the number of samples in the support.
func (k *Kernel) Size() int { return k.kt.Degree + 1 }

// Radius is the half width of the nonzero region of the basis.
func (k *Kernel) Radius() float64 { return float64(k.kt.Degree+1) / 2 }

// Shift is added before taking the floor of a coordinate: 0.5 for even
// degrees, 0 for odd degrees.
func (k *Kernel) Shift() float64 { return k.shift }

func (k *Kernel) Poles() []float64 { return append([]float64(nil), k.poles...) }

// MaxDerivative is the highest derivative order WeightAt evaluates. O-Moms
// is only C0, its first derivative is the last one that is a function.
func (k *Kernel) MaxDerivative() int {
	if k.kt.Family == types.KF_OMoms {
		return 1
	}
	return k.kt.Degree
}

// IsDirect reports the degenerate kernels (nearest, linear) that need no
// prefilter and are evaluated by direct formulas.
func (k *Kernel) IsDirect() bool {
	return k.kt.Family == types.KF_BSpline && k.kt.Degree < 2
}

func (k *Kernel) String() string { return k.kt.String() }

// WeightAt evaluates the order-th derivative of the basis at offset x.
func (k *Kernel) WeightAt(x float64, order int) (w float64, err error) {
	if order < 0 || order > k.MaxDerivative() {
		err = fmt.Errorf("%w: order %d for kernel %s", types.ErrUnsupportedDerivative, order, k.kt)
		return
	}
	w = k.weight(x, order)
	return
}

func (k *Kernel) weight(x float64, order int) float64 {
	if k.kt.Family == types.KF_OMoms {
		return bsplineWeight(3, x, order) + bsplineWeight(3, x, order+2)/42
	}
	return bsplineWeight(k.kt.Degree, x, order)
}

// StartIndex is the first sample index of the support of coordinate x.
func (k *Kernel) StartIndex(x float64) int {
	return int(math.Floor(x+k.shift)) - k.kt.Degree/2
}

// Weights fills w[0:Size()] with the order-th derivative weights of the
// samples start, start+1, ... for the coordinate x.
func (k *Kernel) Weights(x float64, order int, w []float64) (start int, err error) {
	if order < 0 || order > k.MaxDerivative() {
		err = fmt.Errorf("%w: order %d for kernel %s", types.ErrUnsupportedDerivative, order, k.kt)
		return
	}
	start = k.StartIndex(x)
	k.weights(x, start, order, w)
	return
}

func (k *Kernel) weights(x float64, start, order int, w []float64) {
	for i := 0; i < k.Size(); i++ {
		w[i] = k.weight(x-float64(start+i), order)
	}
}

/*
B-splines are written in the symmetric truncated power form

	beta^(m)(x) = s^m sum_i a_i (c_i - |x|)_+^(n-m) / (n-m)!

with s = -sign(x). The knots c_i are listed from the outermost inwards so the
sum stops at the first knot that is not beyond |x|.
*/
func truncatedPowers(degree int) (knots, coefs []float64) {
	switch degree {
	case 1:
		return []float64{1}, []float64{1}
	case 2:
		return []float64{1.5, 0.5}, []float64{1, -3}
	case 3:
		return []float64{2, 1}, []float64{1, -4}
	case 4:
		return []float64{2.5, 1.5, 0.5}, []float64{1, -5, 10}
	case 5:
		return []float64{3, 2, 1}, []float64{1, -6, 15}
	}
	panic(fmt.Sprintf("no B-spline of degree %d", degree))
}

func bsplineWeight(degree int, x float64, order int) (w float64) {
	if degree == 0 {
		// half open so that a coordinate on a cell boundary picks one sample
		if order == 0 && x >= -0.5 && x < 0.5 {
			return 1
		}
		return 0
	}
	var (
		t            = math.Abs(x)
		p            = degree - order
		knots, coefs = truncatedPowers(degree)
	)
	if p > 0 && order%2 == 1 && x == 0 {
		return 0
	}
	for i, c := range knots {
		d := c - t
		// the piecewise constant top derivative is right continuous in x
		if d < 0 || (d == 0 && (p > 0 || x >= 0)) {
			break
		}
		w += coefs[i] * utils.POW(d, p)
	}
	w /= utils.Factorial(p)
	if order%2 == 1 && x >= 0 {
		w = -w
	}
	return
}
