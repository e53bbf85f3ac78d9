package interp

import (
	"fmt"
	"math"

	"github.com/gerddie/mia-sub002/spline"
	"github.com/gerddie/mia-sub002/types"
	"github.com/gerddie/mia-sub002/utils"
)

const MaxRank = 3

// Interpolator evaluates a sampled field of rank 1 to 3 at arbitrary
// points in index space. It holds its own prefiltered copy of the samples
// and may be shared between goroutines.
type Interpolator struct {
	kernel  *spline.Kernel
	coeffs  *utils.Field
	strides []int
	lo, hi  []float64
	round   bool
	bc      spline.Boundary
}

type Option func(ip *Interpolator)

// WithIntegerOutput rounds interpolated values to the nearest integer, for
// fields that hold integer pixel types.
func WithIntegerOutput() Option {
	return func(ip *Interpolator) { ip.round = true }
}

// WithBoundary replaces the default mirror boundary, b must have been
// validated for the kernel passed to New.
func WithBoundary(b spline.Boundary) Option {
	return func(ip *Interpolator) { ip.bc = b }
}

func New(k *spline.Kernel, samples *utils.Field, opts ...Option) (ip *Interpolator) {
	if samples.Rank() > MaxRank {
		panic(fmt.Sprintf("interpolation of rank %d fields is not available", samples.Rank()))
	}
	ip = &Interpolator{
		kernel:  k,
		coeffs:  samples.Copy(),
		strides: samples.Strides(),
	}
	ip.lo, ip.hi = samples.ValueRange()
	for _, opt := range opts {
		opt(ip)
	}
	spline.PrefilterBC(k, ip.bc, ip.coeffs)
	return
}

func (ip *Interpolator) Kernel() *spline.Kernel { return ip.kernel }

func (ip *Interpolator) Boundary() spline.Boundary { return ip.bc }

// Coefficients are the prefiltered spline coefficients, read only.
func (ip *Interpolator) Coefficients() *utils.Field { return ip.coeffs }

func (ip *Interpolator) ValueAt(x ...float64) (v []float64) {
	v = make([]float64, ip.coeffs.NComp)
	ip.ValueInto(v, x)
	return
}

// ValueInto writes the interpolated value at x into dst, which must hold
// one entry per component. A NaN or infinite coordinate yields NaN.
func (ip *Interpolator) ValueInto(dst []float64, x []float64) {
	var (
		ax [MaxRank]axisWeights
	)
	if len(x) != ip.coeffs.Rank() {
		panic(fmt.Sprintf("point of rank %d in a field of rank %d", len(x), ip.coeffs.Rank()))
	}
	if !finite(x) {
		fillNaN(dst)
		return
	}
	for a := range x {
		switch {
		case ip.kernel.Degree() == 0 && ip.kernel.IsDirect():
			ip.nearest(&ax[a], a, x[a])
		case ip.kernel.IsDirect():
			ip.linear(&ax[a], a, x[a])
		default:
			// order 0 is always available
			_ = ip.spline(&ax[a], a, x[a], 0)
		}
	}
	ip.accumulate(dst, &ax)
	for c := range dst {
		dst[c] = math.Min(math.Max(dst[c], ip.lo[c]), ip.hi[c])
		if ip.round {
			dst[c] = math.Round(dst[c])
		}
	}
}

// DerivativeAt evaluates the mixed partial derivative with order[a]
// derivatives along axis a, in index units. Values are neither clamped nor
// rounded.
func (ip *Interpolator) DerivativeAt(order []int, x []float64) (d []float64, err error) {
	var (
		ax [MaxRank]axisWeights
	)
	if ip.kernel.IsDirect() {
		err = fmt.Errorf("%w: derivatives of the %s kernel", types.ErrUnsupportedOperation, ip.kernel)
		return
	}
	if len(x) != ip.coeffs.Rank() || len(order) != len(x) {
		err = fmt.Errorf("%w: point rank %d, order rank %d, field rank %d",
			types.ErrSizeMismatch, len(x), len(order), ip.coeffs.Rank())
		return
	}
	for a := range x {
		if err = ip.spline(&ax[a], a, x[a], order[a]); err != nil {
			return
		}
	}
	d = make([]float64, ip.coeffs.NComp)
	if !finite(x) {
		fillNaN(d)
		return
	}
	ip.accumulate(d, &ax)
	return
}

func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func fillNaN(d []float64) {
	for c := range d {
		d[c] = math.NaN()
	}
}

// GradientAt returns the first derivatives at x, laid out as
// [comp*rank + axis].
func (ip *Interpolator) GradientAt(x ...float64) (g []float64, err error) {
	var (
		rank  = ip.coeffs.Rank()
		order = make([]int, rank)
		d     []float64
	)
	g = make([]float64, ip.coeffs.NComp*rank)
	for a := 0; a < rank; a++ {
		order[a] = 1
		if d, err = ip.DerivativeAt(order, x); err != nil {
			return nil, err
		}
		order[a] = 0
		for c, val := range d {
			g[c*rank+a] = val
		}
	}
	return
}

type axisWeights struct {
	w   [spline.MaxSupport]float64
	off [spline.MaxSupport]int // flat point offsets
	n   int
}

// place sets the k-th tap of aw to sample i of the axis, or drops its
// weight when the boundary has no sample there.
func (ip *Interpolator) place(aw *axisWeights, axis, k, i int) {
	j, inside := ip.bc.Index(i, ip.coeffs.Size[axis])
	if !inside {
		aw.w[k] = 0
	}
	aw.off[k] = j * ip.strides[axis]
}

func (ip *Interpolator) nearest(aw *axisWeights, axis int, x float64) {
	aw.n = 1
	aw.w[0] = 1
	ip.place(aw, axis, 0, int(math.Floor(x+0.5)))
}

func (ip *Interpolator) linear(aw *axisWeights, axis int, x float64) {
	var (
		fx = math.Floor(x)
		i  = int(fx)
	)
	aw.n = 2
	aw.w[1] = x - fx
	aw.w[0] = 1 - aw.w[1]
	ip.place(aw, axis, 0, i)
	ip.place(aw, axis, 1, i+1)
}

func (ip *Interpolator) spline(aw *axisWeights, axis int, x float64, order int) (err error) {
	var (
		start int
	)
	if start, err = ip.kernel.Weights(x, order, aw.w[:]); err != nil {
		return
	}
	aw.n = ip.kernel.Size()
	for k := 0; k < aw.n; k++ {
		ip.place(aw, axis, k, start+k)
	}
	return
}

// accumulate forms the tensor product sum over the supports in ax; axes
// beyond the field rank contribute a single unit weight.
func (ip *Interpolator) accumulate(dst []float64, ax *[MaxRank]axisWeights) {
	var (
		nc   = ip.coeffs.NComp
		data = ip.coeffs.Data
	)
	for a := ip.coeffs.Rank(); a < MaxRank; a++ {
		ax[a].n, ax[a].w[0], ax[a].off[0] = 1, 1, 0
	}
	for c := range dst {
		dst[c] = 0
	}
	for kz := 0; kz < ax[2].n; kz++ {
		oz, wz := ax[2].off[kz], ax[2].w[kz]
		for ky := 0; ky < ax[1].n; ky++ {
			oy, wy := oz+ax[1].off[ky], wz*ax[1].w[ky]
			for kx := 0; kx < ax[0].n; kx++ {
				var (
					p = (oy + ax[0].off[kx]) * nc
					w = wy * ax[0].w[kx]
				)
				for c := 0; c < nc; c++ {
					dst[c] += w * data[p+c]
				}
			}
		}
	}
}
