package divcurl

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/gerddie/mia-sub002/spline"
)

// MaxOrder is the highest basis derivative the penalty integrates.
const MaxOrder = 2

// Gauss-Legendre with 6 nodes is exact for the degree 10 products of two
// quintic pieces.
const gaussPoints = 6

// IntegralCache memoises the 1-D integrals
//
//	R_pq(d) = int phi^(p)(v) phi^(q)(v+d) dv
//
// over the whole line for one kernel. It is owned by a single Matrix and is
// not safe for concurrent use.
type IntegralCache struct {
	kernel       *spline.Kernel
	span         int
	vals         [MaxOrder + 1][MaxOrder + 1][]float64
	have         [MaxOrder + 1][MaxOrder + 1][]bool
	hits, misses int
}

func NewIntegralCache(k *spline.Kernel) (ic *IntegralCache) {
	ic = &IntegralCache{
		kernel: k,
		span:   k.Size(),
	}
	for p := range ic.vals {
		for q := range ic.vals[p] {
			ic.vals[p][q] = make([]float64, 2*ic.span+1)
			ic.have[p][q] = make([]bool, 2*ic.span+1)
		}
	}
	return
}

func (ic *IntegralCache) Kernel() *spline.Kernel { return ic.kernel }

// Get returns R_pq(d). Offsets at or beyond the kernel size do not overlap
// and yield zero.
func (ic *IntegralCache) Get(p, q, d int) float64 {
	if d <= -ic.span || d >= ic.span {
		return 0
	}
	slot := d + ic.span
	if ic.have[p][q][slot] {
		ic.hits++
		return ic.vals[p][q][slot]
	}
	ic.misses++
	ic.vals[p][q][slot] = ic.integrate(p, q, d)
	ic.have[p][q][slot] = true
	return ic.vals[p][q][slot]
}

// Stats reports lookups served from the cache and lookups that had to
// integrate.
func (ic *IntegralCache) Stats() (hits, misses int) { return ic.hits, ic.misses }

func (ic *IntegralCache) integrate(p, q, d int) (sum float64) {
	var (
		r  = ic.kernel.Radius()
		fd = float64(d)
		lo = math.Max(-r, -r-fd)
		hi = math.Min(r, r-fd)
	)
	f := func(v float64) float64 {
		wp, _ := ic.kernel.WeightAt(v, p)
		wq, _ := ic.kernel.WeightAt(v+fd, q)
		return wp * wq
	}
	// the pieces of both factors share the unit lattice starting at lo
	for a := lo; a < hi-0.5; a++ {
		sum += quad.Fixed(f, a, a+1, gaussPoints, quad.Legendre{}, 0)
	}
	return
}
