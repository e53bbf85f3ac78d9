package utils

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Field is a dense regular grid of NComp interleaved values per point. The
// first axis varies fastest.
type Field struct {
	Size  []int
	NComp int
	Data  []float64
}

func NewField(nComp int, size ...int) (f *Field) {
	var (
		n = 1
	)
	if nComp < 1 || len(size) == 0 {
		panic(fmt.Sprintf("bad field shape: %d components, size %v", nComp, size))
	}
	for _, s := range size {
		if s < 1 {
			panic(fmt.Sprintf("bad field size %v", size))
		}
		n *= s
	}
	f = &Field{
		Size:  append([]int(nil), size...),
		NComp: nComp,
		Data:  make([]float64, n*nComp),
	}
	return
}

func (f *Field) Rank() int { return len(f.Size) }

// Points is the number of grid points.
func (f *Field) Points() int { return len(f.Data) / f.NComp }

// Strides are the flat point offsets of a unit step along each axis.
func (f *Field) Strides() (s []int) {
	s = make([]int, len(f.Size))
	stride := 1
	for i, n := range f.Size {
		s[i] = stride
		stride *= n
	}
	return
}

func (f *Field) PointIndex(idx ...int) (p int) {
	if len(idx) != len(f.Size) {
		panic(fmt.Sprintf("index rank %d does not match field rank %d", len(idx), len(f.Size)))
	}
	for i := len(idx) - 1; i >= 0; i-- {
		p = p*f.Size[i] + idx[i]
	}
	return
}

func (f *Field) At(comp int, idx ...int) float64 {
	return f.Data[f.PointIndex(idx...)*f.NComp+comp]
}

func (f *Field) Set(val float64, comp int, idx ...int) {
	f.Data[f.PointIndex(idx...)*f.NComp+comp] = val
}

func (f *Field) Copy() *Field {
	return &Field{
		Size:  append([]int(nil), f.Size...),
		NComp: f.NComp,
		Data:  append([]float64(nil), f.Data...),
	}
}

func (f *Field) SameShape(g *Field) bool {
	if f.NComp != g.NComp || len(f.Size) != len(g.Size) {
		return false
	}
	for i := range f.Size {
		if f.Size[i] != g.Size[i] {
			return false
		}
	}
	return true
}

// Component returns a copy of one component in point order.
func (f *Field) Component(comp int) (c []float64) {
	c = make([]float64, f.Points())
	for i := range c {
		c[i] = f.Data[i*f.NComp+comp]
	}
	return
}

// ValueRange returns the per component minimum and maximum.
func (f *Field) ValueRange() (lo, hi []float64) {
	lo, hi = make([]float64, f.NComp), make([]float64, f.NComp)
	for c := 0; c < f.NComp; c++ {
		comp := f.Component(c)
		lo[c], hi[c] = floats.Min(comp), floats.Max(comp)
	}
	return
}

// Fill sets every point from fn, called with the point index.
func (f *Field) Fill(fn func(idx []int, val []float64)) {
	var (
		r   = NewR(f.Size...)
		idx = make([]int, len(f.Size))
	)
	for p := 0; p < f.Points(); p++ {
		r.Unravel(p, idx)
		fn(idx, f.Data[p*f.NComp:(p+1)*f.NComp])
	}
}
