package model_fields

import (
	"fmt"
	"math"
	"sort"

	"github.com/gerddie/mia-sub002/utils"
)

// Reference is a smooth vector field with known penalty integrals over the
// whole space.
type Reference struct {
	Name  string
	Rank  int
	Value func(x, v []float64)
	// GradDiv is int |grad div V|^2, GradCurl is int sum_i |grad (curl V)_i|^2
	GradDiv, GradCurl float64
}

var ReferenceMap = map[string]Reference{
	"gauss2d": {
		Name: "gauss2d", Rank: 2,
		Value: func(x, v []float64) {
			g := gauss(x)
			v[0], v[1] = g, g
		},
		GradDiv:  4 * math.Pi,
		GradCurl: 4 * math.Pi,
	},
	"radial2d": {
		Name: "radial2d", Rank: 2,
		Value: func(x, v []float64) {
			g := gauss(x)
			v[0], v[1] = x[0]*g, x[1]*g
		},
		GradDiv: 6 * math.Pi,
	},
	"radial3d": {
		Name: "radial3d", Rank: 3,
		Value: func(x, v []float64) {
			g := gauss(x)
			v[0], v[1], v[2] = x[0]*g, x[1]*g, x[2]*g
		},
		GradDiv: 105 * math.Pow(math.Pi, 1.5) / (8 * math.Sqrt2),
	},
	"mixed3d": {
		Name: "mixed3d", Rank: 3,
		Value: func(x, v []float64) {
			g := gauss(x)
			v[0], v[1], v[2] = x[0]*g, x[1]*g, 0
		},
		GradDiv:  7 * math.Pow(math.Pi, 1.5) / math.Sqrt2,
		GradCurl: 7 * math.Pow(math.Pi, 1.5) / math.Sqrt2 / 4,
	},
}

func gauss(x []float64) float64 {
	var r2 float64
	for _, xi := range x {
		r2 += xi * xi
	}
	return math.Exp(-r2)
}

func Names() (names []string) {
	for name := range ReferenceMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func Lookup(name string) (ref Reference, err error) {
	var ok bool
	if ref, ok = ReferenceMap[name]; !ok {
		err = fmt.Errorf("unknown reference field %q, choose one of %v", name, Names())
	}
	return
}

// Penalty is the exact value of the weighted penalty.
func (ref Reference) Penalty(wdiv, wcurl float64) float64 {
	return wdiv*ref.GradDiv + wcurl*ref.GradCurl
}

// Grid describes 2n+1 samples per axis over [-extent, extent].
type Grid struct {
	HalfSize int
	Extent   float64
}

func (gr Grid) Size(rank int) (size []int) {
	size = make([]int, rank)
	for a := range size {
		size[a] = 2*gr.HalfSize + 1
	}
	return
}

// Range is the physical length of every axis.
func (gr Grid) Range(rank int) (rng []float64) {
	rng = make([]float64, rank)
	for a := range rng {
		rng[a] = 2 * gr.Extent
	}
	return
}

// Coordinate maps a grid index onto its physical position.
func (gr Grid) Coordinate(i float64) float64 {
	return -gr.Extent + i*gr.Extent/float64(gr.HalfSize)
}

// Sample evaluates the reference on the grid.
func (ref Reference) Sample(gr Grid) (f *utils.Field) {
	var (
		x = make([]float64, ref.Rank)
	)
	f = utils.NewField(ref.Rank, gr.Size(ref.Rank)...)
	f.Fill(func(idx []int, val []float64) {
		for a := range x {
			x[a] = gr.Coordinate(float64(idx[a]))
		}
		ref.Value(x, val)
	})
	return
}
