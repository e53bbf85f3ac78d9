package divcurl

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/gerddie/mia-sub002/model_fields"
	"github.com/gerddie/mia-sub002/spline"
	"github.com/gerddie/mia-sub002/types"
	"github.com/gerddie/mia-sub002/utils"
)

func kernel(t *testing.T, desc string) *spline.Kernel {
	k, err := spline.ParseKernel(desc)
	require.NoError(t, err)
	return k
}

func randomField(rnd *rand.Rand, size ...int) (f *utils.Field) {
	f = utils.NewField(len(size), size...)
	for i := range f.Data {
		f.Data[i] = rnd.NormFloat64()
	}
	return
}

func TestIntegralCache(t *testing.T) {
	ic := NewIntegralCache(kernel(t, "bspline:d=3"))
	// products of cubic B-splines integrate to the septic B-spline
	for d, want := range map[int]float64{0: 151. / 315., 1: 397. / 1680., 2: 1. / 42., 3: 1. / 5040.} {
		assert.InDelta(t, want, ic.Get(0, 0, d), 1.e-12, "offset %d", d)
		assert.InDelta(t, want, ic.Get(0, 0, -d), 1.e-12, "offset %d", -d)
	}
	assert.Equal(t, 0., ic.Get(0, 0, 4))
	assert.Equal(t, 0., ic.Get(2, 2, -9))
	assert.Greater(t, ic.Get(1, 1, 0), 0.)

	for _, desc := range []string{"bspline:d=2", "bspline:d=3", "bspline:d=4", "bspline:d=5"} {
		ic := NewIntegralCache(kernel(t, desc))
		var sum [3][3]float64
		for d := -6; d <= 6; d++ {
			for p := 0; p <= MaxOrder; p++ {
				for q := 0; q <= MaxOrder; q++ {
					sum[p][q] += ic.Get(p, q, d)
				}
			}
			// integration by parts moves a derivative between the factors
			assert.InDelta(t, -ic.Get(1, 0, d), ic.Get(0, 1, d), 1.e-12, desc)
			assert.InDelta(t, -ic.Get(2, 1, d), ic.Get(1, 2, d), 1.e-12, desc)
			assert.InDelta(t, ic.Get(2, 0, d), -ic.Get(1, 1, d), 1.e-12, desc)
			assert.InDelta(t, ic.Get(2, 2, d), ic.Get(2, 2, -d), 1.e-12, desc)
		}
		// the integer shifts of the basis sum to one
		assert.InDelta(t, 1., sum[0][0], 1.e-12, desc)
		assert.InDelta(t, 0., sum[1][1], 1.e-12, desc)
		assert.InDelta(t, 0., sum[2][2], 1.e-12, desc)
	}
	{
		ic := NewIntegralCache(kernel(t, "bspline:d=4"))
		v := ic.Get(2, 1, 1)
		_, misses := ic.Stats()
		assert.Equal(t, v, ic.Get(2, 1, 1))
		hits, misses2 := ic.Stats()
		assert.Equal(t, misses, misses2)
		assert.Equal(t, 1, hits)
	}
}

func referencePenalty(t *testing.T, name, kdesc string, gr model_fields.Grid, wdiv, wcurl float64) (got, want float64) {
	ref, err := model_fields.Lookup(name)
	require.NoError(t, err)
	k := kernel(t, kdesc)
	coeffs := ref.Sample(gr)
	spline.Prefilter(k, coeffs)
	m, err := NewMatrix(gr.Size(ref.Rank), gr.Range(ref.Rank), k, wdiv, wcurl)
	require.NoError(t, err)
	got, err = m.Value(coeffs)
	require.NoError(t, err)
	return got, ref.Penalty(wdiv, wcurl)
}

func TestReferenceFields2D(t *testing.T) {
	gr := model_fields.Grid{HalfSize: 16, Extent: 4}
	{ // curl free radial field
		got, want := referencePenalty(t, "radial2d", "bspline:d=3", gr, 1, 0)
		assert.InDelta(t, 6*math.Pi, want, 1.e-12)
		assert.InEpsilon(t, want, got, 0.02)
		got, _ = referencePenalty(t, "radial2d", "bspline:d=3", gr, 1, 1)
		assert.InEpsilon(t, want, got, 0.02)
		got, _ = referencePenalty(t, "radial2d", "bspline:d=3", gr, 0, 1)
		assert.Less(t, math.Abs(got), 0.02*want)
	}
	for _, kdesc := range []string{"bspline:d=3", "bspline:d=4", "bspline:d=5"} {
		got, _ := referencePenalty(t, "gauss2d", kdesc, gr, 1, 0)
		assert.InEpsilon(t, 4*math.Pi, got, 0.02, kdesc)
		got, want := referencePenalty(t, "gauss2d", kdesc, gr, 0, 1)
		assert.InEpsilon(t, want, got, 0.02, kdesc)
		got, want = referencePenalty(t, "gauss2d", kdesc, gr, 0.5, 2)
		assert.InEpsilon(t, want, got, 0.02, kdesc)
	}
}

func TestReferenceFields3D(t *testing.T) {
	gr := model_fields.Grid{HalfSize: 12, Extent: 4}
	{
		got, want := referencePenalty(t, "radial3d", "bspline:d=3", gr, 1, 0)
		assert.InEpsilon(t, want, got, 0.02)
	}
	{
		got, want := referencePenalty(t, "mixed3d", "bspline:d=3", gr, 1, 0)
		assert.InEpsilon(t, want, got, 0.02)
		got, want = referencePenalty(t, "mixed3d", "bspline:d=3", gr, 0, 1)
		assert.InEpsilon(t, want, got, 0.02)
		got, want = referencePenalty(t, "mixed3d", "bspline:d=3", gr, 1, 1)
		assert.InEpsilon(t, want, got, 0.02)
	}
}

func checkGradient(t *testing.T, m *Matrix, c *utils.Field, rnd *rand.Rand) {
	const delta = 0.001
	grad := mat.NewVecDense(len(c.Data), nil)
	v, err := m.Evaluate(c, grad)
	require.NoError(t, err)
	v2, err := m.Value(c)
	require.NoError(t, err)
	assert.InDelta(t, v2, v, 1.e-10*math.Abs(v))
	for n := 0; n < 40; n++ {
		i := rnd.Intn(len(c.Data))
		save := c.Data[i]
		c.Data[i] = save + delta
		vp, _ := m.Value(c)
		c.Data[i] = save - delta
		vm, _ := m.Value(c)
		c.Data[i] = save
		fd := (vp - vm) / (2 * delta)
		assert.InDelta(t, fd, grad.AtVec(i), math.Max(0.02*math.Abs(fd), 1.e-6), "coefficient %d", i)
	}
}

func TestGradient(t *testing.T) {
	rnd := rand.New(rand.NewSource(17))
	{
		m, err := NewMatrix([]int{9, 8}, []float64{4, 3.5}, kernel(t, "bspline:d=4"), 1, 0.5)
		require.NoError(t, err)
		checkGradient(t, m, randomField(rnd, 9, 8), rnd)
	}
	{
		m, err := NewMatrix([]int{7, 6}, []float64{6, 5}, kernel(t, "bspline:d=2"), 1, 1)
		require.NoError(t, err)
		checkGradient(t, m, randomField(rnd, 7, 6), rnd)
	}
	{
		m, err := NewMatrix([]int{6, 5, 7}, []float64{5, 4, 6}, kernel(t, "bspline:d=3"), 0.7, 1.3)
		require.NoError(t, err)
		checkGradient(t, m, randomField(rnd, 6, 5, 7), rnd)
	}
}

func TestStencilSymmetry(t *testing.T) {
	m, err := NewMatrix([]int{10, 10, 10}, []float64{9, 4.5, 3}, kernel(t, "bspline:d=3"), 1, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Span())
	assert.Equal(t, Cell{}, m.Cell(5, 0, 0))
	assert.Equal(t, Cell{}, m.Cell(0, 4, 0))
	for dz := -3; dz <= 3; dz++ {
		for dy := -3; dy <= 3; dy++ {
			for dx := -3; dx <= 3; dx++ {
				a, b := m.Cell(dx, dy, dz), m.Cell(-dx, -dy, -dz)
				assert.InDelta(t, a.XX, b.XX, 1.e-10*(1+math.Abs(a.XX)))
				assert.InDelta(t, a.XY, b.XY, 1.e-10*(1+math.Abs(a.XY)))
				assert.InDelta(t, a.YZ, b.YZ, 1.e-10*(1+math.Abs(a.YZ)))
			}
		}
	}
	// equal weights cancel the cross terms
	m, err = NewMatrix([]int{10, 10, 10}, []float64{9, 4.5, 3}, kernel(t, "bspline:d=3"), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0., m.Cell(1, 1, 0).XY)
}

func TestRebuild(t *testing.T) {
	var (
		k    = kernel(t, "bspline:d=3")
		size = []int{12, 11}
		rng  = []float64{3, 4}
	)
	m, err := NewMatrix(size, rng, k, 1, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Builds())
	cells := append([]Cell(nil), m.cells...)
	_, misses := m.Cache().Stats()

	// identical parameters are a cache hit
	require.NoError(t, m.Reset([]int{12, 11}, []float64{3, 4}, kernel(t, "bspline:d=3"), 1, 0.5))
	assert.Equal(t, 1, m.Builds())
	assert.Equal(t, cells, m.cells)

	// new weights rebuild from the cached integrals
	require.NoError(t, m.Reset(size, rng, k, 1, 0.25))
	assert.Equal(t, 2, m.Builds())
	_, misses2 := m.Cache().Stats()
	assert.Equal(t, misses, misses2)
	assert.NotEqual(t, cells, m.cells)

	// a new kernel replaces the cache
	require.NoError(t, m.Reset(size, rng, kernel(t, "bspline:d=4"), 1, 0.25))
	assert.Equal(t, 3, m.Builds())
	assert.Equal(t, 5, m.Span())
	assert.Equal(t, types.KernelType{Family: types.KF_BSpline, Degree: 4}, m.Cache().Kernel().Type())

	// a failed reset keeps the old stencil
	assert.Error(t, m.Reset([]int{12}, []float64{3}, k, 1, 0.25))
	assert.Equal(t, 2, m.Rank())
}

func TestErrors(t *testing.T) {
	for _, desc := range []string{"omoms:d=3", "bspline:d=1", "bspline:d=0"} {
		_, err := NewMatrix([]int{8, 8}, []float64{1, 1}, kernel(t, desc), 1, 1)
		assert.True(t, errors.Is(err, types.ErrUnsupportedDerivative), desc)
	}
	k := kernel(t, "bspline:d=3")
	for _, size := range [][]int{{8}, {8, 8, 8, 8}, {8, 1}} {
		_, err := NewMatrix(size, make([]float64, len(size)), k, 1, 1)
		assert.True(t, errors.Is(err, types.ErrSizeMismatch), "%v", size)
	}
	_, err := NewMatrix([]int{8, 8}, []float64{1, 0}, k, 1, 1)
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))

	m, err := NewMatrix([]int{8, 8}, []float64{1, 1}, k, 1, 1)
	require.NoError(t, err)
	_, err = m.Value(utils.NewField(2, 8, 7))
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))
	_, err = m.Value(utils.NewField(3, 8, 8))
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))
	_, err = m.Evaluate(utils.NewField(2, 8, 8), mat.NewVecDense(127, nil))
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))
	_, err = m.Evaluate(utils.NewField(2, 8, 8), nil)
	assert.True(t, errors.Is(err, types.ErrSizeMismatch))
}

func TestSparse(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	for _, tc := range []struct {
		kernel string
		size   []int
		rng    []float64
	}{
		{"bspline:d=3", []int{5, 4}, []float64{4, 3}},
		{"bspline:d=2", []int{4, 3, 3}, []float64{3, 2, 2}},
	} {
		m, err := NewMatrix(tc.size, tc.rng, kernel(t, tc.kernel), 1, 0.3)
		require.NoError(t, err)
		c := randomField(rnd, tc.size...)
		grad := mat.NewVecDense(len(c.Data), nil)
		v, err := m.Evaluate(c, grad)
		require.NoError(t, err)

		q := m.Sparse()
		r, cols := q.Dims()
		assert.Equal(t, len(c.Data), r)
		assert.Equal(t, len(c.Data), cols)
		assert.InDelta(t, v, q.QuadraticForm(c.Data), 1.e-9*math.Abs(v))
		qc := q.MulVec(c.Data)
		for i := range qc {
			assert.InDelta(t, grad.AtVec(i), 2*qc[i], 1.e-9*(1+math.Abs(qc[i])))
			assert.InDelta(t, q.At(0, i), q.At(i, 0), 1.e-12)
		}
	}
}

func TestParallel(t *testing.T) {
	rnd := rand.New(rand.NewSource(23))
	for _, size := range [][]int{{11, 13}, {7, 6, 9}} {
		rng := make([]float64, len(size))
		for a := range rng {
			rng[a] = float64(size[a])
		}
		m, err := NewMatrix(size, rng, kernel(t, "bspline:d=3"), 1, 0.4)
		require.NoError(t, err)
		c := randomField(rnd, size...)
		grad := mat.NewVecDense(len(c.Data), nil)
		v, err := m.Evaluate(c, grad)
		require.NoError(t, err)
		for _, np := range []int{1, 2, 3, 16} {
			pgrad := mat.NewVecDense(len(c.Data), nil)
			pv, err := m.EvaluateParallel(context.Background(), c, pgrad, np)
			require.NoError(t, err)
			assert.InDelta(t, v, pv, 1.e-10*math.Abs(v))
			assert.True(t, mat.EqualApprox(grad, pgrad, 1.e-10))
			vv, err := m.ValueParallel(context.Background(), c, np)
			require.NoError(t, err)
			assert.InDelta(t, v, vv, 1.e-10*math.Abs(v))
		}
	}
	{
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m, err := NewMatrix([]int{8, 8}, []float64{1, 1}, kernel(t, "bspline:d=3"), 1, 1)
		require.NoError(t, err)
		_, err = m.ValueParallel(ctx, utils.NewField(2, 8, 8), 2)
		assert.ErrorIs(t, err, context.Canceled)
	}
}
