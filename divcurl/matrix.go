package divcurl

import (
	"fmt"
	"log/slog"

	"github.com/gerddie/mia-sub002/spline"
	"github.com/gerddie/mia-sub002/types"
	"github.com/gerddie/mia-sub002/utils"
)

// Cell holds the coupling weights between the coefficients of two grid
// points at a fixed offset. XY couples the x component of the first point
// with the y component of the second.
type Cell struct {
	XX, YY, ZZ float64
	XY, XZ, YZ float64
}

/*
Matrix is the precomputed stencil of the penalty

	P(V) = int wdiv |grad div V|^2 + wcurl sum_i |grad (curl V)_i|^2

for a 2-D or 3-D displacement field V given by spline coefficients on a
regular grid. P is the quadratic form sum_ij c_i^T C(i-j) c_j, and the stencil
stores C for every offset within the kernel support.
*/
type Matrix struct {
	size        []int
	rng         []float64
	kernel      *spline.Kernel
	wdiv, wcurl float64

	span   int
	width  int
	cells  []Cell
	cache  *IntegralCache
	builds int
	logger *slog.Logger
}

type Option func(m *Matrix)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Matrix) { m.logger = logger }
}

func NewMatrix(size []int, rng []float64, k *spline.Kernel, wdiv, wcurl float64,
	opts ...Option) (m *Matrix, err error) {
	m = &Matrix{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err = m.Reset(size, rng, k, wdiv, wcurl); err != nil {
		return nil, err
	}
	return
}

// Reset rebuilds the stencil for new parameters. Parameters equal to the
// current ones leave the stencil untouched.
func (m *Matrix) Reset(size []int, rng []float64, k *spline.Kernel, wdiv, wcurl float64) (err error) {
	if m.cells != nil && m.sameParameters(size, rng, k, wdiv, wcurl) {
		return
	}
	if err = checkParameters(size, rng, k); err != nil {
		return
	}
	m.size = append([]int(nil), size...)
	m.rng = append([]float64(nil), rng...)
	m.kernel = k
	m.wdiv, m.wcurl = wdiv, wcurl
	if m.cache == nil || m.cache.Kernel().Type() != k.Type() {
		m.cache = NewIntegralCache(k)
	}
	m.build()
	return
}

func checkParameters(size []int, rng []float64, k *spline.Kernel) error {
	if len(size) != 2 && len(size) != 3 {
		return fmt.Errorf("%w: divcurl needs a 2-D or 3-D grid, got rank %d", types.ErrSizeMismatch, len(size))
	}
	if len(rng) != len(size) {
		return fmt.Errorf("%w: %d ranges for a rank %d grid", types.ErrSizeMismatch, len(rng), len(size))
	}
	for a := range size {
		if size[a] < 2 || !(rng[a] > 0) {
			return fmt.Errorf("%w: axis %d has size %d and range %v", types.ErrSizeMismatch, a, size[a], rng[a])
		}
	}
	if k.MaxDerivative() < MaxOrder {
		return fmt.Errorf("%w: divcurl needs second derivatives, kernel %s has %d",
			types.ErrUnsupportedDerivative, k, k.MaxDerivative())
	}
	return nil
}

func (m *Matrix) sameParameters(size []int, rng []float64, k *spline.Kernel, wdiv, wcurl float64) bool {
	if len(size) != len(m.size) || len(rng) != len(m.rng) {
		return false
	}
	for a := range size {
		if size[a] != m.size[a] || rng[a] != m.rng[a] {
			return false
		}
	}
	return k.Type() == m.kernel.Type() && wdiv == m.wdiv && wcurl == m.wcurl
}

func (m *Matrix) Rank() int                       { return len(m.size) }
func (m *Matrix) Size() []int                     { return append([]int(nil), m.size...) }
func (m *Matrix) Kernel() *spline.Kernel          { return m.kernel }
func (m *Matrix) Weights() (wdiv, wcurl float64) { return m.wdiv, m.wcurl }

// Builds counts how often the stencil was computed.
func (m *Matrix) Builds() int { return m.builds }

func (m *Matrix) Cache() *IntegralCache { return m.cache }

// Span is the largest absolute offset stored in the stencil.
func (m *Matrix) Span() int { return m.span }

// Cell returns the weights for the offset d = i - j; offsets outside the
// stencil give the zero cell.
func (m *Matrix) Cell(d ...int) Cell {
	idx, ok := m.cellIndex(d...)
	if !ok {
		return Cell{}
	}
	return m.cells[idx]
}

func (m *Matrix) cellIndex(d ...int) (idx int, ok bool) {
	for a := len(d) - 1; a >= 0; a-- {
		if d[a] < -m.span || d[a] > m.span {
			return 0, false
		}
		idx = idx*m.width + d[a] + m.span
	}
	return idx, true
}

func (m *Matrix) build() {
	var (
		rank  = len(m.size)
		h     = make([]float64, rank)
		scale = 1.
	)
	for a := range h {
		h[a] = float64(m.size[a]-1) / m.rng[a]
		scale /= h[a]
	}
	m.span = m.kernel.Size()
	m.width = 2*m.span + 1
	nCells := 1
	for range rank {
		nCells *= m.width
	}
	m.cells = make([]Cell, nCells)
	m.builds++

	// r[a][p][q] is the scaled integral along axis a for the current offset
	var r [3][MaxOrder + 1][MaxOrder + 1]float64
	fill := func(a, d int) {
		for p := 0; p <= MaxOrder; p++ {
			for q := 0; q <= MaxOrder; q++ {
				r[a][p][q] = m.cache.Get(p, q, d) * utils.POW(h[a], p+q)
			}
		}
	}
	var (
		wd, wr = m.wdiv, m.wcurl
		wdelta = 2 * (wd - wr)
	)
	if rank == 2 {
		for dy := -m.span; dy <= m.span; dy++ {
			fill(1, dy)
			for dx := -m.span; dx <= m.span; dx++ {
				fill(0, dx)
				x, y := &r[0], &r[1]
				idx, _ := m.cellIndex(dx, dy)
				m.cells[idx] = Cell{
					XX: scale * (wd*(x[2][2]*y[0][0]+x[1][1]*y[1][1]) + wr*(x[1][1]*y[1][1]+x[0][0]*y[2][2])),
					YY: scale * (wd*(x[0][0]*y[2][2]+x[1][1]*y[1][1]) + wr*(x[2][2]*y[0][0]+x[1][1]*y[1][1])),
					XY: scale * wdelta * (x[2][1]*y[0][1] + x[1][0]*y[1][2]),
				}
			}
		}
	} else {
		for dz := -m.span; dz <= m.span; dz++ {
			fill(2, dz)
			for dy := -m.span; dy <= m.span; dy++ {
				fill(1, dy)
				for dx := -m.span; dx <= m.span; dx++ {
					fill(0, dx)
					idx, _ := m.cellIndex(dx, dy, dz)
					m.cells[idx] = cell3D(&r[0], &r[1], &r[2], wd, wr, scale)
				}
			}
		}
	}
	m.logger.Debug("divcurl stencil built",
		"kernel", m.kernel.String(), "size", m.size, "range", m.rng,
		"scale", h, "span", m.span, "wdiv", wd, "wcurl", wr)
}

type integrals = [MaxOrder + 1][MaxOrder + 1]float64

func cell3D(x, y, z *integrals, wd, wr, scale float64) Cell {
	var (
		wdelta = 2 * (wd - wr)
	)
	return Cell{
		XX: scale * (wd*(x[2][2]*y[0][0]*z[0][0]+x[1][1]*y[1][1]*z[0][0]+x[1][1]*y[0][0]*z[1][1]) +
			wr*(x[1][1]*y[1][1]*z[0][0]+x[1][1]*y[0][0]*z[1][1]+x[0][0]*y[2][2]*z[0][0]+
				x[0][0]*y[0][0]*z[2][2]+2*x[0][0]*y[1][1]*z[1][1])),
		YY: scale * (wd*(x[0][0]*y[2][2]*z[0][0]+x[1][1]*y[1][1]*z[0][0]+x[0][0]*y[1][1]*z[1][1]) +
			wr*(x[1][1]*y[1][1]*z[0][0]+x[0][0]*y[1][1]*z[1][1]+x[2][2]*y[0][0]*z[0][0]+
				x[0][0]*y[0][0]*z[2][2]+2*x[1][1]*y[0][0]*z[1][1])),
		ZZ: scale * (wd*(x[0][0]*y[0][0]*z[2][2]+x[1][1]*y[0][0]*z[1][1]+x[0][0]*y[1][1]*z[1][1]) +
			wr*(x[1][1]*y[0][0]*z[1][1]+x[0][0]*y[1][1]*z[1][1]+x[2][2]*y[0][0]*z[0][0]+
				x[0][0]*y[2][2]*z[0][0]+2*x[1][1]*y[1][1]*z[0][0])),
		XY: scale * wdelta * (x[2][1]*y[0][1]*z[0][0] + x[1][0]*y[1][2]*z[0][0] + x[1][0]*y[0][1]*z[1][1]),
		XZ: scale * wdelta * (x[2][1]*y[0][0]*z[0][1] + x[1][0]*y[1][1]*z[0][1] + x[1][0]*y[0][0]*z[1][2]),
		YZ: scale * wdelta * (x[1][1]*y[1][0]*z[0][1] + x[0][0]*y[2][1]*z[0][1] + x[0][0]*y[1][0]*z[1][2]),
	}
}
