package divcurl

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/gerddie/mia-sub002/types"
	"github.com/gerddie/mia-sub002/utils"
)

// Value returns the penalty of the spline coefficients c, which must have
// one component per axis on the grid the stencil was built for.
func (m *Matrix) Value(c *utils.Field) (v float64, err error) {
	if err = m.checkField(c); err != nil {
		return
	}
	v = m.evalRange(c, nil, 0, m.size[len(m.size)-1])
	return
}

// Evaluate returns the penalty of c and overwrites grad with its gradient
// with respect to every coefficient, in the interleaved layout of c.
func (m *Matrix) Evaluate(c *utils.Field, grad *mat.VecDense) (v float64, err error) {
	var (
		g []float64
	)
	if err = m.checkField(c); err != nil {
		return
	}
	if g, err = m.gradientBuffer(c, grad); err != nil {
		return
	}
	v = m.evalRange(c, g, 0, m.size[len(m.size)-1])
	m.storeGradient(g, grad)
	return
}

// ValueParallel splits the outermost axis into np slabs evaluated
// concurrently. The slab sums are added in slab order.
func (m *Matrix) ValueParallel(ctx context.Context, c *utils.Field, np int) (v float64, err error) {
	if err = m.checkField(c); err != nil {
		return
	}
	return m.parallel(ctx, c, nil, np)
}

// EvaluateParallel is Evaluate split into np slabs; every worker writes
// only the gradient entries of the points in its own slab.
func (m *Matrix) EvaluateParallel(ctx context.Context, c *utils.Field, grad *mat.VecDense,
	np int) (v float64, err error) {
	var (
		g []float64
	)
	if err = m.checkField(c); err != nil {
		return
	}
	if g, err = m.gradientBuffer(c, grad); err != nil {
		return
	}
	if v, err = m.parallel(ctx, c, g, np); err != nil {
		return
	}
	m.storeGradient(g, grad)
	return
}

func (m *Matrix) parallel(ctx context.Context, c *utils.Field, g []float64, np int) (v float64, err error) {
	var (
		pm      = utils.NewPartitionMap(np, m.size[len(m.size)-1])
		partial = make([]float64, pm.ParallelDegree)
	)
	eg, ctx := errgroup.WithContext(ctx)
	for bn := 0; bn < pm.ParallelDegree; bn++ {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			kMin, kMax := pm.GetBucketRange(bn)
			partial[bn] = m.evalRange(c, g, kMin, kMax)
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return
	}
	for _, p := range partial {
		v += p
	}
	return
}

func (m *Matrix) checkField(c *utils.Field) error {
	if c.Rank() != len(m.size) || c.NComp != len(m.size) {
		return fmt.Errorf("%w: coefficient field of rank %d with %d components, stencil rank %d",
			types.ErrSizeMismatch, c.Rank(), c.NComp, len(m.size))
	}
	for a := range m.size {
		if c.Size[a] != m.size[a] {
			return fmt.Errorf("%w: coefficient field size %v, stencil size %v",
				types.ErrSizeMismatch, c.Size, m.size)
		}
	}
	return nil
}

// gradientBuffer returns the storage to accumulate into, the vector's own
// data when it is contiguous.
func (m *Matrix) gradientBuffer(c *utils.Field, grad *mat.VecDense) (g []float64, err error) {
	if grad == nil || grad.Len() != len(c.Data) {
		n := 0
		if grad != nil {
			n = grad.Len()
		}
		err = fmt.Errorf("%w: gradient of length %d for %d coefficients", types.ErrSizeMismatch, n, len(c.Data))
		return
	}
	if raw := grad.RawVector(); raw.Inc == 1 {
		g = raw.Data[:len(c.Data)]
	} else {
		g = make([]float64, len(c.Data))
	}
	for i := range g {
		g[i] = 0
	}
	return
}

func (m *Matrix) storeGradient(g []float64, grad *mat.VecDense) {
	if grad.RawVector().Inc != 1 {
		for i, val := range g {
			grad.SetVec(i, val)
		}
	}
}

// evalRange sums the penalty over the points whose outermost index lies in
// [k0, k1), adding their gradient entries to g when g is not nil.
func (m *Matrix) evalRange(c *utils.Field, g []float64, k0, k1 int) float64 {
	if len(m.size) == 2 {
		return m.eval2D(c.Data, g, k0, k1)
	}
	return m.eval3D(c.Data, g, k0, k1)
}

func (m *Matrix) eval2D(c, g []float64, y0, y1 int) (sum float64) {
	var (
		nx, ny = m.size[0], m.size[1]
		reach  = m.kernel.Size() - 1
		cross  = m.wdiv != m.wcurl
	)
	for yi := y0; yi < y1; yi++ {
		for xi := 0; xi < nx; xi++ {
			var (
				i      = 2 * (xi + nx*yi)
				ai, bi = c[i], c[i+1]
				ga, gb float64
			)
			for yj := max(0, yi-reach); yj <= min(ny-1, yi+reach); yj++ {
				row := (yi-yj+m.span)*m.width + m.span
				for xj := max(0, xi-reach); xj <= min(nx-1, xi+reach); xj++ {
					var (
						cell   = &m.cells[row+xi-xj]
						j      = 2 * (xj + nx*yj)
						aj, bj = c[j], c[j+1]
					)
					sum += ai*cell.XX*aj + bi*cell.YY*bj
					if cross {
						sum += ai * cell.XY * bj
					}
					if g != nil {
						ga += 2 * cell.XX * aj
						gb += 2 * cell.YY * bj
						if cross {
							ga += cell.XY * bj
							gb += cell.XY * aj
						}
					}
				}
			}
			if g != nil {
				g[i] += ga
				g[i+1] += gb
			}
		}
	}
	return
}

func (m *Matrix) eval3D(c, g []float64, z0, z1 int) (sum float64) {
	var (
		nx, ny, nz = m.size[0], m.size[1], m.size[2]
		reach      = m.kernel.Size() - 1
		cross      = m.wdiv != m.wcurl
	)
	for zi := z0; zi < z1; zi++ {
		for yi := 0; yi < ny; yi++ {
			for xi := 0; xi < nx; xi++ {
				var (
					i          = 3 * (xi + nx*(yi+ny*zi))
					ai, bi, ci = c[i], c[i+1], c[i+2]
					ga, gb, gc float64
				)
				for zj := max(0, zi-reach); zj <= min(nz-1, zi+reach); zj++ {
					for yj := max(0, yi-reach); yj <= min(ny-1, yi+reach); yj++ {
						row := ((zi-zj+m.span)*m.width+yi-yj+m.span)*m.width + m.span
						for xj := max(0, xi-reach); xj <= min(nx-1, xi+reach); xj++ {
							var (
								cell       = &m.cells[row+xi-xj]
								j          = 3 * (xj + nx*(yj+ny*zj))
								aj, bj, cj = c[j], c[j+1], c[j+2]
							)
							sum += ai*cell.XX*aj + bi*cell.YY*bj + ci*cell.ZZ*cj
							if cross {
								sum += ai*cell.XY*bj + ai*cell.XZ*cj + bi*cell.YZ*cj
							}
							if g != nil {
								ga += 2 * cell.XX * aj
								gb += 2 * cell.YY * bj
								gc += 2 * cell.ZZ * cj
								if cross {
									ga += cell.XY*bj + cell.XZ*cj
									gb += cell.XY*aj + cell.YZ*cj
									gc += cell.XZ*aj + cell.YZ*bj
								}
							}
						}
					}
				}
				if g != nil {
					g[i] += ga
					g[i+1] += gb
					g[i+2] += gc
				}
			}
		}
	}
	return
}
