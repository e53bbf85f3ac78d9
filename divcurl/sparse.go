package divcurl

import (
	"github.com/gerddie/mia-sub002/utils"
)

// Sparse assembles the symmetric matrix Q with Value(c) = c^T Q c over the
// interleaved coefficients. Its size grows with the square of the stencil
// volume times the grid, so it is meant for small grids and diagnostics.
func (m *Matrix) Sparse() (q utils.CSR) {
	var (
		rank  = len(m.size)
		r     = utils.NewR(m.size...)
		n     = r.N * rank
		dok   = utils.NewDOK(n, n)
		reach = m.kernel.Size() - 1
		ii    = make([]int, rank)
		jj    = make([]int, rank)
		d     = make([]int, rank)
	)
	for i := 0; i < r.N; i++ {
		r.Unravel(i, ii)
		for j := 0; j < r.N; j++ {
			r.Unravel(j, jj)
			near := true
			for a := range d {
				d[a] = ii[a] - jj[a]
				if d[a] < -reach || d[a] > reach {
					near = false
				}
			}
			if !near {
				continue
			}
			cell := m.Cell(d...)
			ri, rj := i*rank, j*rank
			dok.Add(ri, rj, cell.XX)
			dok.Add(ri+1, rj+1, cell.YY)
			dok.Add(ri, rj+1, cell.XY/2)
			dok.Add(ri+1, rj, cell.XY/2)
			if rank == 3 {
				dok.Add(ri+2, rj+2, cell.ZZ)
				dok.Add(ri, rj+2, cell.XZ/2)
				dok.Add(ri+2, rj, cell.XZ/2)
				dok.Add(ri+1, rj+2, cell.YZ/2)
				dok.Add(ri+2, rj+1, cell.YZ/2)
			}
		}
	}
	return dok.ToCSR()
}
