package utils

// R describes the index space of a dense grid with the first axis varying
// fastest and enumerates the 1-D lines along any axis.
type R struct {
	Size    []int
	Strides []int
	N       int
}

func NewR(size ...int) (r R) {
	r = R{
		Size:    append([]int(nil), size...),
		Strides: make([]int, len(size)),
		N:       1,
	}
	for i, n := range size {
		r.Strides[i] = r.N
		r.N *= n
	}
	return
}

// Unravel converts a flat point index into per axis indices.
func (r R) Unravel(p int, idx []int) {
	for i, n := range r.Size {
		idx[i] = p % n
		p /= n
	}
}

// LineStarts returns the flat point index of the first sample of every line
// running along axis.
func (r R) LineStarts(axis int) (starts []int) {
	var (
		nLines = r.N / r.Size[axis]
		idx    = make([]int, len(r.Size))
	)
	starts = make([]int, 0, nLines)
	for p := 0; p < r.N; p++ {
		r.Unravel(p, idx)
		if idx[axis] == 0 {
			starts = append(starts, p)
		}
	}
	return
}

// Gather copies the line of component comp starting at point p0 along axis
// into buf.
func (r R) Gather(f *Field, axis, comp, p0 int, buf []float64) {
	var (
		step = r.Strides[axis] * f.NComp
		off  = p0*f.NComp + comp
	)
	for i := 0; i < r.Size[axis]; i++ {
		buf[i] = f.Data[off]
		off += step
	}
}

func (r R) Scatter(f *Field, axis, comp, p0 int, buf []float64) {
	var (
		step = r.Strides[axis] * f.NComp
		off  = p0*f.NComp + comp
	)
	for i := 0; i < r.Size[axis]; i++ {
		f.Data[off] = buf[i]
		off += step
	}
}
