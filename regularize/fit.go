package regularize

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/gerddie/mia-sub002/divcurl"
	"github.com/gerddie/mia-sub002/utils"
)

type Settings struct {
	Lambda            float64 // weight of the divcurl penalty
	MaxIterations     int
	GradientThreshold float64
}

func DefaultSettings() Settings {
	return Settings{
		Lambda:            1,
		MaxIterations:     500,
		GradientThreshold: 1.e-8,
	}
}

/*
Fit smooths the spline coefficients target by minimising

	|c - target|^2 + Lambda P(c)

where P is the divcurl penalty of m. The target is not modified.
*/
func Fit(target *utils.Field, m *divcurl.Matrix, s Settings) (c *utils.Field, res *optimize.Result, err error) {
	var (
		n       = len(target.Data)
		work    = target.Copy()
		evalErr error
	)
	if _, err = m.Value(target); err != nil {
		return
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			copy(work.Data, x)
			p, err := m.Value(work)
			if err != nil {
				evalErr = err
			}
			d := floats.Distance(x, target.Data, 2)
			return d*d + s.Lambda*p
		},
		Grad: func(grad, x []float64) {
			copy(work.Data, x)
			if _, err := m.Evaluate(work, mat.NewVecDense(n, grad)); err != nil {
				evalErr = err
			}
			for i := range grad {
				grad[i] = s.Lambda*grad[i] + 2*(x[i]-target.Data[i])
			}
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.MaxIterations,
		GradientThreshold: s.GradientThreshold,
	}
	x0 := append([]float64(nil), target.Data...)
	if res, err = optimize.Minimize(problem, x0, settings, &optimize.LBFGS{}); err != nil {
		err = fmt.Errorf("penalised fit: %w", err)
		return
	}
	if evalErr != nil {
		err = evalErr
		return
	}
	c = target.Copy()
	copy(c.Data, res.X)
	return
}
