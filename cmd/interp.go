/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/gerddie/mia-sub002/InputParameters"
	"github.com/gerddie/mia-sub002/interp"
	"github.com/gerddie/mia-sub002/model_fields"
	"github.com/gerddie/mia-sub002/spline"
	"github.com/gerddie/mia-sub002/types"
)

// InterpCmd represents the interp command
var InterpCmd = &cobra.Command{
	Use:   "interp",
	Short: "Interpolate a sampled reference field between the grid points",
	Long: `
Samples a reference vector field and compares interpolated values along the
grid diagonal with the analytic field,

mia-spline interp -I params.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := readParameters(cmd)
		if err != nil {
			return err
		}
		ip.Print()
		_, err = RunInterp(ip)
		return err
	},
}

func init() {
	rootCmd.AddCommand(InterpCmd)
	addInputFlag(InterpCmd)
}

// RunInterp returns the largest deviation from the analytic field over all
// probes and components.
func RunInterp(ip *InputParameters.SplineParameters) (maxErr float64, err error) {
	var (
		ref  model_fields.Reference
		k    *spline.Kernel
		bc   types.BoundaryCondition
		b    spline.Boundary
		gr   = model_fields.Grid{HalfSize: ip.HalfSize, Extent: ip.Extent}
		opts []interp.Option
	)
	if ref, err = model_fields.Lookup(ip.Field); err != nil {
		return
	}
	if k, err = spline.ParseKernel(ip.Kernel); err != nil {
		return
	}
	if bc, err = types.ParseBoundaryCondition(ip.Boundary); err != nil {
		return
	}
	if b, err = spline.NewBoundary(k, bc); err != nil {
		return
	}
	opts = append(opts, interp.WithBoundary(b))
	if ip.IntegerOutput {
		opts = append(opts, interp.WithIntegerOutput())
	}
	var (
		ipol  = interp.New(k, ref.Sample(gr), opts...)
		n     = float64(2 * ip.HalfSize)
		idx   = make([]float64, ref.Rank)
		x     = make([]float64, ref.Rank)
		want  = make([]float64, ref.Rank)
		delta = make([]float64, ref.Rank)
	)
	fmt.Printf("%10s %14s %14s %10s\n", "Index", "|Interpolated|", "|Analytic|", "Error")
	for p := 0; p < ip.Probes; p++ {
		pos := (float64(p) + 0.5) * n / float64(ip.Probes)
		for a := range idx {
			idx[a] = pos
			x[a] = gr.Coordinate(pos)
		}
		got := ipol.ValueAt(idx...)
		ref.Value(x, want)
		floats.SubTo(delta, got, want)
		e := floats.Norm(delta, math.Inf(1))
		maxErr = math.Max(maxErr, e)
		fmt.Printf("%10.4f %14.6e %14.6e %10.2e\n", pos, floats.Norm(got, 2), floats.Norm(want, 2), e)
	}
	if !k.IsDirect() {
		var g []float64
		center := make([]float64, ref.Rank)
		for a := range center {
			center[a] = n / 2
		}
		if g, err = ipol.GradientAt(center...); err != nil {
			return
		}
		fmt.Printf("%14.6e\t= Jacobian norm at the center (index units)\n", floats.Norm(g, 2))
	}
	fmt.Printf("%14.6e\t= Max Error\n", maxErr)
	return
}
