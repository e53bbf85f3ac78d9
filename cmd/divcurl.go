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
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/gerddie/mia-sub002/InputParameters"
	"github.com/gerddie/mia-sub002/divcurl"
	"github.com/gerddie/mia-sub002/model_fields"
	"github.com/gerddie/mia-sub002/spline"
	"github.com/gerddie/mia-sub002/utils"
)

// DivcurlCmd represents the divcurl command
var DivcurlCmd = &cobra.Command{
	Use:   "divcurl",
	Short: "Divcurl penalty of a sampled reference field",
	Long: `
Samples a reference vector field, converts it into spline coefficients and
compares the divcurl penalty with its closed form value,

mia-spline divcurl -I params.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := readParameters(cmd)
		if err != nil {
			return err
		}
		ip.Print()
		_, err = RunDivcurl(commandContext(cmd), ip)
		return err
	},
}

func init() {
	rootCmd.AddCommand(DivcurlCmd)
	addInputFlag(DivcurlCmd)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type DivcurlResult struct {
	Penalty, Analytic, GradientNorm float64
}

func RunDivcurl(ctx context.Context, ip *InputParameters.SplineParameters) (res DivcurlResult, err error) {
	var (
		ref    model_fields.Reference
		k      *spline.Kernel
		m      *divcurl.Matrix
		gr     = model_fields.Grid{HalfSize: ip.HalfSize, Extent: ip.Extent}
		logger = slog.Default()
	)
	if ref, err = model_fields.Lookup(ip.Field); err != nil {
		return
	}
	if k, err = spline.ParseKernel(ip.Kernel); err != nil {
		return
	}
	coeffs := ref.Sample(gr)
	spline.Prefilter(k, coeffs)
	start := time.Now()
	if m, err = divcurl.NewMatrix(gr.Size(ref.Rank), gr.Range(ref.Rank), k,
		ip.DivWeight, ip.CurlWeight, divcurl.WithLogger(logger)); err != nil {
		return
	}
	logger.Debug("stencil ready", "elapsed", time.Since(start))

	grad := mat.NewVecDense(len(coeffs.Data), nil)
	start = time.Now()
	if res.Penalty, err = m.EvaluateParallel(ctx, coeffs, grad, ip.ParallelDegree); err != nil {
		return
	}
	logger.Debug("penalty evaluated", "elapsed", time.Since(start), "threads", ip.ParallelDegree, utils.MemUsage())
	res.Analytic = ref.Penalty(ip.DivWeight, ip.CurlWeight)
	res.GradientNorm = mat.Norm(grad, 2)
	fmt.Printf("%12.6f\t= Penalty\n", res.Penalty)
	fmt.Printf("%12.6f\t= Analytic\n", res.Analytic)
	if res.Analytic != 0 {
		fmt.Printf("%12.2e\t= Relative Error\n", math.Abs(res.Penalty-res.Analytic)/res.Analytic)
	}
	fmt.Printf("%12.6e\t= Gradient Norm\n", res.GradientNorm)
	return
}
