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
	"math/rand"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/gerddie/mia-sub002/InputParameters"
	"github.com/gerddie/mia-sub002/divcurl"
	"github.com/gerddie/mia-sub002/model_fields"
	"github.com/gerddie/mia-sub002/regularize"
	"github.com/gerddie/mia-sub002/spline"
)

// SmoothCmd represents the smooth command
var SmoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Divcurl regularised fit of a noisy reference field",
	Long: `
Adds Gaussian noise to the spline coefficients of a reference field and fits
new coefficients that trade closeness against the divcurl penalty,

mia-spline smooth -I params.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := readParameters(cmd)
		if err != nil {
			return err
		}
		ip.Print()
		_, err = RunSmooth(ip)
		return err
	},
}

func init() {
	rootCmd.AddCommand(SmoothCmd)
	addInputFlag(SmoothCmd)
}

type SmoothResult struct {
	NoisyPenalty, FitPenalty   float64
	NoisyDistance, FitDistance float64 // distance to the clean coefficients
	Iterations                 int
}

func RunSmooth(ip *InputParameters.SplineParameters) (res SmoothResult, err error) {
	var (
		ref model_fields.Reference
		k   *spline.Kernel
		m   *divcurl.Matrix
		gr  = model_fields.Grid{HalfSize: ip.HalfSize, Extent: ip.Extent}
		rnd = rand.New(rand.NewSource(ip.Seed))
	)
	if ref, err = model_fields.Lookup(ip.Field); err != nil {
		return
	}
	if k, err = spline.ParseKernel(ip.Kernel); err != nil {
		return
	}
	clean := ref.Sample(gr)
	spline.Prefilter(k, clean)
	noisy := clean.Copy()
	for i := range noisy.Data {
		noisy.Data[i] += ip.Noise * rnd.NormFloat64()
	}
	if m, err = divcurl.NewMatrix(gr.Size(ref.Rank), gr.Range(ref.Rank), k,
		ip.DivWeight, ip.CurlWeight); err != nil {
		return
	}
	s := regularize.DefaultSettings()
	s.Lambda = ip.Lambda
	if ip.MaxIterations > 0 {
		s.MaxIterations = ip.MaxIterations
	}
	fit, opt, err := regularize.Fit(noisy, m, s)
	if err != nil {
		return
	}
	if res.NoisyPenalty, err = m.Value(noisy); err != nil {
		return
	}
	if res.FitPenalty, err = m.Value(fit); err != nil {
		return
	}
	res.NoisyDistance = floats.Distance(noisy.Data, clean.Data, 2)
	res.FitDistance = floats.Distance(fit.Data, clean.Data, 2)
	res.Iterations = opt.Stats.MajorIterations
	fmt.Printf("%12.6e\t= Noisy Penalty\n", res.NoisyPenalty)
	fmt.Printf("%12.6e\t= Fit Penalty\n", res.FitPenalty)
	fmt.Printf("%12.6e\t= Noisy Distance\n", res.NoisyDistance)
	fmt.Printf("%12.6e\t= Fit Distance\n", res.FitDistance)
	fmt.Printf("[%d]\t\t= Iterations (%v)\n", res.Iterations, opt.Status)
	return
}
