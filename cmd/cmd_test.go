package cmd

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerddie/mia-sub002/InputParameters"
	"github.com/gerddie/mia-sub002/types"
)

func TestReadParameters(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte(`
Title: Test Case
Kernel: bspline:d=5
Field: gauss2d
HalfSize: 6
`), 0o644))
	cmd := &cobra.Command{}
	addInputFlag(cmd)
	require.NoError(t, cmd.Flags().Set("inputConditionsFile", fileName))
	ip, err := readParameters(cmd)
	require.NoError(t, err)
	assert.Equal(t, "bspline:d=5", ip.Kernel)
	assert.Equal(t, "gauss2d", ip.Field)
	assert.Equal(t, 6, ip.HalfSize)
	assert.Equal(t, 4., ip.Extent)

	require.NoError(t, cmd.Flags().Set("inputConditionsFile", filepath.Join(t.TempDir(), "missing.yaml")))
	_, err = readParameters(cmd)
	assert.Error(t, err)
}

func TestRunDivcurl(t *testing.T) {
	ip := InputParameters.NewSplineParameters("bspline:d=3")
	ip.HalfSize = 8
	ip.ParallelDegree = 3
	res, err := RunDivcurl(context.Background(), ip)
	require.NoError(t, err)
	assert.InDelta(t, 6*math.Pi, res.Analytic, 1.e-12)
	assert.InEpsilon(t, res.Analytic, res.Penalty, 0.05)
	assert.Greater(t, res.GradientNorm, 0.)

	ip.Field = "nothing"
	_, err = RunDivcurl(context.Background(), ip)
	assert.Error(t, err)
	ip.Field = "radial2d"
	ip.Kernel = "omoms:d=3"
	_, err = RunDivcurl(context.Background(), ip)
	assert.Error(t, err)
}

func TestRunInterp(t *testing.T) {
	ip := InputParameters.NewSplineParameters("bspline:d=3")
	ip.Field = "gauss2d"
	maxErr, err := RunInterp(ip)
	require.NoError(t, err)
	assert.Less(t, maxErr, 1.e-2)

	ip.Kernel = "bspline:d=0"
	_, err = RunInterp(ip)
	require.NoError(t, err)

	ip.Kernel = "spline:d=3"
	_, err = RunInterp(ip)
	assert.Error(t, err)

	ip.Kernel = "bspline:d=3"
	for _, bc := range []string{"repeat", "zero"} {
		ip.Boundary = bc
		maxErr, err = RunInterp(ip)
		require.NoError(t, err, bc)
		assert.Less(t, maxErr, 1.e-2, bc)
	}
	ip.Kernel = "bspline:d=5"
	_, err = RunInterp(ip)
	assert.True(t, errors.Is(err, types.ErrInvalidKernelParameter))
	ip.Boundary = "wrap"
	_, err = RunInterp(ip)
	assert.True(t, errors.Is(err, types.ErrInvalidKernelParameter))
}

func TestRunSmooth(t *testing.T) {
	ip := InputParameters.NewSplineParameters("bspline:d=3")
	ip.HalfSize = 5
	ip.Extent = 2.5
	ip.Field = "gauss2d"
	ip.DivWeight, ip.CurlWeight = 1, 1
	ip.Noise = 0.1
	ip.Lambda = 0.05
	res, err := RunSmooth(ip)
	require.NoError(t, err)
	assert.Less(t, res.FitPenalty, res.NoisyPenalty)
	assert.Greater(t, res.Iterations, 0)
}
