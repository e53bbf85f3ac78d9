package model_fields

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferences(t *testing.T) {
	assert.Equal(t, []string{"gauss2d", "mixed3d", "radial2d", "radial3d"}, Names())
	_, err := Lookup("nothing")
	assert.Error(t, err)

	ref, err := Lookup("mixed3d")
	require.NoError(t, err)
	assert.InDelta(t, ref.GradDiv/4, ref.GradCurl, 1.e-12)
	assert.InDelta(t, 1.25*ref.GradDiv, ref.Penalty(1, 1), 1.e-12)

	gr := Grid{HalfSize: 4, Extent: 2}
	assert.Equal(t, []int{9, 9, 9}, gr.Size(3))
	assert.Equal(t, []float64{4, 4}, gr.Range(2))
	assert.Equal(t, -2., gr.Coordinate(0))
	assert.Equal(t, 0., gr.Coordinate(4))
	assert.Equal(t, 2., gr.Coordinate(8))

	f := ref.Sample(gr)
	assert.Equal(t, 3, f.NComp)
	// at (1, 0.5, 0): x g, y g, 0
	g := math.Exp(-1.25)
	assert.InDelta(t, g, f.At(0, 6, 5, 4), 1.e-15)
	assert.InDelta(t, 0.5*g, f.At(1, 6, 5, 4), 1.e-15)
	assert.Equal(t, 0., f.At(2, 6, 5, 4))
}
