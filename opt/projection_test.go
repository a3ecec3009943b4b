package opt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectionRoundTrip(t *testing.T) {
	proj, err := NewProjection([]float64{1, 2, 3, 4}, []bool{false, true, false, true})
	require.NoError(t, err)
	require.Equal(t, 2, proj.FreeCount())

	free := proj.Project([]float64{10, 20, 30, 40})
	require.Equal(t, []float64{10, 30}, free)

	full := proj.Include(free)
	require.Equal(t, []float64{10, 2, 30, 4}, full)
}

func TestProjectionNothingFixed(t *testing.T) {
	proj, err := NewProjection([]float64{1, 2}, []bool{false, false})
	require.NoError(t, err)
	require.Equal(t, 2, proj.FreeCount())
	require.Equal(t, []float64{5, 6}, proj.Project([]float64{5, 6}))
	require.Equal(t, []float64{5, 6}, proj.Include([]float64{5, 6}))
}

func TestProjectionAllFixed(t *testing.T) {
	proj, err := NewProjection([]float64{1, 2}, []bool{true, true})
	require.NoError(t, err)
	require.Zero(t, proj.FreeCount())
	require.Empty(t, proj.Project([]float64{5, 6}))
	require.Equal(t, []float64{1, 2}, proj.Include(nil))
}

func TestProjectionSizeMismatch(t *testing.T) {
	_, err := NewProjection([]float64{1}, []bool{true, false})
	require.Error(t, err)
}

func TestProjectedCost(t *testing.T) {
	cost := quadratic{center: []float64{1, 2, 3}}
	proj, err := NewProjection([]float64{0, 2, 0}, []bool{false, true, false})
	require.NoError(t, err)

	projected := NewProjectedCost(cost, proj)

	// the fixed middle component sits exactly at the center, so only the
	// free components contribute
	require.InDelta(t, 2.0, projected.Value([]float64{0, 2}), 1e-15)
	require.Equal(t, []float64{-1, 0, -1}, projected.Values([]float64{0, 2}))
}
