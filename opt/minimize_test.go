package opt

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// quadratic is a least-squares bowl centered away from the origin.
type quadratic struct {
	center []float64
}

func (q quadratic) Value(x []float64) float64 {
	r := q.Values(x)
	return floats.Dot(r, r)
}

func (q quadratic) Values(x []float64) []float64 {
	r := make([]float64, len(x))
	for i := range x {
		r[i] = x[i] - q.center[i]
	}
	return r
}

// lineFit holds samples of a straight line; the residuals compare a candidate
// intercept and slope against them.
type lineFit struct {
	ts, ys []float64
}

func (l lineFit) Value(x []float64) float64 {
	r := l.Values(x)
	return floats.Dot(r, r)
}

func (l lineFit) Values(x []float64) []float64 {
	r := make([]float64, len(l.ts))
	for i, ti := range l.ts {
		r[i] = x[0] + x[1]*ti - l.ys[i]
	}
	return r
}

type rejectAll struct{}

func (rejectAll) Test([]float64) bool { return false }

func TestNelderMeadMinimizesQuadratic(t *testing.T) {
	cost := quadratic{center: []float64{1.5, -2.0, 0.5}}
	problem := NewProblem(cost, NoConstraint{}, []float64{0, 0, 0})

	reason, err := NelderMead{}.Minimize(problem, DefaultEndCriteria())
	require.NoError(t, err)
	require.Equal(t, StationaryFunctionValue, reason)

	x := problem.CurrentValue()
	for i, c := range cost.center {
		require.InDelta(t, c, x[i], 1e-6)
	}
}

func TestNelderMeadIterationCap(t *testing.T) {
	cost := quadratic{center: []float64{1.5, -2.0}}
	problem := NewProblem(cost, NoConstraint{}, []float64{40, 40})

	criteria := DefaultEndCriteria()
	criteria.MaxIterations = 1

	reason, err := NelderMead{}.Minimize(problem, criteria)
	require.NoError(t, err)
	require.Equal(t, MaxIterations, reason)
}

func TestNelderMeadEmptyGuess(t *testing.T) {
	problem := NewProblem(quadratic{}, NoConstraint{}, nil)
	_, err := NelderMead{}.Minimize(problem, DefaultEndCriteria())
	require.Error(t, err)
}

func TestNelderMeadInfeasibleGuess(t *testing.T) {
	problem := NewProblem(quadratic{center: []float64{1}}, rejectAll{}, []float64{0})
	_, err := NelderMead{}.Minimize(problem, DefaultEndCriteria())
	require.ErrorIs(t, err, errInfeasibleGuess)
}

func TestLevenbergMarquardtRecoversLine(t *testing.T) {
	intercept, slope := 0.7, -0.3
	fit := lineFit{}
	for i := 0; i < 10; i++ {
		ti := float64(i)
		fit.ts = append(fit.ts, ti)
		fit.ys = append(fit.ys, intercept+slope*ti)
	}
	problem := NewProblem(fit, NoConstraint{}, []float64{0, 0})

	reason, err := LevenbergMarquardt{}.Minimize(problem, DefaultEndCriteria())
	require.NoError(t, err)
	require.Contains(t,
		[]Reason{StationaryPoint, StationaryFunctionValue, ZeroGradientNorm}, reason)

	x := problem.CurrentValue()
	require.InDelta(t, intercept, x[0], 1e-6)
	require.InDelta(t, slope, x[1], 1e-6)
}

func TestLevenbergMarquardtQuadratic(t *testing.T) {
	cost := quadratic{center: []float64{2.5, -1.0, 0.25, 4.0}}
	problem := NewProblem(cost, NoConstraint{}, []float64{0, 0, 0, 0})

	_, err := LevenbergMarquardt{}.Minimize(problem, DefaultEndCriteria())
	require.NoError(t, err)

	x := problem.CurrentValue()
	for i, c := range cost.center {
		require.InDelta(t, c, x[i], 1e-8)
	}
}

func TestLevenbergMarquardtEmptyGuess(t *testing.T) {
	problem := NewProblem(quadratic{}, NoConstraint{}, nil)
	_, err := LevenbergMarquardt{}.Minimize(problem, DefaultEndCriteria())
	require.ErrorIs(t, err, errEmptyGuess)
}

func TestLevenbergMarquardtInfeasibleGuess(t *testing.T) {
	problem := NewProblem(quadratic{center: []float64{1}}, rejectAll{}, []float64{0})
	_, err := LevenbergMarquardt{}.Minimize(problem, DefaultEndCriteria())
	require.ErrorIs(t, err, errInfeasibleGuess)
}

func TestDefaultEndCriteria(t *testing.T) {
	criteria := DefaultEndCriteria()
	require.Equal(t, 60000, criteria.MaxIterations)
	require.Equal(t, 100, criteria.MaxStationaryStateIterations)
	require.Equal(t, 1e-8, criteria.RootEpsilon)
	require.Equal(t, 1e-8, criteria.FunctionEpsilon)
	require.Equal(t, 1e-8, criteria.GradientNormEpsilon)
}

func TestReasonString(t *testing.T) {
	testCases := []struct {
		reason Reason
		want   string
	}{
		{None, "none"},
		{MaxIterations, "max iterations"},
		{StationaryPoint, "stationary point"},
		{StationaryFunctionValue, "stationary function value"},
		{ZeroGradientNorm, "zero gradient norm"},
		{Unknown, "unknown"},
		{Reason(99), "unknown"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, tc.reason.String())
	}
}
