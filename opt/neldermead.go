package opt

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// NelderMead minimizes with the downhill simplex method. The zero value is
// ready to use. Points rejected by the problem constraint cost +Inf, which
// the simplex backs away from.
type NelderMead struct{}

// Minimize runs gonum's Nelder-Mead from the problem's current point.
func (NelderMead) Minimize(p *Problem, criteria EndCriteria) (Reason, error) {
	guess := p.CurrentValue()
	if len(guess) == 0 {
		return Unknown, errEmptyGuess
	}
	if !p.constraint.Test(guess) {
		return Unknown, errInfeasibleGuess
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if !p.constraint.Test(x) {
				return math.Inf(1)
			}
			return p.cost.Value(x)
		},
	}
	settings := &optimize.Settings{
		MajorIterations: criteria.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   criteria.FunctionEpsilon,
			Iterations: criteria.MaxStationaryStateIterations,
		},
	}

	result, err := optimize.Minimize(problem, guess, settings, &optimize.NelderMead{})
	if result == nil {
		return Unknown, err
	}
	p.setCurrent(result.X)
	if err != nil {
		return Unknown, err
	}
	return reasonFromStatus(result.Status), nil
}

// reasonFromStatus folds gonum termination statuses onto the Reason enum.
func reasonFromStatus(s optimize.Status) Reason {
	switch s {
	case optimize.Success, optimize.FunctionConvergence, optimize.FunctionThreshold:
		return StationaryFunctionValue
	case optimize.StepConvergence, optimize.MethodConverge:
		return StationaryPoint
	case optimize.GradientThreshold:
		return ZeroGradientNorm
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		return MaxIterations
	}
	return Unknown
}
