package opt

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LevenbergMarquardt minimizes least-squares costs with damped Gauss-Newton
// steps on the residual vector. The Jacobian is estimated by forward
// differences. The zero value uses the stock damping schedule.
type LevenbergMarquardt struct {
	// InitialDamping seeds the damping factor. Zero means 1e-3.
	InitialDamping float64
	// DampingScale grows the damping after a rejected step and shrinks it
	// after an accepted one. Zero means 10.
	DampingScale float64
	// Step is the relative finite-difference step. Zero means 1e-6.
	Step float64
}

// dampingCap ends the search once rejected steps have inflated the damping to
// the point where the step length is effectively zero.
const dampingCap = 1e12

// Minimize runs the damped least-squares iteration from the problem's current
// point.
func (m LevenbergMarquardt) Minimize(p *Problem, criteria EndCriteria) (Reason, error) {
	x := p.CurrentValue()
	n := len(x)
	if n == 0 {
		return Unknown, errEmptyGuess
	}
	if !p.constraint.Test(x) {
		return Unknown, errInfeasibleGuess
	}

	damping := m.InitialDamping
	if damping <= 0 {
		damping = 1e-3
	}
	scale := m.DampingScale
	if scale <= 1 {
		scale = 10
	}
	step := m.Step
	if step <= 0 {
		step = 1e-6
	}

	residuals := p.cost.Values(x)
	if len(residuals) == 0 {
		return Unknown, errNoResiduals
	}
	cost := floats.Dot(residuals, residuals)
	stationary := 0

	for iter := 0; iter < criteria.MaxIterations; iter++ {
		jac := jacobian(p.cost, x, residuals, step)

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		grad := mat.NewVecDense(n, nil)
		grad.MulVec(jac.T(), mat.NewVecDense(len(residuals), residuals))

		// grad is half the gradient of the squared cost
		if mat.Norm(grad, 2) < 0.5*criteria.GradientNormEpsilon {
			p.setCurrent(x)
			return ZeroGradientNorm, nil
		}

		for i := 0; i < n; i++ {
			jtj.Set(i, i, jtj.At(i, i)*(1+damping))
		}

		delta := mat.NewVecDense(n, nil)
		if err := delta.SolveVec(&jtj, grad); err != nil {
			damping *= scale
			if damping > dampingCap {
				p.setCurrent(x)
				return StationaryPoint, nil
			}
			continue
		}

		trial := make([]float64, n)
		for i := range trial {
			trial[i] = x[i] - delta.AtVec(i)
		}
		if !p.constraint.Test(trial) {
			damping *= scale
			if damping > dampingCap {
				p.setCurrent(x)
				return StationaryPoint, nil
			}
			continue
		}

		trialResiduals := p.cost.Values(trial)
		trialCost := floats.Dot(trialResiduals, trialResiduals)

		if trialCost >= cost {
			damping *= scale
			if damping > dampingCap {
				p.setCurrent(x)
				return StationaryPoint, nil
			}
			continue
		}

		improvement := cost - trialCost
		moved := mat.Norm(delta, 2)
		x, residuals, cost = trial, trialResiduals, trialCost
		damping /= scale

		if improvement < criteria.FunctionEpsilon {
			stationary++
		} else {
			stationary = 0
		}
		if stationary >= criteria.MaxStationaryStateIterations {
			p.setCurrent(x)
			return StationaryFunctionValue, nil
		}
		if moved < criteria.RootEpsilon {
			p.setCurrent(x)
			return StationaryPoint, nil
		}
	}

	p.setCurrent(x)
	return MaxIterations, nil
}

// jacobian estimates the residual Jacobian at x by forward differences.
func jacobian(cost CostFunction, x, residuals []float64, step float64) *mat.Dense {
	rows, cols := len(residuals), len(x)
	jac := mat.NewDense(rows, cols, nil)
	shifted := make([]float64, cols)
	copy(shifted, x)
	for j := 0; j < cols; j++ {
		h := step * math.Max(1, math.Abs(x[j]))
		shifted[j] = x[j] + h
		bumped := cost.Values(shifted)
		for i := 0; i < rows; i++ {
			jac.Set(i, j, (bumped[i]-residuals[i])/h)
		}
		shifted[j] = x[j]
	}
	return jac
}
