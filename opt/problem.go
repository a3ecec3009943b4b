package opt

import "errors"

var (
	errEmptyGuess      = errors.New("minimization needs a non-empty initial guess")
	errInfeasibleGuess = errors.New("initial guess violates the constraint")
	errNoResiduals     = errors.New("cost function returned no residuals")
)

// Problem couples a cost function, a constraint and the current point of the
// search. Methods read their initial guess from the current point and leave
// the best point found in it.
type Problem struct {
	cost       CostFunction
	constraint Constraint
	current    []float64
}

// NewProblem sets up a problem starting the search at guess.
func NewProblem(cost CostFunction, constraint Constraint, guess []float64) *Problem {
	p := &Problem{cost: cost, constraint: constraint, current: make([]float64, len(guess))}
	copy(p.current, guess)
	return p
}

// Cost returns the cost function under minimization.
func (p *Problem) Cost() CostFunction { return p.cost }

// Constraint returns the search constraint.
func (p *Problem) Constraint() Constraint { return p.constraint }

// CurrentValue returns a copy of the current point.
func (p *Problem) CurrentValue() []float64 {
	x := make([]float64, len(p.current))
	copy(x, p.current)
	return x
}

func (p *Problem) setCurrent(x []float64) {
	p.current = make([]float64, len(x))
	copy(p.current, x)
}

// Method is a minimization algorithm.
type Method interface {
	// Minimize drives the search from the problem's current point until the
	// criteria end it, leaving the best point found in the problem. The
	// returned Reason reports which criterion fired.
	Minimize(p *Problem, criteria EndCriteria) (Reason, error)
}
