package opt

// EndCriteria bundles the termination tolerances shared by all methods.
type EndCriteria struct {
	// MaxIterations caps the number of iterations.
	MaxIterations int
	// MaxStationaryStateIterations is how many consecutive iterations may
	// fail to improve the cost meaningfully before the search is declared
	// stationary.
	MaxStationaryStateIterations int
	// RootEpsilon is the tolerance on the movement of the current point.
	RootEpsilon float64
	// FunctionEpsilon is the tolerance on cost improvement.
	FunctionEpsilon float64
	// GradientNormEpsilon is the tolerance on the cost gradient norm, for
	// methods that estimate one.
	GradientNormEpsilon float64
}

// DefaultEndCriteria returns the criteria used when a caller does not supply
// its own.
func DefaultEndCriteria() EndCriteria {
	return EndCriteria{
		MaxIterations:                60000,
		MaxStationaryStateIterations: 100,
		RootEpsilon:                  1e-8,
		FunctionEpsilon:              1e-8,
		GradientNormEpsilon:          1e-8,
	}
}

// Reason reports which rule ended a minimization.
type Reason int

const (
	// None means no minimization has run.
	None Reason = iota
	// MaxIterations means an iteration or evaluation cap was hit.
	MaxIterations
	// StationaryPoint means the current point stopped moving.
	StationaryPoint
	// StationaryFunctionValue means the cost stopped improving.
	StationaryFunctionValue
	// ZeroGradientNorm means the estimated gradient vanished.
	ZeroGradientNorm
	// Unknown means the method stopped for a reason not covered above.
	Unknown
)

func (r Reason) String() string {
	switch r {
	case None:
		return "none"
	case MaxIterations:
		return "max iterations"
	case StationaryPoint:
		return "stationary point"
	case StationaryFunctionValue:
		return "stationary function value"
	case ZeroGradientNorm:
		return "zero gradient norm"
	}
	return "unknown"
}
