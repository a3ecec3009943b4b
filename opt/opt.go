// Package opt is a small minimization framework: cost functions with an
// optional least-squares structure, search constraints, shared end criteria
// and the methods that drive a search to one of them.
package opt

// CostFunction is the objective of a minimization.
type CostFunction interface {
	// Value returns the scalar cost at x.
	Value(x []float64) float64
	// Values returns the residual vector at x for methods that exploit a
	// least-squares structure. The scalar cost equals the sum of the
	// squared residuals.
	Values(x []float64) []float64
}

// Constraint restricts the points a method may visit.
type Constraint interface {
	Test(x []float64) bool
}

// NoConstraint accepts every point.
type NoConstraint struct{}

// Test always reports true.
func (NoConstraint) Test([]float64) bool { return true }

// Transform maps points between the unconstrained space a method searches and
// a constrained parameter domain.
type Transform interface {
	// Direct maps an unconstrained point into the domain.
	Direct(u []float64) []float64
	// Inverse maps a domain point back into the unconstrained space. It
	// fails when x lies outside the image of Direct.
	Inverse(x []float64) ([]float64, error)
}
