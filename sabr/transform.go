package sabr

import (
	"fmt"
	"math"
)

// Transformation constants. eps1 keeps alpha and nu strictly positive, eps2
// keeps rho strictly inside (-1, 1).
const (
	eps1 = 1e-7
	eps2 = 0.9999
)

// transformation maps the SABR parameter domain to an unconstrained search
// space and back, component by component:
//
//	alpha = u0^2 + eps1
//	beta  = exp(-u1^2)
//	nu    = u2^2 + eps1
//	rho   = eps2 * sin(u3)
//
// It implements opt.Transform.
type transformation struct{}

// Direct maps an unconstrained point into the parameter domain. u must have
// length 4.
func (transformation) Direct(u []float64) []float64 {
	x := make([]float64, 4)
	x[0] = u[0]*u[0] + eps1
	x[1] = math.Exp(-(u[1] * u[1]))
	x[2] = u[2]*u[2] + eps1
	x[3] = eps2 * math.Sin(u[3])
	return x
}

// Inverse maps parameters back into the unconstrained space, taking the
// non-negative branch of each square root and the principal arcsine. It fails
// for parameters outside the image of Direct.
func (transformation) Inverse(x []float64) ([]float64, error) {
	if len(x) != 4 {
		return nil, fmt.Errorf("need 4 parameters, got %d", len(x))
	}
	if !(x[0] >= eps1) {
		return nil, fmt.Errorf("alpha %v below the transformable minimum %v", x[0], eps1)
	}
	if !(x[1] > 0 && x[1] <= 1) {
		return nil, fmt.Errorf("beta %v outside the transformable range (0, 1]", x[1])
	}
	if !(x[2] >= eps1) {
		return nil, fmt.Errorf("nu %v below the transformable minimum %v", x[2], eps1)
	}
	if !(math.Abs(x[3]) <= eps2) {
		return nil, fmt.Errorf("rho %v outside the transformable range [-%v, %v]", x[3], eps2, eps2)
	}
	u := make([]float64, 4)
	u[0] = math.Sqrt(x[0] - eps1)
	u[1] = math.Sqrt(-math.Log(x[1]))
	u[2] = math.Sqrt(x[2] - eps1)
	u[3] = math.Asin(x[3] / eps2)
	return u, nil
}
