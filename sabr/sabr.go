// Package sabr fits the SABR stochastic volatility model of Hagan et al.
// (2002) to a single-expiry volatility smile and serves Black vols at
// arbitrary strikes from the fitted parameters.
package sabr

import (
	"fmt"
	"math"
)

// machEps is the double precision machine epsilon.
const machEps = 2.220446049250313e-16

// Volatility returns the Hagan et al. (2002) closed-form Black volatility at
// the given strike for SABR parameters (alpha, beta, nu, rho). strike and
// forward must be positive and the parameters admissible per
// ValidateParameters; neither is rechecked here.
func Volatility(strike, forward, t, alpha, beta, nu, rho float64) float64 {
	oneMinusBeta := 1.0 - beta
	a := math.Pow(forward*strike, oneMinusBeta)
	sqrtA := math.Sqrt(a)

	var logM float64
	if !closeEnough(forward, strike) {
		logM = math.Log(forward / strike)
	} else {
		eps := (forward - strike) / strike
		logM = eps - 0.5*eps*eps
	}

	z := (nu / alpha) * sqrtA * logM
	b := 1.0 - 2.0*rho*z + z*z
	c := oneMinusBeta * oneMinusBeta * logM * logM
	xz := math.Log((math.Sqrt(b) + z - rho) / (1.0 - rho))
	d := sqrtA * (1.0 + c/24.0 + c*c/1920.0)
	dd := 1.0 + t*(oneMinusBeta*oneMinusBeta*alpha*alpha/(24.0*a)+
		0.25*rho*beta*nu*alpha/sqrtA+
		(2.0-3.0*rho*rho)*(nu*nu/24.0))

	// z/x(z) loses precision once z^2 drops near machine epsilon; switch to
	// its series there
	multiplier := 1.0 - 0.5*rho*z - (3.0*rho*rho-2.0)*z*z/12.0
	if math.Abs(z*z) > machEps*10 {
		multiplier = z / xz
	}
	return (alpha / d) * multiplier * dd
}

// ValidateParameters checks the admissible SABR domain: alpha>0, beta in
// [0,1], nu>=0, rho in (-1,1). The negated comparisons also reject NaNs.
func ValidateParameters(alpha, beta, nu, rho float64) error {
	if !(alpha > 0.0) {
		return fmt.Errorf("alpha must be positive: %v not allowed", alpha)
	}
	if !(beta >= 0.0 && beta <= 1.0) {
		return fmt.Errorf("beta must be in [0.0, 1.0]: %v not allowed", beta)
	}
	if !(nu >= 0.0) {
		return fmt.Errorf("nu must be non negative: %v not allowed", nu)
	}
	if !(rho*rho < 1.0) {
		return fmt.Errorf("rho square must be less than one: %v not allowed", rho)
	}
	return nil
}

// closeEnough reports whether x and y agree to within 42 ulps, the tolerance
// at which the formula switches to its at-the-money branch.
func closeEnough(x, y float64) bool {
	if x == y {
		return true
	}
	diff := math.Abs(x - y)
	tol := 42 * machEps
	if x*y == 0.0 {
		return diff < tol*tol
	}
	return diff <= tol*math.Abs(x) && diff <= tol*math.Abs(y)
}
