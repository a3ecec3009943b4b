// Package black prices European options under the Black-76 forward measure
// and backs implied volatilities out of observed premiums.
package black

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// OptionType selects a call or a put. The values are the usual +1/-1 payoff
// signs.
type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

var stdNormal = distuv.Normal{Mu: 0.0, Sigma: 1.0}

// StdDevDerivative returns the derivative of the undiscounted Black price
// with respect to the total standard deviation vol*sqrt(t). It vanishes for a
// zero strike or a zero standard deviation. forward must be positive, strike
// and stdDev non-negative.
func StdDevDerivative(strike, forward, stdDev float64) float64 {
	if stdDev == 0 || strike == 0 {
		return 0
	}
	d1 := math.Log(forward/strike)/stdDev + 0.5*stdDev
	return forward * stdNormal.Prob(d1)
}

// Price returns the discounted Black-76 premium for total standard deviation
// stdDev = vol*sqrt(t).
func Price(optionType OptionType, strike, forward, stdDev, discount float64) float64 {
	if stdDev == 0 {
		return discount * math.Max(float64(optionType)*(forward-strike), 0)
	}
	if strike == 0 {
		if optionType == Call {
			return discount * forward
		}
		return 0
	}
	d1 := math.Log(forward/strike)/stdDev + 0.5*stdDev
	d2 := d1 - stdDev
	w := float64(optionType)
	return discount * w * (forward*stdNormal.CDF(w*d1) - strike*stdNormal.CDF(w*d2))
}

// Vega returns the sensitivity of the undiscounted premium to the annualized
// volatility.
func Vega(strike, forward, vol, t float64) float64 {
	sqrtT := math.Sqrt(t)
	return StdDevDerivative(strike, forward, vol*sqrtT) * sqrtT
}

// ImpliedVol backs the annualized volatility out of an observed premium by
// Newton iteration on the vega, starting from the Manaster-Koehler point. It
// fails when the premium lies outside the no-arbitrage bounds or the
// iteration stalls.
func ImpliedVol(optionType OptionType, strike, forward, price, discount, t float64) (float64, error) {
	if strike <= 0 {
		return 0, fmt.Errorf("strike must be positive: %v not allowed", strike)
	}
	if forward <= 0 {
		return 0, fmt.Errorf("forward must be positive: %v not allowed", forward)
	}
	if t <= 0 {
		return 0, fmt.Errorf("expiry time must be positive: %v not allowed", t)
	}
	if discount <= 0 {
		return 0, fmt.Errorf("discount must be positive: %v not allowed", discount)
	}

	intrinsic := discount * math.Max(float64(optionType)*(forward-strike), 0)
	upper := discount * forward
	if optionType == Put {
		upper = discount * strike
	}
	if price < intrinsic || price > upper {
		return 0, fmt.Errorf("premium %v outside no-arbitrage bounds [%v, %v]", price, intrinsic, upper)
	}

	sqrtT := math.Sqrt(t)
	vol := math.Sqrt(2 * math.Abs(math.Log(forward/strike)) / t)
	if vol < 1e-4 {
		vol = 1e-4
	}
	for i := 0; i < 100; i++ {
		diff := Price(optionType, strike, forward, vol*sqrtT, discount) - price
		if math.Abs(diff) <= 1e-12*math.Max(1, price) {
			return vol, nil
		}
		vega := discount * Vega(strike, forward, vol, t)
		if vega == 0 {
			break
		}
		next := vol - diff/vega
		if next <= 0 {
			next = vol / 2
		}
		vol = next
	}
	return 0, errors.New("implied vol iteration did not converge")
}
