package sabr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVolatilityLognormalLimit(t *testing.T) {
	// with beta=1 and nu=0 the model collapses to Black with flat vol alpha
	for _, strike := range []float64{0.01, 0.02, 0.03, 0.05, 0.1} {
		require.InDelta(t, 0.25, Volatility(strike, 0.03, 1.5, 0.25, 1.0, 0.0, 0.0), 1e-14)
		require.InDelta(t, 0.25, Volatility(strike, 0.03, 1.5, 0.25, 1.0, 0.0, 0.5), 1e-14)
	}
}

func TestVolatilityAtTheMoney(t *testing.T) {
	forward, expiry := 0.03, 1.0
	alpha, beta, nu, rho := 0.2, 0.5, 0.4, -0.3

	fPow := math.Pow(forward, 1-beta)
	expansion := 1 + expiry*((1-beta)*(1-beta)*alpha*alpha/(24*fPow*fPow)+
		0.25*rho*beta*nu*alpha/fPow+
		(2-3*rho*rho)*nu*nu/24)
	want := alpha / fPow * expansion

	require.InDelta(t, want, Volatility(forward, forward, expiry, alpha, beta, nu, rho), 1e-14)
}

func TestVolatilityContinuousAtTheMoney(t *testing.T) {
	forward := 0.03
	alpha, beta, nu, rho := 0.2, 0.5, 0.4, -0.3

	atm := Volatility(forward, forward, 1.0, alpha, beta, nu, rho)
	oneUlp := Volatility(math.Nextafter(forward, 1), forward, 1.0, alpha, beta, nu, rho)
	nearby := Volatility(forward*(1+1e-12), forward, 1.0, alpha, beta, nu, rho)

	require.InDelta(t, atm, oneUlp, 1e-12)
	require.InDelta(t, atm, nearby, 1e-10)
}

func TestVolatilitySkewAndSmile(t *testing.T) {
	// negative rho tilts the smile down in strike
	low := Volatility(0.02, 0.03, 1.0, 0.2, 0.5, 0.4, -0.3)
	high := Volatility(0.04, 0.03, 1.0, 0.2, 0.5, 0.4, -0.3)
	require.Greater(t, low, high)

	// zero rho with positive nu curves both wings up
	atm := Volatility(0.03, 0.03, 1.0, 0.25, 1.0, 0.5, 0.0)
	left := Volatility(0.02, 0.03, 1.0, 0.25, 1.0, 0.5, 0.0)
	right := Volatility(0.045, 0.03, 1.0, 0.25, 1.0, 0.5, 0.0)
	require.Greater(t, left, atm)
	require.Greater(t, right, atm)
}

func TestVolatilityFinite(t *testing.T) {
	for _, strike := range []float64{0.001, 0.01, 0.03, 0.1, 1.0} {
		v := Volatility(strike, 0.03, 2.0, 0.2, 0.5, 0.4, -0.3)
		require.False(t, math.IsNaN(v))
		require.False(t, math.IsInf(v, 0))
		require.Greater(t, v, 0.0)
	}
}

func TestValidateParameters(t *testing.T) {
	testCases := []struct {
		name  string
		alpha float64
		beta  float64
		nu    float64
		rho   float64
		ok    bool
	}{
		{"typical", 0.2, 0.5, 0.4, -0.3, true},
		{"beta zero", 0.2, 0.0, 0.4, 0.0, true},
		{"beta one", 0.2, 1.0, 0.4, 0.0, true},
		{"nu zero", 0.2, 0.5, 0.0, 0.0, true},
		{"rho near one", 0.2, 0.5, 0.4, 0.9999, true},
		{"zero alpha", 0.0, 0.5, 0.4, 0.0, false},
		{"negative alpha", -0.1, 0.5, 0.4, 0.0, false},
		{"beta above one", 0.2, 1.1, 0.4, 0.0, false},
		{"negative beta", 0.2, -0.1, 0.4, 0.0, false},
		{"negative nu", 0.2, 0.5, -0.4, 0.0, false},
		{"rho at one", 0.2, 0.5, 0.4, 1.0, false},
		{"rho beyond", 0.2, 0.5, 0.4, -1.2, false},
		{"nan alpha", math.NaN(), 0.5, 0.4, 0.0, false},
		{"nan beta", 0.2, math.NaN(), 0.4, 0.0, false},
		{"nan rho", 0.2, 0.5, 0.4, math.NaN(), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateParameters(tc.alpha, tc.beta, tc.nu, tc.rho)
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
