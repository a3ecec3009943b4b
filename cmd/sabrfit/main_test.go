package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lyase/quantlib/opt"
	"github.com/lyase/quantlib/sabr"
)

func exactSlice() Slice {
	strikes := []float64{0.02, 0.025, 0.03, 0.035, 0.04}
	vols := make([]float64, len(strikes))
	for i, strike := range strikes {
		vols[i] = sabr.Volatility(strike, 0.03, 1.0, 0.2, 0.5, 0.4, -0.3)
	}
	return Slice{Label: "1y", Expiry: 1.0, Forward: 0.03, Strikes: strikes, Vols: vols}
}

func TestFitRecoversParameters(t *testing.T) {
	result, err := fit(exactSlice(), opt.NelderMead{}, false, -1)
	require.NoError(t, err)
	require.Less(t, result.RMSError, 1e-5)
	require.NotEmpty(t, result.Reason)
}

func TestFitBetaOverride(t *testing.T) {
	result, err := fit(exactSlice(), opt.LevenbergMarquardt{}, false, 0.5)
	require.NoError(t, err)
	require.InDelta(t, 0.5, result.Beta, 1e-12)
	require.Less(t, result.RMSError, 1e-5)
}

func TestFitRejectsBadSlice(t *testing.T) {
	slice := exactSlice()
	slice.Expiry = 0

	_, err := fit(slice, opt.NelderMead{}, false, -1)
	require.Error(t, err)
}

func TestReadSlices(t *testing.T) {
	_, err := readSlices("")
	require.ErrorContains(t, err, "-input is required")

	_, err = readSlices(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = readSlices(bad)
	require.ErrorContains(t, err, "parse")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o644))
	_, err = readSlices(empty)
	require.ErrorContains(t, err, "no slices")

	good := filepath.Join(dir, "good.json")
	b, err := json.Marshal([]Slice{exactSlice()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(good, b, 0o644))

	slices, err := readSlices(good)
	require.NoError(t, err)
	require.Len(t, slices, 1)
	require.Equal(t, "1y", slices[0].Label)
}

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	in := []Result{{Label: "1y", Alpha: 0.2, Beta: 0.5, Nu: 0.4, Rho: -0.3, Reason: "stationary function value"}}
	require.NoError(t, writeResults(path, in))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var out []Result
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in, out)
}
