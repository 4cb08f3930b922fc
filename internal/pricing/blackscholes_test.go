package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionType(t *testing.T) {
	typ, err := ParseOptionType("call")
	require.NoError(t, err)
	assert.Equal(t, Call, typ)

	typ, err = ParseOptionType("put")
	require.NoError(t, err)
	assert.Equal(t, Put, typ)

	_, err = ParseOptionType("straddle")
	assert.Error(t, err)
}

func TestPriceKnownValues(t *testing.T) {
	// Reference values for the canonical ATM contract:
	// S=100, K=100, T=1, r=0.05, sigma=0.2.
	call := Price(100, 100, 1, 0.05, 0.2, Call)
	put := Price(100, 100, 1, 0.05, 0.2, Put)

	assert.InDelta(t, 10.4506, call, 1e-3, "ATM call value")
	assert.InDelta(t, 5.5735, put, 1e-3, "ATM put value")
}

func TestPutCallParity(t *testing.T) {
	cases := []struct {
		name             string
		S, K, T, r, sigma float64
	}{
		{"atm", 100, 100, 1.0, 0.05, 0.2},
		{"itm call", 120, 100, 0.5, 0.03, 0.25},
		{"otm call", 80, 100, 2.0, 0.01, 0.4},
		{"short dated", 100, 95, 0.01, 0.05, 0.15},
		{"high vol", 50, 55, 1.5, 0.10, 0.8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call := Price(tc.S, tc.K, tc.T, tc.r, tc.sigma, Call)
			put := Price(tc.S, tc.K, tc.T, tc.r, tc.sigma, Put)
			parity := tc.S - tc.K*math.Exp(-tc.r*tc.T)
			assert.InDelta(t, parity, call-put, 1e-6, "put-call parity")
		})
	}
}

func TestPriceAtExpiry(t *testing.T) {
	assert.Equal(t, 10.0, Price(110, 100, 0, 0.05, 0.2, Call))
	assert.Equal(t, 0.0, Price(90, 100, 0, 0.05, 0.2, Call))
	assert.Equal(t, 10.0, Price(90, 100, 0, 0.05, 0.2, Put))
	assert.Equal(t, 0.0, Price(110, 100, 0, 0.05, 0.2, Put))

	// Negative T takes the same intrinsic branch.
	assert.Equal(t, 5.0, Price(105, 100, -0.1, 0.05, 0.2, Call))
}

func TestGreeksRanges(t *testing.T) {
	g := ComputeGreeks(100, 100, 1, 0.05, 0.2, Call)
	assert.Greater(t, g.Delta, 0.0)
	assert.Less(t, g.Delta, 1.0)
	assert.Greater(t, g.Gamma, 0.0)
	assert.Greater(t, g.Vega, 0.0)
	assert.Less(t, g.Theta, 0.0, "long call decays")
	assert.Greater(t, g.Rho, 0.0)

	gp := ComputeGreeks(100, 100, 1, 0.05, 0.2, Put)
	assert.Less(t, gp.Delta, 0.0)
	assert.Greater(t, gp.Delta, -1.0)
	assert.InDelta(t, g.Gamma, gp.Gamma, 1e-12, "gamma identical for calls and puts")
	assert.InDelta(t, g.Vega, gp.Vega, 1e-12, "vega identical for calls and puts")
	assert.Less(t, gp.Rho, 0.0)
}

func TestGreeksBoundaryAsTGoesToZero(t *testing.T) {
	// As T -> 0+ the call delta converges to the moneyness indicator and the
	// remaining Greeks vanish.
	itm := ComputeGreeks(110, 100, 1e-9, 0.05, 0.2, Call)
	assert.InDelta(t, 1.0, itm.Delta, 1e-6)
	assert.InDelta(t, 0.0, itm.Vega, 1e-6)
	assert.InDelta(t, 0.0, itm.Rho, 1e-4)

	otm := ComputeGreeks(90, 100, 1e-9, 0.05, 0.2, Call)
	assert.InDelta(t, 0.0, otm.Delta, 1e-6)
}

func TestGreeksAtExpiry(t *testing.T) {
	itmCall := ComputeGreeks(110, 100, 0, 0.05, 0.2, Call)
	assert.Equal(t, Greeks{Delta: 1.0}, itmCall)

	otmCall := ComputeGreeks(90, 100, 0, 0.05, 0.2, Call)
	assert.Equal(t, Greeks{}, otmCall)

	// ITM puts report delta 0 at expiry. This mirrors the boundary handling
	// the rest of the system is calibrated against.
	itmPut := ComputeGreeks(90, 100, 0, 0.05, 0.2, Put)
	assert.Equal(t, Greeks{}, itmPut)
}

func TestKnownDelta(t *testing.T) {
	// N(d1) for the canonical ATM contract.
	g := ComputeGreeks(100, 100, 1, 0.05, 0.2, Call)
	assert.InDelta(t, 0.6368, g.Delta, 1e-3)
}
