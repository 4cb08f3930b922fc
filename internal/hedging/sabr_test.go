package hedging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSABRParamsValidate(t *testing.T) {
	valid := DefaultSABRParams()
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*SABRParams)
	}{
		{"zero alpha", func(sp *SABRParams) { sp.Alpha = 0 }},
		{"beta above one", func(sp *SABRParams) { sp.Beta = 1.5 }},
		{"rho at bound", func(sp *SABRParams) { sp.Rho = 1 }},
		{"zero nu", func(sp *SABRParams) { sp.Nu = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sp := DefaultSABRParams()
			tc.mutate(&sp)
			assert.Error(t, sp.Validate())
		})
	}
}

func TestSABRATMImpliedVol(t *testing.T) {
	sp := SABRParams{Alpha: 0.2, Beta: 1.0, Rho: -0.3, Nu: 0.4}

	// At the money with beta = 1 the Hagan approximation collapses to alpha.
	vol := sp.ImpliedVolatility(100, 100, 1.0)
	assert.InDelta(t, 0.2, vol, 1e-12)

	// Beta < 1 scales by F^(1-beta).
	sp.Beta = 0.5
	vol = sp.ImpliedVolatility(100, 100, 1.0)
	assert.InDelta(t, 0.2/math.Sqrt(100), vol, 1e-12)
}

func TestSABRSmileIsFiniteOffATM(t *testing.T) {
	sp := DefaultSABRParams()

	for _, K := range []float64{80, 90, 100.5, 110, 120} {
		vol := sp.ImpliedVolatility(100, K, 0.5)
		assert.False(t, math.IsNaN(vol) || math.IsInf(vol, 0), "strike %v", K)
		assert.Greater(t, vol, 0.0, "strike %v", K)
	}
}

func TestSABRHedgeRatio(t *testing.T) {
	p := testParams()
	// Anchor alpha so the ATM SABR vol matches the contract's sigma.
	sp := SABRParams{Alpha: 0.2, Beta: 1.0, Rho: -0.3, Nu: 0.4}

	s, err := NewSABR(p, sp)
	require.NoError(t, err)

	pos := s.HedgePosition(100, 1.0)
	assert.False(t, math.IsNaN(pos))

	// The ratio is delta plus a positive vega tilt, so it sits above the
	// plain Black-Scholes delta but stays a sane hedge size.
	plain, err := NewDelta(p)
	require.NoError(t, err)
	assert.Greater(t, pos, plain.HedgePosition(100, 1.0))
	assert.Less(t, pos, 2.0)

	assert.Equal(t, 0.0, s.HedgePosition(100, 0), "flat at expiry")
}
