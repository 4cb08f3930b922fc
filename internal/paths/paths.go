// Package paths provides seeded price-path generators for backtesting.
// Every generator owns its random source; two generators built with the same
// seed produce identical paths, and independent seeds produce independent
// streams, which keeps parallel backtests reproducible.
package paths

import (
	"math"
	"math/rand"
)

// Generator produces a price path of nSteps+1 points (including the initial
// price) with time step dt.
type Generator interface {
	Path(nSteps int, dt float64) []float64
}

// GBM generates geometric Brownian motion paths:
//
//	S(t+dt) = S(t) * exp((mu - sigma^2/2) dt + sigma sqrt(dt) Z)
type GBM struct {
	S0    float64
	Drift float64
	Sigma float64
	rng   *rand.Rand
}

// NewGBM builds a seeded GBM generator.
func NewGBM(s0, drift, sigma float64, seed int64) *GBM {
	return &GBM{
		S0:    s0,
		Drift: drift,
		Sigma: sigma,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Path simulates one price path.
func (g *GBM) Path(nSteps int, dt float64) []float64 {
	prices := make([]float64, nSteps+1)
	prices[0] = g.S0

	sqrtDt := math.Sqrt(dt)
	for i := 0; i < nSteps; i++ {
		z := g.rng.NormFloat64()
		prices[i+1] = prices[i] * math.Exp((g.Drift-0.5*g.Sigma*g.Sigma)*dt+g.Sigma*sqrtDt*z)
	}

	return prices
}

// Heston generates paths under the Heston stochastic-volatility model using
// a full-truncation Euler scheme:
//
//	dS = mu S dt + sqrt(V) S dW1
//	dV = kappa (theta - V) dt + xi sqrt(V) dW2,  corr(dW1, dW2) = rho
type Heston struct {
	S0    float64
	V0    float64 // Initial variance
	Mu    float64 // Drift
	Kappa float64 // Mean-reversion speed
	Theta float64 // Long-run variance
	Xi    float64 // Volatility of variance
	Rho   float64 // Correlation between price and variance shocks
	rng   *rand.Rand
}

// NewHeston builds a seeded Heston generator.
func NewHeston(s0, v0, mu, kappa, theta, xi, rho float64, seed int64) *Heston {
	return &Heston{
		S0:    s0,
		V0:    v0,
		Mu:    mu,
		Kappa: kappa,
		Theta: theta,
		Xi:    xi,
		Rho:   rho,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Path simulates one price path. The variance process is floored at zero
// before each diffusion term (full truncation), so prices stay positive.
func (h *Heston) Path(nSteps int, dt float64) []float64 {
	prices := make([]float64, nSteps+1)
	prices[0] = h.S0

	v := h.V0
	sqrtDt := math.Sqrt(dt)
	rhoBar := math.Sqrt(1 - h.Rho*h.Rho)

	for i := 0; i < nSteps; i++ {
		z1 := h.rng.NormFloat64()
		z2 := h.Rho*z1 + rhoBar*h.rng.NormFloat64()

		vPlus := math.Max(v, 0)
		sqrtV := math.Sqrt(vPlus)

		prices[i+1] = prices[i] * math.Exp((h.Mu-0.5*vPlus)*dt+sqrtV*sqrtDt*z1)
		v = v + h.Kappa*(h.Theta-vPlus)*dt + h.Xi*sqrtV*sqrtDt*z2
	}

	return prices
}
