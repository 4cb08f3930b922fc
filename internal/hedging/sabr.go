package hedging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SABRParams holds the parameters of the SABR stochastic-volatility model
// (Hagan et al. 2002):
//
//	dF = alpha * F^beta * dW1
//	dalpha = nu * alpha * dW2,  corr(dW1, dW2) = rho
type SABRParams struct {
	Alpha float64 // Initial volatility level
	Beta  float64 // CEV exponent (0 = normal, 1 = lognormal)
	Rho   float64 // Spot/vol correlation
	Nu    float64 // Volatility of volatility
}

// DefaultSABRParams returns the stock parameter set used when no calibration
// is available.
func DefaultSABRParams() SABRParams {
	return SABRParams{Alpha: 0.05, Beta: 0.5, Rho: -0.3, Nu: 0.4}
}

// Validate checks the parameters are inside the model's admissible region.
func (sp SABRParams) Validate() error {
	if sp.Alpha <= 0 {
		return fmt.Errorf("sabr alpha must be positive, got %v", sp.Alpha)
	}
	if sp.Beta < 0 || sp.Beta > 1 {
		return fmt.Errorf("sabr beta must be in [0, 1], got %v", sp.Beta)
	}
	if sp.Rho <= -1 || sp.Rho >= 1 {
		return fmt.Errorf("sabr rho must be in (-1, 1), got %v", sp.Rho)
	}
	if sp.Nu <= 0 {
		return fmt.Errorf("sabr nu must be positive, got %v", sp.Nu)
	}
	return nil
}

// ImpliedVolatility evaluates the Hagan lognormal implied-volatility
// approximation for forward F, strike K and maturity T.
func (sp SABRParams) ImpliedVolatility(F, K, T float64) float64 {
	if math.Abs(F-K) < 1e-10 {
		// ATM approximation
		return sp.Alpha / math.Pow(F, 1-sp.Beta)
	}

	logFK := math.Log(F / K)
	fkMid := math.Pow(F*K, (1-sp.Beta)/2)

	z := (sp.Nu / sp.Alpha) * fkMid * logFK
	xz := math.Log((math.Sqrt(1-2*sp.Rho*z+z*z) + z - sp.Rho) / (1 - sp.Rho))

	oneMinusBeta := 1 - sp.Beta
	denominator := fkMid * (1 +
		(oneMinusBeta*oneMinusBeta/24)*logFK*logFK +
		(math.Pow(oneMinusBeta, 4)/1920)*math.Pow(logFK, 4))

	correction := 1 + ((oneMinusBeta*oneMinusBeta/24)*(sp.Alpha*sp.Alpha/(fkMid*fkMid))+
		(sp.Rho*sp.Beta*sp.Nu*sp.Alpha)/(4*fkMid)+
		((2-3*sp.Rho*sp.Rho)/24)*sp.Nu*sp.Nu) * T

	return (sp.Alpha / denominator) * (z / xz) * correction
}

// NewSABR builds a hedging strategy that prices volatility off the SABR
// smile instead of the flat Black-Scholes sigma. The hedge ratio combines
// the SABR delta with a vega tilt: delta + 0.1 * vega / S.
func NewSABR(p Params, sp SABRParams) (*Strategy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := sp.Validate(); err != nil {
		return nil, err
	}

	norm := distuv.UnitNormal

	s := newStrategy(p, "sabr")
	s.hedge = func(S, tau float64) float64 {
		if tau <= 0 {
			return 0
		}

		forward := S * math.Exp(p.R*tau)
		sigma := sp.ImpliedVolatility(forward, p.K, tau)

		sqrtTau := math.Sqrt(tau)
		d1 := (math.Log(S/p.K) + (p.R+0.5*sigma*sigma)*tau) / (sigma * sqrtTau)

		delta := norm.CDF(d1)
		vega := S * norm.Prob(d1) * sqrtTau

		hedgeRatio := delta + 0.1*vega/S
		return -s.optionPosition * hedgeRatio
	}
	return s, nil
}
