// Package pricing implements closed-form Black-Scholes valuation for
// European options. All functions are pure and stateless; they are called
// once or twice per simulation step, thousands of times per backtest.
//
// Conventions: rates and volatilities are annualized decimals, times are in
// years. Callers are responsible for clamping T >= 0 and supplying sigma > 0;
// the formulas are not guarded against invalid arithmetic beyond the T <= 0
// intrinsic-value branch.
package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// OptionType identifies the payoff direction of a European option.
type OptionType string

const (
	// Call is the right to buy the underlying at the strike.
	Call OptionType = "call"
	// Put is the right to sell the underlying at the strike.
	Put OptionType = "put"
)

// ParseOptionType validates a raw option type string. Unknown values are a
// configuration error and are rejected immediately.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(s) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	default:
		return "", fmt.Errorf("option type must be %q or %q, got %q", Call, Put, s)
	}
}

// Greeks holds the first and second order sensitivities of an option price.
// Vega and Rho are scaled per 1% change in volatility/rate, Theta per
// calendar day of decay.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

var stdNormal = distuv.UnitNormal

// Price returns the Black-Scholes value of a European option.
// For T <= 0 the option has collapsed to its intrinsic value, which is
// returned directly without evaluating the formula (avoids sigma*sqrt(T)
// division by zero).
func Price(S, K, T, r, sigma float64, typ OptionType) float64 {
	if T <= 0 {
		if typ == Call {
			return math.Max(S-K, 0)
		}
		return math.Max(K-S, 0)
	}

	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	d2 := d1 - sigma*math.Sqrt(T)

	if typ == Call {
		return S*stdNormal.CDF(d1) - K*math.Exp(-r*T)*stdNormal.CDF(d2)
	}
	return K*math.Exp(-r*T)*stdNormal.CDF(-d2) - S*stdNormal.CDF(-d1)
}

// ComputeGreeks returns all Greeks of a European option.
//
// At T <= 0 delta is the moneyness indicator for calls (1 if S > K, else 0)
// and 0 for everything else, including in-the-money puts; the remaining
// Greeks are 0. The asymmetric put handling is deliberate and must not be
// "corrected" without updating every consumer of the boundary behavior.
func ComputeGreeks(S, K, T, r, sigma float64, typ OptionType) Greeks {
	if T <= 0 {
		delta := 0.0
		if typ == Call && S > K {
			delta = 1.0
		}
		return Greeks{Delta: delta}
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	pdfD1 := stdNormal.Prob(d1)
	discount := math.Exp(-r * T)

	var delta float64
	if typ == Call {
		delta = stdNormal.CDF(d1)
	} else {
		delta = -stdNormal.CDF(-d1)
	}

	// Gamma and vega are identical for calls and puts.
	gamma := pdfD1 / (S * sigma * sqrtT)
	vega := S * pdfD1 * sqrtT / 100 // per 1% vol change

	term1 := -(S * pdfD1 * sigma) / (2 * sqrtT)
	var theta, rho float64
	if typ == Call {
		theta = (term1 - r*K*discount*stdNormal.CDF(d2)) / 365 // per calendar day
		rho = K * T * discount * stdNormal.CDF(d2) / 100       // per 1% rate change
	} else {
		theta = (term1 + r*K*discount*stdNormal.CDF(-d2)) / 365
		rho = -K * T * discount * stdNormal.CDF(-d2) / 100
	}

	return Greeks{
		Delta: delta,
		Gamma: gamma,
		Vega:  vega,
		Theta: theta,
		Rho:   rho,
	}
}
