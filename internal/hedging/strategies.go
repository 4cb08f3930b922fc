package hedging

import "github.com/aristath/hedger/internal/pricing"

// Default adjustment weights for the delta-gamma-vega heuristic.
const (
	DefaultGammaWeight = 0.5
	DefaultVegaWeight  = 0.01

	// targetVolatility is the reference volatility the vega adjustment is
	// anchored to.
	targetVolatility = 0.20
)

// NewDelta builds a plain delta-hedging strategy: the stock position always
// matches the option's Black-Scholes delta. Flat once the option has expired.
func NewDelta(p Params) (*Strategy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := newStrategy(p, "delta")
	s.hedge = func(S, tau float64) float64 {
		if tau <= 0 {
			return 0
		}
		g := pricing.ComputeGreeks(S, p.K, tau, p.R, p.Sigma, p.OptionType)
		return -s.optionPosition * g.Delta
	}
	return s, nil
}

// NewDeltaGamma builds a delta hedge with a gamma correction term. True
// delta-gamma hedging requires a second option instrument; this strategy
// instead tilts the stock position by gamma * (S - S0) * 0.5, a deliberate
// heuristic whose numeric behavior downstream consumers depend on.
func NewDeltaGamma(p Params) (*Strategy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := newStrategy(p, "delta_gamma")
	s.hedge = func(S, tau float64) float64 {
		if tau <= 0 {
			return 0
		}
		g := pricing.ComputeGreeks(S, p.K, tau, p.R, p.Sigma, p.OptionType)
		gammaAdjustment := g.Gamma * (S - p.S0) * 0.5
		return -s.optionPosition * (g.Delta + gammaAdjustment)
	}
	return s, nil
}

// NewDeltaGammaVega builds a delta hedge with gamma and vega correction
// terms. The vega term measures the deviation of the configured volatility
// from the 0.20 reference level. Weights default to DefaultGammaWeight and
// DefaultVegaWeight; the asymmetric scales are intentional.
func NewDeltaGammaVega(p Params, gammaWeight, vegaWeight float64) (*Strategy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := newStrategy(p, "delta_gamma_vega")
	s.hedge = func(S, tau float64) float64 {
		if tau <= 0 {
			return 0
		}
		g := pricing.ComputeGreeks(S, p.K, tau, p.R, p.Sigma, p.OptionType)
		gammaAdjustment := gammaWeight * g.Gamma * (S - p.S0)
		vegaAdjustment := vegaWeight * g.Vega * (p.Sigma - targetVolatility)
		return -s.optionPosition * (g.Delta + gammaAdjustment + vegaAdjustment)
	}
	return s, nil
}
