package hedging

import (
	"fmt"

	"github.com/aristath/hedger/internal/pricing"
	"github.com/aristath/hedger/pkg/formulas"
)

// DefaultLookbackWindow is the default number of (price, option value)
// observations the minimum-variance estimator keeps.
const DefaultLookbackWindow = 20

// minObservations is the smallest window that yields a usable covariance
// estimate; below it the strategy falls back to plain delta hedging.
const minObservations = 3

// rollingWindow is a fixed-capacity ring buffer of paired observations.
// Once full, each push overwrites the oldest entry.
type rollingWindow struct {
	prices []float64
	values []float64
	head   int
	size   int
}

func newRollingWindow(capacity int) *rollingWindow {
	return &rollingWindow{
		prices: make([]float64, capacity),
		values: make([]float64, capacity),
	}
}

func (w *rollingWindow) push(price, value float64) {
	w.prices[w.head] = price
	w.values[w.head] = value
	w.head = (w.head + 1) % len(w.prices)
	if w.size < len(w.prices) {
		w.size++
	}
}

func (w *rollingWindow) len() int { return w.size }

// snapshot returns the window contents in chronological order.
func (w *rollingWindow) snapshot() (prices, values []float64) {
	prices = make([]float64, 0, w.size)
	values = make([]float64, 0, w.size)
	start := w.head - w.size
	if start < 0 {
		start += len(w.prices)
	}
	for i := 0; i < w.size; i++ {
		idx := (start + i) % len(w.prices)
		prices = append(prices, w.prices[idx])
		values = append(values, w.values[idx])
	}
	return prices, values
}

// NewMinimumVariance builds a statistical hedging strategy. It estimates the
// hedge ratio as Cov(option returns, stock returns) / Var(stock returns)
// over a rolling window of observations; each hedge computation appends the
// latest (spot, option value) pair to the window. With fewer than three
// observations it degrades to plain delta hedging.
func NewMinimumVariance(p Params, lookbackWindow int) (*Strategy, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if lookbackWindow < minObservations {
		return nil, fmt.Errorf("lookback window must be at least %d, got %d", minObservations, lookbackWindow)
	}

	window := newRollingWindow(lookbackWindow)

	s := newStrategy(p, "minimum_variance")
	s.hedge = func(S, tau float64) float64 {
		if tau <= 0 {
			return 0
		}

		optionValue := pricing.Price(S, p.K, tau, p.R, p.Sigma, p.OptionType)
		window.push(S, optionValue)

		if window.len() < minObservations {
			g := pricing.ComputeGreeks(S, p.K, tau, p.R, p.Sigma, p.OptionType)
			return -s.optionPosition * g.Delta
		}

		prices, values := window.snapshot()
		stockReturns := formulas.PeriodReturns(prices)
		optionReturns := formulas.PeriodReturns(values)

		// Near-zero variance in a flat window is an analytically removable
		// singularity; the epsilon keeps the ratio finite (near zero) rather
		// than raising.
		hedgeRatio := formulas.Covariance(optionReturns, stockReturns) /
			(formulas.PopVariance(stockReturns) + formulas.Epsilon)

		return -s.optionPosition * hedgeRatio
	}
	return s, nil
}
