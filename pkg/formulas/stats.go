// Package formulas provides the shared statistics helpers used by the
// hedging strategies, the simulation environment and the evaluator.
// They are thin wrappers around gonum/stat with zero-length guards so
// callers never have to special-case empty series.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Epsilon guards denominators that are analytically zero at a
// measure-zero boundary (zero-variance PnL series, flat price windows).
const Epsilon = 1e-8

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// PopStdDev calculates the population standard deviation (divisor n, not n-1).
// PnL series metrics use the population convention.
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Variance(data, nil)
}

// PopVariance calculates the population variance of a slice of float64 values
func PopVariance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.PopVariance(data, nil)
}

// Covariance calculates the sample covariance between two datasets
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// PeriodReturns converts a price series to simple period-over-period returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]. Zero prices yield a zero
// return rather than a division error.
func PeriodReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// SharpeRatio calculates mean/std of a PnL series with an epsilon guard on
// the denominator, so a constant series yields a finite (near-zero) ratio.
func SharpeRatio(pnl []float64) float64 {
	if len(pnl) == 0 {
		return 0
	}
	return Mean(pnl) / (PopStdDev(pnl) + Epsilon)
}

// SortinoRatio calculates mean return over downside deviation. Only negative
// observations contribute to the denominator.
func SortinoRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	downsideStd := Epsilon
	if len(downside) > 0 {
		downsideStd = PopStdDev(downside)
		if downsideStd < Epsilon {
			downsideStd = Epsilon
		}
	}

	return Mean(returns) / downsideStd
}

// MaxDrawdown calculates the maximum peak-to-trough decline of the cumulative
// sum of a PnL series. Always >= 0; a monotonically increasing series has a
// drawdown of 0.
func MaxDrawdown(pnl []float64) float64 {
	if len(pnl) == 0 {
		return 0
	}

	cumulative := 0.0
	runningMax := 0.0
	maxDD := 0.0
	for i, p := range pnl {
		cumulative += p
		if i == 0 || cumulative > runningMax {
			runningMax = cumulative
		}
		if dd := runningMax - cumulative; dd > maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

// Min returns the smallest value of a series, or 0 for an empty series.
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value of a series, or 0 for an empty series.
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// VaR calculates the Value at Risk of a return series at the given confidence
// level (e.g. 0.95 returns the 5th percentile of the distribution).
func VaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	return stat.Quantile(1-confidence, stat.Empirical, sorted, nil)
}

// CVaR calculates the Conditional Value at Risk (expected shortfall): the mean
// of all observations at or below the VaR threshold.
func CVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	threshold := VaR(returns, confidence)
	var tail []float64
	for _, r := range returns {
		if r <= threshold {
			tail = append(tail, r)
		}
	}
	if len(tail) == 0 {
		return threshold
	}
	return Mean(tail)
}

// HedgeEffectiveness calculates 1 - Var(hedged)/Var(unhedged). A value of 1
// means the hedge removed all PnL variance; 0 means it removed none.
func HedgeEffectiveness(hedgedPnL, unhedgedPnL []float64) float64 {
	varHedged := PopVariance(hedgedPnL)
	varUnhedged := PopVariance(unhedgedPnL)
	return 1 - varHedged/(varUnhedged+Epsilon)
}

// MeanAbs returns the mean of absolute values of a series.
func MeanAbs(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	abs := make([]float64, len(data))
	for i, v := range data {
		abs[i] = math.Abs(v)
	}
	return Mean(abs)
}
