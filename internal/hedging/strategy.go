// Package hedging implements the baseline hedging strategies and the
// portfolio accounting they share. Every strategy holds a short position in
// exactly one European option and trades the underlying to offset it; the
// strategies differ only in how the target hedge position is computed from
// the current market state.
package hedging

import (
	"errors"
	"fmt"

	"github.com/aristath/hedger/internal/pricing"
)

// Params holds the contract and market parameters common to all strategies.
type Params struct {
	S0              float64 // Initial stock price
	K               float64 // Strike price
	T               float64 // Time to maturity (years)
	R               float64 // Risk-free rate (annualized decimal)
	Sigma           float64 // Volatility (annualized decimal)
	OptionType      pricing.OptionType
	TransactionCost float64 // Cost per unit of notional traded (fraction)
}

// Validate rejects invalid configuration immediately. Numerical degeneracy
// further downstream (sigma near zero inside the pricing formulas) is the
// caller's responsibility; this only catches outright misconfiguration.
func (p Params) Validate() error {
	if p.S0 <= 0 {
		return fmt.Errorf("initial price must be positive, got %v", p.S0)
	}
	if p.K <= 0 {
		return fmt.Errorf("strike must be positive, got %v", p.K)
	}
	if p.T <= 0 {
		return fmt.Errorf("time to maturity must be positive, got %v", p.T)
	}
	if p.Sigma <= 0 {
		return fmt.Errorf("volatility must be positive, got %v", p.Sigma)
	}
	if p.TransactionCost < 0 {
		return fmt.Errorf("transaction cost must be non-negative, got %v", p.TransactionCost)
	}
	if _, err := pricing.ParseOptionType(string(p.OptionType)); err != nil {
		return err
	}
	return nil
}

// Trade describes a single rebalancing trade.
type Trade struct {
	StockTrade      float64 `json:"stock_trade"`
	TransactionCost float64 `json:"transaction_cost"`
	NewPosition     float64 `json:"new_position"`
}

// Valuation is a mark-to-market snapshot of the hedged book. The short
// option contract enters as a liability.
type Valuation struct {
	PortfolioValue  float64 `json:"portfolio_value"`
	Cash            float64 `json:"cash"`
	StockValue      float64 `json:"stock_value"`
	OptionValue     float64 `json:"option_value"`
	OptionLiability float64 `json:"option_liability"`
}

// hedgeFunc computes the target stock position for spot S and remaining
// time tau. The four baselines are a closed set of these functions sharing
// one portfolio struct.
type hedgeFunc func(S, tau float64) float64

// ErrNotInitialized is returned when Rebalance is called before Initialize.
var ErrNotInitialized = errors.New("hedging: strategy not initialized")

// Strategy couples a hedge-computation rule with the shared portfolio
// accounting. Each instance owns its book exclusively; instances must not be
// shared across episodes or concurrent callers.
type Strategy struct {
	params Params
	name   string
	hedge  hedgeFunc

	cash           float64
	stockPosition  float64
	optionPosition float64 // fixed: short one contract
	totalCosts     float64
	initialized    bool
}

func newStrategy(p Params, name string) *Strategy {
	return &Strategy{
		params:         p,
		name:           name,
		optionPosition: -1.0,
	}
}

// Name returns the strategy identifier used in reports.
func (s *Strategy) Name() string { return s.name }

// Params returns the contract parameters the strategy was built with.
func (s *Strategy) Params() Params { return s.params }

// StockPosition returns the current hedge position in units of stock.
func (s *Strategy) StockPosition() float64 { return s.stockPosition }

// Cash returns the current cash balance.
func (s *Strategy) Cash() float64 { return s.cash }

// TotalCosts returns cumulative transaction costs. Monotonically
// non-decreasing over the life of the strategy.
func (s *Strategy) TotalCosts() float64 { return s.totalCosts }

// HedgePosition computes the target stock position for the given market
// state without trading. Exposed for fallback comparisons and tests.
func (s *Strategy) HedgePosition(S, tau float64) float64 {
	return s.hedge(S, tau)
}

// Initialize sells the option, credits the premium to cash and places the
// initial hedge trade. Returns the premium received. The book is
// approximately flat immediately afterwards; the residual is the
// transaction cost of the opening trade.
func (s *Strategy) Initialize() float64 {
	p := s.params

	premium := pricing.Price(p.S0, p.K, p.T, p.R, p.Sigma, p.OptionType)
	s.cash = premium

	s.stockPosition = s.hedge(p.S0, p.T)

	notional := abs(s.stockPosition) * p.S0
	cost := notional * p.TransactionCost
	s.cash -= notional + cost
	s.totalCosts += cost
	s.initialized = true

	return premium
}

// Rebalance recomputes the target hedge for spot S and remaining time tau
// and trades the difference. The cash account is debited by the signed trade
// notional plus the transaction cost on its absolute size.
func (s *Strategy) Rebalance(S, tau float64) (Trade, error) {
	if !s.initialized {
		return Trade{}, ErrNotInitialized
	}

	target := s.hedge(S, tau)
	trade := target - s.stockPosition

	cost := abs(trade) * S * s.params.TransactionCost
	s.cash -= trade*S + cost
	s.stockPosition = target
	s.totalCosts += cost

	return Trade{
		StockTrade:      trade,
		TransactionCost: cost,
		NewPosition:     s.stockPosition,
	}, nil
}

// PortfolioValue marks the book to market at spot S and remaining time tau.
// At tau <= 0 the option is valued at its intrinsic payoff.
func (s *Strategy) PortfolioValue(S, tau float64) Valuation {
	p := s.params

	optionValue := pricing.Price(S, p.K, tau, p.R, p.Sigma, p.OptionType)
	stockValue := s.stockPosition * S
	liability := optionValue * s.optionPosition

	return Valuation{
		PortfolioValue:  s.cash + stockValue + liability,
		Cash:            s.cash,
		StockValue:      stockValue,
		OptionValue:     optionValue,
		OptionLiability: liability,
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
