// Package simenv implements the episodic option-hedging environment. The
// environment holds a short position in one European option and lets an
// external agent trade the underlying each step; it simulates the price path
// under geometric Brownian motion, applies transaction costs, and produces a
// reward balancing hedge tracking error against trading cost.
//
// The step/reset contract mirrors the usual RL environment interface:
// Reset(seed) begins a fresh episode, Step(action) advances one time step
// and reports termination after exactly NSteps steps. Each instance owns its
// seeded random source, so identical seeds replay identical episodes.
package simenv

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/aristath/hedger/internal/pricing"
	"github.com/aristath/hedger/pkg/formulas"
)

// ActionMode selects how agent actions are interpreted.
type ActionMode string

const (
	// ActionContinuous treats the action as a target hedge ratio in [-2, 2].
	ActionContinuous ActionMode = "continuous"
	// ActionDiscrete treats the action as an index into the fixed hedge
	// adjustments {-0.5, -0.1, 0, +0.1, +0.5}.
	ActionDiscrete ActionMode = "discrete"
)

// ParseActionMode validates a raw action mode string.
func ParseActionMode(s string) (ActionMode, error) {
	switch ActionMode(s) {
	case ActionContinuous:
		return ActionContinuous, nil
	case ActionDiscrete:
		return ActionDiscrete, nil
	default:
		return "", fmt.Errorf("action mode must be %q or %q, got %q", ActionContinuous, ActionDiscrete, s)
	}
}

// Action-space bounds. Targets outside the bounds are clamped, never
// rejected: the bound is a risk limit, not an error condition.
const (
	MinAction = -2.0
	MaxAction = 2.0
)

// ObservationSize is the fixed length of the observation vector.
const ObservationSize = 11

var discreteAdjustments = [...]float64{-0.5, -0.1, 0.0, 0.1, 0.5}

// Config holds environment parameters.
type Config struct {
	S0              float64 // Initial stock price
	K               float64 // Strike price
	T               float64 // Time to maturity (years)
	R               float64 // Risk-free rate
	Sigma           float64 // Volatility
	NSteps          int     // Number of hedging steps per episode
	OptionType      pricing.OptionType
	ActionMode      ActionMode
	TransactionCost float64 // Cost per unit of notional traded (fraction)
	RiskPenalty     float64 // Per-step weight on hedge tracking error
}

// DefaultConfig returns the canonical daily-hedging setup: an at-the-money
// one-year call rebalanced over 252 steps.
func DefaultConfig() Config {
	return Config{
		S0:              100.0,
		K:               100.0,
		T:               1.0,
		R:               0.05,
		Sigma:           0.2,
		NSteps:          252,
		OptionType:      pricing.Call,
		ActionMode:      ActionContinuous,
		TransactionCost: 0.001,
		RiskPenalty:     0.1,
	}
}

// Validate rejects invalid configuration immediately.
func (c Config) Validate() error {
	if c.S0 <= 0 || c.K <= 0 {
		return fmt.Errorf("prices must be positive, got S0=%v K=%v", c.S0, c.K)
	}
	if c.T <= 0 {
		return fmt.Errorf("time to maturity must be positive, got %v", c.T)
	}
	if c.Sigma <= 0 {
		return fmt.Errorf("volatility must be positive, got %v", c.Sigma)
	}
	if c.NSteps <= 0 {
		return fmt.Errorf("steps per episode must be positive, got %d", c.NSteps)
	}
	if c.TransactionCost < 0 {
		return fmt.Errorf("transaction cost must be non-negative, got %v", c.TransactionCost)
	}
	if _, err := pricing.ParseOptionType(string(c.OptionType)); err != nil {
		return err
	}
	if _, err := ParseActionMode(string(c.ActionMode)); err != nil {
		return err
	}
	return nil
}

// Observation is the fixed-length state vector handed to the agent:
// [S/K, 1, tau, sigma, r, position, delta, gamma, vega/100, pnl/S0, steps remaining].
// Ordering and scaling are part of the agent contract and must not change
// within or across episodes.
type Observation []float64

// Info carries diagnostic state alongside each observation. All fields are
// plain values suitable for JSON encoding.
type Info struct {
	Step       int            `json:"step"`
	S          float64        `json:"S"`
	S0         float64        `json:"S0"`
	K          float64        `json:"K"`
	T          float64        `json:"T"`
	Tau        float64        `json:"tau"`
	Position   float64        `json:"position"`
	Cash       float64        `json:"cash"`
	PnL        float64        `json:"pnl"`
	TotalCosts float64        `json:"total_costs"`
	Greeks     pricing.Greeks `json:"greeks"`
	FinalPnL   *float64       `json:"final_pnl,omitempty"`
}

// StepResult bundles the outcome of one environment step.
type StepResult struct {
	Observation Observation
	Reward      float64
	Terminated  bool
	Truncated   bool // always false: episodes run their fixed horizon
	Info        Info
}

// Environment state-machine errors.
var (
	ErrNotReset   = errors.New("simenv: Step called before Reset")
	ErrTerminated = errors.New("simenv: episode terminated, call Reset to start a new one")
)

type phase int

const (
	phaseUninitialized phase = iota
	phaseActive
	phaseTerminated
)

type stepRecord struct {
	s               float64
	position        float64
	cash            float64
	pnl             float64
	optionValue     float64
	transactionCost float64
}

// Env is the hedging environment. Not safe for concurrent use; run parallel
// episodes on separate instances.
type Env struct {
	cfg            Config
	dt             float64
	initialPremium float64

	rng   *rand.Rand
	phase phase

	currentStep int
	s           float64
	position    float64
	cash        float64
	pnl         float64
	totalCosts  float64

	history []stepRecord
}

// New builds an environment, failing fast on invalid configuration. The
// environment starts uninitialized; call Reset before Step.
func New(cfg Config) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Env{
		cfg: cfg,
		dt:  cfg.T / float64(cfg.NSteps),
		// Premium at inception is the PnL anchor for the whole episode.
		initialPremium: pricing.Price(cfg.S0, cfg.K, cfg.T, cfg.R, cfg.Sigma, cfg.OptionType),
	}, nil
}

// Reset begins a new episode seeded with the given value. The option is sold
// and its premium credited to cash; no initial hedge trade is placed — the
// agent supplies the first action on the first step.
func (e *Env) Reset(seed int64) (Observation, Info) {
	e.rng = rand.New(rand.NewSource(seed))
	e.phase = phaseActive

	e.currentStep = 0
	e.s = e.cfg.S0
	e.position = 0
	e.cash = e.initialPremium
	e.pnl = 0
	e.totalCosts = 0
	e.history = e.history[:0]

	return e.observation(), e.info()
}

// Step advances the episode by one time step:
// trade to the target position, evolve the price one GBM increment, accrue
// cash at the risk-free rate, reprice the option, and compute the reward.
// The action is clamped to [MinAction, MaxAction]; malformed actions are an
// error.
func (e *Env) Step(action []float64) (StepResult, error) {
	switch e.phase {
	case phaseUninitialized:
		return StepResult{}, ErrNotReset
	case phaseTerminated:
		return StepResult{}, ErrTerminated
	}

	target, err := e.parseAction(action)
	if err != nil {
		return StepResult{}, err
	}
	target = clamp(target, MinAction, MaxAction)

	// Execute the trade at the current price.
	trade := target - e.position
	cost := math.Abs(trade) * e.s * e.cfg.TransactionCost
	e.totalCosts += cost
	e.cash -= trade*e.s + cost
	e.position = target

	// One GBM increment from the per-instance source.
	z := e.rng.NormFloat64()
	e.s *= math.Exp((e.cfg.R-0.5*e.cfg.Sigma*e.cfg.Sigma)*e.dt + e.cfg.Sigma*math.Sqrt(e.dt)*z)

	// Cash earns the risk-free rate over the step.
	e.cash *= math.Exp(e.cfg.R * e.dt)

	e.currentStep++
	tau := e.cfg.T - float64(e.currentStep)*e.dt

	optionValue := pricing.Price(e.s, e.cfg.K, tau, e.cfg.R, e.cfg.Sigma, e.cfg.OptionType)
	portfolioValue := e.cash + e.position*e.s - optionValue
	e.pnl = portfolioValue - e.initialPremium

	terminated := e.currentStep >= e.cfg.NSteps
	if terminated {
		e.phase = phaseTerminated
	}

	reward := e.reward(tau, terminated)

	e.history = append(e.history, stepRecord{
		s:               e.s,
		position:        e.position,
		cash:            e.cash,
		pnl:             e.pnl,
		optionValue:     optionValue,
		transactionCost: cost,
	})
	info := e.info()
	if terminated {
		final := e.pnl
		info.FinalPnL = &final
	}

	return StepResult{
		Observation: e.observation(),
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   false,
		Info:        info,
	}, nil
}

func (e *Env) parseAction(action []float64) (float64, error) {
	if len(action) != 1 {
		return 0, fmt.Errorf("simenv: action must have exactly 1 element, got %d", len(action))
	}

	if e.cfg.ActionMode == ActionDiscrete {
		idx := int(action[0])
		if float64(idx) != action[0] || idx < 0 || idx >= len(discreteAdjustments) {
			return 0, fmt.Errorf("simenv: discrete action must be an integer in [0, %d), got %v",
				len(discreteAdjustments), action[0])
		}
		return e.position + discreteAdjustments[idx], nil
	}

	return action[0], nil
}

// reward is a dense per-step penalty for hedge tracking error and cumulative
// trading cost, plus a sparse terminal bonus equal to the final PnL.
func (e *Env) reward(tau float64, terminated bool) float64 {
	var hedgingError float64
	if tau > 0 {
		g := pricing.ComputeGreeks(e.s, e.cfg.K, tau, e.cfg.R, e.cfg.Sigma, e.cfg.OptionType)
		hedgingError = math.Abs(e.position - g.Delta)
	} else {
		// At maturity the book should be flat.
		hedgingError = math.Abs(e.position)
	}

	reward := -hedgingError*e.cfg.RiskPenalty - e.totalCosts*0.1
	if terminated {
		reward += e.pnl
	}
	return reward
}

func (e *Env) observation() Observation {
	tau := math.Max(e.cfg.T-float64(e.currentStep)*e.dt, 0)

	var g pricing.Greeks
	if tau > 0 {
		g = pricing.ComputeGreeks(e.s, e.cfg.K, tau, e.cfg.R, e.cfg.Sigma, e.cfg.OptionType)
	}

	return Observation{
		e.s / e.cfg.K, // normalized spot
		1.0,           // normalized strike
		tau,
		e.cfg.Sigma,
		e.cfg.R,
		e.position,
		g.Delta,
		g.Gamma,
		g.Vega / 100,
		e.pnl / e.cfg.S0,
		float64(e.cfg.NSteps - e.currentStep),
	}
}

func (e *Env) info() Info {
	tau := math.Max(e.cfg.T-float64(e.currentStep)*e.dt, 0)

	var g pricing.Greeks
	if tau > 0 {
		g = pricing.ComputeGreeks(e.s, e.cfg.K, tau, e.cfg.R, e.cfg.Sigma, e.cfg.OptionType)
	}

	return Info{
		Step:       e.currentStep,
		S:          e.s,
		S0:         e.cfg.S0,
		K:          e.cfg.K,
		T:          e.cfg.T,
		Tau:        tau,
		Position:   e.position,
		Cash:       e.cash,
		PnL:        e.pnl,
		TotalCosts: e.totalCosts,
		Greeks:     g,
	}
}

// Position returns the current hedge position.
func (e *Env) Position() float64 { return e.position }

// TotalCosts returns cumulative transaction costs for the episode.
func (e *Env) TotalCosts() float64 { return e.totalCosts }

// InitialPremium returns the option premium received at inception.
func (e *Env) InitialPremium() float64 { return e.initialPremium }

// EpisodeMetrics summarizes the episode recorded so far. Keys are stable and
// JSON-friendly. Returns an empty map before the first step.
func (e *Env) EpisodeMetrics() map[string]float64 {
	if len(e.history) == 0 {
		return map[string]float64{}
	}

	pnlSeries := make([]float64, len(e.history))
	// Position history includes the flat position the episode starts from.
	positions := make([]float64, 0, len(e.history)+1)
	positions = append(positions, 0)
	numTrades := 0.0
	for i, h := range e.history {
		pnlSeries[i] = h.pnl
		positions = append(positions, h.position)
		if h.transactionCost > 0 {
			numTrades++
		}
	}

	return map[string]float64{
		"total_pnl":      e.pnl,
		"final_pnl":      e.pnl,
		"total_costs":    e.totalCosts,
		"net_pnl":        e.pnl - e.totalCosts,
		"mean_abs_pnl":   formulas.MeanAbs(pnlSeries),
		"std_pnl":        formulas.PopStdDev(pnlSeries),
		"max_drawdown":   formulas.Min(pnlSeries),
		"sharpe_ratio":   formulas.SharpeRatio(pnlSeries),
		"num_trades":     numTrades,
		"num_rebalances": numTrades,
		"avg_position":   formulas.MeanAbs(positions),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
