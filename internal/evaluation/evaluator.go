// Package evaluation backtests hedging strategies over simulated price
// paths and aggregates the per-episode results into comparable summaries.
package evaluation

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/hedger/internal/hedging"
	"github.com/aristath/hedger/internal/paths"
	"github.com/aristath/hedger/internal/pricing"
	"github.com/aristath/hedger/pkg/formulas"
)

// Config holds the contract and simulation parameters for an evaluation run.
// Paths are simulated under the risk-neutral measure: the drift of the
// default generator equals the risk-free rate.
type Config struct {
	S0         float64
	K          float64
	T          float64
	R          float64
	Sigma      float64
	NSteps     int
	OptionType pricing.OptionType
}

// DefaultConfig returns a one-year ATM call hedged daily.
func DefaultConfig() Config {
	return Config{
		S0:         100,
		K:          100,
		T:          1.0,
		R:          0.05,
		Sigma:      0.2,
		NSteps:     252,
		OptionType: pricing.Call,
	}
}

// Validate rejects misconfiguration before any simulation runs.
func (c Config) Validate() error {
	if c.S0 <= 0 {
		return fmt.Errorf("initial price must be positive, got %v", c.S0)
	}
	if c.K <= 0 {
		return fmt.Errorf("strike must be positive, got %v", c.K)
	}
	if c.T <= 0 {
		return fmt.Errorf("time to maturity must be positive, got %v", c.T)
	}
	if c.Sigma <= 0 {
		return fmt.Errorf("volatility must be positive, got %v", c.Sigma)
	}
	if c.NSteps <= 0 {
		return fmt.Errorf("number of steps must be positive, got %v", c.NSteps)
	}
	if _, err := pricing.ParseOptionType(string(c.OptionType)); err != nil {
		return err
	}
	return nil
}

// StrategyFactory builds a fresh strategy instance. The evaluator calls it
// once per episode so that no portfolio state leaks between paths.
type StrategyFactory func() (*hedging.Strategy, error)

// NamedFactory pairs a strategy factory with the name used in reports.
type NamedFactory struct {
	Name    string
	Factory StrategyFactory
}

// Evaluator runs strategies over seeded price paths. The default path source
// is GBM with drift equal to the risk-free rate; SetPathSource swaps in an
// alternative model such as Heston.
type Evaluator struct {
	cfg Config
	dt  float64
	log zerolog.Logger

	newPath func(seed int64) paths.Generator
}

// New builds an evaluator for the given configuration.
func New(cfg Config, log zerolog.Logger) (*Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evaluator config: %w", err)
	}

	ev := &Evaluator{
		cfg: cfg,
		dt:  cfg.T / float64(cfg.NSteps),
		log: log.With().Str("component", "evaluator").Logger(),
	}
	ev.newPath = func(seed int64) paths.Generator {
		return paths.NewGBM(cfg.S0, cfg.R, cfg.Sigma, seed)
	}
	return ev, nil
}

// SetPathSource replaces the price-path generator. The builder receives the
// per-episode seed and must return a generator producing NSteps+1 prices.
func (ev *Evaluator) SetPathSource(build func(seed int64) paths.Generator) {
	ev.newPath = build
}

// Config returns the evaluation parameters.
func (ev *Evaluator) Config() Config { return ev.cfg }

// SimulatePricePath generates one seeded price path of NSteps+1 points.
func (ev *Evaluator) SimulatePricePath(seed int64) []float64 {
	return ev.newPath(seed).Path(ev.cfg.NSteps, ev.dt)
}

// EvaluateStrategy runs one strategy over one price path and returns the
// episode summary. The strategy must be freshly constructed; it is
// initialized here and rebalanced at every step after the first. The PnL
// series is the mark-to-market book value, which starts near zero because
// the premium is offset by the short option liability.
//
// There is no rebalance at the final path point: the book is valued at
// expiry with the last hedge still on, so no liquidation trade or cost is
// charged. The aggregate series covers the NSteps points before expiry.
func (ev *Evaluator) EvaluateStrategy(strategy *hedging.Strategy, path []float64, name string) (EpisodeResult, error) {
	if len(path) != ev.cfg.NSteps+1 {
		return EpisodeResult{}, fmt.Errorf("path has %d points, want %d", len(path), ev.cfg.NSteps+1)
	}

	premium := strategy.Initialize()

	pnls := make([]float64, 0, ev.cfg.NSteps)
	positions := make([]float64, 0, ev.cfg.NSteps)
	var hedgeErrors []float64

	for i := 0; i < ev.cfg.NSteps; i++ {
		price := path[i]
		tau := ev.cfg.T - float64(i)*ev.dt

		if i > 0 {
			if _, err := strategy.Rebalance(price, tau); err != nil {
				return EpisodeResult{}, fmt.Errorf("rebalance at step %d: %w", i, err)
			}
		}

		pnls = append(pnls, strategy.PortfolioValue(price, tau).PortfolioValue)
		positions = append(positions, strategy.StockPosition())

		// Tracking error against the analytic delta, only while the
		// option is alive.
		if tau > 0 {
			g := pricing.ComputeGreeks(price, ev.cfg.K, tau, ev.cfg.R, ev.cfg.Sigma, ev.cfg.OptionType)
			hedgeErrors = append(hedgeErrors, abs(strategy.StockPosition()-g.Delta))
		}
	}

	finalPrice := path[ev.cfg.NSteps]
	finalPnL := strategy.PortfolioValue(finalPrice, 0).PortfolioValue

	ev.log.Debug().
		Str("strategy", name).
		Float64("premium", premium).
		Float64("final_pnl", finalPnL).
		Float64("total_costs", strategy.TotalCosts()).
		Msg("episode complete")

	return EpisodeResult{
		StrategyName:    name,
		FinalPnL:        finalPnL,
		TotalCosts:      strategy.TotalCosts(),
		NetPnL:          finalPnL - strategy.TotalCosts(),
		SharpeRatio:     formulas.SharpeRatio(pnls),
		MaxDrawdown:     formulas.Min(pnls),
		HedgeErrorMean:  formulas.Mean(hedgeErrors),
		HedgeErrorStd:   formulas.PopStdDev(hedgeErrors),
		NumRebalances:   ev.cfg.NSteps,
		AvgPosition:     formulas.Mean(positions),
		FinalStockPrice: finalPrice,
		EpisodeLength:   ev.cfg.NSteps,
		Timestamp:       time.Now().UTC(),
	}, nil
}

// BacktestStrategy runs numEpisodes independent episodes for one strategy.
// Episode i uses seed+i, so runs with the same base seed are reproducible
// and every strategy in a comparison sees the same set of paths.
func (ev *Evaluator) BacktestStrategy(name string, factory StrategyFactory, numEpisodes int, seed int64) (BacktestResult, error) {
	if numEpisodes <= 0 {
		return BacktestResult{}, fmt.Errorf("number of episodes must be positive, got %d", numEpisodes)
	}

	episodes := make([]EpisodeResult, 0, numEpisodes)
	pnls := make([]float64, 0, numEpisodes)
	sharpes := make([]float64, 0, numEpisodes)
	costs := make([]float64, 0, numEpisodes)
	hedgeErrors := make([]float64, 0, numEpisodes)
	wins := 0

	for i := 0; i < numEpisodes; i++ {
		strategy, err := factory()
		if err != nil {
			return BacktestResult{}, fmt.Errorf("building strategy %q: %w", name, err)
		}

		path := ev.SimulatePricePath(seed + int64(i))
		episode, err := ev.EvaluateStrategy(strategy, path, name)
		if err != nil {
			return BacktestResult{}, fmt.Errorf("episode %d of %q: %w", i, name, err)
		}

		episodes = append(episodes, episode)
		pnls = append(pnls, episode.FinalPnL)
		sharpes = append(sharpes, episode.SharpeRatio)
		costs = append(costs, episode.TotalCosts)
		hedgeErrors = append(hedgeErrors, episode.HedgeErrorMean)
		if episode.FinalPnL > 0 {
			wins++
		}
	}

	result := BacktestResult{
		RunID:          uuid.NewString(),
		StrategyName:   name,
		NumEpisodes:    numEpisodes,
		MeanPnL:        formulas.Mean(pnls),
		StdPnL:         formulas.PopStdDev(pnls),
		MeanSharpe:     formulas.Mean(sharpes),
		MeanCosts:      formulas.Mean(costs),
		WinRate:        float64(wins) / float64(numEpisodes),
		BestPnL:        formulas.Max(pnls),
		WorstPnL:       formulas.Min(pnls),
		MeanHedgeError: formulas.Mean(hedgeErrors),
		VaR95:          formulas.VaR(pnls, 0.95),
		CVaR95:         formulas.CVaR(pnls, 0.95),
		Timestamp:      time.Now().UTC(),
		Episodes:       episodes,
	}

	ev.log.Info().
		Str("strategy", name).
		Int("episodes", numEpisodes).
		Float64("mean_pnl", result.MeanPnL).
		Float64("win_rate", result.WinRate).
		Msg("backtest complete")

	return result, nil
}

// CompareStrategies backtests every entry on the same set of seeded paths
// and returns the results sorted by mean PnL, best first.
func (ev *Evaluator) CompareStrategies(entries []NamedFactory, numEpisodes int, seed int64) ([]BacktestResult, error) {
	results := make([]BacktestResult, 0, len(entries))
	for _, entry := range entries {
		result, err := ev.BacktestStrategy(entry.Name, entry.Factory, numEpisodes, seed)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].MeanPnL > results[j].MeanPnL
	})

	return results, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
