package evaluation

import "time"

// EpisodeResult summarizes a single hedging episode. Instances are
// read-only once created; all fields serialize to the stable JSON keys the
// reporting layer depends on.
type EpisodeResult struct {
	StrategyName string  `json:"strategy_name"`
	FinalPnL     float64 `json:"final_pnl"`
	TotalCosts   float64 `json:"total_costs"`
	NetPnL       float64 `json:"net_pnl"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	// MaxDrawdown is the minimum of the running PnL series (the deepest
	// point below the premium anchor), not a peak-to-trough measure.
	MaxDrawdown     float64   `json:"max_drawdown"`
	HedgeErrorMean  float64   `json:"hedge_error_mean"`
	HedgeErrorStd   float64   `json:"hedge_error_std"`
	NumRebalances   int       `json:"num_rebalances"`
	AvgPosition     float64   `json:"avg_position"`
	FinalStockPrice float64   `json:"final_stock_price"`
	EpisodeLength   int       `json:"episode_length"`
	Timestamp       time.Time `json:"timestamp"`
}

// BacktestResult aggregates EpisodeResults over many independent price
// paths. Read-only once created.
type BacktestResult struct {
	RunID          string    `json:"run_id"`
	StrategyName   string    `json:"strategy_name"`
	NumEpisodes    int       `json:"num_episodes"`
	MeanPnL        float64   `json:"mean_pnl"`
	StdPnL         float64   `json:"std_pnl"`
	MeanSharpe     float64   `json:"mean_sharpe"`
	MeanCosts      float64   `json:"mean_costs"`
	WinRate        float64   `json:"win_rate"`
	BestPnL        float64   `json:"best_pnl"`
	WorstPnL       float64   `json:"worst_pnl"`
	MeanHedgeError float64   `json:"mean_hedge_error"`
	VaR95          float64   `json:"var_95"`
	CVaR95         float64   `json:"cvar_95"`
	Timestamp      time.Time `json:"timestamp"`

	// Episodes carries the per-episode detail for report writers; it is
	// excluded from the aggregate JSON encoding.
	Episodes []EpisodeResult `json:"-"`
}
