// Package reporting writes backtest results to disk as CSV and Markdown.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/aristath/hedger/internal/evaluation"
)

// summaryRow is the flat CSV projection of a BacktestResult.
type summaryRow struct {
	RunID          string  `csv:"run_id"`
	Strategy       string  `csv:"strategy"`
	Episodes       int     `csv:"episodes"`
	MeanPnL        float64 `csv:"mean_pnl"`
	StdPnL         float64 `csv:"std_pnl"`
	MeanSharpe     float64 `csv:"mean_sharpe"`
	MeanCosts      float64 `csv:"mean_costs"`
	WinRate        float64 `csv:"win_rate"`
	BestPnL        float64 `csv:"best_pnl"`
	WorstPnL       float64 `csv:"worst_pnl"`
	MeanHedgeError float64 `csv:"mean_hedge_error"`
	VaR95          float64 `csv:"var_95"`
	CVaR95         float64 `csv:"cvar_95"`
	Timestamp      string  `csv:"timestamp"`
}

// episodeRow is the flat CSV projection of a single episode.
type episodeRow struct {
	Strategy        string  `csv:"strategy"`
	Episode         int     `csv:"episode"`
	FinalPnL        float64 `csv:"final_pnl"`
	TotalCosts      float64 `csv:"total_costs"`
	NetPnL          float64 `csv:"net_pnl"`
	SharpeRatio     float64 `csv:"sharpe_ratio"`
	MaxDrawdown     float64 `csv:"max_drawdown"`
	HedgeErrorMean  float64 `csv:"hedge_error_mean"`
	NumRebalances   int     `csv:"num_rebalances"`
	AvgPosition     float64 `csv:"avg_position"`
	FinalStockPrice float64 `csv:"final_stock_price"`
}

// WriteSummaryCSV writes one row per strategy to path, creating parent
// directories as needed.
func WriteSummaryCSV(path string, results []evaluation.BacktestResult) error {
	rows := make([]summaryRow, len(results))
	for i, r := range results {
		rows[i] = summaryRow{
			RunID:          r.RunID,
			Strategy:       r.StrategyName,
			Episodes:       r.NumEpisodes,
			MeanPnL:        r.MeanPnL,
			StdPnL:         r.StdPnL,
			MeanSharpe:     r.MeanSharpe,
			MeanCosts:      r.MeanCosts,
			WinRate:        r.WinRate,
			BestPnL:        r.BestPnL,
			WorstPnL:       r.WorstPnL,
			MeanHedgeError: r.MeanHedgeError,
			VaR95:          r.VaR95,
			CVaR95:         r.CVaR95,
			Timestamp:      r.Timestamp.Format("2006-01-02T15:04:05Z"),
		}
	}
	return writeCSV(path, &rows)
}

// WriteEpisodesCSV writes one row per episode across all strategies.
func WriteEpisodesCSV(path string, results []evaluation.BacktestResult) error {
	var rows []episodeRow
	for _, r := range results {
		for i, ep := range r.Episodes {
			rows = append(rows, episodeRow{
				Strategy:        r.StrategyName,
				Episode:         i,
				FinalPnL:        ep.FinalPnL,
				TotalCosts:      ep.TotalCosts,
				NetPnL:          ep.NetPnL,
				SharpeRatio:     ep.SharpeRatio,
				MaxDrawdown:     ep.MaxDrawdown,
				HedgeErrorMean:  ep.HedgeErrorMean,
				NumRebalances:   ep.NumRebalances,
				AvgPosition:     ep.AvgPosition,
				FinalStockPrice: ep.FinalStockPrice,
			})
		}
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(rows, file); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
