package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aristath/hedger/internal/evaluation"
)

// RenderMarkdown renders the strategy comparison as a Markdown document.
// Results are written in the order given; callers that want a ranking sort
// before rendering.
func RenderMarkdown(results []evaluation.BacktestResult, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Hedging Strategy Comparison\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format("2006-01-02 15:04:05 UTC")))
	if len(results) > 0 {
		sb.WriteString(fmt.Sprintf("Episodes per strategy: %d\n\n", results[0].NumEpisodes))
	}

	sb.WriteString("| Strategy | Mean PnL | Std PnL | Sharpe | Win Rate | Mean Costs | Hedge Error | VaR 95% | CVaR 95% |\n")
	sb.WriteString("|----------|---------:|--------:|-------:|---------:|-----------:|------------:|--------:|---------:|\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f | %.4f | %.1f%% | %.4f | %.4f | %.4f | %.4f |\n",
			r.StrategyName,
			r.MeanPnL,
			r.StdPnL,
			r.MeanSharpe,
			r.WinRate*100,
			r.MeanCosts,
			r.MeanHedgeError,
			r.VaR95,
			r.CVaR95,
		))
	}

	sb.WriteString("\n## Extremes\n\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("- **%s**: best %.4f, worst %.4f over %d episodes\n",
			r.StrategyName, r.BestPnL, r.WorstPnL, r.NumEpisodes))
	}

	return sb.String()
}

// WriteMarkdown renders the comparison and writes it to path, creating
// parent directories as needed.
func WriteMarkdown(path string, results []evaluation.BacktestResult, generatedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(RenderMarkdown(results, generatedAt)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
