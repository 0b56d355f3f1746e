package backtest

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"UpbitSentinel/internal/calculator"
	"UpbitSentinel/internal/model"
	"UpbitSentinel/internal/strategy"
)

// WriteCSV writes one row per simulated instrument to a results CSV under
// dir and returns the file path.
func WriteCSV(dir string, results []*model.BacktestResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("backtest_results_%s.csv", time.Now().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create results csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"symbol", "initial_value", "final_value", "total_return_pct",
		"win_rate_pct", "total_trades", "winning_trades",
		"avg_profit_pct", "avg_loss_pct", "profit_factor",
		"max_drawdown_pct", "test_days",
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Symbol,
			fmtFloat(r.InitialValue, 0),
			fmtFloat(r.FinalValue, 0),
			fmtFloat(r.TotalReturn, 2),
			fmtFloat(r.WinRate, 1),
			strconv.Itoa(r.TotalTrades),
			strconv.Itoa(r.WinningTrades),
			fmtFloat(r.AvgProfit, 2),
			fmtFloat(r.AvgLoss, 2),
			fmtFloat(r.ProfitFactor, 2),
			fmtFloat(r.MaxDrawdown, 2),
			strconv.Itoa(r.TestDays),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

// WriteReport renders the plain-text investment report under dir and
// returns the file path.
func WriteReport(dir string, results []*model.BacktestResult, failures []Failure, profile strategy.Profile, params calculator.Params, initialCapital float64) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("investment_report_%s.txt", time.Now().Format("20060102_150405")))

	text := RenderReport(results, failures, profile, params, initialCapital)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// RenderReport builds the report text: aggregate statistics, a grade
// distribution by total return, the top performers, and the strategy
// parameters the run used.
func RenderReport(results []*model.BacktestResult, failures []Failure, profile strategy.Profile, params calculator.Params, initialCapital float64) string {
	var b strings.Builder
	line := strings.Repeat("=", 60)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "UPBIT BOLLINGER SQUEEZE BACKTEST REPORT")
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Instruments simulated: %d (failed: %d)\n", len(results), len(failures))
	fmt.Fprintf(&b, "Initial capital per instrument: %s KRW\n", fmtFloat(initialCapital, 0))
	fmt.Fprintln(&b)

	if len(results) > 0 {
		var totalReturn, totalWinRate float64
		var profitable int
		for _, r := range results {
			totalReturn += r.TotalReturn
			totalWinRate += r.WinRate
			if r.TotalReturn > 0 {
				profitable++
			}
		}
		fmt.Fprintln(&b, "--- Aggregate ---")
		fmt.Fprintf(&b, "Average return:   %+.2f%%\n", totalReturn/float64(len(results)))
		fmt.Fprintf(&b, "Average win rate: %.1f%%\n", totalWinRate/float64(len(results)))
		fmt.Fprintf(&b, "Profitable:       %d/%d\n", profitable, len(results))
		fmt.Fprintln(&b)

		excellent, good, modest, losing := gradeDistribution(results)
		fmt.Fprintln(&b, "--- Grade distribution ---")
		fmt.Fprintf(&b, "Excellent (>= +20%%): %d\n", excellent)
		fmt.Fprintf(&b, "Good (+10%% to +20%%): %d\n", good)
		fmt.Fprintf(&b, "Modest (0%% to +10%%): %d\n", modest)
		fmt.Fprintf(&b, "Losing (< 0%%):       %d\n", losing)
		fmt.Fprintln(&b)

		top := results
		if len(top) > 3 {
			top = top[:3]
		}
		fmt.Fprintln(&b, "--- Top performers ---")
		for i, r := range top {
			fmt.Fprintf(&b, "%d. %-12s %+8.2f%%  win rate %.1f%%  trades %d  max DD %.2f%%\n",
				i+1, r.Symbol, r.TotalReturn, r.WinRate, r.TotalTrades, r.MaxDrawdown)
		}
		fmt.Fprintln(&b)

		fmt.Fprintln(&b, "--- All results ---")
		for _, r := range results {
			pf := fmtFloat(r.ProfitFactor, 2)
			if math.IsInf(r.ProfitFactor, 1) {
				pf = "inf"
			}
			fmt.Fprintf(&b, "%-12s return %+8.2f%%  final %s  trades %d  win %.1f%%  PF %s\n",
				r.Symbol, r.TotalReturn, fmtFloat(r.FinalValue, 0), r.TotalTrades, r.WinRate, pf)
		}
		fmt.Fprintln(&b)
	}

	if len(failures) > 0 {
		fmt.Fprintln(&b, "--- Failures ---")
		for _, f := range failures {
			fmt.Fprintf(&b, "%-12s %v\n", f.Instrument.Symbol, f.Err)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, "--- Strategy parameters ---")
	fmt.Fprintf(&b, "Profile:              %s\n", profile.Name)
	fmt.Fprintf(&b, "RSI overbought:       %.0f\n", profile.RSIOverbought)
	fmt.Fprintf(&b, "Sell 50%% threshold:   %.2f\n", profile.Sell50Threshold)
	fmt.Fprintf(&b, "Sell all threshold:   %.2f\n", profile.SellAllThreshold)
	fmt.Fprintf(&b, "Bollinger period:     %d (x%.1f std)\n", params.BBPeriod, params.BBStdMultiplier)
	fmt.Fprintf(&b, "RSI period:           %d\n", params.RSIPeriod)
	fmt.Fprintf(&b, "Volatility lookback:  %d (quantile %.2f)\n", params.VolatilityLookback, params.VolatilityThreshold)
	fmt.Fprintln(&b, line)

	return b.String()
}

func gradeDistribution(results []*model.BacktestResult) (excellent, good, modest, losing int) {
	for _, r := range results {
		switch {
		case r.TotalReturn >= 20:
			excellent++
		case r.TotalReturn >= 10:
			good++
		case r.TotalReturn >= 0:
			modest++
		default:
			losing++
		}
	}
	return
}

func fmtFloat(v float64, prec int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
