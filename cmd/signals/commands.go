package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/export"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/strategy"
)

var (
	configPath string
	symbol     string
	days       int
	csvInput   string
	outPath    string
	tail       int
	smoothing  string
	bandK      float64

	rootCmd = &cobra.Command{
		Use:   "signals",
		Short: "Compute momentum and mean-reversion signals for a daily price series",
	}
	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Fetch a series, run both engines and print the latest rows",
		Long: `Fetches daily closes from the configured provider (or a local CSV file),
computes momentum, RSI, rolling bands and Z-scores, and prints a table of the
most recent rows. Use --out to write the full analysis as CSV.`,
		Args: cobra.NoArgs,
		RunE: runAnalyze,
	}
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Print the latest signal report and recent signal history",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&symbol, "symbol", "s", "", "symbol to analyze (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&days, "days", "d", 0, "number of daily bars to fetch (overrides config)")
	rootCmd.PersistentFlags().StringVar(&csvInput, "csv", "", "read bars from a local CSV file instead of the configured provider")
	rootCmd.PersistentFlags().StringVar(&smoothing, "rsi-smoothing", "", "RSI smoothing: wilder, ewm or sma")
	rootCmd.PersistentFlags().Float64Var(&bandK, "band-k", 0, "band width and Z-score threshold in standard deviations")

	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the full analysis as CSV to this file")
	analyzeCmd.Flags().IntVarP(&tail, "tail", "n", 10, "number of most recent rows to print")

	rootCmd.AddCommand(analyzeCmd, reportCmd)
}

// loadAnalysis resolves config and flags, then fetches and analyzes the series.
func loadAnalysis(ctx context.Context) (*model.Analysis, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if symbol != "" {
		cfg.DataSource.Symbol = symbol
	}
	if days > 0 {
		cfg.DataSource.Days = days
	}
	if csvInput != "" {
		cfg.DataSource.Provider = "csv"
		cfg.DataSource.CSVPath = csvInput
	}
	if smoothing != "" {
		cfg.Strategy.Momentum.RSISmoothing = smoothing
	}
	if bandK != 0 {
		cfg.Strategy.MeanReversion.BandK = bandK
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	fetcher, err := collector.NewFetcher(collector.Options{
		Provider:  cfg.DataSource.Provider,
		BaseURL:   cfg.DataSource.BaseURL,
		APIKey:    cfg.DataSource.APIKey,
		CSVPath:   cfg.DataSource.CSVPath,
		Proxy:     cfg.Proxy,
		RateLimit: cfg.DataSource.RateLimit,
	})
	if err != nil {
		return nil, err
	}
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Days)
	col.MaxRetries = cfg.DataSource.MaxRetries
	series, err := col.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return strategy.Analyze(series, cfg.Strategy)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	a, err := loadAnalysis(ctx)
	if err != nil {
		return err
	}
	if err := printTable(cmd.OutOrStdout(), a, tail); err != nil {
		return err
	}

	if outPath == "" {
		return nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, a); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %d rows to %s\n", a.Len(), outPath)
	return nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	a, err := loadAnalysis(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, notifier.FormatSignalReport(a))
	fmt.Fprintln(out, notifier.FormatHistory(a, 10))
	return nil
}

func cell(v model.Value, verb string) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf(verb, v.V)
}

// printTable writes the last n rows as an aligned table.
func printTable(w io.Writer, a *model.Analysis, n int) error {
	th := a.Thresholds
	longCol := model.MomentumColumn(th.MomentumPeriods[len(th.MomentumPeriods)-1])

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Date\tClose\t%s\tRSI\tSMA\tLower\tUpper\tZ\tMomentum\tMeanRev\t\n", longCol)
	start := a.Len() - n
	if start < 0 || n <= 0 {
		start = 0
	}
	for i := start; i < a.Len(); i++ {
		r := a.At(i)
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Time.Format("2006-01-02"), r.Close,
			cell(r.Indicators[longCol], "%+.4f"),
			cell(r.Indicators[model.ColRSI], "%.1f"),
			cell(r.Indicators[model.ColSMA], "%.2f"),
			cell(r.Indicators[model.ColLowerBand], "%.2f"),
			cell(r.Indicators[model.ColUpperBand], "%.2f"),
			cell(r.Indicators[model.ColZScore], "%+.2f"),
			r.Momentum, r.MeanReversion)
	}
	return tw.Flush()
}
