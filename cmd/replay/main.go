// Package main provides the entry point for the decision-replay CLI tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/backtest"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/config"
	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/decision"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		historyPath = flag.String("history", "", "Path to settled-ticket history JSON (required)")
		output      = flag.String("output", "", "Optional output path for full results JSON")
		sweep       = flag.Bool("sweep", false, "Sweep minimum-score thresholds instead of a single run")
		minAccepted = flag.Int("min-accepted", 30, "Minimum accepted tickets for a sweep run to qualify")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if *historyPath == "" {
		logger.Fatal("--history is required")
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	history, err := loadHistory(*historyPath)
	if err != nil {
		logger.Fatalf("Failed to load history: %v", err)
	}

	thresholds := decision.Thresholds{
		MinScore:           cfg.Decision.MinScore,
		MaxContradictions:  cfg.Decision.MaxContradictions,
		DrawEntropyPenalty: cfg.Decision.DrawEntropyPenalty,
		LeagueWeights:      cfg.Decision.LeagueWeights,
	}

	logger.WithFields(logrus.Fields{
		"tickets":   len(history),
		"min_score": thresholds.MinScore,
		"sweep":     *sweep,
	}).Info("Starting replay")

	if *sweep {
		runSweep(history, thresholds, *minAccepted, *output, logger)
		return
	}

	result, err := backtest.Replay(history, thresholds)
	if err != nil {
		logger.Fatalf("Replay failed: %v", err)
	}
	printMetrics(result.Metrics)
	writeResults(*output, result, logger)
}

// sweepGrid covers the plausible acceptance range around the production
// default in 0.01 steps.
func sweepGrid() []float64 {
	grid := make([]float64, 0, 31)
	for s := 0.0; s <= 0.30+1e-9; s += 0.01 {
		grid = append(grid, s)
	}
	return grid
}

func runSweep(history []backtest.HistoricalTicket, base decision.Thresholds, minAccepted int, output string, logger *logrus.Logger) {
	results, err := backtest.SweepThresholds(history, base, sweepGrid())
	if err != nil {
		logger.Fatalf("Sweep failed: %v", err)
	}

	fmt.Printf("%-10s %-9s %-8s %-9s %-10s\n", "min_score", "accepted", "hit", "roi", "max_dd")
	for _, r := range results {
		fmt.Printf("%-10.2f %-9d %-8.3f %-9.4f %-10.2f\n",
			r.Thresholds.MinScore,
			r.Metrics.AcceptedTickets,
			r.Metrics.HitRate,
			r.Metrics.ROI,
			r.Metrics.MaxDrawdown,
		)
	}

	if best, found := backtest.BestByROI(results, minAccepted); found {
		fmt.Printf("\nBest qualifying threshold: %.2f (roi %.4f over %d tickets)\n",
			best.Thresholds.MinScore, best.Metrics.ROI, best.Metrics.AcceptedTickets)
	} else {
		fmt.Printf("\nNo threshold qualified with >= %d accepted tickets\n", minAccepted)
	}

	writeResults(output, results, logger)
}

func loadHistory(path string) ([]backtest.HistoricalTicket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var history []backtest.HistoricalTicket
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return history, nil
}

func printMetrics(m backtest.Metrics) {
	fmt.Println("Replay results:")
	fmt.Printf("  tickets:    %d (%d accepted, %.1f%%)\n", m.TotalTickets, m.AcceptedTickets, m.AcceptRate*100)
	fmt.Printf("  hit rate:   %.3f\n", m.HitRate)
	fmt.Printf("  net profit: %+.2f units\n", m.NetProfit)
	fmt.Printf("  roi:        %+.4f per ticket\n", m.ROI)
	fmt.Printf("  max dd:     %.2f units\n", m.MaxDrawdown)
}

func writeResults(path string, v interface{}, logger *logrus.Logger) {
	if path == "" {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to encode results: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Fatalf("Failed to write results: %v", err)
	}
	logger.WithField("path", path).Info("Results written")
}
