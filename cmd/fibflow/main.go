package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/raykavin/fibflow"
	"github.com/raykavin/fibflow/core"
	"github.com/raykavin/fibflow/engine"
	"github.com/raykavin/fibflow/feed"
	"github.com/raykavin/fibflow/notification"
	"github.com/raykavin/fibflow/report"
	"github.com/raykavin/fibflow/storage"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Command line flags
var (
	// Simulate command flags
	signalFile  string
	feedName    string
	maxTime     string
	interval    string
	seed        int64
	reentryProb float64
	volatility  float64
	drift       float64
	outputFile  string
	dbFile      string
	dbDriver    string

	// Telegram flags
	telegramToken  string
	telegramChatID int64

	// Monte Carlo command flags
	runs  int
	ticks int

	// Replay command flags
	csvFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "fibflow",
		Short:   "Retracement exit simulator",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildSimulateCmd())
	rootCmd.AddCommand(buildMonteCarloCmd())
	rootCmd.AddCommand(buildReplayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildSimulateCmd() *cobra.Command {
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one signal against a price feed",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().StringVarP(&signalFile, "signal", "s", "", "Signal JSON file")
	simulateCmd.Flags().StringVarP(&feedName, "feed", "f", "random", fmt.Sprintf("Price feed %v", feed.Names()))
	simulateCmd.Flags().StringVarP(&csvFile, "csv", "c", "", "CSV price file for the csv feed")
	simulateCmd.Flags().StringVar(&maxTime, "max-time", "1h", "Run budget (e.g. 90m, 1h30m)")
	simulateCmd.Flags().StringVar(&interval, "interval", "1s", "Pause between observations (0 to disable)")
	simulateCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the synthetic feed and re-entry draws (0 = random)")
	simulateCmd.Flags().Float64Var(&reentryProb, "reentry-prob", engine.DefaultReentryProbability, "Re-entry probability per partial exit")
	simulateCmd.Flags().Float64Var(&volatility, "volatility", 0, "Per-tick return deviation of the random feed")
	simulateCmd.Flags().Float64Var(&drift, "drift", 0, "Per-tick expected return of the random feed")
	simulateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the event log as JSON (e.g. ./events.json)")
	simulateCmd.Flags().StringVar(&dbFile, "db", "", "Persist events to this database file")
	simulateCmd.Flags().StringVar(&dbDriver, "db-driver", "buntdb", "Database driver (buntdb or sqlite)")
	simulateCmd.Flags().StringVar(&telegramToken, "telegram-token", "", "Telegram bot token")
	simulateCmd.Flags().Int64Var(&telegramChatID, "telegram-chat", 0, "Telegram chat ID")

	simulateCmd.MarkFlagRequired("signal")

	return simulateCmd
}

func buildMonteCarloCmd() *cobra.Command {
	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Run one signal against many synthetic price paths",
		RunE:  runMonteCarlo,
	}

	monteCarloCmd.Flags().StringVarP(&signalFile, "signal", "s", "", "Signal JSON file")
	monteCarloCmd.Flags().IntVarP(&runs, "runs", "n", 100, "Number of simulated paths")
	monteCarloCmd.Flags().IntVarP(&ticks, "ticks", "t", 1000, "Observations per path")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "Batch seed (0 = random)")
	monteCarloCmd.Flags().Float64Var(&volatility, "volatility", 0, "Per-tick return deviation of the paths")
	monteCarloCmd.Flags().Float64Var(&drift, "drift", 0, "Per-tick expected return of the paths")

	monteCarloCmd.MarkFlagRequired("signal")

	return monteCarloCmd
}

func buildReplayCmd() *cobra.Command {
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Run one signal against recorded CSV prices",
		RunE:  runReplay,
	}

	replayCmd.Flags().StringVarP(&signalFile, "signal", "s", "", "Signal JSON file")
	replayCmd.Flags().StringVarP(&csvFile, "csv", "c", "", "CSV price file (time,price)")
	replayCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the re-entry draws (0 = random)")
	replayCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the event log as JSON (e.g. ./events.json)")

	replayCmd.MarkFlagRequired("signal")
	replayCmd.MarkFlagRequired("csv")

	return replayCmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	signal, err := loadSignal(signalFile)
	if err != nil {
		return err
	}

	feeder, err := feed.New(feedName, feed.Options{
		Symbol:     signal.Symbol,
		StartPrice: signal.Entry,
		Volatility: volatility,
		Drift:      drift,
		Seed:       resolveSeed(),
		File:       csvFile,
		Log:        fibflow.DefaultLog,
	})
	if err != nil {
		return err
	}

	engineOptions, err := buildEngineOptions()
	if err != nil {
		return err
	}

	runnerOptions := []fibflow.Option{fibflow.WithEngineOptions(engineOptions...)}

	if dbFile != "" {
		store, err := openStorage()
		if err != nil {
			return err
		}
		runnerOptions = append(runnerOptions, fibflow.WithStorage(store))
	}

	if telegramToken != "" {
		notifier, err := buildNotifier(telegramToken, telegramChatID)
		if err != nil {
			return err
		}
		runnerOptions = append(runnerOptions, fibflow.WithNotifier(notifier))
	}

	runner, err := fibflow.NewRunner(signal, feeder, runnerOptions...)
	if err != nil {
		return err
	}

	result, runErr := runner.Run(cmd.Context())
	if result != nil {
		report.PrintSummary(os.Stdout, result)
		if err := writeEvents(result.Events); err != nil {
			return err
		}
	}

	return runErr
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	signal, err := loadSignal(signalFile)
	if err != nil {
		return err
	}

	options := []fibflow.MonteCarloOption{
		fibflow.WithRuns(runs),
		fibflow.WithTicks(ticks),
		fibflow.WithPathVolatility(volatility),
		fibflow.WithPathDrift(drift),
	}
	if seed != 0 {
		options = append(options, fibflow.WithSeed(seed))
	}

	batch, err := fibflow.NewMonteCarlo(signal, options...)
	if err != nil {
		return err
	}

	result, runErr := batch.Run(cmd.Context())
	if result != nil && len(result.PnLs) > 0 {
		if err := result.Summary(os.Stdout); err != nil {
			return err
		}
	}

	return runErr
}

func runReplay(cmd *cobra.Command, args []string) error {
	signal, err := loadSignal(signalFile)
	if err != nil {
		return err
	}

	feeder, err := feed.NewCSVFeed(signal.Symbol, csvFile)
	if err != nil {
		return err
	}

	runner, err := fibflow.NewRunner(signal, feeder, fibflow.WithEngineOptions(
		engine.WithTickInterval(0),
		engine.WithReentryPolicy(engine.NewProbabilisticReentry(engine.DefaultReentryProbability, resolveSeed())),
	))
	if err != nil {
		return err
	}

	result, runErr := runner.Run(cmd.Context())
	if result != nil {
		report.PrintSummary(os.Stdout, result)
		if err := writeEvents(result.Events); err != nil {
			return err
		}
	}

	return runErr
}

// loadSignal reads and validates a signal definition from a JSON file.
func loadSignal(file string) (core.Signal, error) {
	var signal core.Signal

	data, err := os.ReadFile(file)
	if err != nil {
		return signal, fmt.Errorf("read signal file: %w", err)
	}

	if err := json.Unmarshal(data, &signal); err != nil {
		return signal, fmt.Errorf("parse signal file: %w", err)
	}

	return signal, signal.Validate()
}

func buildEngineOptions() ([]engine.Option, error) {
	maxDuration, err := str2duration.ParseDuration(maxTime)
	if err != nil {
		return nil, fmt.Errorf("invalid max-time: %w", err)
	}

	tickInterval, err := str2duration.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("invalid interval: %w", err)
	}

	return []engine.Option{
		engine.WithMaxTime(maxDuration),
		engine.WithTickInterval(tickInterval),
		engine.WithReentryPolicy(engine.NewProbabilisticReentry(reentryProb, resolveSeed())),
	}, nil
}

func openStorage() (core.Storage, error) {
	switch dbDriver {
	case "buntdb":
		return storage.NewFromFile(dbFile)
	case "sqlite":
		return storage.NewFromSQLite(dbFile, storage.DefaultConfig())
	default:
		return nil, fmt.Errorf("unknown db driver %q (buntdb or sqlite)", dbDriver)
	}
}

func buildNotifier(token string, chatID int64) (core.Notifier, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram-chat is required with telegram-token")
	}
	return notification.NewTelegram(token, chatID, fibflow.DefaultLog)
}

// writeEvents dumps the event log as a JSON array when an output file was
// requested.
func writeEvents(events []core.TradeEvent) error {
	if outputFile == "" {
		return nil
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(outputFile, data, 0o644)
}

func resolveSeed() int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
