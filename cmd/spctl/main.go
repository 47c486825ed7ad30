// Package main provides the spctl CLI entry point for offline analytics runs.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"streampulse/internal/analytics"
	"streampulse/internal/churn"
	"streampulse/internal/config"
	"streampulse/internal/database"
	"streampulse/internal/events"
	"streampulse/internal/export"
	"streampulse/internal/jobs"
	"streampulse/internal/loader"
	"streampulse/internal/logging"
	"streampulse/internal/sessions"
	"streampulse/internal/simulator"
	"streampulse/internal/store"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the spctl CLI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "spctl",
		Short:   "Engagement analytics for short-form watch logs",
		Long:    "spctl ingests watch events, rolls them up into sessions and computes engagement and retention analytics.",
		Version: version,
	}

	rootCmd.SetVersionTemplate("spctl version {{.Version}}\n")

	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newIngestCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newChurnCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

// openDatabase initializes the configured sqlite database and runs migrations.
func openDatabase() (*database.DBManager, *config.Config, error) {
	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := dbManager.MigrateDatabase(); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return dbManager, cfg, nil
}

// newSimulateCmd creates the simulate subcommand.
func newSimulateCmd() *cobra.Command {
	var (
		users       int
		days        int
		maxSessions int
		catalogPath string
		seed        uint64
		outDir      string
		writeCSV    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate synthetic watch events",
		Long:  "Generate deterministic synthetic watch events and write them as parquet (and optionally CSV) for later ingestion.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			logger := logging.NewLogger(cfg)

			var catalog []events.VideoMetadata
			if catalogPath != "" {
				loaded, err := loader.New(logger).LoadVideoCatalog(catalogPath)
				if err != nil {
					return err
				}
				catalog = loaded
			}

			sim := simulator.New(catalog, simulator.Config{
				Users:              users,
				Days:               days,
				MaxSessionsPerUser: maxSessions,
				Seed:               seed,
			}, logger)
			evts := sim.Generate()

			exporter, err := export.New(outDir, logger)
			if err != nil {
				return err
			}
			path, err := exporter.WriteWatchEventsParquet(evts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events to %s\n", len(evts), path)

			if writeCSV {
				path, err = exporter.WriteWatchEventsCSV(evts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events to %s\n", len(evts), path)
			}
			return nil
		},
	}

	defaults := simulator.DefaultConfig()
	cmd.Flags().IntVarP(&users, "users", "u", defaults.Users, "Number of simulated users")
	cmd.Flags().IntVarP(&days, "days", "d", defaults.Days, "Number of days to simulate")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", defaults.MaxSessionsPerUser, "Maximum sessions per user per day")
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "YAML video catalog (synthetic catalog when omitted)")
	cmd.Flags().Uint64Var(&seed, "seed", defaults.Seed, "Random seed")
	cmd.Flags().StringVarP(&outDir, "out", "o", "data", "Output directory")
	cmd.Flags().BoolVar(&writeCSV, "csv", false, "Also write watch_events.csv")

	return cmd
}

// newIngestCmd creates the ingest subcommand.
func newIngestCmd() *cobra.Command {
	var skipRollup bool

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Load watch events into the database",
		Long:  "Validate watch-event files (CSV or parquet, by extension) and insert them into the database, then roll up sessions.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbManager, cfg, err := openDatabase()
			if err != nil {
				return err
			}
			defer dbManager.Close()

			logger := logging.NewLogger(cfg)
			l := loader.New(logger)

			var total int
			for _, path := range args {
				var evts []events.WatchEvent
				switch strings.ToLower(filepath.Ext(path)) {
				case ".csv":
					evts, err = l.LoadWatchEventsCSV(path)
				case ".parquet":
					evts, err = l.LoadWatchEventsParquet(path)
				default:
					return fmt.Errorf("unsupported file type %q (want .csv or .parquet)", path)
				}
				if err != nil {
					return err
				}

				if err := store.InsertEvents(dbManager.GetConnection(), evts); err != nil {
					return fmt.Errorf("failed to insert events from %s: %w", path, err)
				}
				total += len(evts)
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d events from %s\n", len(evts), path)
			}

			if !skipRollup {
				if err := jobs.NewRollupJob(dbManager, logger, cfg).Run(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Session rollup completed")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Done: %d events total\n", total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipRollup, "skip-rollup", false, "Insert events without recomputing session summaries")

	return cmd
}

// newReportCmd creates the report subcommand.
func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print engagement metrics for the stored events",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbManager, cfg, err := openDatabase()
			if err != nil {
				return err
			}
			defer dbManager.Close()

			db := dbManager.GetConnection()
			evts, err := store.FetchAllEvents(db)
			if err != nil {
				return err
			}
			if len(evts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events stored. Run 'spctl ingest' first.")
				return nil
			}
			summaries, err := store.FetchSummaries(db)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Events:                  %d\n", len(evts))
			fmt.Fprintf(out, "Sessions:                %d\n", len(summaries))
			fmt.Fprintf(out, "Completion rate:         %.4f\n", analytics.CompletionRate(evts))
			fmt.Fprintf(out, "Avg session minutes:     %.2f\n", analytics.AverageSessionDuration(summaries))

			stat := analytics.DAUWAURatio(evts)
			fmt.Fprintf(out, "DAU/WAU:                 %d/%d (%.4f)\n", stat.DAU, stat.WAU, stat.Ratio)

			dropOff := analytics.DropOffPositions(evts, cfg.DropOffThresholds)
			labels := make([]string, 0, len(dropOff))
			for label := range dropOff {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				fmt.Fprintf(out, "Drop-off %-15s %.4f\n", label+":", dropOff[label])
			}

			fmt.Fprintln(out, "\nRetention curve:")
			for _, point := range analytics.RetentionCurve(evts, cfg.RetentionCurveOffsets) {
				fmt.Fprintf(out, "  day %-3d %.4f\n", point.Day, point.RetentionRate)
			}

			fmt.Fprintln(out, "\nTop creators by watch share:")
			for _, share := range analytics.TopCreators(evts, 10) {
				fmt.Fprintf(out, "  %-20s %.4f (%.0fs)\n", share.CreatorID, share.WatchShare, share.WatchSeconds)
			}
			return nil
		},
	}

	return cmd
}

// newChurnCmd creates the churn subcommand.
func newChurnCmd() *cobra.Command {
	var atRisk int

	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Train the retention classifier and list at-risk users",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbManager, cfg, err := openDatabase()
			if err != nil {
				return err
			}
			defer dbManager.Close()

			evts, err := store.FetchAllEvents(dbManager.GetConnection())
			if err != nil {
				return err
			}

			features, err := churn.BuildFeatures(evts, cfg.SessionGap())
			if err != nil {
				return err
			}
			labels := churn.LabelRetention(evts, cfg.RetentionHorizonDays)
			dataset := churn.PrepareDataset(features, labels)

			model, err := churn.Train(dataset, churn.TrainParams{
				LearningRate: cfg.ChurnLearningRate,
				Epochs:       cfg.ChurnEpochs,
			})
			if err != nil {
				return err
			}

			scores := model.Predict(dataset)
			sort.Slice(scores, func(i, j int) bool {
				return scores[i].Probability < scores[j].Probability
			})
			if atRisk > len(scores) {
				atRisk = len(scores)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trained on %d users over a %d-day horizon\n", dataset.Len(), cfg.RetentionHorizonDays)
			fmt.Fprintf(out, "Lowest retention probabilities (top %d):\n", atRisk)
			for _, score := range scores[:atRisk] {
				fmt.Fprintf(out, "  %-20s %.4f\n", score.UserID, score.Probability)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&atRisk, "top", "t", 20, "Number of at-risk users to list")

	return cmd
}

// newExportCmd creates the export subcommand.
func newExportCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write analytics artifacts to CSV and parquet files",
		Long:  "Compute session summaries, retention curve, creator shares and churn scores from the stored events and write them to the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbManager, cfg, err := openDatabase()
			if err != nil {
				return err
			}
			defer dbManager.Close()

			logger := logging.NewLogger(cfg)
			evts, err := store.FetchAllEvents(dbManager.GetConnection())
			if err != nil {
				return err
			}
			if len(evts) == 0 {
				return fmt.Errorf("no events stored; run 'spctl ingest' first")
			}

			exporter, err := export.New(outDir, logger)
			if err != nil {
				return err
			}

			sessionized, err := sessions.Sessionize(evts, cfg.SessionGap())
			if err != nil {
				return err
			}
			summaries := sessions.Aggregate(sessionized)

			paths := make([]string, 0, 5)
			path, err := exporter.WriteSessionSummaries(summaries)
			if err != nil {
				return err
			}
			paths = append(paths, path)

			path, err = exporter.WriteRetentionCurve(analytics.RetentionCurve(evts, cfg.RetentionCurveOffsets))
			if err != nil {
				return err
			}
			paths = append(paths, path)

			path, err = exporter.WriteCreatorShares(analytics.CreatorWatchShares(evts))
			if err != nil {
				return err
			}
			paths = append(paths, path)

			path, err = exporter.WriteWatchEventsParquet(evts)
			if err != nil {
				return err
			}
			paths = append(paths, path)

			if path, err = exportChurnScores(exporter, evts, cfg); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipping churn scores: %v\n", err)
			} else {
				paths = append(paths, path)
			}

			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "exports", "Output directory")

	return cmd
}

// exportChurnScores trains the retention model and writes the score file.
// Kept separate so export degrades gracefully when the dataset is too small.
func exportChurnScores(exporter *export.Exporter, evts []events.WatchEvent, cfg *config.Config) (string, error) {
	features, err := churn.BuildFeatures(evts, cfg.SessionGap())
	if err != nil {
		return "", err
	}
	labels := churn.LabelRetention(evts, cfg.RetentionHorizonDays)
	dataset := churn.PrepareDataset(features, labels)

	model, err := churn.Train(dataset, churn.TrainParams{
		LearningRate: cfg.ChurnLearningRate,
		Epochs:       cfg.ChurnEpochs,
	})
	if err != nil {
		return "", err
	}
	return exporter.WriteChurnScores(model.Predict(dataset))
}
