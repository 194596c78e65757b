package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tsawler/sentiment"
)

// sampleTexts are scored after training as a quick sanity check.
var sampleTexts = []string{
	"I love this movie! It's amazing!",
	"This is terrible, I hate it.",
	"The weather is okay today.",
	"Fantastic work, really impressed!",
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a classifier and save its artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()
		if flags.Changed("train") {
			cfg.TrainData, _ = flags.GetString("train")
		}
		if flags.Changed("test") {
			cfg.TestData, _ = flags.GetString("test")
		}
		if flags.Changed("seed") {
			cfg.Seed, _ = flags.GetInt64("seed")
		}
		if flags.Changed("max-features") {
			cfg.MaxFeatures, _ = flags.GetInt("max-features")
		}
		if flags.Changed("folds") {
			cfg.Folds, _ = flags.GetInt("folds")
		}
		if flags.Changed("parallelism") {
			cfg.Parallelism, _ = flags.GetInt("parallelism")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		paths := []string{cfg.TrainData}
		if cfg.TestData != "" {
			paths = append(paths, cfg.TestData)
		}
		corpus, stats, err := sentiment.LoadCorpus(paths)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		logger.Info("loaded dataset", "rows", stats.Rows, "kept", stats.Kept,
			"dropped_rows", stats.DroppedRows, "dropped_columns", stats.DroppedColumns, "columns", stats.Columns)

		config := sentiment.DefaultTrainingConfig()
		config.Seed = cfg.Seed
		config.Folds = cfg.Folds
		config.TestSplit = cfg.TestSplit
		config.Parallelism = cfg.Parallelism
		config.Vectorizer.MaxFeatures = cfg.MaxFeatures
		config.Logger = logger
		config.ProgressCallback = func(done, total int, score sentiment.GridScore) {
			logger.Info("grid search progress", "done", done, "total", total,
				"params", score.Params.String(), "mean", score.MeanScore)
		}

		artifacts, report, err := sentiment.NewTrainer(config).Fit(ctx, corpus)
		if err != nil {
			return err
		}
		if err := artifacts.Write(cfg.ArtifactDir, report); err != nil {
			return fmt.Errorf("save artifacts: %w", err)
		}
		logger.Info("saved artifacts", "dir", cfg.ArtifactDir, "run_id", artifacts.RunID)

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, report.String())

		pipeline, err := sentiment.NewPipeline(artifacts)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Sample predictions:")
		for _, text := range sampleTexts {
			result, err := pipeline.Score(ctx, text)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  %q: %v\n", text, err)
				continue
			}
			fmt.Fprintf(out, "  %-40q -> %s\n", text, result.Label)
		}
		return nil
	},
}

func init() {
	trainCmd.Flags().String("train", "", "Training CSV (overrides SENTIMENT_TRAIN_DATA)")
	trainCmd.Flags().String("test", "", "Second CSV combined with the training one (overrides SENTIMENT_TEST_DATA)")
	trainCmd.Flags().Int64("seed", 42, "Seed of the train/test split")
	trainCmd.Flags().Int("max-features", 10000, "Vocabulary size cap")
	trainCmd.Flags().Int("folds", 3, "Cross-validation folds")
	trainCmd.Flags().Int("parallelism", 0, "Grid points trained at once (0 uses all CPUs)")
}
