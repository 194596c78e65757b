package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tsawler/sentiment"
	"github.com/tsawler/sentiment/internal/config"
	"github.com/tsawler/sentiment/internal/logging"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sentiment",
	Short:         "Train and run a three-class sentiment classifier",
	Long:          "sentiment trains a TF-IDF + SVM classifier on labeled tweets and scores text with it, falling back to a word-list scorer when no model is available.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("artifacts") {
			cfg.ArtifactDir, _ = flags.GetString("artifacts")
		}
		if flags.Changed("lexicon") {
			cfg.LexiconPath, _ = flags.GetString("lexicon")
		}
		if flags.Changed("log-level") {
			cfg.LogLevel, _ = flags.GetString("log-level")
		}
		if flags.Changed("log-format") {
			cfg.LogFormat, _ = flags.GetString("log-format")
		}
		logger = logging.InitLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("artifacts", "", "Artifact directory (overrides SENTIMENT_ARTIFACT_DIR)")
	rootCmd.PersistentFlags().String("lexicon", "", "JSON word lists for the fallback scorer (overrides SENTIMENT_LEXICON)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "text or json (overrides LOG_FORMAT)")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(evalCmd)
}

// lexiconOptions returns the fallback options for the configured word lists.
func lexiconOptions() ([]sentiment.LexiconOption, error) {
	if cfg.LexiconPath == "" {
		return nil, nil
	}
	lex, err := sentiment.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		return nil, err
	}
	return []sentiment.LexiconOption{sentiment.UsingLexicon(lex)}, nil
}

// loadScorer returns the learned pipeline, or the fallback when no usable
// artifacts exist.
func loadScorer() (sentiment.Scorer, error) {
	opts, err := lexiconOptions()
	if err != nil {
		return nil, err
	}
	return sentiment.NewScorer(cfg.ArtifactDir, logger, opts...)
}
