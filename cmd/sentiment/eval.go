package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"github.com/tsawler/sentiment"
)

var evalCmd = &cobra.Command{
	Use:   "eval <csv>...",
	Short: "Score a labeled CSV and print a classification report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		corpus, stats, err := sentiment.LoadCorpus(args)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		logger.Info("loaded dataset", "rows", stats.Rows, "kept", stats.Kept, "dropped_rows", stats.DroppedRows)

		base, err := loadScorer()
		if err != nil {
			return err
		}
		reg := prometheus.NewRegistry()
		scorer := sentiment.Instrument(base, sentiment.NewScorerMetrics(reg))

		var truth, predicted []sentiment.Label
		for _, ex := range corpus {
			result, err := scorer.Score(ctx, ex.Text)
			if err != nil {
				if sentiment.IsKind(err, sentiment.KindInputValidation) {
					logger.Debug("skipping unscorable row", "text", ex.Text)
					continue
				}
				return err
			}
			truth = append(truth, sentiment.Label(ex.Label))
			predicted = append(predicted, result.Label)
		}

		eval, err := sentiment.EvaluateLabels(truth, predicted)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Backend: %s\nScored: %d of %d\nAccuracy: %.4f\n\n", scorer.Backend(), len(truth), len(corpus), eval.Accuracy)
		fmt.Fprintln(out, eval.String())
		return printMetrics(out, reg)
	},
}

// printMetrics writes the counters gathered during the run.
func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			pairs := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
			}
			fmt.Fprintf(w, "%s{%s} %.0f\n", mf.GetName(), strings.Join(pairs, ","), m.GetCounter().GetValue())
		}
	}
	return nil
}
