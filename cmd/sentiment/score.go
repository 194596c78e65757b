package main

import (
	"github.com/spf13/cobra"
	"github.com/tsawler/sentiment"
)

var scoreCmd = &cobra.Command{
	Use:   "score [text...]",
	Short: "Score with the word-list fallback only",
	Long:  "score ignores any trained artifacts and uses the lexicon scorer. Its confidence is a heuristic, not a calibrated probability.",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		opts, err := lexiconOptions()
		if err != nil {
			return err
		}
		scorer := sentiment.NewLexiconScorer(opts...)

		if len(args) == 0 {
			return interactive(cmd, scorer, asJSON)
		}
		for _, text := range args {
			if err := printResponse(cmd.OutOrStdout(), sentiment.Handle(cmd.Context(), scorer, sentiment.NewRequest(text)), asJSON); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().Bool("json", false, "Print responses as JSON")
}
