package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tsawler/sentiment"
)

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Score texts given as arguments, or read them from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		scorer, err := loadScorer()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) > 0 {
			for _, text := range args {
				if err := printResponse(out, sentiment.Handle(cmd.Context(), scorer, sentiment.NewRequest(text)), asJSON); err != nil {
					return err
				}
			}
			return nil
		}
		return interactive(cmd, scorer, asJSON)
	},
}

func init() {
	predictCmd.Flags().Bool("json", false, "Print responses as JSON")
}

// interactive scores one line at a time until EOF or "quit".
func interactive(cmd *cobra.Command, scorer sentiment.Scorer, asJSON bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scoring with the %s backend. Enter text, or 'quit' to exit.\n", scorer.Backend())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return nil
		case "":
			continue
		}
		if err := printResponse(out, sentiment.Handle(cmd.Context(), scorer, sentiment.NewRequest(line)), asJSON); err != nil {
			return err
		}
	}
}

func printResponse(w io.Writer, resp sentiment.Response, asJSON bool) error {
	if asJSON {
		data, err := json.Marshal(resp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	switch r := resp.(type) {
	case sentiment.Success:
		fmt.Fprintf(w, "%s (confidence %.3f, %s)\n", r.Sentiment, r.Confidence, r.Backend)
		if len(r.Emotions) > 0 {
			fmt.Fprintf(w, "  emotions: %s\n", strings.Join(r.Emotions, ", "))
		}
	case sentiment.Failure:
		fmt.Fprintf(w, "error (%s): %s\n", r.Status, r.Error)
	}
	return nil
}
