package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/legalqa-go/internal/qa"
	"github.com/54b3r/legalqa-go/internal/tui"
)

// NewAskCmd constructs the `legalqa ask` command, which answers a single
// question in-process and prints the answer with its sources.
func NewAskCmd() *cobra.Command {
	var stream bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one legal question from the document folder",
		Long: `Answer a single question without starting the server.

The question is ranked against every document in CORPUS_DIR and the top
matches are sent to the configured LLM.

Examples:
  legalqa ask "what is adverse possession?"
  legalqa ask --stream "what must a claimant prove in negligence?"
  legalqa ask --json "is a verbal contract binding?" | jq .sources`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ret, err := buildRetriever(ctx)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer ret.close()

			answerer, _, err := buildAnswerer(ctx, ret.retriever)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			question := strings.Join(args, " ")

			if asJSON {
				ans, err := answerer.Ask(ctx, question)
				if err != nil {
					return err //nolint:wrapcheck // CLI entry point; error goes directly to cobra
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ans) //nolint:wrapcheck // stdout write
			}

			var ans *qa.Answer
			if stream {
				ans, err = answerer.AskStream(ctx, question, out)
				if err == nil {
					fmt.Fprintln(out)
				}
			} else {
				ans, err = answerer.Ask(ctx, question)
				if err == nil {
					fmt.Fprintln(out, ans.Answer)
				}
			}
			if err != nil {
				return err //nolint:wrapcheck // CLI entry point; error goes directly to cobra
			}

			printSources(out, ans)
			return nil
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "Stream the answer as it is generated")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the API response shape as JSON")

	return cmd
}

// printSources lists the documents an answer was built from.
func printSources(w io.Writer, ans *qa.Answer) {
	if len(ans.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for i, src := range ans.Sources {
		fmt.Fprintf(w, "  %d. %s  %s\n", i+1, src.Filename, tui.FormatRelevance(src.Score))
	}
}
