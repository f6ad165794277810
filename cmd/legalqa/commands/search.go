package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/legalqa-go/internal/rag"
	"github.com/54b3r/legalqa-go/internal/tui"
)

// snippetLen caps the document preview printed per search hit.
const snippetLen = 160

// NewSearchCmd constructs the `legalqa search` command, which runs retrieval
// only. It needs no LLM credentials and is useful for tuning the corpus.
func NewSearchCmd() *cobra.Command {
	var topK int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Rank documents against a query without calling the LLM",
		Long: `Rank every document in CORPUS_DIR against a query using TF-IDF cosine
similarity and print the best matches.

Examples:
  legalqa search "duty of care"
  legalqa search --top-k 10 --json "mens rea"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			ret, err := buildRetriever(ctx)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer ret.close()

			results, err := ret.retriever.Retrieve(ctx, strings.Join(args, " "), topK)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			if results == nil {
				results = []rag.Result{}
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results) //nolint:wrapcheck // stdout write
			}

			if len(results) == 0 {
				fmt.Fprintln(out, "No matching documents.")
				return nil
			}
			for i, res := range results {
				fmt.Fprintf(out, "%d. %s  %s\n   %s\n", i+1, res.Filename, tui.FormatRelevance(res.Score), snippet(res.Text))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", rag.DefaultTopK, "Number of documents to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

// snippet flattens whitespace and truncates text on a rune boundary.
func snippet(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= snippetLen {
		return flat
	}
	return string(runes[:snippetLen]) + "..."
}
