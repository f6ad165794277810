// Command legalqa answers legal questions from a fixed folder of text
// documents. It ranks documents with TF-IDF cosine similarity and asks an LLM
// to answer from the best matches. It provides a CLI (via Cobra), an HTTP
// API with a small web UI, and an interactive terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/legalqa-go/cmd/legalqa/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
