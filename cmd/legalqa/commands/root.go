// Package commands defines all Cobra CLI commands for the legalqa binary.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/54b3r/legalqa-go/internal/audit"
	"github.com/54b3r/legalqa-go/internal/config"
	"github.com/54b3r/legalqa-go/internal/logging"
)

// annotationQuiet marks commands whose logs would corrupt a full-screen UI.
const annotationQuiet = "legalqa/quiet"

// configPath holds the --config flag value for YAML config file override.
var configPath string

// envFile holds the --env-file flag value.
var envFile string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "legalqa",
		Short: "Answer legal questions from a folder of documents",
		Long: `legalqa is a minimal retrieval-augmented question answering service.

It loads every .txt file from a documents folder, ranks them against a
question with TF-IDF cosine similarity, and asks an LLM to answer using only
the best matching documents.

The LLM provider is selected via LLM_PROVIDER (openai, groq, azure, ollama,
gemini, ark). Settings are read from .env, then from a YAML config file
(~/.legalqa/config.yaml or ./legalqa.yaml); environment variables always win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env may set LOG_LEVEL, so it is read before the real logger exists.
			if err := config.LoadDotEnv(logging.Discard(), envFile); err != nil {
				return err //nolint:wrapcheck // already prefixed by config
			}

			log := newCommandLogger(cmd)

			path, err := config.Load(configPath, log)
			if err != nil {
				return err //nolint:wrapcheck // already prefixed by config
			}

			// YAML may also set LOG_LEVEL/LOG_FORMAT.
			log = newCommandLogger(cmd)
			slog.SetDefault(log)
			cmd.SetContext(logging.WithLogger(cmd.Context(), log))

			audit.LogCommandStart(cmd.Context(), log, cmd.Name(), path)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.legalqa/config.yaml)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file; missing files are ignored")

	root.AddCommand(
		NewServeCmd(),
		NewAskCmd(),
		NewSearchCmd(),
		NewChatCmd(),
		NewVersionCmd(),
	)

	return root
}

// newCommandLogger returns the process logger, or a discarding one for
// commands that own the terminal.
func newCommandLogger(cmd *cobra.Command) *slog.Logger {
	if cmd.Annotations[annotationQuiet] == "true" {
		return logging.Discard()
	}
	return logging.New()
}
