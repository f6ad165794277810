package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/54b3r/legalqa-go/internal/tui"
)

// NewChatCmd constructs the `legalqa chat` command, an interactive terminal
// client. With --server it talks to a running `legalqa serve`; otherwise it
// answers in-process.
func NewChatCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive terminal UI for asking questions",
		Long: `Open a full-screen terminal UI. Type a question and press Enter; the
answer and its source documents are shown below. Esc clears, Ctrl+C quits.

Examples:
  legalqa chat
  legalqa chat --server http://localhost:5000`,
		Annotations: map[string]string{annotationQuiet: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Cancelled when the program exits so an unfinished question stops too.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var asker tui.Asker
			var subtitle string

			if serverURL != "" {
				asker = tui.NewClient(serverURL)
				subtitle = "connected to " + serverURL
			} else {
				ret, err := buildRetriever(ctx)
				if err != nil {
					return fmt.Errorf("chat: %w", err)
				}
				defer ret.close()

				answerer, providerCfg, err := buildAnswerer(ctx, ret.retriever)
				if err != nil {
					return fmt.Errorf("chat: %w", err)
				}
				asker = answerer
				subtitle = fmt.Sprintf("%d documents · %s", ret.retriever.Len(), providerCfg.DisplayName())
				if !answerer.Configured() {
					subtitle += " (not configured)"
				}
			}

			p := tea.NewProgram(tui.New(ctx, asker, subtitle), tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Base URL of a running legalqa server (default: answer in-process)")

	return cmd
}
