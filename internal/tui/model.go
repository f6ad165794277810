// Package tui implements `legalqa chat`, an interactive terminal client that
// asks questions and renders the answer with its cited sources.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/54b3r/legalqa-go/internal/qa"
)

// askTimeout bounds a single question.
const askTimeout = 2 * time.Minute

// Asker answers a question. *qa.Answerer and *Client both satisfy it.
type Asker interface {
	Ask(ctx context.Context, question string) (*qa.Answer, error)
}

// answerMsg carries the result of an asynchronous Ask.
type answerMsg struct {
	answer *qa.Answer
	err    error
}

// Model is the Bubble Tea model for `legalqa chat`.
type Model struct {
	// ctx is the program context; quitting cancels questions in flight.
	ctx      context.Context
	asker    Asker
	subtitle string

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	ready    bool
	loading  bool
	question string
	answer   *qa.Answer
	err      string
	width    int
}

// New creates a chat model. ctx bounds every question, so pass the same
// context given to tea.WithContext. subtitle is shown under the title, e.g.
// the corpus size or the server URL.
func New(ctx context.Context, asker Asker, subtitle string) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a legal question and press Enter"
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return Model{
		ctx:      ctx,
		asker:    asker,
		subtitle: subtitle,
		input:    ti,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, spinner and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, fh := resultBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		// title + subtitle + status line + input box
		reserved := 3 + 1 + ih
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-fh)
		m.input.Width = max(10, msg.Width-6)
		m.viewport.SetContent(m.renderResult())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEsc:
			m.input.SetValue("")
			m.answer = nil
			m.err = ""
			m.question = ""
			m.viewport.SetContent(m.renderResult())
			return m, nil
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.loading {
				return m, nil
			}
			m.loading = true
			m.question = q
			m.err = ""
			m.answer = nil
			m.viewport.SetContent(m.renderResult())
			return m, tea.Batch(m.spinner.Tick, m.askCmd(q))
		case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.answer = msg.answer
			m.input.SetValue("")
		}
		m.viewport.SetContent(m.renderResult())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// askCmd runs the question off the UI goroutine.
func (m Model) askCmd(question string) tea.Cmd {
	parent, asker := m.ctx, m.asker
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, askTimeout)
		defer cancel()
		ans, err := asker.Ask(ctx, question)
		return answerMsg{answer: ans, err: err}
	}
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Legal Q&A"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.subtitle))
	b.WriteString("\n")
	b.WriteString(resultBoxStyle.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.loading:
		return m.spinner.View() + " " + mutedStyle.Render("Searching documents and asking the model...")
	case m.err != "":
		return errorStyle.Render("Error: " + m.err)
	default:
		return mutedStyle.Render("Enter: ask  •  ↑/↓: scroll  •  Esc: clear  •  Ctrl+C: quit")
	}
}

// renderResult renders the answer card followed by one card per source.
func (m Model) renderResult() string {
	if m.answer == nil {
		if m.loading {
			return mutedStyle.Render("Q: " + m.question)
		}
		return mutedStyle.Render("Ask a question about the loaded legal documents.")
	}

	width := max(20, m.viewport.Width-4)
	var b strings.Builder
	b.WriteString(accentStyle.Render("Q: " + m.question))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Answer"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width).Render(m.answer.Answer))
	b.WriteString("\n")

	if len(m.answer.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(fmt.Sprintf("Sources (%d)", len(m.answer.Sources))))
		b.WriteString("\n")
		for _, s := range m.answer.Sources {
			card := filenameStyle.Render(s.Filename) + "  " + scoreStyle.Render(FormatRelevance(s.Score)) +
				"\n" + lipgloss.NewStyle().Width(width-4).Render(s.Text)
			b.WriteString(sourceCardStyle.Render(card))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatRelevance renders a cosine score as a percentage with one decimal,
// e.g. 0.4567 → "Relevance: 45.7%".
func FormatRelevance(score float64) string {
	return fmt.Sprintf("Relevance: %.1f%%", score*100)
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	accentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sectionStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	filenameStyle   = lipgloss.NewStyle().Bold(true)
	scoreStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	sourceCardStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)
