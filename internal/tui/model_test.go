package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/54b3r/legalqa-go/internal/qa"
	"github.com/54b3r/legalqa-go/internal/rag"
)

type fakeAsker struct {
	answer *qa.Answer
	err    error
	got    string
}

func (f *fakeAsker) Ask(_ context.Context, q string) (*qa.Answer, error) {
	f.got = q
	return f.answer, f.err
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func typeText(m Model, s string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return updated.(Model)
}

func TestModel_AskFlow(t *testing.T) {
	t.Parallel()

	fa := &fakeAsker{answer: &qa.Answer{
		Answer:  "A contract needs offer and acceptance.",
		Sources: []rag.Result{{Text: "Formation requires offer...", Filename: "contract_law.txt", Score: 0.4567}},
	}}
	m := sized(New(context.Background(), fa, "4 documents"))
	m = typeText(m, "  what makes a contract?  ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if !m.loading {
		t.Fatal("expected loading after Enter")
	}
	if cmd == nil {
		t.Fatal("expected a command to be returned")
	}
	if !strings.Contains(m.View(), "Searching documents") {
		t.Error("loading status not shown")
	}

	// Run the ask command directly; the batched spinner tick is irrelevant here.
	msg := m.askCmd(m.question)()
	if fa.got != "what makes a contract?" {
		t.Errorf("question: got %q", fa.got)
	}

	updated, _ = m.Update(msg)
	m = updated.(Model)
	if m.loading {
		t.Error("loading must clear once the answer arrives")
	}
	view := m.renderResult()
	for _, want := range []string{"A contract needs offer and acceptance.", "contract_law.txt", "Relevance: 45.7%"} {
		if !strings.Contains(view, want) {
			t.Errorf("rendered result missing %q", want)
		}
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after a successful answer")
	}
}

func TestModel_EnterIgnoredWhenBlankOrBusy(t *testing.T) {
	t.Parallel()

	m := sized(New(context.Background(), &fakeAsker{}, ""))
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || updated.(Model).loading {
		t.Error("blank question must not start a request")
	}

	m = typeText(m, "question")
	m.loading = true
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Enter while loading must be ignored")
	}
	_ = updated
}

func TestModel_ErrorShown(t *testing.T) {
	t.Parallel()

	m := sized(New(context.Background(), &fakeAsker{}, ""))
	m.loading = true
	updated, _ := m.Update(answerMsg{err: errors.New("LLM is not configured")})
	m = updated.(Model)

	if !strings.Contains(m.View(), "Error: LLM is not configured") {
		t.Errorf("error not rendered:\n%s", m.View())
	}
}

func TestModel_EscClears(t *testing.T) {
	t.Parallel()

	m := sized(New(context.Background(), &fakeAsker{}, ""))
	m = typeText(m, "draft")
	m.answer = &qa.Answer{Answer: "old"}
	m.err = "old error"

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.input.Value() != "" || m.answer != nil || m.err != "" {
		t.Errorf("Esc must clear input, answer and error: %+v", m)
	}
}

// blockingAsker waits until the question's context ends.
type blockingAsker struct{}

func (blockingAsker) Ask(ctx context.Context, _ string) (*qa.Answer, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestModel_AskUsesProgramContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	m := sized(New(ctx, blockingAsker{}, ""))

	done := make(chan tea.Msg, 1)
	go func() { done <- m.askCmd("what is a tort?")() }()
	cancel()

	msg, ok := (<-done).(answerMsg)
	if !ok {
		t.Fatal("expected answerMsg")
	}
	if !errors.Is(msg.err, context.Canceled) {
		t.Errorf("cancelling the program context must abort the question, got %v", msg.err)
	}
}

func TestModel_CtrlCQuits(t *testing.T) {
	t.Parallel()

	m := New(context.Background(), &fakeAsker{}, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+C must quit")
	}
}

func TestFormatRelevance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{0, "Relevance: 0.0%"},
		{0.4567, "Relevance: 45.7%"},
		{1, "Relevance: 100.0%"},
	}
	for _, tc := range tests {
		if got := FormatRelevance(tc.score); got != tc.want {
			t.Errorf("FormatRelevance(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestClient_Ask(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/ask" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"yes","sources":[{"text":"t","filename":"a.txt","score":0.5}]}`))
	}))
	defer srv.Close()

	ans, err := NewClient(srv.URL+"/").Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Answer != "yes" || len(ans.Sources) != 1 || ans.Sources[0].Filename != "a.txt" {
		t.Errorf("unexpected answer: %+v", ans)
	}
}

func TestClient_AskServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Service unavailable","message":"LLM is not configured. Please set API keys in .env file."}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Ask(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "LLM is not configured") || !strings.Contains(err.Error(), "503") {
		t.Errorf("unexpected error: %v", err)
	}
}
