package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/54b3r/legalqa-go/internal/rag"
)

// writeCorpus creates a documents folder and points CORPUS_DIR at it.
func writeCorpus(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	docs := map[string]string{
		"contract_law.txt": "A contract requires offer, acceptance and consideration.",
		"tort_law.txt":     "Negligence requires a duty of care, breach, causation and damage.",
		"notes.md":         "Markdown files are ignored by the loader.",
	}
	for name, text := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Setenv("CORPUS_DIR", dir)
	t.Setenv("RETRIEVAL_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "error")
}

// run executes the root command with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	missing := t.TempDir()
	root.SetArgs(append([]string{
		"--env-file", filepath.Join(missing, "missing.env"),
		"--config", filepath.Join(missing, "missing.yaml"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSearch_JSON(t *testing.T) {
	writeCorpus(t)

	out, err := run(t, "search", "--json", "what", "is", "negligence?")
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	var results []rag.Result
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Filename != "tort_law.txt" {
		t.Errorf("expected tort_law.txt first, got %s", results[0].Filename)
	}
}

func TestSearch_Text(t *testing.T) {
	writeCorpus(t)

	out, err := run(t, "search", "-k", "1", "offer acceptance")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.HasPrefix(out, "1. contract_law.txt  Relevance: ") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "2.") {
		t.Errorf("--top-k 1 printed more than one hit: %q", out)
	}
}

func TestSearch_UnknownBackend(t *testing.T) {
	writeCorpus(t)
	t.Setenv("RETRIEVAL_BACKEND", "elastic")

	if _, err := run(t, "search", "contract"); err == nil || !strings.Contains(err.Error(), "RETRIEVAL_BACKEND") {
		t.Errorf("expected RETRIEVAL_BACKEND error, got %v", err)
	}
}

func TestAsk_NotConfigured(t *testing.T) {
	writeCorpus(t)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := run(t, "ask", "what is a contract?")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("expected not configured error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "legalqa ") {
		t.Errorf("unexpected version output: %q", out)
	}
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	if got := snippet("  a\n\tb  "); got != "a b" {
		t.Errorf("snippet: got %q", got)
	}
	long := strings.Repeat("é", snippetLen+5)
	got := snippet(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != snippetLen+3 {
		t.Errorf("snippet did not truncate on runes: %d runes", len([]rune(got)))
	}
}
