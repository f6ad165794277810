package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
)

func TestSanitiseKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key, value, want string
	}{
		{"GROQ_API_KEY", "gsk-abc123", "set"},
		{"OPENAI_API_KEY", "", "unset"},
		{"LLM_PROVIDER", "groq", "groq"},
		{"CORPUS_DIR", "", "unset"},
	}
	for _, tc := range cases {
		if got := SanitiseKey(tc.key, tc.value); got != tc.want {
			t.Errorf("SanitiseKey(%q, %q): got %q, want %q", tc.key, tc.value, got, tc.want)
		}
	}
}

func TestSanitiseConfigPath(t *testing.T) {
	t.Parallel()

	if got := sanitiseConfigPath(""); got != "none" {
		t.Errorf("expected 'none', got %q", got)
	}
	if got := sanitiseConfigPath("/etc/legalqa.yaml"); got != "/etc/legalqa.yaml" {
		t.Errorf("expected path unchanged, got %q", got)
	}
	if home, err := os.UserHomeDir(); err == nil {
		if got := sanitiseConfigPath(home + "/.legalqa/config.yaml"); got != "~/.legalqa/config.yaml" {
			t.Errorf("expected home redacted, got %q", got)
		}
	}
}

func TestLogCommandStart_RedactsSecrets(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-super-secret")
	t.Setenv("LLM_PROVIDER", "groq")

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	LogCommandStart(context.Background(), log, "serve", "")

	if bytes.Contains(buf.Bytes(), []byte("gsk-super-secret")) {
		t.Fatalf("secret value leaked into audit log: %s", buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode audit record: %v", err)
	}
	if rec["command"] != "serve" {
		t.Errorf("command: got %v", rec["command"])
	}
	if rec["GROQ_API_KEY"] != "set" {
		t.Errorf("GROQ_API_KEY: got %v, want set", rec["GROQ_API_KEY"])
	}
	if rec["LLM_PROVIDER"] != "groq" {
		t.Errorf("LLM_PROVIDER: got %v", rec["LLM_PROVIDER"])
	}
	if rec["config_file"] != "none" {
		t.Errorf("config_file: got %v", rec["config_file"])
	}
}
