package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/54b3r/legalqa-go/internal/logging"
)

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	path, err := Load("/nonexistent/path/config.yaml", logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := []byte(`
llm:
  provider: groq
  max_tokens: 800
  temperature: 0.25
  groq:
    model: llama-3.3-70b-versatile
corpus:
  dir: /srv/legal/documents
retrieval:
  backend: qdrant
  top_k: 5
qdrant:
  host: qdrant.internal
  port: 6334
  tls: true
server:
  port: 5050
  cors_origins: https://legal-qa.example.com
  rate_limit: 2.5
logging:
  level: debug
  format: text
`)
	if err := os.WriteFile(cfgPath, content, 0o644); err != nil {
		t.Fatal(err)
	}

	checks := map[string]string{
		"LLM_PROVIDER":      "groq",
		"LLM_MAX_TOKENS":    "800",
		"LLM_TEMPERATURE":   "0.25",
		"GROQ_MODEL":        "llama-3.3-70b-versatile",
		"CORPUS_DIR":        "/srv/legal/documents",
		"RETRIEVAL_BACKEND": "qdrant",
		"RETRIEVAL_TOP_K":   "5",
		"QDRANT_HOST":       "qdrant.internal",
		"QDRANT_PORT":       "6334",
		"QDRANT_TLS":        "true",
		"PORT":              "5050",
		"CORS_ORIGINS":      "https://legal-qa.example.com",
		"RATE_LIMIT_RPS":    "2.5",
		"LOG_LEVEL":         "debug",
		"LOG_FORMAT":        "text",
	}
	for k := range checks {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	loaded, err := Load(cfgPath, logging.Discard())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfgPath {
		t.Errorf("loaded path: got %q, want %q", loaded, cfgPath)
	}

	for k, want := range checks {
		if got := os.Getenv(k); got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(cfgPath, []byte("llm:\n  provider: groq\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LLM_PROVIDER", "openai")

	if _, err := Load(cfgPath, logging.Discard()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := os.Getenv("LLM_PROVIDER"); got != "openai" {
		t.Errorf("LLM_PROVIDER: expected env override %q, got %q", "openai", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("llm: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(cfgPath, logging.Discard()); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "GROQ_API_KEY=gsk-from-dotenv\nLLM_PROVIDER=groq\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GROQ_API_KEY", "")
	os.Unsetenv("GROQ_API_KEY")
	t.Setenv("LLM_PROVIDER", "openai")

	if err := LoadDotEnv(logging.Discard(), envPath); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("GROQ_API_KEY"); got != "gsk-from-dotenv" {
		t.Errorf("GROQ_API_KEY: got %q", got)
	}
	if got := os.Getenv("LLM_PROVIDER"); got != "openai" {
		t.Errorf("LLM_PROVIDER should keep the process value, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	t.Parallel()

	if err := LoadDotEnv(logging.Discard(), filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("LEGALQA_TEST_INT", "42")
	t.Setenv("LEGALQA_TEST_BAD_INT", "forty-two")
	t.Setenv("LEGALQA_TEST_FLOAT", "0.3")
	t.Setenv("LEGALQA_TEST_BOOL", "true")
	t.Setenv("LEGALQA_TEST_BLANK", "   ")

	if got := EnvInt("LEGALQA_TEST_INT", 1); got != 42 {
		t.Errorf("EnvInt: got %d", got)
	}
	if got := EnvInt("LEGALQA_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("EnvInt fallback: got %d", got)
	}
	if got := EnvFloat("LEGALQA_TEST_FLOAT", 1); got != 0.3 {
		t.Errorf("EnvFloat: got %v", got)
	}
	if got := EnvBool("LEGALQA_TEST_BOOL", false); !got {
		t.Error("EnvBool: expected true")
	}
	if got := EnvOrDefault("LEGALQA_TEST_BLANK", "fallback"); got != "fallback" {
		t.Errorf("EnvOrDefault: got %q", got)
	}
}
