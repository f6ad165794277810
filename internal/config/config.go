// Package config provides layered configuration for legalqa.
// Precedence, lowest to highest: built-in defaults → YAML file → .env file →
// process environment. Every setting is ultimately read from an environment
// variable, so the YAML and .env layers only fill in variables that are unset.
//
// YAML file search order:
//  1. --config CLI flag (explicit path)
//  2. LEGALQA_CONFIG environment variable
//  3. ~/.legalqa/config.yaml
//  4. ./legalqa.yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
type Config struct {
	// LLM configures the answer-synthesis model provider.
	LLM LLMConfig `yaml:"llm"`

	// Corpus configures where the document set is loaded from.
	Corpus CorpusConfig `yaml:"corpus"`

	// Retrieval configures the TF-IDF ranking backend.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Qdrant configures the optional Qdrant sparse-vector backend.
	Qdrant QdrantConfig `yaml:"qdrant"`

	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Tracing configures Langfuse tracing integration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LLMConfig holds chat model settings.
type LLMConfig struct {
	// Provider selects the backend: openai, groq, azure, ollama, gemini, ark.
	Provider string `yaml:"provider"`
	// MaxTokens caps the generated answer length.
	MaxTokens int `yaml:"max_tokens"`
	// Temperature controls response randomness.
	Temperature float32 `yaml:"temperature"`
	// ContextTokens is the prompt budget for retrieved documents.
	ContextTokens int `yaml:"context_tokens"`

	OpenAI CredentialConfig `yaml:"openai"`
	Groq   CredentialConfig `yaml:"groq"`
	Azure  AzureConfig      `yaml:"azure"`
	Ollama OllamaConfig     `yaml:"ollama"`
	Gemini CredentialConfig `yaml:"gemini"`
	Ark    ArkConfig        `yaml:"ark"`
}

// CredentialConfig is the key+model pair shared by hosted backends.
type CredentialConfig struct {
	// APIKey is the provider credential. Prefer the env var.
	APIKey string `yaml:"api_key"`
	// Model is the model name.
	Model string `yaml:"model"`
}

// AzureConfig holds Azure OpenAI settings.
type AzureConfig struct {
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
}

// OllamaConfig holds Ollama settings.
type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// ArkConfig holds Volcengine Ark settings.
type ArkConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// CorpusConfig holds document set settings.
type CorpusConfig struct {
	// Dir is the flat folder of .txt documents.
	Dir string `yaml:"dir"`
}

// RetrievalConfig holds ranking settings.
type RetrievalConfig struct {
	// Backend is "memory" or "qdrant".
	Backend string `yaml:"backend"`
	// TopK is the number of documents forwarded to the LLM.
	TopK int `yaml:"top_k"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"api_key"`
	TLS        bool   `yaml:"tls"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// CORSOrigins is a comma-separated allow-list, or "*".
	CORSOrigins string `yaml:"cors_origins"`
	// RateLimit is the sustained per-IP request rate on /api/ask.
	RateLimit float64 `yaml:"rate_limit"`
	// RateBurst is the per-IP burst on /api/ask.
	RateBurst int `yaml:"rate_burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig holds Langfuse settings.
type TracingConfig struct {
	PublicKey string `yaml:"public_key"`
	SecretKey string `yaml:"secret_key"`
	Host      string `yaml:"host"`
}

// envMapping maps YAML config fields to their environment variable names.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"LLM_PROVIDER", func(c *Config) string { return c.LLM.Provider }},
	{"LLM_MAX_TOKENS", func(c *Config) string { return intStr(c.LLM.MaxTokens) }},
	{"LLM_TEMPERATURE", func(c *Config) string { return float32Str(c.LLM.Temperature) }},
	{"LLM_CONTEXT_TOKENS", func(c *Config) string { return intStr(c.LLM.ContextTokens) }},
	{"OPENAI_API_KEY", func(c *Config) string { return c.LLM.OpenAI.APIKey }},
	{"OPENAI_MODEL", func(c *Config) string { return c.LLM.OpenAI.Model }},
	{"GROQ_API_KEY", func(c *Config) string { return c.LLM.Groq.APIKey }},
	{"GROQ_MODEL", func(c *Config) string { return c.LLM.Groq.Model }},
	{"AZURE_OPENAI_API_KEY", func(c *Config) string { return c.LLM.Azure.APIKey }},
	{"AZURE_OPENAI_ENDPOINT", func(c *Config) string { return c.LLM.Azure.Endpoint }},
	{"AZURE_OPENAI_DEPLOYMENT", func(c *Config) string { return c.LLM.Azure.Deployment }},
	{"AZURE_OPENAI_API_VERSION", func(c *Config) string { return c.LLM.Azure.APIVersion }},
	{"OLLAMA_HOST", func(c *Config) string { return c.LLM.Ollama.Host }},
	{"OLLAMA_MODEL", func(c *Config) string { return c.LLM.Ollama.Model }},
	{"GOOGLE_API_KEY", func(c *Config) string { return c.LLM.Gemini.APIKey }},
	{"GEMINI_MODEL", func(c *Config) string { return c.LLM.Gemini.Model }},
	{"ARK_API_KEY", func(c *Config) string { return c.LLM.Ark.APIKey }},
	{"ARK_MODEL", func(c *Config) string { return c.LLM.Ark.Model }},
	{"ARK_BASE_URL", func(c *Config) string { return c.LLM.Ark.BaseURL }},
	{"CORPUS_DIR", func(c *Config) string { return c.Corpus.Dir }},
	{"RETRIEVAL_BACKEND", func(c *Config) string { return c.Retrieval.Backend }},
	{"RETRIEVAL_TOP_K", func(c *Config) string { return intStr(c.Retrieval.TopK) }},
	{"QDRANT_HOST", func(c *Config) string { return c.Qdrant.Host }},
	{"QDRANT_PORT", func(c *Config) string { return intStr(c.Qdrant.Port) }},
	{"QDRANT_COLLECTION", func(c *Config) string { return c.Qdrant.Collection }},
	{"QDRANT_API_KEY", func(c *Config) string { return c.Qdrant.APIKey }},
	{"QDRANT_TLS", func(c *Config) string { return boolStr(c.Qdrant.TLS) }},
	{"HOST", func(c *Config) string { return c.Server.Host }},
	{"PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"CORS_ORIGINS", func(c *Config) string { return c.Server.CORSOrigins }},
	{"RATE_LIMIT_RPS", func(c *Config) string { return float64Str(c.Server.RateLimit) }},
	{"RATE_LIMIT_BURST", func(c *Config) string { return intStr(c.Server.RateBurst) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"LANGFUSE_PUBLIC_KEY", func(c *Config) string { return c.Tracing.PublicKey }},
	{"LANGFUSE_SECRET_KEY", func(c *Config) string { return c.Tracing.SecretKey }},
	{"LANGFUSE_HOST", func(c *Config) string { return c.Tracing.Host }},
}

// LoadDotEnv reads KEY=VALUE pairs from the given .env files (default: ./.env)
// into the process environment without overriding variables that are already
// set. A missing file is not an error.
func LoadDotEnv(log *slog.Logger, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: failed to read %s: %w", f, err)
		}
		log.Debug("config: loaded dotenv file", slog.String("path", f))
	}
	return nil
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten.
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue
		}
		if err := os.Setenv(m.envKey, yamlVal); err != nil {
			return "", fmt.Errorf("config: failed to set %s: %w", m.envKey, err)
		}
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// EnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or blank.
func EnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// EnvInt returns the integer value of key, or fallback when unset or invalid.
func EnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// EnvFloat returns the float value of key, or fallback when unset or invalid.
func EnvFloat(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// EnvBool returns the boolean value of key, or fallback when unset or invalid.
func EnvBool(key string, fallback bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("LEGALQA_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".legalqa", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("legalqa.yaml"); err == nil {
		return "legalqa.yaml"
	}

	return ""
}

func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func float32Str(v float32) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

func float64Str(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolStr(v bool) string {
	if !v {
		return ""
	}
	return "true"
}
