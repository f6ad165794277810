// Package provider selects and constructs the chat model that writes the
// final answer. Every backend is an eino chat model, so the qa layer never
// depends on a specific vendor SDK.
//
// Supported backends: OpenAI, Groq, Azure OpenAI, Ollama, Google Gemini and
// Volcengine Ark.
package provider

import (
	"context"
	"net/http"
	"strings"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendGroq selects Groq's OpenAI-compatible API.
	BackendGroq Backend = "groq"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendArk selects Volcengine Ark.
	BackendArk Backend = "ark"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// ProviderOpenAI holds OpenAI settings.
type ProviderOpenAI struct {
	// APIKey is read from OPENAI_API_KEY.
	APIKey string
	// Model is read from OPENAI_MODEL (default: gpt-4o-mini).
	Model string
	// BaseURL overrides the API endpoint (OPENAI_BASE_URL); empty means api.openai.com.
	BaseURL string
}

// ProviderGroq holds Groq settings.
type ProviderGroq struct {
	// APIKey is read from GROQ_API_KEY.
	APIKey string
	// Model is read from GROQ_MODEL (default: llama-3.1-8b-instant).
	Model string
	// BaseURL overrides the Groq endpoint. Tests point it at a local server.
	BaseURL string
}

// ProviderAzureOpenAI holds Azure OpenAI settings.
type ProviderAzureOpenAI struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
}

// ProviderOllama holds Ollama settings.
type ProviderOllama struct {
	Host  string
	Model string
}

// ProviderGemini holds Google Gemini settings.
type ProviderGemini struct {
	APIKey string
	Model  string
}

// ProviderArk holds Volcengine Ark settings.
type ProviderArk struct {
	APIKey  string
	Model   string
	BaseURL string
}

// SharedTuning holds generation parameters applied to every backend that
// accepts them.
type SharedTuning struct {
	// MaxTokens caps the answer length (LLM_MAX_TOKENS, default 500).
	MaxTokens int
	// Temperature controls randomness (LLM_TEMPERATURE, default 0.3).
	Temperature float32
}

// Config holds the resolved provider configuration. Only the block matching
// Backend is consulted.
type Config struct {
	Backend     Backend
	OpenAI      ProviderOpenAI
	Groq        ProviderGroq
	AzureOpenAI ProviderAzureOpenAI
	Ollama      ProviderOllama
	Gemini      ProviderGemini
	Ark         ProviderArk
	Tuning      SharedTuning

	// HTTPClient is used by health checks. Defaults to a 5s-timeout client.
	HTTPClient *http.Client
}

// Label returns the upper-case backend name used in log lines and error
// messages (e.g. "GROQ").
func (c *Config) Label() string {
	return strings.ToUpper(string(c.Backend))
}

// DisplayName returns the vendor name used in user-facing error messages
// (e.g. "Groq API failed: ...").
func (c *Config) DisplayName() string {
	switch c.Backend {
	case BackendOpenAI:
		return "OpenAI"
	case BackendGroq:
		return "Groq"
	case BackendAzure:
		return "Azure OpenAI"
	case BackendOllama:
		return "Ollama"
	case BackendGemini:
		return "Gemini"
	case BackendArk:
		return "Ark"
	default:
		return "LLM"
	}
}

// ModelName returns the model or deployment the selected backend will call.
func (c *Config) ModelName() string {
	switch c.Backend {
	case BackendOpenAI:
		return c.OpenAI.Model
	case BackendGroq:
		return c.Groq.Model
	case BackendAzure:
		return c.AzureOpenAI.Deployment
	case BackendOllama:
		return c.Ollama.Model
	case BackendGemini:
		return c.Gemini.Model
	case BackendArk:
		return c.Ark.Model
	default:
		return ""
	}
}

// Configured reports whether the selected backend has everything it needs.
func (c *Config) Configured() bool {
	return c.Validate() == nil
}

// HealthChecker probes a backend without spending tokens.
type HealthChecker interface {
	// HealthCheck returns nil when the backend is reachable and accepts
	// the configured credentials.
	HealthCheck(ctx context.Context) error
}
