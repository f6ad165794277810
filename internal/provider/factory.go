package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"

	"github.com/54b3r/legalqa-go/internal/config"
)

// ConfigFromEnv resolves provider configuration from environment variables.
// LLM_PROVIDER selects the backend; each provider uses its own native
// credential env vars.
//
// Environment variables:
//
//	LLM_PROVIDER = openai | groq | azure | ollama | gemini | ark (default: openai)
//
//	OpenAI:  OPENAI_API_KEY, OPENAI_MODEL (default: gpt-4o-mini), OPENAI_BASE_URL
//	Groq:    GROQ_API_KEY, GROQ_MODEL (default: llama-3.1-8b-instant)
//	Azure:   AZURE_OPENAI_API_KEY, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_DEPLOYMENT,
//	         AZURE_OPENAI_API_VERSION (default: 2024-02-01)
//	Ollama:  OLLAMA_HOST (default: http://localhost:11434), OLLAMA_MODEL (default: llama3.1)
//	Gemini:  GOOGLE_API_KEY, GEMINI_MODEL (default: gemini-1.5-flash)
//	Ark:     ARK_API_KEY, ARK_MODEL, ARK_BASE_URL
//
//	Shared:  LLM_MAX_TOKENS (default: 500), LLM_TEMPERATURE (default: 0.3)
func ConfigFromEnv() *Config {
	return &Config{
		Backend: Backend(config.EnvOrDefault("LLM_PROVIDER", string(BackendOpenAI))),
		OpenAI: ProviderOpenAI{
			APIKey:  config.EnvOrDefault("OPENAI_API_KEY", ""),
			Model:   config.EnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: config.EnvOrDefault("OPENAI_BASE_URL", ""),
		},
		Groq: ProviderGroq{
			APIKey: config.EnvOrDefault("GROQ_API_KEY", ""),
			Model:  config.EnvOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		},
		AzureOpenAI: ProviderAzureOpenAI{
			APIKey:     config.EnvOrDefault("AZURE_OPENAI_API_KEY", ""),
			Endpoint:   config.EnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
			Deployment: config.EnvOrDefault("AZURE_OPENAI_DEPLOYMENT", ""),
			APIVersion: config.EnvOrDefault("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		},
		Ollama: ProviderOllama{
			Host:  config.EnvOrDefault("OLLAMA_HOST", "http://localhost:11434"),
			Model: config.EnvOrDefault("OLLAMA_MODEL", "llama3.1"),
		},
		Gemini: ProviderGemini{
			APIKey: config.EnvOrDefault("GOOGLE_API_KEY", ""),
			Model:  config.EnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Ark: ProviderArk{
			APIKey:  config.EnvOrDefault("ARK_API_KEY", ""),
			Model:   config.EnvOrDefault("ARK_MODEL", ""),
			BaseURL: config.EnvOrDefault("ARK_BASE_URL", ""),
		},
		Tuning: SharedTuning{
			MaxTokens:   config.EnvInt("LLM_MAX_TOKENS", 500),
			Temperature: float32(config.EnvFloat("LLM_TEMPERATURE", 0.3)),
		},
	}
}

// New constructs a chat model from an explicit Config, delegating to the
// backend constructor. It validates the config first so callers get a clear
// error at startup rather than on the first request.
func New(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendOpenAI:
		return newOpenAI(ctx, cfg)
	case BackendGroq:
		return newGroq(ctx, cfg)
	case BackendAzure:
		return newAzure(ctx, cfg)
	case BackendOllama:
		return newOllama(ctx, cfg)
	case BackendGemini:
		return newGemini(ctx, cfg)
	case BackendArk:
		return newArk(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q; valid values: openai, groq, azure, ollama, gemini, ark", cfg.Backend)
	}
}
