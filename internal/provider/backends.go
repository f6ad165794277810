package provider

import (
	"context"
	"fmt"

	einoark "github.com/cloudwego/eino-ext/components/model/ark"
	einogemini "github.com/cloudwego/eino-ext/components/model/gemini"
	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// Validate checks that the selected backend has its required fields. Errors
// name the env var to set.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider: OPENAI_API_KEY is required for openai backend")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("provider: OPENAI_MODEL is required for openai backend")
		}
	case BackendGroq:
		if c.Groq.APIKey == "" {
			return fmt.Errorf("provider: GROQ_API_KEY is required for groq backend")
		}
		if c.Groq.Model == "" {
			return fmt.Errorf("provider: GROQ_MODEL is required for groq backend")
		}
	case BackendAzure:
		if c.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_API_KEY is required for azure backend")
		}
		if c.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_ENDPOINT is required for azure backend")
		}
		if c.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_DEPLOYMENT is required for azure backend")
		}
	case BackendOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("provider: OLLAMA_MODEL is required for ollama backend")
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("provider: GOOGLE_API_KEY is required for gemini backend")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("provider: GEMINI_MODEL is required for gemini backend")
		}
	case BackendArk:
		if c.Ark.APIKey == "" {
			return fmt.Errorf("provider: ARK_API_KEY is required for ark backend")
		}
		if c.Ark.Model == "" {
			return fmt.Errorf("provider: ARK_MODEL is required for ark backend")
		}
	default:
		return fmt.Errorf("provider: unknown backend %q; valid values: openai, groq, azure, ollama, gemini, ark", c.Backend)
	}
	return nil
}

// isReasoningModel reports whether model belongs to the o-series, which
// rejects temperature and max_tokens.
func isReasoningModel(name string) bool {
	if len(name) < 2 || name[0] != 'o' {
		return false
	}
	return name[1] >= '0' && name[1] <= '9'
}

// openAIConfig builds the shared OpenAI-compatible configuration.
func (c *Config) openAIConfig(modelName, apiKey, baseURL string) *einoopenai.ChatModelConfig {
	oc := &einoopenai.ChatModelConfig{
		Model:   modelName,
		APIKey:  apiKey,
		BaseURL: baseURL,
	}
	if !isReasoningModel(modelName) {
		maxTokens := c.Tuning.MaxTokens
		temp := c.Tuning.Temperature
		oc.MaxTokens = &maxTokens
		oc.Temperature = &temp
	}
	return oc
}

// newOpenAI constructs a chat model backed by the OpenAI API.
func newOpenAI(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	m, err := einoopenai.NewChatModel(ctx, cfg.openAIConfig(cfg.OpenAI.Model, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create openai model: %w", err)
	}
	return m, nil
}

// newGroq constructs a chat model backed by Groq. Groq speaks the OpenAI
// chat-completions protocol, so the OpenAI client is pointed at its endpoint.
func newGroq(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	baseURL := cfg.Groq.BaseURL
	if baseURL == "" {
		baseURL = groqBaseURL
	}
	m, err := einoopenai.NewChatModel(ctx, cfg.openAIConfig(cfg.Groq.Model, cfg.Groq.APIKey, baseURL))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create groq model: %w", err)
	}
	return m, nil
}

// newAzure constructs a chat model backed by Azure OpenAI Service.
func newAzure(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	az := cfg.AzureOpenAI
	oc := cfg.openAIConfig(az.Deployment, az.APIKey, az.Endpoint)
	oc.ByAzure = true
	oc.APIVersion = az.APIVersion
	// Deployment names such as "gpt-4.1" must reach Azure unchanged.
	oc.AzureModelMapperFunc = func(model string) string { return model }

	m, err := einoopenai.NewChatModel(ctx, oc)
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create azure model: %w", err)
	}
	return m, nil
}

// newOllama constructs a chat model backed by a local Ollama instance.
func newOllama(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	host := cfg.Ollama.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	m, err := einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{
		BaseURL: host,
		Model:   cfg.Ollama.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create ollama model: %w", err)
	}
	return m, nil
}

// newGemini constructs a chat model backed by Google Gemini (AI Studio).
func newGemini(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create Gemini client: %w", err)
	}
	m, err := einogemini.NewChatModel(ctx, &einogemini.Config{
		Client: client,
		Model:  cfg.Gemini.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create gemini model: %w", err)
	}
	return m, nil
}

// newArk constructs a chat model backed by Volcengine Ark.
func newArk(ctx context.Context, cfg *Config) (model.BaseChatModel, error) {
	maxTokens := cfg.Tuning.MaxTokens
	temp := cfg.Tuning.Temperature
	m, err := einoark.NewChatModel(ctx, &einoark.ChatModelConfig{
		Model:       cfg.Ark.Model,
		APIKey:      cfg.Ark.APIKey,
		BaseURL:     cfg.Ark.BaseURL,
		MaxTokens:   &maxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create ark model: %w", err)
	}
	return m, nil
}
