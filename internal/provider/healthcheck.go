package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// defaultHealthTimeout bounds a single health probe when no HTTPClient is set.
const defaultHealthTimeout = 5 * time.Second

// HealthCheck probes the selected backend's model listing endpoint. It never
// calls a completion endpoint, so it costs no tokens.
func (c *Config) HealthCheck(ctx context.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	req, err := c.healthRequest(ctx)
	if err != nil {
		return err
	}

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHealthTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("provider: %s health check failed: %w", c.Backend, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider: %s health check returned HTTP %d", c.Backend, resp.StatusCode)
	}
	return nil
}

// healthRequest builds the probe request for the selected backend.
func (c *Config) healthRequest(ctx context.Context) (*http.Request, error) {
	var (
		target string
		header = http.Header{}
	)

	switch c.Backend {
	case BackendOpenAI:
		base := c.OpenAI.BaseURL
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		target = joinURL(base, "models")
		header.Set("Authorization", "Bearer "+c.OpenAI.APIKey)
	case BackendGroq:
		base := c.Groq.BaseURL
		if base == "" {
			base = groqBaseURL
		}
		target = joinURL(base, "models")
		header.Set("Authorization", "Bearer "+c.Groq.APIKey)
	case BackendAzure:
		az := c.AzureOpenAI
		target = joinURL(az.Endpoint, "openai/models") + "?api-version=" + url.QueryEscape(az.APIVersion)
		header.Set("api-key", az.APIKey)
	case BackendOllama:
		host := c.Ollama.Host
		if host == "" {
			host = "http://localhost:11434"
		}
		target = joinURL(host, "api/tags")
	case BackendGemini:
		target = "https://generativelanguage.googleapis.com/v1beta/models"
		header.Set("x-goog-api-key", c.Gemini.APIKey)
	case BackendArk:
		base := c.Ark.BaseURL
		if base == "" {
			base = "https://ark.cn-beijing.volces.com/api/v3"
		}
		target = joinURL(base, "models")
		header.Set("Authorization", "Bearer "+c.Ark.APIKey)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q", c.Backend)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: build %s health request: %w", c.Backend, err)
	}
	req.Header = header
	return req, nil
}

// joinURL appends path to base with exactly one slash between them.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
