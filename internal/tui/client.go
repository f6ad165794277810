package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/54b3r/legalqa-go/internal/qa"
)

// Client asks questions through a running `legalqa serve` instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the server at baseURL
// (e.g. "http://localhost:5000").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: askTimeout + 10*time.Second},
	}
}

// apiError mirrors the server's {error, message} body.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Ask posts the question to /api/ask. Non-2xx responses are returned as
// errors carrying the server's message.
func (c *Client) Ask(ctx context.Context, question string) (*qa.Answer, error) {
	body, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return nil, fmt.Errorf("client: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var e apiError
		if json.Unmarshal(data, &e) == nil && (e.Message != "" || e.Error != "") {
			msg := e.Message
			if msg == "" {
				msg = e.Error
			}
			return nil, fmt.Errorf("%s (HTTP %d)", msg, resp.StatusCode)
		}
		return nil, fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	}

	var ans qa.Answer
	if err := json.Unmarshal(data, &ans); err != nil {
		return nil, fmt.Errorf("client: decode answer: %w", err)
	}
	return &ans, nil
}
