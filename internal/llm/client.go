// Package llm implements the generation collaborator over a
// chat-completions HTTP endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

const requestTimeout = 120 * time.Second

// Client is a minimal chat-completions client. One blocking request per
// Generate call; no streaming.
type Client struct {
	Model   string
	APIKey  string
	BaseURL string

	httpClient *http.Client
}

// New builds a client with the default request timeout.
func New(model, apiKey, baseURL string) *Client {
	return &Client{
		Model:      model,
		APIKey:     apiKey,
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate renders the stage's prompt context into a two-message chat and
// returns the completion text.
func (c *Client) Generate(ctx context.Context, promptCtx map[string]string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("llm: no API key configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Messages:    buildMessages(promptCtx),
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("llm: malformed response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm: api error (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response (status %d)", resp.StatusCode)
	}
	return parsed.Choices[0].Message.Content, nil
}

// buildMessages folds the prompt context into a system message ("system" and
// "role" keys) and a user message carrying the remaining keys in sorted
// order.
func buildMessages(promptCtx map[string]string) []message {
	system := promptCtx["system"]
	if role := promptCtx["role"]; role != "" {
		if system != "" {
			system += "\n\n"
		}
		system += role
	}

	keys := make([]string, 0, len(promptCtx))
	for k := range promptCtx {
		if k == "system" || k == "role" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var user strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&user, "## %s\n%s\n\n", k, promptCtx[k])
	}

	return []message{
		{Role: "system", Content: system},
		{Role: "user", Content: strings.TrimSpace(user.String())},
	}
}
