package relevance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultAnthropicURL = "https://api.anthropic.com"

// ClaudeClient calls the Anthropic Messages API to classify relevance.
type ClaudeClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return &ClaudeClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultAnthropicURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WithBaseURL points the client at another endpoint, e.g. a proxy.
func (c *ClaudeClient) WithBaseURL(u string) *ClaudeClient {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Probability asks Claude for the probability that the prompt's text is relevant.
func (c *ClaudeClient) Probability(ctx context.Context, p Prompt) (float64, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     c.model,
		MaxTokens: 64,
		System:    Instruction,
		Messages: []anthropicMessage{
			{Role: "user", Content: p.String()},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return 0, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("claude api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return 0, fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return 0, fmt.Errorf("empty response from claude")
	}

	return parseProbability(apiResp.Content[0].Text)
}

// Model returns the configured model name.
func (c *ClaudeClient) Model() string { return c.model }

// Close releases resources.
func (c *ClaudeClient) Close() {
	c.httpClient.CloseIdleConnections()
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// parseProbability accepts {"probability": p} or a bare number and clamps
// the value to [0,1].
func parseProbability(raw string) (float64, error) {
	text := stripCodeBlock(raw)

	var obj struct {
		Probability *float64 `json:"probability"`
	}
	var p float64
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj.Probability != nil {
		p = *obj.Probability
	} else {
		v, perr := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if perr != nil {
			return 0, fmt.Errorf("parse probability: %q", truncate(text, 200))
		}
		p = v
	}

	switch {
	case math.IsNaN(p):
		return 0, fmt.Errorf("parse probability: NaN")
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	return p, nil
}
