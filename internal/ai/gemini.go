package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fintrack/internal/log"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Wire types for the generateContent endpoint.
type geminiRequestPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestPart `json:"parts"`
	Role  string              `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiRequestContent  `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponsePart struct {
	Text string `json:"text"`
}

type geminiResponseContent struct {
	Parts []geminiResponsePart `json:"parts"`
	Role  string               `json:"role"`
}

type geminiCandidate struct {
	Content      geminiResponseContent `json:"content"`
	FinishReason string                `json:"finishReason"`
	Index        int                   `json:"index"`
}

type geminiAPIResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback map[string]any    `json:"promptFeedback,omitempty"`
}

// Client talks to the Gemini generateContent API over plain HTTP. A client
// with an empty API key is valid and reports itself as disabled; callers
// fall back to rule-based behavior.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
	logger  *log.Logger
}

type ClientOption func(*Client)

// WithBaseURL points the client at a different endpoint. Tests use it with
// httptest servers.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

func NewClient(apiKey, model string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  log.New(log.LevelFromEnv(), "ai"),
	}
	if c.model == "" {
		c.model = "gemini-1.5-flash-latest"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the client has an API key to work with.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// generate sends one prompt and returns the first candidate's text.
func (c *Client) generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("gemini client disabled: no API key")
	}

	payload := geminiRequest{
		Contents: []geminiRequestContent{
			{Parts: []geminiRequestPart{{Text: prompt}}},
		},
	}
	if jsonMode {
		payload.GenerationConfig = &geminiGenerationConfig{ResponseMIMEType: "application/json"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini returned %s: %s", resp.Status, detail)
	}

	var apiResp geminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response has no candidates")
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}
