package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/learnforge/learnforge-backend/internal/config"
	"github.com/rs/zerolog"
)

// preferredModels is tried in order; the first one the account can access
// wins. An explicit OPENAI_MODEL pin skips the ladder entirely.
var preferredModels = []string{
	"gpt-5",
	"gpt-4o",
	"gpt-4",
	"gpt-3.5-turbo",
}

const fallbackModel = "gpt-3.5-turbo"

const defaultMaxTokens = 800

// Generator produces completions for learning-content prompts. Satisfied
// by Client and by MockGenerator.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is a chat-completions client for any OpenAI-compatible backend.
type Client struct {
	baseURL string
	apiKey  string
	pinned  string
	httpc   *http.Client
	log     zerolog.Logger

	mu    sync.Mutex
	model string // Resolved lazily on first use.
}

// NewClient builds a completion client from application configuration.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:  cfg.OpenAIKey,
		pinned:  cfg.OpenAIModel,
		httpc:   &http.Client{},
		log:     log.With().Str("component", "ai_client").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type modelListing struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Complete sends a single-user-message chat completion and returns the
// reply content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	model, err := c.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	reqBody := chatRequest{
		Model:     model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: defaultMaxTokens,
	}

	var out chatResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion backend error for model %s: %s", model, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion backend returned no choices for model %s", model)
	}
	return out.Choices[0].Message.Content, nil
}

// resolveModel picks the model once per process: the pinned model if
// configured, otherwise the first preferred model the account can list.
func (c *Client) resolveModel(ctx context.Context) (string, error) {
	if c.pinned != "" {
		return c.pinned, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != "" {
		return c.model, nil
	}

	c.model = c.chooseModel(ctx)
	c.log.Info().Str("model", c.model).Msg("Completion model selected")
	return c.model, nil
}

func (c *Client) chooseModel(ctx context.Context) string {
	var listing modelListing
	if err := c.get(ctx, "/models", &listing); err != nil {
		c.log.Warn().Err(err).Msg("Model listing failed, using fallback")
		return fallbackModel
	}

	available := make(map[string]bool, len(listing.Data))
	for _, m := range listing.Data {
		available[m.ID] = true
	}
	for _, m := range preferredModels {
		if available[m] {
			return m
		}
	}
	for id := range available {
		if strings.Contains(id, "gpt") {
			return id
		}
	}
	return fallbackModel
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.roundTrip(ctx, http.MethodPost, path, bytes.NewReader(raw), out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("completion backend request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = resp.Status
		}
		return fmt.Errorf("completion backend HTTP %d: %s", resp.StatusCode, detail)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
