// Package client is a typed HTTP client for the LearnForge backend API.
// It is the outbound counterpart of the handlers in internal/handler and
// is consumed by the view controller and the console.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/learnforge/learnforge-backend/internal/model"
)

// FallbackErrorMessage is used when neither the backend nor the transport
// supplied a usable error detail.
const FallbackErrorMessage = "Something went wrong. Please try again."

// Doer abstracts *http.Client so tests can substitute a stub transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is the normalized failure for any client operation. Message is
// always non-empty and ready for display: the backend-supplied error field
// when present, otherwise a transport-level description, otherwise
// FallbackErrorMessage.
type APIError struct {
	StatusCode int    // Zero for transport-level failures.
	Code       string // Backend error code, when supplied.
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the underlying HTTP transport.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// Client calls the five backend operations against a configured base
// address.
type Client struct {
	baseURL string
	doer    Doer
}

// New creates a Client for the given base address, e.g.
// "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors the backend response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateCurriculum requests a curriculum for a topic.
func (c *Client) GenerateCurriculum(ctx context.Context, topic string) (*model.Curriculum, error) {
	var out struct {
		Curriculum *model.Curriculum `json:"curriculum"`
	}
	if err := c.post(ctx, "/curriculum/", map[string]string{"topic": topic}, &out); err != nil {
		return nil, err
	}
	return out.Curriculum, nil
}

// GenerateLesson requests a lesson explaining a concept.
func (c *Client) GenerateLesson(ctx context.Context, concept string) (*model.Lesson, error) {
	var out struct {
		Lesson *model.Lesson `json:"lesson"`
	}
	if err := c.post(ctx, "/lesson/", map[string]string{"concept": concept}, &out); err != nil {
		return nil, err
	}
	return out.Lesson, nil
}

// GetFeedback requests a review of the given code.
func (c *Client) GetFeedback(ctx context.Context, code string) (*model.Feedback, error) {
	var out model.Feedback
	if err := c.post(ctx, "/feedback/", map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListLanguages fetches the supported language catalog.
func (c *Client) ListLanguages(ctx context.Context) ([]model.LanguageDescriptor, error) {
	var out struct {
		Languages []model.LanguageDescriptor `json:"languages"`
	}
	if err := c.get(ctx, "/execute/", &out); err != nil {
		return nil, err
	}
	return out.Languages, nil
}

// RunCode executes source code through the backend's judge proxy.
func (c *Client) RunCode(ctx context.Context, req *model.RunCodeRequest) (*model.ExecutionOutcome, error) {
	var out model.ExecutionOutcome
	if err := c.post(ctx, "/execute/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return &APIError{Message: normalizeMessage(fmt.Sprintf("encode request: %v", err))}
	}
	return c.roundTrip(ctx, http.MethodPost, path, bytes.NewReader(raw), out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.roundTrip(ctx, http.MethodGet, path, nil, out)
}

// roundTrip performs one exchange and decodes the envelope's data field
// into out. All failures come back as *APIError with a display-ready
// message.
func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Message: normalizeMessage(err.Error())}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return &APIError{Message: normalizeMessage(err.Error())}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: normalizeMessage(err.Error())}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = normalizeMessage(env.Error.Message)
		} else if msg := looseErrorField(raw); msg != "" {
			// Tolerate non-enveloped bodies carrying a bare error field.
			apiErr.Message = msg
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil || env.Data == nil {
		// Missing fields are treated as absent rather than fatal; only a
		// body that cannot carry the expected shape at all is an error.
		return &APIError{StatusCode: resp.StatusCode, Message: FallbackErrorMessage}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: FallbackErrorMessage}
	}
	return nil
}

// looseErrorField extracts a top-level "error" string from a raw body.
func looseErrorField(raw []byte) string {
	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.Error)
}

func normalizeMessage(msg string) string {
	if strings.TrimSpace(msg) == "" {
		return FallbackErrorMessage
	}
	return msg
}
