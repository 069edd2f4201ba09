package judge0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/learnforge/learnforge-backend/internal/config"
	"github.com/learnforge/learnforge-backend/internal/model"
	"github.com/rs/zerolog"
)

// UpstreamError is returned when Judge0 itself reports a failure, as
// opposed to a caller mistake such as an unsupported language.
type UpstreamError struct {
	msg string
}

func (e *UpstreamError) Error() string { return e.msg }

// ErrDeadline is returned when a submission stays queued/processing past
// the configured maximum wait.
var ErrDeadline = errors.New("timed out while waiting for the submission to finish")

// SubmitRequest carries everything Judge0 needs to run a submission.
type SubmitRequest struct {
	Language             *model.LanguageDescriptor
	SourceCode           string
	Stdin                string
	CommandLineArguments string
	ExpectedOutput       *string
}

// Client talks to a Judge0 CE instance (self-hosted or via RapidAPI).
type Client struct {
	baseURL      string
	rapidAPIKey  string
	rapidAPIHost string
	apiKey       string
	pollInterval time.Duration
	maxWait      time.Duration
	httpc        *http.Client
	log          zerolog.Logger
}

// NewClient builds a Judge0 client from application configuration.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.Judge0URL, "/"),
		rapidAPIKey:  cfg.Judge0RapidAPIKey,
		rapidAPIHost: cfg.Judge0RapidAPIHost,
		apiKey:       cfg.Judge0APIKey,
		pollInterval: cfg.Judge0PollInterval,
		maxWait:      cfg.Judge0MaxWait,
		httpc:        &http.Client{Timeout: cfg.Judge0Timeout},
		log:          log.With().Str("component", "judge0_client").Logger(),
	}
}

// submission mirrors the Judge0 submission resource fields we consume.
type submission struct {
	Token         string            `json:"token"`
	Status        *model.StatusInfo `json:"status"`
	Stdout        *string           `json:"stdout"`
	Stderr        *string           `json:"stderr"`
	CompileOutput *string           `json:"compile_output"`
	Message       *string           `json:"message"`
	// Judge0 reports time as a quoted decimal and memory as a bare
	// number, so both are decoded loosely.
	Time          interface{}       `json:"time"`
	Memory        interface{}       `json:"memory"`
	ExitCode      *int              `json:"exit_code"`
}

// Submit creates a submission without waiting and returns its token.
func (c *Client) Submit(ctx context.Context, req *SubmitRequest) (string, error) {
	payload := map[string]interface{}{
		"language_id": req.Language.ID,
		"source_code": req.SourceCode,
		"stdin":       req.Stdin,
	}
	if req.CommandLineArguments != "" {
		payload["command_line_arguments"] = req.CommandLineArguments
	}
	if req.ExpectedOutput != nil {
		payload["expected_output"] = *req.ExpectedOutput
	}

	var sub submission
	query := url.Values{"base64_encoded": {"false"}, "wait": {"false"}}
	if err := c.do(ctx, http.MethodPost, "/submissions", query, payload, &sub); err != nil {
		return "", err
	}
	if sub.Token == "" {
		return "", &UpstreamError{msg: "judge0 did not return a submission token"}
	}

	c.log.Debug().
		Str("token", sub.Token).
		Int("language_id", req.Language.ID).
		Msg("Submission created")

	return sub.Token, nil
}

// fetch retrieves the current state of a submission by token.
func (c *Client) fetch(ctx context.Context, token string) (*model.StatusInfo, *submission, error) {
	var sub submission
	query := url.Values{"base64_encoded": {"false"}}
	if err := c.do(ctx, http.MethodGet, "/submissions/"+token, query, nil, &sub); err != nil {
		return nil, nil, err
	}
	status := sub.Status
	if status == nil {
		status = &model.StatusInfo{}
	}
	return status, &sub, nil
}

// Execute submits code and polls until the submission leaves the
// queued/processing states or the configured deadline passes.
func (c *Client) Execute(ctx context.Context, req *SubmitRequest) (*model.ExecutionOutcome, error) {
	token, err := c.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.maxWait)
	for {
		status, sub, err := c.fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		if !isPending(status.ID) {
			return buildOutcome(token, req.Language, status, sub), nil
		}
		if time.Now().After(deadline) {
			return nil, ErrDeadline
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// Watch behaves like Execute but invokes onStatus for every observed
// status transition, including the terminal one, before returning.
func (c *Client) Watch(ctx context.Context, req *SubmitRequest, onStatus func(model.StatusInfo)) (*model.ExecutionOutcome, error) {
	token, err := c.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.maxWait)
	lastStatus := 0
	for {
		status, sub, err := c.fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		if status.ID != lastStatus && onStatus != nil {
			onStatus(*status)
			lastStatus = status.ID
		}
		if !isPending(status.ID) {
			return buildOutcome(token, req.Language, status, sub), nil
		}
		if time.Now().After(deadline) {
			return nil, ErrDeadline
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// isPending reports whether a status id means the submission is still
// in queue or being processed.
func isPending(statusID int) bool {
	return statusID == 1 || statusID == 2
}

func buildOutcome(token string, lang *model.LanguageDescriptor, status *model.StatusInfo, sub *submission) *model.ExecutionOutcome {
	return &model.ExecutionOutcome{
		Token:         token,
		Language:      lang.Key,
		LanguageID:    lang.ID,
		LanguageName:  lang.Name,
		Status:        *status,
		Stdout:        deref(sub.Stdout),
		Stderr:        deref(sub.Stderr),
		CompileOutput: deref(sub.CompileOutput),
		Message:       deref(sub.Message),
		Time:          numberPtr(sub.Time),
		Memory:        numberPtr(sub.Memory),
		ExitCode:      sub.ExitCode,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func numberPtr(v interface{}) *float64 {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	case float64:
		f := n
		return &f
	}
	return nil
}

// do performs one HTTP exchange against Judge0, decoding the JSON body
// into out. Non-2xx responses become UpstreamErrors carrying whatever
// detail the backend supplied.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.rapidAPIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.rapidAPIKey)
		req.Header.Set("X-RapidAPI-Host", c.rapidAPIHost)
	}
	if c.apiKey != "" {
		// Judge0 CE allows authenticating with X-Auth-Token when self-hosted.
		req.Header.Set("X-Auth-Token", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &UpstreamError{msg: fmt.Sprintf("judge0 connection error: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{msg: fmt.Sprintf("judge0 read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(raw))
		if detail == "" {
			detail = resp.Status
		}
		return &UpstreamError{msg: fmt.Sprintf("judge0 HTTP error %d: %s", resp.StatusCode, detail)}
	}

	if out != nil && len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return &UpstreamError{msg: fmt.Sprintf("judge0 malformed response: %v", err)}
		}
	}
	return nil
}
