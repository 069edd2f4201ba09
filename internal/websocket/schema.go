package websocket

import "github.com/learnforge/learnforge-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionRun  Action = "run"
	ActionPing Action = "ping"
)

// RunRequest is sent by the client to execute code with streamed status.
type RunRequest struct {
	Action               Action `json:"action"`
	Language             string `json:"language"`
	SourceCode           string `json:"source_code"`
	Stdin                string `json:"stdin"`
	CommandLineArguments string `json:"command_line_arguments"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventStatus Event = "status"
	EventResult Event = "result"
	EventPong   Event = "pong"
)

// StatusResponse reports a submission status transition while polling.
type StatusResponse struct {
	Event  Event            `json:"event"`
	Status model.StatusInfo `json:"status"`
}

// ResultResponse carries the final execution outcome.
type ResultResponse struct {
	Event   Event                   `json:"event"`
	Outcome *model.ExecutionOutcome `json:"outcome"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
