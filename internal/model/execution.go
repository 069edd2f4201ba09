package model

import "time"

// Judge0 status ids: 1-2 are queued/processing, 3 is accepted, everything
// above indicates some kind of failure (wrong answer, RE, TLE, ...).
const (
	StatusIDAccepted = 3
)

// StatusInfo is the Judge0 submission status.
type StatusInfo struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// StatusClass buckets a status id for display color coding. It drives no
// control flow.
type StatusClass string

const (
	StatusClassSuccess StatusClass = "success"
	StatusClassPending StatusClass = "pending"
	StatusClassFailure StatusClass = "failure"
)

// Classify returns the display class for a status id.
func Classify(statusID int) StatusClass {
	switch {
	case statusID == StatusIDAccepted:
		return StatusClassSuccess
	case statusID < StatusIDAccepted:
		return StatusClassPending
	default:
		return StatusClassFailure
	}
}

// ExecutionOutcome is the normalized result of a Judge0 submission.
type ExecutionOutcome struct {
	Token         string     `json:"token"`
	Language      string     `json:"language"`
	LanguageID    int        `json:"language_id"`
	LanguageName  string     `json:"language_name"`
	Status        StatusInfo `json:"status"`
	Stdout        string     `json:"stdout"`
	Stderr        string     `json:"stderr"`
	CompileOutput string     `json:"compile_output"`
	Message       string     `json:"message"`
	Time          *float64   `json:"time,omitempty"`
	Memory        *float64   `json:"memory,omitempty"`
	ExitCode      *int       `json:"exit_code,omitempty"`
}

// RunCodeRequest is the payload for executing code.
type RunCodeRequest struct {
	Language             string  `json:"language" binding:"required"`
	SourceCode           string  `json:"source_code" binding:"required"`
	Stdin                string  `json:"stdin"`
	CommandLineArguments string  `json:"command_line_arguments"`
	ExpectedOutput       *string `json:"expected_output"`
}

// RunRecord is a persisted execution audit row.
type RunRecord struct {
	ID          int       `json:"id"`
	Language    string    `json:"language"`
	Token       string    `json:"token"`
	StatusID    int       `json:"status_id"`
	StatusLabel string    `json:"status_label"`
	Time        *float64  `json:"time,omitempty"`
	Memory      *float64  `json:"memory,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
