package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/learnforge/learnforge-backend/internal/model"
)

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(srv.URL + "/api/v1")
}

func TestGenerateCurriculum(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/curriculum/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {"curriculum": {"levels": [
				{"level": "Beginner", "lessons": [{"title": "Variables", "summary": "Naming values"}]}
			]}},
			"error": null,
			"metadata": {"request_id": "abc", "timestamp": "2025-01-01T00:00:00Z"}
		}`))
	})

	cur, err := c.GenerateCurriculum(context.Background(), "python")
	if err != nil {
		t.Fatalf("GenerateCurriculum: %v", err)
	}
	if len(cur.Levels) != 1 || cur.Levels[0].Level != "Beginner" {
		t.Errorf("curriculum = %+v, want one Beginner level", cur)
	}
	if cur.Levels[0].Lessons[0].Title != "Variables" {
		t.Errorf("lesson title = %q", cur.Levels[0].Lessons[0].Title)
	}
}

func TestListLanguages(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/execute/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"data": {"languages": [
			{"key": "python", "id": 71, "name": "Python (3.8.1)"},
			{"key": "go", "id": 60, "name": "Go (1.13.5)"}
		]}}`))
	})

	langs, err := c.ListLanguages(context.Background())
	if err != nil {
		t.Fatalf("ListLanguages: %v", err)
	}
	if len(langs) != 2 || langs[0].Key != "python" || langs[1].ID != 60 {
		t.Errorf("languages = %+v", langs)
	}
}

func TestRunCode(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {
			"token": "tok-9",
			"language": "python",
			"language_id": 71,
			"status": {"id": 3, "description": "Accepted"},
			"stdout": "hello\n",
			"time": 0.021,
			"memory": 3100
		}}`))
	})

	out, err := c.RunCode(context.Background(), &model.RunCodeRequest{
		Language:   "python",
		SourceCode: `print("hello")`,
	})
	if err != nil {
		t.Fatalf("RunCode: %v", err)
	}
	if out.Token != "tok-9" || out.Status.ID != 3 || out.Stdout != "hello\n" {
		t.Errorf("outcome = %+v", out)
	}
	if out.Time == nil || *out.Time != 0.021 {
		t.Errorf("time = %v, want 0.021", out.Time)
	}
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantCode   string
		wantStatus int
	}{
		{
			name:       "enveloped error message wins",
			status:     http.StatusBadRequest,
			body:       `{"data": null, "error": {"code": "VALIDATION_ERROR", "message": "Topic is required"}}`,
			wantMsg:    "Topic is required",
			wantCode:   "VALIDATION_ERROR",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bare error field tolerated",
			status:     http.StatusBadGateway,
			body:       `{"error": "Execution service timed out"}`,
			wantMsg:    "Execution service timed out",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "undecodable body falls to status line",
			status:     http.StatusInternalServerError,
			body:       `<html>nope</html>`,
			wantMsg:    "HTTP 500",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "empty enveloped message falls to fallback",
			status:     http.StatusBadGateway,
			body:       `{"data": null, "error": {"code": "UPSTREAM_ERROR", "message": ""}}`,
			wantMsg:    FallbackErrorMessage,
			wantCode:   "UPSTREAM_ERROR",
			wantStatus: http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.GenerateLesson(context.Background(), "maps")
			if err == nil {
				t.Fatal("expected error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error type = %T, want *APIError", err)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.wantCode)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if apiErr.Error() == "" {
				t.Error("Error() must never be empty")
			}
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // Connection refused from here on.
	c := New(srv.URL)

	_, err := c.GetFeedback(context.Background(), "print(1)")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for transport failure", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("transport failure must carry a message")
	}
}

func TestSuccessWithoutData(t *testing.T) {
	_, c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": null}`))
	})

	_, err := c.ListLanguages(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != FallbackErrorMessage {
		t.Errorf("message = %q, want fallback", apiErr.Message)
	}
}
