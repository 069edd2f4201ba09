package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/learnforge/learnforge-backend/internal/model"
	"github.com/learnforge/learnforge-backend/internal/service"
	"github.com/learnforge/learnforge-backend/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

func executionRouter() *gin.Engine {
	svc := service.NewExecutionService(nil, nil, nil, zerolog.Nop())
	h := NewExecutionHandler(svc, zerolog.Nop())

	r := gin.New()
	r.GET("/execute/", h.ListLanguages)
	r.POST("/execute/", h.RunCode)
	return r
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return w.Code, env
}

func TestListLanguagesEndpoint(t *testing.T) {
	code, env := doJSON(t, executionRouter(), http.MethodGet, "/execute/", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	var data struct {
		Languages []model.LanguageDescriptor `json:"languages"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Languages) == 0 {
		t.Fatal("no languages returned")
	}
	if data.Languages[0].Key != "python" {
		t.Errorf("first language = %q, want python", data.Languages[0].Key)
	}
}

func TestRunCodeValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "missing source_code",
			body:     `{"language": "python"}`,
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "missing language",
			body:     `{"source_code": "print(1)"}`,
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "malformed json",
			body:     `{"language": `,
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "unsupported language",
			body:     `{"language": "brainfuck", "source_code": "+"}`,
			wantCode: "UNSUPPORTED_LANGUAGE",
		},
		{
			name:     "whitespace source",
			body:     `{"language": "python", "source_code": "   "}`,
			wantCode: "SOURCE_CODE_REQUIRED",
		},
	}
	r := executionRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doJSON(t, r, http.MethodPost, "/execute/", tt.body)
			if code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", code)
			}
			if env.Error == nil {
				t.Fatal("error field is empty")
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if env.Error.Message == "" {
				t.Error("error message must not be empty")
			}
		})
	}
}
