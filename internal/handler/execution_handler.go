package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/learnforge/learnforge-backend/internal/judge0"
	"github.com/learnforge/learnforge-backend/internal/model"
	"github.com/learnforge/learnforge-backend/internal/response"
	"github.com/learnforge/learnforge-backend/internal/service"
	"github.com/learnforge/learnforge-backend/internal/validator"
	"github.com/rs/zerolog"
)

// ExecutionHandler serves the language catalog and code execution proxy.
type ExecutionHandler struct {
	executionService *service.ExecutionService
	log              zerolog.Logger
}

func NewExecutionHandler(executionService *service.ExecutionService, log zerolog.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
		log:              log.With().Str("component", "execution_handler").Logger(),
	}
}

// ListLanguages godoc
// GET /api/v1/execute/
func (h *ExecutionHandler) ListLanguages(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"languages": h.executionService.Languages()})
}

// RunCode godoc
// POST /api/v1/execute/
func (h *ExecutionHandler) RunCode(c *gin.Context) {
	var req model.RunCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.executionService.Run(c.Request.Context(), &req)
	if err != nil {
		h.failRun(c, &req, err)
		return
	}

	response.Success(c, http.StatusOK, outcome)
}

// ListRuns godoc
// GET /api/v1/execute/runs?limit=N
func (h *ExecutionHandler) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		limit = n
	}

	runs, err := h.executionService.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Run listing failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if runs == nil {
		runs = []model.RunRecord{}
	}

	response.Success(c, http.StatusOK, gin.H{"runs": runs})
}

// failRun maps execution errors onto HTTP statuses the way the upstream
// proxy contract defines them: caller mistakes are 400s, Judge0 failures
// and deadline expiry are 502s.
func (h *ExecutionHandler) failRun(c *gin.Context, req *model.RunCodeRequest, err error) {
	var upstream *judge0.UpstreamError

	switch {
	case errors.Is(err, judge0.ErrUnsupportedLanguage):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedLanguage)
	case errors.Is(err, service.ErrBlankSource):
		response.Fail(c, http.StatusBadRequest, response.ErrSourceRequired)
	case errors.Is(err, judge0.ErrDeadline):
		h.log.Warn().Str("language", req.Language).Msg("Execution deadline expired")
		response.Fail(c, http.StatusBadGateway, response.ErrExecutionTimeout)
	default:
		if errors.As(err, &upstream) {
			h.log.Error().Err(err).Str("language", req.Language).Msg("Judge0 error")
			response.FailWithMessage(c, http.StatusBadGateway, response.ErrUpstream, upstream.Error())
			return
		}
		h.log.Error().Err(err).Msg("Execution failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
