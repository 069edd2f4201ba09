package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnforge/learnforge-backend/internal/model"
	"github.com/learnforge/learnforge-backend/internal/response"
	"github.com/learnforge/learnforge-backend/internal/service"
	"github.com/learnforge/learnforge-backend/internal/validator"
	"github.com/rs/zerolog"
)

// LearningHandler serves curriculum, lesson, and feedback generation.
type LearningHandler struct {
	learningService *service.LearningService
	log             zerolog.Logger
}

func NewLearningHandler(learningService *service.LearningService, log zerolog.Logger) *LearningHandler {
	return &LearningHandler{
		learningService: learningService,
		log:             log.With().Str("component", "learning_handler").Logger(),
	}
}

// GenerateCurriculum godoc
// POST /api/v1/curriculum/
func (h *LearningHandler) GenerateCurriculum(c *gin.Context) {
	var req model.GenerateCurriculumRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	curriculum, err := h.learningService.GenerateCurriculum(c.Request.Context(), req.Topic)
	if err != nil {
		h.log.Error().Err(err).Str("topic", req.Topic).Msg("Curriculum generation failed")
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"curriculum": curriculum})
}

// GenerateLesson godoc
// POST /api/v1/lesson/
func (h *LearningHandler) GenerateLesson(c *gin.Context) {
	var req model.GenerateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.learningService.GenerateLesson(c.Request.Context(), req.Concept)
	if err != nil {
		h.log.Error().Err(err).Str("concept", req.Concept).Msg("Lesson generation failed")
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"lesson": lesson})
}

// GetFeedback godoc
// POST /api/v1/feedback/
func (h *LearningHandler) GetFeedback(c *gin.Context) {
	var req model.GetFeedbackRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	feedback, err := h.learningService.GetFeedback(c.Request.Context(), req.Topic, req.Code)
	if err != nil {
		h.log.Error().Err(err).Msg("Feedback generation failed")
		response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		return
	}

	response.Success(c, http.StatusOK, feedback)
}
