package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/learnforge/learnforge-backend/internal/ai"
	"github.com/learnforge/learnforge-backend/internal/config"
	"github.com/learnforge/learnforge-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LearningService generates curricula, lessons, and code feedback through
// the completion backend, memoizing replies in Redis so identical inputs
// return identical content within the TTL.
type LearningService struct {
	gen ai.Generator
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

func NewLearningService(gen ai.Generator, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *LearningService {
	return &LearningService{
		gen: gen,
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "learning_service").Logger(),
	}
}

// GenerateCurriculum produces a 3-level curriculum for a topic.
func (s *LearningService) GenerateCurriculum(ctx context.Context, topic string) (*model.Curriculum, error) {
	key := config.CacheKey.CurriculumKey(digest(topic))

	var cur model.Curriculum
	if s.fromCache(ctx, key, &cur) {
		return &cur, nil
	}

	text, err := s.gen.Complete(ctx, ai.CurriculumPrompt(topic))
	if err != nil {
		return nil, err
	}

	parsed := parseCurriculum(text)
	s.toCache(ctx, key, parsed)
	return parsed, nil
}

// GenerateLesson produces an explanation of a single concept.
func (s *LearningService) GenerateLesson(ctx context.Context, concept string) (*model.Lesson, error) {
	key := config.CacheKey.LessonKey(digest(concept))

	var lesson model.Lesson
	if s.fromCache(ctx, key, &lesson) {
		return &lesson, nil
	}

	text, err := s.gen.Complete(ctx, ai.LessonPrompt(concept))
	if err != nil {
		return nil, err
	}

	parsed := parseLesson(text)
	s.toCache(ctx, key, parsed)
	return parsed, nil
}

// GetFeedback reviews submitted code.
func (s *LearningService) GetFeedback(ctx context.Context, topic, code string) (*model.Feedback, error) {
	key := config.CacheKey.FeedbackKey(digest(topic + "\x00" + code))

	var fb model.Feedback
	if s.fromCache(ctx, key, &fb) {
		return &fb, nil
	}

	text, err := s.gen.Complete(ctx, ai.FeedbackPrompt(topic, code))
	if err != nil {
		return nil, err
	}

	result := &model.Feedback{Feedback: text}
	s.toCache(ctx, key, result)
	return result, nil
}

// fromCache loads a cached reply into dst. Cache failures are treated as
// misses; the reply is just regenerated.
func (s *LearningService) fromCache(ctx context.Context, key string, dst interface{}) bool {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache entry corrupt, ignoring")
		return false
	}
	return true
}

func (s *LearningService) toCache(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func digest(input string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(input)))
	return hex.EncodeToString(sum[:])
}

// parseCurriculum attempts to decode the reply into the structured shape,
// falling back to carrying the raw text.
func parseCurriculum(text string) *model.Curriculum {
	var cur model.Curriculum
	if err := json.Unmarshal([]byte(stripFences(text)), &cur); err == nil && len(cur.Levels) > 0 {
		return &cur
	}
	return &model.Curriculum{Raw: text}
}

func parseLesson(text string) *model.Lesson {
	var lesson model.Lesson
	if err := json.Unmarshal([]byte(stripFences(text)), &lesson); err == nil &&
		(lesson.Title != "" || lesson.Explanation != "" || lesson.Exercise != "") {
		return &lesson
	}
	return &model.Lesson{Raw: text}
}

// stripFences unwraps a reply enclosed in markdown code fences, which
// completion models frequently add around JSON.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
