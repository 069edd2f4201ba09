package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CurriculumKey returns the cache key for a generated curriculum,
// keyed by a digest of the topic.
func (r *CacheKeyStruct) CurriculumKey(digest string) string {
	return fmt.Sprintf("ai:curriculum:%s", digest)
}

// LessonKey returns the cache key for a generated lesson.
func (r *CacheKeyStruct) LessonKey(digest string) string {
	return fmt.Sprintf("ai:lesson:%s", digest)
}

// FeedbackKey returns the cache key for generated code feedback.
func (r *CacheKeyStruct) FeedbackKey(digest string) string {
	return fmt.Sprintf("ai:feedback:%s", digest)
}

var CacheKey = NewCacheKeyStruct()
