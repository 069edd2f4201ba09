package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// countingGenerator returns a fixed reply and counts completions.
type countingGenerator struct {
	reply string
	err   error
	calls int
}

func (g *countingGenerator) Complete(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func testLearningService(t *testing.T, gen *countingGenerator) *LearningService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewLearningService(gen, rdb, time.Minute, zerolog.Nop())
}

func TestGenerateCurriculumParsesStructuredReply(t *testing.T) {
	gen := &countingGenerator{reply: "```json\n" + `{
		"levels": [
			{"level": "Beginner", "lessons": [{"title": "Variables", "summary": "Naming values"}]},
			{"level": "Intermediate", "lessons": [{"title": "Closures", "summary": "Captured scope"}]}
		]
	}` + "\n```"}
	s := testLearningService(t, gen)

	cur, err := s.GenerateCurriculum(context.Background(), "python")
	if err != nil {
		t.Fatalf("GenerateCurriculum: %v", err)
	}
	if len(cur.Levels) != 2 || cur.Levels[0].Level != "Beginner" {
		t.Errorf("curriculum = %+v", cur)
	}
	if cur.Raw != "" {
		t.Errorf("raw = %q, want empty for parsed reply", cur.Raw)
	}
}

func TestGenerateCurriculumFallsBackToRaw(t *testing.T) {
	gen := &countingGenerator{reply: "Here is a curriculum:\n1. Basics\n2. Advanced"}
	s := testLearningService(t, gen)

	cur, err := s.GenerateCurriculum(context.Background(), "go")
	if err != nil {
		t.Fatalf("GenerateCurriculum: %v", err)
	}
	if len(cur.Levels) != 0 || cur.Raw != gen.reply {
		t.Errorf("curriculum = %+v, want raw fallback", cur)
	}
}

func TestGenerateCurriculumCaches(t *testing.T) {
	gen := &countingGenerator{reply: `{"levels": [{"level": "Beginner", "lessons": []}]}`}
	s := testLearningService(t, gen)

	for i := 0; i < 3; i++ {
		if _, err := s.GenerateCurriculum(context.Background(), "  python  "); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	// Leading/trailing whitespace hashes to the same key.
	if _, err := s.GenerateCurriculum(context.Background(), "python"); err != nil {
		t.Fatal(err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}

	if _, err := s.GenerateCurriculum(context.Background(), "rust"); err != nil {
		t.Fatal(err)
	}
	if gen.calls != 2 {
		t.Errorf("generator called %d times after new topic, want 2", gen.calls)
	}
}

func TestGenerateLesson(t *testing.T) {
	gen := &countingGenerator{reply: `{"title": "Slices", "explanation": "Slices are views.", "exercise": "Reverse one."}`}
	s := testLearningService(t, gen)

	lesson, err := s.GenerateLesson(context.Background(), "slices")
	if err != nil {
		t.Fatalf("GenerateLesson: %v", err)
	}
	if lesson.Title != "Slices" || lesson.Exercise != "Reverse one." {
		t.Errorf("lesson = %+v", lesson)
	}
}

func TestGetFeedbackErrorPassesThrough(t *testing.T) {
	gen := &countingGenerator{err: errors.New("completion backend unavailable")}
	s := testLearningService(t, gen)

	_, err := s.GetFeedback(context.Background(), "python", "print(1)")
	if err == nil || err.Error() != "completion backend unavailable" {
		t.Errorf("err = %v", err)
	}
}

func TestGetFeedbackCacheKeyedByTopicAndCode(t *testing.T) {
	gen := &countingGenerator{reply: "Use a loop."}
	s := testLearningService(t, gen)

	ctx := context.Background()
	if _, err := s.GetFeedback(ctx, "python", "print(1)"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetFeedback(ctx, "python", "print(1)"); err != nil {
		t.Fatal(err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times for identical input, want 1", gen.calls)
	}

	if _, err := s.GetFeedback(ctx, "go", "print(1)"); err != nil {
		t.Fatal(err)
	}
	if gen.calls != 2 {
		t.Errorf("generator called %d times after topic change, want 2", gen.calls)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fences", `{"a": 1}`, `{"a": 1}`},
		{"plain fences", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"json fences", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.input); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
