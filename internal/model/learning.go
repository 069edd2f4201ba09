package model

// CurriculumLesson is a single lesson entry inside a curriculum level.
type CurriculumLesson struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// CurriculumLevel groups lessons under a difficulty level.
type CurriculumLevel struct {
	Level   string             `json:"level"`
	Lessons []CurriculumLesson `json:"lessons"`
}

// Curriculum is a nested structure of levels, each containing lessons.
// Raw carries the model reply verbatim when it could not be parsed into
// the structured shape.
type Curriculum struct {
	Levels []CurriculumLevel `json:"levels,omitempty"`
	Raw    string            `json:"raw,omitempty"`
}

// Lesson is a generated explanation of a single concept.
type Lesson struct {
	Title       string `json:"title,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Exercise    string `json:"exercise,omitempty"`
	Raw         string `json:"raw,omitempty"`
}

// Feedback is a generated review of submitted code.
type Feedback struct {
	Feedback string `json:"feedback"`
}

// GenerateCurriculumRequest is the payload for curriculum generation.
type GenerateCurriculumRequest struct {
	Topic string `json:"topic" binding:"required,min=2,max=200"`
}

// GenerateLessonRequest is the payload for lesson generation.
type GenerateLessonRequest struct {
	Concept string `json:"concept" binding:"required,min=2,max=200"`
}

// GetFeedbackRequest is the payload for code feedback.
type GetFeedbackRequest struct {
	Code  string `json:"code" binding:"required"`
	Topic string `json:"topic"`
}
