package ai

import "fmt"

// Prompt builders for the three learning-content operations. The JSON
// framing instructions let the services parse structured replies while
// tolerating plain-text ones.

// CurriculumPrompt asks for a 3-level learning curriculum on a topic.
func CurriculumPrompt(topic string) string {
	return fmt.Sprintf(
		"Design a simple 3-level learning curriculum for %s with beginner, intermediate, and advanced lessons. "+
			`Reply with JSON of the form {"levels": [{"level": "...", "lessons": [{"title": "...", "summary": "..."}]}]}.`,
		topic)
}

// LessonPrompt asks for an explanation of a single concept.
func LessonPrompt(concept string) string {
	return fmt.Sprintf(
		"Explain %s in simple terms with one example and one short practice exercise. "+
			`Reply with JSON of the form {"title": "...", "explanation": "...", "exercise": "..."}.`,
		concept)
}

// FeedbackPrompt asks for a review of submitted code.
func FeedbackPrompt(topic, code string) string {
	if topic == "" {
		topic = "Python"
	}
	return fmt.Sprintf(
		"Review this %s code:\n%s\nCheck correctness, give feedback, and suggest improvements.",
		topic, code)
}
