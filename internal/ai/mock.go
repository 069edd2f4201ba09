package ai

import (
	"context"
	"strings"
)

// MockGenerator returns canned replies without touching the network.
// Enabled with OPENAI_MOCK for local development and tests.
type MockGenerator struct{}

// Complete returns a canned curriculum for curriculum prompts and a short
// stock message for everything else.
func (MockGenerator) Complete(_ context.Context, prompt string) (string, error) {
	if strings.Contains(strings.ToLower(prompt), "curriculum") {
		return `{"levels": [
			{"level": "Beginner", "lessons": [
				{"title": "Variables", "summary": "Learn variables and data types."},
				{"title": "Loops", "summary": "Understand iteration."}
			]},
			{"level": "Intermediate", "lessons": [
				{"title": "Functions", "summary": "Learn modular code."},
				{"title": "Modules", "summary": "Use Python libraries."}
			]}
		]}`, nil
	}
	return "Mock response", nil
}
