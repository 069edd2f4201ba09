// Package view holds the presentation-independent UI state for the five
// backend operations: one tagged request state per operation, the
// selected execution language, and the guards that keep a region from
// firing twice or reacting to a fetch that outlived its owner.
package view

import (
	"context"
	"strings"
	"sync"

	"github.com/learnforge/learnforge-backend/internal/model"
)

// DefaultLanguageKey is selected when the fetched catalog is empty.
const DefaultLanguageKey = "python"

// fallbackErrorMessage replaces empty error strings before display.
const fallbackErrorMessage = "Something went wrong. Please try again."

// API is the slice of the backend client the controller needs. Satisfied
// by *client.Client; tests substitute a stub.
type API interface {
	GenerateCurriculum(ctx context.Context, topic string) (*model.Curriculum, error)
	GenerateLesson(ctx context.Context, concept string) (*model.Lesson, error)
	GetFeedback(ctx context.Context, code string) (*model.Feedback, error)
	ListLanguages(ctx context.Context) ([]model.LanguageDescriptor, error)
	RunCode(ctx context.Context, req *model.RunCodeRequest) (*model.ExecutionOutcome, error)
}

// Controller owns one State per operation. Each trigger is guarded: a
// blank input or an in-flight request of the same kind is silently
// ignored. Close discards any in-flight resolution via a generation
// counter checked before every post-call write.
type Controller struct {
	api API

	mu     sync.Mutex
	gen    uint64
	closed bool

	curriculum State[*model.Curriculum]
	lesson     State[*model.Lesson]
	feedback   State[*model.Feedback]
	languages  State[[]model.LanguageDescriptor]
	run        State[*model.ExecutionOutcome]

	selectedLanguage string
}

// NewController creates a Controller around the given API client.
func NewController(api API) *Controller {
	return &Controller{
		api:              api,
		curriculum:       Idle[*model.Curriculum](),
		lesson:           Idle[*model.Lesson](),
		feedback:         Idle[*model.Feedback](),
		languages:        Idle[[]model.LanguageDescriptor](),
		run:              Idle[*model.ExecutionOutcome](),
		selectedLanguage: DefaultLanguageKey,
	}
}

// Close tears the controller down. In-flight requests resolve into the
// void: their results are discarded without touching state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
}

// ─── Triggers ────────────────────────────────────────────────────────

// GenerateCurriculum requests a curriculum for the topic.
func (c *Controller) GenerateCurriculum(ctx context.Context, topic string) {
	if isBlank(topic) {
		return
	}
	gen, ok := begin(c, &c.curriculum)
	if !ok {
		return
	}

	result, err := c.api.GenerateCurriculum(ctx, topic)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return
	}
	c.curriculum = settle(result, err)
}

// GenerateLesson requests a lesson for the concept.
func (c *Controller) GenerateLesson(ctx context.Context, concept string) {
	if isBlank(concept) {
		return
	}
	gen, ok := begin(c, &c.lesson)
	if !ok {
		return
	}

	result, err := c.api.GenerateLesson(ctx, concept)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return
	}
	c.lesson = settle(result, err)
}

// GetFeedback requests a review of the code.
func (c *Controller) GetFeedback(ctx context.Context, code string) {
	if isBlank(code) {
		return
	}
	gen, ok := begin(c, &c.feedback)
	if !ok {
		return
	}

	result, err := c.api.GetFeedback(ctx, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return
	}
	c.feedback = settle(result, err)
}

// FetchLanguages loads the language catalog and reconciles the selected
// language against it: a selection still present is kept, otherwise the
// first entry wins, otherwise the fixed default. Reconciliation happens
// exactly once per fetch and never retroactively overrides a manual
// selection.
func (c *Controller) FetchLanguages(ctx context.Context) {
	gen, ok := begin(c, &c.languages)
	if !ok {
		return
	}

	result, err := c.api.ListLanguages(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return
	}
	if err != nil {
		c.languages = Failure[[]model.LanguageDescriptor](errorMessage(err))
		return
	}
	c.languages = Success(result)
	if !containsKey(result, c.selectedLanguage) {
		if len(result) > 0 {
			c.selectedLanguage = result[0].Key
		} else {
			c.selectedLanguage = DefaultLanguageKey
		}
	}
}

// RunCode executes source against the currently selected language.
func (c *Controller) RunCode(ctx context.Context, source, stdin string) {
	if isBlank(source) {
		return
	}
	gen, ok := begin(c, &c.run)
	if !ok {
		return
	}

	c.mu.Lock()
	language := c.selectedLanguage
	c.mu.Unlock()

	result, err := c.api.RunCode(ctx, &model.RunCodeRequest{
		Language:   language,
		SourceCode: source,
		Stdin:      stdin,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.live(gen) {
		return
	}
	c.run = settle(result, err)
}

// SelectLanguage records a manual language choice. Keys outside an
// already-fetched catalog are ignored.
func (c *Controller) SelectLanguage(key string) {
	if isBlank(key) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if langs, ok := c.languages.Value(); ok && !containsKey(langs, key) {
		return
	}
	c.selectedLanguage = key
}

// ─── Accessors ───────────────────────────────────────────────────────

func (c *Controller) Curriculum() State[*model.Curriculum] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curriculum
}

func (c *Controller) Lesson() State[*model.Lesson] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lesson
}

func (c *Controller) Feedback() State[*model.Feedback] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedback
}

func (c *Controller) Languages() State[[]model.LanguageDescriptor] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.languages
}

func (c *Controller) Run() State[*model.ExecutionOutcome] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run
}

func (c *Controller) SelectedLanguage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLanguage
}

// ─── Internals ───────────────────────────────────────────────────────

// begin transitions a region to Loading if it may fire, returning the
// generation the eventual write must match. A closed controller or an
// already-loading region refuses the trigger.
func begin[T any](c *Controller, region *State[T]) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || region.IsLoading() {
		return 0, false
	}
	*region = Loading[T]()
	return c.gen, true
}

// live reports whether a write for the given generation is still wanted.
// Callers must hold mu.
func (c *Controller) live(gen uint64) bool {
	return !c.closed && c.gen == gen
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func containsKey(langs []model.LanguageDescriptor, key string) bool {
	for _, l := range langs {
		if l.Key == key {
			return true
		}
	}
	return false
}

// settle folds a (result, err) pair into a State.
func settle[T any](result T, err error) State[T] {
	if err != nil {
		return Failure[T](errorMessage(err))
	}
	return Success(result)
}

func errorMessage(err error) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return fallbackErrorMessage
	}
	return err.Error()
}
