package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/learnforge/learnforge-backend/internal/model"
)

// stubAPI lets each test script the backend per operation. A nil func
// fails the test if called.
type stubAPI struct {
	mu sync.Mutex

	curriculumFn func(topic string) (*model.Curriculum, error)
	lessonFn     func(concept string) (*model.Lesson, error)
	feedbackFn   func(code string) (*model.Feedback, error)
	languagesFn  func() ([]model.LanguageDescriptor, error)
	runFn        func(req *model.RunCodeRequest) (*model.ExecutionOutcome, error)

	calls map[string]int
}

func newStubAPI() *stubAPI {
	return &stubAPI{calls: make(map[string]int)}
}

func (s *stubAPI) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubAPI) record(op string) {
	s.mu.Lock()
	s.calls[op]++
	s.mu.Unlock()
}

func (s *stubAPI) GenerateCurriculum(_ context.Context, topic string) (*model.Curriculum, error) {
	s.record("curriculum")
	return s.curriculumFn(topic)
}

func (s *stubAPI) GenerateLesson(_ context.Context, concept string) (*model.Lesson, error) {
	s.record("lesson")
	return s.lessonFn(concept)
}

func (s *stubAPI) GetFeedback(_ context.Context, code string) (*model.Feedback, error) {
	s.record("feedback")
	return s.feedbackFn(code)
}

func (s *stubAPI) ListLanguages(_ context.Context) ([]model.LanguageDescriptor, error) {
	s.record("languages")
	return s.languagesFn()
}

func (s *stubAPI) RunCode(_ context.Context, req *model.RunCodeRequest) (*model.ExecutionOutcome, error) {
	s.record("run")
	return s.runFn(req)
}

func catalog(keys ...string) []model.LanguageDescriptor {
	langs := make([]model.LanguageDescriptor, 0, len(keys))
	for i, k := range keys {
		langs = append(langs, model.LanguageDescriptor{Key: k, ID: 100 + i, Name: k})
	}
	return langs
}

func TestInitialState(t *testing.T) {
	c := NewController(newStubAPI())

	if got := c.Curriculum().Phase(); got != PhaseIdle {
		t.Errorf("curriculum phase = %v, want idle", got)
	}
	if got := c.Run().Phase(); got != PhaseIdle {
		t.Errorf("run phase = %v, want idle", got)
	}
	if got := c.SelectedLanguage(); got != DefaultLanguageKey {
		t.Errorf("selected language = %q, want %q", got, DefaultLanguageKey)
	}
}

func TestBlankInputIgnored(t *testing.T) {
	api := newStubAPI()
	c := NewController(api)

	for _, input := range []string{"", "   ", "\n\t "} {
		c.GenerateCurriculum(context.Background(), input)
		c.GenerateLesson(context.Background(), input)
		c.GetFeedback(context.Background(), input)
		c.RunCode(context.Background(), input, "")
	}

	for _, op := range []string{"curriculum", "lesson", "feedback", "run"} {
		if n := api.count(op); n != 0 {
			t.Errorf("%s called %d times on blank input, want 0", op, n)
		}
	}
	if got := c.Curriculum().Phase(); got != PhaseIdle {
		t.Errorf("curriculum phase = %v, want idle after blank trigger", got)
	}
}

func TestLoadingGuard(t *testing.T) {
	api := newStubAPI()
	release := make(chan struct{})
	started := make(chan struct{})
	api.curriculumFn = func(string) (*model.Curriculum, error) {
		close(started)
		<-release
		return &model.Curriculum{Raw: "first"}, nil
	}

	c := NewController(api)
	done := make(chan struct{})
	go func() {
		c.GenerateCurriculum(context.Background(), "loops")
		close(done)
	}()
	<-started

	if !c.Curriculum().IsLoading() {
		t.Fatal("curriculum not loading while request in flight")
	}

	// Second trigger while loading must be a no-op.
	c.GenerateCurriculum(context.Background(), "recursion")
	if n := api.count("curriculum"); n != 1 {
		t.Errorf("curriculum called %d times, want 1", n)
	}

	close(release)
	<-done

	cur, ok := c.Curriculum().Value()
	if !ok || cur.Raw != "first" {
		t.Errorf("curriculum = %+v (ok=%v), want first result", cur, ok)
	}
}

func TestSuccessStoresResultVerbatim(t *testing.T) {
	api := newStubAPI()
	want := &model.ExecutionOutcome{
		Token:  "tok-1",
		Status: model.StatusInfo{ID: 11, Description: "Runtime Error (SIGSEGV)"},
		Stderr: "Segmentation fault",
	}
	api.runFn = func(*model.RunCodeRequest) (*model.ExecutionOutcome, error) {
		return want, nil
	}

	c := NewController(api)
	c.RunCode(context.Background(), "main = undefined", "")

	got, ok := c.Run().Value()
	if !ok {
		t.Fatalf("run phase = %v, want success", c.Run().Phase())
	}
	// A failed execution is still a successful request.
	if got != want {
		t.Errorf("run outcome = %+v, want stored verbatim", got)
	}
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend detail", errors.New("Topic is required"), "Topic is required"},
		{"empty message", errors.New(""), fallbackErrorMessage},
		{"whitespace message", errors.New("   "), fallbackErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newStubAPI()
			api.lessonFn = func(string) (*model.Lesson, error) {
				return nil, tt.err
			}
			c := NewController(api)
			c.GenerateLesson(context.Background(), "maps")

			msg, failed := c.Lesson().FailureMessage()
			if !failed {
				t.Fatalf("lesson phase = %v, want failure", c.Lesson().Phase())
			}
			if msg != tt.want {
				t.Errorf("failure message = %q, want %q", msg, tt.want)
			}
		})
	}
}

func TestFailureThenRetry(t *testing.T) {
	api := newStubAPI()
	fail := true
	api.feedbackFn = func(string) (*model.Feedback, error) {
		if fail {
			return nil, errors.New("upstream unavailable")
		}
		return &model.Feedback{Feedback: "Looks good."}, nil
	}

	c := NewController(api)
	c.GetFeedback(context.Background(), "print(1)")
	if _, failed := c.Feedback().FailureMessage(); !failed {
		t.Fatal("first request should fail")
	}

	fail = false
	c.GetFeedback(context.Background(), "print(1)")
	fb, ok := c.Feedback().Value()
	if !ok || fb.Feedback != "Looks good." {
		t.Errorf("feedback after retry = %+v (ok=%v)", fb, ok)
	}
	if n := api.count("feedback"); n != 2 {
		t.Errorf("feedback called %d times, want 2", n)
	}
}

func TestLanguageReconciliation(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		fetched  []model.LanguageDescriptor
		want     string
	}{
		{"selection kept when present", "javascript", catalog("python", "javascript", "go"), "javascript"},
		{"missing selection falls to first", "ruby", catalog("javascript", "go"), "javascript"},
		{"empty catalog falls to default", "ruby", catalog(), DefaultLanguageKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newStubAPI()
			api.languagesFn = func() ([]model.LanguageDescriptor, error) {
				return tt.fetched, nil
			}
			c := NewController(api)
			c.selectedLanguage = tt.selected

			c.FetchLanguages(context.Background())

			if got := c.SelectedLanguage(); got != tt.want {
				t.Errorf("selected language = %q, want %q", got, tt.want)
			}
			langs, ok := c.Languages().Value()
			if !ok || len(langs) != len(tt.fetched) {
				t.Errorf("languages = %v (ok=%v), want catalog stored", langs, ok)
			}
		})
	}
}

func TestLanguagesFailureKeepsSelection(t *testing.T) {
	api := newStubAPI()
	api.languagesFn = func() ([]model.LanguageDescriptor, error) {
		return nil, errors.New("HTTP 502")
	}
	c := NewController(api)

	c.FetchLanguages(context.Background())

	if _, failed := c.Languages().FailureMessage(); !failed {
		t.Fatalf("languages phase = %v, want failure", c.Languages().Phase())
	}
	if got := c.SelectedLanguage(); got != DefaultLanguageKey {
		t.Errorf("selected language = %q, want untouched default", got)
	}
}

func TestSelectLanguage(t *testing.T) {
	api := newStubAPI()
	api.languagesFn = func() ([]model.LanguageDescriptor, error) {
		return catalog("python", "go"), nil
	}
	c := NewController(api)

	// Before any fetch, any non-blank key is accepted.
	c.SelectLanguage("rust")
	if got := c.SelectedLanguage(); got != "rust" {
		t.Errorf("selected language = %q, want rust before fetch", got)
	}

	c.FetchLanguages(context.Background())
	if got := c.SelectedLanguage(); got != "python" {
		t.Errorf("selected language = %q, want python after reconciliation", got)
	}

	// Keys outside the fetched catalog are ignored.
	c.SelectLanguage("cobol")
	if got := c.SelectedLanguage(); got != "python" {
		t.Errorf("selected language = %q, unknown key should be ignored", got)
	}

	c.SelectLanguage("go")
	if got := c.SelectedLanguage(); got != "go" {
		t.Errorf("selected language = %q, want go", got)
	}
}

func TestRunUsesSelectedLanguage(t *testing.T) {
	api := newStubAPI()
	api.languagesFn = func() ([]model.LanguageDescriptor, error) {
		return catalog("python", "go"), nil
	}
	var gotReq *model.RunCodeRequest
	api.runFn = func(req *model.RunCodeRequest) (*model.ExecutionOutcome, error) {
		gotReq = req
		return &model.ExecutionOutcome{Status: model.StatusInfo{ID: 3, Description: "Accepted"}}, nil
	}

	c := NewController(api)
	c.FetchLanguages(context.Background())
	c.SelectLanguage("go")
	c.RunCode(context.Background(), "package main", "42\n")

	if gotReq == nil {
		t.Fatal("run never reached the API")
	}
	if gotReq.Language != "go" {
		t.Errorf("request language = %q, want go", gotReq.Language)
	}
	if gotReq.Stdin != "42\n" {
		t.Errorf("request stdin = %q, want passed through", gotReq.Stdin)
	}
}

func TestCloseDiscardsInFlight(t *testing.T) {
	api := newStubAPI()
	release := make(chan struct{})
	started := make(chan struct{})
	api.curriculumFn = func(string) (*model.Curriculum, error) {
		close(started)
		<-release
		return &model.Curriculum{Raw: "late"}, nil
	}

	c := NewController(api)
	done := make(chan struct{})
	go func() {
		c.GenerateCurriculum(context.Background(), "slices")
		close(done)
	}()
	<-started

	c.Close()
	close(release)
	<-done

	// The late resolution must not overwrite state after Close.
	if got := c.Curriculum().Phase(); got != PhaseLoading {
		t.Errorf("curriculum phase = %v, want loading frozen at close", got)
	}

	// And no further trigger may fire.
	c.GenerateCurriculum(context.Background(), "maps")
	if n := api.count("curriculum"); n != 1 {
		t.Errorf("curriculum called %d times after close, want 1", n)
	}
}
