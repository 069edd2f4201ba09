package view

// Phase enumerates the lifecycle of one request-backed view region.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

// State is a tagged request state: Idle | Loading | Success(T) |
// Failure(message). Invalid combinations (loading with a stale error,
// success with a message) are unrepresentable.
type State[T any] struct {
	phase   Phase
	value   T
	message string
}

// Idle returns the initial state.
func Idle[T any]() State[T] {
	return State[T]{phase: PhaseIdle}
}

// Loading returns the in-flight state.
func Loading[T any]() State[T] {
	return State[T]{phase: PhaseLoading}
}

// Success returns a resolved state holding the result verbatim.
func Success[T any](value T) State[T] {
	return State[T]{phase: PhaseSuccess, value: value}
}

// Failure returns a rejected state holding a display message.
func Failure[T any](message string) State[T] {
	return State[T]{phase: PhaseFailure, message: message}
}

// Phase reports which variant the state is in.
func (s State[T]) Phase() Phase { return s.phase }

// IsLoading reports whether a request is in flight.
func (s State[T]) IsLoading() bool { return s.phase == PhaseLoading }

// Value returns the stored result and whether the state is Success.
func (s State[T]) Value() (T, bool) {
	return s.value, s.phase == PhaseSuccess
}

// FailureMessage returns the display message and whether the state is
// Failure.
func (s State[T]) FailureMessage() (string, bool) {
	return s.message, s.phase == PhaseFailure
}
