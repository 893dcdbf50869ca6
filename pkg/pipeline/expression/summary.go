package expression

import (
	"time"
)

// FailureLevel classifies a recorded evaluation failure.
type FailureLevel string

const (
	// LevelError marks failures that callers may want to escalate.
	LevelError FailureLevel = "ERROR"

	// LevelInfo marks unresolved references tolerated by the caller.
	LevelInfo FailureLevel = "INFO"
)

// Failure is one recorded evaluation problem for a document field.
type Failure struct {
	// Timestamp is when the failure was recorded
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Level classifies the failure
	Level FailureLevel `json:"level" yaml:"level"`

	// Expression is the placeholder text that failed
	Expression string `json:"expression" yaml:"expression"`

	// Description explains what went wrong
	Description string `json:"description" yaml:"description"`
}

// Summary accumulates evaluation diagnostics across one processing call, or
// across several when the caller supplies the same Summary to each call.
// Counts are monotonically non-decreasing. A Summary is not safe for
// concurrent use; each concurrent evaluation owns its own.
type Summary struct {
	totalEvaluated int
	failureCount   int
	failures       map[string][]Failure
}

// NewSummary creates an empty evaluation summary.
func NewSummary() *Summary {
	return &Summary{
		failures: make(map[string][]Failure),
	}
}

// IncrementEvaluated records one attempted placeholder substitution.
func (s *Summary) IncrementEvaluated() {
	s.totalEvaluated++
}

// AppendFailure records a failure for the field at the given document path.
func (s *Summary) AppendFailure(path string, level FailureLevel, expression, description string) {
	if s.failures == nil {
		s.failures = make(map[string][]Failure)
	}
	s.failures[path] = append(s.failures[path], Failure{
		Timestamp:   time.Now().UTC(),
		Level:       level,
		Expression:  expression,
		Description: description,
	})
	s.failureCount++
}

// TotalEvaluated returns the number of attempted substitutions.
func (s *Summary) TotalEvaluated() int {
	return s.totalEvaluated
}

// FailureCount returns the number of recorded failures.
func (s *Summary) FailureCount() int {
	return s.failureCount
}

// Failures returns the recorded failures keyed by document path.
// The returned map is a serializable rendering suitable for attachment to
// an evaluated document; mutating it does not affect the Summary.
func (s *Summary) Failures() map[string][]Failure {
	out := make(map[string][]Failure, len(s.failures))
	for path, fs := range s.failures {
		out[path] = append([]Failure(nil), fs...)
	}
	return out
}
