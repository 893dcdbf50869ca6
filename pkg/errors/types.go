// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"fmt"
)

// DeserializationError represents a failure to decode an untyped document
// into a typed domain value.
// Use this for malformed or unrecognized structures, such as a trigger
// payload whose discriminator matches no known variant.
type DeserializationError struct {
	// Type is the domain type that was being decoded (e.g., "trigger")
	Type string

	// Value is the discriminator or shape that could not be matched
	Value string

	// Message is the human-readable error description
	Message string

	// Cause is the underlying error (e.g., a JSON unmarshal error)
	Cause error
}

// Error implements the error interface.
func (e *DeserializationError) Error() string {
	msg := fmt.Sprintf("cannot deserialize %s", e.Type)
	if e.Value != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Value)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *DeserializationError) Unwrap() error {
	return e.Cause
}

// EvaluationError represents a single expression evaluation failure.
// These are recorded in an evaluation summary rather than propagated;
// a field that fails to evaluate never aborts the rest of the document.
type EvaluationError struct {
	// Path is the document path of the failing field (e.g., "deploy.cluster")
	Path string

	// Expression is the placeholder text that failed to evaluate
	Expression string

	// Message is the human-readable error description
	Message string

	// Cause is the underlying error from the expression engine
	Cause error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("evaluation failed at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("evaluation failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// ValidationError represents user input validation failures.
// Use this for invalid user input, malformed data, or constraint violations.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "log.level")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
