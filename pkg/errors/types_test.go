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
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializationError(t *testing.T) {
	cause := stderrors.New("unexpected token")
	err := &DeserializationError{
		Type:    "trigger",
		Value:   "teamcity",
		Message: "unrecognized trigger variant",
		Cause:   cause,
	}

	assert.Contains(t, err.Error(), "trigger")
	assert.Contains(t, err.Error(), "teamcity")
	assert.ErrorIs(t, err, cause)
}

func TestEvaluationError(t *testing.T) {
	err := &EvaluationError{
		Path:       "deploy.cluster",
		Expression: "${missing}",
		Message:    "unknown context field",
	}
	assert.Equal(t, "evaluation failed at deploy.cluster: unknown context field", err.Error())

	bare := &EvaluationError{Message: "boom"}
	assert.Equal(t, "evaluation failed: boom", bare.Error())
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "source", Message: "must be a mapping"}
	assert.Equal(t, "validation failed on source: must be a mapping", err.Error())
}

func TestConfigError(t *testing.T) {
	cause := stderrors.New("yaml: line 2")
	err := &ConfigError{Key: "log.level", Reason: "unknown level", Cause: cause}

	assert.Equal(t, "config error at log.level: unknown level", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %s", "x"))

	base := stderrors.New("boom")
	wrapped := Wrap(base, "loading")
	require.Error(t, wrapped)
	assert.Equal(t, "loading: boom", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	var deserErr *DeserializationError
	err := Wrapf(&DeserializationError{Type: "trigger"}, "processing stage %s", "deploy")
	assert.True(t, As(err, &deserErr))
}
