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

package pipeline

import (
	"encoding/json"

	"github.com/tombee/stagehand/pkg/errors"
)

// BuildInfo carries CI build metadata attached to a trigger or stage context.
// A build may reference zero or more source-control records, one per
// repository checked out during the build.
type BuildInfo struct {
	// Name is the CI job name
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Number is the build number within the job
	Number int `yaml:"number,omitempty" json:"number,omitempty"`

	// URL links to the build in the CI system
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	// Result is the CI-reported outcome (e.g., "SUCCESS", "FAILURE")
	Result string `yaml:"result,omitempty" json:"result,omitempty"`

	// Building reports whether the build is still in progress
	Building bool `yaml:"building,omitempty" json:"building,omitempty"`

	// SCM lists the source-control records for this build
	SCM []SourceControl `yaml:"scm,omitempty" json:"scm,omitempty"`
}

// SourceControl describes one repository state that fed a build.
type SourceControl struct {
	// Name is the repository or remote name
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Branch is the branch that was built
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`

	// SHA1 is the commit hash
	SHA1 string `yaml:"sha1,omitempty" json:"sha1,omitempty"`

	// RemoteURL is the clone URL of the repository
	RemoteURL string `yaml:"remoteUrl,omitempty" json:"remoteUrl,omitempty"`
}

// DecodeBuildInfo coerces an untyped value into a *BuildInfo.
// It is the single coercion point for the dual representation of build
// metadata in stage contexts: an already-decoded *BuildInfo or BuildInfo
// passes through, a map is structurally decoded, nil yields nil.
// Values of any other shape yield a DeserializationError.
func DecodeBuildInfo(v any) (*BuildInfo, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case *BuildInfo:
		return b, nil
	case BuildInfo:
		return &b, nil
	case map[string]any:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, &errors.DeserializationError{Type: "buildInfo", Message: "cannot marshal build metadata", Cause: err}
		}
		var info BuildInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, &errors.DeserializationError{Type: "buildInfo", Message: "malformed build metadata", Cause: err}
		}
		return &info, nil
	default:
		return nil, &errors.DeserializationError{
			Type:    "buildInfo",
			Message: "build metadata must be a mapping",
		}
	}
}

// DecodeSourceControlList coerces an untyped value into a source-control
// slice. Accepts a typed slice, a slice of mappings, or nil.
func DecodeSourceControlList(v any) ([]SourceControl, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []SourceControl:
		return s, nil
	case []any:
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, &errors.DeserializationError{Type: "scmInfo", Message: "cannot marshal source-control list", Cause: err}
		}
		var records []SourceControl
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, &errors.DeserializationError{Type: "scmInfo", Message: "malformed source-control list", Cause: err}
		}
		return records, nil
	default:
		return nil, &errors.DeserializationError{
			Type:    "scmInfo",
			Message: "source-control data must be a sequence",
		}
	}
}
