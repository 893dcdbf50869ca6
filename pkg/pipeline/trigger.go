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
	"fmt"

	"github.com/tombee/stagehand/pkg/errors"
)

// TriggerType identifies the origin of a trigger.
type TriggerType string

const (
	TriggerTypeManual    TriggerType = "manual"
	TriggerTypeJenkins   TriggerType = "jenkins"
	TriggerTypeConcourse TriggerType = "concourse"
	TriggerTypeGit       TriggerType = "git"
	TriggerTypeDocker    TriggerType = "docker"
	TriggerTypeWebhook   TriggerType = "webhook"
	TriggerTypeCron      TriggerType = "cron"
	TriggerTypePipeline  TriggerType = "pipeline"
)

// Trigger describes what initiated a pipeline execution.
//
// The variant set is closed: every origin the system understands has its own
// type carrying only the fields meaningful to it. DecodeTrigger is the single
// coercion point from untyped payloads; a given call graph must not mix raw
// mappings and decoded variants for the same context entry.
type Trigger interface {
	// Type returns the discriminator value for this variant.
	Type() TriggerType

	// Parameters returns the user-supplied trigger parameters, which may be nil.
	Parameters() map[string]any

	isTrigger()
}

// TriggerBase holds the fields common to every trigger variant.
type TriggerBase struct {
	// User is the identity that initiated the execution
	User string `yaml:"user,omitempty" json:"user,omitempty"`

	// Params are the user-supplied trigger parameters
	Params map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`

	// Artifacts are artifact references attached to the trigger
	Artifacts []map[string]any `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
}

// Parameters returns the trigger's parameter mapping.
func (b *TriggerBase) Parameters() map[string]any { return b.Params }

func (b *TriggerBase) isTrigger() {}

// ManualTrigger is the generic variant for user-initiated executions and any
// origin that carries no structured metadata beyond parameters.
type ManualTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`
}

func (t *ManualTrigger) Type() TriggerType { return TriggerTypeManual }

// JenkinsTrigger is produced when a Jenkins job completion starts a pipeline.
type JenkinsTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`

	// Master is the Jenkins controller name
	Master string `yaml:"master,omitempty" json:"master,omitempty"`

	// Job is the Jenkins job name
	Job string `yaml:"job,omitempty" json:"job,omitempty"`

	// BuildNumber is the completed build's number
	BuildNumber int `yaml:"buildNumber,omitempty" json:"buildNumber,omitempty"`

	// PropertyFile names an archived property file to import, if any
	PropertyFile string `yaml:"propertyFile,omitempty" json:"propertyFile,omitempty"`

	// Build is the completed build's metadata
	Build *BuildInfo `yaml:"buildInfo,omitempty" json:"buildInfo,omitempty"`
}

func (t *JenkinsTrigger) Type() TriggerType { return TriggerTypeJenkins }

// BuildInfo returns the trigger's build metadata, which may be nil.
func (t *JenkinsTrigger) BuildInfo() *BuildInfo { return t.Build }

// ConcourseTrigger is produced when a Concourse job completion starts a pipeline.
type ConcourseTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`

	// Team is the Concourse team name
	Team string `yaml:"team,omitempty" json:"team,omitempty"`

	// Pipeline is the Concourse pipeline name
	Pipeline string `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`

	// Job is the Concourse job name
	Job string `yaml:"job,omitempty" json:"job,omitempty"`

	// Build is the completed build's metadata
	Build *BuildInfo `yaml:"buildInfo,omitempty" json:"buildInfo,omitempty"`
}

func (t *ConcourseTrigger) Type() TriggerType { return TriggerTypeConcourse }

// BuildInfo returns the trigger's build metadata, which may be nil.
func (t *ConcourseTrigger) BuildInfo() *BuildInfo { return t.Build }

// GitTrigger is produced by source-control push events.
type GitTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`

	// Source is the SCM host kind (e.g., "github", "bitbucket")
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Project is the owning project or organization
	Project string `yaml:"project,omitempty" json:"project,omitempty"`

	// Slug is the repository slug
	Slug string `yaml:"slug,omitempty" json:"slug,omitempty"`

	// Branch is the pushed branch
	Branch string `yaml:"branch,omitempty" json:"branch,omitempty"`

	// Hash is the pushed commit hash
	Hash string `yaml:"hash,omitempty" json:"hash,omitempty"`
}

func (t *GitTrigger) Type() TriggerType { return TriggerTypeGit }

// DockerTrigger is produced when a new image tag appears in a registry.
type DockerTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`

	// Account is the registry account name
	Account string `yaml:"account,omitempty" json:"account,omitempty"`

	// Repository is the image repository
	Repository string `yaml:"repository,omitempty" json:"repository,omitempty"`

	// Tag is the new image tag
	Tag string `yaml:"tag,omitempty" json:"tag,omitempty"`
}

func (t *DockerTrigger) Type() TriggerType { return TriggerTypeDocker }

// WebhookTrigger is produced by inbound webhook deliveries.
type WebhookTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`

	// Source identifies the webhook sender
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// Payload is the raw delivery body
	Payload map[string]any `yaml:"payload,omitempty" json:"payload,omitempty"`
}

func (t *WebhookTrigger) Type() TriggerType { return TriggerTypeWebhook }

// CronTrigger is produced by scheduled execution.
type CronTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`

	// CronExpression is the schedule that fired
	CronExpression string `yaml:"cronExpression,omitempty" json:"cronExpression,omitempty"`
}

func (t *CronTrigger) Type() TriggerType { return TriggerTypeCron }

// PipelineTrigger is produced when one pipeline's completion starts another.
type PipelineTrigger struct {
	TriggerBase `yaml:",inline" json:",inline"`

	// ParentExecutionID identifies the upstream execution
	ParentExecutionID string `yaml:"parentExecutionId,omitempty" json:"parentExecutionId,omitempty"`

	// ParentPipelineName is the upstream pipeline's display name
	ParentPipelineName string `yaml:"parentPipelineName,omitempty" json:"parentPipelineName,omitempty"`
}

func (t *PipelineTrigger) Type() TriggerType { return TriggerTypePipeline }

// DecodeTrigger coerces an untyped value into a Trigger variant.
//
// An already-decoded Trigger passes through unchanged. A mapping is decoded
// structurally using its "type" discriminator; a mapping without a
// discriminator decodes as a ManualTrigger. nil yields nil. An unrecognized
// discriminator, a non-mapping value, or a structurally invalid mapping
// yields a DeserializationError.
func DecodeTrigger(v any) (Trigger, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Trigger:
		return t, nil
	case map[string]any:
		return decodeTriggerMap(t)
	default:
		return nil, &errors.DeserializationError{
			Type:    "trigger",
			Message: fmt.Sprintf("trigger must be a mapping, got %T", v),
		}
	}
}

func decodeTriggerMap(m map[string]any) (Trigger, error) {
	discriminator := TriggerTypeManual
	if raw, ok := m["type"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, &errors.DeserializationError{
				Type:    "trigger",
				Message: fmt.Sprintf("discriminator must be a string, got %T", raw),
			}
		}
		if s != "" {
			discriminator = TriggerType(s)
		}
	}

	var target Trigger
	switch discriminator {
	case TriggerTypeManual:
		target = &ManualTrigger{}
	case TriggerTypeJenkins:
		target = &JenkinsTrigger{}
	case TriggerTypeConcourse:
		target = &ConcourseTrigger{}
	case TriggerTypeGit:
		target = &GitTrigger{}
	case TriggerTypeDocker:
		target = &DockerTrigger{}
	case TriggerTypeWebhook:
		target = &WebhookTrigger{}
	case TriggerTypeCron:
		target = &CronTrigger{}
	case TriggerTypePipeline:
		target = &PipelineTrigger{}
	default:
		return nil, &errors.DeserializationError{
			Type:    "trigger",
			Value:   string(discriminator),
			Message: "unrecognized trigger variant",
		}
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, &errors.DeserializationError{Type: "trigger", Message: "cannot marshal trigger payload", Cause: err}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, &errors.DeserializationError{
			Type:    "trigger",
			Value:   string(discriminator),
			Message: "malformed trigger payload",
			Cause:   err,
		}
	}
	return target, nil
}

// FlattenTrigger projects a trigger variant into a plain mapping suitable as
// evaluation input. The discriminator is preserved under "type".
func FlattenTrigger(t Trigger) (map[string]any, error) {
	if t == nil {
		return nil, nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, &errors.DeserializationError{Type: "trigger", Message: "cannot flatten trigger", Cause: err}
	}
	flat := make(map[string]any)
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, &errors.DeserializationError{Type: "trigger", Message: "cannot flatten trigger", Cause: err}
	}
	flat["type"] = string(t.Type())
	return flat, nil
}
