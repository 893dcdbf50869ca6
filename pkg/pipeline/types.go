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

// Package pipeline defines the execution-side domain model consumed by the
// expression front end: executions, stages, triggers, and build metadata.
//
// The model is intentionally shallow. Stagehand prepares and evaluates
// stage configuration; it does not execute stages or persist executions.
package pipeline

import (
	"github.com/google/uuid"
)

// ExecutionType identifies how an execution was created.
type ExecutionType string

const (
	// ExecutionTypePipeline is a full pipeline execution with a trigger.
	ExecutionTypePipeline ExecutionType = "pipeline"

	// ExecutionTypeOrchestration is an ad-hoc task execution without
	// pipeline-level trigger context.
	ExecutionTypeOrchestration ExecutionType = "orchestration"
)

// Execution represents one run of a pipeline or orchestration.
// It is an opaque reference from the expression layer's point of view:
// evaluator functions may traverse it to reach other stages' outputs.
type Execution struct {
	// ID uniquely identifies this execution
	ID string `yaml:"id" json:"id"`

	// Type distinguishes pipeline runs from ad-hoc orchestrations
	Type ExecutionType `yaml:"type" json:"type"`

	// Application is the owning application name
	Application string `yaml:"application,omitempty" json:"application,omitempty"`

	// Name is the pipeline name (empty for orchestrations)
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Trigger describes what initiated this execution
	Trigger Trigger `yaml:"-" json:"-"`

	// Stages are the stages belonging to this execution, in declaration order
	Stages []*Stage `yaml:"stages,omitempty" json:"stages,omitempty"`
}

// NewExecution creates an execution with a generated ID.
func NewExecution(execType ExecutionType, application string) *Execution {
	return &Execution{
		ID:          uuid.NewString(),
		Type:        execType,
		Application: application,
	}
}

// StageByID returns the stage with the given ID, or nil if none exists.
func (e *Execution) StageByID(id string) *Stage {
	for _, s := range e.Stages {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Stage is a single unit of work within an execution. Its Context holds the
// stage configuration document that the expression layer evaluates.
type Stage struct {
	// ID uniquely identifies this stage within its execution
	ID string `yaml:"id" json:"id"`

	// Type is the stage kind (e.g., "deploy", "bake", "manualJudgment")
	Type string `yaml:"type" json:"type"`

	// Name is the display name of the stage
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Execution is the owning execution
	Execution *Execution `yaml:"-" json:"-"`

	// Context is the stage's configuration and accumulated outputs
	Context map[string]any `yaml:"context,omitempty" json:"context,omitempty"`
}

// NewStage creates a stage with a generated ID, attached to the given execution.
func NewStage(execution *Execution, stageType, name string) *Stage {
	s := &Stage{
		ID:        uuid.NewString(),
		Type:      stageType,
		Name:      name,
		Execution: execution,
		Context:   make(map[string]any),
	}
	if execution != nil {
		execution.Stages = append(execution.Stages, s)
	}
	return s
}
