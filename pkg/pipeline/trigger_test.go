package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/stagehand/pkg/errors"
)

func TestDecodeTrigger_Variants(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		verify  func(t *testing.T, trigger Trigger)
	}{
		{
			name: "jenkins",
			payload: map[string]any{
				"type":        "jenkins",
				"master":      "ci",
				"job":         "build-api",
				"buildNumber": 42,
				"parameters":  map[string]any{"env": "prod"},
				"buildInfo": map[string]any{
					"name":   "build-api",
					"number": 42,
					"scm": []any{
						map[string]any{"branch": "main", "sha1": "abc123"},
					},
				},
			},
			verify: func(t *testing.T, trigger Trigger) {
				jenkins, ok := trigger.(*JenkinsTrigger)
				require.True(t, ok)
				assert.Equal(t, TriggerTypeJenkins, jenkins.Type())
				assert.Equal(t, "ci", jenkins.Master)
				assert.Equal(t, 42, jenkins.BuildNumber)
				assert.Equal(t, map[string]any{"env": "prod"}, jenkins.Parameters())
				require.NotNil(t, jenkins.BuildInfo())
				require.Len(t, jenkins.BuildInfo().SCM, 1)
				assert.Equal(t, "main", jenkins.BuildInfo().SCM[0].Branch)
			},
		},
		{
			name: "concourse",
			payload: map[string]any{
				"type":     "concourse",
				"team":     "main",
				"pipeline": "api",
				"job":      "test",
			},
			verify: func(t *testing.T, trigger Trigger) {
				concourse, ok := trigger.(*ConcourseTrigger)
				require.True(t, ok)
				assert.Equal(t, "main", concourse.Team)
				assert.Nil(t, concourse.BuildInfo())
			},
		},
		{
			name: "git",
			payload: map[string]any{
				"type":   "git",
				"source": "github",
				"slug":   "stagehand",
				"branch": "feature-x",
				"hash":   "deadbeef",
			},
			verify: func(t *testing.T, trigger Trigger) {
				git, ok := trigger.(*GitTrigger)
				require.True(t, ok)
				assert.Equal(t, "feature-x", git.Branch)
			},
		},
		{
			name: "docker",
			payload: map[string]any{
				"type":       "docker",
				"account":    "dockerhub",
				"repository": "org/api",
				"tag":        "1.2.3",
			},
			verify: func(t *testing.T, trigger Trigger) {
				docker, ok := trigger.(*DockerTrigger)
				require.True(t, ok)
				assert.Equal(t, "1.2.3", docker.Tag)
			},
		},
		{
			name: "webhook",
			payload: map[string]any{
				"type":    "webhook",
				"source":  "github",
				"payload": map[string]any{"action": "push"},
			},
			verify: func(t *testing.T, trigger Trigger) {
				webhook, ok := trigger.(*WebhookTrigger)
				require.True(t, ok)
				assert.Equal(t, "push", webhook.Payload["action"])
			},
		},
		{
			name: "cron",
			payload: map[string]any{
				"type":           "cron",
				"cronExpression": "0 4 * * *",
			},
			verify: func(t *testing.T, trigger Trigger) {
				cron, ok := trigger.(*CronTrigger)
				require.True(t, ok)
				assert.Equal(t, "0 4 * * *", cron.CronExpression)
			},
		},
		{
			name: "pipeline",
			payload: map[string]any{
				"type":              "pipeline",
				"parentExecutionId": "abc-123",
			},
			verify: func(t *testing.T, trigger Trigger) {
				parent, ok := trigger.(*PipelineTrigger)
				require.True(t, ok)
				assert.Equal(t, "abc-123", parent.ParentExecutionID)
			},
		},
		{
			name: "missing discriminator decodes as manual",
			payload: map[string]any{
				"user":       "anonymous",
				"parameters": map[string]any{"a": "1"},
			},
			verify: func(t *testing.T, trigger Trigger) {
				manual, ok := trigger.(*ManualTrigger)
				require.True(t, ok)
				assert.Equal(t, "anonymous", manual.User)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger, err := DecodeTrigger(tt.payload)
			require.NoError(t, err)
			tt.verify(t, trigger)
		})
	}
}

func TestDecodeTrigger_Nil(t *testing.T) {
	trigger, err := DecodeTrigger(nil)
	require.NoError(t, err)
	assert.Nil(t, trigger)
}

func TestDecodeTrigger_PassthroughForDecodedVariant(t *testing.T) {
	original := &JenkinsTrigger{Master: "ci"}

	trigger, err := DecodeTrigger(original)
	require.NoError(t, err)
	assert.Same(t, original, trigger)
}

func TestDecodeTrigger_UnrecognizedVariant(t *testing.T) {
	_, err := DecodeTrigger(map[string]any{"type": "teamcity"})
	require.Error(t, err)

	var deserErr *errors.DeserializationError
	require.ErrorAs(t, err, &deserErr)
	assert.Equal(t, "trigger", deserErr.Type)
	assert.Equal(t, "teamcity", deserErr.Value)
}

func TestDecodeTrigger_RejectsNonMapping(t *testing.T) {
	_, err := DecodeTrigger("jenkins")
	require.Error(t, err)

	var deserErr *errors.DeserializationError
	require.ErrorAs(t, err, &deserErr)
}

func TestDecodeTrigger_RejectsNonStringDiscriminator(t *testing.T) {
	_, err := DecodeTrigger(map[string]any{"type": 7})
	require.Error(t, err)
}

func TestFlattenTrigger(t *testing.T) {
	trigger := &JenkinsTrigger{
		TriggerBase: TriggerBase{
			User:   "jane",
			Params: map[string]any{"env": "prod"},
		},
		Master:      "ci",
		Job:         "build-api",
		BuildNumber: 42,
	}

	flat, err := FlattenTrigger(trigger)
	require.NoError(t, err)

	assert.Equal(t, "jenkins", flat["type"])
	assert.Equal(t, "jane", flat["user"])
	assert.Equal(t, "build-api", flat["job"])
	assert.Equal(t, map[string]any{"env": "prod"}, flat["parameters"])
}

func TestFlattenTrigger_Nil(t *testing.T) {
	flat, err := FlattenTrigger(nil)
	require.NoError(t, err)
	assert.Nil(t, flat)
}

func TestFlattenTrigger_RoundTripsThroughDecode(t *testing.T) {
	original := &ConcourseTrigger{
		Team:     "main",
		Pipeline: "api",
		Build:    &BuildInfo{Number: 7, SCM: []SourceControl{{Branch: "main"}}},
	}

	flat, err := FlattenTrigger(original)
	require.NoError(t, err)

	decoded, err := DecodeTrigger(flat)
	require.NoError(t, err)

	concourse, ok := decoded.(*ConcourseTrigger)
	require.True(t, ok)
	assert.Equal(t, "main", concourse.Team)
	require.NotNil(t, concourse.Build)
	assert.Equal(t, 7, concourse.Build.Number)
}
