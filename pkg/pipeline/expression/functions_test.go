package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasFunc(t *testing.T) {
	tests := []struct {
		name       string
		collection any
		target     any
		want       any
	}{
		{name: "slice contains", collection: []any{"a", "b"}, target: "b", want: true},
		{name: "slice missing", collection: []any{"a", "b"}, target: "c", want: false},
		{name: "map key present", collection: map[string]any{"k": 1}, target: "k", want: true},
		{name: "map key absent", collection: map[string]any{"k": 1}, target: "x", want: false},
		{name: "string substring", collection: "feature-x", target: "feature", want: true},
		{name: "nil collection", collection: nil, target: "a", want: false},
		{name: "scalar collection", collection: 42, target: 4, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := hasFunc(tt.collection, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasFunc_ArityError(t *testing.T) {
	_, err := hasFunc([]any{"a"})
	require.Error(t, err)
}

func TestLengthFunc(t *testing.T) {
	tests := []struct {
		name    string
		arg     any
		want    any
		wantErr bool
	}{
		{name: "slice", arg: []any{1, 2, 3}, want: 3},
		{name: "map", arg: map[string]any{"a": 1}, want: 1},
		{name: "string", arg: "abcd", want: 4},
		{name: "nil", arg: nil, want: 0},
		{name: "unsupported", arg: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lengthFunc(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONFuncs(t *testing.T) {
	rendered, err := toJSONFunc(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, rendered.(string))

	parsed, err := parseJSONFunc(`{"a": [1, 2]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{float64(1), float64(2)}}, parsed)

	_, err = parseJSONFunc("not json")
	require.Error(t, err)

	_, err = parseJSONFunc(42)
	require.Error(t, err)
}

func TestJQFunc(t *testing.T) {
	payload := map[string]any{
		"commits": []any{
			map[string]any{"id": "abc", "message": "first"},
			map[string]any{"id": "def", "message": "second"},
		},
	}

	t.Run("single result unwrapped", func(t *testing.T) {
		got, err := jqFunc(payload, ".commits[0].id")
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("multiple results returned as slice", func(t *testing.T) {
		got, err := jqFunc(payload, ".commits[].id")
		require.NoError(t, err)
		assert.Equal(t, []any{"abc", "def"}, got)
	})

	t.Run("no results yields nil", func(t *testing.T) {
		got, err := jqFunc(payload, ".commits[] | select(.id == \"zzz\")")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := jqFunc(payload, ".[")
		require.Error(t, err)
	})

	t.Run("typed input normalized", func(t *testing.T) {
		type commitRef struct {
			ID string `json:"id"`
		}
		got, err := jqFunc(commitRef{ID: "abc"}, ".id")
		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})
}

func TestJQFunc_InEvaluator(t *testing.T) {
	e := NewEvaluator()
	ctx := map[string]any{
		"trigger": map[string]any{
			"payload": map[string]any{
				"commits": []any{
					map[string]any{"id": "abc"},
				},
			},
		},
	}
	summary := NewSummary()

	result := e.Evaluate(map[string]any{
		"commit": `${jq(trigger.payload, ".commits[0].id")}`,
	}, ctx, summary, true)

	require.Equal(t, 0, summary.FailureCount())
	assert.Equal(t, "abc", result["commit"])
}
