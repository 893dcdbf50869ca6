package expression

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/itchyny/gojq"
)

// hasFunc checks if a collection contains an element.
// Usage: has(parameters.regions, "us-east-1")
//
// Supports slices (deep equality), maps (key presence), and strings
// (substring). Returns false for nil collections.
func hasFunc(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("has requires exactly 2 arguments, got %d", len(args))
	}

	collection := args[0]
	target := args[1]

	if collection == nil {
		return false, nil
	}

	v := reflect.ValueOf(collection)

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if reflect.DeepEqual(v.Index(i).Interface(), target) {
				return true, nil
			}
		}
		return false, nil

	case reflect.Map:
		return v.MapIndex(reflect.ValueOf(target)).IsValid(), nil

	case reflect.String:
		str, ok := collection.(string)
		if !ok {
			return false, nil
		}
		substr, ok := target.(string)
		if !ok {
			return false, nil
		}
		return substr != "" && containsString(str, substr), nil

	default:
		return false, nil
	}
}

func containsString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// lengthFunc returns the length of a collection or string.
// Usage: length(trigger.artifacts) > 0
func lengthFunc(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("length requires exactly 1 argument, got %d", len(args))
	}

	if args[0] == nil {
		return 0, nil
	}

	v := reflect.ValueOf(args[0])

	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return v.Len(), nil
	default:
		return nil, fmt.Errorf("length: unsupported type %T", args[0])
	}
}

// toJSONFunc renders a value as compact JSON text.
// Usage: toJson(trigger.payload)
func toJSONFunc(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("toJson requires exactly 1 argument, got %d", len(args))
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return nil, fmt.Errorf("toJson: %w", err)
	}
	return string(raw), nil
}

// parseJSONFunc parses JSON text into a value.
// Usage: parseJson(stage.outputs.raw).items
func parseJSONFunc(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("parseJson requires exactly 1 argument, got %d", len(args))
	}
	text, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("parseJson: argument must be a string, got %T", args[0])
	}
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("parseJson: %w", err)
	}
	return out, nil
}

// jqFunc runs a jq query against a value.
// Usage: jq(trigger.payload, ".commits[0].id")
//
// The input is normalized through JSON so typed domain values (build
// metadata, source-control records) can be queried like plain documents.
// A query producing one value returns it unwrapped; multiple values return
// a slice.
func jqFunc(args ...any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("jq requires exactly 2 arguments, got %d", len(args))
	}
	queryText, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("jq: query must be a string, got %T", args[1])
	}

	query, err := gojq.Parse(queryText)
	if err != nil {
		return nil, fmt.Errorf("jq: parse error: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq: compile error: %w", err)
	}

	data, err := normalizeForJQ(args[0])
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq: %w", err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// normalizeForJQ converts a value into the plain map/slice/scalar shapes
// gojq accepts.
func normalizeForJQ(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, float64, map[string]any, []any:
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jq: cannot normalize input: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("jq: cannot normalize input: %w", err)
	}
	return out, nil
}

// helperFunctions returns the function environment merged into every
// evaluation context.
// Note: "contains" is a reserved string operator in expr, so membership is
// exposed as has/includes.
func helperFunctions() map[string]any {
	return map[string]any{
		"has":       hasFunc,
		"includes":  hasFunc,
		"length":    lengthFunc,
		"toJson":    toJSONFunc,
		"parseJson": parseJSONFunc,
		"jq":        jqFunc,
	}
}
