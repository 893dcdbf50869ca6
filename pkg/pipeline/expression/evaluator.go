package expression

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/tombee/stagehand/pkg/pipeline"
)

// Evaluator substitutes ${...} placeholders in stage configuration documents.
// It caches compiled placeholder programs for repeated evaluations and is
// safe for concurrent use across stages, provided each call owns its own
// context and summary.
//
// Evaluation never fails a document: every per-field problem is recorded in
// the Summary and the field keeps its literal text.
type Evaluator struct {
	cache map[string]*vm.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new placeholder evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		cache: make(map[string]*vm.Program),
	}
}

// Evaluate walks source and substitutes each detected placeholder with its
// resolved value from ctx, recording one summary entry per attempted
// substitution. The returned document is structurally isomorphic to source.
//
// When allowUnknownKeys is true, a placeholder referencing an undefined
// context field passes through as literal text without counting as a
// failure; when false it is recorded as a failure and the literal text is
// retained at that position.
func (e *Evaluator) Evaluate(source, ctx map[string]any, summary *Summary, allowUnknownKeys bool) map[string]any {
	if source == nil {
		return nil
	}
	if summary == nil {
		summary = NewSummary()
	}

	env := buildEnv(ctx)
	result := make(map[string]any, len(source))
	for k, v := range source {
		result[k] = e.evaluateValue(pathJoin("", k), v, env, summary, allowUnknownKeys)
	}
	return result
}

// evaluateValue recursively substitutes placeholders in one document value.
func (e *Evaluator) evaluateValue(path string, v any, env map[string]any, summary *Summary, allowUnknownKeys bool) any {
	switch val := v.(type) {
	case string:
		if !ContainsExpression(val) {
			return val
		}
		evaluated, _ := e.evaluateString(path, val, env, summary, allowUnknownKeys)
		return evaluated
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = e.evaluateValue(pathJoin(path, k), inner, env, summary, allowUnknownKeys)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = e.evaluateValue(fmt.Sprintf("%s[%d]", path, i), inner, env, summary, allowUnknownKeys)
		}
		return out
	default:
		return v
	}
}

// evaluateString substitutes every placeholder in s. A string that is
// exactly one placeholder yields the typed result; embedded placeholders
// are rendered into the surrounding text. The second return reports whether
// every placeholder in the string resolved.
func (e *Evaluator) evaluateString(path, s string, env map[string]any, summary *Summary, allowUnknownKeys bool) (any, bool) {
	var out []byte
	resolved := true
	offset := 0

	for {
		start, end, ok := placeholderSpan(s, offset)
		if !ok {
			break
		}

		placeholder := s[start:end]
		exprText := s[start+len(delimiterStart) : end-1]
		summary.IncrementEvaluated()

		value, err := e.resolve(exprText, env)
		switch {
		case err != nil:
			summary.AppendFailure(path, LevelError, placeholder, err.Error())
			resolved = false
			value = placeholder
		case value == nil:
			// Unresolved reference: the literal stays in place either way,
			// it only counts as a failure in strict mode.
			if !allowUnknownKeys {
				summary.AppendFailure(path, LevelError, placeholder,
					fmt.Sprintf("unknown context field in %s", placeholder))
				resolved = false
			}
			value = placeholder
		}

		// Whole-string placeholder keeps the typed result.
		if start == 0 && end == len(s) && offset == 0 {
			return value, resolved
		}

		out = append(out, s[offset:start]...)
		out = append(out, fmt.Sprintf("%v", value)...)
		offset = end
	}

	if offset == 0 {
		return s, resolved
	}
	out = append(out, s[offset:]...)
	return string(out), resolved
}

// resolve evaluates one placeholder body. Plain dotted references are
// resolved by direct context navigation so an unknown field surfaces as an
// unresolved reference (nil) rather than an engine error; anything else is
// handed to the expression engine.
func (e *Evaluator) resolve(exprText string, env map[string]any) (any, error) {
	if isDottedPath(exprText) {
		if value, ok := resolvePath(exprText, env); ok {
			return value, nil
		}
		// Navigation can stop at a typed value (the opaque execution
		// reference) that the engine still knows how to traverse.
		value, err := e.run(exprText, env)
		if err != nil {
			// An engine error on a pure reference is always a resolution
			// problem, not an expression failure.
			return nil, nil
		}
		return value, nil
	}
	return e.run(exprText, env)
}

// run compiles (or fetches from cache) and executes one placeholder body.
func (e *Evaluator) run(exprText string, env map[string]any) (any, error) {
	program, err := e.compile(exprText)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %s", err.Error())
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("expression evaluation failed: %s", err.Error())
	}
	return result, nil
}

// compile compiles a placeholder body and caches the result.
func (e *Evaluator) compile(exprText string) (*vm.Program, error) {
	e.mu.RLock()
	if prog, ok := e.cache[exprText]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	// Undefined variables are permitted at compile time; unresolved
	// references surface as nil results so the caller can apply the
	// allowUnknownKeys policy instead of aborting.
	prog, err := expr.Compile(exprText,
		expr.Env(helperFunctions()),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[exprText] = prog
	e.mu.Unlock()

	return prog, nil
}

// ClearCache clears the compiled-program cache.
// This is mainly useful for testing.
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	e.cache = make(map[string]*vm.Program)
	e.mu.Unlock()
}

// CacheSize returns the number of cached programs.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// buildEnv prepares the runtime environment for placeholder execution:
// the context entries plus the helper function set. Typed domain values are
// flattened to plain mappings so placeholders address them by their wire
// names (scmInfo.branch, trigger.buildInfo.number). The execution reference
// stays opaque for functions that need execution-wide lookups.
func buildEnv(ctx map[string]any) map[string]any {
	env := make(map[string]any, len(ctx)+6)
	for k, v := range ctx {
		if k == "execution" {
			env[k] = v
			continue
		}
		env[k] = flattenDomainValue(v)
	}
	for name, fn := range helperFunctions() {
		env[name] = fn
	}
	return env
}

// flattenDomainValue projects typed domain values into plain maps; plain
// documents pass through untouched.
func flattenDomainValue(v any) any {
	switch val := v.(type) {
	case nil, bool, string, int, int64, float64, map[string]any, []any:
		return v
	case *pipeline.SourceControl:
		if val == nil {
			return nil
		}
		return toPlain(val)
	case pipeline.SourceControl:
		return toPlain(val)
	case *pipeline.BuildInfo:
		if val == nil {
			return nil
		}
		return toPlain(val)
	case pipeline.BuildInfo:
		return toPlain(val)
	case pipeline.Trigger:
		flat, err := pipeline.FlattenTrigger(val)
		if err != nil {
			return v
		}
		return flat
	default:
		return v
	}
}

func toPlain(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

func pathJoin(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
