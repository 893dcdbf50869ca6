package expression

import (
	"log/slog"

	"github.com/tombee/stagehand/internal/metrics"
	"github.com/tombee/stagehand/pkg/pipeline"
)

// Options control one processing call.
type Options struct {
	// AllowUnknownKeys tolerates placeholders that reference undefined
	// context fields: they pass through as literal text without counting
	// as failures.
	AllowUnknownKeys bool

	// ExecutionScoped marks the context as built from a pipeline execution.
	// Processing of execution-scoped contexts emits an informational
	// diagnostic log when any placeholder was evaluated.
	ExecutionScoped bool

	// Summary, when non-nil, accumulates diagnostics across calls.
	// When nil a fresh Summary is used for the call.
	Summary *Summary
}

// StageContext pairs a stage with its evaluation context. It is produced
// once per stage per evaluation pass and must not be mutated afterwards.
type StageContext struct {
	// Stage is the stage whose configuration will be evaluated
	Stage *pipeline.Stage

	// Context is the evaluation context for the stage
	Context map[string]any

	// ExecutionScoped reports whether execution-level fields were injected
	ExecutionScoped bool
}

// SummaryKey is the document key under which evaluation failures are
// attached to a processed document.
const SummaryKey = "expressionEvaluationSummary"

// Processor is the top-level entry point for stage configuration
// evaluation. A single Processor is typically shared process-wide across
// concurrently evaluated stages; each call must own its context and
// summary.
type Processor struct {
	evaluator *Evaluator
	logger    *slog.Logger
}

// NewProcessor creates a processor logging through the given logger.
// A nil logger falls back to slog.Default.
func NewProcessor(logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		evaluator: NewEvaluator(),
		logger:    logger,
	}
}

// Process evaluates every placeholder in source against the augmented
// context and returns the evaluated document.
//
// A nil source returns nil; an empty source returns a newly allocated empty
// mapping. Per-field evaluation failures never propagate: they are recorded
// in the summary, and when any exist the serialized failure detail is
// attached to the result under SummaryKey. Only a malformed or
// unrecognized trigger entry returns an error.
func (p *Processor) Process(source, context map[string]any, opts Options) (map[string]any, error) {
	if source == nil {
		return nil, nil
	}
	if len(source) == 0 {
		return make(map[string]any), nil
	}

	summary := opts.Summary
	if summary == nil {
		summary = NewSummary()
	}
	evaluatedBefore := summary.TotalEvaluated()
	failedBefore := summary.FailureCount()

	augmented, err := AugmentContext(context)
	if err != nil {
		return nil, err
	}

	result := p.evaluator.Evaluate(source, augmented, summary, opts.AllowUnknownKeys)

	metrics.DocumentsProcessed.Inc()
	metrics.PlaceholdersEvaluated.Add(float64(summary.TotalEvaluated() - evaluatedBefore))
	metrics.EvaluationFailures.Add(float64(summary.FailureCount() - failedBefore))

	if summary.TotalEvaluated() > 0 && opts.ExecutionScoped {
		p.logger.Info("evaluated stage expressions",
			slog.Int("total_evaluated", summary.TotalEvaluated()),
			slog.Int("failure_count", summary.FailureCount()),
		)
	}

	if summary.FailureCount() > 0 {
		result[SummaryKey] = summary.Failures()
	}

	return result, nil
}

// BuildExecutionContext produces the evaluation context for one stage.
//
// The stage's own context is copied into a fresh mapping. When the owning
// execution is a full pipeline, the execution's trigger is flattened into a
// plain mapping under "trigger" and the execution itself is retained under
// "execution" for evaluator functions needing execution-wide lookups.
// Only trigger-flattening failures propagate.
func (p *Processor) BuildExecutionContext(stage *pipeline.Stage) (*StageContext, error) {
	augmented := make(map[string]any, len(stage.Context)+2)
	for k, v := range stage.Context {
		augmented[k] = v
	}

	executionScoped := false
	if stage.Execution != nil && stage.Execution.Type == pipeline.ExecutionTypePipeline {
		flat, err := pipeline.FlattenTrigger(stage.Execution.Trigger)
		if err != nil {
			return nil, err
		}
		augmented["trigger"] = flat
		augmented["execution"] = stage.Execution
		executionScoped = true
	}

	return &StageContext{
		Stage:           stage,
		Context:         augmented,
		ExecutionScoped: executionScoped,
	}, nil
}

// AugmentContext derives evaluation-time fields from trigger and build
// metadata. It is a pure transformation: the input mapping is left
// untouched and a new mapping is returned. Augmenting an already-augmented
// context is a no-op on the derived fields.
//
// Derivation rules:
//   - parameters: a trigger carrying non-empty parameters overwrites the
//     entry; otherwise an absent entry defaults to an empty mapping and an
//     explicitly supplied one is preserved.
//   - scmInfo: the candidate list comes from the buildInfo entry when
//     present, else from a Jenkins or Concourse trigger's build metadata.
//     With two or more records the first whose branch is neither "master"
//     nor "develop" wins, falling back to the first record; a single record
//     is unwrapped; a nil or empty candidate collapses to nil. The entry
//     always ends up holding one record or nil, never a list.
//
// A malformed or unrecognized trigger entry fails with a
// DeserializationError; every other path is total.
func AugmentContext(ctx map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(ctx)+2)
	for k, v := range ctx {
		out[k] = v
	}

	trigger, err := pipeline.DecodeTrigger(out["trigger"])
	if err != nil {
		return nil, err
	}

	if trigger != nil && len(trigger.Parameters()) > 0 {
		out["parameters"] = trigger.Parameters()
	} else if _, ok := out["parameters"]; !ok {
		out["parameters"] = map[string]any{}
	}

	out["scmInfo"] = disambiguateSCM(deriveSCMCandidate(out, trigger))

	return out, nil
}

// deriveSCMCandidate picks the source-control value to disambiguate.
// Precedence: buildInfo entry, existing scmInfo entry, Jenkins trigger
// build metadata, Concourse trigger build metadata. Every path is total:
// build metadata that cannot be decoded is treated as absent.
func deriveSCMCandidate(ctx map[string]any, trigger pipeline.Trigger) any {
	candidate := ctx["scmInfo"]

	if raw, ok := ctx["buildInfo"]; ok && raw != nil {
		if info, err := pipeline.DecodeBuildInfo(raw); err == nil {
			candidate = info.SCM
		}
	}

	if nilCandidate(candidate) {
		if jenkins, ok := trigger.(*pipeline.JenkinsTrigger); ok {
			candidate = triggerSCM(jenkins.BuildInfo())
		}
	}
	if nilCandidate(candidate) {
		if concourse, ok := trigger.(*pipeline.ConcourseTrigger); ok {
			candidate = triggerSCM(concourse.BuildInfo())
		}
	}

	return candidate
}

// nilCandidate distinguishes "no source-control data yet" from an empty
// list: an empty list is a derived result and blocks later rules.
func nilCandidate(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case []pipeline.SourceControl:
		return s == nil
	case []any:
		return s == nil
	default:
		return false
	}
}

// triggerSCM extracts the source-control list from trigger build metadata,
// defaulting to an empty list when the metadata is absent.
func triggerSCM(info *pipeline.BuildInfo) []pipeline.SourceControl {
	if info == nil {
		return []pipeline.SourceControl{}
	}
	return info.SCM
}

// disambiguateSCM collapses a source-control candidate to a single record
// or nil. A candidate that is already a single record passes through, which
// makes repeated augmentation a no-op.
func disambiguateSCM(candidate any) any {
	var records []pipeline.SourceControl
	switch v := candidate.(type) {
	case nil:
		return nil
	case *pipeline.SourceControl:
		return v
	case pipeline.SourceControl:
		return &v
	case []pipeline.SourceControl:
		records = v
	case []any:
		decoded, err := pipeline.DecodeSourceControlList(v)
		if err != nil {
			return nil
		}
		records = decoded
	default:
		return nil
	}

	switch {
	case len(records) == 0:
		return nil
	case len(records) == 1:
		return &records[0]
	default:
		for i := range records {
			if records[i].Branch != "master" && records[i].Branch != "develop" {
				return &records[i]
			}
		}
		return &records[0]
	}
}
