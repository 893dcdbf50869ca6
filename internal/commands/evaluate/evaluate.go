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

// Package evaluate implements the stagehand evaluate command.
package evaluate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tombee/stagehand/internal/config"
	"github.com/tombee/stagehand/internal/log"
	"github.com/tombee/stagehand/pkg/errors"
	"github.com/tombee/stagehand/pkg/pipeline/expression"
)

type evaluateOptions struct {
	sourcePath  string
	contextPath string
	strict      bool
	showSummary bool
}

// NewEvaluateCommand creates the evaluate command.
//
// It reads a stage configuration document and a context document, runs the
// expression processor, and prints the evaluated document as YAML. Per-field
// failures are reported on stderr without failing the command; only a
// malformed trigger or unreadable input exits non-zero.
func NewEvaluateCommand() *cobra.Command {
	opts := &evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate expression placeholders in a stage configuration",
		Long: `Evaluate every ${...} placeholder in a stage configuration document
against a context document and print the evaluated result.

Example:

  stagehand evaluate --source stage.yaml --context context.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, opts)
		},
	}

	bindFlags(cmd.Flags(), opts)
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func bindFlags(fs *pflag.FlagSet, opts *evaluateOptions) {
	fs.StringVarP(&opts.sourcePath, "source", "s", "", "stage configuration document (YAML)")
	fs.StringVarP(&opts.contextPath, "context", "c", "", "evaluation context document (YAML)")
	fs.BoolVar(&opts.strict, "strict", false, "record unknown context references as failures")
	fs.BoolVar(&opts.showSummary, "summary", false, "print the evaluation summary to stderr")
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logCfg := log.FromEnv()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = log.Format(cfg.Log.Format)
	}
	logger := log.WithComponent(log.New(logCfg), "evaluate")

	source, err := readDocument(opts.sourcePath)
	if err != nil {
		return err
	}

	var context map[string]any
	if opts.contextPath != "" {
		context, err = readDocument(opts.contextPath)
		if err != nil {
			return err
		}
	} else {
		context = make(map[string]any)
	}

	allowUnknown := cfg.Evaluation.AllowUnknownKeys
	if opts.strict {
		allowUnknown = false
	}

	summary := expression.NewSummary()
	processor := expression.NewProcessor(logger)
	result, err := processor.Process(source, context, expression.Options{
		AllowUnknownKeys: allowUnknown,
		Summary:          summary,
	})
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "rendering evaluated document")
	}
	cmd.Print(string(out))

	if summary.FailureCount() > 0 {
		logger.Warn("evaluation completed with failures",
			"total_evaluated", summary.TotalEvaluated(),
			"failure_count", summary.FailureCount(),
		)
	}
	if opts.showSummary {
		printSummary(summary)
	}

	return nil
}

func readDocument(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	doc := make(map[string]any)
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &errors.ValidationError{
			Field:      path,
			Message:    err.Error(),
			Suggestion: "the document must be a YAML mapping",
		}
	}
	return doc, nil
}

func printSummary(summary *expression.Summary) {
	fmt.Fprintf(os.Stderr, "evaluated %d placeholder(s), %d failure(s)\n",
		summary.TotalEvaluated(), summary.FailureCount())
	for path, failures := range summary.Failures() {
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "  %s: %s (%s)\n", path, f.Description, f.Level)
		}
	}
}
