package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagepilot/internal/application/port/input"
	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"

	"github.com/google/uuid"
)

var _ input.ScriptRunner = (*Runner)(nil)

const maxObservationLen = 20000

type Runner struct {
	browser  output.BrowserPort
	tools    output.ToolRegistry
	reporter output.ReporterPort
	logger   output.LoggerPort
}

func New(
	browser output.BrowserPort,
	tools output.ToolRegistry,
	reporter output.ReporterPort,
	logger output.LoggerPort,
) *Runner {
	return &Runner{
		browser:  browser,
		tools:    tools,
		reporter: reporter,
		logger:   logger,
	}
}

// Run executes the steps of s in order against a fresh browser session. A
// failing step stops the run unless it allows continuing; the remaining
// steps are reported as skipped. The browser is always cleaned up.
func (r *Runner) Run(ctx context.Context, s *entity.Script) (*entity.RunResult, error) {
	if err := r.checkTools(s); err != nil {
		return nil, err
	}

	result := &entity.RunResult{
		RunID:  uuid.NewString(),
		Script: s.Name,
		Steps:  make([]entity.StepResult, 0, len(s.Steps)),
	}
	logger := r.logger.WithFields(map[string]any{
		"run_id": result.RunID,
		"script": s.Name,
	})
	started := time.Now()

	r.reporter.ShowRunStart(ctx, s.Name, len(s.Steps))

	defer r.browser.Cleanup()
	if err := r.browser.Initialize(ctx); err != nil {
		logger.Error("Browser initialization failed", "error", err)
		return nil, fmt.Errorf("initialize browser: %w", err)
	}

	var runErr error
	stopped := false
	for i, step := range s.Steps {
		if !stopped && ctx.Err() != nil {
			runErr = ctx.Err()
			stopped = true
		}
		if stopped {
			result.Steps = append(result.Steps, entity.StepResult{
				Index:  i,
				Tool:   step.Tool,
				Status: entity.StepStatusSkipped,
			})
			continue
		}

		sr := r.runStep(ctx, logger, i, len(s.Steps), step)
		result.Steps = append(result.Steps, sr)

		if sr.Status == entity.StepStatusFailed {
			result.Failed++
			if !step.ContinueOnError {
				logger.Warn("Stopping run after failed step", "step", i+1, "tool", step.Tool)
				stopped = true
			}
		}
	}

	result.Elapsed = time.Since(started)
	logger.Info("Run finished", "failed", result.Failed, "elapsed", result.Elapsed)
	r.reporter.ShowRunResult(ctx, result)

	return result, runErr
}

func (r *Runner) checkTools(s *entity.Script) error {
	var errs []error
	for i, step := range s.Steps {
		if _, ok := r.tools.Get(step.Tool); !ok {
			errs = append(errs, fmt.Errorf("step %d: %w: %q", i+1, output.ErrUnknownTool, step.Tool))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runStep(ctx context.Context, logger output.LoggerPort, index, total int, step entity.Step) entity.StepResult {
	sr := entity.StepResult{Index: index, Tool: step.Tool}
	started := time.Now()

	args, err := encodeArgs(step.Args)
	if err != nil {
		sr.Status = entity.StepStatusFailed
		sr.Error = err.Error()
		sr.Duration = time.Since(started)
		r.reporter.ShowStepResult(ctx, step.Tool, sr.Error, true)
		return sr
	}

	r.reporter.ShowStepStart(ctx, index+1, total, step.Tool, args)
	logger.Info("Executing tool", "name", step.Tool, "args", args)

	tool, _ := r.tools.Get(step.Tool)
	out, err := tool.Execute(ctx, args)
	sr.Duration = time.Since(started)
	if err != nil {
		logger.Error("Tool execution failed", "name", step.Tool, "error", err)
		sr.Status = entity.StepStatusFailed
		sr.Error = err.Error()
		r.reporter.ShowStepResult(ctx, step.Tool, sr.Error, true)
		return sr
	}

	sr.Status = entity.StepStatusSucceeded
	sr.Output = truncate(out)
	logger.Debug("Tool completed", "name", step.Tool, "resultLen", len(out))
	r.reporter.ShowStepResult(ctx, step.Tool, sr.Output, false)
	return sr
}

func encodeArgs(args map[string]interface{}) (string, error) {
	if len(args) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode arguments: %w", err)
	}
	return string(data), nil
}

func truncate(s string) string {
	if len(s) > maxObservationLen {
		return s[:maxObservationLen] + "\n... (truncated)"
	}
	return s
}
