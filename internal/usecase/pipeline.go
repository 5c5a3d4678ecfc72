package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ContentPilot/internal/crew"
	"ContentPilot/internal/domain"
	"ContentPilot/internal/prompt"
)

// Stage is the pipeline's position in the fixed task sequence.
type Stage string

const (
	StageResearching Stage = "RESEARCHING"
	StagePlanning    Stage = "PLANNING"
	StageWriting     Stage = "WRITING"
	StageDone        Stage = "DONE"
	StageFailed      Stage = "FAILED"
)

var stageOrder = []Stage{StageResearching, StagePlanning, StageWriting}

// InvocationError wraps a failed agent invocation with the stage it
// happened in. The whole run collapses into this single failure; no partial
// content survives it.
type InvocationError struct {
	Stage Stage
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Pipeline executes the fixed research -> plan -> write task sequence.
// Task and agent definitions are immutable and shared; all per-run state
// lives in the run itself, so concurrent Run calls are independent.
type Pipeline struct {
	tasks       []crew.Task
	taskTimeout time.Duration
	logger      *slog.Logger
}

// NewPipeline wires the ordered task list. taskTimeout bounds each agent
// invocation; zero disables the per-task deadline.
func NewPipeline(tasks []crew.Task, taskTimeout time.Duration, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		tasks:       tasks,
		taskTimeout: taskTimeout,
		logger:      logger,
	}
}

// Run executes every task strictly in order, handing each agent the raw
// outputs of all previously completed tasks. The first failure aborts the
// run: later tasks never start, nothing is retried, and no partial result
// is returned. On success the final task's raw output is the result.
func (p *Pipeline) Run(ctx context.Context, params domain.ParameterSet) (string, error) {
	if len(p.tasks) != len(stageOrder) {
		return "", fmt.Errorf("pipeline requires %d tasks, have %d", len(stageOrder), len(p.tasks))
	}

	runID := uuid.NewString()
	fields := params.Fields()
	results := make([]string, 0, len(p.tasks))

	for i, task := range p.tasks {
		stage := stageOrder[i]

		// Cancellation is honored only here, between tasks. A task already
		// delegated to the model runs to completion.
		if err := ctx.Err(); err != nil {
			p.log(slog.LevelWarn, "run cancelled", runID, stage, nil)
			return "", &InvocationError{Stage: stage, Err: err}
		}

		rendered, err := prompt.Render(task.Description, fields)
		if err != nil {
			return "", &InvocationError{Stage: stage, Err: err}
		}
		if task.ExpectedOutput != "" {
			rendered = rendered + "\n\nExpected output: " + task.ExpectedOutput
		}

		p.log(slog.LevelInfo, "stage started", runID, stage, nil)
		started := time.Now()

		output, err := p.invokeTask(ctx, task, rendered, results)
		if err != nil {
			p.log(slog.LevelError, "stage failed", runID, StageFailed, err)
			return "", &InvocationError{Stage: stage, Err: err}
		}

		results = append(results, output)
		p.log(slog.LevelInfo, "stage completed", runID, stage, nil,
			"duration", time.Since(started).Round(time.Millisecond))
	}

	p.log(slog.LevelInfo, "run completed", runID, StageDone, nil)
	return results[len(results)-1], nil
}

func (p *Pipeline) invokeTask(ctx context.Context, task crew.Task, rendered string, prior []string) (string, error) {
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	return task.Agent.Invoke(ctx, rendered, prior)
}

func (p *Pipeline) log(level slog.Level, msg, runID string, stage Stage, err error, args ...any) {
	if p.logger == nil {
		return
	}
	attrs := append([]any{"run_id", runID, "stage", string(stage)}, args...)
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	p.logger.Log(context.Background(), level, msg, attrs...)
}
