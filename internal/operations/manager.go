package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Manager orchestrates operation execution. Each step starts as soon as
// all of its dependencies completed, so independent steps run concurrently.
// The first failure cancels every step that has not finished.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
}

// NewManager creates a new operation manager
func NewManager(registry *Registry, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		logger:   logger,
	}
}

// RegisterStep registers a Step with the operation
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step. An empty id gets a generated one.
// The returned state is complete even when an error is returned.
func (m *Manager) Execute(ctx context.Context, id string) (*OperationState, error) {
	if id == "" {
		id = "operation-" + uuid.NewString()
	}
	state := NewOperationState(id)

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		m.logOperationError(ctx, id, err)
		state.Fail(err)
		return state, err
	}
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", id),
		slog.Int("step_count", len(steps)))
	state.Start()

	done := make(map[string]chan struct{}, len(steps))
	for _, step := range steps {
		done[step.ID()] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, step := range steps {
		g.Go(func() error {
			defer close(done[step.ID()])
			return m.executeStep(gctx, state, step, done)
		})
	}
	err = g.Wait()
	if err == nil && ctx.Err() != nil {
		err = NewCancellationError("", ctx.Err())
	}

	if err != nil {
		m.logOperationError(ctx, id, err)
		state.Fail(err)
		return state, err
	}

	state.Complete()
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", id),
		slog.Duration("duration", time.Since(state.StartTime)))
	return state, nil
}

// executeStep waits for the dependencies of step and runs it
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step, done map[string]chan struct{}) error {
	stepState := state.GetStep(step.ID())

	for _, dep := range step.GetDependencies() {
		select {
		case <-done[dep]:
		case <-ctx.Done():
			stepState.Skip("operation cancelled")
			m.logStepSkipped(ctx, state.ID, step.ID(), "operation cancelled")
			return nil
		}
		if status := state.GetStep(dep).GetStatus(); status != StepStatusCompleted {
			reason := fmt.Sprintf("dependency %s %s", dep, status)
			stepState.Skip(reason)
			m.logStepSkipped(ctx, state.ID, step.ID(), reason)
			return nil
		}
	}
	if err := ctx.Err(); err != nil {
		stepState.Skip("operation cancelled")
		m.logStepSkipped(ctx, state.ID, step.ID(), "operation cancelled")
		return nil
	}

	m.logger.InfoContext(ctx, "step_start",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()))
	stepState.Start()

	if err := step.Execute(ctx); err != nil {
		stepState.Fail(err)
		m.logger.ErrorContext(ctx, "step_error",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", stepState.Duration()))
	return nil
}

func (m *Manager) logStepSkipped(ctx context.Context, operationID, stepID, reason string) {
	m.logger.WarnContext(ctx, "step_skipped",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("reason", reason))
}

func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID),
		slog.String("error", err.Error()))
}
