// Package orchestration composes the classification, status, assignment
// and reconciliation services into the order processing pipeline.
package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/application/dto"
	"github.com/supplymatch/orderassign/pkg/application/services/assignment"
	"github.com/supplymatch/orderassign/pkg/application/services/classifier"
	"github.com/supplymatch/orderassign/pkg/application/services/status"
	"github.com/supplymatch/orderassign/pkg/config"
	"github.com/supplymatch/orderassign/pkg/domain/entities"
	"github.com/supplymatch/orderassign/pkg/domain/repositories"
	"github.com/supplymatch/orderassign/pkg/infrastructure/events"
	"github.com/supplymatch/orderassign/pkg/solver"
)

const solverName = "branch_and_bound_ilp"

// Pipeline processes one order at a time through a strict sequential
// pipeline: classify, evaluate, build model, solve, reconcile. Stateless
// between runs; safe to reuse across orders.
type Pipeline struct {
	policy     config.PolicyConfig
	classifier *classifier.Service
	evaluator  *status.Evaluator
	builder    *assignment.ModelBuilder
	reconciler *assignment.Reconciler
	backend    solver.Backend
	runs       repositories.RunRepository
	events     events.Store
	logger     *zap.Logger
}

// NewPipeline wires the pipeline from its collaborators. The backend, run
// repository and event store are injected; the stage services are built
// here so they all share one policy.
func NewPipeline(
	policy config.PolicyConfig,
	backend solver.Backend,
	runs repositories.RunRepository,
	eventStore events.Store,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		policy:     policy,
		classifier: classifier.New(policy, logger),
		evaluator:  status.New(policy, logger),
		builder:    assignment.NewModelBuilder(policy, logger),
		reconciler: assignment.NewReconciler(logger),
		backend:    backend,
		runs:       runs,
		events:     eventStore,
		logger:     logger,
	}
}

// ProcessOrder runs the full pipeline on one payload. Business outcomes
// (policy rejections, no solver input, infeasibility) come back as
// structured results with Success=false; only structurally invalid input
// returns an error.
func (p *Pipeline) ProcessOrder(ctx context.Context, payload *dto.OrderPayload) (*dto.ProcessResult, error) {
	order, err := payload.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("invalid order payload: %w", err)
	}

	runID := uuid.NewString()
	p.logger.Info("processing order",
		zap.String("order_id", order.OrderID),
		zap.String("run_id", runID),
		zap.Int("items", len(order.Lines)),
	)

	enriched := p.classifier.Classify(order)
	p.emit(runID, events.NewOrderClassifiedEvent(runID, enriched))

	orderStatus, details := p.evaluator.Evaluate(enriched)
	p.emit(runID, events.NewStatusEvaluatedEvent(runID, order.OrderID, details))

	result := &dto.ProcessResult{
		OrderID:       order.OrderID,
		RunID:         runID,
		OrderStatus:   orderStatus,
		StatusDetails: details,
		Diagnostics:   dto.NewDiagnostics(enriched),
		Stats:         enriched.Stats,
		ConfigUsed:    p.policy.Map(),
	}

	if enriched.Stats.ItemsForSolver == 0 {
		result.Error = dto.ErrNoItemsForSolver
		result.SolverDetails = &dto.SolverDetails{
			Solver: solverName,
			Status: "SKIPPED",
			Reason: dto.ErrNoItemsForSolver,
			Parameters: dto.SolverParameters{
				TimeoutSeconds:       p.policy.SolverTimeoutSeconds,
				OptimizationPriority: p.policy.OptimizationPriority,
			},
			ModelStats: entities.ModelStats{
				TotalItemsReceived: enriched.Stats.TotalItems,
				ItemsSkipped:       enriched.Stats.TotalItems,
			},
			ConstraintAudit: entities.ConstraintAudit{MinOrderAmount: []entities.MinOrderAuditEntry{}},
		}
		p.recordRun(runID, result, nil)
		return result, nil
	}

	built, err := p.builder.Build(enriched)
	if err != nil {
		return nil, fmt.Errorf("failed to build assignment model: %w", err)
	}
	p.emit(runID, events.NewModelBuiltEvent(runID, order.OrderID, built.Stats))

	res, err := p.backend.Solve(ctx, built.Model)
	if err != nil {
		return nil, fmt.Errorf("solver backend failed: %w", err)
	}
	p.emit(runID, events.NewOrderSolvedEvent(runID, order.OrderID, assignment.SolutionStatus(res.Status)))

	solverDetails := &dto.SolverDetails{
		Solver: solverName,
		Status: res.Status.String(),
		Parameters: dto.SolverParameters{
			TimeoutSeconds:       p.policy.SolverTimeoutSeconds,
			OptimizationPriority: p.policy.OptimizationPriority,
		},
		ModelStats:      built.Stats,
		ConstraintAudit: built.Audit,
		WallTimeSeconds: res.WallTime.Seconds(),
	}
	result.SolverDetails = solverDetails

	if !res.Status.Found() {
		p.logger.Warn("no feasible solution found",
			zap.String("order_id", order.OrderID),
			zap.String("solver_status", res.Status.String()),
		)
		solverDetails.Reason = "solver_returned_no_solution"

		demoted := p.reconciler.Reconcile(enriched, details)
		if len(demoted) > 0 {
			result.OrderStatus = details.OrderStatus
			p.emit(runID, events.NewOrderReconciledEvent(runID, order.OrderID, len(demoted)))
		}

		result.Error = dto.ErrSolverInfeasible
		p.recordRun(runID, result, nil)
		return result, nil
	}

	solution := p.builder.Decode(built, res)
	objective := res.Objective
	solverDetails.ObjectiveValue = &objective
	solverDetails.SuppliersSelected = solution.SuppliersUsed

	result.Success = true
	result.Assignments = dto.NewAssignmentViews(solution.Assignments)
	numSuppliers := solution.NumSuppliers
	result.NumSuppliers = &numSuppliers

	p.logger.Info("solved assignment",
		zap.String("order_id", order.OrderID),
		zap.String("solver_status", res.Status.String()),
		zap.Int("num_suppliers", solution.NumSuppliers),
		zap.Duration("wall_time", res.WallTime),
	)

	p.recordRun(runID, result, solution)
	return result, nil
}

// recordRun persists the run outcome. Persistence is best-effort: a
// storage failure is logged but never discards an already-computed result.
func (p *Pipeline) recordRun(runID string, result *dto.ProcessResult, solution *entities.Solution) {
	run := &entities.ProcessingRun{
		RunID:         runID,
		OrderID:       result.OrderID,
		CreatedAt:     time.Now().UTC(),
		Success:       result.Success,
		ErrorKind:     result.Error,
		OrderStatus:   result.OrderStatus,
		StatusDetails: result.StatusDetails,
		Solution:      solution,
	}
	if err := p.runs.SaveRun(run); err != nil {
		p.logger.Error("failed to record run",
			zap.String("run_id", runID),
			zap.String("order_id", result.OrderID),
			zap.Error(err),
		)
		return
	}
	p.emit(runID, events.NewRunRecordedEvent(runID, result.OrderID, result.Success))
}

func (p *Pipeline) emit(runID string, event events.Event) {
	if err := p.events.Append(runID, event); err != nil {
		p.logger.Warn("failed to append pipeline event",
			zap.String("run_id", runID),
			zap.String("event_type", event.Type()),
			zap.Error(err),
		)
	}
}
