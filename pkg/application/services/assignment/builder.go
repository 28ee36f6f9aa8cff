// Package assignment translates the filtered candidate set into a boolean
// assignment model for the optimization backend and reconciles the solver
// outcome back into the status report.
package assignment

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/config"
	"github.com/supplymatch/orderassign/pkg/domain/entities"
	"github.com/supplymatch/orderassign/pkg/solver"
)

// supplierCountWeight makes supplier-count minimization strictly dominate
// container-match penalties: the penalty sum can never reach this weight
// for models below supplierCountWeight candidates.
const supplierCountWeight = 1000

// CandidateRef ties a flat model variable back to its line and candidate.
type CandidateRef struct {
	LineNo    int
	Qty       int64
	Candidate *entities.ClassifiedCandidate
	Var       solver.VarID
}

// BuiltModel is an assignment model plus the bookkeeping needed to decode
// a solution and audit the constraints. Ephemeral: built fresh per run.
type BuiltModel struct {
	Model        *solver.Model
	Candidates   []CandidateRef
	SupplierIDs  []entities.SupplierID
	SupplierVars map[entities.SupplierID]solver.VarID
	Stats        entities.ModelStats
	Audit        entities.ConstraintAudit
}

// ModelBuilder formulates assignment models. Stateless.
type ModelBuilder struct {
	policy config.PolicyConfig
	logger *zap.Logger
}

// NewModelBuilder creates a model builder.
func NewModelBuilder(policy config.PolicyConfig, logger *zap.Logger) *ModelBuilder {
	return &ModelBuilder{policy: policy, logger: logger}
}

// Build formulates the model over the solver-eligible lines: one boolean
// per eligible candidate, one per supplier, exactly-one selection per
// line, candidate-supplier linking, and a conditional minimum-order-amount
// constraint per configured supplier, all in integer cents.
func (b *ModelBuilder) Build(enriched *entities.EnrichedOrder) (*BuiltModel, error) {
	built := &BuiltModel{
		Model:        &solver.Model{TimeBudget: time.Duration(b.policy.SolverTimeoutSeconds) * time.Second},
		SupplierVars: make(map[entities.SupplierID]solver.VarID),
	}
	built.Stats.TotalItemsReceived = len(enriched.Lines)

	var solverLines []*entities.EnrichedLine
	for i := range enriched.Lines {
		if enriched.Lines[i].GoesToSolver {
			solverLines = append(solverLines, &enriched.Lines[i])
		}
	}
	built.Stats.ItemsInModel = len(solverLines)
	built.Stats.ItemsSkipped = len(enriched.Lines) - len(solverLines)

	if len(solverLines) == 0 {
		return nil, fmt.Errorf("no solver-eligible lines in order %s", enriched.OrderID)
	}

	model := built.Model

	// One boolean per eligible candidate; remember which belong to which
	// line for the exactly-one constraints.
	lineVars := make(map[int][]solver.Term)
	supplierSet := make(map[entities.SupplierID]struct{})
	for _, line := range solverLines {
		for i := range line.Candidates {
			cand := &line.Candidates[i]
			if !cand.EligibleForSolver {
				continue
			}
			id := model.NewBoolVar(fmt.Sprintf("x_c%d_l%d_s%d", len(built.Candidates), line.LineNo, cand.SupplierID))
			built.Candidates = append(built.Candidates, CandidateRef{
				LineNo:    line.LineNo,
				Qty:       line.RequestedQty,
				Candidate: cand,
				Var:       id,
			})
			lineVars[line.LineNo] = append(lineVars[line.LineNo], solver.Term{Var: id, Coef: 1})
			supplierSet[cand.SupplierID] = struct{}{}
		}
	}

	for id := range supplierSet {
		built.SupplierIDs = append(built.SupplierIDs, id)
	}
	sort.Slice(built.SupplierIDs, func(i, j int) bool { return built.SupplierIDs[i] < built.SupplierIDs[j] })
	for _, id := range built.SupplierIDs {
		built.SupplierVars[id] = model.NewBoolVar(fmt.Sprintf("y_s%d", id))
	}

	built.Stats.SuppliersConsidered = len(built.SupplierIDs)
	built.Stats.TotalCandidates = len(built.Candidates)

	// Exactly-one candidate per line.
	for _, line := range solverLines {
		model.AddConstraint(solver.Constraint{
			Name:  fmt.Sprintf("line_%d_exactly_one", line.LineNo),
			Terms: lineVars[line.LineNo],
			Op:    solver.EQ,
			Bound: 1,
		})
	}

	// Selecting a candidate marks its supplier as used.
	for _, ref := range built.Candidates {
		model.AddConstraint(solver.Constraint{
			Name: fmt.Sprintf("link_c%d_s%d", ref.Var, ref.Candidate.SupplierID),
			Terms: []solver.Term{
				{Var: ref.Var, Coef: 1},
				{Var: built.SupplierVars[ref.Candidate.SupplierID], Coef: -1},
			},
			Op:    solver.LE,
			Bound: 0,
		})
	}

	b.addMinOrderAmountConstraints(enriched, built)

	if err := b.setObjective(built); err != nil {
		return nil, err
	}

	built.Stats.Variables = len(model.Vars)
	built.Stats.Constraints = len(model.Constraints)

	b.logger.Info("built assignment model",
		zap.String("order_id", enriched.OrderID),
		zap.Int("items_in_model", built.Stats.ItemsInModel),
		zap.Int("total_candidates", built.Stats.TotalCandidates),
		zap.Int("suppliers_considered", built.Stats.SuppliersConsidered),
	)

	return built, nil
}

// addMinOrderAmountConstraints emits, for every supplier with a configured
// minimum order amount, the conditional constraint
//
//	sum(line_total_cents * x) >= min_order_cents * y
//
// so the minimum only binds when the supplier is used. Every emitted
// constraint lands in the audit trail.
func (b *ModelBuilder) addMinOrderAmountConstraints(enriched *entities.EnrichedOrder, built *BuiltModel) {
	built.Audit.MinOrderAmount = []entities.MinOrderAuditEntry{}

	for _, supplierID := range built.SupplierIDs {
		moa := enriched.Suppliers[supplierID].Constraints.MinOrderAmountCents
		if moa <= 0 {
			continue
		}

		audit := entities.MinOrderAuditEntry{
			SupplierID:     supplierID,
			MinOrderAmount: moa.Float64(),
			MinOrderCents:  moa,
		}

		terms := []solver.Term{{Var: built.SupplierVars[supplierID], Coef: -int64(moa)}}
		for _, ref := range built.Candidates {
			if ref.Candidate.SupplierID != supplierID {
				continue
			}
			lineTotal := ref.Candidate.PriceCents.MulQty(ref.Qty)
			terms = append(terms, solver.Term{Var: ref.Var, Coef: int64(lineTotal)})
			audit.Lines = append(audit.Lines, entities.MinOrderAuditLine{
				LineNo:         ref.LineNo,
				Qty:            ref.Qty,
				UnitPrice:      ref.Candidate.PriceCents.Float64(),
				LineTotal:      lineTotal.Float64(),
				PackCode:       ref.Candidate.PackCode,
				LineTotalCents: lineTotal,
			})
			audit.LineTotalSumCents += lineTotal
		}

		if len(audit.Lines) == 0 {
			continue
		}
		audit.LineTotalSum = audit.LineTotalSumCents.Float64()

		built.Model.AddConstraint(solver.Constraint{
			Name:  fmt.Sprintf("min_order_amount_s%d", supplierID),
			Terms: terms,
			Op:    solver.GE,
			Bound: 0,
		})
		built.Audit.MinOrderAmount = append(built.Audit.MinOrderAmount, audit)
	}
}

// setObjective minimizes the supplier count; in container-match mode it
// additionally penalizes "alike" pack matches, with the supplier term
// scaled so supplier minimization always wins.
func (b *ModelBuilder) setObjective(built *BuiltModel) error {
	model := built.Model

	if b.policy.OptimizationPriority == config.PriorityContainerMatch {
		if len(built.Candidates) >= supplierCountWeight {
			return fmt.Errorf(
				"container-match objective supports at most %d candidates, got %d",
				supplierCountWeight-1, len(built.Candidates),
			)
		}
		for _, id := range built.SupplierIDs {
			model.Objective = append(model.Objective, solver.Term{
				Var:  built.SupplierVars[id],
				Coef: supplierCountWeight,
			})
		}
		for _, ref := range built.Candidates {
			if ref.Candidate.PackMatchStatus == entities.PackMatchAlike {
				model.Objective = append(model.Objective, solver.Term{Var: ref.Var, Coef: 1})
			}
		}
		return nil
	}

	for _, id := range built.SupplierIDs {
		model.Objective = append(model.Objective, solver.Term{Var: built.SupplierVars[id], Coef: 1})
	}
	return nil
}

// Decode maps a backend result onto domain assignments. Only call it for
// results whose status carries an assignment.
func (b *ModelBuilder) Decode(built *BuiltModel, res *solver.Result) *entities.Solution {
	solution := &entities.Solution{
		Status:         SolutionStatus(res.Status),
		ObjectiveValue: res.Objective,
	}

	for _, id := range built.SupplierIDs {
		if res.Values[built.SupplierVars[id]] {
			solution.SuppliersUsed = append(solution.SuppliersUsed, id)
		}
	}
	solution.NumSuppliers = len(solution.SuppliersUsed)

	for _, ref := range built.Candidates {
		if !res.Values[ref.Var] {
			continue
		}
		solution.Assignments = append(solution.Assignments, entities.Assignment{
			LineNo:          ref.LineNo,
			SupplierID:      ref.Candidate.SupplierID,
			PackCode:        ref.Candidate.PackCode,
			PackMatchStatus: ref.Candidate.PackMatchStatus,
			PriceCents:      ref.Candidate.PriceCents,
			Qty:             ref.Qty,
			ShortagePct:     ref.Candidate.ShortagePct,
		})
	}
	sort.Slice(solution.Assignments, func(i, j int) bool {
		return solution.Assignments[i].LineNo < solution.Assignments[j].LineNo
	})

	return solution
}

// SolutionStatus converts a backend status to the domain solution status.
func SolutionStatus(s solver.Status) entities.SolutionStatus {
	switch s {
	case solver.Optimal:
		return entities.SolutionOptimal
	case solver.Feasible:
		return entities.SolutionFeasible
	case solver.Infeasible:
		return entities.SolutionInfeasible
	default:
		return entities.SolutionUnknown
	}
}
