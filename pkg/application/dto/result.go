package dto

import (
	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

// Structured (non-exceptional) failure kinds.
const (
	ErrNoItemsForSolver = "no_items_for_solver"
	ErrSolverInfeasible = "solver_infeasible"
)

// SolverParameters echoes the knobs the solve ran with.
type SolverParameters struct {
	TimeoutSeconds       int    `json:"timeout_seconds"`
	OptimizationPriority string `json:"optimization_priority"`
}

// SolverDetails is the diagnostic block describing the model and the solve.
type SolverDetails struct {
	Solver            string                   `json:"solver"`
	Status            string                   `json:"status"`
	Reason            string                   `json:"reason,omitempty"`
	Parameters        SolverParameters         `json:"parameters"`
	ModelStats        entities.ModelStats      `json:"model_stats"`
	ConstraintAudit   entities.ConstraintAudit `json:"constraint_audit"`
	ObjectiveValue    *int64                   `json:"objective_value,omitempty"`
	SuppliersSelected []entities.SupplierID    `json:"suppliers_selected,omitempty"`
	WallTimeSeconds   float64                  `json:"solve_wall_time_seconds"`
}

// AssignmentView is one assignment in the output contract, with the price
// rendered in currency units for display.
type AssignmentView struct {
	LineNo          int      `json:"line_no"`
	SupplierID      int64    `json:"supplier_id"`
	PackCode        string   `json:"pack_code,omitempty"`
	PackMatchStatus string   `json:"pack_match_status,omitempty"`
	Price           float64  `json:"price"`
	Qty             int64    `json:"qty"`
	ShortagePct     *float64 `json:"shortage_pct,omitempty"`
}

// LineDiagnostics is a compact per-line debugging summary.
type LineDiagnostics struct {
	LineNo              int                 `json:"line_no"`
	MatchStatus         string              `json:"match_status"`
	RawCandidates       int                 `json:"raw_candidates"`
	SolverCandidates    int                 `json:"solver_candidates"`
	RejectionSummary    map[string]int      `json:"rejection_summary"`
	MinOrderAmountRisks []entities.LineRisk `json:"min_order_amount_risks,omitempty"`
}

// Diagnostics bundles the per-line summaries.
type Diagnostics struct {
	Lines []LineDiagnostics `json:"lines"`
}

// ProcessResult is the output contract of one pipeline run. On failure
// Success is false, Error names the failure kind, and Assignments is
// absent; status details and diagnostics are always populated.
type ProcessResult struct {
	Success       bool                    `json:"success"`
	OrderID       string                  `json:"order_id"`
	RunID         string                  `json:"run_id,omitempty"`
	OrderStatus   entities.OrderStatus    `json:"order_status"`
	StatusDetails *entities.StatusDetails `json:"status_details,omitempty"`
	Error         string                  `json:"error,omitempty"`
	Assignments   []AssignmentView        `json:"assignments,omitempty"`
	NumSuppliers  *int                    `json:"num_suppliers,omitempty"`
	SolverDetails *SolverDetails          `json:"solver_details,omitempty"`
	Diagnostics   *Diagnostics            `json:"diagnostics,omitempty"`
	Stats         entities.OrderStats     `json:"stats"`
	ConfigUsed    map[string]any          `json:"config_used,omitempty"`
}

// NewAssignmentViews converts domain assignments to their display form.
func NewAssignmentViews(assignments []entities.Assignment) []AssignmentView {
	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, AssignmentView{
			LineNo:          a.LineNo,
			SupplierID:      int64(a.SupplierID),
			PackCode:        a.PackCode,
			PackMatchStatus: string(a.PackMatchStatus),
			Price:           a.PriceCents.Float64(),
			Qty:             a.Qty,
			ShortagePct:     a.ShortagePct,
		})
	}
	return views
}

// NewDiagnostics builds the per-line diagnostics block from an enriched
// order.
func NewDiagnostics(enriched *entities.EnrichedOrder) *Diagnostics {
	diag := &Diagnostics{}
	for i := range enriched.Lines {
		line := &enriched.Lines[i]
		summary := make(map[string]int, len(line.RejectionSummary))
		for reason, count := range line.RejectionSummary {
			summary[string(reason)] = count
		}
		diag.Lines = append(diag.Lines, LineDiagnostics{
			LineNo:              line.LineNo,
			MatchStatus:         string(line.Match.Status),
			RawCandidates:       line.RawCandidateCount,
			SolverCandidates:    line.EligibleCount(),
			RejectionSummary:    summary,
			MinOrderAmountRisks: line.Risks,
		})
	}
	return diag
}
