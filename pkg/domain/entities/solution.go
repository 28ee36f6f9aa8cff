package entities

import "time"

// SolutionStatus mirrors the optimization backend verdict.
type SolutionStatus string

const (
	SolutionOptimal    SolutionStatus = "OPTIMAL"
	SolutionFeasible   SolutionStatus = "FEASIBLE"
	SolutionInfeasible SolutionStatus = "INFEASIBLE"
	SolutionUnknown    SolutionStatus = "UNKNOWN"
)

// Found reports whether the status carries a usable variable assignment.
func (s SolutionStatus) Found() bool {
	return s == SolutionOptimal || s == SolutionFeasible
}

// Assignment is one selected supplier-offer for one line.
type Assignment struct {
	LineNo          int             `json:"line_no"`
	SupplierID      SupplierID      `json:"supplier_id"`
	PackCode        string          `json:"pack_code,omitempty"`
	PackMatchStatus PackMatchStatus `json:"pack_match_status,omitempty"`
	PriceCents      Cents           `json:"price_cents"`
	Qty             int64           `json:"qty"`
	ShortagePct     *float64        `json:"shortage_pct,omitempty"`
}

// Solution is the decoded solver output for one run.
type Solution struct {
	Status         SolutionStatus `json:"status"`
	Assignments    []Assignment   `json:"assignments"`
	SuppliersUsed  []SupplierID   `json:"suppliers_used"`
	NumSuppliers   int            `json:"num_suppliers"`
	ObjectiveValue int64          `json:"objective_value"`
}

// MinOrderAuditLine is one contributing line inside a min-order-amount
// constraint audit entry.
type MinOrderAuditLine struct {
	LineNo         int     `json:"line_no"`
	Qty            int64   `json:"qty"`
	UnitPrice      float64 `json:"unit_price"`
	LineTotal      float64 `json:"line_total"`
	PackCode       string  `json:"pack_code,omitempty"`
	LineTotalCents Cents   `json:"line_total_cents"`
}

// MinOrderAuditEntry records one conditional min-order-amount constraint as
// emitted into the model, for observability even when the solver never runs.
type MinOrderAuditEntry struct {
	SupplierID        SupplierID          `json:"supplier_id"`
	MinOrderAmount    float64             `json:"min_order_amount"`
	MinOrderCents     Cents               `json:"min_order_amount_cents"`
	Lines             []MinOrderAuditLine `json:"lines"`
	LineTotalSum      float64             `json:"line_total_sum"`
	LineTotalSumCents Cents               `json:"line_total_sum_cents"`
}

// ConstraintAudit is the audit trail of business constraints in the model.
type ConstraintAudit struct {
	MinOrderAmount []MinOrderAuditEntry `json:"min_order_amount"`
}

// ModelStats describes the size and shape of a built assignment model.
type ModelStats struct {
	TotalItemsReceived  int `json:"total_items_received"`
	ItemsInModel        int `json:"items_in_model"`
	ItemsSkipped        int `json:"items_skipped"`
	SuppliersConsidered int `json:"suppliers_considered"`
	TotalCandidates     int `json:"total_candidates"`
	Variables           int `json:"variables"`
	Constraints         int `json:"constraints"`
}

// ProcessingRun is the persisted record of one pipeline run.
type ProcessingRun struct {
	RunID         string         `json:"run_id"`
	OrderID       string         `json:"order_id"`
	CreatedAt     time.Time      `json:"created_at"`
	Success       bool           `json:"success"`
	ErrorKind     string         `json:"error,omitempty"`
	OrderStatus   OrderStatus    `json:"order_status"`
	StatusDetails *StatusDetails `json:"status_details,omitempty"`
	Solution      *Solution      `json:"solution,omitempty"`
}
