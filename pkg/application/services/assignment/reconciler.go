package assignment

import (
	"sort"

	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

// ShortfallDetails explains a post-infeasibility demotion of a line whose
// minimum-order-amount risk is the most probable cause.
type ShortfallDetails struct {
	SupplierID           entities.SupplierID `json:"supplier_id"`
	RequiredAmount       float64             `json:"required_amount"`
	ActualAmount         float64             `json:"actual_amount"`
	DeltaAmount          float64             `json:"delta_amount"`
	SuggestedQtyIncrease int64               `json:"suggested_qty_increase"`
}

// Reconciler re-evaluates the status report when the model came back
// infeasible. Stateless.
type Reconciler struct {
	logger *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(logger *zap.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Reconcile attributes an infeasible model to minimum-order-amount
// pressure: for every line carrying risk annotations it keeps the entry
// with the smallest delta, demotes those lines to cannot_close, and forces
// the order status down. This is best-effort diagnostic attribution, not a
// proof of the infeasibility cause. The returned entries are the demotions
// applied; an empty result leaves the status untouched.
func (r *Reconciler) Reconcile(
	enriched *entities.EnrichedOrder,
	details *entities.StatusDetails,
) []entities.CannotCloseEntry {
	shortfalls := make(map[int]entities.LineRisk)
	for _, risk := range enriched.AllRisks() {
		best, ok := shortfalls[risk.LineNo]
		if !ok || risk.DeltaAmountCents < best.DeltaAmountCents {
			shortfalls[risk.LineNo] = risk
		}
	}
	if len(shortfalls) == 0 {
		return nil
	}

	impacted := make(map[int]struct{}, len(shortfalls))
	entries := make([]entities.CannotCloseEntry, 0, len(shortfalls))
	for lineNo, risk := range shortfalls {
		impacted[lineNo] = struct{}{}
		entries = append(entries, entities.CannotCloseEntry{
			LineNo: lineNo,
			Reason: entities.ReasonMinOrderAmountNotMet,
			Details: ShortfallDetails{
				SupplierID:           risk.SupplierID,
				RequiredAmount:       risk.RequiredAmountCents.Float64(),
				ActualAmount:         risk.ActualAmountCents.Float64(),
				DeltaAmount:          risk.DeltaAmountCents.Float64(),
				SuggestedQtyIncrease: risk.SuggestedQtyIncrease,
			},
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].LineNo < entries[j].LineNo })

	details.RemoveFromClosedBuckets(impacted)
	details.Breakdown.CannotClose = append(details.Breakdown.CannotClose, entries...)
	details.OrderStatus = entities.CannotClose
	details.RefreshCounts()

	r.logger.Warn("demoted lines after infeasible model",
		zap.String("order_id", enriched.OrderID),
		zap.Int("lines_demoted", len(entries)),
	)

	return entries
}
