// Package status folds per-line classification outcomes into an
// order-level fulfilment status with a structured per-line breakdown.
package status

import (
	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/config"
	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

// LowConfidenceDetails explains a low-confidence match entry.
type LowConfidenceDetails struct {
	Score       *float64 `json:"score,omitempty"`
	ThresholdOK float64  `json:"threshold_ok"`
}

// Evaluator determines order fulfilment status. Stateless.
type Evaluator struct {
	policy config.PolicyConfig
	logger *zap.Logger
}

// New creates a status evaluator.
func New(policy config.PolicyConfig, logger *zap.Logger) *Evaluator {
	return &Evaluator{policy: policy, logger: logger}
}

// Evaluate classifies every line into exactly one breakdown bucket and
// derives the order-level status. The order status comes from line match
// and availability outcomes only; the solver has not run yet.
func (e *Evaluator) Evaluate(enriched *entities.EnrichedOrder) (entities.OrderStatus, *entities.StatusDetails) {
	details := &entities.StatusDetails{}
	breakdown := &details.Breakdown

	for i := range enriched.Lines {
		line := &enriched.Lines[i]

		switch {
		case line.Match.Status == entities.MatchNoMatch:
			breakdown.CannotClose = append(breakdown.CannotClose, entities.CannotCloseEntry{
				LineNo: line.LineNo,
				Reason: entities.ReasonUnknownPlant,
			})

		case line.Match.Status == entities.MatchLowConfidence:
			breakdown.CannotClose = append(breakdown.CannotClose, entities.CannotCloseEntry{
				LineNo: line.LineNo,
				Reason: entities.ReasonLowConfidenceMatch,
				Details: LowConfidenceDetails{
					Score:       line.Match.Score,
					ThresholdOK: e.policy.SimThresholdOK,
				},
			})

		case line.RawCandidateCount == 0:
			breakdown.CannotClose = append(breakdown.CannotClose, entities.CannotCloseEntry{
				LineNo: line.LineNo,
				Reason: entities.ReasonNoCandidatesRaw,
			})

		case !line.GoesToSolver:
			breakdown.CannotClose = append(breakdown.CannotClose, e.lineReasons(line)...)

		case hasSufficientCandidate(line):
			breakdown.FullyClosed = append(breakdown.FullyClosed, line.LineNo)

		default:
			breakdown.PartiallyClosed = append(breakdown.PartiallyClosed, line.LineNo)
		}
	}

	orderStatus := e.determineOrderStatus(enriched)
	details.OrderStatus = orderStatus
	details.RefreshCounts()

	e.logger.Info("determined order status",
		zap.String("order_id", enriched.OrderID),
		zap.String("order_status", string(orderStatus)),
		zap.Int("fully_closed", details.Counts.FullyClosed),
		zap.Int("partially_closed", details.Counts.PartiallyClosed),
		zap.Int("cannot_close", details.Counts.CannotClose),
	)

	return orderStatus, details
}

// determineOrderStatus rolls line outcomes up to the order level: any line
// with an unresolved match or zero available candidates forces
// cannot_close; otherwise a single partial-quantity-only line degrades the
// order to partially_closed.
func (e *Evaluator) determineOrderStatus(enriched *entities.EnrichedOrder) entities.OrderStatus {
	partiallyClosed := 0

	for i := range enriched.Lines {
		line := &enriched.Lines[i]

		switch line.Match.Status {
		case entities.MatchNoMatch, entities.MatchLowConfidence:
			return entities.CannotClose
		}

		available := 0
		sufficient := false
		for j := range line.Candidates {
			cand := &line.Candidates[j]
			if cand.EligibleForSolver && cand.IsAvailable {
				available++
				if cand.SufficientQty {
					sufficient = true
				}
			}
		}

		if available == 0 {
			return entities.CannotClose
		}
		if !sufficient {
			partiallyClosed++
		}
	}

	if partiallyClosed > 0 {
		return entities.PartiallyClosed
	}
	return entities.FullyClosed
}

// lineReasons builds the cannot-close entries for a line that is not
// solver-eligible: one entry per reason code present on any of its
// candidates, in fixed priority order. When several candidates share a
// code their details merge into a single list entry.
func (e *Evaluator) lineReasons(line *entities.EnrichedLine) []entities.CannotCloseEntry {
	reasonMap := make(map[entities.RejectionReason][]any)
	for i := range line.Candidates {
		for _, entry := range line.Candidates[i].ReasonDetails {
			reasonMap[entry.Code] = append(reasonMap[entry.Code], entry.Details)
		}
	}

	var entries []entities.CannotCloseEntry
	for _, code := range entities.ReasonPriority {
		detailsList, ok := reasonMap[code]
		if !ok {
			continue
		}
		entry := entities.CannotCloseEntry{LineNo: line.LineNo, Reason: code}
		if len(detailsList) == 1 {
			entry.Details = detailsList[0]
		} else {
			entry.Details = entities.MergedReasonDetails{Candidates: detailsList}
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		entries = append(entries, entities.CannotCloseEntry{
			LineNo: line.LineNo,
			Reason: entities.ReasonNoAvailableCandidates,
		})
	}
	return entries
}

func hasSufficientCandidate(line *entities.EnrichedLine) bool {
	for i := range line.Candidates {
		cand := &line.Candidates[i]
		if cand.EligibleForSolver && cand.SufficientQty {
			return true
		}
	}
	return false
}
