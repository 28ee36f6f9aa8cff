// Package classifier evaluates candidate offers against policy thresholds
// and supplier rules, producing an annotated candidate set with
// machine-checkable rejection reasons and risk flags.
package classifier

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/config"
	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

// Service implements candidate classification and filtering. Stateless:
// safe to share across runs.
type Service struct {
	policy config.PolicyConfig
	logger *zap.Logger
}

// New creates a classifier service.
func New(policy config.PolicyConfig, logger *zap.Logger) *Service {
	return &Service{policy: policy, logger: logger}
}

// ClassifyMatchStatus derives a match status from a similarity score using
// the configured thresholds. Used when the upstream matcher supplies a
// score without a status.
func (s *Service) ClassifyMatchStatus(score *float64) entities.MatchStatus {
	if score == nil {
		return entities.MatchNoMatch
	}
	if *score >= s.policy.SimThresholdOK {
		return entities.MatchOK
	}
	if *score >= s.policy.SimThresholdLow {
		return entities.MatchLowConfidence
	}
	return entities.MatchNoMatch
}

// availability checks whether a candidate can cover the requested quantity.
// A nil availableQty means the supplier did not cap availability. The
// returned shortage is a fraction of the requested quantity in [0, 1).
func (s *Service) availability(requestedQty int64, availableQty *int64) (bool, *float64) {
	if availableQty == nil || *availableQty >= requestedQty {
		return true, nil
	}

	shortage := float64(requestedQty-*availableQty) / float64(requestedQty)

	if s.policy.AllowInsufficient && shortage <= s.policy.InsufficientThreshold {
		return true, &shortage
	}
	return false, &shortage
}

// maxAllowedPrice computes the price-margin cap for a line: the minimum
// price among all raw candidates (not only eligible ones) scaled by
// 1 + margin, rounded to a cent.
func (s *Service) maxAllowedPrice(candidates []entities.CandidateOffer) *entities.Cents {
	if s.policy.PriceMargin == nil || len(candidates) == 0 {
		return nil
	}
	minPrice := candidates[0].PriceCents
	for _, c := range candidates[1:] {
		if c.PriceCents < minPrice {
			minPrice = c.PriceCents
		}
	}
	factor := decimal.NewFromFloat(1 + *s.policy.PriceMargin)
	capped := entities.Cents(decimal.NewFromInt(int64(minPrice)).Mul(factor).Round(0).IntPart())
	return &capped
}

// Classify evaluates every candidate of every line and returns the
// enriched order. Pure over its inputs: running it twice on the same
// payload yields identical output.
func (s *Service) Classify(order *entities.MatchedOrder) *entities.EnrichedOrder {
	enriched := &entities.EnrichedOrder{
		OrderID:   order.OrderID,
		Suppliers: order.Suppliers,
	}
	enriched.Stats.TotalItems = len(order.Lines)

	for i := range order.Lines {
		line := s.classifyLine(order, &order.Lines[i])
		enriched.Lines = append(enriched.Lines, line)

		if line.RawCandidateCount > 0 {
			enriched.Stats.ItemsWithCandidates++
		}
		if line.GoesToSolver {
			enriched.Stats.ItemsForSolver++
		}
	}
	enriched.Stats.ItemsCannotSolve = enriched.Stats.TotalItems - enriched.Stats.ItemsForSolver

	s.logger.Info("classified candidates",
		zap.String("order_id", order.OrderID),
		zap.Int("items_for_solver", enriched.Stats.ItemsForSolver),
		zap.Int("total_items", enriched.Stats.TotalItems),
	)

	return enriched
}

func (s *Service) classifyLine(order *entities.MatchedOrder, matched *entities.MatchedLine) entities.EnrichedLine {
	line := entities.EnrichedLine{
		OrderLine:        matched.OrderLine,
		RejectionSummary: make(map[entities.RejectionReason]int),
	}
	if !line.Match.Status.Valid() {
		line.Match.Status = s.ClassifyMatchStatus(line.Match.Score)
	}

	line.MaxAllowedPriceCents = s.maxAllowedPrice(matched.Candidates)

	for i := range matched.Candidates {
		cand := s.classifyCandidate(order, &matched.Candidates[i], &line)
		for _, reason := range cand.RejectionReasons {
			line.RejectionSummary[reason]++
		}
		if cand.MinOrderRisk != nil {
			line.Risks = append(line.Risks, entities.LineRisk{
				LineNo:             line.LineNo,
				MinOrderAmountRisk: *cand.MinOrderRisk,
			})
		}
		line.Candidates = append(line.Candidates, cand)
	}

	line.GoesToSolver = line.Match.Status.Resolved() && line.EligibleCount() > 0
	return line
}

func (s *Service) classifyCandidate(
	order *entities.MatchedOrder,
	offer *entities.CandidateOffer,
	line *entities.EnrichedLine,
) entities.ClassifiedCandidate {
	rules := order.RulesFor(offer)

	cand := entities.ClassifiedCandidate{CandidateOffer: *offer}
	qty := line.RequestedQty

	available, shortage := s.availability(qty, offer.AvailabilityQty)
	cand.IsAvailable = available
	cand.SufficientQty = offer.AvailabilityQty == nil || *offer.AvailabilityQty >= qty
	cand.ShortagePct = shortage
	cand.LineTotalCents = offer.PriceCents.MulQty(qty)

	reject := func(code entities.RejectionReason, details any) {
		cand.RejectionReasons = append(cand.RejectionReasons, code)
		cand.ReasonDetails = append(cand.ReasonDetails, entities.ReasonEntry{Code: code, Details: details})
	}

	if !available {
		reject(entities.ReasonInsufficientQuantity, entities.AvailabilityDetails{
			SupplierID:  offer.SupplierID,
			Requested:   qty,
			Available:   offer.AvailabilityQty,
			ShortagePct: shortage,
		})
	}

	if minQty := rules.Constraints.MinLineQty; minQty > 0 && qty < minQty {
		reject(entities.ReasonBelowMinLineQty, entities.MinLineQtyDetails{
			SupplierID: offer.SupplierID,
			Qty:        qty,
			MinLineQty: minQty,
		})
	}

	if maxPrice := line.MaxAllowedPriceCents; maxPrice != nil && offer.PriceCents > *maxPrice {
		reject(entities.ReasonPriceAboveMargin, entities.PriceMarginDetails{
			SupplierID:      offer.SupplierID,
			Price:           offer.PriceCents.Float64(),
			MaxAllowedPrice: maxPrice.Float64(),
		})
	}

	if rules.Policies.Blacklisted {
		reject(entities.ReasonSupplierBlacklisted, entities.BlacklistDetails{
			SupplierID: offer.SupplierID,
		})
	}

	policyFilters := offer.PolicyFilters
	if len(policyFilters) == 0 {
		policyFilters = rules.Policies.Filters
	}
	if len(policyFilters) > 0 {
		reject(entities.ReasonFilteredOutByPolicy, entities.PolicyFilterDetails{
			SupplierID: offer.SupplierID,
			Policies:   policyFilters,
		})
	}

	// Minimum order amount is not a hard rejection here: the assignment
	// model enforces it per supplier, so the candidate stays eligible and
	// only carries the risk annotation forward.
	if moa := rules.Constraints.MinOrderAmountCents; moa > 0 {
		if delta := moa - cand.LineTotalCents; delta > 0 {
			risk := entities.MinOrderAmountRisk{
				SupplierID:           offer.SupplierID,
				RequiredAmountCents:  moa,
				ActualAmountCents:    cand.LineTotalCents,
				DeltaAmountCents:     delta,
				SuggestedQtyIncrease: ceilDiv(int64(delta), int64(offer.PriceCents)),
			}
			cand.MinOrderRisk = &risk
			cand.ReasonDetails = append(cand.ReasonDetails, entities.ReasonEntry{
				Code:    entities.ReasonMinOrderAmountRisk,
				Details: risk,
			})
		}
	}

	cand.EligibleForSolver = len(cand.RejectionReasons) == 0
	return cand
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
