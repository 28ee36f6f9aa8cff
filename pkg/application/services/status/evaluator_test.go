package status

import (
	"testing"

	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/application/services/classifier"
	"github.com/supplymatch/orderassign/pkg/config"
	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

func floatPtr(f float64) *float64 { return &f }
func int64Ptr(i int64) *int64     { return &i }

// classify builds the evaluator input through the real classifier so the
// two stages stay in agreement about eligibility semantics.
func classify(t *testing.T, order *entities.MatchedOrder) *entities.EnrichedOrder {
	t.Helper()
	return classifier.New(config.DefaultPolicy(), zap.NewNop()).Classify(order)
}

func newEvaluator() *Evaluator {
	return New(config.DefaultPolicy(), zap.NewNop())
}

func matchedLine(lineNo int, qty int64, status entities.MatchStatus, candidates ...entities.CandidateOffer) entities.MatchedLine {
	return entities.MatchedLine{
		OrderLine: entities.OrderLine{
			LineNo:            lineNo,
			RequestedQty:      qty,
			Match:             entities.MatchInfo{Status: status},
			RawCandidateCount: len(candidates),
		},
		Candidates: candidates,
	}
}

func TestEvaluateFullyClosed(t *testing.T) {
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			matchedLine(1, 10, entities.MatchOK, entities.CandidateOffer{SupplierID: 1, PriceCents: 500}),
			matchedLine(2, 5, entities.MatchOK, entities.CandidateOffer{SupplierID: 1, PriceCents: 300}),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	orderStatus, details := newEvaluator().Evaluate(classify(t, order))

	if orderStatus != entities.FullyClosed {
		t.Errorf("order status = %s, want %s", orderStatus, entities.FullyClosed)
	}
	if details.Counts.FullyClosed != 2 || details.Counts.CannotClose != 0 {
		t.Errorf("counts = %+v, want 2 fully closed", details.Counts)
	}
}

func TestEvaluatePartiallyClosed(t *testing.T) {
	// Line 2's only candidate covers 85 of 100 units: within tolerance, so
	// it stays eligible but only partially.
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			matchedLine(1, 10, entities.MatchOK, entities.CandidateOffer{SupplierID: 1, PriceCents: 500}),
			matchedLine(2, 100, entities.MatchOK, entities.CandidateOffer{
				SupplierID: 1, PriceCents: 300, AvailabilityQty: int64Ptr(85),
			}),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	orderStatus, details := newEvaluator().Evaluate(classify(t, order))

	if orderStatus != entities.PartiallyClosed {
		t.Errorf("order status = %s, want %s", orderStatus, entities.PartiallyClosed)
	}
	if details.Counts.FullyClosed != 1 || details.Counts.PartiallyClosed != 1 {
		t.Errorf("counts = %+v, want 1 fully / 1 partially", details.Counts)
	}
}

func TestEvaluateLinePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		line       entities.MatchedLine
		wantReason entities.RejectionReason
	}{
		{
			// no_match wins even when candidates exist.
			"no match",
			matchedLine(1, 10, entities.MatchNoMatch, entities.CandidateOffer{SupplierID: 1, PriceCents: 500}),
			entities.ReasonUnknownPlant,
		},
		{
			"low confidence",
			matchedLine(1, 10, entities.MatchLowConfidence, entities.CandidateOffer{SupplierID: 1, PriceCents: 500}),
			entities.ReasonLowConfidenceMatch,
		},
		{
			"no raw candidates",
			matchedLine(1, 10, entities.MatchOK),
			entities.ReasonNoCandidatesRaw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &entities.MatchedOrder{
				OrderID:   "ORD-1",
				Lines:     []entities.MatchedLine{tt.line},
				Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
			}

			orderStatus, details := newEvaluator().Evaluate(classify(t, order))

			if orderStatus != entities.CannotClose {
				t.Errorf("order status = %s, want %s", orderStatus, entities.CannotClose)
			}
			if len(details.Breakdown.CannotClose) != 1 {
				t.Fatalf("cannot-close entries = %d, want 1", len(details.Breakdown.CannotClose))
			}
			if got := details.Breakdown.CannotClose[0].Reason; got != tt.wantReason {
				t.Errorf("reason = %s, want %s", got, tt.wantReason)
			}
		})
	}
}

func TestEvaluateLowConfidenceCarriesScore(t *testing.T) {
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			{
				OrderLine: entities.OrderLine{
					LineNo:            1,
					RequestedQty:      10,
					Match:             entities.MatchInfo{Score: floatPtr(0.35)},
					RawCandidateCount: 1,
				},
				Candidates: []entities.CandidateOffer{{SupplierID: 1, PriceCents: 500}},
			},
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	_, details := newEvaluator().Evaluate(classify(t, order))

	entry := details.Breakdown.CannotClose[0]
	lc, ok := entry.Details.(LowConfidenceDetails)
	if !ok {
		t.Fatalf("details = %T, want LowConfidenceDetails", entry.Details)
	}
	if lc.Score == nil || *lc.Score != 0.35 {
		t.Errorf("score = %v, want 0.35", lc.Score)
	}
	if lc.ThresholdOK != 0.42 {
		t.Errorf("threshold = %v, want 0.42", lc.ThresholdOK)
	}
}

func TestEvaluateMergesReasonsAcrossCandidates(t *testing.T) {
	// Both candidates rejected for the same reason: one entry, merged
	// details.
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			matchedLine(1, 100, entities.MatchOK,
				entities.CandidateOffer{SupplierID: 1, PriceCents: 500, AvailabilityQty: int64Ptr(10)},
				entities.CandidateOffer{SupplierID: 2, PriceCents: 400, AvailabilityQty: int64Ptr(5)},
			),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	orderStatus, details := newEvaluator().Evaluate(classify(t, order))

	if orderStatus != entities.CannotClose {
		t.Errorf("order status = %s, want %s", orderStatus, entities.CannotClose)
	}
	if len(details.Breakdown.CannotClose) != 1 {
		t.Fatalf("cannot-close entries = %d, want 1", len(details.Breakdown.CannotClose))
	}
	entry := details.Breakdown.CannotClose[0]
	if entry.Reason != entities.ReasonInsufficientQuantity {
		t.Errorf("reason = %s, want %s", entry.Reason, entities.ReasonInsufficientQuantity)
	}
	merged, ok := entry.Details.(entities.MergedReasonDetails)
	if !ok {
		t.Fatalf("details = %T, want MergedReasonDetails", entry.Details)
	}
	if len(merged.Candidates) != 2 {
		t.Errorf("merged candidates = %d, want 2", len(merged.Candidates))
	}
}

func TestEvaluateReasonOrderIsStable(t *testing.T) {
	// One candidate blacklisted, one too expensive is impossible without a
	// margin; use blacklist + policy filter instead and check the fixed
	// ordering (blacklist before policy filter).
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			matchedLine(1, 10, entities.MatchOK,
				entities.CandidateOffer{SupplierID: 1, PriceCents: 500},
				entities.CandidateOffer{SupplierID: 2, PriceCents: 400, PolicyFilters: []string{"embargo"}},
			),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{
			1: {Policies: entities.SupplierPolicies{Blacklisted: true}},
		},
	}

	_, details := newEvaluator().Evaluate(classify(t, order))

	if len(details.Breakdown.CannotClose) != 2 {
		t.Fatalf("cannot-close entries = %d, want 2", len(details.Breakdown.CannotClose))
	}
	if details.Breakdown.CannotClose[0].Reason != entities.ReasonSupplierBlacklisted {
		t.Errorf("first reason = %s, want %s",
			details.Breakdown.CannotClose[0].Reason, entities.ReasonSupplierBlacklisted)
	}
	if details.Breakdown.CannotClose[1].Reason != entities.ReasonFilteredOutByPolicy {
		t.Errorf("second reason = %s, want %s",
			details.Breakdown.CannotClose[1].Reason, entities.ReasonFilteredOutByPolicy)
	}
}

func TestEvaluateOneBadLineForcesCannotClose(t *testing.T) {
	// The healthy line lands in the fully-closed bucket, but the order as a
	// whole cannot close.
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			matchedLine(1, 10, entities.MatchOK, entities.CandidateOffer{SupplierID: 1, PriceCents: 500}),
			matchedLine(2, 10, entities.MatchNoMatch),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	orderStatus, details := newEvaluator().Evaluate(classify(t, order))

	if orderStatus != entities.CannotClose {
		t.Errorf("order status = %s, want %s", orderStatus, entities.CannotClose)
	}
	if details.Counts.FullyClosed != 1 || details.Counts.CannotClose != 1 {
		t.Errorf("counts = %+v, want 1 fully closed / 1 cannot close", details.Counts)
	}
}
