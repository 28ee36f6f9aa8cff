package assignment

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/supplymatch/orderassign/pkg/application/services/classifier"
	"github.com/supplymatch/orderassign/pkg/config"
	"github.com/supplymatch/orderassign/pkg/domain/entities"
	"github.com/supplymatch/orderassign/pkg/solver"
)

func int64Ptr(i int64) *int64 { return &i }

func classify(t *testing.T, policy config.PolicyConfig, order *entities.MatchedOrder) *entities.EnrichedOrder {
	t.Helper()
	return classifier.New(policy, zap.NewNop()).Classify(order)
}

func okLine(lineNo int, qty int64, candidates ...entities.CandidateOffer) entities.MatchedLine {
	return entities.MatchedLine{
		OrderLine: entities.OrderLine{
			LineNo:            lineNo,
			RequestedQty:      qty,
			Match:             entities.MatchInfo{Status: entities.MatchOK},
			RawCandidateCount: len(candidates),
		},
		Candidates: candidates,
	}
}

func TestBuildModelShape(t *testing.T) {
	policy := config.DefaultPolicy()
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			okLine(1, 10,
				entities.CandidateOffer{SupplierID: 1, PriceCents: 500},
				entities.CandidateOffer{SupplierID: 2, PriceCents: 600},
			),
			okLine(2, 5, entities.CandidateOffer{SupplierID: 1, PriceCents: 300}),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	built, err := NewModelBuilder(policy, zap.NewNop()).Build(classify(t, policy, order))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 3 candidate booleans + 2 supplier booleans.
	if built.Stats.Variables != 5 {
		t.Errorf("Variables = %d, want 5", built.Stats.Variables)
	}
	// 2 exactly-one + 3 linking, no min-order-amount constraints.
	if built.Stats.Constraints != 5 {
		t.Errorf("Constraints = %d, want 5", built.Stats.Constraints)
	}
	if built.Stats.ItemsInModel != 2 || built.Stats.TotalCandidates != 3 {
		t.Errorf("stats = %+v, want 2 items / 3 candidates", built.Stats)
	}
	if built.Stats.SuppliersConsidered != 2 {
		t.Errorf("SuppliersConsidered = %d, want 2", built.Stats.SuppliersConsidered)
	}
	if len(built.Audit.MinOrderAmount) != 0 {
		t.Errorf("audit entries = %d, want 0", len(built.Audit.MinOrderAmount))
	}
	// Objective minimizes supplier count only.
	if len(built.Model.Objective) != 2 {
		t.Errorf("objective terms = %d, want 2", len(built.Model.Objective))
	}
}

func TestBuildSkipsIneligibleCandidatesAndLines(t *testing.T) {
	policy := config.DefaultPolicy()
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			okLine(1, 100,
				entities.CandidateOffer{SupplierID: 1, PriceCents: 500},
				entities.CandidateOffer{SupplierID: 2, PriceCents: 600, AvailabilityQty: int64Ptr(10)},
			),
			okLine(2, 10), // no candidates, stays out of the model
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	built, err := NewModelBuilder(policy, zap.NewNop()).Build(classify(t, policy, order))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if built.Stats.ItemsInModel != 1 || built.Stats.ItemsSkipped != 1 {
		t.Errorf("stats = %+v, want 1 in model / 1 skipped", built.Stats)
	}
	if built.Stats.TotalCandidates != 1 {
		t.Errorf("TotalCandidates = %d, want 1", built.Stats.TotalCandidates)
	}
	if built.Stats.SuppliersConsidered != 1 {
		t.Errorf("SuppliersConsidered = %d, want 1", built.Stats.SuppliersConsidered)
	}
}

func TestBuildErrorsWithoutSolverLines(t *testing.T) {
	policy := config.DefaultPolicy()
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			okLine(1, 10),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	if _, err := NewModelBuilder(policy, zap.NewNop()).Build(classify(t, policy, order)); err == nil {
		t.Error("expected error when no line is solver-eligible")
	}
}

func TestBuildMinOrderAmountConstraintAndAudit(t *testing.T) {
	policy := config.DefaultPolicy()
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			okLine(1, 10, entities.CandidateOffer{SupplierID: 1, PriceCents: 400}),
			okLine(2, 5, entities.CandidateOffer{SupplierID: 1, PriceCents: 400}),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{
			1: {Constraints: entities.SupplierConstraints{MinOrderAmountCents: 5000}},
		},
	}

	built, err := NewModelBuilder(policy, zap.NewNop()).Build(classify(t, policy, order))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(built.Audit.MinOrderAmount) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(built.Audit.MinOrderAmount))
	}
	audit := built.Audit.MinOrderAmount[0]
	if audit.SupplierID != 1 || audit.MinOrderCents != 5000 {
		t.Errorf("audit = %+v, want supplier 1 / 5000 cents", audit)
	}
	if len(audit.Lines) != 2 {
		t.Fatalf("audit lines = %d, want 2", len(audit.Lines))
	}
	// 10 * 4.00 + 5 * 4.00 = 60.00
	if audit.LineTotalSumCents != 6000 {
		t.Errorf("LineTotalSumCents = %d, want 6000", audit.LineTotalSumCents)
	}

	// 2 exactly-one + 2 linking + 1 min order amount.
	if built.Stats.Constraints != 5 {
		t.Errorf("Constraints = %d, want 5", built.Stats.Constraints)
	}

	// Both lines together clear the minimum: the model solves.
	res, err := solver.NewBranchAndBound().Solve(context.Background(), built.Model)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if res.Status != solver.Optimal {
		t.Errorf("Status = %s, want OPTIMAL", res.Status)
	}
}

func TestBuildAndSolveInfeasibleMinOrderAmount(t *testing.T) {
	// A single 40.00 line against a 50.00 minimum has no valid assignment.
	policy := config.DefaultPolicy()
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			okLine(1, 10, entities.CandidateOffer{SupplierID: 1, PriceCents: 400}),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{
			1: {Constraints: entities.SupplierConstraints{MinOrderAmountCents: 5000}},
		},
	}

	built, err := NewModelBuilder(policy, zap.NewNop()).Build(classify(t, policy, order))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	res, err := solver.NewBranchAndBound().Solve(context.Background(), built.Model)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if res.Status != solver.Infeasible {
		t.Errorf("Status = %s, want INFEASIBLE", res.Status)
	}
}

func TestBuildContainerMatchObjective(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.OptimizationPriority = config.PriorityContainerMatch

	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			okLine(1, 10,
				entities.CandidateOffer{SupplierID: 1, PriceCents: 500, PackMatchStatus: entities.PackMatchAlike},
				entities.CandidateOffer{SupplierID: 2, PriceCents: 500, PackMatchStatus: entities.PackMatchExact},
			),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	built, err := NewModelBuilder(policy, zap.NewNop()).Build(classify(t, policy, order))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 2 supplier terms at the dominant weight plus 1 alike penalty.
	if len(built.Model.Objective) != 3 {
		t.Fatalf("objective terms = %d, want 3", len(built.Model.Objective))
	}
	weights := 0
	penalties := 0
	for _, term := range built.Model.Objective {
		switch term.Coef {
		case supplierCountWeight:
			weights++
		case 1:
			penalties++
		}
	}
	if weights != 2 || penalties != 1 {
		t.Errorf("objective = %d weighted / %d penalty terms, want 2/1", weights, penalties)
	}

	// The exact-match candidate wins: same supplier count, no penalty.
	res, err := solver.NewBranchAndBound().Solve(context.Background(), built.Model)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if res.Status != solver.Optimal {
		t.Fatalf("Status = %s, want OPTIMAL", res.Status)
	}
	solution := NewModelBuilder(policy, zap.NewNop()).Decode(built, res)
	if len(solution.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1", len(solution.Assignments))
	}
	if solution.Assignments[0].SupplierID != 2 {
		t.Errorf("chosen supplier = %d, want the exact-match supplier 2", solution.Assignments[0].SupplierID)
	}
	if res.Objective != supplierCountWeight {
		t.Errorf("Objective = %d, want %d", res.Objective, supplierCountWeight)
	}
}

func TestDecodeSortsAssignmentsByLine(t *testing.T) {
	policy := config.DefaultPolicy()
	order := &entities.MatchedOrder{
		OrderID: "ORD-1",
		Lines: []entities.MatchedLine{
			okLine(3, 5, entities.CandidateOffer{SupplierID: 1, PriceCents: 300}),
			okLine(1, 10, entities.CandidateOffer{SupplierID: 1, PriceCents: 500}),
			okLine(2, 7, entities.CandidateOffer{SupplierID: 1, PriceCents: 400}),
		},
		Suppliers: map[entities.SupplierID]entities.SupplierRuleSet{},
	}

	builder := NewModelBuilder(policy, zap.NewNop())
	built, err := builder.Build(classify(t, policy, order))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	res, err := solver.NewBranchAndBound().Solve(context.Background(), built.Model)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !res.Status.Found() {
		t.Fatalf("Status = %s, want a solution", res.Status)
	}

	solution := builder.Decode(built, res)
	if solution.NumSuppliers != 1 {
		t.Errorf("NumSuppliers = %d, want 1", solution.NumSuppliers)
	}
	if len(solution.Assignments) != 3 {
		t.Fatalf("assignments = %d, want 3", len(solution.Assignments))
	}
	for i, want := range []int{1, 2, 3} {
		if solution.Assignments[i].LineNo != want {
			t.Errorf("assignment %d line = %d, want %d", i, solution.Assignments[i].LineNo, want)
		}
	}
	if solution.Status != entities.SolutionOptimal {
		t.Errorf("solution status = %s, want %s", solution.Status, entities.SolutionOptimal)
	}
}
