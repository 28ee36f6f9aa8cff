// Package dto defines the external contracts of the order processing
// pipeline: the matched-order input payload and the processing result.
package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/supplymatch/orderassign/pkg/domain/entities"
)

// OrderPayload is the input contract from the matching/candidate-retrieval
// collaborator: one order with matched items, their candidate offers, and
// the supplier rule sets referenced by them.
type OrderPayload struct {
	OrderID   string            `json:"order_id"`
	Items     []ItemPayload     `json:"items"`
	Suppliers []SupplierPayload `json:"suppliers"`
}

// ItemPayload is one requested line with its match outcome and candidates.
type ItemPayload struct {
	LineNo     int                `json:"line_no"`
	Qty        int64              `json:"qty"`
	Match      MatchPayload       `json:"match"`
	Candidates []CandidatePayload `json:"candidates"`
}

// MatchPayload is the upstream fuzzy-match outcome for a line. Status may
// be empty when only a score is supplied; classification derives it then.
type MatchPayload struct {
	Status string   `json:"status,omitempty"`
	Score  *float64 `json:"score,omitempty"`
}

// CandidatePayload is one supplier offer for a line.
type CandidatePayload struct {
	SupplierID      int64                 `json:"supplier_id"`
	Price           *decimal.Decimal      `json:"price"`
	AvailabilityQty *int64                `json:"availability_qty,omitempty"`
	PackCode        string                `json:"pack_code,omitempty"`
	PackMatchStatus string                `json:"pack_match_status,omitempty"`
	PolicyFilters   []string              `json:"policy_filters,omitempty"`
	SupplierRules   *SupplierRulesPayload `json:"supplier_rules,omitempty"`
}

// SupplierPayload is an order-level supplier entry.
type SupplierPayload struct {
	SupplierID int64                `json:"supplier_id"`
	Rules      SupplierRulesPayload `json:"rules"`
}

// SupplierRulesPayload mirrors the supplier rule set wire shape.
type SupplierRulesPayload struct {
	Constraints ConstraintsPayload `json:"constraints"`
	Policies    PoliciesPayload    `json:"policies"`
	Discounts   map[string]any     `json:"discounts,omitempty"`
	Extra       map[string]any     `json:"extra,omitempty"`
}

// ConstraintsPayload holds supplier hard constraints.
type ConstraintsPayload struct {
	MinLineQty     *int64           `json:"min_line_qty,omitempty"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount,omitempty"`
}

// PoliciesPayload holds supplier policy switches.
type PoliciesPayload struct {
	Blacklisted bool     `json:"blacklisted,omitempty"`
	Filters     []string `json:"filters,omitempty"`
}

// Validate checks the payload for structural (data-shape) errors. A
// malformed line would corrupt downstream aggregate counts, so any defect
// fails the whole run.
func (p *OrderPayload) Validate() error {
	if p.OrderID == "" {
		return fmt.Errorf("payload missing order_id")
	}
	seen := make(map[int]struct{}, len(p.Items))
	for i, item := range p.Items {
		if item.LineNo <= 0 {
			return fmt.Errorf("item %d: line_no must be positive, got %d", i, item.LineNo)
		}
		if _, dup := seen[item.LineNo]; dup {
			return fmt.Errorf("duplicate line_no %d", item.LineNo)
		}
		seen[item.LineNo] = struct{}{}
		if item.Qty <= 0 {
			return fmt.Errorf("line %d: qty must be positive, got %d", item.LineNo, item.Qty)
		}
		if item.Match.Status == "" && item.Match.Score == nil {
			return fmt.Errorf("line %d: match requires a status or a score", item.LineNo)
		}
		if item.Match.Status != "" && !entities.MatchStatus(item.Match.Status).Valid() {
			return fmt.Errorf("line %d: unknown match status %q", item.LineNo, item.Match.Status)
		}
		for j, cand := range item.Candidates {
			if cand.SupplierID <= 0 {
				return fmt.Errorf("line %d candidate %d: missing supplier_id", item.LineNo, j)
			}
			if cand.Price == nil {
				return fmt.Errorf("line %d candidate %d: missing price", item.LineNo, j)
			}
			if cand.Price.IsNegative() {
				return fmt.Errorf("line %d candidate %d: negative price %s", item.LineNo, j, cand.Price)
			}
			if cand.AvailabilityQty != nil && *cand.AvailabilityQty < 0 {
				return fmt.Errorf(
					"line %d candidate %d: negative availability_qty %d",
					item.LineNo, j, *cand.AvailabilityQty,
				)
			}
		}
	}
	for i, s := range p.Suppliers {
		if s.SupplierID <= 0 {
			return fmt.Errorf("supplier %d: missing supplier_id", i)
		}
	}
	return nil
}

// ToDomain converts the validated payload into domain entities.
func (p *OrderPayload) ToDomain() (*entities.MatchedOrder, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	suppliers := make(map[entities.SupplierID]entities.SupplierRuleSet, len(p.Suppliers))
	for _, s := range p.Suppliers {
		suppliers[entities.SupplierID(s.SupplierID)] = s.Rules.toDomain()
	}

	order := &entities.MatchedOrder{
		OrderID:   p.OrderID,
		Suppliers: suppliers,
	}

	for _, item := range p.Items {
		line := entities.MatchedLine{
			OrderLine: entities.OrderLine{
				LineNo:       item.LineNo,
				RequestedQty: item.Qty,
				Match: entities.MatchInfo{
					Status: entities.MatchStatus(item.Match.Status),
					Score:  item.Match.Score,
				},
				RawCandidateCount: len(item.Candidates),
			},
		}
		for _, cand := range item.Candidates {
			offer := entities.CandidateOffer{
				SupplierID:      entities.SupplierID(cand.SupplierID),
				PriceCents:      entities.CentsFromDecimal(*cand.Price),
				AvailabilityQty: cand.AvailabilityQty,
				PackCode:        cand.PackCode,
				PackMatchStatus: entities.PackMatchStatus(cand.PackMatchStatus),
				PolicyFilters:   cand.PolicyFilters,
			}
			if cand.SupplierRules != nil {
				rules := cand.SupplierRules.toDomain()
				offer.RuleOverride = &rules
			}
			line.Candidates = append(line.Candidates, offer)
		}
		order.Lines = append(order.Lines, line)
	}

	return order, nil
}

func (r *SupplierRulesPayload) toDomain() entities.SupplierRuleSet {
	rules := entities.SupplierRuleSet{
		Policies: entities.SupplierPolicies{
			Blacklisted: r.Policies.Blacklisted,
			Filters:     r.Policies.Filters,
		},
		Discounts: r.Discounts,
		Extra:     r.Extra,
	}
	if r.Constraints.MinLineQty != nil {
		rules.Constraints.MinLineQty = *r.Constraints.MinLineQty
	}
	if r.Constraints.MinOrderAmount != nil {
		rules.Constraints.MinOrderAmountCents = entities.CentsFromDecimal(*r.Constraints.MinOrderAmount)
	}
	return rules
}
