package entities

// PackMatchStatus describes how well a candidate's pack/container matches
// the requested one.
type PackMatchStatus string

const (
	PackMatchExact PackMatchStatus = "exactly"
	PackMatchAlike PackMatchStatus = "alike"
)

// RejectionReason is a closed enumeration of machine-checkable reasons a
// candidate is rejected or a line cannot be closed.
type RejectionReason string

const (
	ReasonInsufficientQuantity RejectionReason = "insufficient_quantity"
	ReasonBelowMinLineQty      RejectionReason = "below_min_line_qty"
	ReasonPriceAboveMargin     RejectionReason = "price_above_margin"
	ReasonSupplierBlacklisted  RejectionReason = "supplier_blacklisted"
	ReasonFilteredOutByPolicy  RejectionReason = "filtered_out_by_policy"
	ReasonMinOrderAmountRisk   RejectionReason = "min_order_amount_risk"

	// Line-level reasons emitted by status evaluation and reconciliation.
	ReasonNoAvailableCandidates RejectionReason = "no_available_candidates"
	ReasonMinOrderAmountNotMet  RejectionReason = "min_order_amount_not_met"
	ReasonUnknownPlant          RejectionReason = "unknown_plant"
	ReasonLowConfidenceMatch    RejectionReason = "low_confidence_match"
	ReasonNoCandidatesRaw       RejectionReason = "no_candidates_raw"
)

// ReasonPriority is the fixed order in which per-candidate rejection reasons
// are rolled up into line-level status entries.
var ReasonPriority = []RejectionReason{
	ReasonInsufficientQuantity,
	ReasonBelowMinLineQty,
	ReasonPriceAboveMargin,
	ReasonSupplierBlacklisted,
	ReasonFilteredOutByPolicy,
	ReasonMinOrderAmountRisk,
	ReasonNoAvailableCandidates,
}

// ReasonEntry pairs a reason code with its structured details.
type ReasonEntry struct {
	Code    RejectionReason `json:"code"`
	Details any             `json:"details,omitempty"`
}

// AvailabilityDetails explains an insufficient-quantity outcome.
type AvailabilityDetails struct {
	SupplierID  SupplierID `json:"supplier_id"`
	Requested   int64      `json:"requested"`
	Available   *int64     `json:"available"`
	ShortagePct *float64   `json:"shortage_pct,omitempty"`
}

// MinLineQtyDetails explains a below-minimum-line-quantity rejection.
type MinLineQtyDetails struct {
	SupplierID SupplierID `json:"supplier_id"`
	Qty        int64      `json:"qty"`
	MinLineQty int64      `json:"min_line_qty"`
}

// PriceMarginDetails explains a price-above-margin rejection.
type PriceMarginDetails struct {
	SupplierID      SupplierID `json:"supplier_id"`
	Price           float64    `json:"price"`
	MaxAllowedPrice float64    `json:"max_allowed_price"`
}

// BlacklistDetails explains a supplier-blacklisted rejection.
type BlacklistDetails struct {
	SupplierID SupplierID `json:"supplier_id"`
}

// PolicyFilterDetails explains a filtered-out-by-policy rejection.
type PolicyFilterDetails struct {
	SupplierID SupplierID `json:"supplier_id"`
	Policies   []string   `json:"policies"`
}

// MinOrderAmountRisk is the soft annotation recorded when a single line
// cannot reach a supplier's minimum order amount on its own. It does not
// disqualify the candidate; the assignment model enforces the minimum as a
// hard supplier-level constraint instead.
type MinOrderAmountRisk struct {
	SupplierID           SupplierID `json:"supplier_id"`
	RequiredAmountCents  Cents      `json:"required_amount_cents"`
	ActualAmountCents    Cents      `json:"actual_amount_cents"`
	DeltaAmountCents     Cents      `json:"delta_amount_cents"`
	SuggestedQtyIncrease int64      `json:"suggested_qty_increase"`
}

// LineRisk ties a minimum-order-amount risk back to its order line.
type LineRisk struct {
	LineNo int `json:"line_no"`
	MinOrderAmountRisk
}

// CandidateOffer is one supplier's proposal to fulfil one order line.
// AvailabilityQty nil means the supplier did not cap availability.
type CandidateOffer struct {
	SupplierID      SupplierID       `json:"supplier_id"`
	PriceCents      Cents            `json:"price_cents"`
	AvailabilityQty *int64           `json:"availability_qty,omitempty"`
	PackCode        string           `json:"pack_code,omitempty"`
	PackMatchStatus PackMatchStatus  `json:"pack_match_status,omitempty"`
	PolicyFilters   []string         `json:"policy_filters,omitempty"`
	RuleOverride    *SupplierRuleSet `json:"-"`
}

// ClassifiedCandidate is a candidate offer enriched with the classification
// verdict. RejectionReasons holds hard reasons only (ordered, first one is
// primary); ReasonDetails additionally carries the soft min-order-amount
// risk entry when present.
type ClassifiedCandidate struct {
	CandidateOffer

	IsAvailable       bool                `json:"is_available"`
	SufficientQty     bool                `json:"sufficient_qty"`
	ShortagePct       *float64            `json:"shortage_pct,omitempty"`
	LineTotalCents    Cents               `json:"line_total_cents"`
	EligibleForSolver bool                `json:"eligible_for_solver"`
	RejectionReasons  []RejectionReason   `json:"rejection_reasons,omitempty"`
	ReasonDetails     []ReasonEntry       `json:"reason_details,omitempty"`
	MinOrderRisk      *MinOrderAmountRisk `json:"min_order_amount_risk,omitempty"`
}

// PrimaryRejection returns the first (primary) rejection reason, or "" when
// the candidate is eligible.
func (c *ClassifiedCandidate) PrimaryRejection() RejectionReason {
	if len(c.RejectionReasons) == 0 {
		return ""
	}
	return c.RejectionReasons[0]
}

// EnrichedLine is an order line after classification, carrying all
// classified candidates plus per-line aggregates.
type EnrichedLine struct {
	OrderLine

	MaxAllowedPriceCents *Cents                  `json:"max_allowed_price_cents,omitempty"`
	Candidates           []ClassifiedCandidate   `json:"candidates_all"`
	RejectionSummary     map[RejectionReason]int `json:"rejection_summary"`
	Risks                []LineRisk              `json:"min_order_amount_risks,omitempty"`
	GoesToSolver         bool                    `json:"goes_to_solver"`
}

// Eligible returns the candidates with zero hard rejection reasons.
func (l *EnrichedLine) Eligible() []ClassifiedCandidate {
	var out []ClassifiedCandidate
	for _, c := range l.Candidates {
		if c.EligibleForSolver {
			out = append(out, c)
		}
	}
	return out
}

// EligibleCount returns the number of solver-eligible candidates.
func (l *EnrichedLine) EligibleCount() int {
	n := 0
	for _, c := range l.Candidates {
		if c.EligibleForSolver {
			n++
		}
	}
	return n
}

// EnrichedOrder is the classifier output consumed by status evaluation and
// model building.
type EnrichedOrder struct {
	OrderID   string                         `json:"order_id"`
	Lines     []EnrichedLine                 `json:"items"`
	Suppliers map[SupplierID]SupplierRuleSet `json:"-"`
	Stats     OrderStats                     `json:"stats"`
}

// Risks collects every min-order-amount risk recorded across the order.
func (o *EnrichedOrder) AllRisks() []LineRisk {
	var out []LineRisk
	for i := range o.Lines {
		out = append(out, o.Lines[i].Risks...)
	}
	return out
}
