package entities

// MatchStatus classifies how confidently an order line was resolved against
// the product catalog by the upstream matching collaborator.
type MatchStatus string

const (
	MatchOK             MatchStatus = "ok"
	MatchLowConfidence  MatchStatus = "low_confidence"
	MatchNoMatch        MatchStatus = "no_match"
	MatchManualOverride MatchStatus = "manual_override"
)

// Resolved reports whether the line match is settled enough for assignment.
func (m MatchStatus) Resolved() bool {
	return m == MatchOK || m == MatchManualOverride
}

// Valid reports whether m is one of the known match statuses.
func (m MatchStatus) Valid() bool {
	switch m {
	case MatchOK, MatchLowConfidence, MatchNoMatch, MatchManualOverride:
		return true
	}
	return false
}

// OrderStatus is the overall fulfilment status of an order.
type OrderStatus string

const (
	// FullyClosed means every line is matched with sufficient quantity.
	FullyClosed OrderStatus = "fully_closed"
	// PartiallyClosed means at least one line can only be covered partially.
	PartiallyClosed OrderStatus = "partially_closed"
	// CannotClose means at least one line has no workable outcome.
	CannotClose OrderStatus = "cannot_close"
)

// MatchInfo carries the match outcome for one order line.
type MatchInfo struct {
	Status MatchStatus `json:"status"`
	Score  *float64    `json:"score,omitempty"`
}

// OrderLine is one requested item within an order. Immutable once matching
// completes; classification annotates copies, never the line itself.
type OrderLine struct {
	LineNo            int       `json:"line_no"`
	RequestedQty      int64     `json:"qty"`
	Match             MatchInfo `json:"match"`
	RawCandidateCount int       `json:"candidates_raw_count"`
}

// MatchedLine is an order line together with the raw candidate offers the
// retrieval collaborator produced for it.
type MatchedLine struct {
	OrderLine
	Candidates []CandidateOffer
}

// MatchedOrder is the validated input to classification: lines with raw
// candidates plus the supplier rule sets referenced by them.
type MatchedOrder struct {
	OrderID   string
	Lines     []MatchedLine
	Suppliers map[SupplierID]SupplierRuleSet
}

// RulesFor returns the effective rule set for a candidate: a per-candidate
// override wins over the order-level supplier entry.
func (o *MatchedOrder) RulesFor(c *CandidateOffer) SupplierRuleSet {
	if c.RuleOverride != nil {
		return *c.RuleOverride
	}
	return o.Suppliers[c.SupplierID]
}

// OrderStats summarizes classification outcomes across an order.
type OrderStats struct {
	TotalItems          int `json:"total_items"`
	ItemsWithCandidates int `json:"items_with_candidates"`
	ItemsForSolver      int `json:"items_for_solver"`
	ItemsCannotSolve    int `json:"items_cannot_solve"`
}
