package entities

// SupplierID identifies a supplier across the order payload.
type SupplierID int64

// SupplierConstraints are the hard business constraints a supplier imposes.
// Zero values mean the constraint is not configured.
type SupplierConstraints struct {
	MinLineQty          int64 `json:"min_line_qty,omitempty"`
	MinOrderAmountCents Cents `json:"min_order_amount_cents,omitempty"`
}

// SupplierPolicies are policy-level switches attached to a supplier.
type SupplierPolicies struct {
	Blacklisted bool     `json:"blacklisted,omitempty"`
	Filters     []string `json:"filters,omitempty"`
}

// SupplierRuleSet is the per-supplier rule bundle, read-only during a run.
// Discounts and Extra are opaque pass-through blobs owned by other systems.
type SupplierRuleSet struct {
	Constraints SupplierConstraints `json:"constraints"`
	Policies    SupplierPolicies    `json:"policies"`
	Discounts   map[string]any      `json:"discounts,omitempty"`
	Extra       map[string]any      `json:"extra,omitempty"`
}
