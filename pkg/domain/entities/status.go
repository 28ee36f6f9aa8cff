package entities

// CannotCloseEntry records why a line landed in the cannot-close bucket.
// A line may accumulate several entries (one per reason code), and gains a
// min_order_amount_not_met entry if reconciliation demotes it later.
type CannotCloseEntry struct {
	LineNo  int             `json:"line_no"`
	Reason  RejectionReason `json:"reason"`
	Details any             `json:"details,omitempty"`
}

// MergedReasonDetails wraps per-candidate detail payloads when several
// candidates on a line share the same rejection reason.
type MergedReasonDetails struct {
	Candidates []any `json:"candidates"`
}

// StatusBreakdown buckets every order line into exactly one of three
// fulfilment outcomes. CannotClose may carry multiple entries per line.
type StatusBreakdown struct {
	FullyClosed     []int              `json:"fully_closed"`
	PartiallyClosed []int              `json:"partially_closed"`
	CannotClose     []CannotCloseEntry `json:"cannot_close"`
}

// StatusCounts are the derived distinct-line counts per bucket.
type StatusCounts struct {
	FullyClosed     int `json:"fully_closed"`
	PartiallyClosed int `json:"partially_closed"`
	CannotClose     int `json:"cannot_close"`
}

// StatusDetails is the order-level status report.
type StatusDetails struct {
	OrderStatus OrderStatus     `json:"order_status"`
	Breakdown   StatusBreakdown `json:"breakdown"`
	Counts      StatusCounts    `json:"counts"`
}

// RefreshCounts recomputes the per-bucket distinct-line counts. Must be
// called after any mutation of the breakdown buckets.
func (sd *StatusDetails) RefreshCounts() {
	cannot := make(map[int]struct{}, len(sd.Breakdown.CannotClose))
	for _, e := range sd.Breakdown.CannotClose {
		cannot[e.LineNo] = struct{}{}
	}
	sd.Counts = StatusCounts{
		FullyClosed:     len(sd.Breakdown.FullyClosed),
		PartiallyClosed: len(sd.Breakdown.PartiallyClosed),
		CannotClose:     len(cannot),
	}
}

// RemoveFromClosedBuckets drops the given lines from the fully-closed and
// partially-closed buckets, typically before demoting them to cannot-close.
func (sd *StatusDetails) RemoveFromClosedBuckets(lines map[int]struct{}) {
	sd.Breakdown.FullyClosed = removeLines(sd.Breakdown.FullyClosed, lines)
	sd.Breakdown.PartiallyClosed = removeLines(sd.Breakdown.PartiallyClosed, lines)
}

func removeLines(bucket []int, drop map[int]struct{}) []int {
	out := bucket[:0]
	for _, ln := range bucket {
		if _, ok := drop[ln]; !ok {
			out = append(out, ln)
		}
	}
	return out
}
