package solver

import (
	"context"
	"time"
)

// BranchAndBound is an exact backend: depth-first search over variable
// assignments with constraint-bound and objective-bound pruning. Search
// order is fixed, so results are deterministic for a given model.
type BranchAndBound struct {
	// CheckInterval is how many nodes are expanded between deadline
	// checks. Zero means the default of 1024.
	CheckInterval int
}

// NewBranchAndBound creates a backend with default settings.
func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{}
}

var _ Backend = (*BranchAndBound)(nil)

type conState struct {
	op     Op
	bound  int64
	cur    int64 // sum over assigned terms
	minRem int64 // min achievable sum over unassigned terms
	maxRem int64 // max achievable sum over unassigned terms
}

type varTerm struct {
	con  int // constraint index, -1 for the objective
	coef int64
}

type bnbSearch struct {
	cons      []conState
	byVar     [][]varTerm
	values    []bool
	objCur    int64
	objMinRem int64

	best    []bool
	bestObj int64
	hasBest bool

	deadline time.Time
	ctx      context.Context
	interval int
	nodes    int
	timedOut bool
}

// Solve runs the search. The model's TimeBudget bounds wall-clock time; a
// context deadline, if earlier, wins.
func (b *BranchAndBound) Solve(ctx context.Context, m *Model) (*Result, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	budget := m.TimeBudget
	if budget <= 0 {
		budget = time.Minute
	}
	deadline := start.Add(budget)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	interval := b.CheckInterval
	if interval <= 0 {
		interval = 1024
	}

	s := &bnbSearch{
		cons:     make([]conState, len(m.Constraints)),
		byVar:    make([][]varTerm, len(m.Vars)),
		values:   make([]bool, len(m.Vars)),
		deadline: deadline,
		ctx:      ctx,
		interval: interval,
	}

	for i, c := range m.Constraints {
		cs := conState{op: c.Op, bound: c.Bound}
		for _, t := range c.Terms {
			if t.Coef < 0 {
				cs.minRem += t.Coef
			} else {
				cs.maxRem += t.Coef
			}
			s.byVar[t.Var] = append(s.byVar[t.Var], varTerm{con: i, coef: t.Coef})
		}
		s.cons[i] = cs
	}
	for _, t := range m.Objective {
		if t.Coef < 0 {
			s.objMinRem += t.Coef
		}
		s.byVar[t.Var] = append(s.byVar[t.Var], varTerm{con: -1, coef: t.Coef})
	}

	if s.feasibleSoFar() {
		s.search(0)
	}

	res := &Result{WallTime: time.Since(start)}
	switch {
	case s.hasBest && !s.timedOut:
		res.Status = Optimal
	case s.hasBest:
		res.Status = Feasible
	case s.timedOut:
		res.Status = Unknown
	default:
		res.Status = Infeasible
	}
	if s.hasBest {
		res.Values = s.best
		res.Objective = s.bestObj
	}
	return res, nil
}

func (s *bnbSearch) expired() bool {
	if s.timedOut {
		return true
	}
	s.nodes++
	if s.nodes%s.interval != 0 {
		return false
	}
	if time.Now().After(s.deadline) || s.ctx.Err() != nil {
		s.timedOut = true
	}
	return s.timedOut
}

// feasibleSoFar checks whether every constraint can still be satisfied by
// some completion of the current partial assignment.
func (s *bnbSearch) feasibleSoFar() bool {
	for i := range s.cons {
		if !s.cons[i].open() {
			return false
		}
	}
	return true
}

func (cs *conState) open() bool {
	switch cs.op {
	case GE:
		return cs.cur+cs.maxRem >= cs.bound
	case LE:
		return cs.cur+cs.minRem <= cs.bound
	case EQ:
		return cs.cur+cs.maxRem >= cs.bound && cs.cur+cs.minRem <= cs.bound
	}
	return false
}

func (s *bnbSearch) search(depth int) {
	if s.expired() {
		return
	}

	// Objective lower bound prune.
	if s.hasBest && s.objCur+s.objMinRem >= s.bestObj {
		return
	}

	if depth == len(s.values) {
		best := make([]bool, len(s.values))
		copy(best, s.values)
		s.best = best
		s.bestObj = s.objCur
		s.hasBest = true
		return
	}

	// Try false first: with non-negative objective coefficients this
	// reaches cheap solutions sooner.
	for _, value := range [2]bool{false, true} {
		s.values[depth] = value
		ok := true
		for _, vt := range s.byVar[depth] {
			if vt.con < 0 {
				if value {
					s.objCur += vt.coef
				}
				if vt.coef < 0 {
					s.objMinRem -= vt.coef
				}
				continue
			}
			cs := &s.cons[vt.con]
			if value {
				cs.cur += vt.coef
			}
			if vt.coef < 0 {
				cs.minRem -= vt.coef
			} else {
				cs.maxRem -= vt.coef
			}
			if !cs.open() {
				ok = false
			}
		}

		if ok {
			s.search(depth + 1)
		}

		for _, vt := range s.byVar[depth] {
			if vt.con < 0 {
				if value {
					s.objCur -= vt.coef
				}
				if vt.coef < 0 {
					s.objMinRem += vt.coef
				}
				continue
			}
			cs := &s.cons[vt.con]
			if value {
				cs.cur -= vt.coef
			}
			if vt.coef < 0 {
				cs.minRem += vt.coef
			} else {
				cs.maxRem += vt.coef
			}
		}

		if s.timedOut {
			return
		}
	}
}
