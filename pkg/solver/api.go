// Package solver provides a generic optimization backend for boolean
// assignment models: boolean variables, linear constraints over integer
// coefficients, and a linear objective to minimize.
package solver

import (
	"context"
	"fmt"
	"time"
)

// Status is the backend verdict for a solve call.
type Status int

const (
	// Optimal means the returned assignment is proven optimal.
	Optimal Status = iota
	// Feasible means the assignment is valid but not proven optimal
	// (typically because the time budget ran out).
	Feasible
	// Infeasible means no assignment can satisfy the constraints.
	Infeasible
	// Unknown means the time budget ran out before any assignment was found.
	Unknown
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case Unknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// Found reports whether the status carries a usable variable assignment.
func (s Status) Found() bool {
	return s == Optimal || s == Feasible
}

// VarID indexes a boolean variable within a model.
type VarID int

// Var is a boolean decision variable.
type Var struct {
	Name string
}

// Term is coef * var within a linear expression.
type Term struct {
	Var  VarID
	Coef int64
}

// Op is a linear constraint comparison operator.
type Op int

const (
	GE Op = iota // sum >= bound
	LE           // sum <= bound
	EQ           // sum == bound
)

// Constraint is a linear constraint sum(terms) op bound.
type Constraint struct {
	Name  string
	Terms []Term
	Op    Op
	Bound int64
}

// Model is a boolean assignment problem. Build it fresh per solve; it is
// not safe for concurrent mutation.
type Model struct {
	Vars        []Var
	Constraints []Constraint
	Objective   []Term // minimized
	TimeBudget  time.Duration
}

// NewBoolVar appends a boolean variable and returns its id.
func (m *Model) NewBoolVar(name string) VarID {
	m.Vars = append(m.Vars, Var{Name: name})
	return VarID(len(m.Vars) - 1)
}

// AddConstraint appends a constraint to the model.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// Validate checks the model for out-of-range variable references.
func (m *Model) Validate() error {
	check := func(where string, terms []Term) error {
		for _, t := range terms {
			if t.Var < 0 || int(t.Var) >= len(m.Vars) {
				return fmt.Errorf("%s references unknown variable %d", where, t.Var)
			}
		}
		return nil
	}
	for _, c := range m.Constraints {
		if err := check("constraint "+c.Name, c.Terms); err != nil {
			return err
		}
	}
	return check("objective", m.Objective)
}

// Result is the outcome of a solve call. Values is indexed by VarID and is
// populated whenever Status.Found() is true.
type Result struct {
	Status    Status
	Values    []bool
	Objective int64
	WallTime  time.Duration
}

// Backend solves boolean assignment models within the model's time budget.
// On budget exhaustion it returns the best incumbent as Feasible, or
// Unknown if none was found; it never hangs.
type Backend interface {
	Solve(ctx context.Context, m *Model) (*Result, error)
}
