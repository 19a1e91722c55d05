package qp

import "github.com/lanl-ansi/RestartSQP/linalg"

// Problem is the two-sided-constrained, two-sided-bounded QP an Engine
// solves:
//
//	min ½zᵀHz + gᵀz  s.t.  ALower ≤ Az ≤ AUpper,  Lower ≤ z ≤ Upper
//
// This is the exact shape spec.md §4.6 describes for the augmented SL1QP
// subproblem after the Handler has folded the ℓ1-penalty slacks u+,u- into
// z and A. H may be nil, meaning the all-zero Hessian (an LP), the shape
// myLP_ takes in original_source's Algorithm.
//
// H and A arrive as Compressed rather than Triplet: the Handler keeps one
// Compressed form per matrix across solves and refreshes it through
// ApplyValues instead of re-deriving the compressed pattern (and re-sorting
// it) on every call, the precomputed-order[] mechanism spec.md §2's QP
// Builder component is built around.
type Problem struct {
	N, M int

	H *linalg.Compressed // N×N, SymmetricUpper, or nil
	G []float64           // length N

	A *linalg.Compressed // M×N
	ALower, AUpper []float64 // length M; NaN endpoint means unbounded

	Lower, Upper []float64 // length N; NaN endpoint means unbounded
}

// Solution is what an Engine hands back.
type Solution struct {
	Z []float64 // primal solution, length N

	// RowMultipliers are the constraint multipliers, signed per the
	// convention μ ≥ 0 when the lower bound is active, μ ≤ 0 when the
	// upper bound is active (spec.md §4.4).
	RowMultipliers []float64 // length M

	// ColMultipliers are the bound multipliers for z, same sign
	// convention.
	ColMultipliers []float64 // length N

	Objective float64
}

// Engine is the abstracted QP/LP solver contract: anything from the
// module's own defaultEngine to a QORE/qpOASES/GUROBI/CPLEX binding could
// implement it.
type Engine interface {
	Solve(p *Problem, warmStart bool) (*Solution, Status)
}

// EngineFunc adapts a plain function to the Engine interface.
type EngineFunc func(p *Problem, warmStart bool) (*Solution, Status)

func (f EngineFunc) Solve(p *Problem, warmStart bool) (*Solution, Status) {
	return f(p, warmStart)
}
