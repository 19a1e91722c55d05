package qp

import (
	"errors"
	"math"

	"github.com/lanl-ansi/RestartSQP/linalg"
)

// ErrNoDirtyFlag is raised by Solve when none of the six update_* methods
// has been called since the last Solve, since that means the driver is
// about to re-solve a QP identical to the one it already has the answer
// to (spec.md §4.1 step 1's defensive requirement).
var ErrNoDirtyFlag = errors.New("qp: solve called with no dirty update flag set")

// ErrEngineUnavailable is returned by a stub Engine selection for a QP
// solver this module does not implement (QORE/qpOASES/GUROBI/CPLEX).
var ErrEngineUnavailable = errors.New("qp: requested engine is not available in this build")

// dirty tracks which of Handler's six narrow update_* methods have been
// called since the handler was last solved.
type dirty struct {
	A, H, Grad, Bounds, Delta, Penalty bool
}

func (d dirty) any() bool {
	return d.A || d.H || d.Grad || d.Bounds || d.Delta || d.Penalty
}

// Handler owns the data of the SL1QP trust-region subproblem (spec.md
// §4.6): it builds the augmented decision vector z=[p;u+;u-], maintains
// the fixed [J | -I | +I] slack injection, and hands the assembled
// Problem to an Engine. It never reconstructs what the driver has not
// told it changed.
type Handler struct {
	n, m int

	jac   *linalg.Triplet // J, the raw constraint Jacobian, n columns
	hess  *linalg.Triplet // H, upper-triangle, or nil for the LP handler
	grad  []float64       // g, length n

	cLower, cUpper []float64 // c_l - c_k, c_u - c_k, length m
	xLower, xUpper []float64 // x_l - x_k, x_u - x_k, length n
	delta          float64
	penalty        float64

	engine Engine
	flags  dirty
	solved bool

	// hessComp/jacComp are the Compressed forms of the augmented
	// Hessian/Jacobian, rebuilt via linalg.Compress (which sorts) only the
	// first time or after the sparsity pattern changes size; every other
	// solve refreshes values in place via ApplyValues, which does not
	// re-sort. hessNNZ/jacNNZ record the entry count Compress last saw, so
	// a structural change is detected cheaply.
	hessComp          *linalg.Compressed
	jacComp           *linalg.Compressed
	hessNNZ, jacNNZ   int

	lastSol  *Solution
	lastProb *Problem
}

// NewHandler builds a Handler for a problem with n variables and m
// constraint rows. A Handler whose UpdateH is never called (or is called
// with nil) has no Hessian and is the LP handler described at the end of
// spec.md §4.6 (used by the penalty-update Case-A/B probe).
func NewHandler(n, m int, engine Engine) *Handler {
	if engine == nil {
		engine = NewDefaultEngine()
	}
	return &Handler{
		n:      n,
		m:      m,
		engine: engine,
		grad:   make([]float64, n),
		cLower: make([]float64, m),
		cUpper: make([]float64, m),
		xLower: make([]float64, n),
		xUpper: make([]float64, n),
	}
}

// UpdateA replaces the constraint Jacobian J. Solve rebuilds the augmented
// [J | -I | +I] system from J on every call, appending the slack identity
// blocks after J's entries each time.
func (h *Handler) UpdateA(jac *linalg.Triplet) {
	h.jac = jac
	h.flags.A = true
}

// UpdateH replaces the Hessian of the Lagrangian (upper triangle, or nil
// to degrade to the LP handler).
func (h *Handler) UpdateH(hess *linalg.Triplet) {
	h.hess = hess
	h.flags.H = true
}

// UpdateGrad replaces the linearization gradient g.
func (h *Handler) UpdateGrad(grad []float64) {
	copy(h.grad, grad)
	h.flags.Grad = true
}

// UpdateBounds replaces the linearized constraint bounds c_l-c_k, c_u-c_k
// and variable bounds x_l-x_k, x_u-x_k.
func (h *Handler) UpdateBounds(cLower, cUpper, xLower, xUpper []float64) {
	copy(h.cLower, cLower)
	copy(h.cUpper, cUpper)
	copy(h.xLower, xLower)
	copy(h.xUpper, xUpper)
	h.flags.Bounds = true
}

// UpdateDelta replaces the trust-region radius δ, which tightens the
// variable-bound rows max(x_l-x_k, -δ·1) ≤ p ≤ min(x_u-x_k, δ·1).
func (h *Handler) UpdateDelta(delta float64) {
	h.delta = delta
	h.flags.Delta = true
}

// UpdatePenalty replaces the ℓ1 penalty weight ρ on the slack objective
// term ρ·1ᵀ(u++u-).
func (h *Handler) UpdatePenalty(penalty float64) {
	h.penalty = penalty
	h.flags.Penalty = true
}

// Solve assembles the augmented Problem and calls the Engine. It panics
// with ErrNoDirtyFlag if called twice in a row with no update_* call in
// between, mirroring spec.md §4.1 step 1's defensive requirement that the
// driver never reconstructs what has not changed — and never re-solves
// what it has not changed either.
func (h *Handler) Solve(warmStart bool) (*Solution, Status) {
	if h.solved && !h.flags.any() {
		panic(ErrNoDirtyFlag)
	}

	n, m := h.n, h.m
	p := &Problem{
		N: n + 2*m,
		M: m,
		G: make([]float64, n+2*m),
	}

	copy(p.G, h.grad)
	for i := 0; i < m; i++ {
		p.G[n+i] = h.penalty
		p.G[n+m+i] = h.penalty
	}

	if h.hess != nil {
		aug := linalg.NewTriplet(n+2*m, n+2*m)
		aug.SymmetricUpper = true
		h.hess.Each(func(r, c int, v float64) {
			aug.Append(r, c, v)
		})
		if h.hessComp == nil || aug.NNZ() != h.hessNNZ {
			h.hessComp = linalg.Compress(aug)
			h.hessNNZ = aug.NNZ()
		} else {
			h.hessComp.ApplyValues(aug)
		}
		p.H = h.hessComp
	} else {
		h.hessComp = nil
		h.hessNNZ = 0
	}

	a := linalg.NewTriplet(m, n+2*m)
	if h.jac != nil {
		h.jac.Each(func(r, c int, v float64) {
			a.Append(r, c, v)
		})
	}
	inj := linalg.Injection{Size: m, RowA: 0, ColA: n + m, RowB: 0, ColB: n}
	a.InjectIdentities(inj)
	if h.jacComp == nil || a.NNZ() != h.jacNNZ {
		h.jacComp = linalg.Compress(a)
		h.jacNNZ = a.NNZ()
	} else {
		h.jacComp.ApplyValues(a)
	}
	p.A = h.jacComp
	p.ALower = make([]float64, m)
	p.AUpper = make([]float64, m)
	copy(p.ALower, h.cLower)
	copy(p.AUpper, h.cUpper)

	p.Lower = make([]float64, n+2*m)
	p.Upper = make([]float64, n+2*m)
	for i := 0; i < n; i++ {
		p.Lower[i] = math.Max(h.xLower[i], -h.delta)
		p.Upper[i] = math.Min(h.xUpper[i], h.delta)
	}
	for i := n; i < n+2*m; i++ {
		p.Lower[i] = 0
		p.Upper[i] = math.NaN()
	}

	sol, status := h.engine.Solve(p, warmStart)
	h.flags = dirty{}
	h.solved = true
	h.lastSol = sol
	h.lastProb = p
	return sol, status
}

// GetOptimalSolution returns the augmented solution z=[p;u+;u-], length
// n+2m.
func (h *Handler) GetOptimalSolution() []float64 {
	if h.lastSol == nil {
		return nil
	}
	return h.lastSol.Z
}

// GetConstraintsMultipliers returns μ_cons, length m.
func (h *Handler) GetConstraintsMultipliers() []float64 {
	if h.lastSol == nil {
		return nil
	}
	return h.lastSol.RowMultipliers
}

// GetBoundsMultipliers returns μ_var, length n, copied directly from the
// Engine's reported ColMultipliers. It does not reconstruct multipliers
// from the stationarity condition when the Engine leaves them unset.
func (h *Handler) GetBoundsMultipliers() []float64 {
	if h.lastSol == nil {
		return nil
	}
	n := h.n
	mu := make([]float64, n)
	copy(mu, h.lastSol.ColMultipliers[:n])
	return mu
}

// GetObjective returns the QP's optimal objective value.
func (h *Handler) GetObjective() float64 {
	if h.lastSol == nil {
		return math.NaN()
	}
	return h.lastSol.Objective
}

// GetInfeaMeasureModel returns 1ᵀ(u++u-), the model's predicted
// constraint infeasibility measure.
func (h *Handler) GetInfeaMeasureModel() float64 {
	if h.lastSol == nil {
		return math.NaN()
	}
	n, m := h.n, h.m
	z := h.lastSol.Z
	s := 0.0
	for i := n; i < n+2*m; i++ {
		s += z[i]
	}
	return s
}
