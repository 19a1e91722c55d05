// Package oracle adapts a user-supplied NLP callback set into the uniform
// view the sqp Driver needs: sizes, bounds, a starting point, and
// f/∇f/c/Jacobian/Hessian-of-the-Lagrangian evaluation. It is grounded on
// the callback contract slsqp.Problem exposes (Evaluation funcs taking x
// and writing into a caller-provided gradient slice), generalized to
// ranged constraints and an explicit sparse Jacobian/Hessian structure the
// way original_source's SQPTNLP abstracts a concrete NLP.
package oracle

import "github.com/lanl-ansi/RestartSQP/linalg"

// Sizes reports the problem's variable and constraint counts.
type Sizes struct {
	NumVariables   int
	NumConstraints int
	// NNZJacobian and NNZHessian give the number of nonzeros the oracle
	// will populate in GetJacobianStructure/GetHessianStructure, so the
	// caller can pre-size its sparse buffers once.
	NNZJacobian int
	NNZHessian  int
}

// Oracle is the uniform adapter contract the sqp Driver evaluates against.
// All vector arguments are caller-allocated; an Oracle implementation
// writes into them rather than returning fresh slices, mirroring the
// teacher's Evaluation callback shape.
type Oracle interface {
	GetSizes() Sizes

	// GetBounds writes the variable bounds x_l/x_u and constraint bounds
	// c_l/c_u. NaN denotes "no bound" in either direction.
	GetBounds(xLower, xUpper, cLower, cUpper []float64)

	// GetStartingPoint writes the initial iterate into x. If mult is
	// non-nil it additionally writes an initial multiplier guess.
	GetStartingPoint(x []float64, mult []float64)

	// EvalObjective returns f(x).
	EvalObjective(x []float64) (f float64)

	// EvalObjectiveGradient writes ∇f(x) into grad.
	EvalObjectiveGradient(x []float64, grad []float64)

	// EvalConstraints writes c(x) into c.
	EvalConstraints(x []float64, c []float64)

	// GetJacobianStructure writes the (row,col) sparsity pattern of the
	// constraint Jacobian, in the same order EvalJacobian will populate
	// values.
	GetJacobianStructure(rows, cols []int)

	// EvalJacobian writes the NNZJacobian nonzero values of the
	// constraint Jacobian at x, in GetJacobianStructure's order.
	EvalJacobian(x []float64, values []float64)

	// GetHessianStructure writes the (row,col) sparsity pattern of the
	// upper triangle of the Hessian of the Lagrangian.
	GetHessianStructure(rows, cols []int)

	// EvalHessian writes the NNZHessian nonzero values of the upper
	// triangle of ∇²ₓₓℒ(x,σ,λ) = σ∇²f(x) + Σⱼλⱼ∇²cⱼ(x) at x with objective
	// scale σ and constraint multipliers λ.
	EvalHessian(x []float64, objScale float64, lambda []float64, values []float64)
}

// JacobianTriplet evaluates o's Jacobian at x and returns it as a fresh
// linalg.Triplet, a convenience the sqp Driver uses at Initialize and on
// each accepted step.
func JacobianTriplet(o Oracle, x []float64) *linalg.Triplet {
	sz := o.GetSizes()
	rows := make([]int, sz.NNZJacobian)
	cols := make([]int, sz.NNZJacobian)
	vals := make([]float64, sz.NNZJacobian)
	o.GetJacobianStructure(rows, cols)
	o.EvalJacobian(x, vals)

	t := linalg.NewTriplet(sz.NumConstraints, sz.NumVariables)
	for i := range rows {
		t.Append(rows[i], cols[i], vals[i])
	}
	return t
}

// HessianTriplet evaluates o's Hessian of the Lagrangian at x and returns
// it as a fresh symmetric-upper linalg.Triplet.
func HessianTriplet(o Oracle, x []float64, objScale float64, lambda []float64) *linalg.Triplet {
	sz := o.GetSizes()
	rows := make([]int, sz.NNZHessian)
	cols := make([]int, sz.NNZHessian)
	vals := make([]float64, sz.NNZHessian)
	o.GetHessianStructure(rows, cols)
	o.EvalHessian(x, objScale, lambda, vals)

	t := linalg.NewTriplet(sz.NumVariables, sz.NumVariables)
	t.SymmetricUpper = true
	for i := range rows {
		r, c := rows[i], cols[i]
		if r > c {
			r, c = c, r
		}
		t.Append(r, c, vals[i])
	}
	return t
}
