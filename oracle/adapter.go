package oracle

import (
	"math"

	"github.com/lanl-ansi/RestartSQP/numdiff"
)

// Bound mirrors slsqp.Bound: a variable or constraint's [Lower, Upper]
// range. A NaN endpoint means that side is unbounded.
type Bound struct {
	Lower, Upper float64
}

// ObjectiveFunc evaluates f(x) and writes ∇f(x) into grad.
type ObjectiveFunc func(x []float64, grad []float64) (f float64)

// ConstraintFunc evaluates the m-vector c(x) and writes the constraint
// Jacobian (row-major, m×n) into jac.
type ConstraintFunc func(x []float64, c []float64, jac []float64)

// HessianFunc evaluates the dense n×n Hessian of the Lagrangian
// ∇²ₓₓℒ(x,σ,λ) = σ∇²f(x) + Σⱼλⱼ∇²cⱼ(x) into hess, a dense n×n row-major
// buffer (hess[i*n+j] = H(i,j)); only the upper-triangle entries j ≥ i
// are read.
type HessianFunc func(x []float64, objScale float64, lambda []float64, hess []float64)

// Definition is the plain-callback problem description most NLP users
// write by hand, in the spirit of slsqp.Problem's Evaluation callbacks.
// Adapter turns it into the sparse Oracle contract the Driver evaluates
// against, treating the dense Jacobian/Hessian as fully populated (every
// entry is a structural nonzero) the way a small hand-written NLP
// typically does.
type Definition struct {
	N, M    int
	XBounds []Bound
	CBounds []Bound
	X0      []float64

	Objective  ObjectiveFunc
	Constraint ConstraintFunc
	// Hessian is optional. When nil, EvalHessian falls back to a central
	// finite-difference approximation of the Lagrangian gradient, built
	// with numdiff the way a caller without analytic second derivatives
	// would in practice.
	Hessian HessianFunc
}

// Adapter wraps a Definition as an Oracle. Its methods call the user
// callbacks directly and do not recover panics; a callback panic becomes a
// *PanicErr only where the call runs inside SafeCall.
type Adapter struct {
	def Definition
}

// NewAdapter wraps def as an Oracle.
func NewAdapter(def Definition) *Adapter {
	return &Adapter{def: def}
}

// PanicErr records a recovered panic from a user callback.
type PanicErr struct {
	Recovered any
}

func (e *PanicErr) Error() string {
	return "oracle: callback panicked"
}

func (a *Adapter) GetSizes() Sizes {
	return Sizes{
		NumVariables:   a.def.N,
		NumConstraints: a.def.M,
		NNZJacobian:    a.def.M * a.def.N,
		NNZHessian:     a.def.N * (a.def.N + 1) / 2,
	}
}

func (a *Adapter) GetBounds(xLower, xUpper, cLower, cUpper []float64) {
	for i, b := range a.def.XBounds {
		xLower[i], xUpper[i] = b.Lower, b.Upper
	}
	for i, b := range a.def.CBounds {
		cLower[i], cUpper[i] = b.Lower, b.Upper
	}
}

func (a *Adapter) GetStartingPoint(x []float64, mult []float64) {
	copy(x, a.def.X0)
	if mult != nil {
		for i := range mult {
			mult[i] = 0
		}
	}
}

func (a *Adapter) EvalObjective(x []float64) (f float64) {
	g := make([]float64, a.def.N)
	f = a.def.Objective(x, g)
	return
}

func (a *Adapter) EvalObjectiveGradient(x []float64, grad []float64) {
	a.def.Objective(x, grad)
}

func (a *Adapter) EvalConstraints(x []float64, c []float64) {
	jac := make([]float64, a.def.M*a.def.N)
	a.def.Constraint(x, c, jac)
}

func (a *Adapter) GetJacobianStructure(rows, cols []int) {
	k := 0
	for i := 0; i < a.def.M; i++ {
		for j := 0; j < a.def.N; j++ {
			rows[k], cols[k] = i, j
			k++
		}
	}
}

func (a *Adapter) EvalJacobian(x []float64, values []float64) {
	c := make([]float64, a.def.M)
	a.def.Constraint(x, c, values)
}

func (a *Adapter) GetHessianStructure(rows, cols []int) {
	k := 0
	for i := 0; i < a.def.N; i++ {
		for j := i; j < a.def.N; j++ {
			rows[k], cols[k] = i, j
			k++
		}
	}
}

func (a *Adapter) EvalHessian(x []float64, objScale float64, lambda []float64, values []float64) {
	dense := make([]float64, a.def.N*a.def.N)
	if a.def.Hessian != nil {
		a.def.Hessian(x, objScale, lambda, dense)
	} else {
		a.numdiffHessian(x, objScale, lambda, dense)
	}
	k := 0
	for i := 0; i < a.def.N; i++ {
		for j := i; j < a.def.N; j++ {
			values[k] = dense[i*a.def.N+j]
			k++
		}
	}
}

// numdiffHessian approximates the Lagrangian's Hessian by central-differencing
// its gradient ∇ℒ(x) = objScale·∇f(x) + Σⱼλⱼ∇cⱼ(x) one column at a time.
func (a *Adapter) numdiffHessian(x []float64, objScale float64, lambda []float64, dense []float64) {
	n, m := a.def.N, a.def.M
	jac := make([]float64, m*n)
	c := make([]float64, m)

	g := make([]float64, n)
	lagrangianGrad := func(xp, out []float64) {
		a.def.Objective(xp, g)
		a.def.Constraint(xp, c, jac)
		for i := 0; i < n; i++ {
			v := objScale * g[i]
			for j := 0; j < m; j++ {
				v += lambda[j] * jac[j*n+i]
			}
			out[i] = v
		}
	}

	xc := append([]float64(nil), x...)
	hessCol := make([]float64, n*n)
	spec := numdiff.ApproxSpec{N: n, M: n, Object: lagrangianGrad, Method: numdiff.Central}
	if err := spec.Diff(xc, hessCol); err == nil {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				// hessCol is row-major by output (df[i+j*n] = ∂out_j/∂x_i); symmetrize.
				dense[i*n+j] = 0.5 * (hessCol[i+j*n] + hessCol[j+i*n])
			}
		}
	}
}

// SafeCall recovers a panic in fn and returns it as a *PanicErr. The sqp
// Driver runs its Initialize evaluations through it and reports ExitFlag
// INVALID_NLP; callback calls made during Optimize are not wrapped, so a
// panic there propagates to Optimize's caller.
func SafeCall(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicErr{Recovered: r}
		}
	}()
	fn()
	return nil
}

// NoBound is the conventional "unbounded" sentinel for Bound fields.
var NoBound = math.NaN()
