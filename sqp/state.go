package sqp

import "github.com/lanl-ansi/RestartSQP/linalg"

// State is the driver's exclusively-owned mutable iterate, spec.md §3's
// SqpState. The driver holds the only reference; qp.Handler receives
// short-lived borrowed views through its update_* methods.
type State struct {
	N, M int

	X, XTrial   []float64
	P           []float64 // step, length N
	C, CTrial   []float64

	MultiplierCons []float64 // μ_cons, length M
	MultiplierVars []float64 // μ_vars, length N

	GradF []float64

	XLower, XUpper []float64
	CLower, CUpper []float64

	Hessian  *linalg.Triplet // upper-triangle, symmetric
	Jacobian *linalg.Triplet

	Delta   float64
	Penalty float64

	ObjValue, ObjValueTrial float64

	InfeaMeasure      float64
	InfeaMeasureModel float64
	InfeaMeasureTrial float64

	NormPK          float64
	QPObj           float64
	ActualReduction float64
	PredReduction   float64

	ConsType  []RangeType
	BoundType []RangeType

	ActiveSetBounds      []ActiveSet
	ActiveSetConstraints []ActiveSet

	ExitFlag ExitFlag
}

// NewState allocates a State sized for n variables and m constraints.
func NewState(n, m int) *State {
	return &State{
		N: n, M: m,
		X: make([]float64, n), XTrial: make([]float64, n),
		P: make([]float64, n),
		C: make([]float64, m), CTrial: make([]float64, m),
		MultiplierCons: make([]float64, m),
		MultiplierVars: make([]float64, n),
		GradF:          make([]float64, n),
		XLower:         make([]float64, n), XUpper: make([]float64, n),
		CLower: make([]float64, m), CUpper: make([]float64, m),
		ConsType:  make([]RangeType, m),
		BoundType: make([]RangeType, n),
		ActiveSetBounds:      make([]ActiveSet, n),
		ActiveSetConstraints: make([]ActiveSet, m),
	}
}

// classify fills ConsType/BoundType from the current bound vectors. Called
// once at Initialize; bounds never change across an outer solve.
func (s *State) classify() {
	for i := 0; i < s.M; i++ {
		s.ConsType[i] = classifyRange(s.CLower[i], s.CUpper[i])
	}
	for i := 0; i < s.N; i++ {
		s.BoundType[i] = classifyRange(s.XLower[i], s.XUpper[i])
	}
}
