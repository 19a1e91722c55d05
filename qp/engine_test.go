package qp

import (
	"math"
	"testing"

	"github.com/lanl-ansi/RestartSQP/linalg"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestDefaultEngineUnconstrainedMinimum checks min ½xᵀHx+gᵀx with H=2I,
// no constraints beyond box bounds wide enough not to bind: the optimum
// is x = -H⁻¹g.
func TestDefaultEngineUnconstrainedMinimum(t *testing.T) {
	h := linalg.NewTriplet(2, 2)
	h.SymmetricUpper = true
	h.Append(0, 0, 2)
	h.Append(1, 1, 2)

	p := &Problem{
		N: 2,
		M: 0,
		H: linalg.Compress(h),
		G: []float64{-4, -6},
		A: linalg.Compress(linalg.NewTriplet(0, 2)),
		Lower: []float64{-10, -10},
		Upper: []float64{10, 10},
	}

	eng := NewDefaultEngine()
	sol, status := eng.Solve(p, false)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want OPTIMAL", status)
	}
	if !approxEqual(sol.Z[0], 2, 1e-6) || !approxEqual(sol.Z[1], 3, 1e-6) {
		t.Fatalf("z = %v, want [2 3]", sol.Z)
	}
}

// TestDefaultEngineBoundActive checks that an active lower bound produces
// a nonnegative multiplier, per the μ ≥ 0 lower-active convention.
func TestDefaultEngineBoundActive(t *testing.T) {
	h := linalg.NewTriplet(1, 1)
	h.SymmetricUpper = true
	h.Append(0, 0, 2)

	p := &Problem{
		N: 1,
		M: 0,
		H: linalg.Compress(h),
		G: []float64{-2}, // unconstrained minimum at x=1
		A: linalg.Compress(linalg.NewTriplet(0, 1)),
		Lower: []float64{2}, // forces x=2, lower bound active
		Upper: []float64{10},
	}

	eng := NewDefaultEngine()
	sol, status := eng.Solve(p, false)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want OPTIMAL", status)
	}
	if !approxEqual(sol.Z[0], 2, 1e-6) {
		t.Fatalf("z[0] = %v, want 2", sol.Z[0])
	}
	if sol.ColMultipliers[0] < -1e-8 {
		t.Fatalf("lower-bound-active multiplier = %v, want >= 0", sol.ColMultipliers[0])
	}
}

// TestDefaultEngineEqualityConstraint checks min ½‖x‖² s.t. x0+x1=1.
func TestDefaultEngineEqualityConstraint(t *testing.T) {
	h := linalg.NewTriplet(2, 2)
	h.SymmetricUpper = true
	h.Append(0, 0, 1)
	h.Append(1, 1, 1)

	a := linalg.NewTriplet(1, 2)
	a.Append(0, 0, 1)
	a.Append(0, 1, 1)

	p := &Problem{
		N: 2,
		M: 1,
		H: linalg.Compress(h),
		G: []float64{0, 0},
		A: linalg.Compress(a),
		ALower: []float64{1},
		AUpper: []float64{1},
		Lower: []float64{-10, -10},
		Upper: []float64{10, 10},
	}

	eng := NewDefaultEngine()
	sol, status := eng.Solve(p, false)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want OPTIMAL", status)
	}
	if !approxEqual(sol.Z[0], 0.5, 1e-6) || !approxEqual(sol.Z[1], 0.5, 1e-6) {
		t.Fatalf("z = %v, want [0.5 0.5]", sol.Z)
	}
}

// TestDefaultEngineLP checks the H=nil degenerate LP path.
func TestDefaultEngineLP(t *testing.T) {
	p := &Problem{
		N: 1,
		M: 0,
		G: []float64{1}, // minimize x over [0,5] -> x=0
		A: linalg.Compress(linalg.NewTriplet(0, 1)),
		Lower: []float64{0},
		Upper: []float64{5},
	}

	eng := NewDefaultEngine()
	sol, status := eng.Solve(p, false)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want OPTIMAL", status)
	}
	if !approxEqual(sol.Z[0], 0, 1e-6) {
		t.Fatalf("z[0] = %v, want 0", sol.Z[0])
	}
}
