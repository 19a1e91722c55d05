package qp

import (
	"testing"

	"github.com/lanl-ansi/RestartSQP/linalg"
)

func TestHandlerSolveNoDirtyFlagPanics(t *testing.T) {
	h := NewHandler(1, 0, NewDefaultEngine())
	h.UpdateGrad([]float64{1})
	h.UpdateBounds(nil, nil, []float64{-1}, []float64{1})
	h.UpdateDelta(1)
	h.UpdatePenalty(10)

	if _, status := h.Solve(false); status != StatusOptimal {
		t.Fatalf("first solve status = %v, want OPTIMAL", status)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on second Solve with no dirty flags set")
		}
	}()
	h.Solve(false)
}

// TestHandlerAugmentsSlacks checks that an infeasible linearized
// constraint is absorbed by the u+/u- slacks rather than making the QP
// infeasible, and that GetInfeaMeasureModel reports the slack sum.
func TestHandlerAugmentsSlacks(t *testing.T) {
	h := NewHandler(1, 1, NewDefaultEngine())

	jac := linalg.NewTriplet(1, 1)
	jac.Append(0, 0, 1)
	h.UpdateA(jac)
	h.UpdateGrad([]float64{0})
	// Linearized constraint: p in [5, 5] (infeasible alone at delta=1),
	// forced through the slacks.
	h.UpdateBounds([]float64{5}, []float64{5}, []float64{-1}, []float64{1})
	h.UpdateDelta(1)
	h.UpdatePenalty(10)

	sol, status := h.Solve(false)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want OPTIMAL", status)
	}
	if sol == nil {
		t.Fatal("sol is nil")
	}
	infea := h.GetInfeaMeasureModel()
	if infea <= 0 {
		t.Fatalf("GetInfeaMeasureModel() = %v, want > 0 (slack must absorb the gap)", infea)
	}
}

func TestHandlerLPHandlerHasNoHessian(t *testing.T) {
	h := NewHandler(1, 0, NewDefaultEngine())
	h.UpdateGrad([]float64{1})
	h.UpdateBounds(nil, nil, []float64{0}, []float64{5})
	h.UpdateDelta(5)
	h.UpdatePenalty(1)

	sol, status := h.Solve(false)
	if status != StatusOptimal {
		t.Fatalf("status = %v, want OPTIMAL", status)
	}
	if sol.Z[0] < -1e-8 || sol.Z[0] > 1e-6 {
		t.Fatalf("z[0] = %v, want ~0", sol.Z[0])
	}
}
