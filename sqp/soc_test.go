package sqp

import (
	"testing"

	"github.com/lanl-ansi/RestartSQP/qp"
)

// TestAttemptSOCSolveFailure covers the case where the SOC sub-QP itself reports
// infeasible, which is fatal per spec.md §4.1's failure semantics - not a
// "SOC didn't help, fall through" case.
func TestAttemptSOCSolveFailure(t *testing.T) {
	failingEngine := qp.EngineFunc(func(p *qp.Problem, warmStart bool) (*qp.Solution, qp.Status) {
		return nil, qp.StatusInfeasible
	})

	n, m := 2, 1
	handler := qp.NewHandler(n, m, failingEngine)
	handler.UpdateA(nil)
	handler.UpdateH(nil)
	handler.UpdateGrad([]float64{1, 1})
	handler.UpdateBounds([]float64{-1}, []float64{1}, []float64{-1, -1}, []float64{1, 1})
	handler.UpdateDelta(1)
	handler.UpdatePenalty(10)

	st := NewState(n, m)
	st.GradF = []float64{1, 1}
	st.CLower = []float64{-1}
	st.CUpper = []float64{1}
	st.CTrial = []float64{0}
	st.XLower = []float64{-1, -1}
	st.XUpper = []float64{1, 1}
	st.XTrial = []float64{0.1, 0.1}

	sc := &socContext{handler: handler, st: st, opt: &Options{}}
	_, ok, exitFlag := attemptSOC(sc, []float64{0.1, 0.1})
	if ok {
		t.Fatalf("attemptSOC ok = true, want false on a failed SOC QP solve")
	}
	if exitFlag != QPErrorInfeasible {
		t.Fatalf("attemptSOC exitFlag = %v, want QPErrorInfeasible", exitFlag)
	}
}

// TestDriverTrySOCPropagatesFailure confirms trySOC relays a fatal SOC QP
// status out instead of silently treating it as "SOC didn't help".
func TestDriverTrySOCPropagatesFailure(t *testing.T) {
	failingEngine := qp.EngineFunc(func(p *qp.Problem, warmStart bool) (*qp.Solution, qp.Status) {
		return nil, qp.StatusInfeasible
	})

	n, m := 2, 1
	d := &Driver{Options: DefaultOptions(), Clock: &FakeClock{}}
	d.handler = qp.NewHandler(n, m, failingEngine)
	d.handler.UpdateA(nil)
	d.handler.UpdateH(nil)
	d.handler.UpdateGrad([]float64{1, 1})
	d.handler.UpdateBounds([]float64{-1}, []float64{1}, []float64{-1, -1}, []float64{1, 1})
	d.handler.UpdateDelta(1)
	d.handler.UpdatePenalty(10)

	st := NewState(n, m)
	st.GradF = []float64{1, 1}
	st.CLower = []float64{-1}
	st.CUpper = []float64{1}
	st.C = []float64{0}
	st.CTrial = []float64{0}
	st.XLower = []float64{-1, -1}
	st.XUpper = []float64{1, 1}
	st.X = []float64{0, 0}
	st.XTrial = []float64{0.1, 0.1}
	st.P = []float64{0.1, 0.1}
	d.state = st

	accepted, exitFlag := d.trySOC(0)
	if accepted {
		t.Fatalf("trySOC accepted = true, want false on a failed SOC QP solve")
	}
	if exitFlag != QPErrorInfeasible {
		t.Fatalf("trySOC exitFlag = %v, want QPErrorInfeasible", exitFlag)
	}
}
