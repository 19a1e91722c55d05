package sqp

import (
	"github.com/lanl-ansi/RestartSQP/oracle"
	"github.com/lanl-ansi/RestartSQP/qp"
)

// socContext bundles what attemptSOC needs from the Driver.
type socContext struct {
	handler *qp.Handler
	oracle  oracle.Oracle
	st      *State
	opt     *Options
}

// attemptSOC runs spec.md §4.3's second-order-correction step: a QP whose
// gradient is ∇f+H·p_k and whose bounds are recentered on x_trial/c_trial,
// whose solution s is added to p_k before the trial point and ratio test
// are recomputed. Per spec.md §9's SOC bug note, the corrected step is
// only copied out of the QP's solution *after* a successful solve - never
// before, which is the legacy source's bug.
//
// Returns the new p_k (nil if the SOC QP failed; a fatal condition per
// spec.md §4.1's failure semantics), whether the SOC QP solved, and the
// ExitFlag mapped from a failed solve's status (Unknown on success). The
// ratio test on the corrected step is left to the caller.
func attemptSOC(sc *socContext, pOld []float64) (pNew []float64, ok bool, exitFlag ExitFlag) {
	st := sc.st
	n, m := st.N, st.M

	hp := make([]float64, n)
	if st.Hessian != nil {
		st.Hessian.Each(func(r, c int, v float64) {
			hp[r] += v * pOld[c]
			if r != c {
				hp[c] += v * pOld[r]
			}
		})
	}
	gSOC := make([]float64, n)
	for i := range gSOC {
		gSOC[i] = st.GradF[i] + hp[i]
	}
	sc.handler.UpdateGrad(gSOC)

	cLowerSOC := make([]float64, m)
	cUpperSOC := make([]float64, m)
	for i := 0; i < m; i++ {
		cLowerSOC[i] = st.CLower[i] - st.CTrial[i]
		cUpperSOC[i] = st.CUpper[i] - st.CTrial[i]
	}
	xLowerSOC := make([]float64, n)
	xUpperSOC := make([]float64, n)
	for i := 0; i < n; i++ {
		xLowerSOC[i] = st.XLower[i] - st.XTrial[i]
		xUpperSOC[i] = st.XUpper[i] - st.XTrial[i]
	}
	sc.handler.UpdateBounds(cLowerSOC, cUpperSOC, xLowerSOC, xUpperSOC)

	sol, status := sc.handler.Solve(false)
	if status != qp.StatusOptimal {
		return nil, false, qpStatusToExitFlag(status)
	}

	// Copy happens here, after the successful solve - per the fix above.
	s := sol.Z[:n]
	pNew = make([]float64, n)
	for i := range pNew {
		pNew[i] = pOld[i] + s[i]
	}
	return pNew, true, Unknown
}

// revertSOC restores the pre-SOC QP gradient/bounds on the shared handler
// once the corrected trial is rejected, so the next outer iteration
// rebuilds from the genuine current linearization rather than the SOC
// probe's recentered one.
func revertSOC(sc *socContext, origGrad []float64, cl, cu, xl, xu []float64) {
	sc.handler.UpdateGrad(origGrad)
	sc.handler.UpdateBounds(cl, cu, xl, xu)
}
