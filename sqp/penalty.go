package sqp

import "github.com/lanl-ansi/RestartSQP/qp"

// penaltyContext bundles what updatePenalty needs to re-solve QPs against
// the current linearization without threading the whole Driver through.
type penaltyContext struct {
	handler   *qp.Handler
	lpHandler *qp.Handler // same linearization, nil Hessian
	opt       *Options
	st        *State
}

// updatePenalty runs spec.md §4.2's penalty-increase procedure when
// triggered by infea_measure_model > penalty_update_tol. It returns the
// number of extra QP re-solves performed (added to Stats.QPIterations by
// the caller) and whether a fatal QP failure occurred.
func updatePenalty(pc *penaltyContext, eps1 *float64) (resolves int, exitFlag ExitFlag) {
	st, opt := pc.st, pc.opt

	if st.InfeaMeasureModel <= opt.PenaltyUpdateTol {
		return 0, Unknown
	}

	// Step 1: LP probe at the current linearization and ρ to find the
	// minimum achievable linearized infeasibility.
	pc.lpHandler.UpdatePenalty(st.Penalty)
	_, lpStatus := pc.lpHandler.Solve(false)
	resolves++
	if lpStatus != qp.StatusOptimal {
		return resolves, qpStatusToExitFlag(lpStatus)
	}
	infeaInfty := pc.lpHandler.GetInfeaMeasureModel()

	rhoOld := st.Penalty
	rhoTrial := st.Penalty
	trials := 0

	increase := func() bool {
		if rhoTrial >= opt.PenaltyMaxValue {
			return false
		}
		rhoTrial = min(rhoTrial*opt.PenaltyIncreaseFactor, opt.PenaltyMaxValue)
		return true
	}

	resolve := func() (qp.Status, bool) {
		pc.handler.UpdatePenalty(rhoTrial)
		_, status := pc.handler.Solve(false)
		resolves++
		if status != qp.StatusOptimal {
			return status, false
		}
		st.InfeaMeasureModel = pc.handler.GetInfeaMeasureModel()
		st.QPObj = pc.handler.GetObjective()
		return status, true
	}

	if infeaInfty <= opt.PenaltyUpdateTol {
		// Case A: problem is locally feasible in the linearization.
		for st.InfeaMeasureModel > opt.PenaltyUpdateTol && increase() {
			if status, ok := resolve(); !ok {
				return resolves, qpStatusToExitFlag(status)
			}
		}
	} else {
		// Case B.
		for trials < opt.PenaltyIterMax &&
			st.InfeaMeasure-st.InfeaMeasureModel < *eps1*(st.InfeaMeasure-infeaInfty) {
			if !increase() {
				break
			}
			if status, ok := resolve(); !ok {
				return resolves, qpStatusToExitFlag(status)
			}
			trials++
		}
	}

	// Step 4: accept only if the new ρ promises sufficient reduction.
	sufficient := rhoTrial*st.InfeaMeasure-st.QPObj >= opt.Eps2*rhoTrial*(st.InfeaMeasure-st.InfeaMeasureModel)
	if sufficient && rhoTrial != rhoOld {
		st.Penalty = rhoTrial
		*eps1 = *eps1 + (1-*eps1)*opt.Eps1ChangeParm
		pc.handler.UpdatePenalty(st.Penalty)
	} else {
		st.Penalty = rhoOld
		pc.handler.UpdatePenalty(st.Penalty)
	}

	return resolves, Unknown
}
