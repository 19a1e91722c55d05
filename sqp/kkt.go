package sqp

import "math"

// checkKKT computes the four violations of spec.md §4.4 and reclassifies
// the active set from scratch every call. The legacy source's bug - only
// initializing ActiveSetBounds/ActiveSetConstraints on a first-call check
// and leaving stale entries on later calls - is the fix this function
// applies: every call resets both slices to Inactive before reclassifying,
// per spec.md §9's first bug note.
func checkKKT(st *State, opt *Options) (primal, dual, complementarity, stationarity float64) {
	for i := range st.ActiveSetBounds {
		st.ActiveSetBounds[i] = Inactive
	}
	for i := range st.ActiveSetConstraints {
		st.ActiveSetConstraints[i] = Inactive
	}

	primal = st.InfeaMeasure

	for i := 0; i < st.N; i++ {
		st.ActiveSetBounds[i] = classifyActive(st.X[i], st.XLower[i], st.XUpper[i], opt.ActiveSetTol, st.BoundType[i])
		mu := st.MultiplierVars[i]
		switch st.BoundType[i] {
		case BoundedAbove:
			dual += math.Max(mu, 0)
			complementarity += math.Abs(mu * (st.XUpper[i] - st.X[i]))
		case BoundedBelow:
			dual += math.Max(-mu, 0)
			complementarity += math.Abs(mu * (st.X[i] - st.XLower[i]))
		case Bounded, Equal:
			// Either sign of mu is admissible on a two-sided or fixed range:
			// no dual or complementarity term.
		case Unbounded:
			complementarity += math.Abs(mu)
		}
	}

	for i := 0; i < st.M; i++ {
		st.ActiveSetConstraints[i] = classifyActive(st.C[i], st.CLower[i], st.CUpper[i], opt.ActiveSetTol, st.ConsType[i])
		mu := st.MultiplierCons[i]
		switch st.ConsType[i] {
		case BoundedAbove:
			dual += math.Max(mu, 0)
			complementarity += math.Abs(mu * (st.CUpper[i] - st.C[i]))
		case BoundedBelow:
			dual += math.Max(-mu, 0)
			complementarity += math.Abs(mu * (st.C[i] - st.CLower[i]))
		case Bounded, Equal:
			// Either sign of mu is admissible on a two-sided or fixed range:
			// no dual or complementarity term.
		case Unbounded:
			complementarity += math.Abs(mu)
		}
	}

	// Stationarity: ‖∇f − Jᵀμ_cons − μ_vars‖₁. Jᵀμ_cons is accumulated from
	// the Jacobian triplet's (row,col,val) entries directly; each entry
	// contributes val*μ_cons[row] to column col.
	jtmu := make([]float64, st.N)
	if st.Jacobian != nil {
		st.Jacobian.Each(func(row, col int, val float64) {
			jtmu[col] += val * st.MultiplierCons[row]
		})
	}
	for i := 0; i < st.N; i++ {
		stationarity += math.Abs(st.GradF[i] - jtmu[i] - st.MultiplierVars[i])
	}

	return
}

// isKKTOptimal reports whether all four violations are within their
// configured tolerances.
func isKKTOptimal(primal, dual, complementarity, stationarity float64, opt *Options) bool {
	return primal < opt.OptTolPrimalFeasibility &&
		dual < opt.OptTolDualFeasibility &&
		complementarity < opt.OptTolComplementarity &&
		stationarity < opt.OptTolStationarityFeasibility
}
