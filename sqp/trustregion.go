package sqp

import "math"

// updateTrustRegion applies spec.md §4.5's ratio-based trust-region rule
// and reports whether the new radius collapsed below TrustRegionMinValue.
func updateTrustRegion(st *State, opt *Options, stepHitBoundary bool) (dirty bool, tooSmall bool) {
	actual, pred := st.ActualReduction, st.PredReduction

	switch {
	case actual < opt.TrustRegionRatioDecreaseTol*pred:
		st.Delta *= opt.TrustRegionDecreaseFactor
		dirty = true
	case actual > opt.TrustRegionRatioIncreaseTol*pred && stepHitBoundary:
		st.Delta = math.Min(opt.TrustRegionIncreaseFactor*st.Delta, opt.TrustRegionMaxValue)
		dirty = true
	}

	if st.Delta < opt.TrustRegionMinValue {
		tooSmall = true
	}
	return
}
