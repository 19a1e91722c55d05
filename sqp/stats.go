package sqp

// Stats accumulates the counters spec.md §2's status/statistics component
// names: outer iterations, QP solves (QPIterations counts Engine.Solve
// calls, not working-set changes inside a solve), and penalty adjustments,
// plus the four KKT violations recorded at termination.
type Stats struct {
	Iterations         int
	QPIterations       int
	PenaltyAdjustments int
	SOCAttempts        int
	SOCAccepted        int

	KKTPrimal          float64
	KKTDual            float64
	KKTComplementarity float64
	KKTStationarity    float64
}

// HistoryPoint is one outer iteration's recorded (objective, infeasibility)
// pair, kept so a caller can render a convergence chart (see the plot
// package) without re-running the solve.
type HistoryPoint struct {
	Iteration     int
	Objective     float64
	Infeasibility float64
}
