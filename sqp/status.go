// Package sqp implements the outer SL1QP trust-region driver: it
// assembles the QP subproblem each iteration through a qp.Handler,
// drives the penalty and trust-region policy, performs an optional
// second-order correction, and checks the four KKT violations for
// termination.
package sqp

import "github.com/lanl-ansi/RestartSQP/qp"

// ExitFlag is the driver's stable terminal-status surface.
type ExitFlag int

const (
	Unknown ExitFlag = iota
	Optimal
	InvalidNLP
	ExceedMaxIterations
	ExceedMaxCPUTime
	ExceedMaxWallclockTime
	TrustRegionTooSmall
	PredReductionNegative
	QPErrorInfeasible
	QPErrorUnbounded
	QPErrorExceedMaxIter
	QPErrorNotInitialised
	QPErrorUnknown
)

func (f ExitFlag) String() string {
	switch f {
	case Optimal:
		return "OPTIMAL"
	case InvalidNLP:
		return "INVALID_NLP"
	case ExceedMaxIterations:
		return "EXCEED_MAX_ITERATIONS"
	case ExceedMaxCPUTime:
		return "EXCEED_MAX_CPU_TIME"
	case ExceedMaxWallclockTime:
		return "EXCEED_MAX_WALLCLOCK_TIME"
	case TrustRegionTooSmall:
		return "TRUST_REGION_TOO_SMALL"
	case PredReductionNegative:
		return "PRED_REDUCTION_NEGATIVE"
	case QPErrorInfeasible:
		return "QPERROR_INFEASIBLE"
	case QPErrorUnbounded:
		return "QPERROR_UNBOUNDED"
	case QPErrorExceedMaxIter:
		return "QPERROR_EXCEED_MAX_ITER"
	case QPErrorNotInitialised:
		return "QPERROR_NOTINITIALISED"
	case QPErrorUnknown:
		return "QPERROR_UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// qpStatusToExitFlag maps a qp.Status onto the driver's QPERROR_* exit
// flags, the single funnel point spec.md §7's error taxonomy requires.
func qpStatusToExitFlag(s qp.Status) ExitFlag {
	switch s {
	case qp.StatusOptimal:
		return Optimal
	case qp.StatusInfeasible:
		return QPErrorInfeasible
	case qp.StatusUnbounded:
		return QPErrorUnbounded
	case qp.StatusExceedMaxIter:
		return QPErrorExceedMaxIter
	case qp.StatusNotInitialized:
		return QPErrorNotInitialised
	default:
		return QPErrorUnknown
	}
}
