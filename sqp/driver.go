package sqp

import (
	"math"

	"github.com/lanl-ansi/RestartSQP/linalg"
	"github.com/lanl-ansi/RestartSQP/oracle"
	"github.com/lanl-ansi/RestartSQP/qp"
)

// Driver is the outer SL1QP trust-region loop, spec.md §4.1. It is not
// safe for concurrent Optimize calls on the same instance - callers
// needing concurrent solves construct one Driver per goroutine, mirroring
// the teacher's per-goroutine slsqp.Workspace convention.
type Driver struct {
	Options Options
	Stats   Stats
	Clock   Clock

	oracle  oracle.Oracle
	state   *State
	journal *Journal

	handler   *qp.Handler
	lpHandler *qp.Handler

	name    string
	eps1    float64
	History []HistoryPoint
}

// NewDriver constructs a Driver with the given Options. Clock defaults to
// a real wallclock/CPU clock; assign Driver.Clock before Initialize to
// inject a fake one for tests.
func NewDriver(opt Options) *Driver {
	return &Driver{
		Options: opt,
		Clock:   NewRealClock(),
	}
}

// Initialize reads sizes and bounds from o, evaluates f/∇f/c/J/H at the
// starting point, classifies constraint/bound ranges, computes the
// initial infeasibility measure, and opens the logging journal. Per
// spec.md §4.1's legacy-formulation boundary behavior, x₀ is clamped
// elementwise into [x_l, x_u] if the oracle's starting point lies
// outside the box, unless Options.UseNewFormulation is set.
func (d *Driver) Initialize(o oracle.Oracle, name string) (err error) {
	switch d.Options.QPSolverChoice {
	case "", "default":
	default:
		return qp.ErrEngineUnavailable
	}
	if err = oracle.SafeCall(func() { d.initialize(o, name) }); err != nil {
		d.ensureState()
		d.state.ExitFlag = InvalidNLP
	}
	return err
}

func (d *Driver) ensureState() {
	if d.state == nil {
		d.state = NewState(0, 0)
	}
}

func (d *Driver) initialize(o oracle.Oracle, name string) {
	d.oracle = o
	d.name = name

	sizes := o.GetSizes()
	n, m := sizes.NumVariables, sizes.NumConstraints
	st := NewState(n, m)
	d.state = st

	o.GetBounds(st.XLower, st.XUpper, st.CLower, st.CUpper)
	o.GetStartingPoint(st.X, st.MultiplierCons)
	if !d.Options.UseNewFormulation {
		for i := 0; i < n; i++ {
			st.X[i] = linalg.Clamp(st.X[i], st.XLower[i], st.XUpper[i])
		}
	}
	st.classify()

	st.ObjValue = o.EvalObjective(st.X)
	o.EvalObjectiveGradient(st.X, st.GradF)
	o.EvalConstraints(st.X, st.C)
	st.Jacobian = oracle.JacobianTriplet(o, st.X)
	st.Hessian = oracle.HessianTriplet(o, st.X, 1, st.MultiplierCons)

	st.InfeaMeasure = infeasibility(st.C, st.CLower, st.CUpper)
	st.Delta = d.Options.TrustRegionInitValue
	st.Penalty = d.Options.PenaltyInitValue
	d.eps1 = d.Options.Eps1

	engine := qp.NewDefaultEngine()

	d.handler = qp.NewHandler(n, m, engine)
	d.handler.UpdateA(st.Jacobian)
	d.handler.UpdateH(st.Hessian)
	d.handler.UpdateGrad(st.GradF)
	d.handler.UpdateBounds(relBounds(st.CLower, st.C), relBounds(st.CUpper, st.C), relBounds(st.XLower, st.X), relBounds(st.XUpper, st.X))
	d.handler.UpdateDelta(st.Delta)
	d.handler.UpdatePenalty(st.Penalty)

	d.lpHandler = qp.NewHandler(n, m, engine)
	d.lpHandler.UpdateA(st.Jacobian)
	d.lpHandler.UpdateGrad(st.GradF)
	d.lpHandler.UpdateBounds(relBounds(st.CLower, st.C), relBounds(st.CUpper, st.C), relBounds(st.XLower, st.X), relBounds(st.XUpper, st.X))
	d.lpHandler.UpdateDelta(st.Delta)
	d.lpHandler.UpdatePenalty(st.Penalty)

	d.journal = NewJournal(d.Options.PrintLevel, d.Options.FilePrintLevel, d.Options.OutputFile)
	d.journal.Header()
}

// relBounds returns b-x elementwise (NaN stays NaN), the linearized bound
// the Handler consumes.
func relBounds(b, x []float64) []float64 {
	out := make([]float64, len(b))
	for i := range b {
		out[i] = b[i] - x[i]
	}
	return out
}

// infeasibility computes Σ max(0, c_l-c) + Σ max(0, c-c_u).
func infeasibility(c, cl, cu []float64) float64 {
	s := 0.0
	for i := range c {
		if !math.IsNaN(cl[i]) {
			s += linalg.PosPart(cl[i] - c[i])
		}
		if !math.IsNaN(cu[i]) {
			s += linalg.PosPart(c[i] - cu[i])
		}
	}
	return s
}

// Optimize runs the outer loop until an ExitFlag other than Unknown is
// set, per spec.md §4.1's terminal-condition table.
func (d *Driver) Optimize() ExitFlag {
	st := d.state
	opt := &d.Options

	for {
		exit := d.iterate()
		if exit != Unknown {
			st.ExitFlag = exit
			break
		}
		if d.Clock.CPUSeconds() > opt.CPUTimeLimit {
			st.ExitFlag = ExceedMaxCPUTime
			break
		}
		if d.Clock.WallSeconds() > opt.WallclockTimeLimit {
			st.ExitFlag = ExceedMaxWallclockTime
			break
		}
	}

	d.journal.Close()
	return st.ExitFlag
}

// iterate runs one outer iteration (spec.md §4.1's 11 numbered steps) and
// returns Unknown to continue looping, or a terminal ExitFlag.
func (d *Driver) iterate() ExitFlag {
	st := d.state
	opt := &d.Options

	if st.ExitFlag == Unknown && d.Stats.Iterations >= opt.MaxNumIterations {
		return ExceedMaxIterations
	}

	// Step 2: solve QP.
	sol, status := d.handler.Solve(false)
	if status != qp.StatusOptimal {
		return qpStatusToExitFlag(status)
	}
	d.Stats.QPIterations++

	// Step 3: extract step.
	n := st.N
	copy(st.P, sol.Z[:n])
	st.NormPK = linalg.Vector(st.P).NormInf()
	st.InfeaMeasureModel = d.handler.GetInfeaMeasureModel()

	copy(st.MultiplierCons, d.handler.GetConstraintsMultipliers())
	copy(st.MultiplierVars, d.handler.GetBoundsMultipliers())

	// Step 4: compute qp_obj.
	st.QPObj = d.handler.GetObjective()

	// Step 5: penalty update.
	pc := &penaltyContext{handler: d.handler, lpHandler: d.lpHandler, opt: opt, st: st}
	resolves, penaltyExit := updatePenalty(pc, &d.eps1)
	if resolves > 0 {
		d.Stats.QPIterations += resolves
		d.Stats.PenaltyAdjustments++
		sol2, status2 := d.handler.Solve(false)
		if status2 != qp.StatusOptimal {
			return qpStatusToExitFlag(status2)
		}
		copy(st.P, sol2.Z[:n])
		st.NormPK = linalg.Vector(st.P).NormInf()
		st.InfeaMeasureModel = d.handler.GetInfeaMeasureModel()
		copy(st.MultiplierCons, d.handler.GetConstraintsMultipliers())
		copy(st.MultiplierVars, d.handler.GetBoundsMultipliers())
		st.QPObj = d.handler.GetObjective()
	}
	if penaltyExit != Unknown {
		return penaltyExit
	}

	// Step 6: trial point.
	for i := 0; i < n; i++ {
		st.XTrial[i] = st.X[i] + st.P[i]
	}
	fTrial := d.oracle.EvalObjective(st.XTrial)
	st.ObjValueTrial = fTrial
	d.oracle.EvalConstraints(st.XTrial, st.CTrial)
	st.InfeaMeasureTrial = infeasibility(st.CTrial, st.CLower, st.CUpper)

	// Step 7: ratio test.
	meritCur := st.ObjValue + st.Penalty*st.InfeaMeasure
	meritTrial := fTrial + st.Penalty*st.InfeaMeasureTrial
	st.ActualReduction = meritCur - meritTrial
	st.PredReduction = st.Penalty*st.InfeaMeasure - st.QPObj

	accepted := st.ActualReduction >= opt.TrustRegionRatioAcceptTol*st.PredReduction && st.ActualReduction >= -opt.OptTol

	// Step 8: SOC on rejection.
	if !accepted && opt.PerformSecondOrderCorrectionStep {
		var socExit ExitFlag
		accepted, socExit = d.trySOC(fTrial)
		if socExit != Unknown {
			return socExit
		}
	}

	if accepted {
		d.accept(st.ObjValueTrial)
	}

	// Step 9: bookkeeping.
	d.Stats.Iterations++
	stepHitBoundary := math.Abs(st.Delta-st.NormPK) < opt.OptTol
	d.journal.Row(d.Stats.Iterations, st.ObjValue, st.InfeaMeasure, st.Delta, st.Penalty, Unknown)
	d.History = append(d.History, HistoryPoint{Iteration: d.Stats.Iterations, Objective: st.ObjValue, Infeasibility: st.InfeaMeasure})

	// Step 10: KKT check.
	primal, dual, comp, stat := checkKKT(st, opt)
	d.Stats.KKTPrimal, d.Stats.KKTDual, d.Stats.KKTComplementarity, d.Stats.KKTStationarity = primal, dual, comp, stat
	if isKKTOptimal(primal, dual, comp, stat, opt) {
		return Optimal
	}

	// Step 11: trust-region update.
	dirty, tooSmall := updateTrustRegion(st, opt, stepHitBoundary)
	if dirty {
		d.handler.UpdateDelta(st.Delta)
		d.lpHandler.UpdateDelta(st.Delta)
	}
	if tooSmall {
		checkKKT(st, opt) // final KKT probe, per spec.md §7 item 3
		return TrustRegionTooSmall
	}

	return Unknown
}

// trySOC runs the SOC probe and, if the corrected trial passes the ratio
// test, mutates st.P/XTrial/CTrial/InfeaMeasureTrial/ObjValueTrial/NormPK/
// ActualReduction/PredReduction to reflect the corrected step. In every
// case the handler's SOC-recentered gradient/bounds are reverted afterwards
// so the next iteration rebuilds cleanly.
//
// A non-Unknown ExitFlag means the SOC QP solve itself failed - fatal per
// spec.md §4.1's failure semantics, as opposed to the ratio test simply
// rejecting the corrected step (which is reported as accepted=false,
// exitFlag=Unknown and just means SOC didn't help).
func (d *Driver) trySOC(fTrialOrig float64) (accepted bool, exitFlag ExitFlag) {
	st := d.state
	opt := &d.Options

	origGrad := append([]float64(nil), st.GradF...)
	origCL := relBounds(st.CLower, st.C)
	origCU := relBounds(st.CUpper, st.C)
	origXL := relBounds(st.XLower, st.X)
	origXU := relBounds(st.XUpper, st.X)

	d.Stats.SOCAttempts++
	sc := &socContext{handler: d.handler, oracle: d.oracle, st: st, opt: opt}
	pSOC, ok, socStatus := attemptSOC(sc, st.P)
	if !ok {
		revertSOC(sc, origGrad, origCL, origCU, origXL, origXU)
		if socStatus != Unknown {
			return false, socStatus
		}
		return false, Unknown
	}

	n := st.N
	xTrialSOC := make([]float64, n)
	for i := 0; i < n; i++ {
		xTrialSOC[i] = st.X[i] + pSOC[i]
	}
	fSOC := d.oracle.EvalObjective(xTrialSOC)
	cSOC := make([]float64, st.M)
	d.oracle.EvalConstraints(xTrialSOC, cSOC)
	infeaSOC := infeasibility(cSOC, st.CLower, st.CUpper)

	meritCur := st.ObjValue + st.Penalty*st.InfeaMeasure
	meritSOC := fSOC + st.Penalty*infeaSOC
	actual := meritCur - meritSOC
	pred := st.Penalty*st.InfeaMeasure - st.QPObj

	if actual >= opt.TrustRegionRatioAcceptTol*pred && actual >= -opt.OptTol {
		d.Stats.SOCAccepted++
		copy(st.P, pSOC)
		copy(st.XTrial, xTrialSOC)
		copy(st.CTrial, cSOC)
		st.InfeaMeasureTrial = infeaSOC
		st.ObjValueTrial = fSOC
		st.NormPK = linalg.Vector(st.P).NormInf()
		st.ActualReduction = actual
		st.PredReduction = pred
		revertSOC(sc, origGrad, origCL, origCU, origXL, origXU)
		return true, Unknown
	}

	revertSOC(sc, origGrad, origCL, origCU, origXL, origXU)
	return false, Unknown
}

// accept commits the trial point, refreshes derivatives at the new
// iterate, and marks the Handler's data dirty for the next QP solve.
func (d *Driver) accept(fTrial float64) {
	st := d.state
	o := d.oracle

	copy(st.X, st.XTrial)
	copy(st.C, st.CTrial)
	st.ObjValue = fTrial
	st.InfeaMeasure = st.InfeaMeasureTrial

	o.EvalObjectiveGradient(st.X, st.GradF)
	st.Jacobian = oracle.JacobianTriplet(o, st.X)
	st.Hessian = oracle.HessianTriplet(o, st.X, 1, st.MultiplierCons)

	d.handler.UpdateA(st.Jacobian)
	d.handler.UpdateH(st.Hessian)
	d.handler.UpdateGrad(st.GradF)
	d.handler.UpdateBounds(relBounds(st.CLower, st.C), relBounds(st.CUpper, st.C), relBounds(st.XLower, st.X), relBounds(st.XUpper, st.X))

	d.lpHandler.UpdateA(st.Jacobian)
	d.lpHandler.UpdateGrad(st.GradF)
	d.lpHandler.UpdateBounds(relBounds(st.CLower, st.C), relBounds(st.CUpper, st.C), relBounds(st.XLower, st.X), relBounds(st.XUpper, st.X))
}

// State exposes the driver's current iterate for callers inspecting the
// result after Optimize returns.
func (d *Driver) State() *State { return d.state }
