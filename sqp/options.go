package sqp

import "github.com/spf13/pflag"

// Options carries every tunable named in spec.md §6's configuration
// table. Fields default to values reasonable for a first solve; callers
// either set fields directly or bind a pflag.FlagSet once via BindFlags
// for CLI-driven configuration.
type Options struct {
	MaxNumIterations    int
	CPUTimeLimit        float64
	WallclockTimeLimit  float64

	TrustRegionInitValue float64
	TrustRegionMaxValue  float64
	TrustRegionMinValue  float64

	TrustRegionRatioDecreaseTol float64 // η_c
	TrustRegionRatioAcceptTol   float64 // η_s
	TrustRegionRatioIncreaseTol float64 // η_e
	TrustRegionDecreaseFactor   float64 // γ_c
	TrustRegionIncreaseFactor   float64 // γ_e

	PenaltyInitValue     float64 // ρ₀
	PenaltyMaxValue      float64
	PenaltyIncreaseFactor float64
	PenaltyUpdateTol     float64
	PenaltyIterMax       int

	Eps1           float64
	Eps1ChangeParm float64
	Eps2           float64

	PerformSecondOrderCorrectionStep bool

	// UseNewFormulation selects between the legacy x0 handling (false,
	// the default) - which clamps an out-of-bounds starting point into
	// [x_l, x_u] at Initialize time - and the new formulation, which
	// leaves x0 as the oracle provided it and lets the trust-region loop
	// work it back into bounds.
	UseNewFormulation bool

	OptTol                        float64
	ActiveSetTol                  float64
	OptTolPrimalFeasibility       float64
	OptTolDualFeasibility         float64
	OptTolComplementarity         float64
	OptTolStationarityFeasibility float64

	// QPSolverChoice selects the Engine qp.Handler dispatches to:
	// "default", "QORE", "QPOASES", "GUROBI" or "CPLEX". Only "default"
	// has a working implementation; the others resolve to
	// qp.ErrEngineUnavailable at Driver.Initialize time.
	QPSolverChoice string

	QPSolverMaxNumIterations int
	LPSolverMaxNumIterations int

	PrintLevel     int
	FilePrintLevel int
	OutputFile     string
}

// DefaultOptions returns the option set a fresh Driver starts from,
// matching the teacher's convention of a package-level sane-defaults
// constructor rather than zero-valued fields.
func DefaultOptions() Options {
	return Options{
		MaxNumIterations:   100,
		CPUTimeLimit:       1e6,
		WallclockTimeLimit: 1e6,

		TrustRegionInitValue: 10,
		TrustRegionMaxValue:  1e6,
		TrustRegionMinValue:  1e-8,

		TrustRegionRatioDecreaseTol: 0.25,
		TrustRegionRatioAcceptTol:   1e-8,
		TrustRegionRatioIncreaseTol: 0.75,
		TrustRegionDecreaseFactor:   0.5,
		TrustRegionIncreaseFactor:   2.0,

		PenaltyInitValue:      10,
		PenaltyMaxValue:       1e8,
		PenaltyIncreaseFactor: 10,
		PenaltyUpdateTol:      1e-6,
		PenaltyIterMax:        10,

		Eps1:           0.25,
		Eps1ChangeParm: 0.1,
		Eps2:           1e-4,

		PerformSecondOrderCorrectionStep: true,
		UseNewFormulation:                false,

		OptTol:                        1e-6,
		ActiveSetTol:                  1e-6,
		OptTolPrimalFeasibility:       1e-6,
		OptTolDualFeasibility:         1e-6,
		OptTolComplementarity:         1e-6,
		OptTolStationarityFeasibility: 1e-6,

		QPSolverChoice:           "default",
		QPSolverMaxNumIterations: 0,
		LPSolverMaxNumIterations: 0,

		PrintLevel:     1,
		FilePrintLevel: 0,
		OutputFile:     "",
	}
}

// BindFlags registers every Options field on fs, so a cmd/restartsqp-style
// CLI can populate an Options from flags in the pflag idiom (grounded in
// the retrieval pack's Kubernetes/OpenShift-style pflag usage).
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.MaxNumIterations, "max-num-iterations", o.MaxNumIterations, "outer iteration cap")
	fs.Float64Var(&o.CPUTimeLimit, "cpu-time-limit", o.CPUTimeLimit, "CPU time cap in seconds")
	fs.Float64Var(&o.WallclockTimeLimit, "wallclock-time-limit", o.WallclockTimeLimit, "wallclock time cap in seconds")

	fs.Float64Var(&o.TrustRegionInitValue, "trust-region-init-value", o.TrustRegionInitValue, "initial trust-region radius")
	fs.Float64Var(&o.TrustRegionMaxValue, "trust-region-max-value", o.TrustRegionMaxValue, "maximum trust-region radius")
	fs.Float64Var(&o.TrustRegionMinValue, "trust-region-min-value", o.TrustRegionMinValue, "minimum trust-region radius before TRUST_REGION_TOO_SMALL")

	fs.Float64Var(&o.TrustRegionRatioDecreaseTol, "trust-region-ratio-decrease-tol", o.TrustRegionRatioDecreaseTol, "η_c shrink threshold")
	fs.Float64Var(&o.TrustRegionRatioAcceptTol, "trust-region-ratio-accept-tol", o.TrustRegionRatioAcceptTol, "η_s acceptance threshold")
	fs.Float64Var(&o.TrustRegionRatioIncreaseTol, "trust-region-ratio-increase-tol", o.TrustRegionRatioIncreaseTol, "η_e expand threshold")
	fs.Float64Var(&o.TrustRegionDecreaseFactor, "trust-region-decrease-factor", o.TrustRegionDecreaseFactor, "γ_c contraction factor")
	fs.Float64Var(&o.TrustRegionIncreaseFactor, "trust-region-increase-factor", o.TrustRegionIncreaseFactor, "γ_e expansion factor")

	fs.Float64Var(&o.PenaltyInitValue, "penalty-parameter-init-value", o.PenaltyInitValue, "ρ₀ initial penalty weight")
	fs.Float64Var(&o.PenaltyMaxValue, "penalty-parameter-max-value", o.PenaltyMaxValue, "ρ cap")
	fs.Float64Var(&o.PenaltyIncreaseFactor, "penalty-parameter-increase-factor", o.PenaltyIncreaseFactor, "ρ growth factor")
	fs.Float64Var(&o.PenaltyUpdateTol, "penalty-update-tol", o.PenaltyUpdateTol, "infea_measure_model trigger for the penalty loop")
	fs.IntVar(&o.PenaltyIterMax, "penalty-iter-max", o.PenaltyIterMax, "penalty inner-loop cap")

	fs.Float64Var(&o.Eps1, "eps1", o.Eps1, "Case-B feasibility-improvement fraction")
	fs.Float64Var(&o.Eps1ChangeParm, "eps1-change-parm", o.Eps1ChangeParm, "ε₁ growth on penalty acceptance")
	fs.Float64Var(&o.Eps2, "eps2", o.Eps2, "penalty-acceptance sufficient-reduction fraction")

	fs.BoolVar(&o.PerformSecondOrderCorrectionStep, "perform-second-order-correction-step", o.PerformSecondOrderCorrectionStep, "enable the SOC step on rejection")

	fs.BoolVar(&o.UseNewFormulation, "use-new-formulation", o.UseNewFormulation, "skip clamping an out-of-bounds x0 into [x_l, x_u] at Initialize time")

	fs.Float64Var(&o.OptTol, "opt-tol", o.OptTol, "overall KKT tolerance")
	fs.Float64Var(&o.ActiveSetTol, "active-set-tol", o.ActiveSetTol, "active-set classification proximity")
	fs.Float64Var(&o.OptTolPrimalFeasibility, "opt-tol-primal-feasibility", o.OptTolPrimalFeasibility, "primal KKT tolerance")
	fs.Float64Var(&o.OptTolDualFeasibility, "opt-tol-dual-feasibility", o.OptTolDualFeasibility, "dual KKT tolerance")
	fs.Float64Var(&o.OptTolComplementarity, "opt-tol-complementarity", o.OptTolComplementarity, "complementarity KKT tolerance")
	fs.Float64Var(&o.OptTolStationarityFeasibility, "opt-tol-stationarity-feasibility", o.OptTolStationarityFeasibility, "stationarity KKT tolerance")

	fs.StringVar(&o.QPSolverChoice, "qp-solver-choice", o.QPSolverChoice, "QP engine: default, QORE, QPOASES, GUROBI, CPLEX")
	fs.IntVar(&o.QPSolverMaxNumIterations, "qp-solver-max-num-iterations", o.QPSolverMaxNumIterations, "QP engine iteration cap (not read by the default engine)")
	fs.IntVar(&o.LPSolverMaxNumIterations, "lp-solver-max-num-iterations", o.LPSolverMaxNumIterations, "LP probe iteration cap (not read by the default engine)")

	fs.IntVar(&o.PrintLevel, "print-level", o.PrintLevel, "console journal verbosity")
	fs.IntVar(&o.FilePrintLevel, "file-print-level", o.FilePrintLevel, "file journal verbosity")
	fs.StringVar(&o.OutputFile, "output-file", o.OutputFile, "journal output file path (empty disables file logging)")
}
