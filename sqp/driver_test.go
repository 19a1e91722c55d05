package sqp

import (
	"math"
	"testing"

	"github.com/lanl-ansi/RestartSQP/oracle"
)

// unconstrainedQuadratic is scenario 1 of spec.md §8: f = ½(x1²+x2²), no
// constraints, x0=(3,4).
func unconstrainedQuadratic() oracle.Oracle {
	return oracle.NewAdapter(oracle.Definition{
		N: 2,
		M: 0,
		XBounds: []oracle.Bound{{oracle.NoBound, oracle.NoBound}, {oracle.NoBound, oracle.NoBound}},
		X0:      []float64{3, 4},
		Objective: func(x, grad []float64) float64 {
			grad[0], grad[1] = x[0], x[1]
			return 0.5 * (x[0]*x[0] + x[1]*x[1])
		},
		Constraint: func(x, c, jac []float64) {},
		Hessian: func(x []float64, objScale float64, lambda, hess []float64) {
			hess[0], hess[1], hess[2], hess[3] = objScale, 0, 0, objScale
		},
	})
}

func TestDriverUnconstrainedQuadratic(t *testing.T) {
	d := NewDriver(DefaultOptions())
	d.Clock = &FakeClock{}
	if err := d.Initialize(unconstrainedQuadratic(), "unconstrained-quadratic"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	exit := d.Optimize()
	if exit != Optimal {
		t.Fatalf("exit = %v, want OPTIMAL", exit)
	}
	x := d.State().X
	if math.Hypot(x[0], x[1]) > 1e-6 {
		t.Fatalf("‖x‖ = %v, want < 1e-6", math.Hypot(x[0], x[1]))
	}
	if d.Stats.Iterations > 3 {
		t.Fatalf("iterations = %d, want <= 3", d.Stats.Iterations)
	}
}

// inconsistentBounds is scenario 3: minimize x² s.t. x>=1 and x<=0 -
// infeasible by construction.
func inconsistentBounds() oracle.Oracle {
	return oracle.NewAdapter(oracle.Definition{
		N: 1,
		M: 0,
		XBounds: []oracle.Bound{{1, 0}},
		X0:      []float64{0.5},
		Objective: func(x, grad []float64) float64 {
			grad[0] = 2 * x[0]
			return x[0] * x[0]
		},
		Constraint: func(x, c, jac []float64) {},
		Hessian: func(x []float64, objScale float64, lambda, hess []float64) {
			hess[0] = 2 * objScale
		},
	})
}

func TestDriverInconsistentProblem(t *testing.T) {
	d := NewDriver(DefaultOptions())
	d.Clock = &FakeClock{}
	if err := d.Initialize(inconsistentBounds(), "inconsistent"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	exit := d.Optimize()
	if exit != QPErrorInfeasible {
		t.Fatalf("exit = %v, want QPERROR_INFEASIBLE", exit)
	}
}

// hs71 is scenario 2: Hock-Schittkowski problem 71, f* ~ 17.014017.
func hs71() oracle.Oracle {
	return oracle.NewAdapter(oracle.Definition{
		N: 4,
		M: 2,
		XBounds: []oracle.Bound{{1, 5}, {1, 5}, {1, 5}, {1, 5}},
		CBounds: []oracle.Bound{{25, oracle.NoBound}, {40, 40}},
		X0:      []float64{1, 5, 5, 1},
		Objective: func(x, grad []float64) float64 {
			x1, x2, x3, x4 := x[0], x[1], x[2], x[3]
			grad[0] = x4*(x1+x2+x3) + x1*x4
			grad[1] = x1 * x4
			grad[2] = x1*x4 + 1
			grad[3] = x1 * (x1 + x2 + x3)
			return x1*x4*(x1+x2+x3) + x3
		},
		Constraint: func(x, c, jac []float64) {
			x1, x2, x3, x4 := x[0], x[1], x[2], x[3]
			c[0] = x1 * x2 * x3 * x4
			c[1] = x1*x1 + x2*x2 + x3*x3 + x4*x4
			jac[0], jac[1], jac[2], jac[3] = x2*x3*x4, x1*x3*x4, x1*x2*x4, x1*x2*x3
			jac[4], jac[5], jac[6], jac[7] = 2*x1, 2*x2, 2*x3, 2*x4
		},
		Hessian: func(x []float64, objScale float64, lambda, hess []float64) {
			x1, x2, x3, x4 := x[0], x[1], x[2], x[3]
			l1, l2 := lambda[0], lambda[1]
			hess[0] = objScale*2*x4 + l2*2
			hess[1] = objScale*x4 + l1*x3*x4
			hess[2] = objScale*x4 + l1*x2*x4
			hess[3] = objScale*(2*x1+x2+x3) + l1*x2*x3
			hess[5] = l2 * 2
			hess[6] = l1 * x1 * x4
			hess[7] = objScale*x1 + l1*x1*x3
			hess[10] = l2 * 2
			hess[11] = objScale*x1 + l1*x1*x2
			hess[15] = l2 * 2
		},
	})
}

func TestDriverHS71(t *testing.T) {
	d := NewDriver(DefaultOptions())
	d.Clock = &FakeClock{}
	if err := d.Initialize(hs71(), "hs71"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	exit := d.Optimize()
	if exit != Optimal {
		t.Fatalf("exit = %v, want OPTIMAL", exit)
	}
	if math.Abs(d.State().ObjValue-17.014017) > 1e-3 {
		t.Fatalf("f* = %v, want ~17.014017", d.State().ObjValue)
	}
}

// boundedRosenbrock is scenario 4: bounded Rosenbrock, expects OPTIMAL at
// (1,1) within 50 iterations.
func boundedRosenbrock() oracle.Oracle {
	return oracle.NewAdapter(oracle.Definition{
		N: 2,
		M: 0,
		XBounds: []oracle.Bound{{-2, 2}, {-2, 2}},
		X0:      []float64{-1.2, 1},
		Objective: func(x, grad []float64) float64 {
			a, b := x[0], x[1]
			f := 100*(b-a*a)*(b-a*a) + (1-a)*(1-a)
			grad[0] = -400*a*(b-a*a) - 2*(1-a)
			grad[1] = 200 * (b - a*a)
			return f
		},
		Constraint: func(x, c, jac []float64) {},
		Hessian: func(x []float64, objScale float64, lambda, hess []float64) {
			a, b := x[0], x[1]
			hess[0] = objScale * (1200*a*a - 400*b + 2)
			hess[1] = objScale * (-400 * a)
			hess[2] = objScale * (-400 * a)
			hess[3] = objScale * 200
		},
	})
}

func TestDriverBoundedRosenbrock(t *testing.T) {
	d := NewDriver(DefaultOptions())
	d.Clock = &FakeClock{}
	if err := d.Initialize(boundedRosenbrock(), "bounded-rosenbrock"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	exit := d.Optimize()
	if exit != Optimal {
		t.Fatalf("exit = %v, want OPTIMAL", exit)
	}
	x := d.State().X
	if math.Hypot(x[0]-1, x[1]-1) > 1e-3 {
		t.Fatalf("x* = %v, want ~(1,1)", x)
	}
	if d.Stats.Iterations > 50 {
		t.Fatalf("iterations = %d, want <= 50", d.Stats.Iterations)
	}
}

// TestDriverTrustRegionTooSmall is scenario 5: HS71 with an initial radius
// of 2, a floor of 1.0 and a 0.01 decrease factor, so one shrink ends the
// solve with TRUST_REGION_TOO_SMALL; an OPTIMAL exit is also accepted.
func TestDriverTrustRegionTooSmall(t *testing.T) {
	opt := DefaultOptions()
	opt.TrustRegionInitValue = 2
	opt.TrustRegionMinValue = 1.0
	opt.TrustRegionDecreaseFactor = 0.01
	d := NewDriver(opt)
	d.Clock = &FakeClock{}
	if err := d.Initialize(hs71(), "hs71-tiny-trust-region"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	exit := d.Optimize()
	if exit != TrustRegionTooSmall && exit != Optimal {
		t.Fatalf("exit = %v, want TRUST_REGION_TOO_SMALL or an early OPTIMAL", exit)
	}
}

// TestDriverUseNewFormulationSkipsClamp confirms Options.UseNewFormulation
// leaves an out-of-bounds x0 unclamped at Initialize time, unlike the
// legacy default.
func TestDriverUseNewFormulationSkipsClamp(t *testing.T) {
	o := oracle.NewAdapter(oracle.Definition{
		N: 1,
		M: 0,
		XBounds: []oracle.Bound{{-1, 1}},
		X0:      []float64{5},
		Objective: func(x, grad []float64) float64 {
			grad[0] = 2 * x[0]
			return x[0] * x[0]
		},
		Constraint: func(x, c, jac []float64) {},
		Hessian: func(x []float64, objScale float64, lambda, hess []float64) {
			hess[0] = 2 * objScale
		},
	})

	opt := DefaultOptions()
	opt.UseNewFormulation = true
	d := NewDriver(opt)
	d.Clock = &FakeClock{}
	if err := d.Initialize(o, "unclamped-x0"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if d.State().X[0] != 5 {
		t.Fatalf("X[0] = %v, want unclamped 5", d.State().X[0])
	}
}

func TestDriverIterationCap(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxNumIterations = 1
	d := NewDriver(opt)
	d.Clock = &FakeClock{}
	if err := d.Initialize(unconstrainedQuadratic(), "iter-cap"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	exit := d.Optimize()
	if exit != ExceedMaxIterations && exit != Optimal {
		t.Fatalf("exit = %v, want EXCEED_MAX_ITERATIONS or an early OPTIMAL", exit)
	}
	if exit == ExceedMaxIterations && d.Stats.Iterations != 1 {
		t.Fatalf("stats.Iterations = %d, want 1", d.Stats.Iterations)
	}
}
