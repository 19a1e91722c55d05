// Command restartsqp runs the SL1QP driver against one of a small set of
// built-in example NLPs, in the spirit of the retrieval pack's
// flag-driven example binaries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/lanl-ansi/RestartSQP/oracle"
	"github.com/lanl-ansi/RestartSQP/plot"
	"github.com/lanl-ansi/RestartSQP/sqp"
)

func main() {
	opt := sqp.DefaultOptions()
	opt.BindFlags(pflag.CommandLine)

	problem := pflag.String("problem", "hs71", "built-in problem: hs71, rosenbrock, quadratic")
	plotPath := pflag.String("plot", "", "if set, render the convergence history to this PNG path")
	pflag.Parse()

	o, err := builtinProblem(*problem)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	d := sqp.NewDriver(opt)
	if err := d.Initialize(o, *problem); err != nil {
		fmt.Fprintf(os.Stderr, "initialize: %v\n", err)
		os.Exit(1)
	}

	exit := d.Optimize()
	st := d.State()
	fmt.Printf("exit: %s\n", exit)
	fmt.Printf("iterations: %d  qp-iterations: %d  penalty-adjustments: %d\n",
		d.Stats.Iterations, d.Stats.QPIterations, d.Stats.PenaltyAdjustments)
	fmt.Printf("x*: %v\n", st.X)
	fmt.Printf("f*: %v\n", st.ObjValue)

	if *plotPath != "" {
		samples := make([]plot.Sample, len(d.History))
		for i, h := range d.History {
			samples[i] = plot.Sample{Iteration: h.Iteration, Objective: h.Objective, Infeasibility: h.Infeasibility}
		}
		if err := plot.RenderConvergence(*plotPath, samples); err != nil {
			fmt.Fprintf(os.Stderr, "render convergence plot: %v\n", err)
			os.Exit(1)
		}
	}
}

// builtinProblem returns one of a few literal NLPs from spec.md §8's
// end-to-end scenarios, so the CLI has something to run without wiring an
// external Oracle.
func builtinProblem(name string) (oracle.Oracle, error) {
	switch name {
	case "quadratic":
		return quadraticExample(), nil
	case "rosenbrock":
		return rosenbrockExample(), nil
	case "hs71":
		return hs71Example(), nil
	default:
		return nil, fmt.Errorf("unknown problem %q (want one of: hs71, rosenbrock, quadratic)", name)
	}
}

func quadraticExample() oracle.Oracle {
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
			hess[0], hess[3] = objScale, objScale
		},
	})
}

// rosenbrockExample is spec.md §8 scenario 4: bounded Rosenbrock.
func rosenbrockExample() oracle.Oracle {
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

// hs71Example is spec.md §8 scenario 2: Hock-Schittkowski problem 71.
func hs71Example() oracle.Oracle {
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
