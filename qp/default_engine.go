package qp

import "math"

// rowKind classifies a row assembled into lsei's C or G matrices, so
// defaultEngine can recombine the two one-sided inequality multipliers a
// ranged row contributes back into a single signed multiplier (spec.md
// §4.4's μ ≥ 0 lower-active / μ ≤ 0 upper-active convention).
type rowKind int

const (
	rowConstraintLower rowKind = iota
	rowConstraintUpper
	rowBoundLower
	rowBoundUpper
)

type ineqRow struct {
	kind rowKind
	orig int // constraint or variable index this row derives from
}

// defaultEngine solves Problem by regularizing H into an SPD matrix,
// Cholesky-factoring it, and handing the factor to lsei as the "E" matrix
// of a least-squares problem whose normal equations reproduce the QP's
// first-order system - the adaptation this module's design notes
// describe: reusing curioloop-optimizer/slsqp's constrained least-squares
// core as the default QP engine instead of writing an active-set QP
// solver from scratch.
type defaultEngine struct {
	RegEps    float64
	MaxIterLs int
}

// NewDefaultEngine returns the Engine backing qp.Handler when no external
// QP solver is configured.
func NewDefaultEngine() Engine {
	return &defaultEngine{RegEps: 1e-10, MaxIterLs: 0}
}

func (e *defaultEngine) Solve(p *Problem, _ bool) (*Solution, Status) {
	n := p.N
	if n <= 0 {
		return nil, StatusNotInitialized
	}

	hDense := make([]float64, n*n) // row-major, hDense[i*n+j] = H(i,j)
	if p.H != nil {
		hDense = p.H.ToDense()
	}

	// With no Hessian (the LP handler) the identity is factored instead, so
	// E = I, f = -g and the engine minimizes gᵀz + ½‖z‖² over the constraints.
	eps0 := e.regEps()
	if p.H == nil {
		eps0 = 1
	}
	r, ok := regularizedCholesky(hDense, n, eps0)
	if !ok {
		return nil, StatusUnknown
	}

	// f = -R⁻ᵀg : solve Rᵀy = g (row-major R, as produced by dpofa), then negate.
	f := make([]float64, n)
	copy(f, p.G)
	dtrsl(r, n, n, f, 1, solveUpperT)
	for i := range f {
		f[i] = -f[i]
	}

	// lsei/lsi/ldp use column-major storage throughout (a direct
	// translation of the original Fortran Lawson-Hanson routines), so R -
	// computed row-major by dpofa above - is re-packed here rather than
	// reused in place; the lower triangle dpofa leaves untouched is
	// dropped, since only the upper triangle is meaningful.
	eCol := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			eCol[i+n*j] = r[i*n+j]
		}
	}

	aDense := make([]float64, p.M*n) // row-major
	if p.A != nil {
		aDense = p.A.ToDense()
	}

	var eqRows, ineqRows [][]float64
	var d, h []float64
	var gKinds []ineqRow

	for i := 0; i < p.M; i++ {
		lo, up := p.ALower[i], p.AUpper[i]
		row := aDense[i*n : i*n+n]
		if !math.IsNaN(lo) && !math.IsNaN(up) && lo == up {
			eqRows = append(eqRows, append([]float64(nil), row...))
			d = append(d, lo)
			continue
		}
		if !math.IsNaN(lo) {
			ineqRows = append(ineqRows, append([]float64(nil), row...))
			h = append(h, lo)
			gKinds = append(gKinds, ineqRow{rowConstraintLower, i})
		}
		if !math.IsNaN(up) {
			neg := make([]float64, n)
			for j := 0; j < n; j++ {
				neg[j] = -row[j]
			}
			ineqRows = append(ineqRows, neg)
			h = append(h, -up)
			gKinds = append(gKinds, ineqRow{rowConstraintUpper, i})
		}
	}

	for j := 0; j < n; j++ {
		lo, up := p.Lower[j], p.Upper[j]
		if !math.IsNaN(lo) && !math.IsNaN(up) && lo == up {
			row := make([]float64, n)
			row[j] = 1
			eqRows = append(eqRows, row)
			d = append(d, lo)
			continue
		}
		if !math.IsNaN(lo) {
			row := make([]float64, n)
			row[j] = 1
			ineqRows = append(ineqRows, row)
			h = append(h, lo)
			gKinds = append(gKinds, ineqRow{rowBoundLower, j})
		}
		if !math.IsNaN(up) {
			row := make([]float64, n)
			row[j] = -1
			ineqRows = append(ineqRows, row)
			h = append(h, -up)
			gKinds = append(gKinds, ineqRow{rowBoundUpper, j})
		}
	}

	mc := len(d)
	mg := len(h)
	l := n - mc
	me := n

	cCol := toColMajor(eqRows, mc, n)
	gCol := toColMajor(ineqRows, mg, n)

	maxIterLs := e.MaxIterLs

	wsLen := mc + (l+1)*(mg+2) + 2*mg + mc + me*l + me + mg*l
	w := make([]float64, wsLen)
	jw := make([]int, max(mg, l)+1)

	x := make([]float64, n)
	fCopy := make([]float64, n)
	copy(fCopy, f)
	dCopy := append([]float64(nil), d...)
	hCopy := append([]float64(nil), h...)

	_, mode := lsei(cCol, dCopy, eCol, fCopy, gCol, hCopy, mc, mc, n, me, mg, mg, n, x, w, jw, maxIterLs)

	status := statusFromLsMode(mode)
	if status != StatusOptimal {
		return nil, status
	}

	sol := &Solution{
		Z:              x,
		RowMultipliers: make([]float64, p.M),
		ColMultipliers: make([]float64, n),
	}

	// w[:mc] holds the equality-row multipliers in eqRows insertion order;
	// w[mc:mc+mg] holds the inequality-row multipliers in ineqRows order.
	// Recombine the split rows back into one signed multiplier per
	// original constraint/bound.
	eqIdx := 0
	for i := 0; i < p.M; i++ {
		lo, up := p.ALower[i], p.AUpper[i]
		if !math.IsNaN(lo) && !math.IsNaN(up) && lo == up {
			sol.RowMultipliers[i] = w[eqIdx]
			eqIdx++
		}
	}
	for j := 0; j < n; j++ {
		lo, up := p.Lower[j], p.Upper[j]
		if !math.IsNaN(lo) && !math.IsNaN(up) && lo == up {
			sol.ColMultipliers[j] = w[eqIdx]
			eqIdx++
		}
	}
	for k, kind := range gKinds {
		lam := w[mc+k]
		switch kind.kind {
		case rowConstraintLower:
			sol.RowMultipliers[kind.orig] += lam
		case rowConstraintUpper:
			sol.RowMultipliers[kind.orig] -= lam
		case rowBoundLower:
			sol.ColMultipliers[kind.orig] += lam
		case rowBoundUpper:
			sol.ColMultipliers[kind.orig] -= lam
		}
	}

	sol.Objective = 0.5*dotQuad(hDense, x, n) + dotVec(p.G, x)
	return sol, StatusOptimal
}

// toColMajor packs rows (each length n) into a column-major buffer with
// leading dimension leadDim = len(rows), the storage convention lsei/lsi
// expect throughout.
func toColMajor(rows [][]float64, leadDim, n int) []float64 {
	buf := make([]float64, leadDim*n)
	for r, row := range rows {
		for c := 0; c < n; c++ {
			buf[r+leadDim*c] = row[c]
		}
	}
	return buf
}

func (e *defaultEngine) regEps() float64 {
	if e.RegEps > 0 {
		return e.RegEps
	}
	return 1e-10
}

func statusFromLsMode(m lsMode) Status {
	switch m {
	case lsHasSolution:
		return StatusOptimal
	case lsConsIncompatible, lsLSISingularE, lsLSEISingularC:
		return StatusInfeasible
	case lsNNLSExceedMaxIter:
		return StatusExceedMaxIter
	case lsHFTIRankDefect:
		return StatusUnknown
	default:
		return StatusUnknown
	}
}

func dotVec(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func dotQuad(hDense, x []float64, n int) float64 {
	s := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s += x[i] * hDense[i*n+j] * x[j]
		}
	}
	return s
}
