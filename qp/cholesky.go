// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"math"

	"github.com/lanl-ansi/RestartSQP/linalg"
)

const (
	solveLowerN = 0b00
	solveUpperN = 0b01
	solveLowerT = 0b10
	solveUpperT = 0b11
)

// dpofa factors a dense symmetric positive-definite matrix A = RᵀR, storing
// R in the upper triangle of a (row-major, row stride lda). Ported from
// curioloop-optimizer/lbfgsb.dpofa (LINPACK DPOFA); the defaultEngine calls
// this on the augmented QP's regularized Hessian before handing the
// resulting R to lsei as its "E" matrix.
func dpofa(a []float64, lda, n int) (info int) {
	if n > len(a) {
		panic("bound check error")
	}
	for j := 0; j < n; j++ {
		info = j + 1
		s := 0.0
		for k := 0; k < j; k++ {
			t := a[k*lda+j] - linalg.Ddot(k, a[k:], lda, a[j:], lda)
			t /= a[k*lda+k]
			a[k*lda+j] = t
			s += t * t
		}
		s = a[j*lda+j] - s
		if s <= 0.0 {
			return
		}
		a[j*lda+j] = math.Sqrt(s)
	}
	return 0
}

// dtrsl solves T*x=b or Tᵀ*x=b for triangular T of order n, in place on b.
// Ported from curioloop-optimizer/lbfgsb.dtrsl (LINPACK DTRSL).
func dtrsl(t []float64, ldt, n int, b []float64, ldb int, job int) (info int) {
	tn := uint(ldt * n)
	if len(t) <= 0 || len(b) <= 0 || tn > uint(len(t)) {
		panic("bound check error")
	}

	for idx := uint(0); idx < tn; idx += uint(1 + ldt) {
		if t[idx] == 0.0 {
			info = 1 + int(idx)/(1+ldt)
			return
		}
	}

	switch job {
	case solveLowerN:
		b[0] /= t[0]
		for j := 1; j < n; j++ {
			temp := -b[(j-1)*ldb]
			linalg.Daxpy(n-j, temp, t[j*ldt+(j-1):], ldt, b[j*ldb:], ldb)
			b[j*ldb] /= t[j*ldt+j]
		}
	case solveUpperN:
		b[(n-1)*ldb] /= t[(n-1)*ldt+(n-1)]
		for j := n - 2; j >= 0; j-- {
			temp := -b[(j+1)*ldb]
			linalg.Daxpy(j+1, temp, t[j+1:], ldt, b, ldb)
			b[j*ldb] /= t[j*ldt+j]
		}
	case solveLowerT:
		b[(n-1)*ldb] /= t[(n-1)*ldt+(n-1)]
		for j := n - 2; j >= 0; j-- {
			temp := linalg.Ddot((n-1)-j, t[(j+1)*ldt+j:], ldt, b[(j+1)*ldb:], ldb)
			b[j*ldb] = (b[j*ldb] - temp) / t[j*ldt+j]
		}
	case solveUpperT:
		b[0] /= t[0]
		for j := 1; j < n; j++ {
			temp := linalg.Ddot(j, t[j:], ldt, b, ldb)
			b[j*ldb] = (b[j*ldb] - temp) / t[j*ldt+j]
		}
	default:
		info = -1
	}
	return
}

// regularizedCholesky factors H+shift*I for successively larger diagonal
// shifts, starting at eps0, until dpofa reports a positive-definite
// factorization or shiftCap is exceeded. This is the resolution the
// module's design notes adopt for the open question of what the QP
// Builder should do when the oracle's Hessian of the Lagrangian is not
// positive definite: the modified-Cholesky fallback mirrors dpofa's own
// rank-failure signal (the failing pivot index) by restarting rather than
// attempting an in-place rank-1 repair.
func regularizedCholesky(hDense []float64, n int, eps0 float64) (r []float64, ok bool) {
	const shiftCap = 1e8
	shift := eps0
	work := make([]float64, n*n)
	for {
		copy(work, hDense)
		for i := 0; i < n; i++ {
			work[i*n+i] += shift
		}
		if info := dpofa(work, n, n); info == 0 {
			return work, true
		}
		shift *= 10
		if shift > shiftCap {
			return nil, false
		}
	}
}
