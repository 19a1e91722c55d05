// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"math"

	"github.com/lanl-ansi/RestartSQP/linalg"
)

const (
	zero = 0.0
	one  = 1.0
	eps  = float64(7)/3 - float64(4)/3 - 1.
)

// lsMode is the internal outcome of the constrained least-squares core
// (NNLS/LDP/LSI/HFTI/LSEI), adapted verbatim in spirit from
// curioloop-optimizer/slsqp's sqpMode. defaultEngine maps it onto the
// public qp.Status taxonomy.
type lsMode int

const (
	lsOK lsMode = iota
	lsHasSolution
	lsBadArgument
	lsNNLSExceedMaxIter
	lsConsIncompatible
	lsLSISingularE
	lsLSEISingularC
	lsHFTIRankDefect
)

// nnls solves min‖Ax-b‖₂ subject to x ≥ 0 by the Lawson-Hanson active-set
// method. Ported from curioloop-optimizer/slsqp.NNLS (itself Algorithm
// 23.10 of Lawson & Hanson, "Solving least squares problems"); the
// numerical recurrence is unchanged, only the BLAS/Householder calls are
// routed through the linalg package so the qp engine shares its primitives
// with the rest of this module instead of duplicating slsqp's private copy.
func nnls(
	m, n int,
	a []float64, mda int,
	b []float64,
	x []float64,
	w []float64,
	z []float64, index []int,
	maxIter int) (float64, lsMode) {

	const factor = 0.01

	if m <= 0 || n <= 0 || mda < m ||
		len(a) < mda*n || len(b) < m || len(x) < n || len(w) < n || len(z) < m || len(index) < n {
		return math.NaN(), lsBadArgument
	}

	if maxIter <= 0 {
		maxIter = 3 * n
	}

	np := 0
	z1 := 0

	index = index[:n]
	for i := range index {
		index[i] = i
	}

	linalg.Dzero(x[:n])

	iter := 0
	term := func() (rnorm float64, mode lsMode) {
		if np < m {
			rnorm = linalg.Dnrm2(m-np, b[np:], 1)
		} else {
			linalg.Dzero(w[:n])
		}
		if iter > maxIter {
			mode = lsNNLSExceedMaxIter
		} else {
			mode = lsHasSolution
		}
		return
	}

	for {
		if z1 >= n || np >= m {
			return term()
		}

		for _, j := range index[z1:] {
			w[j] = linalg.Ddot(m-np, a[np+mda*j:], 1, b[np:], 1)
		}

		for {
			wmax, izmax := zero, 0
			for i, j := range index[z1:] {
				if w[j] > wmax {
					wmax, izmax = w[j], z1+i
				}
			}

			if wmax <= zero {
				return term()
			}

			iz := izmax
			j := index[iz]
			aj := a[mda*j : mda*j+m : mda*j+m]

			asave := aj[np]
			up := linalg.H1(np, np+1, m, aj, 1)

			accept := false
			unorm := linalg.Dnrm2(np, aj, 1)
			if math.Abs(aj[np])*factor >= unorm*eps {
				copy(z[:m], b[:m])
				linalg.H2(np, np+1, m, aj, 1, up, z, 1, 1, 1)
				ztest := z[np] / aj[np]
				accept = ztest > zero
			}

			if !accept {
				aj[np] = asave
				w[j] = zero
				continue
			}

			copy(b[:m], z[:m])

			index[iz] = index[z1]
			index[z1] = j
			z1++
			np++

			if z1 < n {
				for _, jj := range index[z1:] {
					linalg.H2(np-1, np, m, aj, 1, up, a[jj*mda:], 1, mda, 1)
				}
			}
			if np < m {
				linalg.Dzero(aj[np:m])
			}
			w[j] = zero
			break
		}

		for {
			for ip, jj := np-1, -1; ip >= 0; ip-- {
				if jj >= 0 {
					linalg.Daxpy(ip+1, -z[ip+1], a[jj*mda:], 1, z, 1)
				}
				jj = index[ip]
				z[ip] /= a[ip+jj*mda]
			}

			if iter++; iter > maxIter {
				return term()
			}

			alpha, jj := 2.0, -1
			for ip, l := range index[:np] {
				if z[ip] <= zero {
					t := -x[l] / (z[ip] - x[l])
					if alpha > t {
						alpha, jj = t, ip
					}
				}
			}

			if jj < 0 {
				for ip, idx := range index[:np] {
					x[idx] = z[ip]
				}
				break
			}

			for ip, l := range index[:np] {
				x[l] += alpha * (z[ip] - x[l])
			}

			i := index[jj]
			for {
				x[i] = zero
				if jj++; jj < np {
					for j := jj; j < np; j++ {
						ii := index[j]
						ci := a[ii*mda:]
						index[j-1] = ii
						var cc, ss float64
						cc, ss, ci[j-1] = linalg.G1(ci[j-1], ci[j])
						ci[j] = zero
						for l := 0; l < n; l++ {
							if l != ii {
								cl := a[l*mda : l*mda+j+1 : l*mda+j+1]
								cl[j-1], cl[j] = linalg.G2(cc, ss, cl[j-1], cl[j])
							}
						}
						b[j-1], b[j] = linalg.G2(cc, ss, b[j-1], b[j])
					}
				}

				np--
				z1--
				index[z1] = i

				for _, idx := range index[:np] {
					if x[idx] <= zero {
						continue
					}
				}
				break
			}

			copy(z[:m], b[:m])
		}
	}
}

// ldp solves min‖x‖₂ subject to Gx ≥ h by reduction to nnls. Ported from
// curioloop-optimizer/slsqp.LDP (Lawson & Hanson, Algorithm 23.27).
func ldp(
	m, n int,
	g []float64, mdg int,
	h []float64,
	x []float64,
	w []float64,
	jw []int,
	maxIter int,
) (xnorm float64, mode lsMode) {

	if n <= 0 {
		return math.NaN(), lsBadArgument
	}
	if m <= 0 {
		return 0, lsOK
	}

	if m > mdg || mdg*n > len(g) || m > len(h) || n > len(x) || (n+1)*(m+2)+2*m > len(w) || m > len(jw) {
		panic("bound check error")
	}

	iw := 0
	a := w[iw : iw+m*(n+1)]
	iw += len(a)
	b := w[iw : iw+(n+1)]
	iw += len(b)
	z := w[iw : iw+(n+1)]
	iw += len(z)
	u := w[iw : iw+m]
	iw += len(u)
	dv := w[iw : iw+m]

	for j := 0; j < m; j++ {
		linalg.Dcopy(n, g[j:], mdg, a[j*(n+1):], 1)
		a[j*(n+1)+n] = h[j]
	}

	linalg.Dzero(b[:n])
	b[n] = one

	var rnorm float64
	rnorm, mode = nnls(n+1, m, a, n+1, b, u, dv, z, jw, maxIter)

	var fac float64
	if mode == lsHasSolution {
		if rnorm <= zero {
			mode = lsConsIncompatible
		} else {
			fac = one - linalg.Ddot(m, h, 1, u, 1)
			if math.IsNaN(fac) || fac < eps {
				mode = lsConsIncompatible
			}
		}
	}
	if mode != lsHasSolution {
		return math.NaN(), mode
	}

	fac = one / fac
	for j := 0; j < n; j++ {
		x[j] = linalg.Ddot(m, g[mdg*j:], 1, u, 1) * fac
	}

	for j := 0; j < m; j++ {
		w[j] = u[j] * fac
	}

	xnorm = linalg.Dnrm2(n, x, 1)
	return
}

// lsi solves min‖Ex-f‖₂ subject to Gx ≥ h by reduction to ldp. Ported from
// curioloop-optimizer/slsqp.LSI (Lawson & Hanson, chapter 23 section 5).
func lsi(
	e []float64, f []float64,
	g []float64, h []float64,
	le, me, lg, mg, n int,
	x []float64,
	w []float64,
	jw []int,
	maxIterLs int) (xnorm float64, mode lsMode) {

	if n < 1 {
		return 0, lsBadArgument
	}

	for i := 0; i < n; i++ {
		j := min(i+1, n-1)
		t := linalg.H1(i, i+1, me, e[i*le:], 1)
		linalg.H2(i, i+1, me, e[i*le:], 1, t, e[j*le:], 1, le, n-i-1)
		linalg.H2(i, i+1, me, e[i*le:], 1, t, f, 1, 1, 1)
	}

	for i := 0; i < mg; i++ {
		for j := 0; j < n; j++ {
			diag := e[j+le*j]
			if math.Abs(diag) < eps || math.IsNaN(diag) {
				return math.NaN(), lsLSISingularE
			}
			g[i+lg*j] = (g[i+lg*j] - linalg.Ddot(j, g[i:], lg, e[j*le:], 1)) / diag
		}
		h[i] -= linalg.Ddot(n, g[i:], lg, f, 1)
	}

	if xnorm, mode = ldp(mg, n, g, lg, h, x, w, jw, maxIterLs); mode == lsHasSolution {
		linalg.Daxpy(n, one, f, 1, x, 1)
		for i := n - 1; i >= 0; i-- {
			j := min(i+1, n-1)
			x[i] = (x[i] - linalg.Ddot(n-i-1, e[i+le*j:], le, x[j:], 1)) / e[i+le*i]
		}
		j := min(n, me-1)
		t := linalg.Dnrm2(me-n, f[j:], 1)
		xnorm = math.Sqrt(xnorm*xnorm + t*t)
	}
	return
}

// hfti solves the rank-deficient linear least squares AX≅B by Householder
// forward triangulation with column interchange. Ported from
// curioloop-optimizer/slsqp.HFTI (Lawson & Hanson, Algorithm 14.9).
func hfti(
	a []float64, mda, m, n int,
	b []float64, mdb, nb int,
	tau float64,
	norm []float64,
	h, g []float64, ip []int) int {

	const factor = 0.001

	diag := min(m, n)
	if diag <= 0 {
		return 0
	}

	if n > len(h) || diag > len(h) || diag > len(ip) {
		panic("bound check error")
	}

	hmax := zero
	for j := 0; j < diag; j++ {
		lmax := j
		if j > 0 {
			v := math.NaN()
			for l := j; l < n; l++ {
				t := a[(j-1)+mda*l]
				if h[l] -= t * t; !(h[l] <= v) {
					lmax, v = l, h[l]
				}
			}
		}
		if j == 0 || factor*h[lmax] < hmax*eps {
			v := math.NaN()
			for l := j; l < n; l++ {
				sm := zero
				for _, t := range a[j+mda*l : m+mda*l] {
					sm += t * t
				}
				if h[l] = sm; !(h[l] <= v) {
					lmax, v = l, h[l]
				}
			}
			hmax = h[lmax]
		}

		ip[j] = lmax
		if ip[j] != j {
			c1, c2 := a[mda*j:mda*j+m], a[mda*lmax:mda*lmax+m]
			if m > len(c1) || m > len(c2) {
				panic("bound check error")
			}
			for i := 0; i < m; i++ {
				c1[i], c2[i] = c2[i], c1[i]
			}
			h[lmax] = h[j]
		}

		i := min(j+1, n-1)
		h[j] = linalg.H1(j, j+1, m, a[mda*j:], 1)
		linalg.H2(j, j+1, m, a[mda*j:], 1, h[j], a[mda*i:], 1, mda, n-j-1)
		linalg.H2(j, j+1, m, a[mda*j:], 1, h[j], b, 1, mdb, nb)
	}

	k := diag
	for j := 0; j < diag; j++ {
		if math.Abs(a[j+mda*j]) <= tau {
			k = j
			break
		}
	}

	if k > len(a) || k > len(b) || k > len(g) || nb > len(norm) {
		panic("bound check error")
	}

	for jb := 0; jb < nb; jb++ {
		sm := zero
		if k < m {
			for _, t := range b[mdb*jb+k : mdb*jb+m] {
				sm += t * t
			}
		}
		norm[jb] = math.Sqrt(sm)
	}

	if k > 0 {
		if k < n {
			for i := k - 1; i >= 0; i-- {
				g[i] = linalg.H1(i, k, n, a[i:], mda)
				linalg.H2(i, k, n, a[i:], mda, g[i], a, mda, 1, i)
			}
		}

		for jb := 0; jb < nb; jb++ {
			cb := b[mdb*jb:]
			if k > len(cb) || n > len(cb) {
				panic("bound check error")
			}

			for i := k - 1; i >= 0; i-- {
				sm := zero
				for j := uint(i + 1); j < uint(k); j++ {
					sm += a[i+mda*int(j)] * cb[j]
				}
				cb[i] = (cb[i] - sm) / a[i+mda*i]
			}

			if k < n {
				linalg.Dzero(cb[k:n])
				for i := 0; i < k; i++ {
					linalg.H2(i, k, n, a[i:], mda, g[i], cb, 1, mdb, 1)
				}
			}

			for j := diag - 1; j >= 0; j-- {
				if l := ip[j]; ip[j] != j {
					cb[l], cb[j] = cb[j], cb[l]
				}
			}
		}
	} else if nb > 0 {
		for jb := 0; jb < nb; jb++ {
			linalg.Dzero(b[mdb*jb : mdb*jb+n])
		}
	}

	return k
}

// lsei solves min‖Ex-f‖₂ subject to Cx = d and Gx ≥ h. Ported from
// curioloop-optimizer/slsqp.LSEI (Lawson & Hanson, chapter 20, Algorithm
// 20.24 and chapter 23 section 6); this is the numerical core defaultEngine
// drives once the augmented QP's Hessian has been Cholesky-factored into E.
func lsei(
	c []float64, d []float64,
	e []float64, f []float64,
	g []float64, h []float64,
	lc, mc, le, me, lg, mg, n int,
	x []float64,
	w []float64,
	jw []int,
	maxIterLs int,
) (norm float64, mode lsMode) {

	if n < 1 || mc > n {
		return math.NaN(), lsBadArgument
	}

	if n > len(x) || mc > len(x) ||
		mc < 0 || mc > len(c) || mc > len(d) ||
		me < 0 || me > len(e) || me > len(f) ||
		mg < 0 || mg > len(g) || mg > len(h) {
		panic("bound check error")
	}

	l := n - mc
	iw := mc
	ws := w[iw : iw+(l+1)*(mg+2)+2*mg]
	iw += len(ws)
	wp := w[iw : iw+mc]
	iw += len(wp)
	we := w[iw : iw+me*l]
	iw += len(we)
	wf := w[iw : iw+me]
	iw += len(wf)
	wg := w[iw : iw+mg*l]

	if mc > len(wp) || me > len(wf) {
		panic("bound check error")
	}

	for i := 0; i < mc; i++ {
		j := min(i+1, lc-1)
		wp[i] = linalg.H1(i, i+1, n, c[i:], lc)
		linalg.H2(i, i+1, n, c[i:], lc, wp[i], c[j:], lc, 1, mc-i-1)
		linalg.H2(i, i+1, n, c[i:], lc, wp[i], e, le, 1, me)
		linalg.H2(i, i+1, n, c[i:], lc, wp[i], g, lg, 1, mg)
	}

	for i := 0; i < mc; i++ {
		diag := c[i+lc*i]
		if math.Abs(diag) < eps {
			return math.NaN(), lsLSEISingularC
		}
		x[i] = (d[i] - linalg.Ddot(i, c[i:], lc, x, 1)) / diag
	}

	linalg.Dzero(ws[:mg])

	if mc < n {
		for i := 0; i < me; i++ {
			wf[i] = f[i] - linalg.Ddot(mc, e[i:], le, x, 1)
		}

		if l > 0 {
			if me > len(we) || mg > len(wg) {
				panic("bound check error")
			}
			for i := 0; i < me; i++ {
				linalg.Dcopy(l, e[i+le*mc:], le, we[i:], me)
			}
			for i := 0; i < mg; i++ {
				linalg.Dcopy(l, g[i+lg*mc:], lg, wg[i:], mg)
			}
		}

		if mg > 0 {
			for i := 0; i < mg; i++ {
				h[i] -= linalg.Ddot(mc, g[i:], lg, x, 1)
			}
			norm, mode = lsi(we, wf, wg, h, me, me, mg, mg, l, x[mc:n], ws, jw, maxIterLs)
			if mc == 0 {
				return
			}
			if mode != lsHasSolution {
				return math.NaN(), mode
			}
			t := linalg.Dnrm2(mc, x, 1)
			norm = math.Sqrt(norm*norm + t*t)
		} else {
			k, t := max(le, n), math.Sqrt(eps)
			var nrm [1]float64
			rank := hfti(we, me, me, l, wf, k, 1, t, nrm[:], w, w[l:], jw)
			norm = nrm[0]
			linalg.Dcopy(l, wf, 1, x[mc:n], 1)
			if rank != l {
				return norm, lsHFTIRankDefect
			}
		}
	}
	for i := 0; i < me; i++ {
		f[i] = linalg.Ddot(n, e[i:], le, x, 1) - f[i]
	}
	for i := 0; i < mc; i++ {
		d[i] = linalg.Ddot(me, e[i*le:], 1, f, 1) -
			linalg.Ddot(mg, g[i*lg:], 1, ws[:mg], 1)
	}
	for i := mc - 1; i >= 0; i-- {
		linalg.H2(i, i+1, n, c[i:], lc, wp[i], x, 1, 1, 1)
	}
	for i := mc - 1; i >= 0; i-- {
		j := min(i+1, lc-1)
		w[i] = (d[i] - linalg.Ddot(mc-i-1, c[j+lc*i:], 1, w[j:], 1)) / c[i+lc*i]
	}
	mode = lsHasSolution
	return
}
