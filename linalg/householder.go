// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "math"

// H1 constructs the m×m Householder vector u and scalar s that transform
// Qv ≡ y for an m-vector v. The Householder matrix is Q = Iₘ - b⁻¹uuᵀ where
// b = s·uₚ.
//
// lₚ is the index of the pivot element, 0 ≤ lₚ < l₁. If l₁ < m, the
// transformation zeroes out elements indexed from l₁ through m; if l₁ ≥ m
// the subroutine performs an identity transformation.
//
// On input v contains the pivot vector, ive is the storage increment
// between elements. On output v contains the Householder vector u; the
// u[lₚ] element is returned separately.
//
// C.L. Lawson, R.J. Hanson, "Solving least squares problems", chapter 10.
func H1(p, l, m int, v []float64, ive int) (up float64) {
	if p < 0 || p >= l || l >= m {
		return
	}

	lp := uint(p * ive)
	l1 := uint(l * ive)
	lm := uint((m - 1) * ive)
	lv := uint(len(v))
	if m >= 0 && ive > 0 && lp >= 0 && lp < lv && l1 >= 0 && l1 < lv && lm >= 0 && lm < lv {
		maxV := math.Abs(v[lp])
		for j := l1; j <= lm; j += uint(ive) {
			maxV = math.Max(math.Abs(v[j]), maxV)
		}
		if maxV <= zero {
			return
		}

		invV := one / maxV
		sumV := math.Pow(v[lp]*invV, 2)
		for j := l1; j <= lm; j += uint(ive) {
			sumV += math.Pow(v[j]*invV, 2)
		}

		s := maxV * math.Sqrt(sumV)
		if v[lp] > zero {
			s = -s
		}

		up = v[lp] - s
		v[lp] = s
	} else {
		panic("bound check error")
	}
	return
}

// H2 applies the m×m Householder transformation Qc = c + b⁻¹(uᵀc)·u to the
// columns of matrix c.
//
//   - ice: storage increment between elements of a vector in c.
//   - icv: storage increment between vectors in c.
//   - ncv: number of vectors in c to transform; no-op if ncv ≤ 0.
func H2(p, l, m int, u []float64, iue int, up float64, c []float64, ice, icv, ncv int) {
	if p < 0 || p >= l || l >= m || ncv <= 0 {
		return
	}

	b := u[p*iue] * up
	if b >= zero {
		return
	}

	b = one / b
	base := uint(ice * p)
	incr := uint(ice * (l - p))

	l1 := uint(l * iue)
	lm := uint((m - 1) * iue)
	lu := uint(len(u))
	lc := uint(len(c))
	ln := base + uint(icv)*(uint(ncv)-1)
	if m >= 0 && iue > 0 && l1 < lu && lm >= 0 && lm < lu && base < lc && ln < lc {
		for j := base; j <= ln; j += uint(icv) {
			c1, cm := j+incr, (j+incr)+uint(m-l-1)*uint(ice)
			if c1 >= lc || cm >= lc {
				panic("bound check error")
			}
			sm := c[j] * up
			for iu, ic := l1, c1; iu <= lm && ic <= cm; {
				sm += c[ic] * u[iu]
				ic += uint(ice)
				iu += uint(iue)
			}
			if sm != zero {
				sm *= b
				c[j] += sm * up
				for iu, ic := l1, c1; iu <= lm && ic <= cm; {
					c[ic] += sm * u[iu]
					ic += uint(ice)
					iu += uint(iue)
				}
			}
		}
	} else {
		panic("bound check error")
	}
}

// G1 computes the 2×2 Givens rotation matrix that zeros the second
// component of [a b]ᵀ.
//
// C.L. Lawson, R.J. Hanson, "Solving least squares problems", chapter 3.
func G1(a, b float64) (c, s, sig float64) {
	var xr, yr float64

	if xa, xb := math.Abs(a), math.Abs(b); xa > xb {
		xr = b / a
		yr = math.Sqrt(1 + xr*xr)
		c = math.Copysign(1/yr, a)
		s = c * xr
		sig = xa * yr
	} else if xb > 0 {
		xr = a / b
		yr = math.Sqrt(1 + xr*xr)
		s = math.Copysign(1/yr, b)
		c = s * xr
		sig = xb * yr
	} else {
		s = 1
	}
	return
}

// G2 applies the Givens rotation matrix computed by G1.
func G2(c, s float64, x, y float64) (xr, yr float64) {
	xr = c*x + s*y
	yr = -s*x + c*y
	return
}
