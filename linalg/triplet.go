package linalg

import "fmt"

// entry is a single (row, col, value) triple.
type entry struct {
	row, col int
	val      float64
}

// Triplet is a sparse matrix stored in coordinate (COO) form: an unordered
// list of (row, col, value) triples, duplicates allowed and summed on
// conversion to Compressed form.
//
// SymmetricUpper marks a matrix that stores only its upper triangle
// (row ≤ col); Cholesky-style code elsewhere in qp relies on this flag
// rather than re-deriving symmetry from the stored pattern.
//
// Grounded on the minimal triplet matrix in
// vladimir-ch-iterative/internal/triplet, generalized with the symmetric-
// upper flag and identity-injection bookkeeping original_source's
// SpHbMat needs for the QP's slack-variable Jacobian augmentation.
type Triplet struct {
	rows, cols     int
	entries        []entry
	SymmetricUpper bool
}

// NewTriplet allocates an empty rows×cols triplet matrix.
func NewTriplet(rows, cols int) *Triplet {
	if rows < 0 || cols < 0 {
		panic("linalg: negative triplet dimensions")
	}
	return &Triplet{rows: rows, cols: cols}
}

// Dims returns the matrix's row and column counts.
func (t *Triplet) Dims() (rows, cols int) { return t.rows, t.cols }

// NNZ returns the number of stored (possibly duplicate) entries.
func (t *Triplet) NNZ() int { return len(t.entries) }

// Append records a value at (row, col), panicking if either index is out
// of range. Multiple Append calls at the same (row, col) accumulate when
// materialized via Compress.
func (t *Triplet) Append(row, col int, val float64) {
	if row < 0 || row >= t.rows || col < 0 || col >= t.cols {
		panic(fmt.Sprintf("linalg: triplet index (%d,%d) out of bounds for %dx%d matrix", row, col, t.rows, t.cols))
	}
	if t.SymmetricUpper && row > col {
		panic(fmt.Sprintf("linalg: symmetric-upper triplet rejects lower entry (%d,%d)", row, col))
	}
	t.entries = append(t.entries, entry{row, col, val})
}

// Reset discards all entries, keeping the matrix's declared shape.
func (t *Triplet) Reset() {
	t.entries = t.entries[:0]
}

// Each calls f once per stored entry in insertion order, including
// duplicates. It is the low-level iterator Compress and the qp Handler's
// dense-assembly routines build on.
func (t *Triplet) Each(f func(row, col int, val float64)) {
	for _, e := range t.entries {
		f(e.row, e.col, e.val)
	}
}

// ToDense materializes the matrix into a dense row-major slice of length
// rows*cols, summing duplicate entries and mirroring the upper triangle
// when SymmetricUpper is set. Intended for the small augmented QP systems
// the default engine solves, not for large sparse problems.
func (t *Triplet) ToDense() []float64 {
	d := make([]float64, t.rows*t.cols)
	for _, e := range t.entries {
		d[e.row*t.cols+e.col] += e.val
		if t.SymmetricUpper && e.row != e.col {
			d[e.col*t.cols+e.row] += e.val
		}
	}
	return d
}
