package linalg

import "sort"

// Compressed is a row-compressed (CSR) sparse matrix derived once from a
// Triplet and then refreshed in place every SQP iteration: the Jacobian and
// Hessian of the Lagrangian keep the same sparsity pattern across
// iterations (the oracle re-evaluates the same nonzero slots), only the
// values change. Storing the stable row-major (row, col) sort permutation lets
// Handler re-apply fresh triplet values without re-sorting, the same
// value-only-refresh contract original_source's SpHbMat implements for its
// Harwell-Boeing storage.
type Compressed struct {
	Rows, Cols int
	RowPtr     []int     // length Rows+1
	ColIdx     []int     // length NNZ, columns in ascending order per row
	Vals       []float64 // length NNZ

	// Order[i] gives the position in (ColIdx,Vals) that the i-th Triplet
	// entry (in its original Each iteration order) was merged into. Compress
	// fills it; ApplyValues reads it to place fresh values without re-sorting.
	Order []int

	symmetricUpper bool
}

// Compress builds a Compressed matrix from t, recording the permutation
// needed by ApplyValues. Duplicate (row,col) triplet entries are summed.
func Compress(t *Triplet) *Compressed {
	rows, cols := t.Dims()
	type kv struct {
		row, col int
		val      float64
		orig     int
	}
	items := make([]kv, 0, t.NNZ())
	idx := 0
	t.Each(func(row, col int, val float64) {
		items = append(items, kv{row, col, val, idx})
		idx++
	})

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].row != items[j].row {
			return items[i].row < items[j].row
		}
		return items[i].col < items[j].col
	})

	c := &Compressed{Rows: rows, Cols: cols, symmetricUpper: t.SymmetricUpper}
	c.RowPtr = make([]int, rows+1)
	c.Order = make([]int, len(items))

	slot := -1
	lastRow, lastCol := -1, -1
	for _, it := range items {
		if slot < 0 || it.row != lastRow || it.col != lastCol {
			c.ColIdx = append(c.ColIdx, it.col)
			c.Vals = append(c.Vals, it.val)
			slot++
			for r := lastRow + 1; r <= it.row; r++ {
				c.RowPtr[r] = slot
			}
			lastRow, lastCol = it.row, it.col
		} else {
			c.Vals[slot] += it.val
		}
		c.Order[it.orig] = slot
	}
	for r := lastRow + 1; r <= rows; r++ {
		c.RowPtr[r] = len(c.ColIdx)
	}
	return c
}

// ApplyValues re-applies fresh triplet values (in the same Each order used
// to build c originally) through the cached Order permutation, without
// re-sorting. The caller must pass the same number of entries, in the same
// order, that produced c.
func (c *Compressed) ApplyValues(t *Triplet) {
	Dzero(c.Vals)
	i := 0
	t.Each(func(row, col int, val float64) {
		c.Vals[c.Order[i]] += val
		i++
	})
}

// ToDense materializes c into a dense row-major slice of length Rows*Cols,
// mirroring the upper triangle when SymmetricUpper was set at Compress
// time. Intended for the small augmented QP systems the default engine
// solves, not for large sparse problems.
func (c *Compressed) ToDense() []float64 {
	d := make([]float64, c.Rows*c.Cols)
	for r := 0; r < c.Rows; r++ {
		start, end := c.RowRange(r)
		for k := start; k < end; k++ {
			col, v := c.ColIdx[k], c.Vals[k]
			d[r*c.Cols+col] += v
			if c.symmetricUpper && col != r {
				d[col*c.Cols+r] += v
			}
		}
	}
	return d
}

// RowRange returns the [start,end) slice bounds into ColIdx/Vals for row r.
func (c *Compressed) RowRange(r int) (start, end int) {
	return c.RowPtr[r], c.RowPtr[r+1]
}

// MulVec computes y := A*x, honoring SymmetricUpper by mirroring the
// implicit lower triangle.
func (c *Compressed) MulVec(x, y []float64) {
	Dzero(y)
	for r := 0; r < c.Rows; r++ {
		start, end := c.RowRange(r)
		for k := start; k < end; k++ {
			col, v := c.ColIdx[k], c.Vals[k]
			y[r] += v * x[col]
			if c.symmetricUpper && col != r {
				y[col] += v * x[r]
			}
		}
	}
}
