package linalg

// Injection describes a pair of Size×Size identity blocks to be appended
// into a Triplet matrix: a +1 block anchored at (RowA,ColA) and a -1 block
// anchored at (RowB,ColB). The QP Builder uses exactly this shape to widen
// a constraint Jacobian J into the augmented [J | -I | +I] system realizing
// the ℓ1-penalty slacks u+, u- (original_source builds the same augmented
// Jacobian block by block in SpHbMat rather than re-deriving it from J each
// iteration).
type Injection struct {
	Size             int
	RowA, ColA       int // +1 block anchor
	RowB, ColB       int // -1 block anchor
}

// InjectIdentities appends the two identity blocks described by d into t,
// returning the triplet entry index range [start,end) they occupy. Each
// call appends the blocks again; qp.Handler calls it on a freshly built
// triplet for every solve and does not use the returned range.
func (t *Triplet) InjectIdentities(d Injection) (start, end int) {
	start = t.NNZ()
	for i := 0; i < d.Size; i++ {
		t.Append(d.RowA+i, d.ColA+i, one)
	}
	for i := 0; i < d.Size; i++ {
		t.Append(d.RowB+i, d.ColB+i, -one)
	}
	end = t.NNZ()
	return
}
