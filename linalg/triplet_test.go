package linalg

import "testing"

func TestTripletAppendAndDense(t *testing.T) {
	tr := NewTriplet(2, 3)
	tr.Append(0, 0, 1)
	tr.Append(0, 0, 1) // duplicate, should sum
	tr.Append(1, 2, 5)

	d := tr.ToDense()
	want := []float64{2, 0, 0, 0, 0, 5}
	for i := range want {
		if d[i] != want[i] {
			t.Fatalf("ToDense() = %v, want %v", d, want)
		}
	}
}

func TestTripletOutOfBoundsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-bounds append")
		}
	}()
	tr := NewTriplet(2, 2)
	tr.Append(2, 0, 1)
}

func TestTripletSymmetricUpperRejectsLower(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for lower-triangle append on symmetric-upper triplet")
		}
	}()
	tr := NewTriplet(3, 3)
	tr.SymmetricUpper = true
	tr.Append(2, 0, 1)
}

func TestCompressAndApplyValues(t *testing.T) {
	tr := NewTriplet(2, 3)
	tr.Append(0, 0, 1)
	tr.Append(1, 2, 5)
	tr.Append(0, 1, 2)

	c := Compress(tr)
	want := []float64{1, 2, 0, 0, 0, 5}
	if got := c.ToDenseForTest(); !equalSlice(got, want) {
		t.Fatalf("Compress() dense = %v, want %v", got, want)
	}

	tr.Reset()
	tr.Append(0, 0, 10)
	tr.Append(1, 2, 50)
	tr.Append(0, 1, 20)
	c.ApplyValues(tr)
	want = []float64{10, 20, 0, 0, 0, 50}
	if got := c.ToDenseForTest(); !equalSlice(got, want) {
		t.Fatalf("ApplyValues() dense = %v, want %v", got, want)
	}
}

func (c *Compressed) ToDenseForTest() []float64 {
	d := make([]float64, c.Rows*c.Cols)
	for r := 0; r < c.Rows; r++ {
		s, e := c.RowRange(r)
		for k := s; k < e; k++ {
			d[r*c.Cols+c.ColIdx[k]] += c.Vals[k]
		}
	}
	return d
}

func equalSlice(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInjectIdentities(t *testing.T) {
	tr := NewTriplet(4, 6)
	start, end := tr.InjectIdentities(Injection{Size: 2, RowA: 0, ColA: 2, RowB: 0, ColB: 4})
	if start != 0 || end != 4 {
		t.Fatalf("InjectIdentities range = [%d,%d), want [0,4)", start, end)
	}
	d := tr.ToDense()
	want := []float64{
		0, 0, 1, 0, -1, 0,
		0, 0, 0, 1, 0, -1,
		0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0,
	}
	if !equalSlice(d, want) {
		t.Fatalf("ToDense() = %v, want %v", d, want)
	}
}
