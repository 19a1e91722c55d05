package linalg

import (
	"math"
	"testing"
)

func TestVectorNorms(t *testing.T) {
	v := Vector{3, -4, 0, 1}
	if got := v.Norm2(); math.Abs(got-math.Sqrt(26)) > 1e-12 {
		t.Errorf("Norm2() = %v, want %v", got, math.Sqrt(26))
	}
	if got := v.Norm1(); got != 8 {
		t.Errorf("Norm1() = %v, want 8", got)
	}
	if got := v.NormInf(); got != 4 {
		t.Errorf("NormInf() = %v, want 4", got)
	}
}

func TestVectorAxpyScale(t *testing.T) {
	v := Vector{1, 2, 3}
	w := Vector{1, 1, 1}
	v.Axpy(2, w)
	want := Vector{3, 4, 5}
	for i := range v {
		if v[i] != want[i] {
			t.Fatalf("Axpy: got %v want %v", v, want)
		}
	}
	v.Scale(2)
	want = Vector{6, 8, 10}
	for i := range v {
		if v[i] != want[i] {
			t.Fatalf("Scale: got %v want %v", v, want)
		}
	}
}

func TestPosNegPart(t *testing.T) {
	if PosPart(3) != 3 || PosPart(-3) != 0 {
		t.Fatal("PosPart wrong")
	}
	if NegPart(-3) != 3 || NegPart(3) != 0 {
		t.Fatal("NegPart wrong")
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 10); got != 5 {
		t.Fatalf("Clamp interior = %v", got)
	}
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Fatalf("Clamp lower = %v", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Fatalf("Clamp upper = %v", got)
	}
	if got := Clamp(-5, math.NaN(), 10); got != -5 {
		t.Fatalf("Clamp with no lower bound = %v", got)
	}
}
