package sqp

import "math"

// RangeType classifies a single row's (lower, upper) pair, per spec.md §3.
type RangeType int

const (
	Unbounded RangeType = iota
	BoundedAbove
	BoundedBelow
	Bounded
	Equal
)

// classifyRange applies spec.md §3's cons_type/bound_type taxonomy to one
// (lower, upper) pair. NaN denotes an open side.
func classifyRange(lower, upper float64) RangeType {
	hasLower := !math.IsNaN(lower)
	hasUpper := !math.IsNaN(upper)
	switch {
	case hasLower && hasUpper && lower == upper:
		return Equal
	case hasLower && hasUpper:
		return Bounded
	case hasLower:
		return BoundedBelow
	case hasUpper:
		return BoundedAbove
	default:
		return Unbounded
	}
}

// ActiveSet records which side of a (possibly two-sided) bound is active,
// per spec.md §3's active-set markers.
type ActiveSet int

const (
	Inactive ActiveSet = iota
	ActiveBelow
	ActiveAbove
	ActiveBothSide
)

// classifyActive determines which side of [lower, upper] value sits
// within activeSetTol of, given the row's RangeType.
func classifyActive(value, lower, upper, activeSetTol float64, rt RangeType) ActiveSet {
	nearLower := rt == BoundedBelow || rt == Bounded || rt == Equal
	nearUpper := rt == BoundedAbove || rt == Bounded || rt == Equal
	atLower := nearLower && math.Abs(value-lower) <= activeSetTol
	atUpper := nearUpper && math.Abs(value-upper) <= activeSetTol
	switch {
	case atLower && atUpper:
		return ActiveBothSide
	case atLower:
		return ActiveBelow
	case atUpper:
		return ActiveAbove
	default:
		return Inactive
	}
}
