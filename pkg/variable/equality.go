package variable

import "reflect"

// defaultEquals reports whether two values are equal for the purpose of the
// change gate on Set. Comparable values use ==; slices, maps, and other
// uncomparable values fall back to reflect.DeepEqual.
//
// Comparability is checked per value, not per type: a comparable struct
// type can still hold a slice in an interface field, and == on such a
// value panics at runtime.
func defaultEquals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	if reflect.ValueOf(av).Comparable() && reflect.ValueOf(bv).Comparable() {
		return av == bv
	}
	return reflect.DeepEqual(a, b)
}
