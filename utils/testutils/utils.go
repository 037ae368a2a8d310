package testutils

import (
	"reflect"
	"testing"
)

func AssertEqual(t *testing.T, got, exp interface{}) {
	t.Helper()
	if !reflect.DeepEqual(exp, got) {
		t.Fatalf("expected\n%v\n got \n%v", exp, got)
	}
}

// AssertApprox checks floating point values with a small tolerance,
// as unit resolution accumulates float32 rounding.
func AssertApprox(t *testing.T, got, exp float32) {
	t.Helper()
	diff := got - exp
	if diff < 0 {
		diff = -diff
	}
	if diff > 1e-4 {
		t.Fatalf("expected %g, got %g", exp, got)
	}
}
