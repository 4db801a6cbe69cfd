package utils

import (
	"reflect"
	"testing"

	"golang.org/x/exp/slices"
)

// AssertEquals verifies that the expected generic object T is equal to result T.
// If expected differs from result in any way, the test will fail immediately.
func AssertEquals[T comparable](t *testing.T, expected T, result T) {
	if expected != result {
		t.Logf("%s is failed. Got '%v', expected '%v'", t.Name(), result, expected)
		t.FailNow()
	}
}

// AssertEqualsMsg is like AssertEquals, but it also prints a custom message when the test fails.
func AssertEqualsMsg[T comparable](t *testing.T, expected T, result T, msg string) {
	if expected != result {
		t.Logf("%s is failed; %s - Got '%v', expected '%v'", t.Name(), msg, result, expected)
		t.FailNow()
	}
}

// AssertSliceEquals is like AssertEquals but works for slices.
// Each element of the expected slice must be equal to the corresponding element in the result slice, in the same order.
func AssertSliceEquals[T comparable](t *testing.T, expected []T, result []T) {
	if equal := slices.Equal(expected, result); !equal {
		t.Logf("%s is failed. Got '%v', expected '%v'", t.Name(), result, expected)
		t.FailNow()
	}
}

// AssertDeepEquals compares two JSON documents structurally. Needed for
// working documents, which are maps, slices and json.Number scalars.
func AssertDeepEquals(t *testing.T, expected interface{}, result interface{}) {
	if !reflect.DeepEqual(expected, result) {
		t.Logf("%s is failed. Got '%v', expected '%v'", t.Name(), result, expected)
		t.FailNow()
	}
}

// AssertNil checks that result is nil. Useful for checking that there are no errors.
func AssertNil(t *testing.T, result interface{}) {
	if nil != result {
		t.Logf("%s is failed. Got '%v', expected nil", t.Name(), result)
		t.FailNow()
	}
}

// AssertNilMsg is like AssertNil, but it also prints a custom message when the test fails.
func AssertNilMsg(t *testing.T, result interface{}, msg string) {
	if nil != result {
		t.Logf("%s is failed; %s - Got '%v', expected nil", t.Name(), msg, result)
		t.FailNow()
	}
}

// AssertNonNil checks that result is non-nil. Useful for checking that there is some result,
// but we are not interested in its details.
func AssertNonNil(t *testing.T, result interface{}) {
	if nil == result {
		t.Logf("%s is failed. Got '%v', expected non-nil", t.Name(), result)
		t.FailNow()
	}
}

// AssertNonNilMsg is like AssertNonNil, but it also prints a custom message when the test fails.
func AssertNonNilMsg(t *testing.T, result interface{}, msg string) {
	if nil == result {
		t.Logf("%s is failed; %s - Got '%v', expected non-nil", t.Name(), msg, result)
		t.FailNow()
	}
}

// AssertTrue verifies that given boolean is true, otherwise fails the test immediately.
func AssertTrue(t *testing.T, isTrue bool) {
	if !isTrue {
		t.Logf("%s is failed. Got false", t.Name())
		t.FailNow()
	}
}

// AssertTrueMsg verifies that given boolean is true, otherwise fails the test immediately and prints a custom message.
func AssertTrueMsg(t *testing.T, isTrue bool, msg string) {
	if !isTrue {
		t.Logf("%s is false - %s", t.Name(), msg)
		t.FailNow()
	}
}

// AssertFalse verifies that given boolean is false, otherwise fails the test immediately.
func AssertFalse(t *testing.T, isTrue bool) {
	if isTrue {
		t.Logf("%s is failed. Got true", t.Name())
		t.FailNow()
	}
}
