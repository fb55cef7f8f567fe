package assert

//
// assert.go
// based on https://antonz.org/do-not-testify/
//

import (
	"bytes"
	"cmp"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
)

// Equal asserts that got is equal to want.
func Equal[T any](tb testing.TB, got, want T) bool {
	tb.Helper()

	if !areEqual(got, want) {
		tb.Errorf("got: %#v; want: %#v", got, want)

		return false
	}

	return true
}

// NoErr asserts that the got error is nil.
func NoErr(tb testing.TB, got error) bool {
	tb.Helper()

	if got != nil {
		tb.Errorf("got unexpected error: %#+v", got)

		return false
	}

	return true
}

// Err asserts that the got error is not nil.
func Err(tb testing.TB, got error) bool {
	tb.Helper()

	if got == nil {
		tb.Error("got: <nil>; want: error")

		return false
	}

	return true
}

// ErrSpec asserts that the got error matches the want (substring or target).
func ErrSpec(tb testing.TB, got error, want any) bool {
	tb.Helper()

	if got == nil {
		tb.Errorf("got: <nil>; want: %v", want)

		return false
	}

	switch wanttype := want.(type) {
	case string:
		if !strings.Contains(got.Error(), wanttype) {
			tb.Errorf("got: %q; want: %q", got.Error(), wanttype)

			return false
		}
	case error:
		if !errors.Is(got, wanttype) {
			tb.Errorf("got: %T(%v); want: %T(%v)", got, got, wanttype, wanttype)

			return false
		}
	default:
		tb.Errorf("unsupported want type: %T", want)
	}

	return true
}

// True asserts that got is true.
func True(tb testing.TB, got bool) bool {
	tb.Helper()

	if !got {
		tb.Error("got: false; want: true")
	}

	return got
}

// Nil asserts that got is nil.
func Nil(tb testing.TB, got any) bool {
	tb.Helper()

	if !isNil(got) {
		tb.Errorf("got: %#v; want: <nil>", got)

		return false
	}

	return true
}

// NotNil asserts that got is not nil.
func NotNil(tb testing.TB, got any) bool {
	tb.Helper()

	if isNil(got) {
		tb.Error("got: <nil>; want: not nil")

		return false
	}

	return true
}

// EqualSorted asserts that got sorted slice is equal to want sorted slice.
func EqualSorted[S ~[]E, E cmp.Ordered](tb testing.TB, got, want S) bool {
	tb.Helper()

	got = slices.Clone(got)
	slices.Sort(got)

	want = slices.Clone(want)
	slices.Sort(want)

	if !slices.Equal(got, want) {
		tb.Errorf("got: %#v; want: %#v", got, want)

		return false
	}

	return true
}

// equaler is an interface for types with an Equal method
// (like time.Time or net.IP).
type equaler[T any] interface {
	Equal(other T) bool
}

func areEqual[T any](val1, val2 T) bool {
	if isNil(val1) && isNil(val2) {
		return true
	}

	if eq, ok := any(val1).(equaler[T]); ok {
		return eq.Equal(val2)
	}

	if aBytes, ok := any(val1).([]byte); ok {
		if bBytes, ok := any(val2).([]byte); ok {
			return bytes.Equal(aBytes, bBytes)
		}
	}

	return reflect.DeepEqual(val1, val2)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	// A non-nil interface can still hold a nil value.
	rv := reflect.ValueOf(v)

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Chan,
		reflect.Func,
		reflect.Interface,
		reflect.Map,
		reflect.Pointer,
		reflect.Slice,
		reflect.UnsafePointer:
		return rv.IsNil()
	default:
		return false
	}
}
