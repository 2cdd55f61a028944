// Package testutil holds assertions and reporters shared by the tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func NoDiff(t testing.TB, want, got any, opts []cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// ConcurrentTestReporter lets a gomock controller be driven from goroutines
// other than the test's own. testing.T.FailNow must not be called there, so
// Fatalf panics instead, which fails the whole binary with a stack trace of
// the unexpected call.
//
// https://github.com/golang/mock/issues/145
type ConcurrentTestReporter struct {
	testing.TB
}

func NewConcurrentTestReporter(tb testing.TB) *ConcurrentTestReporter {
	return &ConcurrentTestReporter{tb}
}

func (r *ConcurrentTestReporter) Fatalf(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}
