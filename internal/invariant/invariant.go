// Package invariant reports broken internal consistency of the game engine.
//
// A Violation is never a user error: it means the engine itself reached a
// state it must not be in. Violations are raised with panic and carry a stack.
package invariant

import (
	"fmt"

	"github.com/pkg/errors"
)

// Violation is the panic value raised when an engine invariant fails.
type Violation struct {
	err error
}

// Error implements error.
func (v *Violation) Error() string {
	return "invariant violation: " + v.err.Error()
}

// Unwrap returns the underlying error, which carries the stack trace.
func (v *Violation) Unwrap() error {
	return v.err
}

// Format prints the stack with %+v.
func (v *Violation) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "invariant violation: %+v", v.err)
		return
	}
	fmt.Fprint(s, v.Error())
}

// Check panics with a *Violation when cond is false.
func Check(cond bool, format string, args ...any) {
	if !cond {
		panic(&Violation{err: errors.Errorf(format, args...)})
	}
}

// Fail panics with a *Violation unconditionally.
func Fail(format string, args ...any) {
	panic(&Violation{err: errors.Errorf(format, args...)})
}

// FromRecovered converts a recovered panic value into a Violation if it is one.
func FromRecovered(r any) (*Violation, bool) {
	v, ok := r.(*Violation)
	return v, ok
}
