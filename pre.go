// Package pre is the runtime support package referenced by rewritten code.
//
// The rewriting engine under internal/ appends hidden contract parameters to
// annotated declarations and hidden arguments to assured call sites. Those
// encodings are plain anonymous struct types and need no runtime support.
// What rewritten code does reference from this package is Assert, the inlined
// self-check for boolean preconditions.
//
// This package is intentionally dependency-free: every rewritten program
// imports it.
package pre

import "fmt"

// Marker is the field type used inside hidden contract parameters.
type Marker = struct{}

// Assert panics if the stated precondition does not hold.
//
// Calls to Assert are generated at the top of contract-bearing function
// bodies for boolean preconditions, unless the declaration opts out with
// no_debug_assert. It is exported so that generated code can reference it
// through whatever alias the host file imports this package under.
func Assert(ok bool, condition string) {
	if !ok {
		panic(fmt.Sprintf("precondition violated: %s", condition))
	}
}
