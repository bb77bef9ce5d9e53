// Package rewrite is the source-to-source transformation pipeline: it
// applies declaration and call-site annotations to a file's syntax tree so
// that the ordinary Go compiler enforces contract agreement on the result.
//
// The engine is deliberately stateless and single-threaded: one file in,
// rewritten shadow source out, all diagnostics flushed at pass end. Hard
// errors never abort a pass; the offending node keeps its original text and
// the pass reports everything it found.
//
// Contract mismatches are not diagnosed here at all. A call site that fails
// to restate a declaration's precondition set compiles into a call whose
// hidden argument is missing (arity error) or has the wrong type (type
// error); making those mismatches visible to the compiler is this package's
// entire job.
package rewrite
