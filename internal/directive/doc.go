// Package directive parses the comment annotations the engine understands.
//
// Declarations carry //pre: directives in their doc comment; the statements
// containing annotated calls carry //assure:, //forward: and //def:
// directives. Parsing never aborts a pass: a malformed directive is reported
// to the diagnostics sink and its siblings keep being processed, so one
// compilation surfaces as many problems as possible.
package directive
