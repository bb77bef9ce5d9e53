// Package contract defines the precondition model: the clause kinds, the
// canonical total order over clause sets, and the canonical textual encoding
// that every other layer of the engine builds on.
//
// Layering: contract imports nothing else from internal/. Parsers produce
// these values, encoders and renderers consume them.
package contract
