// Package expr defines the embedded expression host the compiler and
// interpreter evaluate transition conditions, parametric text and
// loop-operand expressions against. The core only ever depends on the
// Host interface; GojaHost is the default, JavaScript-engine-backed
// implementation.
package expr

import "errors"

// ErrUndefined is returned by Execute when the snippet evaluates to
// JavaScript's undefined rather than producing a value. The core treats
// that as distinct from a successful null result.
var ErrUndefined = errors.New("expr: execute produced no value")

// Host is the pluggable expression evaluator the compiler and
// interpreter consume. Implementations must be either thread-affine or
// internally serialized: Execute is required to behave atomically from
// the caller's point of view.
type Host interface {
	// Compile performs a syntactic-only check of code, discarding any
	// compiled form. Used by the compiler to validate transition
	// conditions and text-function bodies without running them.
	Compile(code string) error

	// Execute runs code in the host's shared scope and returns a
	// JSON-like value (nil, bool, float64, string, []any, map[string]any)
	// or fails. Bindings queued via Inject since the last Execute are
	// applied before running code, then cleared.
	Execute(code string) (any, error)

	// Inject queues a name bound to value for the next Execute call.
	Inject(name string, value any)

	// IsTruthy reports whether v would be truthy in a JavaScript boolean
	// context: true, a non-zero number, a non-empty string, or any
	// non-nil, non-false, non-zero value in general.
	IsTruthy(v any) bool
}
