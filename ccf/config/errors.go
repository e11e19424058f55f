package config

import "errors"

// Sentinel error kinds raised by the core (spec.md §7). Callers match with
// errors.Is; a matched ErrInvariant or ErrRecursionExhausted means the whole
// Fit call aborted and no partial tree was kept.
var (
	ErrConfiguration      = errors.New("ccf: invalid configuration")
	ErrRecursionExhausted = errors.New("ccf: recursion exhausted")
	ErrInvariant          = errors.New("ccf: invariant violated")
)
