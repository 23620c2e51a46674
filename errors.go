package mpool

import "errors"

// ErrExhausted is returned by Reserve when the acquire hook cannot
// provide another cluster. Alloc signals the same condition by
// returning a nil slot.
var ErrExhausted = errors.New("mpool: memory exhausted")
