package index

import "errors"

// Compile and open failures carry one of these sentinels so callers can
// tell the classes apart with errors.Is; the wrapped message names the
// offending word or file detail.
var (
	// ErrBadOrder reports compile input that is not lexicographically
	// non-decreasing, or an empty word.
	ErrBadOrder = errors.New("index: input out of order")

	// ErrBadFrequency reports a zero frequency or a merged frequency that
	// overflows 32 bits.
	ErrBadFrequency = errors.New("index: bad frequency")

	// ErrBadImage reports a file that fails magic, version or offset
	// validation at open time.
	ErrBadImage = errors.New("index: bad image")

	// ErrInterrupted reports a search cancelled mid-traversal; the partial
	// results gathered so far are still returned.
	ErrInterrupted = errors.New("index: search interrupted")
)
