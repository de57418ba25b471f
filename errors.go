package icalscan

import "errors"

// Call-shape errors are surfaced to the caller; problems inside the input
// data never are — those degrade with a warning so a scan over a messy
// real-world calendar still produces a useful result.
var (
	// ErrInvalidKind reports a request for an unknown component kind.
	ErrInvalidKind = errors.New("icalscan: invalid component kind")

	// ErrUnsupportedWrite reports an attempt to mutate an occurrence.
	ErrUnsupportedWrite = errors.New("icalscan: occurrences are read-only")
)
