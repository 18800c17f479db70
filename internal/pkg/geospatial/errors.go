package geospatial

import "errors"

var (
	// ErrInvalidGeometry reports a malformed point or bounding box.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrDegenerateParameters reports clustering parameters that cannot produce
	// meaningful clusters (epsilon <= 0 or minPoints < 1).
	ErrDegenerateParameters = errors.New("degenerate clustering parameters")
	// ErrUnknownTier is returned for a clustering tier name with no preset.
	ErrUnknownTier = errors.New("unknown clustering tier")
	// ErrUnordered reports samples whose timestamps decrease.
	ErrUnordered = errors.New("samples not ordered by timestamp")
	// ErrTooManyPoints is returned by callers that enforce a clustering ceiling.
	ErrTooManyPoints = errors.New("too many points to cluster")
)
