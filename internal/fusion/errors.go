package fusion

import "errors"

// Sentinel kinds for construction failures.
var (
	ErrNilHandler       = errors.New("event handler must not be nil")
	ErrInvalidTolerance = errors.New("tolerance must be positive")
	ErrInvalidCapacity  = errors.New("buffer capacity must be positive")
)
