package particlefilter

import "errors"

var (
	// ErrInvalidConfig is wrapped by every error caused by bad construction
	// parameters or malformed call arguments.
	ErrInvalidConfig = errors.New("invalid particle filter configuration")

	// ErrDegenerateWeights is returned when the particle weights cannot be
	// normalised because their sum is zero or not finite.
	ErrDegenerateWeights = errors.New("degenerate particle weights")
)
