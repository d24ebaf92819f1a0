package mixin

import "errors"

// Domain errors for the mixin package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, mixin.ErrInvalidConfig) {
//	    // reject the attachment
//	}
var (
	// ErrInvalidConfig is returned when a mixin is constructed with missing
	// or inconsistent configuration.
	ErrInvalidConfig = errors.New("mixin: invalid config")

	// ErrSourcePanicked wraps a panic raised while fetching settings.
	ErrSourcePanicked = errors.New("mixin: settings source panicked")
)
