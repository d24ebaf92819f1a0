package plugin

import "errors"

var (
	// ErrInvalidConfig is returned by New for missing dependencies.
	ErrInvalidConfig = errors.New("plugin: invalid config")

	// ErrNotMixable is returned when asked to attach to a device the
	// provider does not extend, including its own provider device.
	ErrNotMixable = errors.New("plugin: device cannot be extended")

	// ErrMixinNotFound is returned for an unknown mixin id.
	ErrMixinNotFound = errors.New("plugin: mixin not found")

	// ErrClosed is returned by Attach after Close.
	ErrClosed = errors.New("plugin: provider closed")
)
