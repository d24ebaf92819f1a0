package hostbridge

import "errors"

var (
	// ErrInvalidConfig is returned by New for a missing MQTT client.
	ErrInvalidConfig = errors.New("hostbridge: invalid config")

	// ErrNotStarted is returned when a request is made before Start.
	ErrNotStarted = errors.New("hostbridge: not started")

	// ErrClosed is returned for requests pending or made after Close.
	ErrClosed = errors.New("hostbridge: closed")

	// ErrRequestTimeout is returned when the core does not answer in time.
	ErrRequestTimeout = errors.New("hostbridge: request timed out")

	// ErrRemote wraps an error reported by the core.
	ErrRemote = errors.New("hostbridge: remote error")

	// ErrInvalidPayload is returned for messages that cannot be decoded.
	ErrInvalidPayload = errors.New("hostbridge: invalid payload")
)
