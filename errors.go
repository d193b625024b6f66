package webcodecs

import "errors"

// Common errors
var (
	// ErrInvalidDimensions is returned when a configuration contains a
	// zero width or height where a real resolution is required.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrInvalidConfig is returned when a configuration is missing a
	// required non-dimension field (e.g. a zero sample rate).
	ErrInvalidConfig = errors.New("invalid codec configuration")

	// ErrCodecNotSupported is returned when no registered provider can
	// build an engine for the requested codec.
	ErrCodecNotSupported = errors.New("codec not supported by provider")

	// ErrDropped is recorded as the terminal status when the output
	// stream was closed while the engine still had units to deliver.
	ErrDropped = errors.New("output stream dropped")

	// ErrClosed is returned by Encode/Decode/Flush after the engine
	// handle has been closed.
	ErrClosed = errors.New("engine closed")

	// ErrNeverConfigured is returned by WaitConfig when the engine
	// reached a clean close without ever emitting a decoder config.
	ErrNeverConfigured = errors.New("engine closed before emitting decoder config")

	// ErrNoChannels is returned when constructing audio data with no
	// channel planes.
	ErrNoChannels = errors.New("audio data has no channels")
)
