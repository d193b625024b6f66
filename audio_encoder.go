package webcodecs

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
)

// AudioEncoderConfig describes an audio encode engine to be built.
type AudioEncoderConfig struct {
	// Codec is the codec identifier string, e.g. "opus".
	Codec string

	ChannelCount uint32 // 0 = engine default
	SampleRate   uint32 // 0 = engine default
	Bitrate      uint32 // bits per second (0 = engine default)

	// Provider pins a specific provider. Nil picks from the registry.
	Provider AudioEncodeProvider
}

// NewAudioEncoderConfig returns a config with all optional fields absent.
func NewAudioEncoderConfig(codec string) AudioEncoderConfig {
	return AudioEncoderConfig{Codec: codec}
}

// IsValid checks the configuration before submission to an engine.
// Audio encoder configs carry no required dimension pairs.
func (c *AudioEncoderConfig) IsValid() error {
	return nil
}

// IsSupported probes whether any provider can encode this configuration.
func (c *AudioEncoderConfig) IsSupported(ctx context.Context) (bool, error) {
	if c.Provider != nil {
		return c.Provider.SupportsAudioEncoder(ctx, c)
	}
	for _, p := range registeredProviders() {
		ep, ok := p.(AudioEncodeProvider)
		if !ok || !p.Available() {
			continue
		}
		ok, err := ep.SupportsAudioEncoder(ctx, c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Build consumes the config and constructs an encode engine, returning
// the engine handle and its output stream.
func (c AudioEncoderConfig) Build() (*AudioEncoder, *AudioEncoded, error) {
	chunks := newPipe[*EncodedChunk](nil)
	decoderConfig := newWatchCell[AudioDecoderConfig]()

	callbacks := AudioEncodeCallbacks{
		OnChunk: func(chunk *EncodedChunk, config *AudioDecoderConfig) {
			if config != nil {
				decoderConfig.store(*config)
			}
			if !chunks.push(chunk) {
				chunks.fail(ErrDropped)
			}
		},
		OnError: func(err error) {
			chunks.fail(err)
		},
	}

	engine, err := c.newEngine(callbacks)
	if err != nil {
		return nil, nil, err
	}

	encoder := &AudioEncoder{engine: engine, config: c, chunks: chunks}
	encoded := &AudioEncoded{chunks: chunks, config: decoderConfig}
	return encoder, encoded, nil
}

func (c *AudioEncoderConfig) newEngine(callbacks AudioEncodeCallbacks) (AudioEncodeEngine, error) {
	if c.Provider != nil {
		return c.Provider.NewAudioEncoder(c, callbacks)
	}
	var lastErr error
	for _, p := range registeredProviders() {
		ep, ok := p.(AudioEncodeProvider)
		if !ok || !p.Available() {
			continue
		}
		engine, err := ep.NewAudioEncoder(c, callbacks)
		if err != nil {
			lastErr = err
			continue
		}
		return engine, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrCodecNotSupported
}

// AudioEncoder owns one configured host encode engine.
type AudioEncoder struct {
	engine AudioEncodeEngine
	config AudioEncoderConfig
	chunks *pipe[*EncodedChunk]
	closed atomic.Bool
}

// Encode submits one buffer of raw samples.
func (e *AudioEncoder) Encode(data *AudioData) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.engine.Encode(data)
}

// Flush completes once all previously submitted buffers have produced
// their outputs, or returns the terminal status if the engine dies first.
func (e *AudioEncoder) Flush(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	done := make(chan error, 1)
	go func() { done <- e.engine.Flush(ctx) }()
	select {
	case err := <-done:
		return err
	case <-e.chunks.closed():
		return terminalAsError(e.chunks.terminalErr())
	}
}

// QueueSize returns the host-reported number of buffers submitted but
// not yet encoded.
func (e *AudioEncoder) QueueSize() uint32 {
	return e.engine.QueueSize()
}

// Config returns the configuration this encoder was built from.
func (e *AudioEncoder) Config() AudioEncoderConfig {
	return e.config
}

// Close tears down the host engine. Idempotent.
func (e *AudioEncoder) Close() {
	if e.closed.CompareAndSwap(false, true) {
		e.engine.Close()
		e.chunks.fail(io.EOF)
	}
}

// AudioEncoded is the pull side of an audio encoder. Single consumer.
type AudioEncoded struct {
	chunks *pipe[*EncodedChunk]
	config *watchCell[AudioDecoderConfig]
}

// Frame returns the next encoded chunk in submission order, or the
// terminal status on this and every later call.
func (e *AudioEncoded) Frame(ctx context.Context) (*EncodedChunk, error) {
	return e.chunks.next(ctx)
}

// Config returns a snapshot of the decoder configuration the engine has
// negotiated, or nil before the first output carrying one.
func (e *AudioEncoded) Config() *AudioDecoderConfig {
	if config, ok := e.config.load(); ok {
		return &config
	}
	return nil
}

// WaitConfig suspends until a decoder configuration is present, with the
// same closure semantics as VideoEncoded.WaitConfig.
func (e *AudioEncoded) WaitConfig(ctx context.Context) (*AudioDecoderConfig, error) {
	select {
	case <-e.config.present():
	case <-e.chunks.closed():
		if config := e.Config(); config != nil {
			return config, nil
		}
		err := e.chunks.terminalErr()
		if errors.Is(err, io.EOF) {
			return nil, ErrNeverConfigured
		}
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	config, _ := e.config.load()
	return &config, nil
}

// Close drops the consumer half.
func (e *AudioEncoded) Close() {
	e.chunks.close()
}
