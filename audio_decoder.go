package webcodecs

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
)

// AudioDecoderConfig describes an audio decode engine to be built.
type AudioDecoderConfig struct {
	// Codec is the codec identifier string, e.g. "opus" or "mp4a.40.2".
	Codec string

	// Description carries codec-specific configuration bytes.
	Description []byte

	// ChannelCount and SampleRate describe the decoded output. Both are
	// required.
	ChannelCount uint32
	SampleRate   uint32

	// Provider pins a specific provider. Nil picks from the registry.
	Provider AudioDecodeProvider
}

// NewAudioDecoderConfig returns a config with all optional fields absent.
func NewAudioDecoderConfig(codec string, channelCount, sampleRate uint32) AudioDecoderConfig {
	return AudioDecoderConfig{Codec: codec, ChannelCount: channelCount, SampleRate: sampleRate}
}

// IsValid checks the configuration before submission to an engine.
func (c *AudioDecoderConfig) IsValid() error {
	if c.ChannelCount == 0 {
		return fmt.Errorf("%w: zero channel count", ErrInvalidConfig)
	}
	if c.SampleRate == 0 {
		return fmt.Errorf("%w: zero sample rate", ErrInvalidConfig)
	}
	return nil
}

// IsSupported probes whether any provider can decode this configuration.
func (c *AudioDecoderConfig) IsSupported(ctx context.Context) (bool, error) {
	if err := c.IsValid(); err != nil {
		return false, err
	}
	if c.Provider != nil {
		return c.Provider.SupportsAudioDecoder(ctx, c)
	}
	for _, p := range registeredProviders() {
		dp, ok := p.(AudioDecodeProvider)
		if !ok || !p.Available() {
			continue
		}
		ok, err := dp.SupportsAudioDecoder(ctx, c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Build consumes the config and constructs a decode engine, returning the
// engine handle and its output stream.
func (c AudioDecoderConfig) Build() (*AudioDecoder, *AudioDecoded, error) {
	if err := c.IsValid(); err != nil {
		return nil, nil, err
	}

	frames := newPipe[*AudioData](func(d *AudioData) { d.Close() })
	callbacks := AudioDecodeCallbacks{
		OnFrame: func(d *AudioData) {
			if !frames.push(d) {
				frames.fail(ErrDropped)
			}
		},
		OnError: func(err error) {
			frames.fail(err)
		},
	}

	engine, err := c.newEngine(callbacks)
	if err != nil {
		return nil, nil, err
	}

	decoder := &AudioDecoder{engine: engine, frames: frames}
	decoded := &AudioDecoded{frames: frames}
	return decoder, decoded, nil
}

func (c *AudioDecoderConfig) newEngine(callbacks AudioDecodeCallbacks) (AudioDecodeEngine, error) {
	if c.Provider != nil {
		return c.Provider.NewAudioDecoder(c, callbacks)
	}
	var lastErr error
	for _, p := range registeredProviders() {
		dp, ok := p.(AudioDecodeProvider)
		if !ok || !p.Available() {
			continue
		}
		engine, err := dp.NewAudioDecoder(c, callbacks)
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

// AudioDecoder owns one configured host decode engine.
type AudioDecoder struct {
	engine AudioDecodeEngine
	frames *pipe[*AudioData]
	closed atomic.Bool
}

// Decode submits one encoded chunk. It fails immediately if the engine
// rejects the submission.
func (d *AudioDecoder) Decode(chunk *EncodedChunk) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.engine.Decode(chunk)
}

// Flush completes once all previously submitted chunks have produced
// their outputs, or returns the terminal status if the engine dies first.
func (d *AudioDecoder) Flush(ctx context.Context) error {
	if d.closed.Load() {
		return ErrClosed
	}
	done := make(chan error, 1)
	go func() { done <- d.engine.Flush(ctx) }()
	select {
	case err := <-done:
		return err
	case <-d.frames.closed():
		return terminalAsError(d.frames.terminalErr())
	}
}

// QueueSize returns the host-reported number of chunks submitted but not
// yet decoded.
func (d *AudioDecoder) QueueSize() uint32 {
	return d.engine.QueueSize()
}

// Close tears down the host engine. Idempotent.
func (d *AudioDecoder) Close() {
	if d.closed.CompareAndSwap(false, true) {
		d.engine.Close()
		d.frames.fail(io.EOF)
	}
}

// AudioDecoded is the pull side of an audio decoder. Single consumer.
type AudioDecoded struct {
	frames *pipe[*AudioData]
}

// Next returns the next decoded buffer in submission order, or the
// terminal status on this and every later call. The caller owns the
// returned data and must close it.
func (d *AudioDecoded) Next(ctx context.Context) (*AudioData, error) {
	return d.frames.next(ctx)
}

// Close drops the consumer half.
func (d *AudioDecoded) Close() {
	d.frames.close()
}
