package webcodecs

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
)

// VideoDecoderConfig describes a video decode engine to be built.
// A config is consumed by Build; reuse the value for another engine by
// copying it first.
type VideoDecoderConfig struct {
	// Codec is the codec identifier string, e.g. "vp8" or "avc1.64001f".
	Codec string

	// Resolution is the coded size of the media. When set, neither
	// dimension may be zero.
	Resolution *Dimensions

	// Display is the size the media should be displayed at. When set,
	// neither dimension may be zero.
	Display *Dimensions

	// Description carries codec-specific configuration bytes
	// ("extradata"). For H.264: present means AVC framing with SPS/PPS
	// here, absent means Annex-B framing with SPS/PPS in the stream.
	Description []byte

	// HardwareAcceleration filters providers; LatencyMode is passed
	// through to the engine.
	HardwareAcceleration HardwarePreference
	LatencyMode          LatencyMode

	// Provider pins a specific provider. Nil picks from the registry.
	Provider VideoDecodeProvider
}

// NewVideoDecoderConfig returns a config with all optional fields absent.
func NewVideoDecoderConfig(codec string) VideoDecoderConfig {
	return VideoDecoderConfig{Codec: codec}
}

// IsValid checks the configuration before submission to an engine.
func (c *VideoDecoderConfig) IsValid() error {
	if c.Resolution != nil && !c.Resolution.Valid() {
		return ErrInvalidDimensions
	}
	if c.Display != nil && !c.Display.Valid() {
		return ErrInvalidDimensions
	}
	return nil
}

// IsSupported probes whether any provider can decode this configuration.
// It never mutates state; "no provider" is a normal false. An error is
// returned only when the query itself is malformed.
func (c *VideoDecoderConfig) IsSupported(ctx context.Context) (bool, error) {
	if err := c.IsValid(); err != nil {
		return false, err
	}
	if c.Provider != nil {
		return c.Provider.SupportsVideoDecoder(ctx, c)
	}
	for _, p := range registeredProviders() {
		dp, ok := p.(VideoDecodeProvider)
		if !ok || !acceptable(p, c.HardwareAcceleration) {
			continue
		}
		ok, err := dp.SupportsVideoDecoder(ctx, c)
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
// engine handle and its output stream. The delivery queue is unbounded:
// the engine never blocks pushing outputs, and callers observe pressure
// through QueueSize instead.
func (c VideoDecoderConfig) Build() (*VideoDecoder, *VideoDecoded, error) {
	if err := c.IsValid(); err != nil {
		return nil, nil, err
	}

	frames := newPipe[*VideoFrame](func(f *VideoFrame) { f.Close() })
	callbacks := VideoDecodeCallbacks{
		OnFrame: func(f *VideoFrame) {
			if !frames.push(f) {
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

	decoder := &VideoDecoder{engine: engine, frames: frames}
	decoded := &VideoDecoded{frames: frames}
	return decoder, decoded, nil
}

func (c *VideoDecoderConfig) newEngine(callbacks VideoDecodeCallbacks) (VideoDecodeEngine, error) {
	if c.Provider != nil {
		return c.Provider.NewVideoDecoder(c, callbacks)
	}
	var lastErr error
	for _, p := range registeredProviders() {
		dp, ok := p.(VideoDecodeProvider)
		if !ok || !acceptable(p, c.HardwareAcceleration) {
			continue
		}
		engine, err := dp.NewVideoDecoder(c, callbacks)
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

// VideoDecoder owns one configured host decode engine. Submission is
// synchronous; outputs and fatal errors arrive on the paired VideoDecoded
// stream. Closing the decoder tears down the engine and cleanly ends the
// stream.
type VideoDecoder struct {
	engine VideoDecodeEngine
	frames *pipe[*VideoFrame]
	closed atomic.Bool
}

// Decode submits one encoded chunk. It fails immediately if the engine
// rejects the submission; success only means "accepted into the host
// queue".
func (d *VideoDecoder) Decode(chunk *EncodedChunk) error {
	if d.closed.Load() {
		return ErrClosed
	}
	return d.engine.Decode(chunk)
}

// Flush completes once all previously submitted chunks have produced
// their outputs, or returns the terminal status if the engine dies first.
func (d *VideoDecoder) Flush(ctx context.Context) error {
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
// yet decoded. Use it to throttle Decode calls.
func (d *VideoDecoder) QueueSize() uint32 {
	return d.engine.QueueSize()
}

// Close tears down the host engine. Idempotent; the output stream drains
// any already-delivered frames and then reports a clean end of stream.
func (d *VideoDecoder) Close() {
	if d.closed.CompareAndSwap(false, true) {
		d.engine.Close()
		d.frames.fail(io.EOF)
	}
}

// terminalAsError maps the stream's terminal status to an error suitable
// for Flush and friends: a clean end of stream means the engine is gone.
func terminalAsError(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return ErrClosed
	}
	return err
}

// VideoDecoded is the pull side of a video decoder: an ordered, lossless
// sequence of decoded frames. Single consumer.
type VideoDecoded struct {
	frames *pipe[*VideoFrame]
}

// Next returns the next decoded frame in submission order. It suspends
// until a frame arrives or the engine reaches its terminal status, which
// is then returned on this and every later call: the engine's fatal
// error, or io.EOF after a clean close. The caller owns the returned
// frame and must close it.
func (d *VideoDecoded) Next(ctx context.Context) (*VideoFrame, error) {
	return d.frames.next(ctx)
}

// Close drops the consumer half. Pending and future frames are released;
// the engine side records ErrDropped if it still had output to deliver.
func (d *VideoDecoded) Close() {
	d.frames.close()
}
