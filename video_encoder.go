package webcodecs

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// VideoBitrateMode selects the engine's rate control behavior.
type VideoBitrateMode int

const (
	BitrateVariable VideoBitrateMode = iota
	BitrateConstant
	BitrateQuantizer
)

func (m VideoBitrateMode) String() string {
	switch m {
	case BitrateConstant:
		return "constant"
	case BitrateQuantizer:
		return "quantizer"
	default:
		return "variable"
	}
}

// VideoEncoderConfig describes a video encode engine to be built.
type VideoEncoderConfig struct {
	// Codec is the codec identifier string, e.g. "vp8" or "avc1.64001f".
	Codec string

	// Resolution is the coded size. Both dimensions are required.
	Resolution Dimensions

	// Display is the size the media should be displayed at. When set,
	// neither dimension may be zero.
	Display *Dimensions

	HardwareAcceleration HardwarePreference
	LatencyMode          LatencyMode

	Bitrate         uint32  // bits per second (0 = engine default)
	Framerate       float64 // frames per second (0 = engine default)
	AlphaPreserved  bool    // keep the alpha channel
	ScalabilityMode string  // e.g. "L1T3"
	BitrateMode     VideoBitrateMode

	// MaxGOPDuration bounds the duration of a group of pictures: a
	// keyframe is forced once this much media time has passed since the
	// last confirmed keyframe. Zero disables the policy.
	MaxGOPDuration time.Duration

	// Provider pins a specific provider. Nil picks from the registry.
	Provider VideoEncodeProvider
}

// NewVideoEncoderConfig returns a config with all optional fields absent.
func NewVideoEncoderConfig(codec string, resolution Dimensions) VideoEncoderConfig {
	return VideoEncoderConfig{Codec: codec, Resolution: resolution}
}

// IsValid checks the configuration before submission to an engine.
func (c *VideoEncoderConfig) IsValid() error {
	if !c.Resolution.Valid() {
		return ErrInvalidDimensions
	}
	if c.Display != nil && !c.Display.Valid() {
		return ErrInvalidDimensions
	}
	return nil
}

// IsSupported probes whether any provider can encode this configuration.
func (c *VideoEncoderConfig) IsSupported(ctx context.Context) (bool, error) {
	if err := c.IsValid(); err != nil {
		return false, err
	}
	if c.Provider != nil {
		return c.Provider.SupportsVideoEncoder(ctx, c)
	}
	for _, p := range registeredProviders() {
		ep, ok := p.(VideoEncodeProvider)
		if !ok || !acceptable(p, c.HardwareAcceleration) {
			continue
		}
		ok, err := ep.SupportsVideoEncoder(ctx, c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// KeyFrameOption forces or denies a keyframe for one Encode call.
type KeyFrameOption int

const (
	KeyFrameAuto KeyFrameOption = iota // engine decides; GOP policy applies
	KeyFrameForce
	KeyFrameDeny
)

// VideoEncodeOptions are per-call encode options.
type VideoEncodeOptions struct {
	KeyFrame KeyFrameOption
}

// keyframeTracker holds the timestamp of the newest confirmed keyframe.
// It is written by the submit path (when the GOP policy forces a key) and
// by the output callback (when the engine confirms one), so out-of-order
// submission cannot walk it backwards.
type keyframeTracker struct {
	mu   sync.Mutex
	last Timestamp
}

// force reports whether a frame at ts must be a keyframe under the given
// GOP bound, advancing the tracker when it fires.
func (k *keyframeTracker) force(ts Timestamp, maxGOP time.Duration) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ts.Sub(k.last) >= maxGOP {
		k.last = ts
		return true
	}
	return false
}

// confirm records an engine-reported keyframe, keeping only the newest.
func (k *keyframeTracker) confirm(ts Timestamp) {
	k.mu.Lock()
	if ts.After(k.last) {
		k.last = ts
	}
	k.mu.Unlock()
}

// Build consumes the config and constructs an encode engine, returning
// the engine handle and its output stream.
func (c VideoEncoderConfig) Build() (*VideoEncoder, *VideoEncoded, error) {
	if err := c.IsValid(); err != nil {
		return nil, nil, err
	}

	chunks := newPipe[*EncodedChunk](nil)
	decoderConfig := newWatchCell[VideoDecoderConfig]()
	keyframes := &keyframeTracker{}

	callbacks := VideoEncodeCallbacks{
		OnChunk: func(chunk *EncodedChunk, config *VideoDecoderConfig) {
			if config != nil {
				decoderConfig.store(*config)
			}
			if chunk.Keyframe {
				keyframes.confirm(chunk.Timestamp)
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

	encoder := &VideoEncoder{
		engine:    engine,
		config:    c,
		chunks:    chunks,
		keyframes: keyframes,
	}
	encoded := &VideoEncoded{chunks: chunks, config: decoderConfig}
	return encoder, encoded, nil
}

func (c *VideoEncoderConfig) newEngine(callbacks VideoEncodeCallbacks) (VideoEncodeEngine, error) {
	if c.Provider != nil {
		return c.Provider.NewVideoEncoder(c, callbacks)
	}
	var lastErr error
	for _, p := range registeredProviders() {
		ep, ok := p.(VideoEncodeProvider)
		if !ok || !acceptable(p, c.HardwareAcceleration) {
			continue
		}
		engine, err := ep.NewVideoEncoder(c, callbacks)
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

// VideoEncoder owns one configured host encode engine.
type VideoEncoder struct {
	engine    VideoEncodeEngine
	config    VideoEncoderConfig
	chunks    *pipe[*EncodedChunk]
	keyframes *keyframeTracker
	closed    atomic.Bool
}

// Encode submits one raw frame. With KeyFrameAuto and a configured
// MaxGOPDuration, a keyframe is forced once the frame's timestamp is a
// full GOP past the last confirmed keyframe.
func (e *VideoEncoder) Encode(frame *VideoFrame, options VideoEncodeOptions) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if options.KeyFrame == KeyFrameAuto && e.config.MaxGOPDuration > 0 {
		if e.keyframes.force(frame.Timestamp(), e.config.MaxGOPDuration) {
			options.KeyFrame = KeyFrameForce
		}
	}
	return e.engine.Encode(frame, options)
}

// Flush completes once all previously submitted frames have produced
// their outputs, or returns the terminal status if the engine dies first.
func (e *VideoEncoder) Flush(ctx context.Context) error {
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

// QueueSize returns the host-reported number of frames submitted but not
// yet encoded. Use it to throttle Encode calls.
func (e *VideoEncoder) QueueSize() uint32 {
	return e.engine.QueueSize()
}

// Config returns the configuration this encoder was built from.
func (e *VideoEncoder) Config() VideoEncoderConfig {
	return e.config
}

// Close tears down the host engine. Idempotent.
func (e *VideoEncoder) Close() {
	if e.closed.CompareAndSwap(false, true) {
		e.engine.Close()
		e.chunks.fail(io.EOF)
	}
}

// VideoEncoded is the pull side of a video encoder: an ordered, lossless
// sequence of encoded chunks plus the negotiated decoder configuration.
// Single consumer.
type VideoEncoded struct {
	chunks *pipe[*EncodedChunk]
	config *watchCell[VideoDecoderConfig]
}

// Frame returns the next encoded chunk in submission order, or the
// terminal status (the engine's fatal error, or io.EOF after a clean
// close) on this and every later call.
func (e *VideoEncoded) Frame(ctx context.Context) (*EncodedChunk, error) {
	return e.chunks.next(ctx)
}

// Config returns a snapshot of the decoder configuration the engine has
// negotiated, or nil before the first output carrying one. The engine may
// replace it mid-stream; the newest value wins.
func (e *VideoEncoded) Config() *VideoDecoderConfig {
	if config, ok := e.config.load(); ok {
		return &config
	}
	return nil
}

// WaitConfig suspends until a decoder configuration is present and
// returns it, resolving immediately when one is already known. If the
// engine reaches its terminal status first, WaitConfig returns that
// error, or ErrNeverConfigured after a clean close.
func (e *VideoEncoded) WaitConfig(ctx context.Context) (*VideoDecoderConfig, error) {
	select {
	case <-e.config.present():
	case <-e.chunks.closed():
		// The config may have landed in the same callback that closed
		// the stream; prefer it.
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

// Close drops the consumer half. The engine side records ErrDropped if it
// still had output to deliver.
func (e *VideoEncoded) Close() {
	e.chunks.close()
}
