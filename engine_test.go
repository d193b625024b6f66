package webcodecs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Fake engines and providers used across the package tests. They echo
// outputs in submission order, count close calls, and let tests drive
// emission manually to exercise queue-depth and flush behavior.

type fakeFrameResource struct {
	ts     Timestamp
	dur    time.Duration
	size   Dimensions
	closes *atomic.Int32
}

func (r *fakeFrameResource) Format() PixelFormat     { return PixelFormatI420 }
func (r *fakeFrameResource) CodedSize() Dimensions   { return r.size }
func (r *fakeFrameResource) DisplaySize() Dimensions { return r.size }
func (r *fakeFrameResource) Timestamp() Timestamp    { return r.ts }
func (r *fakeFrameResource) Duration() time.Duration { return r.dur }
func (r *fakeFrameResource) Plane(int) []byte        { return nil }
func (r *fakeFrameResource) Stride(int) int          { return 0 }
func (r *fakeFrameResource) Close() {
	if r.closes != nil {
		r.closes.Add(1)
	}
}

type fakeVideoDecodeEngine struct {
	mu      sync.Mutex
	cb      VideoDecodeCallbacks
	pending []*EncodedChunk

	manual      bool          // queue submissions until emitPending
	flushBlock  chan struct{} // when set, Flush waits on it
	decodeErr   error
	queue       atomic.Int32
	closes      atomic.Int32
	frameCloses atomic.Int32
}

func (e *fakeVideoDecodeEngine) Decode(chunk *EncodedChunk) error {
	if e.decodeErr != nil {
		return e.decodeErr
	}
	e.queue.Add(1)
	if e.manual {
		e.mu.Lock()
		e.pending = append(e.pending, chunk)
		e.mu.Unlock()
		return nil
	}
	e.emit(chunk)
	return nil
}

func (e *fakeVideoDecodeEngine) emit(chunk *EncodedChunk) {
	e.queue.Add(-1)
	frame := NewVideoFrame(&fakeFrameResource{
		ts:     chunk.Timestamp,
		size:   Dimensions{Width: 320, Height: 240},
		closes: &e.frameCloses,
	})
	e.cb.OnFrame(frame)
}

func (e *fakeVideoDecodeEngine) emitPending() {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, chunk := range pending {
		e.emit(chunk)
	}
}

func (e *fakeVideoDecodeEngine) fail(err error) { e.cb.OnError(err) }

func (e *fakeVideoDecodeEngine) Flush(ctx context.Context) error {
	if e.flushBlock != nil {
		select {
		case <-e.flushBlock:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	e.emitPending()
	return nil
}

func (e *fakeVideoDecodeEngine) QueueSize() uint32 { return uint32(e.queue.Load()) }
func (e *fakeVideoDecodeEngine) Close()            { e.closes.Add(1) }

type fakeVideoDecodeProvider struct {
	engine   *fakeVideoDecodeEngine
	supports bool
	newErr   error
}

func (p *fakeVideoDecodeProvider) Name() string             { return "fake-video-decode" }
func (p *fakeVideoDecodeProvider) Features() EngineFeatures { return FeatureLowLatency }
func (p *fakeVideoDecodeProvider) Available() bool          { return true }

func (p *fakeVideoDecodeProvider) SupportsVideoDecoder(context.Context, *VideoDecoderConfig) (bool, error) {
	return p.supports, nil
}

func (p *fakeVideoDecodeProvider) NewVideoDecoder(_ *VideoDecoderConfig, cb VideoDecodeCallbacks) (VideoDecodeEngine, error) {
	if p.newErr != nil {
		return nil, p.newErr
	}
	p.engine.cb = cb
	return p.engine, nil
}

type fakeVideoEncodeEngine struct {
	mu      sync.Mutex
	cb      VideoEncodeCallbacks
	pending []*EncodedChunk

	manual     bool
	encodeErr  error
	sideConfig *VideoDecoderConfig // emitted with the first chunk
	emitted    atomic.Int32
	queue      atomic.Int32
	closes     atomic.Int32

	// lastOptions records the options seen by the most recent Encode.
	lastOptions VideoEncodeOptions
}

func (e *fakeVideoEncodeEngine) Encode(frame *VideoFrame, options VideoEncodeOptions) error {
	if e.encodeErr != nil {
		return e.encodeErr
	}
	e.mu.Lock()
	e.lastOptions = options
	e.mu.Unlock()

	// The first output is a keyframe unless explicitly denied, like a
	// real engine starting a stream.
	key := options.KeyFrame == KeyFrameForce
	if e.emitted.Load() == 0 && options.KeyFrame != KeyFrameDeny {
		key = true
	}
	chunk := &EncodedChunk{
		Payload:   []byte{0xde, 0xad},
		Timestamp: frame.Timestamp(),
		Keyframe:  key,
	}

	e.queue.Add(1)
	if e.manual {
		e.mu.Lock()
		e.pending = append(e.pending, chunk)
		e.mu.Unlock()
		return nil
	}
	e.emit(chunk)
	return nil
}

func (e *fakeVideoEncodeEngine) emit(chunk *EncodedChunk) {
	e.queue.Add(-1)
	var side *VideoDecoderConfig
	if e.emitted.Add(1) == 1 {
		side = e.sideConfig
	}
	e.cb.OnChunk(chunk, side)
}

func (e *fakeVideoEncodeEngine) emitPending() {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, chunk := range pending {
		e.emit(chunk)
	}
}

func (e *fakeVideoEncodeEngine) fail(err error) { e.cb.OnError(err) }

func (e *fakeVideoEncodeEngine) options() VideoEncodeOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastOptions
}

func (e *fakeVideoEncodeEngine) Flush(context.Context) error {
	e.emitPending()
	return nil
}

func (e *fakeVideoEncodeEngine) QueueSize() uint32 { return uint32(e.queue.Load()) }
func (e *fakeVideoEncodeEngine) Close()            { e.closes.Add(1) }

type fakeVideoEncodeProvider struct {
	engine   *fakeVideoEncodeEngine
	supports bool
	newErr   error
}

func (p *fakeVideoEncodeProvider) Name() string             { return "fake-video-encode" }
func (p *fakeVideoEncodeProvider) Features() EngineFeatures { return FeatureLowLatency }
func (p *fakeVideoEncodeProvider) Available() bool          { return true }

func (p *fakeVideoEncodeProvider) SupportsVideoEncoder(context.Context, *VideoEncoderConfig) (bool, error) {
	return p.supports, nil
}

func (p *fakeVideoEncodeProvider) NewVideoEncoder(_ *VideoEncoderConfig, cb VideoEncodeCallbacks) (VideoEncodeEngine, error) {
	if p.newErr != nil {
		return nil, p.newErr
	}
	p.engine.cb = cb
	return p.engine, nil
}

type fakeAudioResource struct {
	ts      Timestamp
	samples []float32
	rate    uint32
	closes  *atomic.Int32
}

func (r *fakeAudioResource) Format() AudioFormat       { return AudioFormatF32 }
func (r *fakeAudioResource) SampleRate() uint32        { return r.rate }
func (r *fakeAudioResource) NumberOfFrames() uint32    { return uint32(len(r.samples)) }
func (r *fakeAudioResource) NumberOfChannels() uint32  { return 1 }
func (r *fakeAudioResource) Timestamp() Timestamp      { return r.ts }
func (r *fakeAudioResource) Duration() time.Duration   { return 0 }
func (r *fakeAudioResource) CopyChannel(_ int, offset int, dst []float32) (int, error) {
	return copy(dst, r.samples[offset:]), nil
}
func (r *fakeAudioResource) Close() {
	if r.closes != nil {
		r.closes.Add(1)
	}
}

type fakeAudioDecodeEngine struct {
	cb          AudioDecodeCallbacks
	decodeErr   error
	queue       atomic.Int32
	closes      atomic.Int32
	frameCloses atomic.Int32
}

func (e *fakeAudioDecodeEngine) Decode(chunk *EncodedChunk) error {
	if e.decodeErr != nil {
		return e.decodeErr
	}
	data := NewAudioDataFromResource(&fakeAudioResource{
		ts:      chunk.Timestamp,
		samples: []float32{0, 0, 0, 0},
		rate:    48000,
		closes:  &e.frameCloses,
	})
	e.cb.OnFrame(data)
	return nil
}

func (e *fakeAudioDecodeEngine) fail(err error) { e.cb.OnError(err) }

func (e *fakeAudioDecodeEngine) Flush(context.Context) error { return nil }
func (e *fakeAudioDecodeEngine) QueueSize() uint32           { return uint32(e.queue.Load()) }
func (e *fakeAudioDecodeEngine) Close()                      { e.closes.Add(1) }

type fakeAudioDecodeProvider struct {
	engine   *fakeAudioDecodeEngine
	supports bool
}

func (p *fakeAudioDecodeProvider) Name() string             { return "fake-audio-decode" }
func (p *fakeAudioDecodeProvider) Features() EngineFeatures { return 0 }
func (p *fakeAudioDecodeProvider) Available() bool          { return true }

func (p *fakeAudioDecodeProvider) SupportsAudioDecoder(context.Context, *AudioDecoderConfig) (bool, error) {
	return p.supports, nil
}

func (p *fakeAudioDecodeProvider) NewAudioDecoder(_ *AudioDecoderConfig, cb AudioDecodeCallbacks) (AudioDecodeEngine, error) {
	p.engine.cb = cb
	return p.engine, nil
}

type fakeAudioEncodeEngine struct {
	cb         AudioEncodeCallbacks
	sideConfig *AudioDecoderConfig
	emitted    atomic.Int32
	queue      atomic.Int32
	closes     atomic.Int32
}

func (e *fakeAudioEncodeEngine) Encode(data *AudioData) error {
	chunk := &EncodedChunk{
		Payload:   []byte{0xbe, 0xef},
		Timestamp: data.Timestamp(),
		Keyframe:  true,
	}
	var side *AudioDecoderConfig
	if e.emitted.Add(1) == 1 {
		side = e.sideConfig
	}
	e.cb.OnChunk(chunk, side)
	return nil
}

func (e *fakeAudioEncodeEngine) fail(err error) { e.cb.OnError(err) }

func (e *fakeAudioEncodeEngine) Flush(context.Context) error { return nil }
func (e *fakeAudioEncodeEngine) QueueSize() uint32           { return uint32(e.queue.Load()) }
func (e *fakeAudioEncodeEngine) Close()                      { e.closes.Add(1) }

type fakeAudioEncodeProvider struct {
	engine   *fakeAudioEncodeEngine
	supports bool
}

func (p *fakeAudioEncodeProvider) Name() string             { return "fake-audio-encode" }
func (p *fakeAudioEncodeProvider) Features() EngineFeatures { return 0 }
func (p *fakeAudioEncodeProvider) Available() bool          { return true }

func (p *fakeAudioEncodeProvider) SupportsAudioEncoder(context.Context, *AudioEncoderConfig) (bool, error) {
	return p.supports, nil
}

func (p *fakeAudioEncodeProvider) NewAudioEncoder(_ *AudioEncoderConfig, cb AudioEncodeCallbacks) (AudioEncodeEngine, error) {
	p.engine.cb = cb
	return p.engine, nil
}
