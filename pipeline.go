package webcodecs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// PipelineState represents the state of a transcode pipeline.
type PipelineState int32

const (
	PipelineStateIdle    PipelineState = iota // Not started
	PipelineStateRunning                      // Pumping frames
	PipelineStateStopped                      // Finished or stopped
)

func (s PipelineState) String() string {
	switch s {
	case PipelineStateIdle:
		return "idle"
	case PipelineStateRunning:
		return "running"
	case PipelineStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// DefaultMaxEncodeQueue is the queue depth at which the pipeline stops
// submitting and waits for the encoder to drain.
const DefaultMaxEncodeQueue = 8

// TranscodeStats provides pipeline counters.
type TranscodeStats struct {
	FramesTranscoded uint64 // frames pulled from the decoder and submitted
	Throttled        uint64 // times submission waited on queue depth
	Errors           uint64 // submission errors
}

// VideoTranscodeConfig wires a decoded stream into an encoder.
type VideoTranscodeConfig struct {
	Source  *VideoDecoded // decoder output to drain
	Encoder *VideoEncoder // encoder to feed

	// MaxQueue throttles submission: the pump waits while the encoder's
	// queue depth is at or above this. 0 = DefaultMaxEncodeQueue.
	MaxQueue uint32

	// PollInterval is how often queue depth is re-checked while
	// throttled. 0 = 1ms.
	PollInterval time.Duration

	// OnError receives the pipeline's fatal error, if any.
	OnError func(error)
}

// VideoTranscodePipeline pumps decoded frames into an encoder, observing
// queue-depth backpressure. The encoder's output stream is left to the
// caller (e.g. a TrackWriter).
type VideoTranscodePipeline struct {
	source       *VideoDecoded
	encoder      *VideoEncoder
	maxQueue     uint32
	pollInterval time.Duration
	onError      func(error)

	state  atomic.Int32
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   TranscodeStats
}

// NewVideoTranscodePipeline creates a pipeline; Start begins pumping.
func NewVideoTranscodePipeline(config VideoTranscodeConfig) (*VideoTranscodePipeline, error) {
	if config.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if config.Encoder == nil {
		return nil, fmt.Errorf("encoder is required")
	}
	maxQueue := config.MaxQueue
	if maxQueue == 0 {
		maxQueue = DefaultMaxEncodeQueue
	}
	poll := config.PollInterval
	if poll == 0 {
		poll = time.Millisecond
	}
	return &VideoTranscodePipeline{
		source:       config.Source,
		encoder:      config.Encoder,
		maxQueue:     maxQueue,
		pollInterval: poll,
		onError:      config.OnError,
	}, nil
}

// Start launches the pump goroutine.
func (p *VideoTranscodePipeline) Start() error {
	if !p.state.CompareAndSwap(int32(PipelineStateIdle), int32(PipelineStateRunning)) {
		return fmt.Errorf("pipeline already %s", PipelineState(p.state.Load()))
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.run(ctx)
	return nil
}

// Stop cancels the pump and waits for it to exit. Idempotent.
func (p *VideoTranscodePipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.state.Store(int32(PipelineStateStopped))
}

// State returns the current pipeline state.
func (p *VideoTranscodePipeline) State() PipelineState {
	return PipelineState(p.state.Load())
}

// Stats returns a snapshot of the pipeline counters.
func (p *VideoTranscodePipeline) Stats() TranscodeStats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	return p.stats
}

func (p *VideoTranscodePipeline) run(ctx context.Context) {
	defer p.wg.Done()
	defer p.state.Store(int32(PipelineStateStopped))

	for {
		frame, err := p.source.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				// Source drained cleanly; push out whatever the
				// encoder still holds.
				if err := p.encoder.Flush(ctx); err != nil && !errors.Is(err, ErrClosed) {
					p.reportError(err)
				}
			case errors.Is(err, context.Canceled):
			default:
				p.reportError(err)
			}
			return
		}

		if !p.throttle(ctx) {
			frame.Close()
			return
		}

		err = p.encoder.Encode(frame, VideoEncodeOptions{})
		frame.Close()
		if err != nil {
			p.statsMu.Lock()
			p.stats.Errors++
			p.statsMu.Unlock()
			p.reportError(err)
			return
		}
		p.statsMu.Lock()
		p.stats.FramesTranscoded++
		p.statsMu.Unlock()
	}
}

// throttle waits until the encoder queue has room. Returns false when the
// context is canceled.
func (p *VideoTranscodePipeline) throttle(ctx context.Context) bool {
	throttled := false
	for p.encoder.QueueSize() >= p.maxQueue {
		if !throttled {
			throttled = true
			p.statsMu.Lock()
			p.stats.Throttled++
			p.statsMu.Unlock()
		}
		select {
		case <-time.After(p.pollInterval):
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (p *VideoTranscodePipeline) reportError(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}
