package webcodecs

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// ChunkSource is the pull side of an encoder; both VideoEncoded and
// AudioEncoded satisfy it.
type ChunkSource interface {
	Frame(ctx context.Context) (*EncodedChunk, error)
}

// TrackWriter drains an encoded stream into a WebRTC sample track.
// Sample durations are derived from consecutive chunk timestamps, with a
// fallback for the first chunk.
type TrackWriter struct {
	track           *webrtc.TrackLocalStaticSample
	source          ChunkSource
	defaultDuration time.Duration
}

// NewVideoTrackWriter wires a video encoder output to a sample track.
func NewVideoTrackWriter(track *webrtc.TrackLocalStaticSample, source *VideoEncoded) *TrackWriter {
	return &TrackWriter{
		track:           track,
		source:          source,
		defaultDuration: 33 * time.Millisecond,
	}
}

// NewAudioTrackWriter wires an audio encoder output to a sample track.
func NewAudioTrackWriter(track *webrtc.TrackLocalStaticSample, source *AudioEncoded) *TrackWriter {
	return &TrackWriter{
		track:           track,
		source:          source,
		defaultDuration: 20 * time.Millisecond,
	}
}

// Run pumps chunks until the stream ends. A clean end of stream returns
// nil; the engine's fatal error or context cancellation is returned
// as-is.
func (w *TrackWriter) Run(ctx context.Context) error {
	var prev *EncodedChunk

	for {
		chunk, err := w.source.Frame(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if prev != nil {
					return w.write(prev, w.defaultDuration)
				}
				return nil
			}
			return err
		}

		// Each chunk's duration is known only once the next one
		// arrives, so write one chunk behind.
		if prev != nil {
			duration := chunk.Timestamp.Sub(prev.Timestamp)
			if duration <= 0 {
				duration = w.defaultDuration
			}
			if err := w.write(prev, duration); err != nil {
				return err
			}
		}
		prev = chunk
	}
}

func (w *TrackWriter) write(chunk *EncodedChunk, duration time.Duration) error {
	return w.track.WriteSample(media.Sample{
		Data:     chunk.Payload,
		Duration: duration,
	})
}
