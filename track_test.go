package webcodecs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
)

// sliceChunkSource replays a fixed set of chunks, then its terminal error.
type sliceChunkSource struct {
	chunks   []*EncodedChunk
	terminal error
}

func (s *sliceChunkSource) Frame(ctx context.Context) (*EncodedChunk, error) {
	if len(s.chunks) == 0 {
		return nil, s.terminal
	}
	chunk := s.chunks[0]
	s.chunks = s.chunks[1:]
	return chunk, nil
}

func newSampleTrack(t *testing.T) *webrtc.TrackLocalStaticSample {
	t.Helper()
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "video", "bridge")
	if err != nil {
		t.Fatalf("NewTrackLocalStaticSample() error = %v", err)
	}
	return track
}

func TestTrackWriter_CleanEnd(t *testing.T) {
	ctx := testContext(t)
	source := &sliceChunkSource{
		chunks: []*EncodedChunk{
			{Payload: []byte{1}, Timestamp: TimestampMillis(0), Keyframe: true},
			{Payload: []byte{2}, Timestamp: TimestampMillis(33)},
			{Payload: []byte{3}, Timestamp: TimestampMillis(66)},
		},
		terminal: io.EOF,
	}

	writer := &TrackWriter{
		track:           newSampleTrack(t),
		source:          source,
		defaultDuration: 33 * time.Millisecond,
	}
	if err := writer.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil on clean end", err)
	}
}

func TestTrackWriter_EmptyStream(t *testing.T) {
	ctx := testContext(t)
	writer := NewVideoTrackWriter(newSampleTrack(t), nil)
	writer.source = &sliceChunkSource{terminal: io.EOF}

	if err := writer.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil for empty stream", err)
	}
}

func TestTrackWriter_PropagatesError(t *testing.T) {
	ctx := testContext(t)
	terminal := errors.New("engine failed")
	writer := NewVideoTrackWriter(newSampleTrack(t), nil)
	writer.source = &sliceChunkSource{
		chunks:   []*EncodedChunk{{Payload: []byte{1}}},
		terminal: terminal,
	}

	if err := writer.Run(ctx); !errors.Is(err, terminal) {
		t.Fatalf("Run() = %v, want %v", err, terminal)
	}
}

func TestTrackWriter_FromEncoder(t *testing.T) {
	ctx := testContext(t)
	engine := &fakeVideoEncodeEngine{}
	encoder, encoded := buildVideoEncoder(t, engine, NewVideoEncoderConfig("vp8", Dimensions{Width: 640, Height: 480}))

	for i := 0; i < 3; i++ {
		frame := makeFrame(TimestampMillis(uint64(i * 33)))
		err := encoder.Encode(frame, VideoEncodeOptions{})
		frame.Close()
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
	}
	encoder.Close()

	writer := NewVideoTrackWriter(newSampleTrack(t), encoded)
	if err := writer.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
}
