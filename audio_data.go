package webcodecs

import (
	"fmt"
	"sync/atomic"
	"time"
)

// AudioFormat represents audio sample formats. Sample data is planar:
// each channel occupies its own contiguous run of samples.
type AudioFormat int

const (
	AudioFormatS16 AudioFormat = iota // Signed 16-bit PCM
	AudioFormatF32                    // 32-bit float
)

func (a AudioFormat) String() string {
	switch a {
	case AudioFormatS16:
		return "S16"
	case AudioFormatF32:
		return "F32"
	default:
		return "Unknown"
	}
}

// BytesPerSample returns the number of bytes per sample for this format.
func (a AudioFormat) BytesPerSample() int {
	switch a {
	case AudioFormatS16:
		return 2
	case AudioFormatF32:
		return 4
	default:
		return 0
	}
}

// AudioDataResource is the host-native sample buffer behind an AudioData
// handle. Close releases the host buffer and is called exactly once, by
// the last handle.
type AudioDataResource interface {
	Format() AudioFormat
	SampleRate() uint32
	NumberOfFrames() uint32
	NumberOfChannels() uint32
	Timestamp() Timestamp
	Duration() time.Duration

	// CopyChannel copies up to len(dst) samples of one channel, starting
	// at the given frame offset, and returns the number copied.
	CopyChannel(channel int, offset int, dst []float32) (int, error)

	Close()
}

// AudioData is an owned handle to a buffer of decoded (or captured) audio
// samples. Like VideoFrame, it must be closed exactly once; Clone shares
// the host resource rather than copying samples.
type AudioData struct {
	res    AudioDataResource
	ref    *frameRef
	closed atomic.Bool
}

// NewAudioDataFromResource wraps a host resource in an owned handle.
func NewAudioDataFromResource(res AudioDataResource) *AudioData {
	ref := &frameRef{release: res.Close}
	ref.n.Store(1)
	return &AudioData{res: res, ref: ref}
}

// NewAudioData builds audio data from planar f32 channel slices. All
// channels must hold the same number of samples. The slices are not
// copied; the data borrows them until closed.
func NewAudioData(channels [][]float32, sampleRate uint32, timestamp Timestamp) (*AudioData, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	if sampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", ErrInvalidConfig)
	}
	frames := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d samples, want %d",
				ErrInvalidConfig, i+1, len(ch), frames)
		}
	}
	return NewAudioDataFromResource(&memAudioData{
		channels:   channels,
		sampleRate: sampleRate,
		timestamp:  timestamp,
	}), nil
}

// Clone returns a new handle sharing the same host resource. It returns
// nil if this handle is already closed.
func (d *AudioData) Clone() *AudioData {
	if d.closed.Load() {
		return nil
	}
	d.ref.n.Add(1)
	return &AudioData{res: d.res, ref: d.ref}
}

// Close releases this handle. Idempotent; the host resource is closed
// when the last handle goes away.
func (d *AudioData) Close() {
	if d.closed.CompareAndSwap(false, true) {
		d.ref.drop()
	}
}

// Leak consumes the handle and hands the raw resource to the caller, who
// becomes responsible for closing it.
func (d *AudioData) Leak() AudioDataResource {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	d.ref.leaked.Store(true)
	d.ref.n.Add(-1)
	return d.res
}

func (d *AudioData) Format() AudioFormat       { return d.res.Format() }
func (d *AudioData) SampleRate() uint32        { return d.res.SampleRate() }
func (d *AudioData) NumberOfFrames() uint32    { return d.res.NumberOfFrames() }
func (d *AudioData) NumberOfChannels() uint32  { return d.res.NumberOfChannels() }
func (d *AudioData) Timestamp() Timestamp      { return d.res.Timestamp() }
func (d *AudioData) Duration() time.Duration   { return d.res.Duration() }
func (d *AudioData) Resource() AudioDataResource { return d.res }

// AudioCopyOptions selects which span of a channel to extract.
type AudioCopyOptions struct {
	Offset int // frame offset to start at (default 0)
	Count  int // number of frames (0 = remainder)
}

func (o AudioCopyOptions) count(total uint32) int {
	if o.Count > 0 {
		return o.Count
	}
	remain := int(total) - o.Offset
	if remain < 0 {
		return 0
	}
	return remain
}

// CopyTo extracts one channel's samples into dst, which must hold the
// requested span.
func (d *AudioData) CopyTo(dst []float32, channel int, options AudioCopyOptions) error {
	count := options.count(d.NumberOfFrames())
	if len(dst) < count {
		return fmt.Errorf("destination holds %d samples, need %d", len(dst), count)
	}
	_, err := d.res.CopyChannel(channel, options.Offset, dst[:count])
	return err
}

// AppendTo grows dst with one channel's samples and returns the grown
// slice, append-style.
func (d *AudioData) AppendTo(dst []float32, channel int, options AudioCopyOptions) ([]float32, error) {
	count := options.count(d.NumberOfFrames())
	offset := len(dst)
	dst = append(dst, make([]float32, count)...)
	if _, err := d.res.CopyChannel(channel, options.Offset, dst[offset:]); err != nil {
		return dst[:offset], err
	}
	return dst, nil
}

// memAudioData is an in-memory planar f32 resource.
type memAudioData struct {
	channels   [][]float32
	sampleRate uint32
	timestamp  Timestamp
}

func (m *memAudioData) Format() AudioFormat { return AudioFormatF32 }
func (m *memAudioData) SampleRate() uint32  { return m.sampleRate }
func (m *memAudioData) NumberOfFrames() uint32 {
	if len(m.channels) == 0 {
		return 0
	}
	return uint32(len(m.channels[0]))
}
func (m *memAudioData) NumberOfChannels() uint32 { return uint32(len(m.channels)) }
func (m *memAudioData) Timestamp() Timestamp     { return m.timestamp }
func (m *memAudioData) Duration() time.Duration {
	if m.sampleRate == 0 {
		return 0
	}
	return time.Duration(m.NumberOfFrames()) * time.Second / time.Duration(m.sampleRate)
}

func (m *memAudioData) CopyChannel(channel int, offset int, dst []float32) (int, error) {
	if channel < 0 || channel >= len(m.channels) {
		return 0, fmt.Errorf("channel %d out of range (%d channels)", channel, len(m.channels))
	}
	src := m.channels[channel]
	if offset < 0 || offset > len(src) {
		return 0, fmt.Errorf("frame offset %d out of range (%d frames)", offset, len(src))
	}
	return copy(dst, src[offset:]), nil
}

func (m *memAudioData) Close() {
	m.channels = nil
}
