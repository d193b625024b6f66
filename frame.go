package webcodecs

import (
	"fmt"
	"sync/atomic"
	"time"
)

// PixelFormat represents video pixel formats.
type PixelFormat int

const (
	PixelFormatI420   PixelFormat = iota // YUV 4:2:0 planar (Y + U + V)
	PixelFormatNV12                      // YUV 4:2:0 semi-planar (Y + interleaved UV)
	PixelFormatRGBA32                    // Packed RGBA, 4 bytes per pixel
	PixelFormatBGRA32                    // Packed BGRA, 4 bytes per pixel
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatI420:
		return "I420"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatRGBA32:
		return "RGBA32"
	case PixelFormatBGRA32:
		return "BGRA32"
	default:
		return "Unknown"
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatI420:
		return 3 // Y, U, V
	case PixelFormatNV12:
		return 2 // Y, UV
	case PixelFormatRGBA32, PixelFormatBGRA32:
		return 1 // Packed
	default:
		return 0
	}
}

// VideoFrameResource is the host-native pixel buffer behind a VideoFrame.
// Engines produce resources; the adapter wraps them in reference-counted
// handles. Close releases the host buffer and is called exactly once, by
// the last handle.
type VideoFrameResource interface {
	Format() PixelFormat
	CodedSize() Dimensions
	DisplaySize() Dimensions
	Timestamp() Timestamp
	Duration() time.Duration // 0 when unknown

	// Plane and Stride expose raw pixel data. GPU-backed resources may
	// return nil/0 until downloaded.
	Plane(i int) []byte
	Stride(i int) int

	Close()
}

// frameRef is the shared reference count behind cloned frame handles.
// The host resource is released when the count reaches zero, unless a
// handle leaked the resource to an external owner first.
type frameRef struct {
	n       atomic.Int32
	leaked  atomic.Bool
	release func()
}

func (r *frameRef) drop() {
	if r.n.Add(-1) == 0 && !r.leaked.Load() {
		r.release()
	}
}

// VideoFrame is an owned handle to a decoded (or captured) video frame.
// A frame obtained from a decoder output must be closed exactly once:
// either explicitly, or by whatever consumes it. Clone shares the
// underlying host resource instead of copying pixels; the resource is
// released when the last handle closes.
type VideoFrame struct {
	res    VideoFrameResource
	ref    *frameRef
	closed atomic.Bool
}

// NewVideoFrame wraps a host resource in an owned handle.
func NewVideoFrame(res VideoFrameResource) *VideoFrame {
	ref := &frameRef{release: res.Close}
	ref.n.Store(1)
	return &VideoFrame{res: res, ref: ref}
}

// Clone returns a new handle sharing the same host resource. It returns
// nil if this handle is already closed.
func (f *VideoFrame) Clone() *VideoFrame {
	if f.closed.Load() {
		return nil
	}
	f.ref.n.Add(1)
	return &VideoFrame{res: f.res, ref: f.ref}
}

// Close releases this handle. Idempotent; the host resource is closed
// when the last handle goes away.
func (f *VideoFrame) Close() {
	if f.closed.CompareAndSwap(false, true) {
		f.ref.drop()
	}
}

// Leak consumes the handle and hands the raw resource to the caller, who
// becomes responsible for closing it. The automatic release is disabled
// for every handle sharing this resource.
func (f *VideoFrame) Leak() VideoFrameResource {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	f.ref.leaked.Store(true)
	f.ref.n.Add(-1)
	return f.res
}

func (f *VideoFrame) Format() PixelFormat      { return f.res.Format() }
func (f *VideoFrame) CodedSize() Dimensions    { return f.res.CodedSize() }
func (f *VideoFrame) DisplaySize() Dimensions  { return f.res.DisplaySize() }
func (f *VideoFrame) Timestamp() Timestamp     { return f.res.Timestamp() }
func (f *VideoFrame) Duration() time.Duration  { return f.res.Duration() }
func (f *VideoFrame) Plane(i int) []byte       { return f.res.Plane(i) }
func (f *VideoFrame) Stride(i int) int         { return f.res.Stride(i) }
func (f *VideoFrame) Resource() VideoFrameResource { return f.res }

// memVideoFrame is an in-memory plane-backed resource, used for encode
// input and synthetic frames.
type memVideoFrame struct {
	format    PixelFormat
	size      Dimensions
	planes    [][]byte
	strides   []int
	timestamp Timestamp
	duration  time.Duration
}

func (m *memVideoFrame) Format() PixelFormat     { return m.format }
func (m *memVideoFrame) CodedSize() Dimensions   { return m.size }
func (m *memVideoFrame) DisplaySize() Dimensions { return m.size }
func (m *memVideoFrame) Timestamp() Timestamp    { return m.timestamp }
func (m *memVideoFrame) Duration() time.Duration { return m.duration }
func (m *memVideoFrame) Plane(i int) []byte {
	if i < 0 || i >= len(m.planes) {
		return nil
	}
	return m.planes[i]
}
func (m *memVideoFrame) Stride(i int) int {
	if i < 0 || i >= len(m.strides) {
		return 0
	}
	return m.strides[i]
}
func (m *memVideoFrame) Close() {
	m.planes = nil
}

// NewVideoFrameFromPlanes builds a frame around caller-provided pixel
// planes. The planes are not copied; the frame borrows them until closed.
func NewVideoFrameFromPlanes(
	format PixelFormat,
	size Dimensions,
	planes [][]byte,
	strides []int,
	timestamp Timestamp,
	duration time.Duration,
) (*VideoFrame, error) {
	if !size.Valid() {
		return nil, ErrInvalidDimensions
	}
	if len(planes) != format.PlaneCount() || len(strides) != format.PlaneCount() {
		return nil, fmt.Errorf("%w: %s requires %d planes, got %d",
			ErrInvalidConfig, format, format.PlaneCount(), len(planes))
	}
	return NewVideoFrame(&memVideoFrame{
		format:    format,
		size:      size,
		planes:    planes,
		strides:   strides,
		timestamp: timestamp,
		duration:  duration,
	}), nil
}
