package webcodecs

import "testing"

func TestDetectKeyframe_VP8(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    bool
	}{
		{"keyframe", []byte{0x10, 0x02, 0x00, 0x9D, 0x01, 0x2A, 0x80, 0x02}, true},
		{"interframe", []byte{0x11, 0x02, 0x00, 0x9D, 0x01, 0x2A}, false},
		{"bad start code", []byte{0x10, 0x02, 0x00, 0x9D, 0x01, 0x2B}, false},
		{"truncated", []byte{0x10, 0x02}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKeyframe(CodecVP8, tt.payload); got != tt.want {
				t.Errorf("DetectKeyframe(VP8) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectKeyframe_VP9(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    bool
	}{
		{"keyframe profile 0", []byte{0x80, 0x49, 0x83, 0x42}, true},
		{"interframe profile 0", []byte{0x84, 0x49, 0x83, 0x42}, false},
		{"show existing frame", []byte{0x88}, false},
		{"keyframe profile 3", []byte{0xB0, 0x49}, true},
		{"interframe profile 3", []byte{0xB2, 0x49}, false},
		{"bad frame marker", []byte{0x00}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKeyframe(CodecVP9, tt.payload); got != tt.want {
				t.Errorf("DetectKeyframe(VP9) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectKeyframe_H264(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    bool
	}{
		{"annexb idr", []byte{0x00, 0x00, 0x00, 0x01, 0x65, 0x88, 0x84}, true},
		{"annexb non-idr", []byte{0x00, 0x00, 0x00, 0x01, 0x41, 0x9A}, false},
		{"annexb sps then idr", []byte{
			0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0xC0, 0x1F,
			0x00, 0x00, 0x01, 0x65, 0x88,
		}, true},
		{"short start code", []byte{0x00, 0x00, 0x01, 0x65, 0x88}, true},
		{"avcc idr", []byte{0x00, 0x00, 0x00, 0x02, 0x65, 0x88}, true},
		{"avcc non-idr", []byte{0x00, 0x00, 0x00, 0x02, 0x41, 0x9A}, false},
		{"avcc bad length", []byte{0x00, 0x00, 0x00, 0x60, 0x65}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKeyframe(CodecH264, tt.payload); got != tt.want {
				t.Errorf("DetectKeyframe(H264) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectKeyframe_AV1(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    bool
	}{
		{"sequence header first", []byte{0x0A, 0x02, 0x00, 0x00}, true},
		{"temporal delimiter then sequence header", []byte{0x12, 0x00, 0x0A, 0x02, 0x00, 0x00}, true},
		{"frame only", []byte{0x32, 0x02, 0x00, 0x00}, false},
		{"forbidden bit set", []byte{0x8A, 0x02}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKeyframe(CodecAV1, tt.payload); got != tt.want {
				t.Errorf("DetectKeyframe(AV1) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectKeyframe_Audio(t *testing.T) {
	// Every audio chunk is a sync unit.
	for _, family := range []CodecFamily{CodecOpus, CodecAAC, CodecFLAC} {
		if !DetectKeyframe(family, []byte{0xF8}) {
			t.Errorf("DetectKeyframe(%v) = false, want true", family)
		}
	}
	if DetectKeyframe(CodecUnknown, []byte{0x00}) {
		t.Error("DetectKeyframe(Unknown) = true, want false")
	}
}

func TestReadLEB128(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		value uint64
		n     int
	}{
		{"one byte", []byte{0x05}, 5, 1},
		{"two bytes", []byte{0x80, 0x01}, 128, 2},
		{"unterminated", []byte{0x80}, 0, 0},
		{"empty", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, n := readLEB128(tt.data)
			if value != tt.value || n != tt.n {
				t.Errorf("readLEB128() = %d, %d, want %d, %d", value, n, tt.value, tt.n)
			}
		})
	}
}
