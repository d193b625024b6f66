package webcodecs

import "strings"

// CodecFamily identifies the codec family behind a codec identifier string.
type CodecFamily int

const (
	CodecUnknown CodecFamily = iota
	CodecVP8
	CodecVP9
	CodecH264
	CodecH265
	CodecAV1
	CodecOpus
	CodecAAC
	CodecFLAC
)

func (c CodecFamily) String() string {
	switch c {
	case CodecVP8:
		return "VP8"
	case CodecVP9:
		return "VP9"
	case CodecH264:
		return "H264"
	case CodecH265:
		return "H265"
	case CodecAV1:
		return "AV1"
	case CodecOpus:
		return "Opus"
	case CodecAAC:
		return "AAC"
	case CodecFLAC:
		return "FLAC"
	default:
		return "Unknown"
	}
}

// Audio returns true for audio codec families.
func (c CodecFamily) Audio() bool {
	switch c {
	case CodecOpus, CodecAAC, CodecFLAC:
		return true
	default:
		return false
	}
}

// MimeType returns the MIME type for this codec family.
func (c CodecFamily) MimeType() string {
	switch c {
	case CodecVP8:
		return "video/VP8"
	case CodecVP9:
		return "video/VP9"
	case CodecH264:
		return "video/H264"
	case CodecH265:
		return "video/H265"
	case CodecAV1:
		return "video/AV1"
	case CodecOpus:
		return "audio/opus"
	case CodecAAC:
		return "audio/aac"
	case CodecFLAC:
		return "audio/flac"
	default:
		return ""
	}
}

// ClockRate returns the RTP clock rate for this codec family.
// All video codecs use the 90kHz clock; AAC returns 0 because its clock
// rate follows the negotiated sample rate.
func (c CodecFamily) ClockRate() uint32 {
	switch c {
	case CodecVP8, CodecVP9, CodecH264, CodecH265, CodecAV1:
		return 90000
	case CodecOpus:
		return 48000
	default:
		return 0
	}
}

// ParseCodec maps a codec identifier string to its family. Identifiers
// follow the WebCodecs registry convention: a four-character tag optionally
// followed by a dot-separated profile/level suffix, e.g. "vp8",
// "vp09.00.10.08", "avc1.64001f", "av01.0.04M.08", "opus", "mp4a.40.2".
func ParseCodec(codec string) CodecFamily {
	tag, _, _ := strings.Cut(strings.ToLower(codec), ".")
	switch tag {
	case "vp8":
		return CodecVP8
	case "vp9", "vp09":
		return CodecVP9
	case "avc1", "avc3", "h264":
		return CodecH264
	case "hvc1", "hev1", "h265":
		return CodecH265
	case "av01":
		return CodecAV1
	case "opus":
		return CodecOpus
	case "mp4a", "aac":
		return CodecAAC
	case "flac":
		return CodecFLAC
	default:
		return CodecUnknown
	}
}
