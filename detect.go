package webcodecs

// DetectKeyframe sniffs whether a raw encoded payload is a key (sync)
// unit, for callers that frame chunks off the wire without container
// metadata. It understands:
//   - VP8: RFC 6386 - frame tag + keyframe start code
//   - VP9: VP9 Bitstream Specification uncompressed header
//   - H.264: ITU-T H.264 Annex-B or AVCC framing, IDR slice present
//   - AV1: OBU stream containing a sequence header
//
// Audio families return true: every audio chunk is a sync unit.
// Unknown families return false.
func DetectKeyframe(family CodecFamily, payload []byte) bool {
	if family.Audio() {
		return true
	}
	switch family {
	case CodecVP8:
		return isVP8Keyframe(payload)
	case CodecVP9:
		return isVP9Keyframe(payload)
	case CodecH264:
		return hasH264IDR(payload)
	case CodecAV1:
		return hasAV1SequenceHeader(payload)
	default:
		return false
	}
}

// isVP8Keyframe checks for the VP8 keyframe signature.
// Per RFC 6386 Section 9.1, byte 0 carries frame_type in bit 0
// (0 = keyframe) and keyframes follow the 3-byte frame tag with the
// start code 0x9D 0x01 0x2A.
func isVP8Keyframe(data []byte) bool {
	if len(data) < 6 {
		return false
	}
	if data[0]&0x01 != 0 {
		return false
	}
	return data[3] == 0x9D && data[4] == 0x01 && data[5] == 0x2A
}

// isVP9Keyframe checks the VP9 uncompressed header.
// Per the VP9 Bitstream Specification Section 6.2: frame_marker (2 bits,
// always 0b10), profile bits, show_existing_frame (1 bit), frame_type
// (1 bit, 0 = key frame). The frame_type position shifts by one for
// profile 3 (both profile bits set).
func isVP9Keyframe(data []byte) bool {
	if len(data) < 1 {
		return false
	}
	b := data[0]
	if (b>>6)&0x03 != 0x02 {
		return false
	}
	profile := (b >> 5) & 0x01
	reserved := (b >> 4) & 0x01
	if profile == 1 && reserved == 1 {
		// Profile 3: one extra reserved bit before show_existing_frame.
		return (b>>2)&0x01 == 0 && (b>>1)&0x01 == 0
	}
	return (b>>3)&0x01 == 0 && (b>>2)&0x01 == 0
}

// hasH264IDR scans NAL units for an IDR slice (type 5), handling both
// Annex-B start codes and AVCC 4-byte length prefixes.
func hasH264IDR(data []byte) bool {
	if isAnnexBStartCode(data) {
		for i := 0; i+3 < len(data); i++ {
			if data[i] != 0 || data[i+1] != 0 {
				continue
			}
			offset := 0
			if data[i+2] == 1 {
				offset = i + 3
			} else if i+4 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				offset = i + 4
			} else {
				continue
			}
			if offset < len(data) && data[offset]&0x1F == 5 {
				return true
			}
		}
		return false
	}

	// AVCC: 4-byte big-endian length prefixes.
	for i := 0; i+4 < len(data); {
		length := int(data[i])<<24 | int(data[i+1])<<16 | int(data[i+2])<<8 | int(data[i+3])
		if length <= 0 || i+4+length > len(data) {
			return false
		}
		if data[i+4]&0x1F == 5 {
			return true
		}
		i += 4 + length
	}
	return false
}

// isAnnexBStartCode checks for H.264/H.265 Annex-B start codes
// (0x000001 or 0x00000001).
func isAnnexBStartCode(data []byte) bool {
	if len(data) >= 4 && data[0] == 0 && data[1] == 0 && data[2] == 0 && data[3] == 1 {
		return true
	}
	return len(data) >= 3 && data[0] == 0 && data[1] == 0 && data[2] == 1
}

// hasAV1SequenceHeader walks OBUs looking for a sequence header (type 1),
// which AV1 keyframes carry.
// Per the AV1 Bitstream Specification Section 5.3.2, the OBU header is:
// forbidden bit, obu_type (4 bits), extension flag, has_size_field flag.
func hasAV1SequenceHeader(data []byte) bool {
	for i := 0; i < len(data); {
		b := data[i]
		if (b>>7)&0x01 != 0 {
			return false
		}
		obuType := (b >> 3) & 0x0F
		if obuType == 1 {
			return true
		}
		hasSize := (b>>1)&0x01 != 0
		i++
		if (b>>2)&0x01 != 0 { // extension header
			i++
		}
		if !hasSize {
			// Without a size field the OBU extends to the end.
			return false
		}
		size, n := readLEB128(data[i:])
		if n == 0 {
			return false
		}
		i += n + int(size)
	}
	return false
}

// readLEB128 decodes an unsigned LEB128 value, returning the value and
// the number of bytes consumed (0 on malformed input).
func readLEB128(data []byte) (uint64, int) {
	var value uint64
	for i := 0; i < len(data) && i < 8; i++ {
		value |= uint64(data[i]&0x7F) << (7 * i)
		if data[i]&0x80 == 0 {
			return value, i + 1
		}
	}
	return 0, 0
}
