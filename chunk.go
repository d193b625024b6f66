package webcodecs

// EncodedChunk is a single unit of encoded media: one compressed video
// frame or one span of compressed audio samples. Chunks are produced by
// encode engines and consumed by Decode (or by transmission).
//
// The payload is immutable once produced. Copies of a chunk share the
// underlying bytes, so passing chunks around is cheap.
type EncodedChunk struct {
	Payload   []byte    // compressed bitstream data; do not mutate
	Timestamp Timestamp // presentation timestamp
	Keyframe  bool      // true for a key (sync) unit, false for delta
}

// ByteLength returns the payload size in bytes.
func (c *EncodedChunk) ByteLength() int { return len(c.Payload) }
