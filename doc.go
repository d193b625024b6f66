// Package webcodecs bridges callback-driven codec engines to pull-based
// output streams, symmetrically for encoding and decoding of audio and
// video.
//
// Host engines (hardware or software codec implementations behind the
// EngineProvider interfaces) are configured once, fed discrete units
// synchronously, and report outputs and fatal errors through out-of-band
// callbacks. This package converts that model into:
//   - an ordered, lossless output sequence consumed one item at a time
//     (VideoDecoded/AudioDecoded/VideoEncoded/AudioEncoded)
//   - a race between "next output" and "fatal closure" where closure
//     short-circuits every later read
//   - queue-depth backpressure (QueueSize), observed rather than enforced
//   - mid-stream negotiated decoder configuration and keyframe-interval
//     policy on the encode path
//   - reference-counted release of engine handles and the frame/sample
//     buffers they produce
//
// # Architecture
//
//	Decode: Config.Build -> (VideoDecoder, VideoDecoded); Decode(chunk) ... Next(ctx)
//	Encode: Config.Build -> (VideoEncoder, VideoEncoded); Encode(frame) ... Frame(ctx)
//	Audio mirrors video with AudioData in place of VideoFrame.
//
// Encoded chunks can be packetized for transport (ChunkPacketizer, RTP)
// or pumped into a WebRTC track (TrackWriter); decoded streams can be
// re-encoded with a VideoTranscodePipeline.
//
// # Engine providers
//
// The package ships no codec implementations. Bindings register an
// EngineProvider (usually from init) and construct engines on demand;
// configs select providers by codec string and hardware preference, or
// pin one explicitly. NativeLibraryAvailable helps providers answer
// support probes for dlopen-backed engines.
package webcodecs
