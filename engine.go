package webcodecs

import (
	"context"
	"sync"
)

// HardwarePreference optionally requires or avoids hardware acceleration.
type HardwarePreference int

const (
	HardwareNoPreference HardwarePreference = iota
	PreferHardware
	PreferSoftware
)

func (p HardwarePreference) String() string {
	switch p {
	case PreferHardware:
		return "prefer-hardware"
	case PreferSoftware:
		return "prefer-software"
	default:
		return "no-preference"
	}
}

// LatencyMode optionally optimizes the engine for latency or quality.
type LatencyMode int

const (
	LatencyDefault LatencyMode = iota
	LatencyRealtime
	LatencyQuality
)

func (m LatencyMode) String() string {
	switch m {
	case LatencyRealtime:
		return "realtime"
	case LatencyQuality:
		return "quality"
	default:
		return "default"
	}
}

// Engine callbacks. An engine holds its callbacks for its whole lifetime
// and may invoke them from any goroutine; they must not block. The adapter
// only enqueues from them.
type (
	// VideoDecodeCallbacks receive decoded frames and fatal errors.
	VideoDecodeCallbacks struct {
		OnFrame func(*VideoFrame)
		OnError func(error)
	}

	// AudioDecodeCallbacks receive decoded audio and fatal errors.
	AudioDecodeCallbacks struct {
		OnFrame func(*AudioData)
		OnError func(error)
	}

	// VideoEncodeCallbacks receive encoded chunks, each optionally
	// accompanied by side-channel decoder configuration, plus fatal
	// errors.
	VideoEncodeCallbacks struct {
		OnChunk func(*EncodedChunk, *VideoDecoderConfig)
		OnError func(error)
	}

	// AudioEncodeCallbacks mirror VideoEncodeCallbacks for audio.
	AudioEncodeCallbacks struct {
		OnChunk func(*EncodedChunk, *AudioDecoderConfig)
		OnError func(error)
	}
)

// Host engine surfaces. These are the seam to the platform's codec
// implementation: configure happens at construction (see the provider
// interfaces below), submission is synchronous, output arrives through
// the callbacks. Close must be idempotent and render later callbacks
// inert.
type (
	VideoDecodeEngine interface {
		Decode(*EncodedChunk) error
		Flush(ctx context.Context) error
		QueueSize() uint32
		Close()
	}

	AudioDecodeEngine interface {
		Decode(*EncodedChunk) error
		Flush(ctx context.Context) error
		QueueSize() uint32
		Close()
	}

	VideoEncodeEngine interface {
		Encode(*VideoFrame, VideoEncodeOptions) error
		Flush(ctx context.Context) error
		QueueSize() uint32
		Close()
	}

	AudioEncodeEngine interface {
		Encode(*AudioData) error
		Flush(ctx context.Context) error
		QueueSize() uint32
		Close()
	}
)

// EngineFeatures is a bitmask of provider capabilities.
type EngineFeatures uint32

const (
	FeatureHardware   EngineFeatures = 1 << iota // hardware-accelerated engines
	FeatureLowLatency                            // optimized for real-time
	FeatureSVC                                   // scalable video coding modes
)

// Has returns true if all specified features are present.
func (f EngineFeatures) Has(feature EngineFeatures) bool { return f&feature == feature }

// EngineProvider is implemented by codec engine bindings. Providers
// register once (usually from init) and are consulted by IsSupported and
// Build in registration order.
type EngineProvider interface {
	// Name identifies the provider, e.g. "videotoolbox" or "libvpx".
	Name() string

	// Features describes the engines this provider constructs.
	Features() EngineFeatures

	// Available reports whether the underlying platform engine can be
	// reached right now (native library present, service up, ...).
	Available() bool
}

// Directional provider surfaces. A provider implements whichever of these
// it can serve; Build type-asserts against the registry.
type (
	VideoDecodeProvider interface {
		EngineProvider
		SupportsVideoDecoder(ctx context.Context, config *VideoDecoderConfig) (bool, error)
		NewVideoDecoder(config *VideoDecoderConfig, callbacks VideoDecodeCallbacks) (VideoDecodeEngine, error)
	}

	AudioDecodeProvider interface {
		EngineProvider
		SupportsAudioDecoder(ctx context.Context, config *AudioDecoderConfig) (bool, error)
		NewAudioDecoder(config *AudioDecoderConfig, callbacks AudioDecodeCallbacks) (AudioDecodeEngine, error)
	}

	VideoEncodeProvider interface {
		EngineProvider
		SupportsVideoEncoder(ctx context.Context, config *VideoEncoderConfig) (bool, error)
		NewVideoEncoder(config *VideoEncoderConfig, callbacks VideoEncodeCallbacks) (VideoEncodeEngine, error)
	}

	AudioEncodeProvider interface {
		EngineProvider
		SupportsAudioEncoder(ctx context.Context, config *AudioEncoderConfig) (bool, error)
		NewAudioEncoder(config *AudioEncoderConfig, callbacks AudioEncodeCallbacks) (AudioEncodeEngine, error)
	}
)

var (
	providersMu sync.RWMutex
	providers   []EngineProvider
)

// RegisterProvider adds an engine provider to the global registry.
// Typically called from a binding package's init.
func RegisterProvider(p EngineProvider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers = append(providers, p)
}

// registeredProviders returns a snapshot of the registry.
func registeredProviders() []EngineProvider {
	providersMu.RLock()
	defer providersMu.RUnlock()
	return append([]EngineProvider(nil), providers...)
}

// acceptable applies the hardware preference to a provider's features.
// Latency preferences are hints passed through to the engine, but a hard
// hardware requirement filters providers.
func acceptable(p EngineProvider, pref HardwarePreference) bool {
	if !p.Available() {
		return false
	}
	hw := p.Features().Has(FeatureHardware)
	switch pref {
	case PreferHardware:
		return hw
	case PreferSoftware:
		return !hw
	default:
		return true
	}
}
