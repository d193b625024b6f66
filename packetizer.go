package webcodecs

import (
	"fmt"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
)

// DefaultMTU is the default RTP packet size budget.
const DefaultMTU = 1200

// rtpHeaderSize is the fixed RTP header size without extensions.
const rtpHeaderSize = 12

// ChunkPacketizer converts encoded chunks into RTP packets using pion's
// codec payloaders. Chunk timestamps are rescaled into the codec family's
// RTP clock.
type ChunkPacketizer struct {
	family      CodecFamily
	ssrc        uint32
	payloadType uint8
	mtu         int
	clockRate   uint32

	mu        sync.Mutex
	sequencer rtp.Sequencer
	payloader rtp.Payloader
}

// NewChunkPacketizer creates a packetizer for one codec family.
// mtu <= 0 selects DefaultMTU; clock-rate-less families (e.g. AAC) are
// rejected.
func NewChunkPacketizer(family CodecFamily, ssrc uint32, payloadType uint8, mtu int) (*ChunkPacketizer, error) {
	var payloader rtp.Payloader
	switch family {
	case CodecVP8:
		payloader = &codecs.VP8Payloader{EnablePictureID: true}
	case CodecVP9:
		payloader = &codecs.VP9Payloader{}
	case CodecH264:
		payloader = &codecs.H264Payloader{}
	case CodecAV1:
		payloader = &codecs.AV1Payloader{}
	case CodecOpus:
		payloader = &codecs.OpusPayloader{}
	default:
		return nil, fmt.Errorf("%w: no RTP payloader for %s", ErrCodecNotSupported, family)
	}
	clockRate := family.ClockRate()
	if clockRate == 0 {
		return nil, fmt.Errorf("%w: %s has no fixed RTP clock", ErrCodecNotSupported, family)
	}
	if mtu <= 0 {
		mtu = DefaultMTU
	}
	return &ChunkPacketizer{
		family:      family,
		ssrc:        ssrc,
		payloadType: payloadType,
		mtu:         mtu,
		clockRate:   clockRate,
		sequencer:   rtp.NewRandomSequencer(),
		payloader:   payloader,
	}, nil
}

// Packetize converts one encoded chunk into RTP packets. The marker bit
// is set on the last packet of the chunk.
func (p *ChunkPacketizer) Packetize(chunk *EncodedChunk) ([]*rtp.Packet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if chunk.ByteLength() == 0 {
		return nil, nil
	}

	payloads := p.payloader.Payload(uint16(p.mtu-rtpHeaderSize), chunk.Payload)
	if len(payloads) == 0 {
		return nil, nil
	}

	timestamp := uint32(chunk.Timestamp.Units(uint64(p.clockRate)))
	packets := make([]*rtp.Packet, len(payloads))
	for i, payload := range payloads {
		packets[i] = &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         i == len(payloads)-1,
				PayloadType:    p.payloadType,
				SequenceNumber: p.sequencer.NextSequenceNumber(),
				Timestamp:      timestamp,
				SSRC:           p.ssrc,
			},
			Payload: payload,
		}
	}
	return packets, nil
}

// PacketizeToBytes converts one encoded chunk into marshaled RTP packet
// bytes, ready to hand to a transport.
func (p *ChunkPacketizer) PacketizeToBytes(chunk *EncodedChunk) ([][]byte, error) {
	packets, err := p.Packetize(chunk)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(packets))
	for i, pkt := range packets {
		out[i], err = pkt.Marshal()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *ChunkPacketizer) SSRC() uint32        { return p.ssrc }
func (p *ChunkPacketizer) PayloadType() uint8  { return p.payloadType }
func (p *ChunkPacketizer) ClockRate() uint32   { return p.clockRate }
func (p *ChunkPacketizer) Family() CodecFamily { return p.family }
