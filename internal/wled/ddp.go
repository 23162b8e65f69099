package wled

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// DDP framing. One datagram carries a 10-byte header and up to MaxPayload
// bytes of RGB triples; larger frames are split and only the last fragment
// has the push flag set, which tells the device to latch the frame.
const (
	HeaderLen   = 10
	MaxPayload  = 1440 // 480 LEDs
	DefaultPort = 4048

	flagVersion1 = 0x40
	flagPush     = 0x01
	typeRGB8     = 0x0B
	destDisplay  = 0x01
)

// Packet is one decoded DDP datagram.
type Packet struct {
	Flags       byte
	Seq         byte
	Type        byte
	Destination byte
	Offset      uint32
	Data        []byte
}

// Push reports whether this fragment completes a frame.
func (p Packet) Push() bool { return p.Flags&flagPush != 0 }

// Sequence hands out DDP sequence numbers 1..15; 0 means "unused" on the
// wire and is never produced.
type Sequence struct{ n byte }

func (s *Sequence) Next() byte {
	s.n = s.n%15 + 1
	return s.n
}

// Encode splits an RGB frame into DDP datagrams sharing sequence seq.
// A frame of zero bytes still yields one empty push packet.
func Encode(frame []byte, seq byte) [][]byte {
	var out [][]byte
	for off := 0; ; off += MaxPayload {
		end := off + MaxPayload
		last := end >= len(frame)
		if last {
			end = len(frame)
		}
		out = append(out, appendPacket(nil, frame[off:end], seq, uint32(off), last))
		if last {
			return out
		}
	}
}

func appendPacket(dst, data []byte, seq byte, offset uint32, push bool) []byte {
	flags := byte(flagVersion1)
	if push {
		flags |= flagPush
	}
	var h [HeaderLen]byte
	h[0] = flags
	h[1] = seq & 0x0F
	h[2] = typeRGB8
	h[3] = destDisplay
	binary.BigEndian.PutUint32(h[4:8], offset)
	binary.BigEndian.PutUint16(h[8:10], uint16(len(data)))
	dst = append(dst, h[:]...)
	return append(dst, data...)
}

var (
	ErrShortPacket = errors.New("ddp: packet shorter than header")
	ErrBadVersion  = errors.New("ddp: unsupported protocol version")
)

// ParsePacket decodes one datagram. Data aliases b.
func ParsePacket(b []byte) (Packet, error) {
	if len(b) < HeaderLen {
		return Packet{}, ErrShortPacket
	}
	if b[0]&0xC0 != flagVersion1 {
		return Packet{}, ErrBadVersion
	}
	n := int(binary.BigEndian.Uint16(b[8:10]))
	if HeaderLen+n > len(b) {
		return Packet{}, fmt.Errorf("ddp: length field %d exceeds datagram payload %d", n, len(b)-HeaderLen)
	}
	return Packet{
		Flags:       b[0],
		Seq:         b[1] & 0x0F,
		Type:        b[2],
		Destination: b[3],
		Offset:      binary.BigEndian.Uint32(b[4:8]),
		Data:        b[HeaderLen : HeaderLen+n],
	}, nil
}

// Reassemble joins the fragments of one frame back into RGB bytes. The
// fragments may arrive in any order but must tile the frame without gaps.
func Reassemble(pkts []Packet) ([]byte, error) {
	if len(pkts) == 0 {
		return nil, errors.New("ddp: no packets")
	}
	sorted := append([]Packet(nil), pkts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	var out []byte
	for _, p := range sorted {
		if int(p.Offset) != len(out) {
			return nil, fmt.Errorf("ddp: fragment at offset %d, expected %d", p.Offset, len(out))
		}
		out = append(out, p.Data...)
	}
	if !sorted[len(sorted)-1].Push() {
		return nil, errors.New("ddp: final fragment has no push flag")
	}
	return out, nil
}
