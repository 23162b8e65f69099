package wled

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameOf(n int) []byte {
	b := make([]byte, n*3)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func TestEncodeHeader(t *testing.T) {
	pkts := Encode([]byte{1, 2, 3, 4, 5, 6}, 3)
	require.Len(t, pkts, 1)
	p := pkts[0]
	assert.Equal(t, []byte{0x41, 3, 0x0B, 1, 0, 0, 0, 0, 0, 6}, p[:HeaderLen])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, p[HeaderLen:])
}

func TestEncodeFragmentsAt480LEDs(t *testing.T) {
	frame := frameOf(1000)
	pkts := Encode(frame, 1)
	require.Len(t, pkts, 3)

	var parsed []Packet
	for i, b := range pkts {
		p, err := ParsePacket(b)
		require.NoError(t, err)
		assert.Equal(t, uint32(i*MaxPayload), p.Offset)
		assert.Equal(t, i == len(pkts)-1, p.Push(), "push only on the last fragment")
		assert.LessOrEqual(t, len(p.Data), MaxPayload)
		parsed = append(parsed, p)
	}
	assert.Len(t, parsed[2].Data, 1000*3-2*MaxPayload)
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 479, 480, 481, 1610} {
		frame := frameOf(n)
		var pkts []Packet
		for _, b := range Encode(frame, 9) {
			p, err := ParsePacket(b)
			require.NoError(t, err)
			pkts = append(pkts, p)
		}
		// reverse to show order does not matter
		for i, j := 0, len(pkts)-1; i < j; i, j = i+1, j-1 {
			pkts[i], pkts[j] = pkts[j], pkts[i]
		}
		got, err := Reassemble(pkts)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, len(frame), len(got), "n=%d", n)
		for i := 0; i < n; i++ {
			assert.Equal(t, frame[i*3:i*3+3], got[i*3:i*3+3], "led %d", i)
		}
	}
}

func TestReassembleGap(t *testing.T) {
	pkts := Encode(frameOf(1000), 1)
	a, _ := ParsePacket(pkts[0])
	c, _ := ParsePacket(pkts[2])
	_, err := Reassemble([]Packet{a, c})
	assert.Error(t, err)
}

func TestParsePacketErrors(t *testing.T) {
	_, err := ParsePacket([]byte{0x41, 1})
	assert.ErrorIs(t, err, ErrShortPacket)

	_, err = ParsePacket([]byte{0x81, 1, 0x0B, 1, 0, 0, 0, 0, 0, 0})
	assert.ErrorIs(t, err, ErrBadVersion)

	_, err = ParsePacket([]byte{0x41, 1, 0x0B, 1, 0, 0, 0, 0, 0, 9, 1, 2})
	assert.Error(t, err)
}

func TestSequenceSkipsZero(t *testing.T) {
	var s Sequence
	seen := map[byte]bool{}
	for i := 0; i < 30; i++ {
		v := s.Next()
		assert.NotZero(t, v)
		assert.LessOrEqual(t, v, byte(15))
		seen[v] = true
	}
	assert.Len(t, seen, 15)
}
