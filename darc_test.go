package darc_test

import (
	"bytes"
	"encoding/binary"
	mathbits "math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	darc "github.com/soltia48/godarc"
	"github.com/soltia48/godarc/internal/bits"
	"github.com/soltia48/godarc/internal/hashutil/crc14"
	"github.com/soltia48/godarc/internal/hashutil/crc16"
	"github.com/soltia48/godarc/internal/hashutil/crc82"
	"github.com/soltia48/godarc/l2"
	"github.com/soltia48/godarc/l3"
	"github.com/soltia48/godarc/l4"
	"github.com/soltia48/godarc/lfsr"
)

// sumBit returns bit i of an 82-bit checksum, MSB first.
func sumBit(sum crc82.Sum82, i int) uint8 {
	pos := 81 - i
	if pos >= 64 {
		return uint8(sum.Hi>>uint(pos-64)) & 1
	}
	return uint8(sum.Lo>>uint(pos)) & 1
}

// encodeInfoPayload builds a valid 272-bit information block payload from a
// 22-byte data packet: packet, CRC-14, horizontal parity.
func encodeInfoPayload(packet []byte) []byte {
	payload := make([]byte, l2.PayloadSize)
	copy(payload, packet)
	crc := crc14.Checksum(packet)
	for i := 0; i < 14; i++ {
		bits.Set(payload, 176+i, uint8(crc>>uint(13-i))&1)
	}
	appendHorizontalParity(payload)
	return payload
}

// appendHorizontalParity completes the first 190 bits of payload into a valid
// codeword.
func appendHorizontalParity(payload []byte) {
	sum := crc82.ChecksumBits(payload, 190)
	for i := 0; i < 82; i++ {
		bits.Set(payload, 190+i, sumBit(sum, i))
	}
}

// buildFrameBits composes the complete transmitted bit sequence of one frame
// carrying the given 190 data packets: vertical parity rows, horizontal
// parity per block, block identification codes, scrambling.
func buildFrameBits(t *testing.T, packets [][]byte) []uint8 {
	require.Len(t, packets, l2.InformationBlocksPerFrame)

	infoPayloads := make([][]byte, 0, len(packets))
	for _, packet := range packets {
		infoPayloads = append(infoPayloads, encodeInfoPayload(packet))
	}

	// Vertical parity: each column of the 272x190 matrix is a codeword of
	// 190 information bits on top of 82 parity bits.
	parityRows := make([][]byte, 82)
	for i := range parityRows {
		parityRows[i] = make([]byte, 24)
	}
	column := make([]byte, 24)
	for c := 0; c < 190; c++ {
		for r, payload := range infoPayloads {
			bits.Set(column, r, bits.Get(payload, c))
		}
		sum := crc82.ChecksumBits(column, 190)
		for i := range parityRows {
			bits.Set(parityRows[i], c, sumBit(sum, i))
		}
	}
	parityPayloads := make([][]byte, 0, len(parityRows))
	for _, row := range parityRows {
		payload := make([]byte, l2.PayloadSize)
		copy(payload, row)
		appendHorizontalParity(payload)
		parityPayloads = append(parityPayloads, payload)
	}

	var out []uint8
	info, parity := 0, 0
	for n := 1; n <= l2.BlocksPerFrame; n++ {
		id := l2.RequiredBIC(n)
		var payload []byte
		if id.IsParity() {
			payload = parityPayloads[parity]
			parity++
		} else {
			payload = infoPayloads[info]
			info++
		}
		for i := 15; i >= 0; i-- {
			out = append(out, uint8(id>>uint(i))&1)
		}
		scrambler := lfsr.New(l2.ScramblerSeed, l2.ScramblerPoly)
		for i := 0; i < 8*l2.PayloadSize; i++ {
			out = append(out, bits.Get(payload, i)^scrambler.Next())
		}
	}
	return out
}

// buildGroup1Wire composes an 18-byte composition 1 data group carrying data.
func buildGroup1Wire(data []byte) []byte {
	buf := []byte{
		mathbits.Reverse8(l4.StartOfHeading),
		0x00,
		mathbits.Reverse8(byte(len(data))),
	}
	buf = append(buf, bits.Reverse(data)...)
	buf = append(buf, make([]byte, 18-6-len(data))...)
	buf = append(buf, 0x00)
	return binary.BigEndian.AppendUint16(buf, crc16.Checksum(buf))
}

func TestDecoderPipeline(t *testing.T) {
	groupData := []byte{0xAA, 0xBB}
	groupWire := buildGroup1Wire(groupData)
	require.Len(t, groupWire, 18)

	// Information block 0 carries a complete single-packet data group of
	// transmission 2 mode; the remaining packets idle on service 0.
	packets := make([][]byte, l2.InformationBlocksPerFrame)
	head := make([]byte, 22)
	head[0] = 0x44 // service_id=0x2 reversed, end_of_information_flag set
	copy(head[4:], groupWire)
	packets[0] = head
	for i := 1; i < len(packets); i++ {
		packets[i] = make([]byte, 22)
	}

	in := buildFrameBits(t, packets)

	// Damage one block with a burst the horizontal corrector must remove:
	// three adjacent bits inside the first block's payload.
	for i := 16 + 40; i < 16+43; i++ {
		in[i] ^= 1
	}

	dec := darc.NewDecoder()
	var groups []l4.DataGroup
	for _, bit := range in {
		groups = append(groups, dec.PushBit(bit)...)
	}
	require.Len(t, groups, 1)
	group, ok := groups[0].(*l4.DataGroup1)
	require.True(t, ok)
	assert.Equal(t, l3.Transmission2Mode, group.ServiceID())
	assert.Equal(t, uint16(0), group.DataGroupNumber())
	assert.Equal(t, uint8(l4.StartOfHeading), group.StartOfHeading())
	assert.Equal(t, groupData, group.DataGroupData())
	assert.True(t, group.IsCRCValid())
}

func TestDecodeStream(t *testing.T) {
	groupWire := buildGroup1Wire([]byte{0x5C})
	packets := make([][]byte, l2.InformationBlocksPerFrame)
	head := make([]byte, 22)
	head[0] = 0x44
	copy(head[4:], groupWire)
	packets[0] = head
	for i := 1; i < len(packets); i++ {
		packets[i] = make([]byte, 22)
	}

	// One byte of value 0 or 1 per bit.
	in := buildFrameBits(t, packets)
	stream := make([]byte, len(in))
	for i, bit := range in {
		stream[i] = bit
	}

	var groups []l4.DataGroup
	dec := darc.NewDecoder()
	err := dec.DecodeStream(bytes.NewReader(stream), func(g l4.DataGroup) {
		groups = append(groups, g)
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []byte{0x5C}, groups[0].(*l4.DataGroup1).DataGroupData())
}

func TestDecoderReset(t *testing.T) {
	dec := darc.NewDecoder()
	// A partial block followed by a reset must not emit anything; neither must
	// a following clean frame whose packets all idle on service 0 without an
	// end of information flag.
	for i := 0; i < 100; i++ {
		assert.Empty(t, dec.PushBit(1))
	}
	dec.Reset()

	packets := make([][]byte, l2.InformationBlocksPerFrame)
	for i := range packets {
		packets[i] = make([]byte, 22)
	}
	var emitted int
	for _, bit := range buildFrameBits(t, packets) {
		emitted += len(dec.PushBit(bit))
	}
	assert.Zero(t, emitted)
}
