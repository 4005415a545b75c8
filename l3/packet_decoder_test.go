package l3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltia48/godarc/l2"
	"github.com/soltia48/godarc/l3"
)

func TestPushFrame(t *testing.T) {
	dec := l2.NewFrameDecoder()
	var frame *l2.Frame
	for n := 1; n <= l2.BlocksPerFrame; n++ {
		block, err := l2.NewBlock(l2.RequiredBIC(n), make([]byte, l2.PayloadSize))
		require.NoError(t, err)
		frame = dec.PushBlock(block)
	}
	require.NotNil(t, frame)

	var packetDecoder l3.PacketDecoder
	packets := packetDecoder.PushFrame(frame)
	require.Len(t, packets, l2.InformationBlocksPerFrame)
	for _, packet := range packets {
		assert.Equal(t, l3.Undefined0, packet.ServiceID)
		assert.Equal(t, uint16(0), packet.DataGroupNumber)
		assert.Equal(t, uint16(0), packet.DataPacketNumber)
		assert.Equal(t, make([]byte, 18), packet.DataBlock)
	}
}
