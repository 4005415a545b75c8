package l3

import (
	"github.com/charmbracelet/log"

	"github.com/soltia48/godarc/l2"
)

// A PacketDecoder extracts the data packets of layer 2 frames. It carries no
// state; every frame parses independently.
type PacketDecoder struct{}

// PushFrame parses one data packet from every information block of the frame.
func (PacketDecoder) PushFrame(frame *l2.Frame) []*DataPacket {
	packets := make([]*DataPacket, 0, len(frame.Blocks))
	for _, block := range frame.Blocks {
		packet, err := ParseDataPacket(block.DataPacket())
		if err != nil {
			log.Error("data packet parsing failed", "err", err)
			continue
		}
		packets = append(packets, packet)
	}
	return packets
}
