package l4

import (
	"github.com/charmbracelet/log"

	"github.com/soltia48/godarc/l3"
)

// A groupKey identifies a data group under reassembly.
type groupKey struct {
	serviceID       l3.ServiceID
	dataGroupNumber uint16
}

// A GroupDecoder reassembles data packets into data groups. Packets
// accumulate per (service, data group number) key until a packet carries the
// end of information flag; packet numbering is trusted as received.
type GroupDecoder struct {
	buffers map[groupKey][]byte
}

// NewGroupDecoder returns an empty group decoder.
func NewGroupDecoder() *GroupDecoder {
	return &GroupDecoder{buffers: make(map[groupKey][]byte)}
}

// Reset drops all partially reassembled groups.
func (dec *GroupDecoder) Reset() {
	clear(dec.buffers)
}

// PushPackets consumes data packets in order and returns the data groups they
// complete. A packet of a group whose first packet was never seen is dropped
// until a fresh packet number 0 arrives.
func (dec *GroupDecoder) PushPackets(packets []*l3.DataPacket) []DataGroup {
	var groups []DataGroup
	for _, packet := range packets {
		key := groupKey{serviceID: packet.ServiceID, dataGroupNumber: packet.DataGroupNumber}
		buffer, ok := dec.buffers[key]
		if !ok {
			if packet.DataPacketNumber != 0 {
				log.Debug("first data packet not found",
					"service_id", packet.ServiceID,
					"data_group_number", packet.DataGroupNumber,
					"data_packet_number", packet.DataPacketNumber)
				continue
			}
			dec.buffers[key] = append([]byte(nil), packet.DataBlock...)
		} else {
			dec.buffers[key] = append(buffer, packet.DataBlock...)
		}

		if packet.EndOfInformationFlag != 1 {
			continue
		}
		buffer = dec.buffers[key]
		delete(dec.buffers, key)
		if packet.ServiceID == l3.AdditionalInformation {
			groups = append(groups, NewDataGroup2(packet.ServiceID, packet.DataGroupNumber, buffer))
			continue
		}
		group, err := NewDataGroup1(packet.ServiceID, packet.DataGroupNumber, buffer)
		if err != nil {
			log.Warn("dropping malformed data group", "err", err)
			continue
		}
		groups = append(groups, group)
	}
	return groups
}
