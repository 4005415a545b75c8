// Package l3 implements DARC layer 3: parsing data packets out of the
// information blocks of a layer 2 frame.
package l3

import (
	"bytes"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"

	"github.com/soltia48/godarc/internal/bits"
)

// A ServiceID is a 4-bit service identification code.
type ServiceID uint8

// Service identification codes.
const (
	Undefined0            ServiceID = 0x0
	Transmission1Mode     ServiceID = 0x1
	Transmission2Mode     ServiceID = 0x2
	Transmission3Mode     ServiceID = 0x3
	Transmission4Mode     ServiceID = 0x4
	Transmission5Mode     ServiceID = 0x5
	Transmission6Mode     ServiceID = 0x6
	Transmission7Mode     ServiceID = 0x7
	Transmission8Mode     ServiceID = 0x8
	Transmission9Mode     ServiceID = 0x9
	UndefinedA            ServiceID = 0xA
	UndefinedB            ServiceID = 0xB
	UndefinedC            ServiceID = 0xC
	AdditionalInformation ServiceID = 0xD
	AuxiliarySignal       ServiceID = 0xE
	OperationalSignal     ServiceID = 0xF
)

// String returns the name of the service identification code.
func (id ServiceID) String() string {
	switch {
	case Transmission1Mode <= id && id <= Transmission9Mode:
		return "TRANSMISSION_" + string('0'+byte(id)) + "_MODE"
	case id == AdditionalInformation:
		return "ADDITIONAL_INFORMATION"
	case id == AuxiliarySignal:
		return "AUXILIARY_SIGNAL"
	case id == OperationalSignal:
		return "OPERATIONAL_SIGNAL"
	}
	return "UNDEFINED"
}

// PacketSize is the data packet length in bytes (176 bits).
const PacketSize = 22

// A DataPacket is a parsed 176-bit layer 3 data packet.
//
// Packet format (composition 1; composition 2 applies when the service is
// additional information):
//
//	service_id              uint4  // bit-reversed
//	decode_id_flag          uint1
//	end_of_information_flag uint1
//	update_flag             uint2  // bit-reversed
//	data_group_number       uint14 // bit-reversed; uint4 in composition 2
//	data_packet_number      uint10 // bit-reversed; uint4 in composition 2
//	data_block              144 bits; 160 bits in composition 2
type DataPacket struct {
	ServiceID            ServiceID
	DecodeIDFlag         uint8
	EndOfInformationFlag uint8
	UpdateFlag           uint8
	DataGroupNumber      uint16
	DataPacketNumber     uint16
	DataBlock            []byte
}

// ParseDataPacket parses a 176-bit data packet.
func ParseDataPacket(buf []byte) (*DataPacket, error) {
	if len(buf) != PacketSize {
		return nil, errutil.Newf("invalid data packet length; expected %d bytes, got %d", PacketSize, len(buf))
	}
	br := bitio.NewReader(bytes.NewReader(buf))
	packet := &DataPacket{}

	serviceID, err := br.ReadBits(4)
	if err != nil {
		return nil, errutil.Err(err)
	}
	packet.ServiceID = ServiceID(bits.RevN(serviceID, 4))

	flags, err := br.ReadBits(4)
	if err != nil {
		return nil, errutil.Err(err)
	}
	packet.DecodeIDFlag = uint8(flags >> 3)
	packet.EndOfInformationFlag = uint8(flags >> 2 & 1)
	packet.UpdateFlag = uint8(bits.RevN(flags&3, 2))

	// The numbering fields shrink and the data block grows in composition 2.
	groupBits, packetBits := uint8(14), uint8(10)
	if packet.ServiceID == AdditionalInformation {
		groupBits, packetBits = 4, 4
	}
	groupNumber, err := br.ReadBits(groupBits)
	if err != nil {
		return nil, errutil.Err(err)
	}
	packet.DataGroupNumber = uint16(bits.RevN(groupNumber, uint(groupBits)))
	packetNumber, err := br.ReadBits(packetBits)
	if err != nil {
		return nil, errutil.Err(err)
	}
	packet.DataPacketNumber = uint16(bits.RevN(packetNumber, uint(packetBits)))

	// The header is byte-aligned in both compositions; the data block is the
	// rest of the packet.
	headerSize := int(8+groupBits+packetBits) / 8
	packet.DataBlock = append([]byte(nil), buf[headerSize:]...)
	return packet, nil
}
