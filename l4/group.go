// Package l4 implements DARC layer 4: reassembling data packets into data
// groups.
package l4

import (
	"encoding/binary"
	mathbits "math/bits"

	"github.com/charmbracelet/log"
	"github.com/mewkiz/pkg/errutil"

	"github.com/soltia48/godarc/internal/bits"
	"github.com/soltia48/godarc/internal/hashutil/crc16"
	"github.com/soltia48/godarc/l3"
)

// StartOfHeading is the expected value of the composition 1 header byte.
const StartOfHeading = 0x01

// A DataGroup is a reassembled layer 4 data group, composition 1 or
// composition 2.
type DataGroup interface {
	// ServiceID returns the service the group belongs to.
	ServiceID() l3.ServiceID
	// DataGroupNumber returns the group number within the service.
	DataGroupNumber() uint16
	// IsCRCValid reports whether the payload matches the recorded CRC-16;
	// groups without a CRC are valid by definition.
	IsCRCValid() bool
}

// A DataGroup1 is a composition 1 data group, used by every service except
// additional information. It retains the raw reassembled buffer; fields parse
// on demand.
//
// Buffer format:
//
//	start_of_heading  uint8  // bit-reversed
//	data_group_size   uint15 // both bytes bit-reversed, link bit in between
//	data_group_link   uint1
//	data_group_data   8*data_group_size bits, bit-reversed per byte
//	padding           to an 18-byte boundary
//	end_of_data_group uint8  // bit-reversed
//	crc               uint16
type DataGroup1 struct {
	serviceID       l3.ServiceID
	dataGroupNumber uint16
	buffer          []byte
}

// NewDataGroup1 wraps a reassembled composition 1 buffer. The buffer must at
// least hold the header and trailer fields.
func NewDataGroup1(serviceID l3.ServiceID, dataGroupNumber uint16, buffer []byte) (*DataGroup1, error) {
	if len(buffer) < 6 {
		return nil, errutil.Newf("data group buffer too short; expected at least 6 bytes, got %d", len(buffer))
	}
	g := &DataGroup1{serviceID: serviceID, dataGroupNumber: dataGroupNumber, buffer: buffer}
	if soh := g.StartOfHeading(); soh != StartOfHeading {
		log.Warn("unexpected start of heading", "start_of_heading", soh)
	}
	return g, nil
}

// ServiceID returns the service the group belongs to.
func (g *DataGroup1) ServiceID() l3.ServiceID {
	return g.serviceID
}

// DataGroupNumber returns the group number within the service.
func (g *DataGroup1) DataGroupNumber() uint16 {
	return g.dataGroupNumber
}

// StartOfHeading returns the header byte.
func (g *DataGroup1) StartOfHeading() uint8 {
	return mathbits.Reverse8(g.buffer[0])
}

// DataGroupLink returns the link bit.
func (g *DataGroup1) DataGroupLink() uint8 {
	return g.buffer[1] & 1
}

// DataGroupSize returns the data length in bytes recorded in the header.
func (g *DataGroup1) DataGroupSize() int {
	hi := bits.RevN(uint64(g.buffer[1]>>1), 7)
	lo := mathbits.Reverse8(g.buffer[2])
	return int(hi)<<8 | int(lo)
}

// DataGroupData returns the data, bit-reversed back to transmission order and
// clamped to the buffer.
func (g *DataGroup1) DataGroupData() []byte {
	end := 3 + g.DataGroupSize()
	if end > len(g.buffer) {
		end = len(g.buffer)
	}
	return bits.Reverse(g.buffer[3:end])
}

// EndOfDataGroup returns the trailer byte preceding the CRC.
func (g *DataGroup1) EndOfDataGroup() uint8 {
	return mathbits.Reverse8(g.buffer[len(g.buffer)-3])
}

// CRC returns the recorded CRC-16.
func (g *DataGroup1) CRC() uint16 {
	return binary.BigEndian.Uint16(g.buffer[len(g.buffer)-2:])
}

// IsCRCValid reports whether the buffer up to the CRC matches the recorded
// CRC-16.
func (g *DataGroup1) IsCRCValid() bool {
	return crc16.Checksum(g.buffer[:len(g.buffer)-2]) == g.CRC()
}

// A DataGroup2 is a composition 2 data group, used by the additional
// information service. Groups longer than 160 bits carry a trailing CRC-16;
// shorter groups none.
type DataGroup2 struct {
	serviceID       l3.ServiceID
	dataGroupNumber uint16
	buffer          []byte
}

// NewDataGroup2 wraps a reassembled composition 2 buffer.
func NewDataGroup2(serviceID l3.ServiceID, dataGroupNumber uint16, buffer []byte) *DataGroup2 {
	return &DataGroup2{serviceID: serviceID, dataGroupNumber: dataGroupNumber, buffer: buffer}
}

// ServiceID returns the service the group belongs to.
func (g *DataGroup2) ServiceID() l3.ServiceID {
	return g.serviceID
}

// DataGroupNumber returns the group number within the service.
func (g *DataGroup2) DataGroupNumber() uint16 {
	return g.dataGroupNumber
}

// HasCRC reports whether the group carries a trailing CRC-16.
func (g *DataGroup2) HasCRC() bool {
	return 8*len(g.buffer) > 160
}

// SegmentsData returns the segments data, bit-reversed back to transmission
// order.
func (g *DataGroup2) SegmentsData() []byte {
	if g.HasCRC() {
		return bits.Reverse(g.buffer[:len(g.buffer)-2])
	}
	return bits.Reverse(g.buffer)
}

// CRC returns the recorded CRC-16 and whether one is present.
func (g *DataGroup2) CRC() (uint16, bool) {
	if !g.HasCRC() {
		return 0, false
	}
	return binary.BigEndian.Uint16(g.buffer[len(g.buffer)-2:]), true
}

// IsCRCValid reports whether the buffer up to the CRC matches the recorded
// CRC-16. Groups without a CRC are valid by definition.
func (g *DataGroup2) IsCRCValid() bool {
	crc, ok := g.CRC()
	if !ok {
		return true
	}
	return crc16.Checksum(g.buffer[:len(g.buffer)-2]) == crc
}
