// Package l2 implements the DARC layer 2 transmission format: block
// synchronisation, descrambling, horizontal error correction and frame
// assembly with vertical parity correction.
package l2

import (
	"github.com/mewkiz/pkg/errutil"

	"github.com/soltia48/godarc/dscc"
	"github.com/soltia48/godarc/internal/hashutil/crc14"
)

// A BIC is a 16-bit block identification code marking the start of a layer 2
// block and determining its kind.
type BIC uint16

// Block identification codes of the DARC transmission format.
const (
	BICUndefined BIC = 0x0000
	BIC1         BIC = 0x135E
	BIC2         BIC = 0x74A6
	BIC3         BIC = 0xA791
	BIC4         BIC = 0xC875
)

// String returns the name of the block identification code.
func (bic BIC) String() string {
	switch bic {
	case BIC1:
		return "BIC_1"
	case BIC2:
		return "BIC_2"
	case BIC3:
		return "BIC_3"
	case BIC4:
		return "BIC_4"
	}
	return "UNDEFINED"
}

// IsParity reports whether blocks marked with bic carry vertical parity.
func (bic BIC) IsParity() bool {
	return bic == BIC4
}

// PayloadSize is the descrambled block payload length in bytes (272 bits).
const PayloadSize = dscc.CodewordSize

// DataPacketLength is the data packet length in bits of an information block.
const DataPacketLength = 176

// A Block is a layer 2 block: an information block carrying a 176-bit data
// packet and its CRC-14 (BIC 1 to 3), or a parity block carrying 190 bits of
// vertical parity (BIC 4). The payload holds all 272 descrambled bits; the
// trailing 82 bits of horizontal parity are consumed by the error corrector.
type Block struct {
	// Block identification code the decoder locked on.
	ID BIC

	payload   []byte
	corrected bool
}

// NewBlock returns a block with the given identification code and 272-bit
// payload, after attempting horizontal error correction on the payload. An
// uncorrectable payload is kept as received.
func NewBlock(id BIC, payload []byte) (*Block, error) {
	if len(payload) != PayloadSize {
		return nil, errutil.Newf("invalid block payload length; expected %d bytes, got %d", PayloadSize, len(payload))
	}
	corrected, err := dscc.Correct(payload)
	if err != nil {
		return nil, errutil.Err(err)
	}
	return &Block{ID: id, payload: payload, corrected: corrected}, nil
}

// IsParity reports whether the block is a parity block.
func (b *Block) IsParity() bool {
	return b.ID.IsParity()
}

// Corrected reports whether the payload passed horizontal error correction,
// either clean or repaired.
func (b *Block) Corrected() bool {
	return b.corrected
}

// DataPacket returns the 176-bit data packet of an information block.
func (b *Block) DataPacket() []byte {
	return b.payload[:DataPacketLength/8]
}

// CRC returns the recorded CRC-14 of the data packet, payload bits [176,190).
func (b *Block) CRC() uint16 {
	return uint16(b.payload[22])<<6 | uint16(b.payload[23])>>2
}

// IsCRCValid reports whether the data packet matches its recorded CRC-14.
func (b *Block) IsCRCValid() bool {
	return crc14.Checksum(b.DataPacket()) == b.CRC()
}
