package l2

import (
	mathbits "math/bits"

	"github.com/charmbracelet/log"

	"github.com/soltia48/godarc/internal/bits"
	"github.com/soltia48/godarc/lfsr"
)

// DefaultAllowableBICErrors is the default Hamming-distance tolerance for
// block identification code detection.
const DefaultAllowableBICErrors = 2

// Descrambler register parameters.
const (
	ScramblerSeed = 0x155
	ScramblerPoly = 0x110
)

// bicOrder fixes the detection preference on equal Hamming distance.
var bicOrder = [...]BIC{BIC1, BIC2, BIC3, BIC4}

// A BlockDecoder turns a demodulated bit stream into layer 2 blocks. It
// slides the incoming bits through a 16-bit sync register until a block
// identification code is found within the configured Hamming distance, then
// descrambles and collects the 272 bits that follow.
type BlockDecoder struct {
	// Hamming-distance tolerance for BIC detection.
	AllowableBICErrors int

	currentBIC  uint16
	buf         []byte
	n           int
	descrambler *lfsr.LFSR
}

// NewBlockDecoder returns a block decoder with the default BIC error
// tolerance.
func NewBlockDecoder() *BlockDecoder {
	return &BlockDecoder{
		AllowableBICErrors: DefaultAllowableBICErrors,
		buf:                make([]byte, PayloadSize),
		descrambler:        lfsr.New(ScramblerSeed, ScramblerPoly),
	}
}

// detectedBIC returns the closest identification code within the allowed
// Hamming distance of the sync register, or BICUndefined. On equal distance
// the lowest-numbered code wins.
func (dec *BlockDecoder) detectedBIC() BIC {
	best := BICUndefined
	bestDist := dec.AllowableBICErrors + 1
	for _, bic := range bicOrder {
		if d := mathbits.OnesCount16(uint16(bic) ^ dec.currentBIC); d < bestDist {
			best, bestDist = bic, d
		}
	}
	return best
}

// Reset discards the sync register, the collected bits and the descrambler
// state.
func (dec *BlockDecoder) Reset() {
	dec.currentBIC = 0
	for i := range dec.buf {
		dec.buf[i] = 0
	}
	dec.n = 0
	dec.descrambler = lfsr.New(ScramblerSeed, ScramblerPoly)
}

// PushBit consumes one demodulated bit and returns a block when the bit
// completes one, or nil.
func (dec *BlockDecoder) PushBit(bit uint8) *Block {
	if dec.detectedBIC() == BICUndefined {
		dec.currentBIC = dec.currentBIC<<1 | uint16(bit)
		return nil
	}
	if dec.n == 0 {
		log.Debug("block identification code detected", "bic", dec.detectedBIC())
	}

	bits.Set(dec.buf, dec.n, bit^dec.descrambler.Next())
	dec.n++
	if dec.n < 8*PayloadSize {
		return nil
	}

	id := dec.detectedBIC()
	payload := append([]byte(nil), dec.buf...)
	dec.Reset()
	block, err := NewBlock(id, payload)
	if err != nil {
		log.Error("block construction failed", "err", err)
		return nil
	}
	log.Debug("block decoded", "bic", id, "crc_valid", !id.IsParity() && block.IsCRCValid())
	return block
}
