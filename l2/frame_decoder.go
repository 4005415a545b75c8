package l2

import (
	"github.com/charmbracelet/log"
)

// A FrameDecoder accumulates layer 2 blocks and emits a frame once 272
// consecutive blocks have arrived in the valid identification code sequence.
type FrameDecoder struct {
	buffer []*Block
}

// NewFrameDecoder returns an empty frame decoder.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{buffer: make([]*Block, 0, BlocksPerFrame)}
}

// RequiredBIC returns the block identification code required at the 1-based
// block position n of a frame.
func RequiredBIC(n int) BIC {
	switch {
	case n <= 13:
		return BIC1
	case 137 <= n && n <= 149:
		return BIC2
	case n <= 136:
		if n%3 == 1 {
			return BIC4
		}
		return BIC3
	default:
		if n%3 == 2 {
			return BIC4
		}
		return BIC3
	}
}

// Reset discards the partially collected frame.
func (dec *FrameDecoder) Reset() {
	dec.buffer = dec.buffer[:0]
}

// PushBlock consumes one block and returns a frame when the block completes
// one, or nil. A block whose identification code does not fit the sequence
// discards the whole buffer, block included.
func (dec *FrameDecoder) PushBlock(block *Block) *Frame {
	n := len(dec.buffer) + 1
	if required := RequiredBIC(n); block.ID != required {
		log.Debug("invalid block sequence", "position", n, "bic", block.ID, "required", required)
		dec.Reset()
		return nil
	}
	dec.buffer = append(dec.buffer, block)
	if n < BlocksPerFrame {
		return nil
	}

	log.Debug("272 blocks collected")
	frame, err := NewFrame(dec.buffer)
	dec.Reset()
	if err != nil {
		log.Error("frame assembly failed", "err", err)
		return nil
	}
	return frame
}
