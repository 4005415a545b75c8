package l2

import (
	"github.com/mewkiz/pkg/errutil"

	"github.com/soltia48/godarc/dscc"
	"github.com/soltia48/godarc/internal/bits"
)

// BlocksPerFrame is the number of layer 2 blocks in a frame.
const BlocksPerFrame = 272

// InformationBlocksPerFrame is the number of information blocks in a frame;
// the remaining 82 blocks carry vertical parity.
const InformationBlocksPerFrame = dscc.MessageLength

// A Frame is a completed layer 2 frame: the 190 information blocks of a
// 272-block sequence, in transmission order, with vertical parity correction
// applied.
type Frame struct {
	// Information blocks in transmission order.
	Blocks []*Block
}

// NewFrame assembles a frame from exactly 272 collected blocks.
//
// The 190-bit payloads of the blocks form a matrix, information blocks above
// parity blocks, so that each of the 190 columns is a 272-bit codeword of the
// vertical code: 190 information bits followed by 82 parity bits. Every
// column runs through the error corrector and the corrected bits are written
// back into the blocks. Uncorrectable columns are kept as received.
func NewFrame(buffer []*Block) (*Frame, error) {
	if len(buffer) != BlocksPerFrame {
		return nil, errutil.Newf("invalid block buffer length; expected %d blocks, got %d", BlocksPerFrame, len(buffer))
	}

	blocks := make([]*Block, 0, BlocksPerFrame)
	for _, b := range buffer {
		if !b.IsParity() {
			blocks = append(blocks, b)
		}
	}
	for _, b := range buffer {
		if b.IsParity() {
			blocks = append(blocks, b)
		}
	}

	column := make([]byte, dscc.CodewordSize)
	for c := 0; c < dscc.MessageLength; c++ {
		for r, b := range blocks {
			bits.Set(column, r, bits.Get(b.payload, c))
		}
		if _, err := dscc.Correct(column); err != nil {
			return nil, errutil.Err(err)
		}
		for r, b := range blocks {
			bits.Set(b.payload, c, bits.Get(column, r))
		}
	}

	return &Frame{Blocks: blocks[:InformationBlocksPerFrame]}, nil
}
