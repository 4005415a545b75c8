// Package darc implements a streaming decoder for the DARC (Data Radio
// Channel) FM subcarrier broadcast data system [1]: layer 2 block and frame
// decoding with horizontal and vertical error correction, layer 3 data packet
// parsing, and layer 4 data group reassembly.
//
// [1]: ARIB STD-B3
package darc

import (
	"bufio"
	"io"

	"github.com/mewkiz/pkg/errutil"

	"github.com/soltia48/godarc/l2"
	"github.com/soltia48/godarc/l3"
	"github.com/soltia48/godarc/l4"
)

// A Decoder is the assembled four-layer decoding pipeline. Feed it
// demodulated bits one at a time; completed data groups fall out the far end.
// The pipeline is synchronous and single-threaded; each Decoder owns its
// buffers exclusively.
type Decoder struct {
	blocks  *l2.BlockDecoder
	frames  *l2.FrameDecoder
	packets l3.PacketDecoder
	groups  *l4.GroupDecoder
}

// NewDecoder returns a decoder with default configuration.
func NewDecoder() *Decoder {
	return &Decoder{
		blocks: l2.NewBlockDecoder(),
		frames: l2.NewFrameDecoder(),
		groups: l4.NewGroupDecoder(),
	}
}

// PushBit pushes one demodulated bit through the pipeline and returns the
// data groups it completes, usually none.
func (dec *Decoder) PushBit(bit uint8) []l4.DataGroup {
	block := dec.blocks.PushBit(bit)
	if block == nil {
		return nil
	}
	frame := dec.frames.PushBlock(block)
	if frame == nil {
		return nil
	}
	return dec.groups.PushPackets(dec.packets.PushFrame(frame))
}

// Reset discards partially decoded state across all layers.
func (dec *Decoder) Reset() {
	dec.blocks.Reset()
	dec.frames.Reset()
	dec.groups.Reset()
}

// DecodeStream reads a byte-per-bit stream (one byte of value 0x00 or 0x01
// per demodulated bit) from r until EOF, calling emit for every completed
// data group.
func (dec *Decoder) DecodeStream(r io.Reader, emit func(l4.DataGroup)) error {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errutil.Err(err)
		}
		for _, group := range dec.PushBit(b & 1) {
			emit(group)
		}
	}
}
