// Package dscc implements error correction for the (272,190) difference-set
// cyclic code of the DARC transmission format, using the CRC-82/DARC
// polynomial as generator.
package dscc

import (
	"github.com/charmbracelet/log"
	"github.com/mewkiz/pkg/errutil"

	"github.com/soltia48/godarc/internal/hashutil/crc82"
)

// Code parameters.
const (
	BlockLength   = 272 // codeword length in bits
	MessageLength = 190 // message bits per codeword
	BurstWidth    = 8   // maximum correctable burst error width in bits
)

// CodewordSize is the codeword length in bytes.
const CodewordSize = BlockLength / 8

// syndromes maps the CRC-82 syndrome of every burst error of width at most
// BurstWidth to its 272-bit error vector. Built once at init and read-only
// thereafter.
var syndromes = makeSyndromes()

func makeSyndromes() map[crc82.Sum82][]byte {
	m := make(map[crc82.Sum82][]byte)
	for width := 1; width <= BurstWidth; width++ {
		// A canonical burst has its first and last bits set; the interior
		// width-2 bits vary.
		base := uint(1)<<(width-1) | 1
		interior := 1
		if width > 2 {
			interior = 1 << (width - 2)
		}
		for j := 0; j < interior; j++ {
			pattern := base | uint(j)<<1
			for offset := 0; offset <= BlockLength-width; offset++ {
				vector := make([]byte, CodewordSize)
				for b := 0; b < width; b++ {
					if pattern>>uint(b)&1 != 0 {
						pos := BlockLength - 1 - (offset + b)
						vector[pos/8] |= 1 << (7 - uint(pos)%8)
					}
				}
				m[crc82.Checksum(vector)] = vector
			}
		}
	}
	return m
}

// Correct attempts to remove a single burst error from the 272-bit codeword
// buf, in place. It reports whether the codeword is consistent afterwards:
// true when the syndrome was already zero or a stored error vector applied,
// false when the syndrome has no entry and buf is left unmodified.
func Correct(buf []byte) (bool, error) {
	if len(buf) != CodewordSize {
		return false, errutil.Newf("invalid codeword length; expected %d bytes, got %d", CodewordSize, len(buf))
	}
	syndrome := crc82.Checksum(buf)
	if syndrome.IsZero() {
		return true, nil
	}
	vector, ok := syndromes[syndrome]
	if !ok {
		log.Warn("error vector not found; cannot correct", "syndrome", syndrome)
		return false, nil
	}
	log.Debug("correcting burst error", "syndrome", syndrome)
	for i, v := range vector {
		buf[i] ^= v
	}
	return true, nil
}
