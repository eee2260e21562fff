// Package frame implements the wire framing around a Reed-Solomon
// protected payload: a fixed 3-byte header describing the payload
// length and error-correction level, and the block-interleaved,
// CRC-guarded symbol layout that carries the payload itself.
package frame

import "github.com/FihlaTV/qrtone/internal/crc"

// Level selects how much Reed-Solomon redundancy protects each payload
// block: (block symbols, ECC symbols) pairs, from least to most robust.
type Level int8

const (
	LevelLow Level = iota
	LevelMedium
	LevelQuality
	LevelHigh
)

// DefaultLevel is used by the transmitter when the caller does not
// request a specific error-correction level.
const DefaultLevel = LevelQuality

// eccSymbols holds the (block symbols, ECC symbols) pair for each Level,
// indexed by its integer value.
var eccSymbols = [4][2]int{
	{14, 2}, // Low
	{14, 4}, // Medium
	{12, 6}, // Quality
	{10, 6}, // High
}

// BlockSymbols reports the total symbols (data + ECC) per block at the
// given error-correction level.
func (l Level) BlockSymbols() int { return eccSymbols[l][0] }

// ECCSymbols reports the ECC symbols appended to each block at the
// given error-correction level.
func (l Level) ECCSymbols() int { return eccSymbols[l][1] }

// Valid reports whether l is one of the four defined ECC levels.
func (l Level) Valid() bool { return l >= LevelLow && l <= LevelHigh }

// Size is the wire length, in bytes, of an encoded header.
const Size = 3

// crcByteLength is the length, in bytes, of the CRC-16 trailer appended
// to a payload when requested.
const crcByteLength = 2

// BlockSymbols and ECCSymbols describing the single header block: 3
// header bytes become 6 data symbols (one nibble each), protected by 2
// ECC symbols, for 8 symbols total.
const (
	HeaderBlockSymbols = Size*2 + 2
	HeaderECCSymbols   = 2
)

// Header is the decoded form of the 3-byte frame preamble.
type Header struct {
	Length             uint8
	CRC                bool
	Level              Level
	PayloadSymbolsSize int
	PayloadByteSize    int
	NumberOfBlocks     int
	NumberOfSymbols    int
}

// NewHeader computes the derived block/symbol counts for a payload of
// the given length, to be split into blocks of blockSymbols total
// symbols (blockECCSymbols of them parity), optionally trailed by a
// CRC-16.
func NewHeader(length uint8, blockSymbols, blockECCSymbols int, withCRC bool, level Level) *Header {
	crcLength := 0
	if withCRC {
		crcLength = crcByteLength
	}
	payloadSymbolsSize := blockSymbols - blockECCSymbols
	payloadByteSize := payloadSymbolsSize / 2
	numberOfBlocks := ceilDiv((int(length)+crcLength)*2, payloadSymbolsSize)
	numberOfSymbols := numberOfBlocks*blockECCSymbols + (int(length)+crcLength)*2
	return &Header{
		Length:             length,
		CRC:                withCRC,
		Level:              level,
		PayloadSymbolsSize: payloadSymbolsSize,
		PayloadByteSize:    payloadByteSize,
		NumberOfBlocks:     numberOfBlocks,
		NumberOfSymbols:    numberOfSymbols,
	}
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Encode serializes the header to its 3-byte wire form.
func (h *Header) Encode() [Size]byte {
	var out [Size]byte
	out[0] = h.Length
	out[1] = byte(h.Level) & 0x3
	if h.CRC {
		out[1] |= 0x01 << 3
	}
	c := crc.NewCRC8()
	c.Add(out[0])
	c.Add(out[1])
	out[2] = c.Sum()
	return out
}

// DecodeHeader validates the CRC-8 trailer and reconstructs a Header
// from its 3-byte wire form. It reports ok=false on a CRC mismatch.
func DecodeHeader(data []byte) (h *Header, ok bool) {
	c := crc.NewCRC8()
	c.Add(data[0])
	c.Add(data[1])
	if c.Sum() != data[2] {
		return nil, false
	}
	level := Level(data[1] & 0x3)
	withCRC := (data[1]>>3)&0x1 != 0
	return NewHeader(data[0], level.BlockSymbols(), level.ECCSymbols(), withCRC, level), true
}
