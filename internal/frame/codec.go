package frame

import (
	"errors"

	"github.com/FihlaTV/qrtone/internal/crc"
	"github.com/FihlaTV/qrtone/internal/gf"
	"github.com/FihlaTV/qrtone/internal/rs"
)

// ErrCRCMismatch is returned by SymbolsToPayload when the reassembled
// payload fails its CRC-16 check.
var ErrCRCMismatch = errors.New("frame: crc-16 mismatch")

// ErrBlockUnrecoverable is returned by SymbolsToPayload when one of the
// payload blocks has more errors than its ECC can correct.
var ErrBlockUnrecoverable = errors.New("frame: unrecoverable block")

// Codec converts between payload bytes and the interleaved, RS-coded
// symbol stream carried over the air. One Codec is shared by the header
// and payload framing so the Reed-Solomon generator cache amortizes
// across both.
type Codec struct {
	field   *gf.Field
	encoder *rs.Encoder
	decoder *rs.Decoder
}

// NewCodec builds a Codec over the given Galois field.
func NewCodec(field *gf.Field) *Codec {
	return &Codec{field: field, encoder: rs.NewEncoder(field), decoder: rs.NewDecoder(field)}
}

// interleave permutes symbols so that burst errors within one RS block
// spread across symbol positions block apart, rather than clustering in
// one transmitted block.
func interleave(symbols []byte, blockSize int) []byte {
	out := make([]byte, len(symbols))
	cursor := 0
	for j := 0; j < blockSize; j++ {
		for i := j; i < len(symbols); i += blockSize {
			out[cursor] = symbols[i]
			cursor++
		}
	}
	return out
}

// deinterleave reverses interleave.
func deinterleave(symbols []byte, blockSize int) []byte {
	out := make([]byte, len(symbols))
	cursor := 0
	for j := 0; j < blockSize; j++ {
		for i := j; i < len(symbols); i += blockSize {
			out[i] = symbols[cursor]
			cursor++
		}
	}
	return out
}

// PayloadToSymbols splits payload into RS-protected, interleaved blocks
// of blockSymbols total symbols (blockECCSymbols of them parity),
// optionally trailed by a CRC-16 computed over payload. The returned
// slice has header.NumberOfSymbols entries, per NewHeader.
func (c *Codec) PayloadToSymbols(payload []byte, blockSymbols, blockECCSymbols int, withCRC bool) []byte {
	header := NewHeader(uint8(len(payload)), blockSymbols, blockECCSymbols, withCRC, 0)

	payloadBytes := payload
	if withCRC {
		sum := crc.NewCRC16()
		sum.AddBytes(payload)
		crcValue := sum.Sum()
		payloadBytes = make([]byte, len(payload)+2)
		copy(payloadBytes, payload)
		payloadBytes[len(payload)] = byte(crcValue >> 8)
		payloadBytes[len(payload)+1] = byte(crcValue)
	}

	symbols := make([]byte, header.NumberOfSymbols)
	blockSymbolsBuf := make([]int, blockSymbols)
	for blockID := 0; blockID < header.NumberOfBlocks; blockID++ {
		for i := range blockSymbolsBuf {
			blockSymbolsBuf[i] = 0
		}
		payloadSize := min(header.PayloadByteSize, len(payloadBytes)-blockID*header.PayloadByteSize)
		for i := 0; i < payloadSize; i++ {
			b := payloadBytes[i+blockID*header.PayloadByteSize]
			blockSymbolsBuf[i*2] = int(b>>4) & 0x0F
			blockSymbolsBuf[i*2+1] = int(b) & 0x0F
		}

		c.encoder.Encode(blockSymbolsBuf, blockECCSymbols)

		dst := blockID * blockSymbols
		for i := 0; i < payloadSize*2; i++ {
			symbols[dst+i] = byte(blockSymbolsBuf[i])
		}
		for i := 0; i < blockECCSymbols; i++ {
			symbols[dst+payloadSize*2+i] = byte(blockSymbolsBuf[header.PayloadSymbolsSize+i])
		}
	}

	return interleave(symbols, blockSymbols)
}

// SymbolsToPayload reverses PayloadToSymbols: it deinterleaves, runs
// Reed-Solomon correction over every block (tracking fixedErrors), and
// reassembles the payload bytes, verifying the CRC-16 trailer if
// withCRC is set.
func (c *Codec) SymbolsToPayload(symbols []byte, blockSymbols, blockECCSymbols int, withCRC bool, fixedErrors *int) ([]byte, error) {
	payloadSymbolsSize := blockSymbols - blockECCSymbols
	payloadByteSize := payloadSymbolsSize / 2
	payloadLength := ((len(symbols)/blockSymbols)*payloadSymbolsSize + maxInt(0, len(symbols)%blockSymbols-blockECCSymbols)) / 2
	numberOfBlocks := ceilDiv(len(symbols), blockSymbols)

	symbols = deinterleave(symbols, blockSymbols)

	offset := 0
	if withCRC {
		offset = -crcByteLength
	}
	payload := make([]byte, payloadLength+offset)

	var crcBytes [crcByteLength]int
	crcIndex := 0
	blockSymbolsBuf := make([]int, blockSymbols)

	for blockID := 0; blockID < numberOfBlocks; blockID++ {
		for i := range blockSymbolsBuf {
			blockSymbolsBuf[i] = 0
		}
		payloadSymbolsLength := min(payloadSymbolsSize, len(symbols)-blockECCSymbols-blockID*blockSymbols)
		src := blockID * blockSymbols
		for i := 0; i < payloadSymbolsLength; i++ {
			blockSymbolsBuf[i] = int(symbols[src+i])
		}
		for i := 0; i < blockECCSymbols; i++ {
			blockSymbolsBuf[payloadSymbolsSize+i] = int(symbols[src+payloadSymbolsLength+i])
		}

		fixed, err := c.decoder.Decode(blockSymbolsBuf, blockECCSymbols)
		if err != nil {
			return nil, ErrBlockUnrecoverable
		}
		*fixedErrors += fixed

		payloadBlockByteSize := min(payloadByteSize, payloadLength+offset-blockID*payloadByteSize)
		for i := 0; i < payloadBlockByteSize; i++ {
			payload[i+blockID*payloadByteSize] = byte((blockSymbolsBuf[i*2] << 4) | (blockSymbolsBuf[i*2+1] & 0x0F))
		}
		if withCRC {
			maxi := min(payloadByteSize, payloadLength-blockID*payloadByteSize)
			for i := maxInt(0, payloadBlockByteSize); i < maxi; i++ {
				crcBytes[crcIndex] = (blockSymbolsBuf[i*2] << 4) | (blockSymbolsBuf[i*2+1] & 0x0F)
				crcIndex++
			}
		}
	}

	if withCRC {
		storedCRC := uint16(crcBytes[0]<<8) | uint16(crcBytes[1])
		sum := crc.NewCRC16()
		sum.AddBytes(payload)
		if sum.Sum() != storedCRC {
			return nil, ErrCRCMismatch
		}
	}

	return payload, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
