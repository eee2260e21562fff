package frame_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FihlaTV/qrtone/internal/frame"
	"github.com/FihlaTV/qrtone/internal/gf"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := frame.NewHeader(42, frame.LevelQuality.BlockSymbols(), frame.LevelQuality.ECCSymbols(), true, frame.LevelQuality)
	encoded := h.Encode()

	decoded, ok := frame.DecodeHeader(encoded[:])
	require.True(t, ok)
	assert.Equal(t, h.Length, decoded.Length)
	assert.Equal(t, h.CRC, decoded.CRC)
	assert.Equal(t, h.Level, decoded.Level)
}

func TestHeaderDecodeRejectsCorruptedCRC(t *testing.T) {
	h := frame.NewHeader(7, frame.LevelLow.BlockSymbols(), frame.LevelLow.ECCSymbols(), false, frame.LevelLow)
	encoded := h.Encode()
	encoded[2] ^= 0xFF

	_, ok := frame.DecodeHeader(encoded[:])
	assert.False(t, ok)
}

func TestLevelAccessors(t *testing.T) {
	cases := []struct {
		level      frame.Level
		block, ecc int
	}{
		{frame.LevelLow, 14, 2},
		{frame.LevelMedium, 14, 4},
		{frame.LevelQuality, 12, 6},
		{frame.LevelHigh, 10, 6},
	}
	for _, tc := range cases {
		assert.True(t, tc.level.Valid())
		assert.Equal(t, tc.block, tc.level.BlockSymbols())
		assert.Equal(t, tc.ecc, tc.level.ECCSymbols())
	}
	assert.False(t, frame.Level(4).Valid())
	assert.False(t, frame.Level(-1).Valid())
}

func TestCodecPayloadRoundTripAllLevels(t *testing.T) {
	codec := frame.NewCodec(gf.Field16)
	payload := []byte("!0BSduvwxyz")

	levels := []frame.Level{frame.LevelLow, frame.LevelMedium, frame.LevelQuality, frame.LevelHigh}
	for _, level := range levels {
		symbols := codec.PayloadToSymbols(payload, level.BlockSymbols(), level.ECCSymbols(), true)

		var fixed int
		decoded, err := codec.SymbolsToPayload(symbols, level.BlockSymbols(), level.ECCSymbols(), true, &fixed)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
		assert.Equal(t, 0, fixed)
	}
}

func TestCodecRejectsUnrecoverableBlock(t *testing.T) {
	codec := frame.NewCodec(gf.Field16)
	payload := []byte("hello")
	level := frame.LevelQuality
	symbols := codec.PayloadToSymbols(payload, level.BlockSymbols(), level.ECCSymbols(), true)

	// Corrupt every data symbol of the first block, beyond what its ECC
	// can repair. After interleaving, symbol i of the first block sits at
	// index i*blocks of the stream.
	blocks := (len(symbols) + level.BlockSymbols() - 1) / level.BlockSymbols()
	for i := 0; i < level.BlockSymbols()-level.ECCSymbols(); i++ {
		symbols[i*blocks] = (symbols[i*blocks] + 1) & 0x0F
	}

	var fixed int
	_, err := codec.SymbolsToPayload(symbols, level.BlockSymbols(), level.ECCSymbols(), true, &fixed)
	assert.ErrorIs(t, err, frame.ErrBlockUnrecoverable)
}

func TestCodecWithoutCRC(t *testing.T) {
	codec := frame.NewCodec(gf.Field16)
	payload := []byte{1, 2, 3, 4, 5}
	level := frame.LevelHigh
	symbols := codec.PayloadToSymbols(payload, level.BlockSymbols(), level.ECCSymbols(), false)

	var fixed int
	decoded, err := codec.SymbolsToPayload(symbols, level.BlockSymbols(), level.ECCSymbols(), false, &fixed)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

