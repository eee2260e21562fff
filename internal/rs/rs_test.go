package rs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/FihlaTV/qrtone/internal/gf"
	"github.com/FihlaTV/qrtone/internal/rs"
)

func encodeBlock(field *gf.Field, data []int, eccLen int) []int {
	block := make([]int, len(data)+eccLen)
	copy(block, data)
	rs.NewEncoder(field).Encode(block, eccLen)
	return block
}

func TestEncodeLiteralVectors(t *testing.T) {
	cases := []struct {
		name   string
		field  *gf.Field
		data   []int
		eccLen int
		ecc    []int
	}{
		{"gf16-a", gf.New(0x13, 16, 1), []int{5, 6}, 5, []int{3, 2, 11, 11, 7}},
		{"gf16-b", gf.New(0x13, 16, 1), []int{0, 0, 0, 9}, 6, []int{10, 13, 8, 6, 5, 6}},
		{
			"gf256-b0", gf.New(0x011D, 256, 0),
			[]int{0x10, 0x20, 0x0C, 0x56, 0x61, 0x80, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11, 0xEC, 0x11},
			10,
			[]int{0xA5, 0x24, 0xD4, 0xC1, 0xED, 0x36, 0xC7, 0x87, 0x2C, 0x55},
		},
		{"gf256-b1", gf.New(0x012D, 256, 1), []int{142, 164, 186}, 5, []int{114, 25, 5, 88, 102}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			block := encodeBlock(tc.field, tc.data, tc.eccLen)
			assert.Equal(t, tc.ecc, block[len(tc.data):])
		})
	}
}

func TestDecodeRoundTripNoErrors(t *testing.T) {
	field := gf.Field16
	data := []int{1, 2, 3, 4, 5, 6, 7, 8}
	block := encodeBlock(field, data, 6)

	fixed, err := rs.NewDecoder(field).Decode(block, 6)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)
	assert.Equal(t, data, block[:len(data)])
}

func TestDecodeRecoversSingleSymbolError(t *testing.T) {
	field := gf.Field16
	data := []int{9, 0, 3, 7}
	block := encodeBlock(field, data, 6)
	original := append([]int(nil), block...)

	block[1] ^= 0x0A

	fixed, err := rs.NewDecoder(field).Decode(block, 6)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, original, block)
}

func TestDecodeRecoversMaximumCorrectableErrors(t *testing.T) {
	field := gf.Field16
	data := []int{1, 2, 3, 4}
	block := encodeBlock(field, data, 6)
	original := append([]int(nil), block...)

	// ecc_symbols=6 corrects up to t=3 symbol errors.
	block[0] ^= 5
	block[2] ^= 9
	block[5] ^= 3

	fixed, err := rs.NewDecoder(field).Decode(block, 6)
	require.NoError(t, err)
	assert.Equal(t, 3, fixed)
	assert.Equal(t, original, block)
}

func TestDecodeFailsBeyondCorrectionCapacity(t *testing.T) {
	field := gf.Field16
	data := []int{1, 2, 3, 4}
	block := encodeBlock(field, data, 4) // t=2

	block[0] ^= 5
	block[1] ^= 9
	block[2] ^= 3

	_, err := rs.NewDecoder(field).Decode(block, 4)
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTripProperty(t *testing.T) {
	field := gf.Field16
	rapid.Check(t, func(rt *rapid.T) {
		dataLen := rapid.IntRange(1, 8).Draw(rt, "dataLen")
		eccLen := rapid.IntRange(2, 6).Draw(rt, "eccLen")
		data := make([]int, dataLen)
		for i := range data {
			data[i] = rapid.IntRange(0, field.Size()-1).Draw(rt, "sym")
		}

		block := encodeBlock(field, data, eccLen)
		fixed, err := rs.NewDecoder(field).Decode(append([]int(nil), block...), eccLen)
		require.NoError(rt, err)
		assert.Equal(rt, 0, fixed)
	})
}
