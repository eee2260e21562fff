package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestInterleaveDeinterleaveRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		blockSize := rapid.IntRange(1, 8).Draw(rt, "blockSize")
		numBlocks := rapid.IntRange(1, 6).Draw(rt, "numBlocks")
		n := blockSize * numBlocks

		symbols := make([]byte, n)
		for i := range symbols {
			symbols[i] = byte(rapid.IntRange(0, 15).Draw(rt, "sym"))
		}

		back := deinterleave(interleave(symbols, blockSize), blockSize)
		assert.Equal(rt, symbols, back)
	})
}
