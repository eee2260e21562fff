package crc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FihlaTV/qrtone/internal/crc"
)

func TestCRC8Deterministic(t *testing.T) {
	c1 := crc.NewCRC8()
	c1.AddBytes([]byte{0x0B, 0x01})

	c2 := crc.NewCRC8()
	c2.Add(0x0B)
	c2.Add(0x01)

	assert.Equal(t, c1.Sum(), c2.Sum())
}

func TestCRC8ResetMatchesFreshAccumulator(t *testing.T) {
	c := crc.NewCRC8()
	c.AddBytes([]byte{1, 2, 3})
	c.Reset()
	c.AddBytes([]byte{4, 5})

	fresh := crc.NewCRC8()
	fresh.AddBytes([]byte{4, 5})

	assert.Equal(t, fresh.Sum(), c.Sum())
}

func TestCRC8DifferentInputsDiffer(t *testing.T) {
	a := crc.NewCRC8()
	a.AddBytes([]byte{10, 3})
	b := crc.NewCRC8()
	b.AddBytes([]byte{10, 4})
	assert.NotEqual(t, a.Sum(), b.Sum())
}

func TestCRC16EmptyIsZero(t *testing.T) {
	c := crc.NewCRC16()
	assert.Equal(t, uint16(0), c.Sum())
}

func TestCRC16Deterministic(t *testing.T) {
	payload := []byte("!0BSduvwxyz")
	c1 := crc.NewCRC16()
	c1.AddBytes(payload)

	c2 := crc.NewCRC16()
	for _, b := range payload {
		c2.AddBytes([]byte{b})
	}

	assert.Equal(t, c1.Sum(), c2.Sum())
}

func TestCRC16DifferentInputsDiffer(t *testing.T) {
	a := crc.NewCRC16()
	a.AddBytes([]byte("hello"))
	b := crc.NewCRC16()
	b.AddBytes([]byte("hellp"))
	assert.NotEqual(t, a.Sum(), b.Sum())
}
