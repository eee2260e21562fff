package qrtone

import (
	"errors"
	"math"

	"github.com/FihlaTV/qrtone/internal/dsp"
	"github.com/FihlaTV/qrtone/internal/frame"
	"github.com/FihlaTV/qrtone/internal/gf"
)

// ErrPayloadTooLong is returned when a payload's length cannot fit in
// the single-byte header length field.
var ErrPayloadTooLong = errors.New("qrtone: payload length exceeds 255 bytes")

// ErrInvalidLevel is returned when SetPayloadExt is given an
// out-of-range error-correction level.
var ErrInvalidLevel = errors.New("qrtone: invalid ecc level")

// Transmitter synthesizes the trigger gate plus modulated symbol
// waveform for a payload, delivered through GetSamples in arbitrary,
// possibly overlapping or non-sequential chunks.
type Transmitter struct {
	sampleRate float64

	wordLength        int
	gateLength        int
	wordSilenceLength int

	gate1Frequency float64
	gate2Frequency float64
	frequencies    [numFrequencies]float64

	codec *frame.Codec

	symbolsToDeliver []byte
}

// NewTransmitter builds a Transmitter for a stream synthesized at
// sampleRate Hz.
func NewTransmitter(sampleRate float64) *Transmitter {
	t := &Transmitter{sampleRate: sampleRate}
	t.wordLength = int(sampleRate * wordTime)
	t.gateLength = int(sampleRate * gateTime)
	t.wordSilenceLength = int(sampleRate * wordSilenceTime)
	t.frequencies = computeFrequencies()
	t.gate1Frequency = t.frequencies[frequencyRoot]
	t.gate2Frequency = t.frequencies[frequencyRoot+2]
	t.codec = frame.NewCodec(gf.Field16)
	return t
}

// SetPayload queues payload for transmission at the default
// error-correction level with a CRC-16 trailer, and returns the exact
// sample count the resulting waveform will occupy.
func (t *Transmitter) SetPayload(payload []byte) (int, error) {
	return t.SetPayloadExt(payload, frame.DefaultLevel, true)
}

// SetPayloadExt queues payload for transmission at the given
// error-correction level, optionally with a CRC-16 trailer, and returns
// the exact sample count the resulting waveform will occupy.
func (t *Transmitter) SetPayloadExt(payload []byte, level frame.Level, addCRC bool) (int, error) {
	if len(payload) > 255 {
		return 0, ErrPayloadTooLong
	}
	if !level.Valid() {
		return 0, ErrInvalidLevel
	}

	header := frame.NewHeader(uint8(len(payload)), level.BlockSymbols(), level.ECCSymbols(), addCRC, level)

	headerData := header.Encode()
	headerSymbols := t.codec.PayloadToSymbols(headerData[:], frame.HeaderBlockSymbols, frame.HeaderECCSymbols, false)
	payloadSymbols := t.codec.PayloadToSymbols(payload, level.BlockSymbols(), level.ECCSymbols(), addCRC)

	t.symbolsToDeliver = make([]byte, len(headerSymbols)+len(payloadSymbols))
	copy(t.symbolsToDeliver, headerSymbols)
	copy(t.symbolsToDeliver[len(headerSymbols):], payloadSymbols)

	samples := 2*t.gateLength + (len(t.symbolsToDeliver)/2)*(t.wordSilenceLength+t.wordLength)
	return samples, nil
}

func generatePitch(samples []float32, offset int, sampleRate, frequency, powerPeak float64) {
	tStep := 1.0 / sampleRate
	for i := range samples {
		samples[i] += float32(math.Sin(float64(i+offset)*tStep*dsp.TwoPi*frequency) * powerPeak)
	}
}

// span computes, for an event of the given nominal length starting at
// cursor (in absolute transmission samples), the slice of buf (of
// length n) it overlaps when the caller is asking for samples
// [offset, offset+n), along with the offset into the event itself.
func span(cursor, length, offset, n int) (bufStart, count, eventOffset int) {
	eventOffset = maxInt(0, offset-cursor)
	bufStart = maxInt(0, cursor-offset)
	count = maxInt(0, minInt(length-eventOffset, n-bufStart))
	return
}

// GetSamples fills buf with samples of the waveform starting at offset
// (in samples from the start of the transmission), scaled to the given
// peak amplitude. Chunks may overlap or be requested out of order; this
// call is stateless beyond the queued symbol plan from SetPayload(Ext).
func (t *Transmitter) GetSamples(buf []float32, offset int, powerPeak float64) {
	n := len(buf)
	cursor := 0

	// First gate tone.
	if cursor+t.gateLength-offset >= 0 {
		start, count, evOffset := span(cursor, t.gateLength, offset, n)
		chunk := buf[start : start+count]
		generatePitch(chunk, evOffset, t.sampleRate, t.gate1Frequency, powerPeak)
		dsp.HannWindow(chunk, t.gateLength, evOffset)
	}
	cursor += t.gateLength
	if cursor > offset+n {
		return
	}

	// Second gate tone.
	if cursor+t.gateLength-offset >= 0 {
		start, count, evOffset := span(cursor, t.gateLength, offset, n)
		chunk := buf[start : start+count]
		generatePitch(chunk, evOffset, t.sampleRate, t.gate2Frequency, powerPeak)
		dsp.HannWindow(chunk, t.gateLength, evOffset)
	}
	cursor += t.gateLength
	if cursor > offset+n {
		return
	}

	// Symbol words: each pair of symbols selects one frequency from
	// each half of the frequency table, summed and Tukey-windowed.
	for i := 0; i+1 < len(t.symbolsToDeliver); i += 2 {
		cursor += t.wordSilenceLength
		if cursor+t.wordLength-offset >= 0 {
			f1 := t.frequencies[t.symbolsToDeliver[i]]
			f2 := t.frequencies[int(t.symbolsToDeliver[i+1])+frequencyRoot]
			start, count, evOffset := span(cursor, t.wordLength, offset, n)
			chunk := buf[start : start+count]
			generatePitch(chunk, evOffset, t.sampleRate, f1, powerPeak/2)
			generatePitch(chunk, evOffset, t.sampleRate, f2, powerPeak/2)
			dsp.TukeyWindow(chunk, tukeyAlpha, t.wordLength, evOffset)
		}
		cursor += t.wordLength
		if cursor > offset+n {
			return
		}
	}
}
