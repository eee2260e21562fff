// Package qrtone implements an acoustic data-transmission codec: a
// Reed-Solomon protected frame is carried as a sequence of dual-tone
// (DTMF-like) audio symbols, bracketed by a two-tone trigger gate that
// lets a receiver find the start of a transmission inside a continuous
// audio stream.
package qrtone

import (
	"math"

	"github.com/FihlaTV/qrtone/internal/dsp"
	"github.com/FihlaTV/qrtone/internal/frame"
	"github.com/FihlaTV/qrtone/internal/gf"
	"github.com/FihlaTV/qrtone/internal/goertzel"
	"github.com/FihlaTV/qrtone/internal/trigger"
)

// Tuning constants shared by transmitter and receiver: pitch spacing,
// timing, and defaults, matching the reference wire format.
const (
	semitoneRatio       = 1.0472941228206267
	wordTime            = 0.06
	wordSilenceTime     = 0.01
	gateTime            = 0.12
	audibleFirstFreq    = 1720.0
	numFrequencies      = 32
	frequencyRoot       = 16
	tukeyAlpha          = 0.5
	defaultTriggerSNR   = 15.0
)

// state is the receiver's coarse lifecycle: search for the trigger
// gate, then demodulate symbols once it has been found.
type state int

const (
	stateWaitingTrigger state = iota
	stateParsingSymbols
)

// Receiver demodulates audio pushed incrementally via PushSamples into
// a decoded payload, searching continuously for the trigger gate until
// one is found.
type Receiver struct {
	sampleRate float64

	wordLength        int
	gateLength        int
	wordSilenceLength int

	gate1Frequency float64
	gate2Frequency float64
	frequencies    [numFrequencies]float64

	trigger *trigger.Analyzer

	field *gf.Field
	codec *frame.Codec

	analyzers [numFrequencies]*goertzel.Goertzel

	state               state
	pushedSamples       int64
	firstToneSampleIdx  int64
	symbolIndex         int
	symbolsCache        []byte
	headerCache         *frame.Header
	payload             []byte
	payloadLength       int
	fixedErrors         int

	// LevelObserver, if set, is invoked with the SPL measured on each
	// gate frequency while the receiver is searching for a trigger.
	LevelObserver trigger.LevelObserver
}

// NewReceiver builds a Receiver for a stream sampled at sampleRate Hz.
func NewReceiver(sampleRate float64) *Receiver {
	r := &Receiver{sampleRate: sampleRate}
	r.wordLength = int(sampleRate * wordTime)
	r.gateLength = int(sampleRate * gateTime)
	r.wordSilenceLength = int(sampleRate * wordSilenceTime)
	r.frequencies = computeFrequencies()
	r.gate1Frequency = r.frequencies[frequencyRoot]
	r.gate2Frequency = r.frequencies[frequencyRoot+2]

	r.trigger = trigger.New(sampleRate, r.gateLength, [2]float64{r.gate1Frequency, r.gate2Frequency}, defaultTriggerSNR)
	for i := range r.analyzers {
		r.analyzers[i] = goertzel.New(sampleRate, r.frequencies[i], r.wordLength)
	}

	r.field = gf.Field16
	r.codec = frame.NewCodec(r.field)
	r.state = stateWaitingTrigger
	r.firstToneSampleIdx = -1
	return r
}

func computeFrequencies() [numFrequencies]float64 {
	var freqs [numFrequencies]float64
	for i := range freqs {
		freqs[i] = audibleFirstFreq * math.Pow(semitoneRatio, float64(i))
	}
	return freqs
}

// MaximumLength reports the largest sample count PushSamples can
// safely accept before an internal analysis window closes, useful for
// callers that size their own read buffers.
func (r *Receiver) MaximumLength() int {
	if r.state == stateWaitingTrigger {
		return r.trigger.MaximumWindowLength()
	}
	return r.analyzers[0].WindowSize() - r.analyzers[0].ProcessedSamples()
}

// Reset discards all in-flight frame state and returns the receiver to
// searching for a fresh trigger gate. Field tables persist.
func (r *Receiver) Reset() {
	r.symbolsCache = nil
	r.headerCache = nil
	r.trigger.Reset()
	for _, g := range r.analyzers {
		g.Reset()
	}
	r.state = stateWaitingTrigger
	r.symbolIndex = 0
	r.firstToneSampleIdx = -1
}

// Payload returns the most recently decoded payload bytes, or nil if
// none has been decoded yet.
func (r *Receiver) Payload() []byte { return r.payload }

// PayloadLength returns the declared length, in bytes, of the most
// recently decoded payload.
func (r *Receiver) PayloadLength() int { return r.payloadLength }

// FixedErrors reports how many symbol errors Reed-Solomon correction
// repaired while decoding the most recent frame.
func (r *Receiver) FixedErrors() int { return r.fixedErrors }

func (r *Receiver) feedTrigger(samples []float32) {
	r.trigger.LevelObserver = r.LevelObserver
	r.trigger.ProcessSamples(samples)
	if r.trigger.FirstToneLocation() == -1 {
		return
	}

	r.state = stateParsingSymbols
	r.payload = nil
	r.payloadLength = 0
	r.firstToneSampleIdx = r.pushedSamples - (r.trigger.TotalProcessed() - r.trigger.FirstToneLocation())

	for _, g := range r.analyzers {
		g.Reset()
	}

	r.symbolsCache = make([]byte, frame.HeaderBlockSymbols)
	r.symbolIndex = 0
	r.headerCache = nil
	r.trigger.Reset()
	r.fixedErrors = 0
}

func (r *Receiver) toneLocation() int64 {
	return r.firstToneSampleIdx + int64(r.symbolIndex)*int64(r.wordLength+r.wordSilenceLength) + int64(r.wordSilenceLength)
}

func (r *Receiver) toneIndex(samplesLength int) int {
	return samplesLength - int(r.pushedSamples-r.toneLocation())
}

func (r *Receiver) cachedSymbolsToHeader() {
	var fixed int
	headerBytes, err := r.codec.SymbolsToPayload(r.symbolsCache, frame.HeaderBlockSymbols, frame.HeaderECCSymbols, false, &fixed)
	if err != nil {
		return
	}
	h, ok := frame.DecodeHeader(headerBytes)
	if !ok {
		return
	}
	r.headerCache = h
}

func (r *Receiver) cachedSymbolsToPayload() bool {
	payload, err := r.codec.SymbolsToPayload(r.symbolsCache, r.headerCache.Level.BlockSymbols(), r.headerCache.Level.ECCSymbols(), r.headerCache.CRC, &r.fixedErrors)
	r.payloadLength = int(r.headerCache.Length)
	if err != nil {
		r.payload = nil
		return false
	}
	r.payload = payload
	return true
}

// analyzeTones demodulates symbols from samples once the trigger gate
// has been located, advancing through the header phase and then the
// payload phase. It returns true only when a payload has been fully and
// successfully decoded in this call; a failed decode resets the
// receiver and returns false.
func (r *Receiver) analyzeTones(samples []float32) bool {
	cursor := maxInt(0, r.toneIndex(len(samples)))
	for cursor < len(samples) {
		windowLength := minInt(len(samples)-cursor, r.wordLength-r.analyzers[0].ProcessedSamples())
		if windowLength == 0 {
			break
		}
		window := append([]float32(nil), samples[cursor:cursor+windowLength]...)
		dsp.HannWindow(window, r.wordLength, r.analyzers[0].ProcessedSamples())
		for _, g := range r.analyzers {
			g.ProcessSamples(window)
		}

		if r.analyzers[0].ProcessedSamples() == r.wordLength {
			var spl [numFrequencies]float64
			for i, g := range r.analyzers {
				spl[i] = 20 * math.Log10(g.ComputeRMS())
			}

			for symbolOffset := 0; symbolOffset < 2; symbolOffset++ {
				maxSymbolID := -1
				maxGain := -99999999999999.9
				for idfreq := symbolOffset * frequencyRoot; idfreq < (symbolOffset+1)*frequencyRoot; idfreq++ {
					if spl[idfreq] > maxGain {
						maxGain = spl[idfreq]
						maxSymbolID = idfreq
					}
				}
				r.symbolsCache[r.symbolIndex*2+symbolOffset] = byte(maxSymbolID - symbolOffset*frequencyRoot)
			}

			r.symbolIndex++
			if r.symbolIndex*2 == len(r.symbolsCache) {
				if r.headerCache == nil {
					r.cachedSymbolsToHeader()
					if r.headerCache == nil {
						r.Reset()
						return false
					}
					r.symbolsCache = make([]byte, r.headerCache.NumberOfSymbols)
					r.symbolIndex = 0
					r.firstToneSampleIdx += int64(frame.HeaderBlockSymbols/2) * int64(r.wordLength+r.wordSilenceLength)
				} else {
					ok := r.cachedSymbolsToPayload()
					r.Reset()
					return ok
				}
			}
		}

		cursor += windowLength
	}
	return false
}

// PushSamples feeds one chunk of audio into the receiver. It returns
// true exactly when a payload has just been fully and successfully
// decoded; query Payload/PayloadLength/FixedErrors afterwards.
func (r *Receiver) PushSamples(samples []float32) bool {
	r.pushedSamples += int64(len(samples))
	if r.state == stateWaitingTrigger {
		r.feedTrigger(samples)
	}
	if r.state == stateParsingSymbols && r.firstToneSampleIdx+int64(r.wordSilenceLength) < r.pushedSamples {
		return r.analyzeTones(samples)
	}
	return false
}

func minInt(a, b int) int {
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
