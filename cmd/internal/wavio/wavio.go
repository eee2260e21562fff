// Package wavio reads and writes 16-bit PCM mono/stereo WAV files, just
// enough to shuttle float32 sample buffers between the qrtone codec and
// disk when no live audio device is in use.
package wavio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrNotPCM is returned when a WAV file's format chunk is not the
// uncompressed 16-bit integer PCM this package supports.
var ErrNotPCM = errors.New("wavio: not a 16-bit PCM wav file")

const (
	bitsPerSample = 16
	formatPCM     = 1
)

// Format describes the channel layout and sample rate of a WAV stream.
type Format struct {
	SampleRate uint32
	Channels   uint16
}

// Write encodes samples (interleaved if Channels>1, in the range
// [-1,1]) as a 16-bit PCM WAV file to w.
func Write(w io.Writer, format Format, samples []float32) error {
	if format.Channels == 0 {
		format.Channels = 1
	}
	blockAlign := format.Channels * (bitsPerSample / 8)
	byteRate := format.SampleRate * uint32(blockAlign)
	dataSize := uint32(len(samples)) * uint32(bitsPerSample/8)

	if err := writeChunkHeader(w, "RIFF", 36+dataSize); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "WAVE"); err != nil {
		return err
	}

	if err := writeChunkHeader(w, "fmt ", 16); err != nil {
		return err
	}
	fields := []any{
		uint16(formatPCM),
		format.Channels,
		format.SampleRate,
		byteRate,
		blockAlign,
		uint16(bitsPerSample),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("wavio: writing fmt chunk: %w", err)
		}
	}

	if err := writeChunkHeader(w, "data", dataSize); err != nil {
		return err
	}
	for _, s := range samples {
		if err := binary.Write(w, binary.LittleEndian, floatToPCM16(s)); err != nil {
			return fmt.Errorf("wavio: writing sample: %w", err)
		}
	}
	return nil
}

func writeChunkHeader(w io.Writer, id string, size uint32) error {
	if _, err := io.WriteString(w, id); err != nil {
		return fmt.Errorf("wavio: writing %s chunk id: %w", id, err)
	}
	if err := binary.Write(w, binary.LittleEndian, size); err != nil {
		return fmt.Errorf("wavio: writing %s chunk size: %w", id, err)
	}
	return nil
}

func floatToPCM16(s float32) int16 {
	v := float64(s) * 32768.0
	switch {
	case v > 32767:
		v = 32767
	case v < -32768:
		v = -32768
	}
	return int16(math.Round(v))
}

// Read decodes a 16-bit PCM WAV file from r, returning its format and
// samples normalized to [-1,1].
func Read(r io.Reader) (Format, []float32, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return Format{}, nil, fmt.Errorf("wavio: reading riff header: %w", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return Format{}, nil, ErrNotPCM
	}

	var format Format
	var samples []float32
	sawFormat := false

	for {
		var id [4]byte
		var size uint32
		if _, err := io.ReadFull(r, id[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Format{}, nil, fmt.Errorf("wavio: reading chunk id: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return Format{}, nil, fmt.Errorf("wavio: reading chunk size: %w", err)
		}

		switch string(id[:]) {
		case "fmt ":
			var audioFormat, channels uint16
			var sampleRate, byteRate uint32
			var blockAlign, bits uint16
			if err := binary.Read(r, binary.LittleEndian, &audioFormat); err != nil {
				return Format{}, nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &channels); err != nil {
				return Format{}, nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &sampleRate); err != nil {
				return Format{}, nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &byteRate); err != nil {
				return Format{}, nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &blockAlign); err != nil {
				return Format{}, nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return Format{}, nil, err
			}
			if audioFormat != formatPCM || bits != bitsPerSample {
				return Format{}, nil, ErrNotPCM
			}
			if remaining := int64(size) - 16; remaining > 0 {
				if _, err := io.CopyN(io.Discard, r, remaining); err != nil {
					return Format{}, nil, err
				}
			}
			format = Format{SampleRate: sampleRate, Channels: channels}
			sawFormat = true
		case "data":
			if !sawFormat {
				return Format{}, nil, errors.New("wavio: data chunk before fmt chunk")
			}
			samples = make([]float32, size/2)
			for i := range samples {
				var v int16
				if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
					return Format{}, nil, fmt.Errorf("wavio: reading sample: %w", err)
				}
				samples[i] = float32(v) / 32768.0
			}
			if size%2 != 0 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return Format{}, nil, err
				}
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)+int64(size%2)); err != nil {
				return Format{}, nil, fmt.Errorf("wavio: skipping chunk %s: %w", id, err)
			}
		}
	}

	if !sawFormat {
		return Format{}, nil, ErrNotPCM
	}
	return format, samples, nil
}
