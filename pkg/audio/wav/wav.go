// Package wav decodes RIFF/WAVE containers into normalized PCM samples.
//
// The detection pipeline treats container decoding as a boundary step: it
// accepts whatever channel count and sample rate the file carries and hands
// the raw samples to the normalizer. Supported encodings are 16/24/32-bit
// signed PCM and 32-bit IEEE float.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// WAV format codes from the fmt chunk.
const (
	formatPCM  = 1
	formatIEEE = 3
)

const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
	minFmtChunkSize = 16
)

// ErrNotWAV indicates the input is not a RIFF/WAVE container.
var ErrNotWAV = errors.New("wav: not a RIFF/WAVE file")

// Audio holds decoded PCM audio. Samples are interleaved across channels and
// normalized to [-1, 1].
type Audio struct {
	SampleRate int
	Channels   int
	Samples    []float64
}

// Duration returns the signal duration in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 || a.Channels <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.Channels) / float64(a.SampleRate)
}

// Decode parses a WAV file held in memory.
func Decode(data []byte) (*Audio, error) {
	if len(data) < riffHeaderSize {
		return nil, ErrNotWAV
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var (
		haveFmt    bool
		formatCode int
		channels   int
		sampleRate int
		bitDepth   int
	)

	// Walk chunks until the data chunk; fmt must come first.
	pos := riffHeaderSize
	for {
		if pos+chunkHeaderSize > len(data) {
			return nil, errors.New("wav: missing data chunk")
		}
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		pos += chunkHeaderSize
		if chunkSize < 0 || pos+chunkSize > len(data) {
			return nil, fmt.Errorf("wav: truncated %q chunk", chunkID)
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < minFmtChunkSize {
				return nil, errors.New("wav: fmt chunk too small")
			}
			fmtChunk := data[pos : pos+chunkSize]
			formatCode = int(binary.LittleEndian.Uint16(fmtChunk[0:2]))
			channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
			if channels <= 0 {
				return nil, errors.New("wav: invalid channel count")
			}
			if sampleRate <= 0 {
				return nil, errors.New("wav: invalid sample rate")
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, errors.New("wav: data chunk before fmt chunk")
			}
			samples, err := decodeSamples(data[pos:pos+chunkSize], formatCode, bitDepth)
			if err != nil {
				return nil, err
			}
			return &Audio{
				SampleRate: sampleRate,
				Channels:   channels,
				Samples:    samples,
			}, nil
		}

		// Chunks are word-aligned; odd sizes carry a pad byte.
		pos += chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}
}

// decodeSamples converts raw sample bytes to normalized float64 values.
func decodeSamples(raw []byte, formatCode, bitDepth int) ([]float64, error) {
	switch {
	case formatCode == formatPCM && bitDepth == 16:
		n := len(raw) / 2
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			out[i] = float64(s) / 32768.0
		}
		return out, nil

	case formatCode == formatPCM && bitDepth == 24:
		n := len(raw) / 3
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(raw[i*3]) | int32(raw[i*3+1])<<8 | int32(raw[i*3+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF) // sign extend
			}
			out[i] = float64(v) / 8388608.0
		}
		return out, nil

	case formatCode == formatPCM && bitDepth == 32:
		n := len(raw) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			s := int32(binary.LittleEndian.Uint32(raw[i*4:]))
			out[i] = float64(s) / 2147483648.0
		}
		return out, nil

	case formatCode == formatIEEE && bitDepth == 32:
		n := len(raw) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(raw[i*4:])
			out[i] = float64(math.Float32frombits(bits))
		}
		return out, nil

	default:
		return nil, fmt.Errorf("wav: unsupported encoding (format %d, %d-bit)", formatCode, bitDepth)
	}
}

// EncodePCM16 builds a 16-bit PCM WAV file from interleaved samples in
// [-1, 1]. Values outside the range are clipped.
func EncodePCM16(samples []float64, sampleRate, channels int) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, riffHeaderSize+chunkHeaderSize+minFmtChunkSize+chunkHeaderSize+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(buf)-8))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], minFmtChunkSize)
	binary.LittleEndian.PutUint16(buf[20:22], formatPCM)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	byteRate := sampleRate * channels * 2
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, v := range samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		s := int16(v * 32767)
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(s))
	}
	return buf
}
