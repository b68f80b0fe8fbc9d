// Package resample converts mono audio buffers between sample rates using a
// band-limited (soxr-style) pure Go resampler.
//
// The voice pipeline normalizes every input to 16 kHz before feature
// extraction, so the package exposes a one-shot buffer API rather than a
// streaming one: the full signal is available up front and is bounded by the
// pipeline's duration cap.
package resample

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

// drainChunk is the zero-block size fed to the resampler after the input is
// exhausted, flushing samples still held in its filter delay line.
const drainChunk = 512

// Mono resamples a mono float64 signal from srcRate to dstRate.
// Sample values are expected in [-1, 1]. When the rates match, a copy of the
// input is returned unchanged.
func Mono(samples []float64, srcRate, dstRate int) ([]float64, error) {
	if srcRate <= 0 || dstRate <= 0 {
		return nil, fmt.Errorf("resample: invalid rates %d -> %d", srcRate, dstRate)
	}
	if srcRate == dstRate {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out, nil
	}
	if len(samples) == 0 {
		return nil, nil
	}

	config := &resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
	rs, err := resampling.New(config)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	want := int(math.Round(float64(len(samples)) * float64(dstRate) / float64(srcRate)))
	out := make([]float64, 0, want)

	block, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}
	out = append(out, block...)

	// The filter holds a delay line's worth of output back; push zeros
	// through until the expected length is reached.
	zeros := make([]float64, drainChunk)
	for len(out) < want {
		block, err = rs.Process(zeros)
		if err != nil {
			return nil, fmt.Errorf("resample: %w", err)
		}
		if len(block) == 0 {
			break
		}
		out = append(out, block...)
	}

	if len(out) > want {
		out = out[:want]
	}
	return out, nil
}
