package voicedetect

import (
	"math"

	"github.com/auricle-labs/auricle/pkg/audio/resample"
)

// Normalization targets. Every signal entering feature extraction has this
// shape, so thresholds stay comparable across inputs.
const (
	// TargetSampleRate is the rate all signals are resampled to.
	TargetSampleRate = 16000
	// MinDuration and MaxDuration bound accepted signals, in seconds.
	MinDuration = 0.5
	MaxDuration = 300.0

	// preEmphasisCoef flattens the natural spectral tilt of voiced speech.
	preEmphasisCoef = 0.97
	// peakTarget is the amplitude the peak sample is scaled to.
	peakTarget = 0.95
	// energyFloor is the mean-square level below which a signal is
	// treated as carrying no usable speech.
	energyFloor = 1e-6
)

// AudioSignal is a validated mono signal at TargetSampleRate. It is created
// per request by Normalize and consumed by the feature extractor; it is never
// retained between requests.
type AudioSignal struct {
	Samples    []float64
	SampleRate int
	Duration   float64 // seconds
}

// Normalize turns decoded PCM of any channel count and rate into an
// AudioSignal. The transform order is fixed: downmix, resample, DC removal,
// pre-emphasis, peak normalization. Duration and energy validation run last,
// on the final signal.
func Normalize(samples []float64, sampleRate, channels int) (*AudioSignal, error) {
	if sampleRate <= 0 {
		return nil, newError(KindDecode, "invalid sample rate %d", sampleRate)
	}
	if channels <= 0 {
		return nil, newError(KindDecode, "invalid channel count %d", channels)
	}
	if len(samples)%channels != 0 {
		return nil, newError(KindDecode, "sample count %d is not a multiple of %d channels", len(samples), channels)
	}
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, newError(KindDecode, "signal contains non-finite samples")
		}
	}

	mono := downmix(samples, channels)

	mono, err := resample.Mono(mono, sampleRate, TargetSampleRate)
	if err != nil {
		return nil, wrapError(KindDecode, err, "resampling failed")
	}

	removeDC(mono)
	preEmphasize(mono, preEmphasisCoef)
	normalizePeak(mono, peakTarget)

	duration := float64(len(mono)) / TargetSampleRate
	if duration < MinDuration {
		return nil, newError(KindDuration, "audio too short: %.2fs (minimum %.1fs)", duration, MinDuration)
	}
	if duration > MaxDuration {
		return nil, newError(KindDuration, "audio too long: %.2fs (maximum %.0fs)", duration, MaxDuration)
	}
	if meanSquare(mono) < energyFloor {
		return nil, newError(KindSilence, "signal energy below usable floor")
	}

	return &AudioSignal{
		Samples:    mono,
		SampleRate: TargetSampleRate,
		Duration:   duration,
	}, nil
}

// downmix averages interleaved channels into a mono buffer.
func downmix(samples []float64, channels int) []float64 {
	if channels == 1 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}
	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// removeDC subtracts the signal mean in place.
func removeDC(s []float64) {
	if len(s) == 0 {
		return
	}
	mean := 0.0
	for _, v := range s {
		mean += v
	}
	mean /= float64(len(s))
	for i := range s {
		s[i] -= mean
	}
}

// preEmphasize applies y[n] = x[n] - a*x[n-1] in place. The first sample is
// kept as-is.
func preEmphasize(s []float64, a float64) {
	prev := 0.0
	for i, v := range s {
		if i > 0 {
			s[i] = v - a*prev
		}
		prev = v
	}
}

// normalizePeak scales the signal so its peak magnitude equals target.
// An all-zero signal is left untouched; the energy floor check rejects it.
func normalizePeak(s []float64, target float64) {
	peak := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return
	}
	scale := target / peak
	for i := range s {
		s[i] *= scale
	}
}

func meanSquare(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return sum / float64(len(s))
}
