package voicedetect

import (
	"math"
	"sort"

	"github.com/auricle-labs/auricle/pkg/audio/dsp"
)

// Framing and analysis parameters shared by every frame-based feature.
// 400/160 samples at 16 kHz is the 25 ms / 10 ms convention; a trailing
// partial frame is dropped rather than zero-padded.
const (
	frameSize = 400
	hopSize   = 160
	fftSize   = 512

	numMels   = 26
	numCoeffs = 13
	melLow    = 20.0
	melHigh   = 7600.0

	// Pitch search range, 50-400 Hz expressed as autocorrelation lags.
	minPitchLag = TargetSampleRate / 400
	maxPitchLag = TargetSampleRate / 50

	// voicingThreshold is the normalized autocorrelation peak a frame must
	// reach to count as voiced. Unvoiced frames contribute no pitch period.
	voicingThreshold = 0.3

	// rolloffFraction is the cumulative-energy fraction defining spectral
	// rolloff.
	rolloffFraction = 0.85

	// dynamicRangeFloor is the percentile of frame RMS used as the
	// low-energy floor for dynamic range.
	dynamicRangeFloor = 0.10

	eps = 1e-10
)

// RequiredFeatures is the fixed key set every FeatureVector carries, grouped
// by rule category.
var RequiredFeatures = []string{
	// Spectral
	"spectral_flatness",
	"spectral_centroid",
	"spectral_rolloff",
	// Prosodic
	"jitter",
	"shimmer",
	// Temporal
	"zcr_mean",
	"zcr_std",
	// Harmonic / statistical
	"harmonic_ratio",
	"mfcc_variance",
	"energy_entropy",
	"kurtosis",
	"skewness",
	"dynamic_range",
}

// FeatureVector maps feature names to finite scalar values. It always
// contains every key in RequiredFeatures; degenerate inputs produce the
// documented neutral value (0) instead of a missing entry.
type FeatureVector map[string]float64

// Clone returns an independent copy of the vector.
func (fv FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(fv))
	for k, v := range fv {
		out[k] = v
	}
	return out
}

// Extractor computes a FeatureVector from a normalized signal. The window
// and mel filterbank are built once; extraction itself is a pure function,
// safe for concurrent use.
type Extractor struct {
	window  []float64
	melBank [][]float64
}

// NewExtractor builds an Extractor with the fixed analysis parameters.
func NewExtractor() *Extractor {
	return &Extractor{
		window:  dsp.HammingWindow(frameSize),
		melBank: dsp.MelFilterBank(numMels, fftSize, TargetSampleRate, melLow, melHigh),
	}
}

// frameStats carries the per-frame measurements aggregated into the final
// vector.
type frameStats struct {
	flatness float64
	centroid float64
	rolloff  float64
	zcr      float64
	energy   float64
	rms      float64
	peak     float64
	harmonic float64
	mfcc     []float64
	period   int  // pitch period in samples
	voiced   bool // period is usable
}

// Extract computes the full feature set from sig. It returns a
// feature_extraction_error only when the signal yields no frames at all;
// per-frame degeneracies fall back to neutral values.
func (e *Extractor) Extract(sig *AudioSignal) (FeatureVector, error) {
	s := sig.Samples
	if len(s) < frameSize {
		return nil, newError(KindFeatureExtraction, "signal too short for a single analysis frame")
	}
	numFrames := (len(s)-frameSize)/hopSize + 1

	frames := make([]frameStats, numFrames)
	windowed := make([]float64, frameSize)
	for t := 0; t < numFrames; t++ {
		frame := s[t*hopSize : t*hopSize+frameSize]
		for i, v := range frame {
			windowed[i] = v * e.window[i]
		}
		power := dsp.PowerSpectrum(windowed, fftSize)

		st := &frames[t]
		st.flatness = spectralFlatness(power)
		st.centroid = spectralCentroid(power)
		st.rolloff = spectralRolloff(power)
		st.zcr = zeroCrossingRate(frame)
		st.energy, st.rms, st.peak = frameEnergy(frame)
		st.period, st.harmonic, st.voiced = trackPitch(frame)
		st.mfcc = e.mfcc(power)
	}

	fv := make(FeatureVector, len(RequiredFeatures))
	fv["spectral_flatness"] = meanOf(frames, func(f *frameStats) float64 { return f.flatness })
	fv["spectral_centroid"] = meanOf(frames, func(f *frameStats) float64 { return f.centroid })
	fv["spectral_rolloff"] = meanOf(frames, func(f *frameStats) float64 { return f.rolloff })
	fv["jitter"] = jitter(frames)
	fv["shimmer"] = shimmer(frames)

	zcrMean, zcrStd := meanStd(frames, func(f *frameStats) float64 { return f.zcr })
	fv["zcr_mean"] = zcrMean
	fv["zcr_std"] = zcrStd

	fv["harmonic_ratio"] = meanOf(frames, func(f *frameStats) float64 { return f.harmonic })
	fv["mfcc_variance"] = mfccVariance(frames)
	fv["energy_entropy"] = energyEntropy(frames)
	fv["kurtosis"], fv["skewness"] = amplitudeMoments(s)
	fv["dynamic_range"] = dynamicRange(frames)

	// Finite-value invariant: any residual NaN/Inf collapses to the
	// neutral value.
	for k, v := range fv {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			fv[k] = 0
		}
	}
	return fv, nil
}

// spectralFlatness is the ratio of geometric to arithmetic mean of the power
// spectrum. Noise-like frames approach 1, tonal frames approach 0.
func spectralFlatness(power []float64) float64 {
	logSum, sum := 0.0, 0.0
	for _, p := range power {
		logSum += math.Log(p + eps)
		sum += p
	}
	n := float64(len(power))
	geo := math.Exp(logSum / n)
	arith := sum / n
	return geo / (arith + eps)
}

// spectralCentroid is the power-weighted mean frequency in Hz.
func spectralCentroid(power []float64) float64 {
	weighted, sum := 0.0, 0.0
	for k, p := range power {
		freq := float64(k) * TargetSampleRate / fftSize
		weighted += freq * p
		sum += p
	}
	return weighted / (sum + eps)
}

// spectralRolloff is the frequency below which rolloffFraction of the frame's
// spectral energy lies.
func spectralRolloff(power []float64) float64 {
	total := 0.0
	for _, p := range power {
		total += p
	}
	threshold := rolloffFraction * total
	cum := 0.0
	for k, p := range power {
		cum += p
		if cum >= threshold {
			return float64(k) * TargetSampleRate / fftSize
		}
	}
	return 0
}

// zeroCrossingRate is the fraction of sample pairs that change sign.
func zeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i] >= 0) != (frame[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

func frameEnergy(frame []float64) (energy, rms, peak float64) {
	for _, v := range frame {
		energy += v * v
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	rms = math.Sqrt(energy / float64(len(frame)))
	return energy, rms, peak
}

// trackPitch estimates the fundamental period of a frame by autocorrelation
// over the 50-400 Hz lag range. A frame whose normalized peak falls below
// voicingThreshold is unvoiced and contributes no period. The normalized
// peak doubles as the frame's harmonic ratio.
func trackPitch(frame []float64) (period int, harmonic float64, voiced bool) {
	r0 := 0.0
	for _, v := range frame {
		r0 += v * v
	}
	if r0 < eps {
		return 0, 0, false
	}

	bestLag, bestNorm := 0, 0.0
	maxLag := maxPitchLag
	if maxLag > len(frame)-1 {
		maxLag = len(frame) - 1
	}
	for lag := minPitchLag; lag <= maxLag; lag++ {
		r := 0.0
		for i := lag; i < len(frame); i++ {
			r += frame[i] * frame[i-lag]
		}
		norm := r / r0
		if norm > bestNorm {
			bestNorm = norm
			bestLag = lag
		}
	}

	harmonic = math.Min(math.Max(bestNorm, 0), 1)
	if bestNorm < voicingThreshold {
		return 0, harmonic, false
	}
	return bestLag, harmonic, true
}

// mfcc computes the first numCoeffs mel-frequency cepstral coefficients of a
// power spectrum.
func (e *Extractor) mfcc(power []float64) []float64 {
	logMel := make([]float64, numMels)
	for m := 0; m < numMels; m++ {
		sum := 0.0
		for k, w := range e.melBank[m] {
			sum += w * power[k]
		}
		logMel[m] = math.Log(sum + eps)
	}
	return dsp.DCTII(logMel, numCoeffs)
}

// jitter is the relative average perturbation of consecutive pitch-period
// estimates. Unvoiced frames are skipped; with fewer than two voiced frames
// the neutral value 0 is returned.
func jitter(frames []frameStats) float64 {
	var periods []float64
	for i := range frames {
		if frames[i].voiced {
			periods = append(periods, float64(frames[i].period))
		}
	}
	if len(periods) < 2 {
		return 0
	}
	return relativePerturbation(periods)
}

// shimmer is the relative average perturbation of per-frame peak amplitudes.
func shimmer(frames []frameStats) float64 {
	peaks := make([]float64, len(frames))
	for i := range frames {
		peaks[i] = frames[i].peak
	}
	if len(peaks) < 2 {
		return 0
	}
	return relativePerturbation(peaks)
}

// relativePerturbation is mean(|x[i]-x[i-1]|) / mean(x), clamped to [0, 1].
func relativePerturbation(x []float64) float64 {
	mean, diff := 0.0, 0.0
	for i, v := range x {
		mean += v
		if i > 0 {
			diff += math.Abs(v - x[i-1])
		}
	}
	mean /= float64(len(x))
	diff /= float64(len(x) - 1)
	if mean < eps {
		return 0
	}
	return math.Min(diff/mean, 1)
}

func mfccVariance(frames []frameStats) float64 {
	n := float64(len(frames))
	if n < 2 {
		return 0
	}
	total := 0.0
	for c := 0; c < numCoeffs; c++ {
		mean := 0.0
		for i := range frames {
			mean += frames[i].mfcc[c]
		}
		mean /= n
		v := 0.0
		for i := range frames {
			d := frames[i].mfcc[c] - mean
			v += d * d
		}
		total += v / n
	}
	return total / numCoeffs
}

// energyEntropy is the Shannon entropy (nats) of the per-frame energy
// distribution.
func energyEntropy(frames []frameStats) float64 {
	total := 0.0
	for i := range frames {
		total += frames[i].energy
	}
	if total < eps {
		return 0
	}
	h := 0.0
	for i := range frames {
		p := frames[i].energy / total
		if p > eps {
			h -= p * math.Log(p)
		}
	}
	return h
}

// amplitudeMoments returns the excess kurtosis and skewness of the amplitude
// distribution.
func amplitudeMoments(s []float64) (kurtosis, skewness float64) {
	n := float64(len(s))
	if n < 2 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range s {
		mean += v
	}
	mean /= n

	var m2, m3, m4 float64
	for _, v := range s {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 < eps {
		return 0, 0
	}
	kurtosis = m4/(m2*m2) - 3
	skewness = m3 / math.Pow(m2, 1.5)
	return kurtosis, skewness
}

// dynamicRange is the dB gap between the loudest frame and a low-energy
// percentile floor of the frame RMS distribution.
func dynamicRange(frames []frameStats) float64 {
	rms := make([]float64, len(frames))
	for i := range frames {
		rms[i] = frames[i].rms
	}
	sort.Float64s(rms)

	peak := rms[len(rms)-1]
	if peak < eps {
		return 0
	}
	floorIdx := int(dynamicRangeFloor * float64(len(rms)))
	floor := rms[floorIdx]
	if floor < eps {
		floor = eps
	}
	return 20 * math.Log10(peak/floor)
}

func meanOf(frames []frameStats, get func(*frameStats) float64) float64 {
	if len(frames) == 0 {
		return 0
	}
	sum := 0.0
	for i := range frames {
		sum += get(&frames[i])
	}
	return sum / float64(len(frames))
}

func meanStd(frames []frameStats, get func(*frameStats) float64) (mean, std float64) {
	n := float64(len(frames))
	if n == 0 {
		return 0, 0
	}
	for i := range frames {
		mean += get(&frames[i])
	}
	mean /= n
	for i := range frames {
		d := get(&frames[i]) - mean
		std += d * d
	}
	return mean, math.Sqrt(std / n)
}
