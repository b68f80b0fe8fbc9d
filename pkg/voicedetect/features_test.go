package voicedetect

import (
	"math"
	"testing"
)

func TestExtractRequiredKeys(t *testing.T) {
	fv, err := NewExtractor().Extract(mustNormalize(t, synthTone(200, 1.0)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(fv) != len(RequiredFeatures) {
		t.Errorf("got %d features, want %d", len(fv), len(RequiredFeatures))
	}
	for _, name := range RequiredFeatures {
		v, ok := fv[name]
		if !ok {
			t.Errorf("missing feature %q", name)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("feature %q is not finite: %v", name, v)
		}
	}
}

func TestExtractPureTone(t *testing.T) {
	fv, err := NewExtractor().Extract(mustNormalize(t, synthTone(200, 2.0)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	// A perfectly periodic signal has no cycle-to-cycle perturbation.
	if fv["jitter"] != 0 {
		t.Errorf("jitter = %v, want 0", fv["jitter"])
	}
	if fv["shimmer"] > 0.01 {
		t.Errorf("shimmer = %v, want < 0.01", fv["shimmer"])
	}
	// The 80-sample period divides the 160-sample hop, so every frame is
	// identical.
	if fv["zcr_std"] > 0.005 {
		t.Errorf("zcr_std = %v, want < 0.005", fv["zcr_std"])
	}
	if fv["harmonic_ratio"] < 0.75 {
		t.Errorf("harmonic_ratio = %v, want >= 0.75", fv["harmonic_ratio"])
	}
	if fv["spectral_flatness"] > 0.15 {
		t.Errorf("spectral_flatness = %v, want < 0.15", fv["spectral_flatness"])
	}
	if fv["mfcc_variance"] > 0.5 {
		t.Errorf("mfcc_variance = %v, want ~0", fv["mfcc_variance"])
	}
	// Single spectral line near 200 Hz.
	if fv["spectral_centroid"] < 150 || fv["spectral_centroid"] > 300 {
		t.Errorf("spectral_centroid = %v, want near 200", fv["spectral_centroid"])
	}
	if fv["spectral_rolloff"] > 400 {
		t.Errorf("spectral_rolloff = %v, want < 400", fv["spectral_rolloff"])
	}
}

func TestExtractSpeechLike(t *testing.T) {
	fv, err := NewExtractor().Extract(mustNormalize(t, synthSpeechLike(2.0)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if fv["jitter"] <= 0.005 {
		t.Errorf("jitter = %v, want > 0.005", fv["jitter"])
	}
	if fv["shimmer"] <= 0.05 {
		t.Errorf("shimmer = %v, want > 0.05", fv["shimmer"])
	}
	if fv["zcr_std"] <= 0.02 {
		t.Errorf("zcr_std = %v, want > 0.02", fv["zcr_std"])
	}
	if fv["harmonic_ratio"] >= 0.75 {
		t.Errorf("harmonic_ratio = %v, want < 0.75", fv["harmonic_ratio"])
	}
	if fv["mfcc_variance"] <= 2.5 {
		t.Errorf("mfcc_variance = %v, want > 2.5", fv["mfcc_variance"])
	}
	if fv["energy_entropy"] <= 3.5 {
		t.Errorf("energy_entropy = %v, want > 3.5", fv["energy_entropy"])
	}
}

// With no voiced frame at all, jitter falls back to the neutral value.
func TestExtractUnvoicedJitter(t *testing.T) {
	fv, err := NewExtractor().Extract(mustNormalize(t, synthNoise(1.0)))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if fv["jitter"] != 0 {
		t.Errorf("jitter = %v, want 0 for unvoiced signal", fv["jitter"])
	}
	// Noise spreads energy across the spectrum.
	if fv["spectral_flatness"] < 0.15 {
		t.Errorf("spectral_flatness = %v, want >= 0.15 for noise", fv["spectral_flatness"])
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor()
	sig := mustNormalize(t, synthSpeechLike(1.5))
	a, err := e.Extract(sig)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	b, err := e.Extract(sig)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, name := range RequiredFeatures {
		if a[name] != b[name] {
			t.Errorf("feature %q differs across runs: %v vs %v", name, a[name], b[name])
		}
	}
}

func TestExtractTooShort(t *testing.T) {
	sig := &AudioSignal{
		Samples:    make([]float64, 100),
		SampleRate: TargetSampleRate,
		Duration:   float64(100) / TargetSampleRate,
	}
	_, err := NewExtractor().Extract(sig)
	if KindOf(err) != KindFeatureExtraction {
		t.Errorf("kind = %q, want %q", KindOf(err), KindFeatureExtraction)
	}
}

func TestFeatureVectorClone(t *testing.T) {
	fv := FeatureVector{"jitter": 0.01}
	clone := fv.Clone()
	clone["jitter"] = 0.99
	if fv["jitter"] != 0.01 {
		t.Errorf("clone mutated the original: %v", fv["jitter"])
	}
}
