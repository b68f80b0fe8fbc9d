package voicedetect

import (
	"math"
	"testing"
)

func TestNormalizeMono(t *testing.T) {
	sig := mustNormalize(t, synthTone(200, 1.0))

	if sig.SampleRate != TargetSampleRate {
		t.Errorf("sample rate = %d, want %d", sig.SampleRate, TargetSampleRate)
	}
	if len(sig.Samples) != TargetSampleRate {
		t.Errorf("sample count = %d, want %d", len(sig.Samples), TargetSampleRate)
	}
	if math.Abs(sig.Duration-1.0) > 1e-9 {
		t.Errorf("duration = %v, want 1.0", sig.Duration)
	}

	// Peak normalization scales the loudest sample to the target.
	peak := 0.0
	for _, v := range sig.Samples {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-0.95) > 1e-9 {
		t.Errorf("peak = %v, want 0.95", peak)
	}
}

func TestNormalizeDownmix(t *testing.T) {
	mono := synthTone(200, 1.0)
	stereo := make([]float64, 2*len(mono))
	for i, v := range mono {
		stereo[2*i] = v
		stereo[2*i+1] = v
	}

	a, err := Normalize(mono, TargetSampleRate, 1)
	if err != nil {
		t.Fatalf("Normalize mono: %v", err)
	}
	b, err := Normalize(stereo, TargetSampleRate, 2)
	if err != nil {
		t.Fatalf("Normalize stereo: %v", err)
	}
	if len(a.Samples) != len(b.Samples) {
		t.Fatalf("lengths differ: %d vs %d", len(a.Samples), len(b.Samples))
	}
	for i := range a.Samples {
		if math.Abs(a.Samples[i]-b.Samples[i]) > 1e-12 {
			t.Fatalf("sample %d: mono %v vs downmixed %v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestNormalizeResamples(t *testing.T) {
	n := 8000 // 1 second at 8 kHz
	src := make([]float64, n)
	for i := range src {
		src[i] = 0.8 * math.Sin(2*math.Pi*200*float64(i)/8000)
	}

	sig, err := Normalize(src, 8000, 1)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(sig.Samples) != TargetSampleRate {
		t.Errorf("sample count = %d, want %d", len(sig.Samples), TargetSampleRate)
	}
	if math.Abs(sig.Duration-1.0) > 1e-9 {
		t.Errorf("duration = %v, want 1.0", sig.Duration)
	}
}

func TestNormalizeRemovesDC(t *testing.T) {
	samples := synthTone(200, 1.0)
	for i := range samples {
		samples[i] = samples[i]*0.2 + 0.5 // heavy DC offset
	}
	sig, err := Normalize(samples, TargetSampleRate, 1)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	mean := 0.0
	for _, v := range sig.Samples {
		mean += v
	}
	mean /= float64(len(sig.Samples))
	// Pre-emphasis runs after DC removal and itself suppresses DC, so the
	// residual mean is tiny.
	if math.Abs(mean) > 0.01 {
		t.Errorf("residual mean = %v, want ~0", mean)
	}
}

func TestNormalizeErrors(t *testing.T) {
	long := make([]float64, int(301*TargetSampleRate))
	tests := []struct {
		name     string
		samples  []float64
		rate     int
		channels int
		want     ErrorKind
	}{
		{"zero rate", synthTone(200, 1.0), 0, 1, KindDecode},
		{"negative rate", synthTone(200, 1.0), -16000, 1, KindDecode},
		{"zero channels", synthTone(200, 1.0), TargetSampleRate, 0, KindDecode},
		{"misaligned channels", make([]float64, 16001), TargetSampleRate, 2, KindDecode},
		{"nan sample", []float64{0.1, math.NaN(), 0.1, 0.1}, TargetSampleRate, 1, KindDecode},
		{"inf sample", []float64{0.1, math.Inf(1), 0.1, 0.1}, TargetSampleRate, 1, KindDecode},
		{"too short", synthTone(200, 0.25), TargetSampleRate, 1, KindDuration},
		{"too long", long, TargetSampleRate, 1, KindDuration},
		{"silent", make([]float64, TargetSampleRate), TargetSampleRate, 1, KindSilence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.samples, tt.rate, tt.channels)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if KindOf(err) != tt.want {
				t.Errorf("kind = %q, want %q", KindOf(err), tt.want)
			}
		})
	}
}

func TestNormalizeDurationBounds(t *testing.T) {
	// Exactly at the minimum passes.
	if _, err := Normalize(synthTone(200, 0.5), TargetSampleRate, 1); err != nil {
		t.Errorf("0.5s signal rejected: %v", err)
	}
}
