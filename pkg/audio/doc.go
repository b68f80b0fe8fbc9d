// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - wav: RIFF/WAVE decoding and PCM16 encoding
//   - dsp: FFT, windowing, mel filterbanks and DCT primitives
//   - resample: band-limited sample rate conversion
//
// Example usage:
//
//	import (
//	    "github.com/auricle-labs/auricle/pkg/audio/wav"
//	    "github.com/auricle-labs/auricle/pkg/audio/resample"
//	)
//
//	audio, err := wav.Decode(data)
//	mono, err := resample.Mono(audio.Samples, audio.SampleRate, 16000)
package audio
