// Package dsp provides the signal-processing primitives used by the voice
// detection pipeline: a radix-2 FFT, window functions, a mel filterbank with
// DCT-II for cepstral coefficients, and power-spectrum helpers.
//
// All routines operate on float64 buffers and are free of shared state, so
// they are safe to call from any number of goroutines.
package dsp
