// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts sample buffers between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	buf16k, err := resample.To(buf24k, 16000)
package resample
