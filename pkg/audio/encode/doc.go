// ABOUTME: Audio encoder package for encoding sample buffers
// ABOUTME: Provides Encoder interface and implementations for WAV and raw PCM
// Package encode turns normalized sample buffers back into 16-bit audio.
//
// Supports: WAV (canonical 44-byte RIFF/WAVE header), raw 16-bit PCM
//
// Samples are clamped to [-1, 1] and quantized with an asymmetric scale:
// negative values by 32768, non-negative values by 32767.
//
// Example:
//
//	blob := encode.EncodeWAV(buf)
//
//	encoder, err := encode.New(format)
//	data, err := encoder.Encode(buf)
package encode
