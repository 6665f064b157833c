// ABOUTME: Audio fundamentals package providing core codec types and utilities
// ABOUTME: Defines Format, SampleBuffer, the base64 payload codec and codec errors
// Package audio provides the fundamental types for the studio's raw-audio pipeline.
//
// This package defines core types used throughout the vocalize library:
//   - Format: Describes an audio stream format (codec, sample rate, channels, bit depth)
//   - SampleBuffer: Normalized per-channel float samples produced by decoding
//
// It also provides the transport codec for synthesis payloads:
//   - DecodeBase64 / EncodeBase64 convert between base64 text and raw PCM bytes
//
// Example:
//
//	raw, err := audio.DecodeBase64(payload)
//	if err != nil {
//	    return err
//	}
//	buf, err := decode.DecodePCM(raw, 24000, 1)
//	blob := encode.EncodeWAV(buf)
package audio
