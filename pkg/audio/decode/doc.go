// ABOUTME: Audio decoder package for synthesis payloads and imported samples
// ABOUTME: Provides Decoder interface and implementations for PCM, WAV, MP3
// Package decode turns encoded audio into normalized sample buffers.
//
// Supports: raw 16-bit PCM (with click-suppression fade), WAV, MP3
//
// All decoders implement the Decoder interface and output an
// audio.SampleBuffer with float samples in [-1.0, 1.0].
//
// Example:
//
//	buf, err := decode.DecodePCM(raw, 24000, 1)
//
//	decoder, err := decode.New(format)
//	buf, err := decoder.Decode(audioData)
package decode
