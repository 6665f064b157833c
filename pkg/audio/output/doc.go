// ABOUTME: Audio output package for playing rendered audio
// ABOUTME: Provides Output interface with oto and in-memory implementations
// Package output provides audio playback sinks for sample buffers.
//
// Oto plays through the system audio device. Recorder keeps written audio
// in memory for headless servers and tests.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(24000, 1)
//	err = out.Write(buf)
package output
