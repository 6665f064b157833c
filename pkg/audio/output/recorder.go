// ABOUTME: In-memory audio output implementation
// ABOUTME: Records written PCM for headless playback and tests
package output

import (
	"context"
	"fmt"
	"sync"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/encode"
)

// Recorder is an Output that keeps everything written to it as 16-bit PCM
type Recorder struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	open       bool
	pcm        []byte
	writes     int
	drains     int
}

// NewRecorder creates a new in-memory output
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Open initializes the recorder
func (r *Recorder) Open(sampleRate, channels int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sampleRate <= 0 || channels < 1 {
		return fmt.Errorf("%w: %dHz %dch", audio.ErrInvalidFormat, sampleRate, channels)
	}

	r.sampleRate = sampleRate
	r.channels = channels
	r.open = true
	return nil
}

// Write appends the quantized buffer
func (r *Recorder) Write(buf *audio.SampleBuffer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return fmt.Errorf("output not initialized")
	}

	r.pcm = append(r.pcm, encode.EncodePCM(buf)...)
	r.writes++
	return nil
}

// Drain returns at once; recorded audio is never pending
func (r *Recorder) Drain(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drains++
	return ctx.Err()
}

// Close marks the recorder closed. Recorded audio is kept.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open = false
	return nil
}

// PCM returns a copy of all recorded audio
func (r *Recorder) PCM() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.pcm...)
}

// Writes returns how many buffers have been written
func (r *Recorder) Writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// Drains returns how many times Drain was called
func (r *Recorder) Drains() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drains
}

// Format returns the sample rate and channel count given to Open
func (r *Recorder) Format() (sampleRate, channels int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sampleRate, r.channels
}
