// ABOUTME: Oto-based audio output implementation
// ABOUTME: Handles PCM playback with software volume control using oto library
package output

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vocalize-studio/vocalize-go/pkg/audio"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/encode"
	"github.com/vocalize-studio/vocalize-go/pkg/audio/resample"
)

// Oto output implementation using oto library
type Oto struct {
	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	sampleRate int
	channels   int
	volume     int
	muted      bool
	ready      bool
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{
		volume: 100,
		muted:  false,
	}
}

// Open initializes the output device
func (o *Oto) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	// If already initialized with same format, reuse the existing context
	if o.otoCtx != nil && o.sampleRate == sampleRate && o.channels == channels {
		if !o.ready {
			o.startPlayer()
		}
		return nil
	}

	// oto only allows one context per process. Other rates are resampled in
	// Write; a channel change cannot be honored.
	if o.otoCtx != nil {
		if o.channels != channels {
			return fmt.Errorf("%w: output opened with %d channels, cannot switch to %d",
				audio.ErrInvalidFormat, o.channels, channels)
		}
		if !o.ready {
			o.startPlayer()
		}
		log.Printf("Audio output stays at %dHz, resampling %dHz renders", o.sampleRate, sampleRate)
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = sampleRate
	o.channels = channels
	o.startPlayer()

	log.Printf("Audio output initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// startPlayer creates a persistent player that reads from a pipe
func (o *Oto) startPlayer() {
	o.pipeReader, o.pipeWriter = io.Pipe()
	o.player = o.otoCtx.NewPlayer(o.pipeReader)
	o.player.Play()
	o.ready = true
}

// Write plays a sample buffer (blocks until written)
func (o *Oto) Write(buf *audio.SampleBuffer) error {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return fmt.Errorf("output not initialized")
	}
	if buf.NumChannels() != o.channels {
		o.mu.Unlock()
		return fmt.Errorf("%w: buffer has %d channels, output has %d",
			audio.ErrInvalidFormat, buf.NumChannels(), o.channels)
	}
	buf, err := resample.To(buf, o.sampleRate)
	if err != nil {
		o.mu.Unlock()
		return err
	}
	volumed := applyVolume(buf, o.volume, o.muted)
	writer := o.pipeWriter
	o.mu.Unlock()

	// Write to pipe (which feeds the persistent player)
	if _, err := writer.Write(encode.EncodePCM(volumed)); err != nil {
		return fmt.Errorf("pipe write failed: %w", err)
	}

	return nil
}

// drainPoll is how often Drain checks the player buffer
const drainPoll = 20 * time.Millisecond

// Drain blocks until the player has consumed everything written. Write
// returns once the pipe hands bytes to the player, which still buffers them.
func (o *Oto) Drain(ctx context.Context) error {
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()

	for {
		o.mu.Lock()
		player := o.player
		o.mu.Unlock()
		if player == nil || player.BufferedSize() == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases output resources. The oto context is suspended rather
// than destroyed so a later Open can resume it.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pipeWriter != nil {
		o.pipeWriter.Close()
		o.pipeWriter = nil
	}
	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.pipeReader != nil {
		o.pipeReader.Close()
		o.pipeReader = nil
	}
	o.ready = false
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = clampVolume(volume)
	log.Printf("Volume set to %d", o.volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.muted = muted
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}
