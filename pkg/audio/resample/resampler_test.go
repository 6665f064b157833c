// ABOUTME: Tests for the linear resampler
// ABOUTME: Checks frame counts, interpolation and rate validation
package resample

import (
	"errors"
	"math"
	"testing"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

func ramp(rate, frames int) *audio.SampleBuffer {
	buf := audio.NewSampleBuffer(rate, 1, frames)
	for i := range buf.Channel(0) {
		buf.Channel(0)[i] = float32(i) / float32(frames)
	}
	return buf
}

func TestNewRejectsBadRates(t *testing.T) {
	for _, rates := range [][2]int{{0, 16000}, {24000, 0}, {-1, 16000}} {
		if _, err := New(rates[0], rates[1]); !errors.Is(err, audio.ErrInvalidFormat) {
			t.Errorf("New(%d, %d): expected ErrInvalidFormat, got %v", rates[0], rates[1], err)
		}
	}
}

func TestOutputFrames(t *testing.T) {
	tests := []struct {
		in, out int
		frames  int
		want    int
	}{
		{24000, 16000, 24000, 16000},
		{16000, 24000, 16000, 24000},
		{24000, 24000, 100, 100},
		{24000, 16000, 3, 2},
	}

	for _, tt := range tests {
		r, err := New(tt.in, tt.out)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if got := r.OutputFrames(tt.frames); got != tt.want {
			t.Errorf("%d->%d OutputFrames(%d) = %d, want %d", tt.in, tt.out, tt.frames, got, tt.want)
		}
	}
}

func TestResampleDown(t *testing.T) {
	buf := ramp(24000, 2400)
	out, err := To(buf, 16000)
	if err != nil {
		t.Fatalf("To failed: %v", err)
	}

	if out.SampleRate != 16000 || out.FrameCount() != 1600 {
		t.Fatalf("expected 1600 frames at 16000Hz, got %d at %d", out.FrameCount(), out.SampleRate)
	}
	// output frame i sits at input position 1.5i
	in := buf.Channel(0)
	got := out.Channel(0)
	for _, i := range []int{0, 1, 100, 801} {
		pos := float64(i) * 1.5
		idx := int(pos)
		frac := pos - float64(idx)
		want := float64(in[idx])*(1-frac) + float64(in[idx+1])*frac
		if math.Abs(float64(got[i])-want) > 1e-6 {
			t.Errorf("frame %d = %f, want %f", i, got[i], want)
		}
	}
}

func TestResampleUpHoldsLastFrame(t *testing.T) {
	buf := audio.NewSampleBuffer(16000, 1, 4)
	copy(buf.Channel(0), []float32{0, 0.5, 1, 0.25})

	out, err := To(buf, 24000)
	if err != nil {
		t.Fatalf("To failed: %v", err)
	}
	if out.FrameCount() != 6 {
		t.Fatalf("expected 6 frames, got %d", out.FrameCount())
	}
	want := []float32{0, 1.0 / 3, 2.0 / 3, 1, 0.5, 0.25}
	for i, w := range want {
		if math.Abs(float64(out.Channel(0)[i]-w)) > 1e-6 {
			t.Errorf("frame %d = %f, want %f", i, out.Channel(0)[i], w)
		}
	}
}

func TestResampleStereo(t *testing.T) {
	buf := audio.NewSampleBuffer(24000, 2, 300)
	for i := range buf.Channel(0) {
		buf.Channel(0)[i] = 0.5
		buf.Channel(1)[i] = -0.5
	}

	out, err := To(buf, 16000)
	if err != nil {
		t.Fatalf("To failed: %v", err)
	}
	if out.NumChannels() != 2 {
		t.Fatalf("expected 2 channels, got %d", out.NumChannels())
	}
	for i := 0; i < out.FrameCount(); i++ {
		if out.Channel(0)[i] != 0.5 || out.Channel(1)[i] != -0.5 {
			t.Fatalf("frame %d not preserved: %f %f", i, out.Channel(0)[i], out.Channel(1)[i])
		}
	}
}

func TestToSameRate(t *testing.T) {
	buf := ramp(24000, 10)
	out, err := To(buf, 24000)
	if err != nil {
		t.Fatalf("To failed: %v", err)
	}
	if out != buf {
		t.Error("expected the same buffer back")
	}
}

func TestResampleRateMismatch(t *testing.T) {
	r, _ := New(24000, 16000)
	if _, err := r.Resample(ramp(16000, 10)); !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestResampleEmpty(t *testing.T) {
	out, err := To(audio.NewSampleBuffer(24000, 1, 0), 16000)
	if err != nil {
		t.Fatalf("To failed: %v", err)
	}
	if out.FrameCount() != 0 {
		t.Errorf("expected empty output, got %d frames", out.FrameCount())
	}
}
