// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Lets a render made at one studio rate play on an output opened at another
package resample

import (
	"fmt"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate int) (*Resampler, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("%w: cannot resample %dHz to %dHz", audio.ErrInvalidFormat, inputRate, outputRate)
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}, nil
}

// Resample converts buf to the output rate. Each output frame interpolates
// the two nearest input frames; the last input frame is held past the end.
func (r *Resampler) Resample(buf *audio.SampleBuffer) (*audio.SampleBuffer, error) {
	if buf.SampleRate != r.inputRate {
		return nil, fmt.Errorf("%w: buffer is %dHz, resampler expects %dHz", audio.ErrInvalidFormat, buf.SampleRate, r.inputRate)
	}

	inputFrames := buf.FrameCount()
	out := audio.NewSampleBuffer(r.outputRate, buf.NumChannels(), r.OutputFrames(inputFrames))
	if inputFrames == 0 {
		return out, nil
	}

	for ch := 0; ch < buf.NumChannels(); ch++ {
		input := buf.Channel(ch)
		output := out.Channel(ch)

		for i := range output {
			pos := float64(i) * r.ratio
			idx := int(pos)
			if idx >= inputFrames-1 {
				output[i] = input[inputFrames-1]
				continue
			}

			frac := float32(pos - float64(idx))
			output[i] = input[idx]*(1-frac) + input[idx+1]*frac
		}
	}

	return out, nil
}

// OutputFrames calculates how many frames Resample produces from inputFrames
func (r *Resampler) OutputFrames(inputFrames int) int {
	return int(float64(inputFrames) / r.ratio)
}

// To resamples buf to outputRate. A buffer already at that rate is returned
// as is.
func To(buf *audio.SampleBuffer, outputRate int) (*audio.SampleBuffer, error) {
	if buf.SampleRate == outputRate {
		return buf, nil
	}
	r, err := New(buf.SampleRate, outputRate)
	if err != nil {
		return nil, err
	}
	return r.Resample(buf)
}
