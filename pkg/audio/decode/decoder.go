// ABOUTME: Decoder interface definition
// ABOUTME: Common interface and codec dispatch for all audio decoders
package decode

import (
	"fmt"
	"mime"
	"strconv"
	"strings"

	"github.com/vocalize-studio/vocalize-go/pkg/audio"
)

// Decoder decodes audio in various formats to normalized sample buffers
type Decoder interface {
	// Decode converts encoded audio data to a sample buffer
	Decode(data []byte) (*audio.SampleBuffer, error)

	// Close releases decoder resources
	Close() error
}

// New creates a decoder for the codec named in format
func New(format audio.Format) (Decoder, error) {
	switch format.Codec {
	case "pcm":
		return NewPCM(format)
	case "wav":
		return NewWAV(format)
	case "mp3":
		return NewMP3(format)
	default:
		return nil, fmt.Errorf("%w: unsupported codec: %s", audio.ErrInvalidFormat, format.Codec)
	}
}

// FormatFromMIME maps a MIME type to a decoder format. Raw PCM types
// ("audio/L16", "audio/pcm") take their rate from the "rate" parameter and
// fall back to defaultRate.
func FormatFromMIME(mimeType string, defaultRate int) (audio.Format, error) {
	mediaType, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return audio.Format{}, fmt.Errorf("%w: bad mime type %q: %w", audio.ErrInvalidFormat, mimeType, err)
	}

	switch strings.ToLower(mediaType) {
	case "audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave":
		return audio.Format{Codec: "wav"}, nil
	case "audio/mpeg", "audio/mp3":
		return audio.Format{Codec: "mp3", BitDepth: 16}, nil
	case "audio/l16", "audio/pcm":
		rate := defaultRate
		if r, ok := params["rate"]; ok {
			rate, err = strconv.Atoi(r)
			if err != nil {
				return audio.Format{}, fmt.Errorf("%w: bad rate %q", audio.ErrInvalidFormat, r)
			}
		}
		channels := 1
		if c, ok := params["channels"]; ok {
			channels, err = strconv.Atoi(c)
			if err != nil {
				return audio.Format{}, fmt.Errorf("%w: bad channel count %q", audio.ErrInvalidFormat, c)
			}
		}
		return audio.Format{Codec: "pcm", SampleRate: rate, Channels: channels, BitDepth: 16}, nil
	default:
		return audio.Format{}, fmt.Errorf("%w: unsupported mime type: %s", audio.ErrInvalidFormat, mediaType)
	}
}
