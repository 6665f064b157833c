// ABOUTME: Base64 transport codec for synthesis payloads
// ABOUTME: Converts between base64 text and raw PCM byte streams
package audio

import (
	"encoding/base64"
	"fmt"
)

// DecodeBase64 decodes a standard base64 payload into raw bytes. The
// payload must carry its '=' padding: unpadded and URL-safe input is
// rejected, as are spaces and tabs. Line breaks are skipped. Malformed
// input returns an error wrapping ErrDecode and the underlying decoder error.
func DecodeBase64(payload string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return data, nil
}

// EncodeBase64 encodes raw bytes as a standard, padded base64 payload
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
