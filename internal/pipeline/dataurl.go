package pipeline

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dgallion1/chatmd/internal/textutil"
)

// ErrEncodingUnavailable is returned when a data URL is requested in an
// encoding this build cannot produce.
var ErrEncodingUnavailable = errors.New("encoding unavailable")

const (
	EncodingPercent = "percent"
	EncodingBase64  = "base64"
)

// DataURL returns data as a data: URL of the given media type. The default
// encoding is percent encoding, matching encodeURIComponent.
func DataURL(data []byte, mediaType, encoding string) (string, error) {
	switch encoding {
	case "", EncodingPercent:
		return "data:" + mediaType + "," + textutil.EncodeURIComponent(string(data)), nil
	case EncodingBase64:
		return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrEncodingUnavailable, encoding)
	}
}
