package archive

import (
	"mime"
	"strings"
)

// DefaultExtension is used for missing or unrecognised content types.
const DefaultExtension = "bin"

var extensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/pjpeg":   "jpg",
	"image/png":     "png",
	"image/webp":    "webp",
	"image/gif":     "gif",
	"image/svg+xml": "svg",
}

// ExtensionFor maps a Content-Type header to a file extension.
func ExtensionFor(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	if ext, ok := extensions[strings.ToLower(mt)]; ok {
		return ext
	}
	return DefaultExtension
}
