package mimetypes

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown MIME = "unknown"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWebP MIME = "image/webp"
	ImageSVG  MIME = "image/svg+xml"
)

// Detect sniffs the media type of the leading bytes of a file, parameters stripped.
func Detect(data []byte) MIME {
	mt, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return Unknown
	}
	return MIME(mt)
}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// IsImage reports whether the media type can be shown as a profile icon.
func (m MIME) IsImage() bool {
	return strings.HasPrefix(string(m), "image/")
}
