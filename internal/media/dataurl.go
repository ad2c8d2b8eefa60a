package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidDataURL indicates that an inbound image string could not be decoded.
var ErrInvalidDataURL = errors.New("media: invalid data URL")

// Image is a decoded inbound photo.
type Image struct {
	Data     []byte
	MIMEType string
}

// DecodeDataURL decodes a "<prefix>,<base64>" string. Everything after the first comma is the
// payload; the prefix is only consulted for the MIME type.
func DecodeDataURL(raw string) (Image, error) {
	prefix, payload, found := strings.Cut(strings.TrimSpace(raw), ",")
	if !found {
		return Image{}, fmt.Errorf("%w: missing comma separator", ErrInvalidDataURL)
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}

	return Image{Data: data, MIMEType: DetectMIME(data, mimeFromPrefix(prefix))}, nil
}

func decodeBase64(payload string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(clean)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

// mimeFromPrefix reads "data:image/png;base64" style prefixes. Anything that is not a
// type/subtype pair yields "".
func mimeFromPrefix(prefix string) string {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "data:")
	mime, _, _ := strings.Cut(prefix, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	if !strings.Contains(mime, "/") {
		return ""
	}
	return mime
}

// DetectMIME returns the image type to send upstream: the declared type when it is an image
// type, otherwise the type sniffed from data, otherwise image/jpeg.
func DetectMIME(data []byte, declared string) string {
	if mime := strings.ToLower(strings.TrimSpace(declared)); strings.HasPrefix(mime, "image/") {
		return mime
	}
	if mime := http.DetectContentType(data); strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/jpeg"
}
