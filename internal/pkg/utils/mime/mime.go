package mime

import (
	"errors"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage is returned when uploaded content is not an accepted photo format.
var ErrNotImage = errors.New("file is not a supported image")

// imageExt maps accepted photo MIME types to the extension used in blob keys.
var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"image/tiff": ".tiff",
}

// DetectImage checks that content is a photo format we store and returns its
// MIME type and canonical extension. The file name is never trusted here.
func DetectImage(content []byte) (contentType, ext string, err error) {
	m := mimetype.Detect(content)
	for mt := m; mt != nil; mt = mt.Parent() {
		if e, ok := imageExt[mt.String()]; ok {
			return mt.String(), e, nil
		}
	}
	return "", "", ErrNotImage
}
