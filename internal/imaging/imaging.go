// Package imaging re-encodes uploaded images before they reach object
// storage, mirroring what the upload endpoints do to every file: decode,
// cap the longest edge, and write JPEG at the route's quality setting.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/nfnt/resize"
)

// IsImage sniffs the payload's content type.
func IsImage(data []byte) bool {
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

// Recode decodes data, downscales it so neither dimension exceeds maxDim
// (keeping aspect ratio; smaller images pass through), and re-encodes as
// JPEG at the given quality.
func Recode(data []byte, maxDim uint, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) > maxDim || uint(bounds.Dy()) > maxDim {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
