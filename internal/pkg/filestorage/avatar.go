package filestorage

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// AvatarQuality is the JPEG quality of stored avatars
const AvatarQuality = 85

// NormalizeAvatar decodes an uploaded image, honours EXIF orientation,
// crops it to a centred square of size pixels and re-encodes it as JPEG.
func NormalizeAvatar(r io.Reader, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid avatar size %d", size)
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	square := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, square, imaging.JPEG, imaging.JPEGQuality(AvatarQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
