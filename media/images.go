// Package media handles uploaded screenshots: format validation, metadata
// extraction, thumbnail generation for sample previews, and the base64
// round trip used when embedding images inside stored documents.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
)

type ImageOrientation int

const (
	OrientationUnknown ImageOrientation = iota
	OrientationPortrait
	OrientationLandscape
	OrientationSquare
)

// ErrUnsupportedFormat is returned for uploads that are not PNG or JPEG.
var ErrUnsupportedFormat = errors.New("unsupported image format: screenshots must be PNG or JPEG")

// ImageInfo contains screenshot metadata extracted at upload time.
type ImageInfo struct {
	Width           int
	Height          int
	Orientation     ImageOrientation
	EXIFOrientation int
	Format          string
	Size            int
}

// ValidateScreenshot checks that data decodes as a PNG or JPEG image and
// returns its metadata. The annotation form accepts only these two formats,
// matching what screen-capture tools produce.
func ValidateScreenshot(data []byte) (*ImageInfo, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	switch format {
	case "png", "jpeg":
	default:
		return nil, ErrUnsupportedFormat
	}

	info := &ImageInfo{
		Width:  config.Width,
		Height: config.Height,
		Format: format,
		Size:   len(data),
	}
	applyOrientation(info, bytes.NewReader(data))
	return info, nil
}

// applyOrientation fills in the orientation fields, preferring EXIF data
// when present and falling back to a dimension comparison. Screenshots
// rarely carry EXIF, but captures forwarded from phones do.
func applyOrientation(info *ImageInfo, r io.Reader) {
	orientationFromDimensions := func(width, height int) ImageOrientation {
		switch {
		case width > height:
			return OrientationLandscape
		case height > width:
			return OrientationPortrait
		default:
			return OrientationSquare
		}
	}

	exifData, err := exif.Decode(r)
	if err != nil {
		info.Orientation = orientationFromDimensions(info.Width, info.Height)
		return
	}

	tag, err := exifData.Get(exif.Orientation)
	if err != nil {
		info.Orientation = orientationFromDimensions(info.Width, info.Height)
		return
	}

	value, err := tag.Int(0)
	if err != nil {
		info.Orientation = orientationFromDimensions(info.Width, info.Height)
		return
	}
	info.EXIFOrientation = value

	// EXIF orientation values:
	// 1 = Normal (0°)
	// 2 = Flipped horizontally
	// 3 = Rotated 180°
	// 4 = Flipped vertically
	// 5 = Rotated 90° CCW and flipped horizontally
	// 6 = Rotated 90° CW
	// 7 = Rotated 90° CW and flipped horizontally
	// 8 = Rotated 90° CCW
	switch value {
	case 5, 6, 7, 8:
		// Rotated 90° - stored dimensions are swapped
		info.Orientation = orientationFromDimensions(info.Height, info.Width)
	default:
		info.Orientation = orientationFromDimensions(info.Width, info.Height)
	}
}

// Thumbnail scales a screenshot down to maxWidth pixels wide, preserving
// aspect ratio, and re-encodes it in the source format. Images already
// narrower than maxWidth are returned re-encoded but unscaled.
func Thumbnail(data []byte, maxWidth int) ([]byte, error) {
	if maxWidth <= 0 {
		return nil, errors.New("maxWidth must be greater than 0")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = resize.Resize(uint(maxWidth), 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, img)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeBase64 encodes raw image bytes for embedding in a document.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes an embedded image back to raw bytes.
func DecodeBase64(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return data, nil
}
