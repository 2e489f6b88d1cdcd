package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	MaxImageWidth  = 1024
	MaxImageHeight = 1024
	JPEGQuality    = 80
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// ImageExtensions lists the file extensions offered for image sends, sorted.
func ImageExtensions() []string {
	return sortedKeys(imageExtensions)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for ext := range set {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// PreparedImage is a resized JPEG ready for upload.
type PreparedImage struct {
	JPEG   []byte
	Base64 string
	Width  int
	Height int
}

// DataURL returns the image as a data URL for the local transcript.
func (p PreparedImage) DataURL() string {
	return "data:image/jpeg;base64," + p.Base64
}

// PrepareImageFile reads an image from disk and prepares it.
func PrepareImageFile(path string) (PreparedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PreparedImage{}, fmt.Errorf("failed to read image: %w", err)
	}
	return PrepareImage(data)
}

// PrepareImage scales the image down to fit 1024x1024, keeping its aspect
// ratio, and re-encodes it as JPEG at quality 80. Smaller images keep their
// size.
func PrepareImage(data []byte) (PreparedImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return PreparedImage{}, fmt.Errorf("not a supported image: %w", err)
	}

	img = fit(img)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return PreparedImage{}, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return PreparedImage{
		JPEG:   buf.Bytes(),
		Base64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func fit(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= MaxImageWidth && b.Dy() <= MaxImageHeight {
		return img
	}
	return imaging.Fit(img, MaxImageWidth, MaxImageHeight, imaging.Lanczos)
}

// DecodeBase64 accepts raw base64 or a data URL.
func DecodeBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i >= 0 {
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	return data, nil
}
