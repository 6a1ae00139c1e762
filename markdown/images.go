package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"

	// Extended decoders, registered with image.Decode.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	isSvg "github.com/h2non/go-is-svg"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

var (
	// ErrImageNotFound is returned when an image path does not exist.
	ErrImageNotFound = errors.New("image not found")
	// ErrUnsupportedImage is returned when no decoder accepts the file.
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// defaultSVGSize is used for SVGs without a usable viewBox.
const defaultSVGSize = 512

// Image is a decoded image handle kept alive by a Session.
type Image struct {
	Path   string
	Format string
	Data   image.Image
}

// Bounds returns the pixel bounds of the decoded image.
func (i *Image) Bounds() image.Rectangle {
	if i == nil || i.Data == nil {
		return image.Rectangle{}
	}
	return i.Data.Bounds()
}

// ResolvePath joins a relative path against base and returns an absolute,
// cleaned path.
func ResolvePath(base, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// ImageLoader decodes image files. The native tier handles PNG and GIF; the
// extended tier adds JPEG, BMP, TIFF, WebP and SVG.
type ImageLoader struct {
	Extended bool
}

// DefaultImageLoader has both decode tiers enabled.
var DefaultImageLoader = ImageLoader{Extended: true}

// Load decodes the image at an absolute path. A missing file yields
// ErrImageNotFound without attempting to decode.
func (l ImageLoader) Load(path string) (*Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}

	if img, format, err := decodeNative(data); err == nil {
		return &Image{Path: path, Format: format, Data: img}, nil
	}
	if l.Extended {
		if img, format, err := decodeExtended(path, data); err == nil {
			return &Image{Path: path, Format: format, Data: img}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, path)
}

var (
	pngMagic = []byte("\x89PNG\r\n\x1a\n")
	gifMagic = []byte("GIF8")
)

func decodeNative(data []byte) (image.Image, string, error) {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		img, err := png.Decode(bytes.NewReader(data))
		return img, "png", err
	case bytes.HasPrefix(data, gifMagic):
		img, err := gif.Decode(bytes.NewReader(data))
		return img, "gif", err
	default:
		return nil, "", ErrUnsupportedImage
	}
}

func decodeExtended(path string, data []byte) (image.Image, string, error) {
	if filepath.Ext(path) == ".svg" || isSvg.Is(data) {
		img, err := rasterizeSVG(data)
		return img, "svg", err
	}
	return image.Decode(bytes.NewReader(data))
}

func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w := int(icon.ViewBox.W)
	h := int(icon.ViewBox.H)
	if w <= 0 {
		w = defaultSVGSize
	}
	if h <= 0 {
		h = defaultSVGSize
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.SetTarget(0, 0, float64(w), float64(h))
	icon.Draw(raster, 1.0)
	return img, nil
}
