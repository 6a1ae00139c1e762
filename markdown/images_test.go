package markdown

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string, encode func(f *os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, encode(f))
}

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 20"><rect width="10" height="20" fill="red"/></svg>`

func TestImageLoader(t *testing.T) {
	dir := t.TempDir()
	rgba := image.NewRGBA(image.Rect(0, 0, 3, 3))
	rgba.Set(1, 1, color.White)

	pngPath := filepath.Join(dir, "a.png")
	writePNG(t, pngPath, 3, 3)

	gifPath := filepath.Join(dir, "a.gif")
	writeImage(t, gifPath, func(f *os.File) error {
		return gif.Encode(f, image.NewPaletted(image.Rect(0, 0, 5, 2), palette.Plan9), nil)
	})

	jpegPath := filepath.Join(dir, "a.jpg")
	writeImage(t, jpegPath, func(f *os.File) error {
		return jpeg.Encode(f, rgba, nil)
	})

	svgPath := filepath.Join(dir, "a.svg")
	require.NoError(t, os.WriteFile(svgPath, []byte(testSVG), 0o644))

	textPath := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello"), 0o644))

	tests := []struct {
		name     string
		loader   ImageLoader
		path     string
		format   string
		bounds   image.Rectangle
		expected error
	}{
		{"png native", ImageLoader{}, pngPath, "png", image.Rect(0, 0, 3, 3), nil},
		{"gif native", ImageLoader{}, gifPath, "gif", image.Rect(0, 0, 5, 2), nil},
		{"jpeg extended", DefaultImageLoader, jpegPath, "jpeg", image.Rect(0, 0, 3, 3), nil},
		{"jpeg without extended tier", ImageLoader{}, jpegPath, "", image.Rectangle{}, ErrUnsupportedImage},
		{"svg extended", DefaultImageLoader, svgPath, "svg", image.Rect(0, 0, 10, 20), nil},
		{"svg without extended tier", ImageLoader{}, svgPath, "", image.Rectangle{}, ErrUnsupportedImage},
		{"not an image", DefaultImageLoader, textPath, "", image.Rectangle{}, ErrUnsupportedImage},
		{"missing", DefaultImageLoader, filepath.Join(dir, "nope.png"), "", image.Rectangle{}, ErrImageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := tt.loader.Load(tt.path)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
				assert.Nil(t, img)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, img.Format)
			assert.Equal(t, tt.bounds, img.Bounds())
			assert.Equal(t, tt.path, img.Path)
		})
	}
}

func TestResolvePath(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "docs", "book")
	assert.Equal(t, filepath.Join(base, "img", "a.png"), ResolvePath(base, "img/a.png"))
	assert.Equal(t, filepath.Join(base, "a.png"), ResolvePath(base, "./x/../a.png"))

	abs := filepath.Join(string(filepath.Separator), "elsewhere", "b.png")
	assert.Equal(t, abs, ResolvePath(base, abs))
}

func TestImageBoundsNil(t *testing.T) {
	var img *Image
	assert.Equal(t, image.Rectangle{}, img.Bounds())
}
