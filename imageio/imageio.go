// Package imageio decodes a Piet source image. It registers every raster
// format the domain stack provides, mirroring the blank-import decoder
// registration idiom of dlecorfec-progjpeg's cmd/progjpeg/main.go.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/HugoSmits86/nativewebp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

func init() {
	// nativewebp does not self-register with image.RegisterFormat, so
	// wire it up the same way the stdlib format packages register
	// themselves in their own init() functions.
	image.RegisterFormat("webp", "RIFF????WEBP", nativewebp.Decode, nativewebp.DecodeConfig)
}

// Load opens path and decodes it via the standard image.Decode registry.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening image %q: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image %q: %w", path, err)
	}
	return img, format, nil
}

// DecodeConfig peeks at path's dimensions without decoding the full
// image, for callers that only need width/height. The --dump-grid
// output does not use it; it reports the grid after it is built.
func DecodeConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("opening image %q: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("reading image header %q: %w", path, err)
	}
	return cfg, format, nil
}

// decodeConfigFromBytes sniffs format and dimensions from an in-memory
// buffer; used by tests that build fixtures without touching disk.
func decodeConfigFromBytes(b []byte) (image.Config, string, error) {
	return image.DecodeConfig(bytes.NewReader(b))
}
