package block

import (
	"image"
	stdcolor "image/color"
)

// testImage renders a compact ASCII layout ('r'=red, '.'=white, '#'=black)
// as a one-pixel-per-codel image.Image, so block tests can build fixtures
// without constructing *grid.Grid by hand.
type testImage struct {
	rows []string
}

func (t *testImage) ColorModel() stdcolor.Model {
	return stdcolor.RGBAModel
}

func (t *testImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, len(t.rows[0]), len(t.rows))
}

func (t *testImage) At(x, y int) stdcolor.Color {
	switch t.rows[y][x] {
	case 'r':
		return stdcolor.RGBA{0xFF, 0x00, 0x00, 0xFF}
	case '#':
		return stdcolor.RGBA{0x00, 0x00, 0x00, 0xFF}
	default:
		return stdcolor.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	}
}
