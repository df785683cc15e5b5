package piet

import (
	"image"
	stdcolor "image/color"

	"github.com/go-piet/piet/grid"
)

// legendImage renders an ASCII layout into a one-pixel-per-codel
// image.Image via a caller-supplied rune->RGB legend, letting tests
// build tiny synthetic Piet programs without binary fixtures.
type legendImage struct {
	rows   []string
	legend map[byte][3]uint8
}

func (l *legendImage) ColorModel() stdcolor.Model { return stdcolor.RGBAModel }

func (l *legendImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, len(l.rows[0]), len(l.rows))
}

func (l *legendImage) At(x, y int) stdcolor.Color {
	rgb := l.legend[l.rows[y][x]]
	return stdcolor.RGBA{rgb[0], rgb[1], rgb[2], 0xFF}
}

var defaultLegend = map[byte][3]uint8{
	'R': {0xFF, 0x00, 0x00}, // Red
	'D': {0xC0, 0x00, 0x00}, // DarkRed
	'M': {0xFF, 0xC0, 0xFF}, // LightMagenta
	'.': {0xFF, 0xFF, 0xFF}, // White
	'#': {0x00, 0x00, 0x00}, // Black
	'G': {0x00, 0xFF, 0x00}, // Green
}

func buildGrid(rows []string) (*grid.Grid, error) {
	img := &legendImage{rows: rows, legend: defaultLegend}
	return grid.Build(img, grid.Options{CodelSize: 1})
}
