// Package color classifies raw pixels into Piet's twenty canonical colors
// and provides the cyclic hue/lightness arithmetic the command dispatcher
// decodes transitions from.
package color

import "fmt"

// Color is one of Piet's twenty canonical colors: the six hues crossed
// with three lightnesses, plus White and Black.
type Color uint8

const (
	LightRed Color = iota
	Red
	DarkRed
	LightYellow
	Yellow
	DarkYellow
	LightGreen
	Green
	DarkGreen
	LightCyan
	Cyan
	DarkCyan
	LightBlue
	Blue
	DarkBlue
	LightMagenta
	Magenta
	DarkMagenta
	White
	Black
)

const numHues = 6
const numLightness = 3

func (c Color) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("Color(%d)", uint8(c))
}

var names = map[Color]string{
	LightRed: "light red", Red: "red", DarkRed: "dark red",
	LightYellow: "light yellow", Yellow: "yellow", DarkYellow: "dark yellow",
	LightGreen: "light green", Green: "green", DarkGreen: "dark green",
	LightCyan: "light cyan", Cyan: "cyan", DarkCyan: "dark cyan",
	LightBlue: "light blue", Blue: "blue", DarkBlue: "dark blue",
	LightMagenta: "light magenta", Magenta: "magenta", DarkMagenta: "dark magenta",
	White: "white", Black: "black",
}

// Chromatic reports whether c is one of the 18 hue/lightness colors (as
// opposed to White or Black).
func (c Color) Chromatic() bool {
	return c < White
}

// Hue returns the color's hue index (0..5), valid only for chromatic
// colors.
func (c Color) Hue() int {
	return int(c) / numLightness
}

// Lightness returns the color's lightness index (0..2: light, normal,
// dark), valid only for chromatic colors.
func (c Color) Lightness() int {
	return int(c) % numLightness
}

// HueStep returns the cyclic forward distance from a's hue to b's hue,
// in 0..5. Both colors must be chromatic.
func HueStep(a, b Color) int {
	return floorMod(b.Hue()-a.Hue(), numHues)
}

// LightStep returns the cyclic forward distance from a's lightness to
// b's lightness, in 0..2. Both colors must be chromatic.
func LightStep(a, b Color) int {
	return floorMod(b.Lightness()-a.Lightness(), numLightness)
}

func floorMod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

// palette is the closed set of 20 canonical RGB triples from the Piet
// reference specification. Alpha is never consulted by callers.
var palette = map[[3]uint8]Color{
	{0xFF, 0xC0, 0xC0}: LightRed,
	{0xFF, 0x00, 0x00}: Red,
	{0xC0, 0x00, 0x00}: DarkRed,
	{0xFF, 0xFF, 0xC0}: LightYellow,
	{0xFF, 0xFF, 0x00}: Yellow,
	{0xC0, 0xC0, 0x00}: DarkYellow,
	{0xC0, 0xFF, 0xC0}: LightGreen,
	{0x00, 0xFF, 0x00}: Green,
	{0x00, 0xC0, 0x00}: DarkGreen,
	{0xC0, 0xFF, 0xFF}: LightCyan,
	{0x00, 0xFF, 0xFF}: Cyan,
	{0x00, 0xC0, 0xC0}: DarkCyan,
	{0xC0, 0xC0, 0xFF}: LightBlue,
	{0x00, 0x00, 0xFF}: Blue,
	{0x00, 0x00, 0xC0}: DarkBlue,
	{0xFF, 0xC0, 0xFF}: LightMagenta,
	{0xFF, 0x00, 0xFF}: Magenta,
	{0xC0, 0x00, 0xC0}: DarkMagenta,
	{0xFF, 0xFF, 0xFF}: White,
	{0x00, 0x00, 0x00}: Black,
}

// UnknownPolicy governs how pixels outside the 20-color palette are
// handled.
type UnknownPolicy uint8

const (
	// Strict fails the run on any unrecognized pixel.
	Strict UnknownPolicy = iota
	// FallbackWhite reclassifies unrecognized pixels as White.
	FallbackWhite
	// FallbackBlack reclassifies unrecognized pixels as Black.
	FallbackBlack
)

// ErrUnknownColor is wrapped by Classify when a pixel falls outside the
// palette under Strict policy.
var ErrUnknownColor = fmt.Errorf("pixel is not one of the 20 canonical Piet colors")

// UnknownColorError names the offending coordinate and RGB triple.
type UnknownColorError struct {
	X, Y    int
	R, G, B uint8
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("unknown color #%02X%02X%02X at (%d,%d): %v", e.R, e.G, e.B, e.X, e.Y, ErrUnknownColor)
}

func (e *UnknownColorError) Unwrap() error {
	return ErrUnknownColor
}

// Classify maps a raw RGB triple (alpha already discarded by the caller)
// at coordinate (x, y) to a canonical Color, applying policy to any pixel
// outside the 20-entry palette.
func Classify(x, y int, r, g, b uint8, policy UnknownPolicy) (Color, error) {
	if c, ok := palette[[3]uint8{r, g, b}]; ok {
		return c, nil
	}

	switch policy {
	case FallbackWhite:
		return White, nil
	case FallbackBlack:
		return Black, nil
	default:
		return 0, &UnknownColorError{X: x, Y: y, R: r, G: g, B: b}
	}
}
