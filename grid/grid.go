// Package grid builds the immutable codel grid the rest of the
// interpreter walks: it classifies every pixel, infers or validates the
// codel size, and folds the pixel-resolution classification down to one
// canonical color per codel.
package grid

import (
	"fmt"
	"image"
	"sort"

	"github.com/go-piet/piet/color"
)

// ErrInvalidCodelSize is wrapped when a caller-supplied codel size does
// not divide the image dimensions, or does but the image is not
// color-consistent at that size.
var ErrInvalidCodelSize = fmt.Errorf("not a valid codel size for this image")

// Grid is the H'xW' array of canonical colors the rest of the
// interpreter operates on. It is built once and never mutated.
type Grid struct {
	Rows, Cols int
	CodelSize  int
	colors     [][]color.Color // colors[row][col]
}

// At returns the canonical color at (row, col). The caller must check
// InBounds first; At panics on an out-of-range coordinate, matching the
// teacher's slice-indexed memory accessors which never bounds-check
// internally.
func (g *Grid) At(row, col int) color.Color {
	return g.colors[row][col]
}

// InBounds reports whether (row, col) lies within the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// Options configures grid construction.
type Options struct {
	// CodelSize forces the codel size; 0 means infer the maximum valid
	// size per spec.md §4.2.
	CodelSize int
	// Policy governs pixels outside the 20-color palette.
	Policy color.UnknownPolicy
}

// Build classifies img's pixels and folds them into a Grid, inferring or
// validating the codel size per opts.
func Build(img image.Image, opts Options) (*Grid, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	pixels, err := classifyPixels(img, opts.Policy)
	if err != nil {
		return nil, err
	}

	n := opts.CodelSize
	if n == 0 {
		n, err = inferCodelSize(pixels, w, h)
		if err != nil {
			return nil, err
		}
	} else {
		if w%n != 0 || h%n != 0 || !isUniform(pixels, w, h, n) {
			return nil, fmt.Errorf("codel size %d: %w", n, ErrInvalidCodelSize)
		}
	}

	rows, cols := h/n, w/n
	colors := make([][]color.Color, rows)
	for r := 0; r < rows; r++ {
		colors[r] = make([]color.Color, cols)
		for c := 0; c < cols; c++ {
			colors[r][c] = pixels[r*n][c*n]
		}
	}

	return &Grid{Rows: rows, Cols: cols, CodelSize: n, colors: colors}, nil
}

// classifyPixels classifies every pixel of img into pixels[y][x], in a
// single linear pass over the image area.
func classifyPixels(img image.Image, policy color.UnknownPolicy) ([][]color.Color, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	pixels := make([][]color.Color, h)
	for y := 0; y < h; y++ {
		pixels[y] = make([]color.Color, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// image.Color.RGBA() returns 16-bit-per-channel
			// premultiplied values; the top byte of each is the
			// 8-bit channel value for the opaque, non-premultiplied
			// sources a Piet program image will always be.
			c, err := color.Classify(x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8), policy)
			if err != nil {
				return nil, err
			}
			pixels[y][x] = c
		}
	}
	return pixels, nil
}

// isUniform reports whether every n x n aligned block of pixels
// classifies to a single color.
func isUniform(pixels [][]color.Color, w, h, n int) bool {
	for by := 0; by < h; by += n {
		for bx := 0; bx < w; bx += n {
			want := pixels[by][bx]
			for y := by; y < by+n; y++ {
				for x := bx; x < bx+n; x++ {
					if pixels[y][x] != want {
						return false
					}
				}
			}
		}
	}
	return true
}

// inferCodelSize returns the maximum n that divides both w and h and is
// uniform under isUniform, by walking the divisors of gcd(w, h) from
// largest to smallest.
func inferCodelSize(pixels [][]color.Color, w, h int) (int, error) {
	for _, n := range divisorsDesc(gcd(w, h)) {
		if isUniform(pixels, w, h, n) {
			return n, nil
		}
	}
	// n=1 always divides and is trivially uniform (one pixel per
	// block), so this is unreachable, but keep the error path for
	// malformed inputs (e.g. zero-area images).
	return 0, fmt.Errorf("no valid codel size found: %w", ErrInvalidCodelSize)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// divisorsDesc returns every divisor of n, largest first.
func divisorsDesc(n int) []int {
	if n <= 0 {
		return nil
	}
	var out []int
	for i := 1; i*i <= n; i++ {
		if n%i == 0 {
			out = append(out, i)
			if j := n / i; j != i {
				out = append(out, j)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
