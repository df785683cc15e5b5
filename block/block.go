// Package block discovers maximal 4-connected same-color regions in a
// codel grid and computes their eight directional extrema, caching
// results by coordinate the way the teacher's mappers package caches
// lookups by numeric mapper id.
package block

import (
	"fmt"

	"github.com/go-piet/piet/color"
	"github.com/go-piet/piet/grid"
	"github.com/go-piet/piet/ptr"
)

// Coord is a (row, col) position in a Grid.
type Coord struct {
	Row, Col int
}

// Block is a maximal 4-connected region of codels sharing one chromatic
// color, along with its eight (DP, CC) directional extrema.
type Block struct {
	Color   color.Color
	Members []Coord
	extrema [8]Coord
}

// Size returns the codel count of the block, the operand `push` uses.
func (b *Block) Size() int {
	return len(b.Members)
}

// Extremum returns the unique member codel selected for state s, per the
// two-stage tie-break of spec.md §4.3.
func (b *Block) Extremum(s ptr.State) Coord {
	return b.extrema[s.Index()]
}

// ErrNotChromatic is returned when Find is asked to discover a block at
// a white or black codel.
var ErrNotChromatic = fmt.Errorf("coordinate is not a chromatic codel")

// Finder discovers and caches blocks for one Grid. Its lifetime is the
// lifetime of the interpreter run: the grid is immutable, so a block once
// discovered never needs to be recomputed.
type Finder struct {
	grid  *grid.Grid
	cache map[Coord]*Block
}

// NewFinder returns a Finder over g.
func NewFinder(g *grid.Grid) *Finder {
	return &Finder{grid: g, cache: make(map[Coord]*Block)}
}

// Find returns the block containing at, discovering it via flood fill on
// first access and serving cached results thereafter. at must name a
// chromatic codel.
func (f *Finder) Find(at Coord) (*Block, error) {
	if b, ok := f.cache[at]; ok {
		return b, nil
	}

	c := f.grid.At(at.Row, at.Col)
	if !c.Chromatic() {
		return nil, fmt.Errorf("(%d,%d) is %v: %w", at.Row, at.Col, c, ErrNotChromatic)
	}

	members := floodFill(f.grid, at, c)
	b := &Block{Color: c, Members: members}
	computeExtrema(b)

	for _, m := range members {
		f.cache[m] = b
	}
	return b, nil
}

func floodFill(g *grid.Grid, start Coord, c color.Color) []Coord {
	visited := map[Coord]bool{start: true}
	queue := []Coord{start}
	members := make([]Coord, 0, 16)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		members = append(members, cur)

		for _, d := range []ptr.DP{ptr.Right, ptr.Down, ptr.Left, ptr.Up} {
			dr, dc := d.Delta()
			next := Coord{Row: cur.Row + dr, Col: cur.Col + dc}
			if visited[next] || !g.InBounds(next.Row, next.Col) {
				continue
			}
			if g.At(next.Row, next.Col) != c {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}

	return members
}

// axisValue returns a scalar such that the member(s) of a block
// maximizing axisValue(d, ...) are the ones furthest along direction d.
func axisValue(d ptr.DP, c Coord) int {
	switch d {
	case ptr.Right:
		return c.Col
	case ptr.Left:
		return -c.Col
	case ptr.Down:
		return c.Row
	case ptr.Up:
		return -c.Row
	default:
		return 0
	}
}

func computeExtrema(b *Block) {
	for _, s := range ptr.All() {
		dp := s.DP()
		best := b.Members[0]
		bestVal := axisValue(dp, best)
		for _, m := range b.Members[1:] {
			if v := axisValue(dp, m); v > bestVal {
				best, bestVal = m, v
			}
		}

		orth := ptr.Orthogonal(dp, s.CC())
		var tied []Coord
		for _, m := range b.Members {
			if axisValue(dp, m) == bestVal {
				tied = append(tied, m)
			}
		}

		winner := tied[0]
		winnerVal := axisValue(orth, winner)
		for _, m := range tied[1:] {
			if v := axisValue(orth, m); v > winnerVal {
				winner, winnerVal = m, v
			}
		}

		b.extrema[s.Index()] = winner
	}
}
