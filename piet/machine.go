package piet

import (
	"github.com/go-piet/piet/block"
	"github.com/go-piet/piet/color"
	"github.com/go-piet/piet/grid"
	"github.com/go-piet/piet/ptr"
)

// StepKind classifies the outcome of one Machine.Step call.
type StepKind int

const (
	// StepCommand is a committed chromatic-to-chromatic transition: the
	// interpreter must decode and execute a command.
	StepCommand StepKind = iota
	// StepMove is a committed white-slide exit: PC changed but no
	// command is decoded (the transition is color-neutral).
	StepMove
	// StepRotate is a pure state rotation with no PC change, from
	// bouncing off an obstacle.
	StepRotate
	// StepTerminate means the program cannot advance further.
	StepTerminate
)

// StepResult describes the outcome of one direction-machine step.
type StepResult struct {
	Kind StepKind

	// PrevBlock is valid for StepCommand only; NextColor and NextPC are
	// valid for StepCommand and StepMove.
	PrevBlock *block.Block
	NextColor color.Color
	NextPC    block.Coord

	// Valid for StepTerminate only.
	TermReason string
}

// slideKey is a (codel, DP) pair tracked within one white-slide episode
// to detect cycles, per spec.md §9.
type slideKey struct {
	at block.Coord
	dp ptr.DP
}

// Machine is the direction-pointer automaton of spec.md §4.4: it holds
// (DP, CC, PC, attempt counter) and computes the next executing codel,
// or termination, on each Step call.
type Machine struct {
	grid   *grid.Grid
	finder *block.Finder

	state    ptr.State
	pc       block.Coord
	attempts int
}

// NewMachine returns a Machine positioned at (0,0) with DP=right,
// CC=left, per spec.md §3.
func NewMachine(g *grid.Grid, f *block.Finder) *Machine {
	return &Machine{grid: g, finder: f, state: ptr.Initial, pc: block.Coord{Row: 0, Col: 0}}
}

// PC returns the current program counter.
func (m *Machine) PC() block.Coord {
	return m.pc
}

// DP returns the current direction pointer.
func (m *Machine) DP() ptr.DP {
	return m.state.DP()
}

// CC returns the current codel chooser.
func (m *Machine) CC() ptr.CC {
	return m.state.CC()
}

// RotatePointer rotates DP by n quarter turns clockwise (n may be
// negative); used by the `pointer` command. O(1).
func (m *Machine) RotatePointer(n int) {
	m.state = m.state.RotateBy(n)
}

// SwitchChooser toggles CC iff n is odd; used by the `switch` command.
// O(1).
func (m *Machine) SwitchChooser(n int) {
	m.state = m.state.ToggleCCBy(n)
}

// Step advances the machine by one step, per spec.md §4.4.
func (m *Machine) Step() (StepResult, error) {
	cur, err := m.finder.Find(m.pc)
	if err != nil {
		return StepResult{}, err
	}

	ext := cur.Extremum(m.state)
	dp := m.state.DP()
	dr, dc := dp.Delta()
	candidate := block.Coord{Row: ext.Row + dr, Col: ext.Col + dc}

	if !m.grid.InBounds(candidate.Row, candidate.Col) {
		return m.obstacle()
	}

	switch c := m.grid.At(candidate.Row, candidate.Col); c {
	case color.Black:
		return m.obstacle()
	case color.White:
		return m.slide(candidate, dp)
	default:
		m.pc = candidate
		m.attempts = 0
		return StepResult{Kind: StepCommand, PrevBlock: cur, NextColor: c, NextPC: candidate}, nil
	}
}

// obstacle handles a failed exit attempt: black codel, or the edge of
// the grid, treated identically per spec.md §3's invariants.
func (m *Machine) obstacle() (StepResult, error) {
	m.attempts++
	if m.attempts >= 8 {
		return StepResult{Kind: StepTerminate, TermReason: "eight consecutive obstacle failures"}, nil
	}

	if m.attempts%2 == 1 {
		m.state = m.state.ToggleCC()
	} else {
		m.state = m.state.RotateCW()
	}
	return StepResult{Kind: StepRotate}, nil
}

// slide walks a straight line across a white region starting at (and
// including) start, toggling CC+rotating DP whenever it hits an
// obstacle, until it reaches a chromatic codel (success) or repeats a
// (codel, DP) pair (a cycle, which terminates the program).
func (m *Machine) slide(start block.Coord, dp ptr.DP) (StepResult, error) {
	visited := map[slideKey]bool{}
	cur := start

	for {
		key := slideKey{at: cur, dp: dp}
		if visited[key] {
			return StepResult{Kind: StepTerminate, TermReason: "white slide cycle"}, nil
		}
		visited[key] = true

		dr, dc := dp.Delta()
		next := block.Coord{Row: cur.Row + dr, Col: cur.Col + dc}

		if !m.grid.InBounds(next.Row, next.Col) {
			m.state = m.state.ToggleCC().RotateCW()
			dp = m.state.DP()
			continue
		}

		switch c := m.grid.At(next.Row, next.Col); c {
		case color.Black:
			m.state = m.state.ToggleCC().RotateCW()
			dp = m.state.DP()
		case color.White:
			cur = next
		default:
			m.pc = next
			m.attempts = 0
			return StepResult{Kind: StepMove, NextColor: c, NextPC: next}, nil
		}
	}
}
