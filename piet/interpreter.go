// Package piet implements the direction-pointer automaton and the
// operand-stack interpreter it drives: components D and E of the
// specification, kept in one package because dispatch depends on the
// blocks the machine discovers on every step.
package piet

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-piet/piet/block"
	"github.com/go-piet/piet/color"
	"github.com/go-piet/piet/grid"
	"github.com/rs/zerolog"
)

// Options configures an Interpreter.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer

	// Log receives a per-step trace (spec.md §6, --verbose) and soft
	// fault classifications (spec.md §7) when non-nil.
	Log *zerolog.Logger

	// MaxIter terminates the run after this many Machine.Step calls,
	// win or lose; 0 means unlimited (spec.md §6, --max-iter).
	MaxIter int
}

// Interpreter owns the operand stack and I/O streams for one Piet
// program run, per spec.md §4.5 and §5.
type Interpreter struct {
	machine *Machine
	stack   *Stack
	in      *bufio.Reader
	out     *bufio.Writer
	log     *zerolog.Logger
	maxIter int
	steps   int
}

// New builds an Interpreter over g, ready to run from (0,0).
func New(g *grid.Grid, opts Options) *Interpreter {
	finder := block.NewFinder(g)
	ip := &Interpreter{
		machine: NewMachine(g, finder),
		stack:   NewStack(),
		in:      bufio.NewReader(opts.Stdin),
		out:     bufio.NewWriter(opts.Stdout),
		log:     opts.Log,
		maxIter: opts.MaxIter,
	}
	return ip
}

// Stack exposes the operand stack for tests and tracing.
func (ip *Interpreter) Stack() *Stack {
	return ip.stack
}

// Run drives the direction machine to completion, dispatching each
// decoded command, until termination, the iteration cap, or ctx is
// cancelled. The output stream is always flushed before returning,
// whatever the outcome.
func (ip *Interpreter) Run(ctx context.Context) error {
	defer ip.out.Flush()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if ip.maxIter > 0 && ip.steps >= ip.maxIter {
			return nil
		}

		res, err := ip.machine.Step()
		if err != nil {
			return err
		}
		ip.steps++

		switch res.Kind {
		case StepTerminate:
			ip.traceTerminate(res.TermReason)
			return nil
		case StepRotate:
			ip.traceStep(CmdNone, "")
		case StepMove:
			ip.traceStep(CmdNone, "")
		case StepCommand:
			cmd := Decode(color.HueStep(res.PrevBlock.Color, res.NextColor), color.LightStep(res.PrevBlock.Color, res.NextColor))
			fault := ip.dispatch(ctx, cmd, res.PrevBlock)
			ip.traceStep(cmd, fault)
		}
	}
}

func (ip *Interpreter) traceStep(cmd CmdID, fault string) {
	if ip.log == nil {
		return
	}
	ev := ip.log.Debug().
		Int("step", ip.steps).
		Int("pc_row", ip.machine.PC().Row).
		Int("pc_col", ip.machine.PC().Col).
		Str("dp", ip.machine.DP().String()).
		Str("cc", ip.machine.CC().String()).
		Int("stack_len", ip.stack.Len())
	if cmd != CmdNone {
		ev = ev.Str("cmd", cmd.String())
	}
	if fault != "" {
		ev = ev.Str("fault", fault)
	}
	ev.Msg("step")
}

func (ip *Interpreter) traceTerminate(reason string) {
	if ip.log == nil {
		return
	}
	ip.log.Debug().Int("step", ip.steps).Str("reason", reason).Msg("terminate")
}

// dispatch executes cmd atomically. It returns a non-empty fault kind
// string if the command's preconditions were not met (spec.md §4.5/§7),
// in which case the stack is left exactly as it was found.
func (ip *Interpreter) dispatch(ctx context.Context, cmd CmdID, prevBlock *block.Block) string {
	s := ip.stack

	switch cmd {
	case CmdNone:
		return ""

	case CmdPush:
		s.Push(int64(prevBlock.Size()))
		return ""

	case CmdPop:
		if _, ok := s.Pop(); !ok {
			return "stack underflow"
		}
		return ""

	case CmdAdd:
		a, b, ok := s.Peek2()
		if !ok {
			return "stack underflow"
		}
		s.Drop2()
		s.Push(a + b)
		return ""

	case CmdSubtract:
		a, b, ok := s.Peek2()
		if !ok {
			return "stack underflow"
		}
		s.Drop2()
		s.Push(a - b)
		return ""

	case CmdMultiply:
		a, b, ok := s.Peek2()
		if !ok {
			return "stack underflow"
		}
		s.Drop2()
		s.Push(a * b)
		return ""

	case CmdDivide:
		a, b, ok := s.Peek2()
		if !ok {
			return "stack underflow"
		}
		if b == 0 {
			return "divide by zero"
		}
		s.Drop2()
		s.Push(a / b)
		return ""

	case CmdMod:
		a, b, ok := s.Peek2()
		if !ok {
			return "stack underflow"
		}
		if b == 0 {
			return "divide by zero"
		}
		s.Drop2()
		s.Push(floorMod(a, b))
		return ""

	case CmdNot:
		v, ok := s.Pop()
		if !ok {
			return "stack underflow"
		}
		if v == 0 {
			s.Push(1)
		} else {
			s.Push(0)
		}
		return ""

	case CmdGreater:
		a, b, ok := s.Peek2()
		if !ok {
			return "stack underflow"
		}
		s.Drop2()
		if a > b {
			s.Push(1)
		} else {
			s.Push(0)
		}
		return ""

	case CmdPointer:
		n, ok := s.Pop()
		if !ok {
			return "stack underflow"
		}
		ip.machine.RotatePointer(int(n))
		return ""

	case CmdSwitch:
		n, ok := s.Pop()
		if !ok {
			return "stack underflow"
		}
		ip.machine.SwitchChooser(int(n))
		return ""

	case CmdDuplicate:
		v, ok := s.Pop()
		if !ok {
			return "stack underflow"
		}
		s.Push(v)
		s.Push(v)
		return ""

	case CmdRoll:
		return ip.doRoll()

	case CmdInNumber:
		return ip.doInNumber(ctx)

	case CmdInChar:
		return ip.doInChar(ctx)

	case CmdOutNumber:
		v, ok := s.Pop()
		if !ok {
			return "stack underflow"
		}
		fmt.Fprintf(ip.out, "%d", v)
		return ""

	case CmdOutChar:
		v, ok := s.Pop()
		if !ok {
			return "stack underflow"
		}
		if !validScalarValue(v) {
			s.Push(v)
			return "invalid unicode scalar value"
		}
		ip.out.WriteRune(rune(v))
		return ""

	default:
		return ""
	}
}

func (ip *Interpreter) doRoll() string {
	s := ip.stack
	d, n, ok := s.Peek2()
	if !ok {
		return "stack underflow"
	}
	remaining := int64(s.Len() - 2)
	if d < 0 || d > remaining {
		return "invalid roll depth"
	}
	s.Drop2()
	if d == 0 {
		return ""
	}
	w, ok := s.Window(int(d))
	if !ok {
		return "invalid roll depth"
	}
	shift := int(floorMod(n, d))
	rotateRight(w, shift)
	return ""
}

// readResult carries the outcome of a blocking stdin read performed on a
// background goroutine so the caller can select on ctx cancellation
// (e.g. SIGINT while a Piet `in` command is parked on the terminal)
// without abandoning the underlying reader mid-read.
type readResult struct {
	line string
	r    rune
	err  error
}

// doInNumber implements `in(number)`: read a line, parse a decimal
// signed integer. A parse failure leaves the stack untouched but still
// consumes the line, per spec.md §4.5's one exception to atomicity.
func (ip *Interpreter) doInNumber(ctx context.Context) string {
	ch := make(chan readResult, 1)
	go func() {
		line, err := ip.in.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	var res readResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		return "cancelled"
	}

	line := strings.TrimRight(res.line, "\r\n")
	if line == "" && res.err != nil {
		return "input parse failure"
	}
	v, perr := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if perr != nil {
		return "input parse failure"
	}
	ip.stack.Push(v)
	return ""
}

// doInChar implements `in(char)`: read one Unicode scalar value from
// standard input and push its code point. EOF is a no-op.
func (ip *Interpreter) doInChar(ctx context.Context) string {
	ch := make(chan readResult, 1)
	go func() {
		r, _, err := ip.in.ReadRune()
		ch <- readResult{r: r, err: err}
	}()

	var res readResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		return "cancelled"
	}

	if res.err != nil {
		return "input exhausted"
	}
	ip.stack.Push(int64(res.r))
	return ""
}

func validScalarValue(v int64) bool {
	if v < 0 || v > utf8.MaxRune {
		return false
	}
	r := rune(v)
	return utf8.ValidRune(r)
}
