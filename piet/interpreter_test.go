package piet

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func newTestInterpreter(t *testing.T, rows []string, stdin string) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	g, err := buildGrid(rows)
	if err != nil {
		t.Fatalf("buildGrid: %v", err)
	}
	var out bytes.Buffer
	ip := New(g, Options{Stdin: strings.NewReader(stdin), Stdout: &out})
	return ip, &out
}

func TestRunPushAndOutNumberEndToEnd(t *testing.T) {
	g, err := buildGrid([]string{"RRDM"})
	if err != nil {
		t.Fatalf("buildGrid: %v", err)
	}
	var out bytes.Buffer
	ip := New(g, Options{Stdin: strings.NewReader(""), Stdout: &out, MaxIter: 2})

	if err := ip.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.String(); got != "2" {
		t.Errorf("output = %q, want %q", got, "2")
	}
	if ip.Stack().Len() != 0 {
		t.Errorf("stack len = %d, want 0 after push;out(number)", ip.Stack().Len())
	}
}

func TestDispatchStackUnderflowLeavesStackUntouched(t *testing.T) {
	cmds := []CmdID{
		CmdPop, CmdAdd, CmdSubtract, CmdMultiply, CmdDivide, CmdMod, CmdNot,
		CmdGreater, CmdPointer, CmdSwitch, CmdDuplicate, CmdRoll, CmdOutNumber, CmdOutChar,
	}
	for _, cmd := range cmds {
		ip, _ := newTestInterpreter(t, []string{"R"}, "")
		fault := ip.dispatch(context.Background(), cmd, nil)
		if fault == "" {
			t.Errorf("%v on empty stack: fault = \"\", want non-empty", cmd)
		}
		if ip.Stack().Len() != 0 {
			t.Errorf("%v on empty stack mutated the stack", cmd)
		}
	}
}

func TestDispatchDivideByZeroLeavesOperandsInPlace(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	ip.Stack().Push(5)
	ip.Stack().Push(0)

	fault := ip.dispatch(context.Background(), CmdDivide, nil)
	if fault != "divide by zero" {
		t.Fatalf("fault = %q, want %q", fault, "divide by zero")
	}
	got := ip.Stack().Snapshot()
	if len(got) != 2 || got[0] != 5 || got[1] != 0 {
		t.Errorf("stack = %v, want [5 0] unchanged", got)
	}
}

func TestDispatchModIsFloored(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	ip.Stack().Push(-7)
	ip.Stack().Push(3)

	if fault := ip.dispatch(context.Background(), CmdMod, nil); fault != "" {
		t.Fatalf("fault = %q, want none", fault)
	}
	got := ip.Stack().Snapshot()
	if len(got) != 1 || got[0] != 2 {
		t.Errorf("stack = %v, want [2]", got)
	}
}

func TestDispatchOutCharRejectsSurrogate(t *testing.T) {
	ip, out := newTestInterpreter(t, []string{"R"}, "")
	ip.Stack().Push(0xD800)

	fault := ip.dispatch(context.Background(), CmdOutChar, nil)
	if fault == "" {
		t.Fatal("fault = \"\", want a rejection for a surrogate code point")
	}
	if out.Len() != 0 {
		t.Errorf("wrote %q to output despite the fault", out.String())
	}
	got := ip.Stack().Snapshot()
	if len(got) != 1 || got[0] != 0xD800 {
		t.Errorf("stack = %v, want the operand restored", got)
	}
}

func TestDoRollRotatesTheTopDWindow(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	for _, v := range []int64{10, 20, 30, 3, 1} {
		ip.Stack().Push(v)
	}
	if fault := ip.dispatch(context.Background(), CmdRoll, nil); fault != "" {
		t.Fatalf("fault = %q, want none", fault)
	}
	want := []int64{30, 10, 20}
	got := ip.Stack().Snapshot()
	if len(got) != len(want) {
		t.Fatalf("stack = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack = %v, want %v", got, want)
		}
	}
}

func TestDoRollWithLargeRollCountIsStillDepthBounded(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	for _, v := range []int64{1, 2, 3, 4, 5, 5, 1000000001} {
		ip.Stack().Push(v)
	}
	if fault := ip.dispatch(context.Background(), CmdRoll, nil); fault != "" {
		t.Fatalf("fault = %q, want none", fault)
	}
	want := []int64{5, 1, 2, 3, 4}
	got := ip.Stack().Snapshot()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack = %v, want %v", got, want)
		}
	}
}

func TestDoRollRejectsDepthBeyondRemainingStack(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	ip.Stack().Push(1)
	ip.Stack().Push(5) // depth
	ip.Stack().Push(1) // rolls

	fault := ip.dispatch(context.Background(), CmdRoll, nil)
	if fault == "" {
		t.Fatal("fault = \"\", want an invalid-depth rejection")
	}
	got := ip.Stack().Snapshot()
	want := []int64{1, 5, 1}
	if len(got) != len(want) {
		t.Fatalf("stack = %v, want %v unchanged", got, want)
	}
}

func TestDispatchPointerByFourIsIdentity(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	before := ip.machine.DP()
	ip.Stack().Push(4)

	if fault := ip.dispatch(context.Background(), CmdPointer, nil); fault != "" {
		t.Fatalf("fault = %q, want none", fault)
	}
	if ip.machine.DP() != before {
		t.Errorf("DP = %v, want unchanged %v", ip.machine.DP(), before)
	}
}

func TestDispatchSwitchByTwoIsIdentity(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	before := ip.machine.CC()
	ip.Stack().Push(2)

	if fault := ip.dispatch(context.Background(), CmdSwitch, nil); fault != "" {
		t.Fatalf("fault = %q, want none", fault)
	}
	if ip.machine.CC() != before {
		t.Errorf("CC = %v, want unchanged %v", ip.machine.CC(), before)
	}
}

func TestDoInNumberParseFailureConsumesLineWithoutPushing(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "abc\n")
	fault := ip.dispatch(context.Background(), CmdInNumber, nil)
	if fault != "input parse failure" {
		t.Fatalf("fault = %q, want %q", fault, "input parse failure")
	}
	if ip.Stack().Len() != 0 {
		t.Errorf("stack len = %d, want 0", ip.Stack().Len())
	}
}

func TestDoInNumberSuccess(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "42\n")
	if fault := ip.dispatch(context.Background(), CmdInNumber, nil); fault != "" {
		t.Fatalf("fault = %q, want none", fault)
	}
	got := ip.Stack().Snapshot()
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("stack = %v, want [42]", got)
	}
}

func TestDoInCharAtEOFIsANoOp(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	fault := ip.dispatch(context.Background(), CmdInChar, nil)
	if fault != "input exhausted" {
		t.Fatalf("fault = %q, want %q", fault, "input exhausted")
	}
	if ip.Stack().Len() != 0 {
		t.Errorf("stack len = %d, want 0", ip.Stack().Len())
	}
}

func TestDuplicateThenPopIsIdentity(t *testing.T) {
	ip, _ := newTestInterpreter(t, []string{"R"}, "")
	ip.Stack().Push(7)

	if fault := ip.dispatch(context.Background(), CmdDuplicate, nil); fault != "" {
		t.Fatalf("duplicate fault = %q", fault)
	}
	if fault := ip.dispatch(context.Background(), CmdPop, nil); fault != "" {
		t.Fatalf("pop fault = %q", fault)
	}
	got := ip.Stack().Snapshot()
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("stack = %v, want [7]", got)
	}
}
