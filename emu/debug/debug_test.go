package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gaia-vm/gaia/emu/bus"
	"github.com/gaia-vm/gaia/emu/device"
	"github.com/gaia-vm/gaia/emu/machine"
)

func newEnv(t *testing.T) (*Debugger, *machine.Machine, *bus.Bus, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	m := machine.New(64*1024, true)
	ser := device.NewSerial(strings.NewReader(""), &bytes.Buffer{})
	b := bus.New(m, ser)
	d := New(true, &out)
	return d, m, b, &out
}

func TestCheckInvariantRejectsNonzeroReg0(t *testing.T) {
	d, m, _, _ := newEnv(t)
	m.Reg[0] = 1
	if err := d.CheckInvariant(m); err != ErrReg0Clobbered {
		t.Fatalf("CheckInvariant = %v, want ErrReg0Clobbered", err)
	}
}

func TestCheckInvariantPassesWhenZero(t *testing.T) {
	d, m, _, _ := newEnv(t)
	if err := d.CheckInvariant(m); err != nil {
		t.Fatalf("CheckInvariant = %v, want nil", err)
	}
}

func TestRecordTraceRingBufferOrder(t *testing.T) {
	d, _, _, out := newEnv(t)
	for i := uint32(0); i < 25; i++ {
		d.RecordTrace(i*4, 0x1000+i)
	}
	d.DumpTrace()
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	// header + 20 entries (ring buffer caps at traceLen even after 25 pushes)
	if len(lines) != 1+traceLen {
		t.Fatalf("got %d lines, want %d", len(lines), 1+traceLen)
	}
	if !strings.Contains(lines[1], "0x00000060") { // newest pc: 24*4
		t.Errorf("newest trace entry not first: %s", lines[1])
	}
}

func TestBreakpointDisableEnable(t *testing.T) {
	d, _, _, _ := newEnv(t)
	if d.IsBreakDisabled(5) {
		t.Fatal("breakpoint 5 should start enabled")
	}
	d.DisableBreak(5)
	if !d.IsBreakDisabled(5) {
		t.Fatal("breakpoint 5 should be disabled")
	}
	d.EnableBreak(5)
	if d.IsBreakDisabled(5) {
		t.Fatal("breakpoint 5 should be re-enabled")
	}
}

func TestBreakpointDisableEnableAll(t *testing.T) {
	d, _, _, _ := newEnv(t)
	d.DisableAllBreaks()
	for _, id := range []int32{0, 31, 32, 255} {
		if !d.IsBreakDisabled(id) {
			t.Errorf("id %d should be disabled after DisableAllBreaks", id)
		}
	}
	d.EnableAllBreaks()
	for _, id := range []int32{0, 31, 32, 255} {
		if d.IsBreakDisabled(id) {
			t.Errorf("id %d should be enabled after EnableAllBreaks", id)
		}
	}
}

func TestOnDebugOpBreakEntersInDebug(t *testing.T) {
	d, m, b, _ := newEnv(t)
	if err := d.OnDebugOp(1, 3, m, b); err != nil {
		t.Fatal(err)
	}
	if !d.InDebug() {
		t.Error("break should set InDebug")
	}
}

func TestOnDebugOpBreakDisabledIsSuppressed(t *testing.T) {
	d, m, b, _ := newEnv(t)
	d.DisableBreak(3)
	if err := d.OnDebugOp(1, 3, m, b); err != nil {
		t.Fatal(err)
	}
	if d.InDebug() {
		t.Error("disabled breakpoint should not enter InDebug")
	}
}

func TestOnDebugOpPenvDoesNotEnterInDebug(t *testing.T) {
	d, m, b, _ := newEnv(t)
	if err := d.OnDebugOp(2, 0, m, b); err != nil {
		t.Fatal(err)
	}
	if d.InDebug() {
		t.Error("penv should not enter InDebug")
	}
}

func TestOnDebugOpUnknownSubIsDecodeError(t *testing.T) {
	d, m, b, _ := newEnv(t)
	err := d.OnDebugOp(9, 0, m, b)
	if _, ok := err.(*ErrDecode); !ok {
		t.Fatalf("err = %v (%T), want *ErrDecode", err, err)
	}
}

func TestContinueClearsInDebug(t *testing.T) {
	d, m, b, _ := newEnv(t)
	d.OnDebugOp(1, 0, m, b)
	d.Continue()
	if d.InDebug() {
		t.Error("Continue should clear InDebug")
	}
}

func TestPreFetchNoopWhenNotInDebug(t *testing.T) {
	d, m, b, _ := newEnv(t)
	if err := d.PreFetch(m, b); err != nil {
		t.Fatalf("PreFetch = %v, want nil", err)
	}
}

func TestPreFetchInvokesEnterREPL(t *testing.T) {
	d, m, b, _ := newEnv(t)
	d.OnDebugOp(1, 0, m, b)
	called := false
	d.EnterREPL = func(m *machine.Machine, b *bus.Bus, d *Debugger) error {
		called = true
		d.Continue()
		return nil
	}
	if err := d.PreFetch(m, b); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("PreFetch should have invoked EnterREPL")
	}
	if d.InDebug() {
		t.Error("EnterREPL's Continue should have cleared InDebug")
	}
}
