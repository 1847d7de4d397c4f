package cpu

import (
	"testing"

	"github.com/gaia-vm/gaia/emu/bus"
	"github.com/gaia-vm/gaia/emu/device"
	"github.com/gaia-vm/gaia/emu/fpu"
	"github.com/gaia-vm/gaia/emu/interrupt"
	"github.com/gaia-vm/gaia/emu/machine"
)

func newTestCPU(t *testing.T) (*CPU, *machine.Machine) {
	t.Helper()
	m := machine.New(64*1024, true)
	ser := device.NewSerial(nil, nil)
	b := bus.New(m, ser)
	intr := interrupt.New(m, ser, true)
	return New(m, b, intr, fpu.Standard{}, nil), m
}

func enc(opcode, rx, ra, rb, tag uint8, lit uint8, disp int32) uint32 {
	return uint32(opcode&0xf)<<28 | uint32(rx&0x1f)<<23 | uint32(ra&0x1f)<<18 |
		uint32(rb&0x1f)<<13 | uint32(lit)<<5 | uint32(tag&0x1f) |
		uint32(uint16(int16(disp)))
}

func store(m *machine.Machine, addr uint32, inst uint32) {
	m.PutWord(addr, inst)
}

func TestStepAddThenHalt(t *testing.T) {
	c, m := newTestCPU(t)
	// r1 = 2, r2 = 3, r3 = r1 + r2 (ALU tag 0), then halt.
	store(m, 0, enc(2, 1, 0, 0, 0, 0, 2))
	store(m, 4, enc(2, 2, 0, 0, 0, 0, 3))
	store(m, 8, enc(0, 3, 1, 2, 0, 0, 0))
	store(m, 12, machine.HaltCode)

	for i := 0; i < 3; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := m.GetReg(3); got != 5 {
		t.Errorf("r3 = %d, want 5", got)
	}
	if err := c.Step(); err != ErrHalt {
		t.Fatalf("final step error = %v, want ErrHalt", err)
	}
}

func TestStepLdlLdh(t *testing.T) {
	c, m := newTestCPU(t)
	store(m, 0, enc(2, 1, 0, 0, 0, 0, 0x12)) // ldl r1, 0x12
	store(m, 4, enc(3, 1, 1, 0, 0, 0, 0x34)) // ldh r1, 0x34 (keep low 16)
	store(m, 8, machine.HaltCode)

	for i := 0; i < 2; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	want := uint32(0x34)<<16 | 0x12
	if got := m.GetReg(1); got != want {
		t.Errorf("r1 = %#x, want %#x", got, want)
	}
}

func TestStepBeqBranchTaken(t *testing.T) {
	c, m := newTestCPU(t)
	// pc=0: r1=7; pc=4: r2=7; pc=8: beq r1,r2,+2 (word units) -> pc lands on 20
	store(m, 0, enc(2, 1, 0, 0, 0, 0, 7))
	store(m, 4, enc(2, 2, 0, 0, 0, 0, 7))
	store(m, 8, enc(15, 1, 2, 0, 0, 0, 2))
	store(m, 12, enc(2, 3, 0, 0, 0, 0, 99)) // skipped
	store(m, 16, enc(2, 3, 0, 0, 0, 0, 99)) // skipped
	store(m, 20, enc(2, 3, 0, 0, 0, 0, 2))  // landed on
	store(m, 24, machine.HaltCode)

	for i := 0; i < 4; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if m.PC != 24 {
		t.Errorf("PC = %d, want 24", m.PC)
	}
	if got := m.GetReg(3); got != 2 {
		t.Errorf("r3 = %d, want 2", got)
	}
}

func TestStepBneNotTakenFallsThrough(t *testing.T) {
	c, m := newTestCPU(t)
	store(m, 0, enc(2, 1, 0, 0, 0, 0, 5))
	store(m, 4, enc(2, 2, 0, 0, 0, 0, 5))
	store(m, 8, enc(14, 1, 2, 0, 0, 0, 4)) // bne not taken (equal)
	store(m, 12, enc(2, 3, 0, 0, 0, 0, 1))
	store(m, 16, machine.HaltCode)

	for i := 0; i < 4; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := m.GetReg(3); got != 1 {
		t.Errorf("r3 = %d, want 1", got)
	}
}

func TestStepJlSetsLinkAndBranches(t *testing.T) {
	c, m := newTestCPU(t)
	// pc=0: jl r1, +4 (word units) -> pc = 0 + 16, then the main loop's
	// +4 -> target pc = 20 (same convention as beq), link = 4
	store(m, 0, enc(4, 1, 0, 0, 0, 0, 4))
	store(m, 20, machine.HaltCode)

	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if got := m.GetReg(1); got != 4 {
		t.Errorf("link r1 = %d, want 4", got)
	}
	if m.PC != 20 {
		t.Errorf("PC = %d, want 20", m.PC)
	}
	if err := c.Step(); err != ErrHalt {
		t.Fatalf("expected halt at target, got %v", err)
	}
}

func TestStepJrAbsoluteTarget(t *testing.T) {
	c, m := newTestCPU(t)
	store(m, 0, enc(2, 1, 0, 0, 0, 0, 100)) // r1 = 100
	store(m, 4, enc(5, 2, 1, 0, 0, 0, 0))   // jr r2, r1 -> pc = 100, link r2 = 8
	store(m, 100, machine.HaltCode)

	for i := 0; i < 2; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := m.GetReg(2); got != 8 {
		t.Errorf("link r2 = %d, want 8", got)
	}
	if m.PC != 100 {
		t.Errorf("PC = %d, want 100", m.PC)
	}
}

func TestStepLoadStoreWordRoundTrip(t *testing.T) {
	c, m := newTestCPU(t)
	store(m, 0, enc(2, 1, 0, 0, 0, 0, 200))  // r1 = 200 (base)
	store(m, 4, enc(2, 2, 0, 0, 0, 0, 0x77)) // r2 = 0x77
	store(m, 8, enc(8, 2, 1, 0, 0, 0, 0))    // st r2, [r1+0]
	store(m, 12, enc(6, 3, 1, 0, 0, 0, 0))   // r3 = ld [r1+0]
	store(m, 16, machine.HaltCode)

	for i := 0; i < 4; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := m.GetReg(3); got != 0x77 {
		t.Errorf("r3 = %#x, want 0x77", got)
	}
}

func TestStepLoadStoreByteRoundTrip(t *testing.T) {
	c, m := newTestCPU(t)
	store(m, 0, enc(2, 1, 0, 0, 0, 0, 200)) // r1 = 200
	store(m, 4, enc(2, 2, 0, 0, 0, 0, 0xab))
	store(m, 8, enc(9, 2, 1, 0, 0, 0, 3))  // stb r2, [r1+3]
	store(m, 12, enc(7, 3, 1, 0, 0, 0, 3)) // r3 = ldb [r1+3]
	store(m, 16, machine.HaltCode)

	for i := 0; i < 4; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := m.GetReg(3); got != 0xab {
		t.Errorf("r3 = %#x, want 0xab", got)
	}
}

func TestStepFPUAddWithSignFlip(t *testing.T) {
	c, m := newTestCPU(t)
	one := uint32(0x3f800000) // 1.0f
	two := uint32(0x40000000) // 2.0f
	m.SetReg(1, one)
	m.SetReg(2, two)
	// fadd (tag 0), sig=1 (flip sign) packed into lit's low two bits.
	store(m, 0, enc(1, 3, 1, 2, 0, 1, 0))
	store(m, 4, machine.HaltCode)

	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	got := m.GetReg(3)
	want := uint32(0xc0400000) // -3.0f
	if got != want {
		t.Errorf("r3 = %#x, want %#x (-3.0)", got, want)
	}
}

func TestStepUnknownOpcodeIsDecodeError(t *testing.T) {
	c, m := newTestCPU(t)
	store(m, 0, enc(11, 0, 0, 0, 0, 0, 0)) // opcode 11 is undefined
	err := c.Step()
	if _, ok := err.(*ErrDecode); !ok {
		t.Fatalf("err = %v (%T), want *ErrDecode", err, err)
	}
}

func TestStepSysenterSysexitRoundTrip(t *testing.T) {
	c, m := newTestCPU(t)
	m.Intr.Addr = 0x800
	m.Intr.Enabled = true
	store(m, 0x800-4, enc(12, 0, 0, 0, 0, 0, 0)) // sysenter, fetched at PC=0x800-4
	m.PC = 0x800 - 4

	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if m.PC != 0x800 {
		t.Errorf("PC = %#x, want 0x800 (trap handler)", m.PC)
	}
	if m.Intr.Enabled {
		t.Error("sysenter should disable interrupts")
	}

	store(m, 0x800, enc(13, 0, 0, 0, 0, 0, 0)) // sysexit
	if err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if m.PC != 0x800 {
		t.Errorf("PC after sysexit = %#x, want 0x800 (resumed caller)", m.PC)
	}
	if !m.Intr.Enabled {
		t.Error("sysexit should re-enable interrupts")
	}
}

func TestStepDebugOpcodeWithoutDebuggerIsNoop(t *testing.T) {
	c, m := newTestCPU(t)
	store(m, 0, enc(10, DebugBreak, 0, 0, 0, 0, 5)) // sub-opcode in rx, id in disp
	store(m, 4, machine.HaltCode)
	if err := c.Step(); err != nil {
		t.Fatalf("debug op with nil debugger should be a no-op, got %v", err)
	}
}
