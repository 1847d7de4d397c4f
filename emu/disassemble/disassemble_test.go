package disassembler

import "testing"

func enc(opcode, rx, ra, rb, tag uint8, lit uint8, disp int32) uint32 {
	return uint32(opcode&0xf)<<28 | uint32(rx&0x1f)<<23 | uint32(ra&0x1f)<<18 |
		uint32(rb&0x1f)<<13 | uint32(lit)<<5 | uint32(tag&0x1f) |
		uint32(uint16(int16(disp)))
}

func TestDisasmALU(t *testing.T) {
	got := Disasm(enc(0, 3, 1, 2, 0, 0, 0))
	want := "add r3, r1, r2, 0"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmALUNegativeLiteral(t *testing.T) {
	got := Disasm(enc(0, 3, 1, 2, 0, 255, 0)) // lit=255 -> -1
	want := "add r3, r1, r2, -1"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmALUCompareHasNoLiteral(t *testing.T) {
	got := Disasm(enc(0, 3, 1, 2, 29, 0, 0)) // fcmpeq: float compares read ra/rb only
	want := "fcmpeq r3, r1, r2"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmFPUBinary(t *testing.T) {
	got := Disasm(enc(1, 3, 1, 2, 0, 0, 0)) // fadd
	want := "fadd r3, r1, r2"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmFPUUnaryWithSignModifier(t *testing.T) {
	got := Disasm(enc(1, 3, 1, 0, 5, 1, 0)) // fsqrt.neg
	want := "fsqrt.neg r3, r1"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmLdl(t *testing.T) {
	got := Disasm(enc(2, 1, 0, 0, 0, 0, 0x12))
	want := "ldl r1, 0x12"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmLdh(t *testing.T) {
	got := Disasm(enc(3, 1, 2, 0, 0, 0, 0x34))
	want := "ldh r1, r2, 0x34"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmJl(t *testing.T) {
	got := Disasm(enc(4, 1, 0, 0, 0, 0, 4)) // disp in words -> *4 bytes
	want := "jl r1, 0x10"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmJlNegativeDisplacement(t *testing.T) {
	got := Disasm(enc(4, 1, 0, 0, 0, 0, -4))
	want := "jl r1, -0x10"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmJr(t *testing.T) {
	got := Disasm(enc(5, 2, 1, 0, 0, 0, 0))
	want := "jr r2, r1"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmLoadStoreWord(t *testing.T) {
	got := Disasm(enc(6, 3, 1, 0, 0, 0, 2))
	want := "ld r3, r1, 0x8"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmLoadStoreByte(t *testing.T) {
	got := Disasm(enc(7, 3, 1, 0, 0, 0, 5))
	want := "ldb r3, r1, 0x5"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmBranch(t *testing.T) {
	got := Disasm(enc(15, 1, 2, 0, 0, 0, 2))
	want := "beq r1, r2, 0x8"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmDebugOp(t *testing.T) {
	got := Disasm(enc(10, 1, 0, 0, 0, 0, 5)) // break 5, sub-op in rx
	want := "break 5"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}

func TestDisasmSysenterSysexit(t *testing.T) {
	if got := Disasm(enc(12, 0, 0, 0, 0, 0, 0)); got != "sysenter" {
		t.Errorf("Disasm = %q, want %q", got, "sysenter")
	}
	if got := Disasm(enc(13, 0, 0, 0, 0, 0, 0)); got != "sysexit" {
		t.Errorf("Disasm = %q, want %q", got, "sysexit")
	}
}

func TestDisasmUnknownOpcode(t *testing.T) {
	got := Disasm(enc(11, 0, 0, 0, 0, 0, 0))
	want := "<unknown opcode 11>"
	if got != want {
		t.Errorf("Disasm = %q, want %q", got, want)
	}
}
