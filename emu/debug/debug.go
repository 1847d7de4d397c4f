/*
 * GAIA - Debugger core: breakpoints, crash trace, interactive hook.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package debug implements the GAIA debugger's always-on state: a 20-entry
// crash trace ring buffer and a 256-id breakpoint mask, plus the hooks the
// decoder/executor calls every cycle. The interactive REPL itself lives in
// command/parser and command/reader; this package never imports either, to
// avoid a cycle with command/parser (which needs the *Debugger type). main.go
// wires command/reader's EnterREPL into the EnterREPL field.
package debug

import (
	"fmt"
	"io"

	"github.com/gaia-vm/gaia/emu/bus"
	"github.com/gaia-vm/gaia/emu/disassemble"
	"github.com/gaia-vm/gaia/emu/machine"
	"github.com/gaia-vm/gaia/util/hex"
)

// traceLen is the depth of the crash trace ring buffer (spec.md §4.7).
const traceLen = 20

// numBreakWords is len(breakDisabled): 256 breakpoint ids packed 32 per word.
const numBreakWords = 8

type traceEntry struct {
	pc, inst uint32
}

// ErrReg0Clobbered is returned by CheckInvariant when reg[0] holds a
// nonzero value while the debugger is enabled.
var ErrReg0Clobbered = fmt.Errorf("r0 is not zero")

// ErrDecode reports an unrecognized debug sub-opcode.
type ErrDecode struct {
	Sub uint8
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("instruction decode error (debug): %#x", e.Sub)
}

// Debugger holds the GAIA debugger's persistent state: the crash trace ring
// buffer, the breakpoint-disable bitmap, and whether an in-stream break has
// put the simulator into single-step mode.
type Debugger struct {
	enabled bool

	trace    [traceLen]traceEntry
	traceLen int // number of valid entries, caps at traceLen
	traceIdx int // index of the newest entry; ring buffer, O(1) insert

	breakDisabled [numBreakWords]uint32
	inDebug       bool

	Out io.Writer // where status/trace output goes (stderr by default)

	// EnterREPL drives one interactive session when the debugger has
	// stopped at a breakpoint. It returns after a "c" (continue, which
	// clears InDebug) or "n" (single-step, which leaves it set) command,
	// or on EOF. Left nil in non-interactive test builds: PreFetch then
	// just records the stop and continues immediately.
	EnterREPL func(m *machine.Machine, b *bus.Bus, d *Debugger) error
}

// New creates a Debugger. enabled mirrors -debug; when false every hook is
// a no-op and Step never pays for trace recording or invariant checks.
func New(enabled bool, out io.Writer) *Debugger {
	return &Debugger{enabled: enabled, Out: out}
}

// Enabled implements cpu.Debugger.
func (d *Debugger) Enabled() bool { return d.enabled }

// CheckInvariant implements cpu.Debugger: reg[0] must read zero.
func (d *Debugger) CheckInvariant(m *machine.Machine) error {
	if m.CheckReg0() {
		return ErrReg0Clobbered
	}
	return nil
}

// RecordTrace implements cpu.Debugger, prepending (pc, inst) to the ring
// buffer in O(1) by advancing a head index rather than shifting every
// entry down one slot.
func (d *Debugger) RecordTrace(pc, inst uint32) {
	d.traceIdx = (d.traceIdx + 1) % traceLen
	d.trace[d.traceIdx] = traceEntry{pc: pc, inst: inst}
	if d.traceLen < traceLen {
		d.traceLen++
	}
}

// PreFetch implements cpu.Debugger: if the simulator is currently stopped
// at a breakpoint, enter the interactive REPL before the next instruction
// is fetched.
func (d *Debugger) PreFetch(m *machine.Machine, b *bus.Bus) error {
	if !d.inDebug {
		return nil
	}
	if d.EnterREPL == nil {
		return nil
	}
	return d.EnterREPL(m, b, d)
}

// OnDebugOp implements cpu.Debugger, handling the opcode-10 in-stream ops.
func (d *Debugger) OnDebugOp(sub uint8, id int32, m *machine.Machine, b *bus.Bus) error {
	switch sub {
	case 1: // break
		if d.IsBreakDisabled(id) {
			return nil
		}
		fmt.Fprintf(d.Out, "\x1b[1;31mbreak point %d:\x1b[0;39m\n", id)
		d.PrintEnv(m, b, true)
		d.inDebug = true
	case 2: // penv
		fmt.Fprintf(d.Out, "\x1b[1;31mprint status. id %d:\x1b[0;39m\n", id)
		d.PrintEnv(m, b, true)
	case 3: // ptrace
		fmt.Fprintf(d.Out, "\x1b[1;31mprint trace. id %d:\x1b[0;39m\n", id)
		d.DumpTrace()
	default:
		return &ErrDecode{Sub: sub}
	}
	return nil
}

// Continue clears single-step mode, resuming free-running execution. Called
// by the "c" REPL command.
func (d *Debugger) Continue() { d.inDebug = false }

// InDebug reports whether the simulator is currently stopped at a breakpoint.
func (d *Debugger) InDebug() bool { return d.inDebug }

// IsBreakDisabled reports whether breakpoint id is currently masked.
func (d *Debugger) IsBreakDisabled(id int32) bool {
	if id < 0 || int(id) >= numBreakWords*32 {
		return false
	}
	return d.breakDisabled[id/32]&(1<<(uint(id)%32)) != 0
}

// DisableBreak masks breakpoint id.
func (d *Debugger) DisableBreak(id int32) {
	if id < 0 || int(id) >= numBreakWords*32 {
		return
	}
	d.breakDisabled[id/32] |= 1 << (uint(id) % 32)
}

// EnableBreak unmasks breakpoint id.
func (d *Debugger) EnableBreak(id int32) {
	if id < 0 || int(id) >= numBreakWords*32 {
		return
	}
	d.breakDisabled[id/32] &^= 1 << (uint(id) % 32)
}

// DisableAllBreaks masks every breakpoint id.
func (d *Debugger) DisableAllBreaks() {
	for i := range d.breakDisabled {
		d.breakDisabled[i] = 0xffffffff
	}
}

// EnableAllBreaks unmasks every breakpoint id.
func (d *Debugger) EnableAllBreaks() {
	for i := range d.breakDisabled {
		d.breakDisabled[i] = 0
	}
}

// PrintEnv writes the simulator status block: registers (if full), current
// PC (virtual and, under the MMU, physical) and the instruction count.
func (d *Debugger) PrintEnv(m *machine.Machine, b *bus.Bus, full bool) {
	fmt.Fprintln(d.Out, "\x1b[1m*** Simulator Status ***\x1b[0m")
	if full {
		fmt.Fprintln(d.Out, "<register>")
		for i := 0; i < 16; i++ {
			fmt.Fprintf(d.Out, "  r%-2d: %11d (%s) / r%-2d: %11d (%s)\n",
				i, int32(m.GetReg(uint8(i))), hex.FormatWord(m.GetReg(uint8(i))),
				i+16, int32(m.GetReg(uint8(i+16))), hex.FormatWord(m.GetReg(uint8(i+16))))
		}
	}
	if m.MMU.Enabled {
		fmt.Fprintf(d.Out, "<Current Virtual PC>: %s\n", hex.FormatWord(m.PC))
		if pa, err := b.Translate(m.PC); err == nil {
			fmt.Fprintf(d.Out, "<Current Physical PC>: %s\n", hex.FormatAddr(pa))
		}
	} else {
		fmt.Fprintf(d.Out, "<Current PC>: %s\n", hex.FormatAddr(m.PC))
	}
	fmt.Fprintf(d.Out, "<Number of executed instructions>: %d\n", m.InstCnt)
}

// DumpTrace writes the crash trace ring buffer, newest first.
func (d *Debugger) DumpTrace() {
	fmt.Fprintln(d.Out, "  address  |    code    |      assembly")
	for i := 0; i < d.traceLen; i++ {
		idx := (d.traceIdx - i + traceLen) % traceLen
		e := d.trace[idx]
		fmt.Fprintf(d.Out, "%s | %s | %s\n", hex.FormatWord(e.pc), hex.FormatWord(e.inst), disassembler.Disasm(e.inst))
	}
}
