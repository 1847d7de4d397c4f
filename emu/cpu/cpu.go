/*
 * GAIA - Decoder/executor.
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

// Package cpu implements the GAIA decoder/executor (C5) and drives the main
// per-cycle loop: service interrupts, run the debug hook, fetch, execute,
// advance PC. Each opcode is its own case in execute's dispatch, in the
// spirit of the teacher's per-opcode function tables, so an opcode without
// a matching case is a fatal decode error rather than silently-wrong
// fallthrough behavior.
package cpu

import (
	"errors"
	"fmt"

	"github.com/gaia-vm/gaia/emu/alu"
	"github.com/gaia-vm/gaia/emu/bus"
	"github.com/gaia-vm/gaia/emu/fpu"
	"github.com/gaia-vm/gaia/emu/interrupt"
	"github.com/gaia-vm/gaia/emu/machine"
)

// ErrHalt is returned by Step when the HALT sentinel word is fetched. It is
// not a fatal error: the caller should stop cleanly and exit 0.
var ErrHalt = errors.New("halt")

// ErrDecode reports an unrecognized opcode or debug sub-opcode.
type ErrDecode struct {
	Phase string
	Value uint8
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("instruction decode error (%s): %#x", e.Phase, e.Value)
}

// Sub-opcodes for the in-stream debug instruction (opcode 10), mirroring
// the reference implementation's OP_BREAK/OP_PENV/OP_PTRACE constants.
const (
	DebugBreak  uint8 = 1
	DebugPenv   uint8 = 2
	DebugPtrace uint8 = 3
)

// Debugger is the narrow surface the debugger (C8) exposes to the executor.
// Implementations live in emu/debug; this package never imports it, so
// there is no import cycle even though debug's methods take *machine.Machine
// and *bus.Bus by name.
type Debugger interface {
	Enabled() bool
	CheckInvariant(m *machine.Machine) error
	RecordTrace(pc, inst uint32)
	// PreFetch may enter an interactive REPL (single-step mode) before the
	// next instruction is fetched. Returning an error aborts the run.
	PreFetch(m *machine.Machine, b *bus.Bus) error
	// OnDebugOp handles break/penv/ptrace triggered by opcode 10. id is the
	// instruction's 16-bit signed displacement field, used as a breakpoint
	// or trace identifier.
	OnDebugOp(sub uint8, id int32, m *machine.Machine, b *bus.Bus) error
}

// CPU ties a Machine to its memory port, interrupt controller, FPU and
// (optionally) debugger, and drives one cycle at a time via Step.
type CPU struct {
	M    *machine.Machine
	Bus  *bus.Bus
	Intr *interrupt.Controller
	FPU  fpu.Unit
	Dbg  Debugger // nil when -debug is not given
}

// New builds a CPU. fpuUnit selects Standard or Maswag; dbg may be nil.
func New(m *machine.Machine, b *bus.Bus, intr *interrupt.Controller, fpuUnit fpu.Unit, dbg Debugger) *CPU {
	return &CPU{M: m, Bus: b, Intr: intr, FPU: fpuUnit, Dbg: dbg}
}

type decoded struct {
	opcode, rx, ra, rb, tag uint8
	lit                     uint8
	disp                    int32
}

func decode(inst uint32) decoded {
	return decoded{
		opcode: uint8((inst >> 28) & 0xf),
		rx:     uint8((inst >> 23) & 0x1f),
		ra:     uint8((inst >> 18) & 0x1f),
		rb:     uint8((inst >> 13) & 0x1f),
		lit:    uint8((inst >> 5) & 0xff),
		tag:    uint8(inst & 0x1f),
		disp:   int32(int16(uint16(inst & 0xffff))),
	}
}

// Step runs exactly one main-loop cycle: interrupt sampling/delivery, the
// debug hook, instruction fetch, decode+execute, and PC/inst_cnt advance.
// It returns ErrHalt on a clean stop and any other error as fatal.
func (c *CPU) Step() error {
	if c.Intr != nil {
		c.Intr.Service()
	}

	if c.Dbg != nil && c.Dbg.Enabled() {
		if err := c.Dbg.CheckInvariant(c.M); err != nil {
			return err
		}
		if err := c.Dbg.PreFetch(c.M, c.Bus); err != nil {
			return err
		}
	}

	_, inst, err := c.Bus.Fetch(c.M.PC)
	if err != nil {
		return err
	}
	if inst == machine.HaltCode {
		return ErrHalt
	}

	if c.Dbg != nil && c.Dbg.Enabled() {
		c.Dbg.RecordTrace(c.M.PC, inst)
	}

	d := decode(inst)
	if err := c.execute(d); err != nil {
		return err
	}

	c.M.PC += 4
	c.M.InstCnt++
	return nil
}

func (c *CPU) execute(d decoded) error {
	m := c.M
	switch d.opcode {
	case 0: // ALU
		result, err := alu.Eval(d.tag, m.GetReg(d.ra), m.GetReg(d.rb), alu.SignExtend8(d.lit))
		if err != nil {
			return err
		}
		m.SetReg(d.rx, result)

	case 1: // FPU
		result, err := c.FPU.Eval(d.tag, m.GetReg(d.ra), m.GetReg(d.rb))
		if err != nil {
			return err
		}
		sig := d.lit & 3 // bits 6..5 of the instruction are lit's low two bits
		m.SetReg(d.rx, fpu.SignMod(result, sig))

	case 2: // ldl
		m.SetReg(d.rx, uint32(d.disp))

	case 3: // ldh
		m.SetReg(d.rx, (uint32(d.disp)<<16)|(m.GetReg(d.ra)&0xffff))

	case 4: // jl
		ret := m.PC + 4
		m.PC += uint32(d.disp << 2)
		m.SetReg(d.rx, ret)

	case 5: // jr
		target := m.GetReg(d.ra)
		if target&3 != 0 {
			return &bus.ErrAlignment{Addr: target}
		}
		if !m.BootTest {
			pa, err := c.Bus.Translate(target)
			if err != nil {
				return err
			}
			if !m.InRAM(pa) {
				return &bus.ErrBounds{Addr: pa, Op: "jr"}
			}
		}
		m.SetReg(d.rx, m.PC+4)
		m.PC = target - 4

	case 6: // ld
		v, err := c.Bus.LoadWord(m.GetReg(d.ra), d.disp)
		if err != nil {
			return err
		}
		m.SetReg(d.rx, v)

	case 7: // ldb
		v, err := c.Bus.LoadByte(m.GetReg(d.ra), d.disp)
		if err != nil {
			return err
		}
		m.SetReg(d.rx, v)

	case 8: // st
		if err := c.Bus.StoreWord(m.GetReg(d.ra), d.disp, m.GetReg(d.rx)); err != nil {
			return err
		}

	case 9: // stb
		if err := c.Bus.StoreByte(m.GetReg(d.ra), d.disp, m.GetReg(d.rx)); err != nil {
			return err
		}

	case 10: // debug: sub-opcode rides in rx, the break/penv/ptrace id in disp
		if c.Dbg == nil || !c.Dbg.Enabled() {
			return nil
		}
		switch d.rx {
		case DebugBreak, DebugPenv, DebugPtrace:
			return c.Dbg.OnDebugOp(d.rx, d.disp, m, c.Bus)
		default:
			return &ErrDecode{Phase: "debug", Value: d.rx}
		}

	case 12: // sysenter
		c.Intr.Sysenter()

	case 13: // sysexit
		c.Intr.Sysexit()

	case 14: // bne
		if m.GetReg(d.rx) != m.GetReg(d.ra) {
			m.PC += uint32(d.disp << 2)
		}

	case 15: // beq
		if m.GetReg(d.rx) == m.GetReg(d.ra) {
			m.PC += uint32(d.disp << 2)
		}

	default:
		return &ErrDecode{Phase: "opcode", Value: d.opcode}
	}
	return nil
}
