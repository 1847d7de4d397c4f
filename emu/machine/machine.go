/*
 * GAIA - Machine state: registers, RAM, program counter.
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

// Package machine holds the GAIA processor's flat, value-typed simulation
// state: the general register file, linear RAM, program counter and
// instruction counter. It replaces the process-wide globals of the original
// implementation with a single value owned by the caller, so tests can run
// many independent machines in one process.
package machine

import (
	"fmt"

	"github.com/gaia-vm/gaia/util/hex"
)

const (
	// NumRegs is the number of general-purpose 32-bit registers.
	NumRegs = 32

	// DefaultMemSize is the RAM size used when -msize is not given.
	DefaultMemSize = 4 * 1024 * 1024

	// HaltCode is the sentinel instruction word that stops the simulator.
	// The main loop checks for it before decoding, so it never executes
	// as an instruction (its bits would otherwise decode as a beq).
	HaltCode uint32 = 0xffffffff

	// StackReg0, StackReg1 are the conventional stack-pointer registers,
	// initialized to MemSize on reset unless boot-test mode is active.
	StackReg0 = 30
	StackReg1 = 31
)

// MMUState is the two-level page-walking MMU's control state (spec data
// model, "MMU state").
type MMUState struct {
	Enabled bool
	PDAddr  uint32 // physical address of the page directory, 4KiB aligned
}

// InterruptState is the interrupt controller's control state (spec data
// model, "Interrupt state"). IRQ bit positions: IRQPseudo=0, IRQTimer=1,
// IRQSerial=2, IRQSysenter=3.
type InterruptState struct {
	Addr    uint32 // virtual address of the trap handler
	Enabled bool   // interrupt mask
	EPC     uint32 // saved PC at trap entry (interrupted_pc + 4)
	IRQNum  uint32 // cause code of the last delivered IRQ
	IRQBits uint32 // pending-IRQ bitmask
}

// Machine is the complete state of one GAIA processor instance. It is
// single-owned by the caller (the main loop); every subsystem (mmu, bus,
// cpu, interrupt, debug) takes a *Machine and mutates it directly. There is
// no internal locking: the simulator is strictly single-threaded.
type Machine struct {
	Reg [NumRegs]uint32
	Mem []byte

	PC      uint32
	InstCnt uint64

	MemSize  uint32 // power of two, == len(Mem)
	BootTest bool   // relax jr-range/stack-init checks for bootloader tests

	MMU  MMUState
	Intr InterruptState
}

// New allocates a Machine with memSize bytes of RAM. memSize must be a
// power of two; New rounds up to the next one if it is not.
func New(memSize uint32, bootTest bool) *Machine {
	memSize = roundUpPow2(memSize)
	m := &Machine{
		Mem:      make([]byte, memSize),
		MemSize:  memSize,
		BootTest: bootTest,
	}
	m.Reset(0)
	return m
}

// Reset clears registers and the instruction counter and sets PC to entry.
// Registers 30/31 are initialized to MemSize unless running in boot-test
// mode, matching spec.md's stack-pointer convention.
func (m *Machine) Reset(entry uint32) {
	for i := range m.Reg {
		m.Reg[i] = 0
	}
	if !m.BootTest {
		m.Reg[StackReg0] = m.MemSize
		m.Reg[StackReg1] = m.MemSize
	}
	m.PC = entry
	m.InstCnt = 0
	m.Intr = InterruptState{}
	m.MMU = MMUState{}
}

// GetReg reads a general register. Register 0 always reads as zero.
func (m *Machine) GetReg(r uint8) uint32 {
	if r == 0 {
		return 0
	}
	return m.Reg[r&0x1f]
}

// SetReg writes a general register. Writes to register 0 are accepted but
// discarded at read-back time by GetReg; spec.md's design note prefers this
// over tolerating a nonzero reg[0], while still allowing CheckReg0 to catch
// writes that should never have been attempted under -debug.
func (m *Machine) SetReg(r uint8, v uint32) {
	m.Reg[r&0x1f] = v
}

// CheckReg0 reports whether reg[0] currently holds a nonzero value. It is
// the debug-time invariant check from spec.md §7 ("Invariant: reg[0] != 0
// when debugger enabled"); it does not by itself clamp the value.
func (m *Machine) CheckReg0() bool {
	return m.Reg[0] != 0
}

// GetWord reads a RAM word at a word-aligned physical address without
// bounds checking; callers must have already validated addr < MemSize.
func (m *Machine) GetWord(addr uint32) uint32 {
	return uint32(m.Mem[addr]) | uint32(m.Mem[addr+1])<<8 |
		uint32(m.Mem[addr+2])<<16 | uint32(m.Mem[addr+3])<<24
}

// PutWord writes a RAM word at a word-aligned physical address without
// bounds checking.
func (m *Machine) PutWord(addr, data uint32) {
	m.Mem[addr] = byte(data)
	m.Mem[addr+1] = byte(data >> 8)
	m.Mem[addr+2] = byte(data >> 16)
	m.Mem[addr+3] = byte(data >> 24)
}

// InRAM reports whether a physical address is within the RAM region
// [0, MemSize).
func (m *Machine) InRAM(addr uint32) bool {
	return addr < m.MemSize
}

func roundUpPow2(n uint32) uint32 {
	if n == 0 {
		return DefaultMemSize
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

// String renders a short status block: the current PC and the instruction
// count. It does not include the registers.
func (m *Machine) String() string {
	return fmt.Sprintf("<Current PC>: %s\n<Number of executed instructions>: %d", hex.FormatAddr(m.PC), m.InstCnt)
}
