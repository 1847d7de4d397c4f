/*
 * GAIA - Memory port: translation, bounds-checking, MMIO dispatch.
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

// Package bus implements the GAIA memory port (C4): it translates a virtual
// address through emu/mmu, bounds-checks the result against RAM, and
// otherwise dispatches to the fixed memory-mapped device region described
// in spec.md §6.
package bus

import (
	"fmt"

	"github.com/gaia-vm/gaia/emu/device"
	"github.com/gaia-vm/gaia/emu/machine"
	"github.com/gaia-vm/gaia/emu/mmu"
)

// MMIO register addresses, spec.md §6.
const (
	SerialData  = 0x80001000
	SerialTxRdy = 0x80001004
	IntrAddr    = 0x80001100
	IntrEnabled = 0x80001104
	EPC         = 0x80001108
	IRQNum      = 0x8000110c
	MMUEnabled  = 0x80001200
	PDAddr      = 0x80001204
)

// ErrBounds reports an out-of-range physical address: neither RAM nor a
// recognized MMIO register.
type ErrBounds struct {
	Addr uint32
	Op   string // "load", "store", "fetch", "load_byte", "store_byte" or "jr"
}

func (e *ErrBounds) Error() string {
	return fmt.Sprintf("%s: physical address out of range: 0x%08x", e.Op, e.Addr)
}

// ErrAlignment reports a misaligned word access.
type ErrAlignment struct {
	Addr uint32
}

func (e *ErrAlignment) Error() string {
	return fmt.Sprintf("unaligned word access: 0x%08x", e.Addr)
}

// Bus wires a Machine's RAM and control registers to the MMU and the
// serial device, implementing the load/store semantics of spec.md §4.4.
type Bus struct {
	M      *machine.Machine
	Serial *device.Serial
}

// New creates a Bus over m, with serial I/O bound to ser.
func New(m *machine.Machine, ser *device.Serial) *Bus {
	return &Bus{M: m, Serial: ser}
}

func (b *Bus) translate(va uint32) (uint32, error) {
	return mmu.Translate(b.M, b.M.MMU.Enabled, b.M.MMU.PDAddr, va)
}

// Translate exposes virtual-to-physical translation for callers (jr's
// target validation, the debugger's mem/list commands) that need it without
// going through the load/store path.
func (b *Bus) Translate(va uint32) (uint32, error) {
	return b.translate(va)
}

// Fetch translates va as an instruction address and returns its physical
// address and contents. Unlike LoadWord, it never dispatches to MMIO:
// code fetches are only ever valid against RAM.
func (b *Bus) Fetch(va uint32) (pa uint32, word uint32, err error) {
	pa, err = b.translate(va)
	if err != nil {
		return 0, 0, err
	}
	if pa&3 != 0 {
		return 0, 0, &ErrAlignment{Addr: pa}
	}
	if !b.M.InRAM(pa) {
		return 0, 0, &ErrBounds{Addr: pa, Op: "fetch"}
	}
	return pa, b.M.GetWord(pa), nil
}

// LoadWord implements load(ra, disp): va = reg[ra] + (disp<<2).
func (b *Bus) LoadWord(regA uint32, disp int32) (uint32, error) {
	va := regA + uint32(disp<<2)
	pa, err := b.translate(va)
	if err != nil {
		return 0, err
	}
	if pa&3 != 0 {
		return 0, &ErrAlignment{Addr: pa}
	}
	if b.M.InRAM(pa) {
		return b.M.GetWord(pa), nil
	}
	return b.readMMIO(pa)
}

// StoreWord implements store(ra, disp, value).
func (b *Bus) StoreWord(regA uint32, disp int32, value uint32) error {
	va := regA + uint32(disp<<2)
	pa, err := b.translate(va)
	if err != nil {
		return err
	}
	if pa&3 != 0 {
		return &ErrAlignment{Addr: pa}
	}
	if b.M.InRAM(pa) {
		b.M.PutWord(pa, value)
		return nil
	}
	return b.writeMMIO(pa, value)
}

// LoadByte implements load_byte(ra, disp): va = reg[ra] + disp, RAM only.
func (b *Bus) LoadByte(regA uint32, disp int32) (uint32, error) {
	va := regA + uint32(disp)
	pa, err := b.translate(va)
	if err != nil {
		return 0, err
	}
	if !b.M.InRAM(pa) {
		return 0, &ErrBounds{Addr: pa, Op: "load_byte"}
	}
	return uint32(b.M.Mem[pa]), nil
}

// StoreByte implements store_byte(ra, disp, value), RAM only.
func (b *Bus) StoreByte(regA uint32, disp int32, value uint32) error {
	va := regA + uint32(disp)
	pa, err := b.translate(va)
	if err != nil {
		return err
	}
	if !b.M.InRAM(pa) {
		return &ErrBounds{Addr: pa, Op: "store_byte"}
	}
	b.M.Mem[pa] = byte(value)
	return nil
}

func (b *Bus) readMMIO(pa uint32) (uint32, error) {
	switch pa {
	case SerialData:
		by, err := b.Serial.ReadByte()
		if err != nil {
			return 0, err
		}
		return uint32(by), nil
	case SerialTxRdy:
		return 1, nil
	case IntrAddr:
		return b.M.Intr.Addr, nil
	case IntrEnabled:
		return boolU32(b.M.Intr.Enabled), nil
	case EPC:
		return b.M.Intr.EPC, nil
	case IRQNum:
		return b.M.Intr.IRQNum, nil
	case MMUEnabled:
		return boolU32(b.M.MMU.Enabled), nil
	case PDAddr:
		return b.M.MMU.PDAddr, nil
	default:
		return 0, &ErrBounds{Addr: pa, Op: "load"}
	}
}

func (b *Bus) writeMMIO(pa, value uint32) error {
	switch pa {
	case SerialData:
		return b.Serial.WriteByte(byte(value))
	case SerialTxRdy:
		return nil // read-only, writes are ignored
	case IntrAddr:
		b.M.Intr.Addr = value
	case IntrEnabled:
		b.M.Intr.Enabled = value != 0
	case EPC:
		b.M.Intr.EPC = value
	case IRQNum:
		b.M.Intr.IRQNum = value
	case MMUEnabled:
		b.M.MMU.Enabled = value != 0
	case PDAddr:
		b.M.MMU.PDAddr = value
	default:
		return &ErrBounds{Addr: pa, Op: "store"}
	}
	return nil
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
