/*
 * GAIA - Interrupt controller.
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

// Package interrupt implements the GAIA interrupt controller (C6): pending
// IRQ sampling, delivery, and the sysenter/sysexit trap primitives.
package interrupt

import (
	"github.com/gaia-vm/gaia/emu/device"
	"github.com/gaia-vm/gaia/emu/event"
	"github.com/gaia-vm/gaia/emu/machine"
)

// IRQ bit positions, spec.md §3.
const (
	IRQPseudo   = 0
	IRQTimer    = 1
	IRQSerial   = 2
	IRQSysenter = 3
)

// cyclesPerTick approximates a 100Hz timer against a simulated clock rate of
// ~93.33MHz, the constant the reference implementation's interrupt() uses in
// its cycle-count approximation rather than probing the wall clock every
// cycle.
const cyclesPerTick = 933300

const timerKey = 1

// Controller samples and delivers interrupts for one Machine. It owns a
// cycle-driven Scheduler (rather than probing the OS clock) so Service can
// run on every instruction cycle without syscall overhead.
type Controller struct {
	M        *machine.Machine
	Serial   *device.Serial
	Disabled bool // set by -no-interrupt / -simple

	sched event.Scheduler
}

// New creates a Controller bound to m and ser. If disabled is true, Service
// is a no-op and callers are expected to use blocking serial reads instead.
func New(m *machine.Machine, ser *device.Serial, disabled bool) *Controller {
	c := &Controller{M: m, Serial: ser, Disabled: disabled}
	if !disabled {
		c.armTimer()
	}
	return c
}

func (c *Controller) armTimer() {
	c.sched.Add(timerKey, cyclesPerTick, func(int) {
		c.M.Intr.IRQBits |= 1 << IRQTimer
		c.armTimer()
	}, 0)
}

// Service samples pending IRQ sources and, if the controller is enabled and
// unmasked, delivers the lowest-indexed pending one. Called once per cycle,
// before fetch, per spec.md §4.6.
func (c *Controller) Service() {
	if c.Disabled {
		return
	}
	c.sched.Advance(1)
	if c.Serial != nil && c.Serial.HasInput() {
		c.M.Intr.IRQBits |= 1 << IRQSerial
	}

	if c.M.Intr.IRQBits == 0 || !c.M.Intr.Enabled {
		return
	}
	bit := lowestSetBit(c.M.Intr.IRQBits)
	c.M.Intr.Enabled = false
	c.M.Intr.EPC = c.M.PC + 4
	c.M.Intr.IRQNum = uint32(bit)
	c.M.Intr.IRQBits &^= 1 << uint(bit)
	c.M.PC = c.M.Intr.Addr
}

func lowestSetBit(bits uint32) int {
	for i := 0; i < 32; i++ {
		if bits&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// Sysenter implements opcode 12: a software-triggered trap.
func (c *Controller) Sysenter() {
	c.M.Intr.Enabled = false
	c.M.Intr.IRQNum = IRQSysenter
	c.M.Intr.EPC = c.M.PC + 4
	c.M.PC = c.M.Intr.Addr - 4
}

// Sysexit implements opcode 13: resume the interrupted instruction and
// re-enable interrupts.
func (c *Controller) Sysexit() {
	c.M.PC = c.M.Intr.EPC - 4
	c.M.Intr.Enabled = true
}
