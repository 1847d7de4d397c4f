/*
 * GAIA - FPU primitives.
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

// Package fpu implements the GAIA floating point unit over 32-bit IEEE-754
// registers. Two interchangeable implementations exist (Standard and
// Maswag), selected at startup by -fpu-maswag, matching the original
// sim.c/fpu.c split and spec.md §9's "pluggable strategy" design note.
package fpu

import "math"

// Unit computes one FPU opcode given the two raw 32-bit register contents
// reinterpreted as float32. ra/rb are the bit patterns of reg[ra]/reg[rb].
type Unit interface {
	Eval(tag uint8, ra, rb uint32) (uint32, error)
}

// ErrDecode is returned for tags with no defined FPU operation (fdiv, the
// tag-3 slot, is deliberately absent — see spec.md §9).
type ErrDecode struct {
	Tag uint8
}

func (e *ErrDecode) Error() string {
	return "instruction decode error (FPU)"
}

// SignMod applies the instruction's 2-bit sign modifier (bits 6..5) to an
// FPU result and normalizes a resulting negative zero to positive zero, per
// spec.md §4.3.
func SignMod(x uint32, sig uint8) uint32 {
	switch sig & 3 {
	case 1:
		x ^= 0x80000000
	case 2:
		x &^= 0x80000000
	case 3:
		x |= 0x80000000
	}
	if x == 0x80000000 {
		return 0
	}
	return x
}

func f32(bits uint32) float32 { return math.Float32frombits(bits) }
func bits(f float32) uint32   { return math.Float32bits(f) }
