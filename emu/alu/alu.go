/*
 * GAIA - Integer ALU primitives.
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

// Package alu implements the GAIA integer ALU, dispatched by a fixed tag
// table in the style of the teacher's per-opcode function tables
// (cpudefs.go's table [256]func(*stepInfo) uint16).
package alu

import "math"

// ErrDecode is returned by Eval for tags with no defined ALU operation.
type ErrDecode struct {
	Tag uint8
}

func (e *ErrDecode) Error() string {
	return "instruction decode error (ALU)"
}

type fn func(ra, t uint32) uint32

var table [32]fn

func init() {
	table[0] = func(ra, t uint32) uint32 { return ra + t }
	table[1] = func(ra, t uint32) uint32 { return ra - t }
	table[2] = func(ra, t uint32) uint32 { return ra << (t & 31) }
	table[3] = func(ra, t uint32) uint32 { return ra >> (t & 31) }
	table[4] = func(ra, t uint32) uint32 { return uint32(int32(ra) >> (t & 31)) }
	table[5] = func(ra, t uint32) uint32 { return ra & t }
	table[6] = func(ra, t uint32) uint32 { return ra | t }
	table[7] = func(ra, t uint32) uint32 { return ra ^ t }
	table[8] = func(ra, t uint32) uint32 { return ra + 4*t }
	table[22] = func(ra, t uint32) uint32 { return boolU32(ra < t) }
	table[23] = func(ra, t uint32) uint32 { return boolU32(ra <= t) }
	table[24] = func(ra, t uint32) uint32 { return boolU32(ra != t) }
	table[25] = func(ra, t uint32) uint32 { return boolU32(ra == t) }
	table[26] = func(ra, t uint32) uint32 { return boolU32(int32(ra) < int32(t)) }
	table[27] = func(ra, t uint32) uint32 { return boolU32(int32(ra) <= int32(t)) }
	// 28/29 (fcmpne/fcmpeq) and 30/31 (fcmplt/fcmple) read ra/rb (not ra/t)
	// as floats; they are installed by evalFloat below, not this table.
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Eval computes the ALU result for tag, given reg[ra], reg[rb] and the
// sign-extended 8-bit literal. t = reg[rb] + lit per spec.md §4.3; float
// comparison tags (28-31) instead compare reg[ra]/reg[rb] directly as
// IEEE-754 float32 bit patterns.
func Eval(tag uint8, regA, regB uint32, lit int32) (uint32, error) {
	if tag >= 28 && tag <= 31 {
		return evalFloat(tag, regA, regB), nil
	}
	if int(tag) >= len(table) || table[tag] == nil {
		return 0, &ErrDecode{Tag: tag}
	}
	t := regB + uint32(lit)
	return table[tag](regA, t), nil
}

func evalFloat(tag uint8, regA, regB uint32) uint32 {
	a := math.Float32frombits(regA)
	b := math.Float32frombits(regB)
	switch tag {
	case 28:
		return boolU32(a != b)
	case 29:
		return boolU32(a == b)
	case 30:
		return boolU32(a < b)
	case 31:
		return boolU32(a <= b)
	}
	return 0
}

// SignExtend8 sign-extends the 8-bit ALU literal field.
func SignExtend8(lit uint8) int32 {
	return int32(int8(lit))
}
