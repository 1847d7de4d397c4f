/*
 * GAIA - Instruction disassembler.
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

// Package disassembler renders a GAIA instruction word as assembly text,
// used by the debugger's "list" command and crash trace dump.
package disassembler

import (
	"fmt"

	"github.com/gaia-vm/gaia/util/hex"
)

var regs = [32]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9",
	"r10", "r11", "r12", "r13", "r14", "r15", "r16", "r17", "r18", "r19",
	"r20", "r21", "r22", "r23", "r24", "r25", "r26", "r27", "r28", "r29",
	"rsp", "rbp",
}

var aluOp = map[uint8]string{
	0: "add", 1: "sub", 2: "shl", 3: "shr", 4: "sar", 5: "and", 6: "or", 7: "xor",
	22: "cmpult", 23: "cmpule", 24: "cmpne", 25: "cmpeq", 26: "cmplt", 27: "cmple",
	28: "fcmpne", 29: "fcmpeq", 30: "fcmplt", 31: "fcmple",
}

var fpuOp = map[uint8]string{
	0: "fadd", 1: "fsub", 2: "fmul", 3: "fdiv", 4: "finv",
	5: "fsqrt", 6: "ftoi", 7: "itof", 8: "floor",
}

var fpuSig = [4]string{"", ".neg", ".abs", ".abs.neg"}

var debugOp = map[uint8]string{1: "break", 2: "penv", 3: "ptrace"}

var memOp = map[uint8]string{
	6: "ld", 7: "ldb", 8: "st", 9: "stb", 12: "sysenter", 13: "sysexit", 14: "bne", 15: "beq",
}

// Disasm renders one instruction word as an assembly-source line, no
// trailing newline.
func Disasm(inst uint32) string {
	opcode := uint8(inst >> 28)
	rx := uint8((inst >> 23) & 0x1f)
	ra := uint8((inst >> 18) & 0x1f)
	rb := uint8((inst >> 13) & 0x1f)
	lit := int32((inst >> 5) & 0xff)
	tag := uint8(inst & 0x1f)
	sig := (inst >> 5) & 3
	disp16 := int32(int16(uint16(inst & 0xffff)))

	switch opcode {
	case 0:
		if lit >= 128 {
			lit -= 256
		}
		if tag < 28 {
			return fmt.Sprintf("%s %s, %s, %s, %d", aluOp[tag], regs[rx], regs[ra], regs[rb], lit)
		}
		return fmt.Sprintf("%s %s, %s, %s", aluOp[tag], regs[rx], regs[ra], regs[rb])

	case 1:
		if tag < 5 {
			return fmt.Sprintf("%s%s %s, %s, %s", fpuOp[tag], fpuSig[sig], regs[rx], regs[ra], regs[rb])
		}
		return fmt.Sprintf("%s%s %s, %s", fpuOp[tag], fpuSig[sig], regs[rx], regs[ra])

	case 2:
		return fmt.Sprintf("ldl %s, %s", regs[rx], hex.FormatSigned(disp16))

	case 3:
		return fmt.Sprintf("ldh %s, %s, %s", regs[rx], regs[ra], hex.FormatSigned(disp16))

	case 4:
		d := disp16 * 4
		return fmt.Sprintf("jl %s, %s", regs[rx], hex.FormatSigned(d))

	case 5:
		return fmt.Sprintf("jr %s, %s", regs[rx], regs[ra])

	case 6, 8, 14, 15:
		d := disp16 * 4
		return fmt.Sprintf("%s %s, %s, %s", memOp[opcode], regs[rx], regs[ra], hex.FormatSigned(d))

	case 7, 9:
		return fmt.Sprintf("%s %s, %s, %s", memOp[opcode], regs[rx], regs[ra], hex.FormatSigned(disp16))

	case 10:
		return fmt.Sprintf("%s %d", debugOp[rx], disp16)

	case 12, 13:
		return memOp[opcode]

	default:
		return fmt.Sprintf("<unknown opcode %d>", opcode)
	}
}
