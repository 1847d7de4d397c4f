/*
 * GAIA - Hex formatting helpers.
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

// Package hex formats the fixed-width hex values the debugger and
// disassembler print: 32-bit words, 32-bit addresses, and signed
// displacements/literals.
package hex

const hexDigits = "0123456789abcdef"

// pad renders the low width*4 bits of v as exactly width lowercase hex
// digits, zero-padded.
func pad(v uint64, width int) string {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}

// FormatWord renders a 32-bit register or instruction value as "0x" plus
// 8 hex digits.
func FormatWord(v uint32) string {
	return "0x" + pad(uint64(v), 8)
}

// FormatAddr renders a memory address as "0x" plus 8 hex digits. -msize
// lets the simulator's RAM grow past 16MB, so a fixed 6-digit field (the
// default 4MB config's natural width) would silently truncate; this
// always renders the full 32-bit address instead.
func FormatAddr(v uint32) string {
	return "0x" + pad(uint64(v), 8)
}

// FormatSigned renders a signed displacement or literal as hex with a
// leading "-" for negative values, e.g. "0x10" / "-0x10".
func FormatSigned(v int32) string {
	if v < 0 {
		return "-0x" + trim(pad(uint64(-v), 8))
	}
	return "0x" + trim(pad(uint64(v), 8))
}

// trim strips leading zero digits from a fixed-width hex string, keeping
// at least one digit.
func trim(digits string) string {
	i := 0
	for i < len(digits)-1 && digits[i] == '0' {
		i++
	}
	return digits[i:]
}
