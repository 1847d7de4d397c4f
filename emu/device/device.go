/*
 * GAIA - Serial device bound to stdin/stdout.
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

// Package device implements the GAIA serial device mapped into the MMIO
// region at 0x80001000. Byte-availability checks are non-destructive: the
// reference implementation's getchar+ungetc approach drops bytes when
// ungetc fails on a pipe (spec.md §9's open question); this instead peeks
// through a buffered reader that never discards what it has read.
package device

import (
	"bufio"
	"io"
)

// Serial is a single-byte serial port: reads pull from an input stream,
// writes push to an output stream.
type Serial struct {
	in  *bufio.Reader
	out io.Writer
}

// NewSerial binds a Serial to the given input/output streams.
func NewSerial(in io.Reader, out io.Writer) *Serial {
	return &Serial{in: bufio.NewReader(in), out: out}
}

// HasInput reports whether a byte is available without consuming it.
func (s *Serial) HasInput() bool {
	_, err := s.in.Peek(1)
	return err == nil
}

// ReadByte returns the next input byte, blocking until one arrives or the
// stream ends.
func (s *Serial) ReadByte() (byte, error) {
	return s.in.ReadByte()
}

// WriteByte writes one byte to the output stream.
func (s *Serial) WriteByte(b byte) error {
	_, err := s.out.Write([]byte{b})
	return err
}

// TxReady always reports true: the simulated UART has no output backpressure.
func (s *Serial) TxReady() bool {
	return true
}
