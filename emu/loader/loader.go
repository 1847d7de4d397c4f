/*
 * GAIA - Binary image loader.
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

// Package loader reads the GAIA binary image format (C9): a 4-byte
// little-endian length header followed by exactly that many payload bytes.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gaia-vm/gaia/emu/machine"
)

// ErrShortFile is returned when the stream ends before the declared
// payload length is satisfied, or before the 4-byte header is complete.
type ErrShortFile struct {
	Want, Got int
}

func (e *ErrShortFile) Error() string {
	return fmt.Sprintf("short file: declared %d bytes of payload, read %d", e.Want, e.Got)
}

// ErrTrailingData is returned when bytes remain after the declared payload.
type ErrTrailingData struct{}

func (e *ErrTrailingData) Error() string { return "trailing data after declared payload length" }

// Load reads a binary image from r and places it at entry in m's RAM.
// It fails if the stream is shorter than declared, or if any bytes remain
// after the payload (the format requires EOF immediately after).
func Load(r io.Reader, m *machine.Machine, entry uint32) error {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return &ErrShortFile{Want: 4, Got: 0}
	}
	size := binary.LittleEndian.Uint32(header[:])

	if uint64(entry)+uint64(size) > uint64(m.MemSize) {
		return fmt.Errorf("program of %d bytes at entry 0x%08x does not fit in %d bytes of RAM", size, entry, m.MemSize)
	}

	payload := m.Mem[entry : uint64(entry)+uint64(size)]
	n, err := io.ReadFull(r, payload)
	if err != nil {
		return &ErrShortFile{Want: int(size), Got: n}
	}

	var extra [1]byte
	if _, err := r.Read(extra[:]); err != io.EOF {
		return &ErrTrailingData{}
	}
	return nil
}
