/*
 * GAIA - Two-level page-walking MMU.
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

// Package mmu implements the GAIA two-level page-walking MMU: 4KiB pages,
// 10 bits of page-directory index, 10 bits of page-table index, 12 bits of
// page offset.
//
// spec.md §9's design note replaces the reference implementation's
// "to_physical: " string-prefix convention (used to stop the central error
// reporter from recursively re-translating the PC while reporting a
// translation fault) with a distinct TranslationError type.
package mmu

import "fmt"

// TranslationError reports a fatal failure to translate a virtual address.
// Its presence (rather than a generic error) tells the caller not to
// attempt re-translating the faulting PC when building a crash report.
type TranslationError struct {
	Reason string
	VA     uint32
	Detail uint32 // PDE/PTE address or physical address involved, if any
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("to_physical: %s: 0x%08x, requested virtual address: 0x%08x", e.Reason, e.Detail, e.VA)
}

// WordReader reads a RAM word at a raw physical address. emu/machine's
// Machine satisfies this.
type WordReader interface {
	GetWord(addr uint32) uint32
	InRAM(addr uint32) bool
}

const (
	pageOffsetBits = 12
	pdeIndexBits   = 10
	pageSize       = 1 << pageOffsetBits
	pageColorMask  = 0x3000
)

// Translate converts a virtual address to a physical one. When enabled is
// false it is the identity function. Otherwise it walks the two-level page
// table rooted at pdAddr, per spec.md §4.2.
func Translate(mem WordReader, enabled bool, pdAddr, va uint32) (uint32, error) {
	if !enabled {
		return va, nil
	}

	pdeAddr := pdAddr | ((va >> 22) << 2)
	if pdeAddr&3 != 0 || !mem.InRAM(pdeAddr) {
		return 0, &TranslationError{Reason: "PDE address error", VA: va, Detail: pdeAddr}
	}
	pde := mem.GetWord(pdeAddr)
	if pde&1 == 0 {
		return 0, &TranslationError{Reason: "invalid PDE", VA: va}
	}

	pteAddr := (pde &^ 0xfff) | (((va >> pageOffsetBits) & 0x3ff) << 2)
	if !mem.InRAM(pteAddr) {
		return 0, &TranslationError{Reason: "PTE address error", VA: va, Detail: pteAddr}
	}
	pte := mem.GetWord(pteAddr)
	if pte&1 == 0 {
		return 0, &TranslationError{Reason: "invalid PTE", VA: va}
	}

	pa := (pte &^ 0xfff) | (va & 0xfff)
	if pa&pageColorMask != va&pageColorMask {
		return 0, &TranslationError{Reason: "invalid page color", VA: va, Detail: pa}
	}
	return pa, nil
}
