/*
 * GAIA - Debugger command handlers.
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

package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gaia-vm/gaia/emu/disassemble"
)

// cmdContinue implements "c": resume free-running execution.
func cmdContinue(_ *cmdLine, e *env) (bool, error) {
	e.d.Continue()
	return true, nil
}

// cmdNext implements "n": execute exactly one more instruction, remaining
// stopped at the breakpoint (InDebug stays set).
func cmdNext(_ *cmdLine, _ *env) (bool, error) {
	return true, nil
}

// cmdStat implements "stat": print the full simulator status.
func cmdStat(_ *cmdLine, e *env) (bool, error) {
	e.d.PrintEnv(e.m, e.b, true)
	return false, nil
}

// cmdTrace implements "trace": dump the crash trace ring buffer.
func cmdTrace(_ *cmdLine, e *env) (bool, error) {
	e.d.DumpTrace()
	return false, nil
}

// cmdMem implements "mem <hex-addr> [count]": print count words (default 1)
// starting at the given virtual address.
func cmdMem(line *cmdLine, e *env) (bool, error) {
	addrStr := line.getWord()
	if addrStr == "" {
		return false, errors.New("usage: mem <hex-addr> [count]")
	}
	addr64, err := strconv.ParseUint(strings.TrimPrefix(addrStr, "0x"), 16, 32)
	if err != nil {
		return false, fmt.Errorf("bad address %q: %w", addrStr, err)
	}
	addr := uint32(addr64)

	count := 1
	if countStr := line.getWord(); countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return false, fmt.Errorf("bad count %q: %w", countStr, err)
		}
		count = n
	}

	for i := 0; i < count; i++ {
		va := addr + uint32(i*4)
		pa, terr := e.b.Translate(va)
		if terr != nil {
			return false, terr
		}
		if !e.m.InRAM(pa) {
			return false, fmt.Errorf("mem: address out of range: 0x%08x", va)
		}
		fmt.Fprintf(e.d.Out, "0x%08x: 0x%08x\n", va, e.m.GetWord(pa))
	}
	return false, nil
}

// cmdList_ implements "list [N]": disassemble the next N instructions
// starting at PC (default 10).
func cmdList_(line *cmdLine, e *env) (bool, error) {
	count := 10
	if countStr := line.getWord(); countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return false, fmt.Errorf("bad count %q: %w", countStr, err)
		}
		count = n
	}

	pc := e.m.PC
	for i := 0; i < count; i++ {
		va := pc + uint32(i*4)
		pa, err := e.b.Translate(va)
		if err != nil {
			return false, err
		}
		if !e.m.InRAM(pa) {
			return false, fmt.Errorf("list: address out of range: 0x%08x", va)
		}
		fmt.Fprintf(e.d.Out, "0x%08x: %s\n", va, disassembler.Disasm(e.m.GetWord(pa)))
	}
	return false, nil
}

// cmdDisable implements "disable <id>|all".
func cmdDisable(line *cmdLine, e *env) (bool, error) {
	arg := line.getWord()
	if arg == "all" {
		e.d.DisableAllBreaks()
		fmt.Fprintln(e.d.Out, "\x1b[1;31mall break point disabled.\x1b[0;39m")
		return false, nil
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return false, errors.New("usage: disable <id>|all")
	}
	e.d.DisableBreak(int32(id))
	fmt.Fprintf(e.d.Out, "\x1b[1;31mbreak point %d disabled.\x1b[0;39m\n", id)
	return false, nil
}

// cmdEnable implements "enable <id>|all".
func cmdEnable(line *cmdLine, e *env) (bool, error) {
	arg := line.getWord()
	if arg == "all" {
		e.d.EnableAllBreaks()
		fmt.Fprintln(e.d.Out, "\x1b[1;31mall break point enabled.\x1b[0;39m")
		return false, nil
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return false, errors.New("usage: enable <id>|all")
	}
	e.d.EnableBreak(int32(id))
	fmt.Fprintf(e.d.Out, "\x1b[1;31mbreak point %d enabled.\x1b[0;39m\n", id)
	return false, nil
}

// cmdHelp implements "help".
func cmdHelp(_ *cmdLine, e *env) (bool, error) {
	fmt.Fprintln(e.d.Out, "c, n, stat, trace, mem, list, disable and enable commands are available.")
	return false, nil
}
