/*
 * GAIA - Debugger console reader.
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

// Package reader drives the debugger's interactive REPL with
// github.com/peterh/liner: line history, editing, and tab completion over
// command/parser's dispatch table. It implements emu/debug's EnterREPL hook
// without emu/debug ever importing this package (or command/parser),
// avoiding an import cycle — the same structural-interface pattern used for
// cpu.Debugger.
package reader

import (
	"errors"
	"fmt"

	"github.com/peterh/liner"

	"github.com/gaia-vm/gaia/command/parser"
	"github.com/gaia-vm/gaia/emu/bus"
	"github.com/gaia-vm/gaia/emu/debug"
	"github.com/gaia-vm/gaia/emu/machine"
	"github.com/gaia-vm/gaia/util/term"
)

// EnterREPL reads and dispatches commands from stdin until a "c"/"n"
// command resumes execution, or stdin hits EOF (Ctrl-D leaves the REPL as
// if "c" had been given, matching the reference implementation's fgets-
// returns-NULL behavior). tc, when non-nil, is restored to cooked mode for
// the duration of the session and returned to raw mode before this
// function returns, per spec.md §5's shared-terminal-resource rule.
func EnterREPL(tc *term.Controller, printBanner *bool) func(m *machine.Machine, b *bus.Bus, d *debug.Debugger) error {
	return func(m *machine.Machine, b *bus.Bus, d *debug.Debugger) error {
		if tc != nil {
			if err := tc.Restore(); err != nil {
				return err
			}
			defer tc.MakeRaw()
		}

		if *printBanner {
			fmt.Fprintln(d.Out, "help: c, n, stat, trace, mem, list, disable and enable commands are available.")
			*printBanner = false
		}

		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)
		line.SetCompleter(parser.CompleteCmd)

		for {
			input, err := line.Prompt("> ")
			if err != nil {
				if errors.Is(err, liner.ErrPromptAborted) {
					d.Continue()
					return nil
				}
				// EOF: leave the REPL, matching fgets(NULL) in do_interactive_loop.
				d.Continue()
				return nil
			}
			line.AppendHistory(input)

			resume, err := parser.ProcessCommand(input, m, b, d)
			if err != nil {
				fmt.Fprintln(d.Out, "Error: "+err.Error())
				continue
			}
			if resume {
				return nil
			}
		}
	}
}
