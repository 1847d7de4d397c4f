/*
 * GAIA - Terminal raw-mode control.
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

// Package term switches stdin between raw mode, as golang.org/x/term's
// MakeRaw sets it (no echo, non-canonical, and ISIG and OPOST cleared as
// well, so Ctrl-C does not raise SIGINT while raw; VMIN/VTIME are left as
// MakeRaw sets them), and cooked mode for the debugger's interactive REPL.
// It is a no-op when stdin is not a terminal, matching the reference
// implementation's isatty guard.
package term

import (
	"os"

	"golang.org/x/term"
)

// Controller owns stdin's saved terminal state across raw/cooked toggles.
type Controller struct {
	fd       int
	isTTY    bool
	disabled bool // -no-interrupt/-simple: never touch the terminal
	saved    *term.State
}

// New prepares a Controller for fd (typically int(os.Stdin.Fd())). disabled
// mirrors -no-interrupt/-simple, under which the simulator never leaves
// cooked mode.
func New(fd int, disabled bool) *Controller {
	return &Controller{fd: fd, isTTY: term.IsTerminal(fd), disabled: disabled}
}

// MakeRaw puts the terminal into raw mode, remembering the prior state so
// Restore can put it back. A no-op when stdin isn't a tty or raw mode is
// disabled.
func (c *Controller) MakeRaw() error {
	if !c.isTTY || c.disabled {
		return nil
	}
	state, err := term.MakeRaw(c.fd)
	if err != nil {
		return err
	}
	c.saved = state
	return nil
}

// Restore returns the terminal to the state captured by MakeRaw. Safe to
// call multiple times, and from every exit path (clean halt, fatal error,
// debugger cooked-mode excursions).
func (c *Controller) Restore() error {
	if !c.isTTY || c.disabled || c.saved == nil {
		return nil
	}
	return term.Restore(c.fd, c.saved)
}

// StdinFD is a convenience for the common case of controlling os.Stdin.
func StdinFD() int { return int(os.Stdin.Fd()) }
