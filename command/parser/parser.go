/*
 * GAIA - Debugger command parser.
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

// Package parser implements the GAIA debugger's REPL dispatch table: a
// minimum-prefix command matcher in the style of the teacher's cmdList,
// retargeted from device attach/show/set commands to the breakpoint and
// inspection commands of spec.md §4.7.
package parser

import (
	"errors"
	"unicode"

	"github.com/gaia-vm/gaia/emu/bus"
	"github.com/gaia-vm/gaia/emu/debug"
	"github.com/gaia-vm/gaia/emu/machine"
)

// env bundles the state a command handler needs: the machine, its memory
// port, and the debugger owning breakpoints and the trace buffer.
type env struct {
	m *machine.Machine
	b *bus.Bus
	d *debug.Debugger
}

type cmd struct {
	name     string
	min      int // minimum prefix length that still uniquely matches name
	process  func(*cmdLine, *env) (resume bool, err error)
	complete func(*cmdLine) []string
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "c", min: 1, process: cmdContinue},
	{name: "n", min: 1, process: cmdNext},
	{name: "stat", min: 4, process: cmdStat},
	{name: "trace", min: 5, process: cmdTrace},
	{name: "mem", min: 3, process: cmdMem},
	{name: "list", min: 4, process: cmdList_},
	{name: "disable", min: 7, process: cmdDisable},
	{name: "enable", min: 6, process: cmdEnable},
	{name: "help", min: 1, process: cmdHelp},
}

// ProcessCommand runs one REPL input line against m/b/d. It returns
// resume=true when the interactive loop should return control to the main
// loop (a "c" or "n" command was given).
func ProcessCommand(commandLine string, m *machine.Machine, b *bus.Bus, d *debug.Debugger) (resume bool, err error) {
	line := &cmdLine{line: commandLine}
	word := line.getWord()
	if word == "" {
		return false, nil
	}

	match := matchList(word)
	if len(match) == 0 {
		return false, errors.New("unknown command: " + word)
	}
	if len(match) > 1 {
		return false, errors.New("ambiguous command: " + word)
	}

	return match[0].process(line, &env{m: m, b: b, d: d})
}

// CompleteCmd drives liner's tab-completion for the command name itself;
// GAIA's commands take no device/option arguments worth completing.
func CompleteCmd(commandLine string) []string {
	line := &cmdLine{line: commandLine}
	word := line.getWord()
	matches := matchList(word)
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

func matchList(word string) []cmd {
	if word == "" {
		return nil
	}
	var match []cmd
	for _, c := range cmdList {
		if matchOne(c, word) {
			match = append(match, c)
		}
	}
	return match
}

func matchOne(c cmd, word string) bool {
	if len(word) > len(c.name) {
		return false
	}
	if len(word) < c.min {
		return false
	}
	return c.name[:len(word)] == word
}

func (line *cmdLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *cmdLine) isEOL() bool {
	return line.pos >= len(line.line)
}

// getWord returns the next whitespace-delimited token, advancing pos.
func (line *cmdLine) getWord() string {
	line.skipSpace()
	start := line.pos
	for line.pos < len(line.line) && !unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
	return line.line[start:line.pos]
}

// rest returns everything remaining on the line, unparsed.
func (line *cmdLine) rest() string {
	line.skipSpace()
	return line.line[line.pos:]
}
