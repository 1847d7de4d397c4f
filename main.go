/*
 * GAIA - Main process.
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

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/gaia-vm/gaia/command/reader"
	"github.com/gaia-vm/gaia/emu/bus"
	"github.com/gaia-vm/gaia/emu/cpu"
	"github.com/gaia-vm/gaia/emu/debug"
	"github.com/gaia-vm/gaia/emu/device"
	"github.com/gaia-vm/gaia/emu/fpu"
	"github.com/gaia-vm/gaia/emu/interrupt"
	"github.com/gaia-vm/gaia/emu/loader"
	"github.com/gaia-vm/gaia/emu/machine"
	"github.com/gaia-vm/gaia/util/logger"
	"github.com/gaia-vm/gaia/util/term"
)

var Logger *slog.Logger

func main() {
	optBootTest := getopt.BoolLong("boot-test", 0, "Bootloader test mode: entry 0, relax range checks")
	optDebug := getopt.BoolLong("debug", 0, "Enable debugger and instruction trace")
	optMaswag := getopt.BoolLong("fpu-maswag", 0, "Use the Maswag alternate FPU implementation")
	optMSize := getopt.IntLong("msize", 0, 4, "Memory size in MB")
	optNoInterrupt := getopt.BoolLong("no-interrupt", 0, "Disable interrupt machinery (blocking serial read)")
	optSimple := getopt.BoolLong("simple", 0, "Alias for -no-interrupt")
	optStat := getopt.BoolLong("stat", 0, "Print final status on clean halt")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("<file>")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile *os.File
	if *optLogFile != "" {
		logFile, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	if *optDebug {
		programLevel.Set(slog.LevelDebug)
	} else {
		programLevel.Set(slog.LevelInfo)
	}
	Logger = slog.New(logger.NewHandler(logFile, &slog.HandlerOptions{Level: programLevel}, optDebug))
	slog.SetDefault(Logger)

	args := getopt.Args()
	if len(args) != 1 {
		getopt.Usage()
		os.Exit(1)
	}
	file, err := os.Open(args[0])
	if err != nil {
		fatal(nil, nil, nil, nil, err)
	}
	defer file.Close()

	simple := *optNoInterrupt || *optSimple

	m := machine.New(uint32(*optMSize)*1024*1024, *optBootTest)
	entry := uint32(0x2000)
	if *optBootTest {
		entry = 0
	}
	m.Reset(entry)

	if err := loader.Load(file, m, entry); err != nil {
		fatal(m, nil, nil, nil, err)
	}

	tc := term.New(term.StdinFD(), simple)
	if err := tc.MakeRaw(); err != nil {
		Logger.Warn("could not set raw terminal mode", "error", err)
	}
	defer tc.Restore()

	ser := device.NewSerial(os.Stdin, os.Stdout)
	b := bus.New(m, ser)
	intr := interrupt.New(m, ser, simple)

	var fpuUnit fpu.Unit = fpu.Standard{}
	if *optMaswag {
		fpuUnit = fpu.Maswag{}
	}

	dbg := debug.New(*optDebug, os.Stderr)
	printBanner := true
	dbg.EnterREPL = reader.EnterREPL(tc, &printBanner)

	c := cpu.New(m, b, intr, fpuUnit, dbg)

	for {
		err := c.Step()
		if err == nil {
			continue
		}
		if errors.Is(err, cpu.ErrHalt) {
			break
		}
		fatal(m, b, dbg, tc, err)
	}

	if err := tc.Restore(); err != nil {
		Logger.Warn("could not restore terminal", "error", err)
	}

	if *optStat {
		fmt.Fprintln(os.Stderr, m.String())
	}
	os.Exit(0)
}

// fatal is the single centralized error-exit routine spec.md §7 requires:
// print the status block and trace dump, restore the terminal, then exit
// nonzero. m/b/dbg/tc may be nil when the failure happens before they are
// constructed (file open, loader).
func fatal(m *machine.Machine, b *bus.Bus, dbg *debug.Debugger, tc *term.Controller, err error) {
	fmt.Fprintf(os.Stderr, "\x1b[1;31mfatal: %s\x1b[0;39m\n", err)
	if dbg != nil && m != nil && b != nil {
		dbg.PrintEnv(m, b, true)
		dbg.DumpTrace()
	}
	if tc != nil {
		_ = tc.Restore()
	}
	os.Exit(1)
}
