// This file is part of ss32.
//
// ss32 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ss32 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ss32.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/resenje/ss32/assembler"
	"github.com/resenje/ss32/assembler/parser"
	"github.com/resenje/ss32/disassembly"
	"github.com/resenje/ss32/easyterm"
	"github.com/resenje/ss32/environment"
	"github.com/resenje/ss32/linker"
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/modalflag"
	"github.com/resenje/ss32/objfile"
	"github.com/resenje/ss32/statsview"
	"github.com/resenje/ss32/version"
)

// exit values returned by launch().
const (
	exitSuccess   = 0
	exitArguments = 10
	exitMode      = 20
)

func main() {
	os.Exit(launch(os.Args[1:], os.Stdout, os.Stderr, environment.NewEnvironment()))
}

// launch runs the program with the supplied arguments and returns the value
// to be used with os.Exit().
func launch(args []string, output io.Writer, errOutput io.Writer, env environment.Environment) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("ASM", "LINK", "OBJDUMP", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return exitSuccess

	case modalflag.ParseError:
		fmt.Fprintf(errOutput, "* error: %v\n", err)
		return exitArguments
	}

	switch md.Mode() {
	case "ASM":
		err = assemble(md, env)

	case "LINK":
		err = link(md, env)

	case "OBJDUMP":
		err = objdump(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Fprintf(errOutput, "* error in %s mode: %s\n", md.String(), err)
		return exitMode
	}

	return exitSuccess
}

// echoLog sends new log entries to stderr. colored if stderr is a terminal.
func echoLog(echo bool) {
	if !echo {
		logger.SetEcho(nil)
		return
	}
	if easyterm.IsTerminal(os.Stderr) {
		logger.SetEcho(logger.NewColorizer(os.Stderr))
	} else {
		logger.SetEcho(os.Stderr)
	}
}

// writeOutput writes the contents of the buffer to the named file. if the
// filename is empty the buffer is written to output instead.
func writeOutput(filename string, b *bytes.Buffer, output io.Writer) error {
	if filename == "" {
		_, err := b.WriteTo(output)
		return err
	}
	return os.WriteFile(filename, b.Bytes(), 0o644)
}

func assemble(md *modalflag.Modes, env environment.Environment) error {
	md.NewMode()

	out := md.AddString("o", env.AsmOut, "output object file")
	echo := md.AddBool("log", env.Log, "echo log to stderr")

	var stats *bool
	if statsview.Available() {
		stats = md.AddBool("statsview", false, "run stats server")
	}

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("source file required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	if *out == "" {
		return fmt.Errorf("output file required for %s mode", md)
	}

	echoLog(*echo)
	perm := logger.Flag(*echo)
	if stats != nil && *stats {
		stop := statsview.Launch(md.Output, perm, md.String())
		defer stop()
	}

	filename := md.GetArg(0)
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := assembler.NewContext(perm)
	err = parser.Parse(ctx, filename, f, perm)
	if err != nil {
		return err
	}

	o, err := ctx.Object()
	if err != nil {
		return err
	}

	var b bytes.Buffer
	err = objfile.Write(&b, o)
	if err != nil {
		return err
	}

	return writeOutput(*out, &b, md.Output)
}

func link(md *modalflag.Modes, env environment.Environment) error {
	md.NewMode()

	hex := md.AddBool("hex", false, "write memory image as hex (required)")
	out := md.AddString("o", env.LinkOut, "output file (default stdout)")
	graph := md.AddString("memviz", "", "write graphviz description of the linker state to file")
	echo := md.AddBool("log", env.Log, "echo log to stderr")

	var placements linker.Placements
	md.AddVar(&placements, "place", "place section at address: <section>@<address> (repeatable)")

	var stats *bool
	if statsview.Available() {
		stats = md.AddBool("statsview", false, "run stats server")
	}

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if !*hex {
		return fmt.Errorf("-hex is required for %s mode", md)
	}

	if len(md.RemainingArgs()) == 0 {
		return fmt.Errorf("object files required for %s mode", md)
	}

	echoLog(*echo)
	perm := logger.Flag(*echo)
	if stats != nil && *stats {
		stop := statsview.Launch(md.Output, perm, md.String())
		defer stop()
	}

	ctx := linker.NewContext(perm)
	for _, filename := range md.RemainingArgs() {
		o, err := readObject(filename)
		if err != nil {
			return err
		}
		err = ctx.Fold(o)
		if err != nil {
			return fmt.Errorf("%s: %w", filename, err)
		}
	}

	img, err := ctx.Link(placements)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	err = objfile.WriteImage(&b, img)
	if err != nil {
		return err
	}

	if *graph != "" {
		var g bytes.Buffer
		ctx.Graph(&g)
		err = os.WriteFile(*graph, g.Bytes(), 0o644)
		if err != nil {
			return err
		}
	}

	return writeOutput(*out, &b, md.Output)
}

func readObject(filename string) (*objfile.Object, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	o, err := objfile.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return o, nil
}

func objdump(md *modalflag.Modes) error {
	md.NewMode()

	disasm := md.AddBool("disasm", false, "include disassembly of every section")
	bytecode := md.AddBool("bytecode", false, "include bytecode in disassembly")
	raw := md.AddBool("raw", false, "dump object structure")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("object file required for %s mode", md)
	case 1:
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	o, err := readObject(md.GetArg(0))
	if err != nil {
		return err
	}

	err = objfile.Write(md.Output, o)
	if err != nil {
		return err
	}

	if *disasm {
		dsm := disassembly.FromObject(o)
		err = dsm.Write(md.Output, disassembly.WriteAttr{
			ByteCode: *bytecode,
			Annotate: true,
		})
		if err != nil {
			return err
		}
	}

	if *raw {
		pr := pp.New()
		pr.SetOutput(md.Output)
		pr.SetColoringEnabled(md.Output == os.Stdout && easyterm.IsTerminal(os.Stdout))
		_, err = pr.Println(o)
		if err != nil {
			return err
		}
	}

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	fmt.Fprintln(md.Output, version.String())
	return nil
}
