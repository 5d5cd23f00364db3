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

package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/resenje/ss32/assembler"
	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// Sentinal error patterns.
const (
	SourceError      = "parser: %s:%d: %v"
	UnknownDirective = "unknown directive (%s)"
	MissingArgument  = "%s: missing argument"
	BadIdentifier    = "bad identifier (%s)"
	BadLiteral       = "bad literal (%s)"
	BadOperand       = "bad operand (%s)"
	BadString        = "bad string (%s)"
	ReadError        = "parser: %s: %v"
)

const logTag = "parser"

// Parse reads source from r and assembles it into ctx. The name is used in
// error messages. Parsing stops at the .end directive or at the end of the
// input. A nil Permission denies logging.
func Parse(ctx *assembler.Context, name string, r io.Reader, perm logger.Permission) error {
	if perm == nil {
		perm = logger.Deny
	}

	scanner := bufio.NewScanner(r)

	linum := 0
	for scanner.Scan() {
		linum++

		end, err := line(ctx, scanner.Text())
		if err != nil {
			return curated.Errorf(SourceError, name, linum, err)
		}
		if end {
			logger.Logf(perm, logTag, "%s: .end at line %d", name, linum)
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return curated.Errorf(ReadError, name, err)
	}

	logger.Logf(perm, logTag, "%s: %d lines", name, linum)

	return nil
}

// line assembles a single line of source. Returns true if the line ends the
// assembly.
func line(ctx *assembler.Context, text string) (bool, error) {
	labels, rest := splitLabels(stripComment(text))

	for _, l := range labels {
		if err := ctx.DefineSymbol(l, objfile.TypeObject); err != nil {
			return false, err
		}
	}

	if rest == "" {
		return false, nil
	}

	word, args := splitWord(rest)

	if strings.HasPrefix(word, ".") {
		return directive(ctx, word, args)
	}

	ops, err := operands(args)
	if err != nil {
		return false, err
	}

	return false, ctx.Instruction(strings.ToLower(word), ops)
}

// operands parses a comma separated list of instruction operands.
func operands(args string) ([]assembler.Operand, error) {
	if args == "" {
		return nil, nil
	}

	var ops []assembler.Operand
	for _, s := range splitList(args) {
		op, err := parseOperand(s)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, nil
}

func directive(ctx *assembler.Context, word string, args string) (bool, error) {
	switch word {
	case ".global", ".extern":
		names, err := identifiers(word, args)
		if err != nil {
			return false, err
		}
		for _, n := range names {
			if word == ".global" {
				ctx.Global(n)
			} else {
				ctx.Extern(n)
			}
		}

	case ".section":
		if args == "" {
			return false, curated.Errorf(MissingArgument, word)
		}
		return false, ctx.OpenSection(args)

	case ".word":
		if args == "" {
			return false, curated.Errorf(MissingArgument, word)
		}
		for _, s := range splitList(args) {
			op, err := parseValue(s)
			if err != nil {
				return false, err
			}
			op.Kind = assembler.MemoryDirect
			if err := ctx.Word(op); err != nil {
				return false, err
			}
		}

	case ".skip":
		if args == "" {
			return false, curated.Errorf(MissingArgument, word)
		}
		n, err := parseLiteral(args)
		if err != nil {
			return false, err
		}
		return false, ctx.Skip(n)

	case ".ascii":
		s, err := parseString(args)
		if err != nil {
			return false, err
		}
		return false, ctx.Ascii(s)

	case ".equ":
		l := splitList(args)
		if len(l) != 2 {
			return false, curated.Errorf(MissingArgument, word)
		}
		if !isIdentifier(l[0]) {
			return false, curated.Errorf(BadIdentifier, l[0])
		}
		terms, err := parseTerms(l[1])
		if err != nil {
			return false, err
		}
		return false, ctx.Equ(l[0], terms)

	case ".end":
		return true, ctx.End()

	default:
		return false, curated.Errorf(UnknownDirective, word)
	}

	return false, nil
}

func identifiers(word string, args string) ([]string, error) {
	if args == "" {
		return nil, curated.Errorf(MissingArgument, word)
	}
	names := splitList(args)
	for _, n := range names {
		if !isIdentifier(n) {
			return nil, curated.Errorf(BadIdentifier, n)
		}
	}
	return names, nil
}
