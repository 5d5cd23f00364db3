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
	"strconv"
	"strings"

	"github.com/resenje/ss32/assembler"
	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/instructions"
)

// outside calls fn with the index of every byte of s that is not part of a
// string or character literal. Iteration stops when fn returns false.
func outside(s string, fn func(i int) bool) {
	var quote byte
	escape := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escape:
			escape = false
		case quote != 0:
			if c == '\\' {
				escape = true
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		default:
			if !fn(i) {
				return
			}
		}
	}
}

func stripComment(s string) string {
	end := len(s)
	outside(s, func(i int) bool {
		if s[i] == '#' {
			end = i
			return false
		}
		return true
	})
	return strings.TrimSpace(s[:end])
}

// splitLabels removes the leading labels from the line.
func splitLabels(s string) ([]string, string) {
	var labels []string

	for {
		s = strings.TrimSpace(s)
		i := strings.IndexByte(s, ':')
		if i < 0 {
			break // for loop
		}
		name := strings.TrimSpace(s[:i])
		if !isIdentifier(name) {
			break // for loop
		}
		labels = append(labels, name)
		s = s[i+1:]
	}

	return labels, s
}

// splitWord separates the first word of the line from the rest.
func splitWord(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// splitList splits s at commas that are not inside brackets or literals.
func splitList(s string) []string {
	var l []string

	depth := 0
	start := 0
	outside(s, func(i int) bool {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				l = append(l, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
		return true
	})

	return append(l, strings.TrimSpace(s[start:]))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isLiteral(s string) bool {
	if s == "" {
		return false
	}
	return s[0] == '-' || s[0] == '\'' || (s[0] >= '0' && s[0] <= '9')
}

// parseLiteral accepts decimal, 0x hexadecimal, 0b binary and 0o octal
// numbers with an optional leading minus sign, and character literals.
func parseLiteral(s string) (uint32, error) {
	if strings.HasPrefix(s, "'") {
		if len(s) < 3 || !strings.HasSuffix(s, "'") {
			return 0, curated.Errorf(BadLiteral, s)
		}
		c, err := unescape(s[1 : len(s)-1])
		if err != nil || len(c) != 1 {
			return 0, curated.Errorf(BadLiteral, s)
		}
		return uint32(c[0]), nil
	}

	body, negative := strings.CutPrefix(s, "-")

	base := 10
	if len(body) > 2 && body[0] == '0' && strings.ContainsRune("xXbBoO", rune(body[1])) {
		base = 0
	}

	v, err := strconv.ParseUint(body, base, 32)
	if err != nil {
		return 0, curated.Errorf(BadLiteral, s)
	}

	if negative {
		if v > 1<<31 {
			return 0, curated.Errorf(BadLiteral, s)
		}
		return uint32(-int64(v)), nil
	}

	return uint32(v), nil
}

// parseValue parses a literal or a symbol name.
func parseValue(s string) (assembler.Operand, error) {
	if isLiteral(s) {
		v, err := parseLiteral(s)
		return assembler.Operand{Literal: v}, err
	}
	if isIdentifier(s) {
		return assembler.Operand{Symbol: s}, nil
	}
	return assembler.Operand{}, curated.Errorf(BadOperand, s)
}

var registers = map[string]instructions.Register{
	"%sp": instructions.SP,
	"%pc": instructions.PC,
}

var csrs = map[string]instructions.CSR{
	"%status":  instructions.Status,
	"%handler": instructions.Handler,
	"%cause":   instructions.Cause,
}

func init() {
	for r := instructions.R0; r < instructions.NumRegisters; r++ {
		registers["%r"+strconv.Itoa(int(r))] = r
	}
}

func parseOperand(s string) (assembler.Operand, error) {
	switch {
	case strings.HasPrefix(s, "$"):
		op, err := parseValue(strings.TrimSpace(s[1:]))
		op.Kind = assembler.Immediate
		return op, err

	case strings.HasPrefix(s, "%"):
		if r, ok := registers[s]; ok {
			return assembler.Operand{Kind: assembler.RegisterDirect, Register: r}, nil
		}
		if c, ok := csrs[s]; ok {
			return assembler.Operand{Kind: assembler.ControlRegister, CSR: c}, nil
		}
		return assembler.Operand{}, curated.Errorf(BadOperand, s)

	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return parseIndirect(s, strings.TrimSpace(s[1:len(s)-1]))
	}

	op, err := parseValue(s)
	op.Kind = assembler.MemoryDirect
	return op, err
}

// parseIndirect parses the inside of a bracketed operand.
func parseIndirect(s string, inner string) (assembler.Operand, error) {
	sep := -1
	outside(inner, func(i int) bool {
		if inner[i] == '+' || inner[i] == '-' {
			sep = i
			return false
		}
		return true
	})

	reg := inner
	if sep >= 0 {
		reg = strings.TrimSpace(inner[:sep])
	}

	r, ok := registers[reg]
	if !ok {
		return assembler.Operand{}, curated.Errorf(BadOperand, s)
	}

	if sep < 0 {
		return assembler.Operand{Kind: assembler.RegisterIndirect, Register: r}, nil
	}

	offset := strings.TrimSpace(inner[sep+1:])
	if inner[sep] == '-' {
		if !isLiteral(offset) {
			return assembler.Operand{}, curated.Errorf(BadOperand, s)
		}
		offset = "-" + offset
	}

	op, err := parseValue(offset)
	if err != nil {
		return op, err
	}
	op.Kind = assembler.RegisterOffset
	op.Register = r

	return op, nil
}

func unescape(s string) (string, error) {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue // for loop
		}

		i++
		if i >= len(s) {
			return "", curated.Errorf(BadString, s)
		}

		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '"', '\'':
			b.WriteByte(s[i])
		default:
			return "", curated.Errorf(BadString, s)
		}
	}

	return b.String(), nil
}

// parseString parses a double quoted string.
func parseString(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", curated.Errorf(BadString, s)
	}
	return unescape(s[1 : len(s)-1])
}

// parseTerms parses the expression of an .equ directive.
func parseTerms(expr string) ([]assembler.Term, error) {
	var terms []assembler.Term

	negate := false
	start := 0

	add := func(seg string) error {
		op, err := parseValue(seg)
		if err != nil {
			return err
		}
		terms = append(terms, assembler.Term{Negate: negate, Symbol: op.Symbol, Literal: op.Literal})
		return nil
	}

	var err error
	outside(expr, func(i int) bool {
		c := expr[i]
		if c != '+' && c != '-' {
			return true
		}

		seg := strings.TrimSpace(expr[start:i])
		start = i + 1

		// a sign with no term before it applies to the next term
		if seg == "" {
			negate = negate != (c == '-')
			return true
		}

		if err = add(seg); err != nil {
			return false
		}
		negate = c == '-'
		return true
	})
	if err != nil {
		return nil, err
	}

	seg := strings.TrimSpace(expr[start:])
	if seg == "" {
		return nil, curated.Errorf(BadOperand, expr)
	}
	if err := add(seg); err != nil {
		return nil, err
	}

	return terms, nil
}
