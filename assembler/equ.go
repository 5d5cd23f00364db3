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

package assembler

import (
	"fmt"

	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// Term is one term of an .equ expression. Exactly one of Symbol or Literal is
// used. An empty Symbol means the term is the Literal.
type Term struct {
	Negate  bool
	Symbol  string
	Literal uint32
}

func (t Term) String() string {
	sign := "+"
	if t.Negate {
		sign = "-"
	}
	if t.Symbol != "" {
		return fmt.Sprintf("%s%s", sign, t.Symbol)
	}
	return fmt.Sprintf("%s%d", sign, int32(t.Literal))
}

type equ struct {
	name  string
	terms []Term
}

// Equ defines the symbol with the value of the expression. If a symbol in the
// expression is not yet defined the computation is deferred until the end of
// assembly.
//
// A value made only of literals and absolute symbols is absolute. A value with
// exactly one net section relative term belongs to that section. Any other
// combination cannot be computed.
func (ctx *Context) Equ(name string, terms []Term) error {
	if ctx.ended {
		return curated.Errorf(AssemblyEnded, ".equ")
	}

	sym := ctx.InsertIfAbsent(name)
	if sym.Defined {
		return curated.Errorf(SymbolRedefined, name)
	}

	e := equ{name: name, terms: terms}

	ok, err := ctx.computeEqu(e)
	if err != nil {
		return err
	}
	if !ok {
		logger.Logf(ctx.perm, logTag, ".equ %s deferred", name)
		ctx.equs = append(ctx.equs, e)
	}

	return nil
}

// computeEqu defines the symbol if every symbol in the expression is known.
func (ctx *Context) computeEqu(e equ) (bool, error) {
	var value uint32

	// net count of relative terms per section
	relative := make(map[string]int)

	for _, t := range e.terms {
		v := t.Literal

		if t.Symbol != "" {
			sym, ok := ctx.symbols[t.Symbol]
			if !ok || !sym.Defined {
				return false, nil
			}
			v = sym.Value
			if sym.Relative() {
				if t.Negate {
					relative[sym.Section]--
				} else {
					relative[sym.Section]++
				}
			}
		}

		if t.Negate {
			value -= v
		} else {
			value += v
		}
	}

	section := objfile.Absolute
	for s, n := range relative {
		switch {
		case n == 0:
		case n == 1 && section == objfile.Absolute:
			section = s
		default:
			return false, curated.Errorf(EquNotComputable, e.name)
		}
	}

	if err := ctx.define(e.name, objfile.TypeNone, section, value); err != nil {
		return false, err
	}

	logger.Logf(ctx.perm, logTag, ".equ %s = %#x (%s)", e.name, value, section)

	return true, nil
}

// resolveEqus computes deferred .equ symbols until no more progress can be
// made.
func (ctx *Context) resolveEqus() error {
	for len(ctx.equs) > 0 {
		var remaining []equ

		for _, e := range ctx.equs {
			ok, err := ctx.computeEqu(e)
			if err != nil {
				return err
			}
			if !ok {
				remaining = append(remaining, e)
			}
		}

		if len(remaining) == len(ctx.equs) {
			return curated.Errorf(EquNotComputable, remaining[0].name)
		}

		ctx.equs = remaining
	}

	return nil
}
