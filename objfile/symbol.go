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

package objfile

import (
	"fmt"
	"sort"
)

// Reserved section names.
const (
	// owning section of symbols declared extern and not defined
	Undefined = "UND"

	// owning section of symbols with an absolute value
	Absolute = "ABS"
)

// Binding of a symbol.
type Binding int

// List of valid bindings.
const (
	Local Binding = iota
	Global
)

func (b Binding) String() string {
	switch b {
	case Local:
		return "LOC"
	case Global:
		return "GLOB"
	}
	return "UNDEF"
}

// Type of a symbol.
type Type int

// List of valid symbol types.
const (
	TypeNone Type = iota
	TypeSection
	TypeObject
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "NOTYP"
	case TypeSection:
		return "SCTN"
	case TypeObject:
		return "OBJ"
	}
	return "UNDEF"
}

// Symbol is an entry in a symbol table.
type Symbol struct {
	Name    string
	Binding Binding
	Type    Type

	// the owning section. Undefined and Absolute are special values
	Section string

	// offset into the owning section, or the address after linking. absolute
	// symbols hold their value
	Value uint32

	Defined bool

	// definition order. used to sort the symbol table on output
	Index int
}

func (sym Symbol) String() string {
	return fmt.Sprintf("%s (%s %s %s=%#08x)", sym.Name, sym.Type, sym.Binding, sym.Section, sym.Value)
}

// Relative returns true if the value of the symbol is an offset into a
// section that will be placed by the linker.
func (sym Symbol) Relative() bool {
	return sym.Defined && sym.Section != Absolute && sym.Section != Undefined
}

// Symbols is a symbol table keyed by name.
type Symbols map[string]*Symbol

// Sorted returns the symbols in output order. Section symbols come first then
// defined symbols in definition order. Undefined symbols are last and are
// sorted by name.
func (s Symbols) Sorted() []*Symbol {
	l := make([]*Symbol, 0, len(s))
	for _, sym := range s {
		l = append(l, sym)
	}

	rank := func(sym *Symbol) int {
		switch {
		case sym.Type == TypeSection:
			return 0
		case sym.Defined:
			return 1
		}
		return 2
	}

	sort.SliceStable(l, func(i, j int) bool {
		ri, rj := rank(l[i]), rank(l[j])
		if ri != rj {
			return ri < rj
		}
		if ri < 2 && l[i].Index != l[j].Index {
			return l[i].Index < l[j].Index
		}
		return l[i].Name < l[j].Name
	})

	return l
}
