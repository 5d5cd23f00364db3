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
	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/objfile"
)

// ForwardReference is a reference to a symbol that could not be resolved when
// it was made.
type ForwardReference struct {
	// the section containing the site and the offset of the site within that
	// section
	Section string
	Offset  uint32

	Kind objfile.RelocationKind

	// for PCRelative32 references the patched value is the symbol value minus
	// the offset minus the addend. for Absolute32 references it is the symbol
	// value plus the addend
	Addend int32
}

// Symbol is an entry in the symbol table of an assembly.
type Symbol struct {
	objfile.Symbol

	refs []ForwardReference
}

// References returns the outstanding forward references.
func (sym *Symbol) References() []ForwardReference {
	return sym.refs
}

// Symbol returns the named symbol.
func (ctx *Context) Symbol(name string) (*Symbol, bool) {
	sym, ok := ctx.symbols[name]
	return sym, ok
}

// InsertIfAbsent creates an undefined local symbol with no type if there is no
// symbol with the name. The symbol with the name is returned.
func (ctx *Context) InsertIfAbsent(name string) *Symbol {
	if sym, ok := ctx.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{
		Symbol: objfile.Symbol{
			Name:    name,
			Binding: objfile.Local,
			Type:    objfile.TypeNone,
			Index:   -1,
		},
	}
	ctx.symbols[name] = sym
	return sym
}

// DefineSymbol defines the symbol at the current location of the open section.
func (ctx *Context) DefineSymbol(name string, typ objfile.Type) error {
	if ctx.current == nil {
		return curated.Errorf(NoOpenSection, name)
	}
	return ctx.define(name, typ, ctx.current.name, ctx.current.location())
}

func (ctx *Context) define(name string, typ objfile.Type, section string, value uint32) error {
	sym := ctx.InsertIfAbsent(name)
	if sym.Defined {
		return curated.Errorf(SymbolRedefined, name)
	}

	sym.Type = typ
	sym.Section = section
	sym.Value = value
	sym.Defined = true
	sym.Index = ctx.defined
	ctx.defined++

	return nil
}

// Global marks the symbol as visible to other objects.
func (ctx *Context) Global(name string) {
	sym := ctx.InsertIfAbsent(name)
	sym.Binding = objfile.Global
}

// Extern declares that the symbol is defined in another object. A symbol that
// is already defined keeps its definition and becomes global.
func (ctx *Context) Extern(name string) {
	sym := ctx.InsertIfAbsent(name)
	sym.Binding = objfile.Global
	if !sym.Defined {
		sym.Type = objfile.TypeNone
		sym.Section = objfile.Undefined
	}
}

// sameSection returns true if the symbol is defined in the named section.
func (sym *Symbol) sameSection(section string) bool {
	return sym.Defined && sym.Section == section
}

// absolute returns true if the symbol is defined with an absolute value.
func (sym *Symbol) absolute() bool {
	return sym.Defined && sym.Section == objfile.Absolute
}
