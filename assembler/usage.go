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
	"encoding/binary"

	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/instructions"
	"github.com/resenje/ss32/objfile"
)

// HandleInstructionSymbolUsage records a reference to the symbol by the
// instruction that has just been written. The instruction must have been
// written in its pool addressed form with a zero displacement.
//
// If the symbol is defined in the open section the instruction is patched to
// its direct form immediately. Otherwise the reference is resolved when the
// section is closed.
func (ctx *Context) HandleInstructionSymbolUsage(name string) error {
	sec, err := ctx.requireSection(name)
	if err != nil {
		return err
	}

	site := sec.location() - InstructionAddend
	sym := ctx.InsertIfAbsent(name)

	if sym.sameSection(sec.name) {
		return ctx.patchDirect(sec, site, sym.Value)
	}

	sec.symbols.add(name, site)
	return nil
}

// HandleInstructionLiteralUsage records a reference to a literal value by the
// instruction that has just been written. Every instruction in a section that
// refers to the same value shares one pool word.
func (ctx *Context) HandleInstructionLiteralUsage(value uint32) error {
	sec, err := ctx.requireSection("literal")
	if err != nil {
		return err
	}
	sec.literals.add(value, sec.location()-InstructionAddend)
	return nil
}

// HandleDirectiveSymbolUsage writes a word that will hold the address of the
// symbol.
func (ctx *Context) HandleDirectiveSymbolUsage(name string) error {
	sec, err := ctx.requireSection(".word")
	if err != nil {
		return err
	}

	site := sec.location()
	sec.data.Data = binary.LittleEndian.AppendUint32(sec.data.Data, 0)

	return ctx.RecordUsage(name, objfile.Absolute32, site, 0)
}

// RecordUsage records a reference to the symbol at the site in the open
// section. The site is a word for Absolute32 references and a displacement
// field for PCRelative32 references. The bytes at the site must be zero.
//
// The reference is resolved immediately if possible. A PCRelative32 reference
// to a symbol defined in the same section is patched directly. An Absolute32
// reference to a symbol with an absolute value is patched directly and one to
// a symbol defined in any section becomes a relocation. Otherwise a
// ForwardReference is added to the symbol.
func (ctx *Context) RecordUsage(name string, kind objfile.RelocationKind, site uint32, addend int32) error {
	sec, err := ctx.requireSection(name)
	if err != nil {
		return err
	}

	sym := ctx.InsertIfAbsent(name)
	ref := ForwardReference{
		Section: sec.name,
		Offset:  site,
		Kind:    kind,
		Addend:  addend,
	}

	if sym.Defined {
		if done, err := ctx.resolve(sym, ref); done || err != nil {
			return err
		}
		if kind == objfile.Absolute32 {
			ctx.addRelocation(sym, ref)
			return nil
		}
	}

	sym.refs = append(sym.refs, ref)
	return nil
}

// resolve patches the site of the reference if the symbol value can be used
// without the help of the linker. Returns true if the site was patched.
func (ctx *Context) resolve(sym *Symbol, ref ForwardReference) (bool, error) {
	data := ctx.obj.Section(ref.Section).Data

	switch ref.Kind {
	case objfile.PCRelative32:
		if sym.absolute() {
			return false, curated.Errorf(PCRelativeToAbsolute, sym.Name)
		}
		if !sym.sameSection(ref.Section) {
			return false, nil
		}
		d := int64(sym.Value) - int64(ref.Offset) - int64(ref.Addend)
		if err := instructions.PatchDisplacement(data[ref.Offset:], d); err != nil {
			return false, curated.Errorf(Encoding, sym.Name, err)
		}
		return true, nil

	case objfile.Absolute32:
		if !sym.absolute() {
			return false, nil
		}
		binary.LittleEndian.PutUint32(data[ref.Offset:], sym.Value+uint32(ref.Addend))
		return true, nil
	}

	return false, nil
}

// addRelocation adds a relocation for the reference. A relocation naming a
// local symbol is rewritten to name the section symbol of the section that
// owns the local symbol.
func (ctx *Context) addRelocation(sym *Symbol, ref ForwardReference) {
	rel := objfile.Relocation{
		Offset: ref.Offset,
		Symbol: sym.Name,
		Kind:   ref.Kind,
		Addend: ref.Addend,
	}

	// the linker computes symbol + addend - site for pc relative
	// relocations. forward references subtract the addend
	if ref.Kind == objfile.PCRelative32 {
		rel.Addend = -ref.Addend
	}

	if sym.Binding == objfile.Local && sym.Relative() {
		rel.Symbol = sym.Section
		rel.Addend += int32(sym.Value)
	}

	ctx.relocations[ref.Section] = append(ctx.relocations[ref.Section], rel)
}
