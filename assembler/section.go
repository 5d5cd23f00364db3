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
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// usages of a pool key (a literal value or a symbol name) by instructions in
// the open section. sites are the offsets of displacement fields.
type usages[K comparable] struct {
	order []K
	sites map[K][]uint32
}

func newUsages[K comparable]() usages[K] {
	return usages[K]{sites: make(map[K][]uint32)}
}

func (u *usages[K]) add(key K, site uint32) {
	if _, ok := u.sites[key]; !ok {
		u.order = append(u.order, key)
	}
	u.sites[key] = append(u.sites[key], site)
}

// section is an open section.
type section struct {
	name string
	data *objfile.SectionData

	literals usages[uint32]
	symbols  usages[string]
}

func (sec *section) location() uint32 {
	return sec.data.Size()
}

// OpenSection closes the open section, if there is one, and opens the named
// section. The section symbol is defined when the section is first opened.
// Opening a section a second time continues writing at its end.
func (ctx *Context) OpenSection(name string) error {
	if ctx.ended {
		return curated.Errorf(AssemblyEnded, ".section")
	}

	if err := objfile.CheckSectionName(name); err != nil {
		return curated.Errorf("assembler: %v", err)
	}

	if err := ctx.CloseSection(); err != nil {
		return err
	}

	reopen := ctx.obj.Section(name) != nil

	ctx.current = &section{
		name:     name,
		data:     ctx.obj.AddSection(name),
		literals: newUsages[uint32](),
		symbols:  newUsages[string](),
	}

	if reopen {
		logger.Logf(ctx.perm, logTag, "reopening section %s at %#x", name, ctx.current.location())
		return nil
	}

	logger.Logf(ctx.perm, logTag, "opening section %s", name)
	return ctx.define(name, objfile.TypeSection, name, 0)
}

// CloseSection writes the literal and symbol pools of the open section and
// closes it. It does nothing if there is no open section.
func (ctx *Context) CloseSection() error {
	sec := ctx.current
	if sec == nil {
		return nil
	}
	ctx.current = nil

	// symbols defined in this section after they were used do not need a pool
	// word. the referencing instruction is patched to the direct form
	var pooled []string
	for _, name := range sec.symbols.order {
		sym := ctx.symbols[name]
		if !sym.sameSection(sec.name) {
			pooled = append(pooled, name)
			continue // for loop
		}
		for _, site := range sec.symbols.sites[name] {
			if err := ctx.patchDirect(sec, site, sym.Value); err != nil {
				return err
			}
		}
	}

	slots := len(sec.literals.order) + len(pooled)
	if slots == 0 {
		logger.Logf(ctx.perm, logTag, "closing section %s (%d bytes)", sec.name, sec.location())
		return nil
	}

	skip := slots * WordSize
	if !instructions.FitsDisplacement(int64(skip)) {
		return curated.Errorf(PoolTooLarge, sec.name, slots)
	}

	err := ctx.emit(sec, instructions.Jump{
		Mode: instructions.JumpDirect,
		A:    instructions.PC,
		D:    int16(skip),
	})
	if err != nil {
		return err
	}

	logger.Logf(ctx.perm, logPool, "section %s: %d literals and %d symbols at %#x",
		sec.name, len(sec.literals.order), len(pooled), sec.location())

	for _, lit := range sec.literals.order {
		slot := sec.location()
		for _, site := range sec.literals.sites[lit] {
			if err := ctx.patchPool(sec, site, slot); err != nil {
				return err
			}
		}
		sec.data.Data = binary.LittleEndian.AppendUint32(sec.data.Data, lit)
	}

	for _, name := range pooled {
		slot := sec.location()
		for _, site := range sec.symbols.sites[name] {
			if err := ctx.patchPool(sec, site, slot); err != nil {
				return err
			}
		}

		sym := ctx.symbols[name]
		if sym.absolute() {
			sec.data.Data = binary.LittleEndian.AppendUint32(sec.data.Data, sym.Value)
			continue // for loop
		}

		sym.refs = append(sym.refs, ForwardReference{
			Section: sec.name,
			Offset:  slot,
			Kind:    objfile.Absolute32,
		})
		sec.data.Data = binary.LittleEndian.AppendUint32(sec.data.Data, 0)
	}

	logger.Logf(ctx.perm, logTag, "closing section %s (%d bytes)", sec.name, sec.location())

	return nil
}

// patchPool points the instruction with the displacement field at site to the
// pool word at slot.
func (ctx *Context) patchPool(sec *section, site uint32, slot uint32) error {
	d := int64(slot) - int64(site) - InstructionAddend
	if err := instructions.PatchDisplacement(sec.data.Data[site:], d); err != nil {
		return curated.Errorf(PoolDisplacement, sec.name, site-InstructionAddend, err)
	}
	return nil
}

// patchDirect points the instruction with the displacement field at site
// directly at value and rewrites the instruction to its direct form.
func (ctx *Context) patchDirect(sec *section, site uint32, value uint32) error {
	d := int64(value) - int64(site) - InstructionAddend
	if err := instructions.PatchDisplacement(sec.data.Data[site:], d); err != nil {
		return curated.Errorf(Encoding, sec.name, err)
	}
	start := site - InstructionAddend
	sec.data.Data[start], _ = instructions.ToDirect(sec.data.Data[start])
	return nil
}

func (ctx *Context) requireSection(what string) (*section, error) {
	if ctx.ended {
		return nil, curated.Errorf(AssemblyEnded, what)
	}
	if ctx.current == nil {
		return nil, curated.Errorf(NoOpenSection, what)
	}
	return ctx.current, nil
}

// WriteByte appends a byte to the open section.
func (ctx *Context) WriteByte(b byte) error {
	sec, err := ctx.requireSection("byte")
	if err != nil {
		return err
	}
	sec.data.Data = append(sec.data.Data, b)
	return nil
}

// WriteWord appends a little-endian word to the open section.
func (ctx *Context) WriteWord(w uint32) error {
	sec, err := ctx.requireSection(".word")
	if err != nil {
		return err
	}
	sec.data.Data = binary.LittleEndian.AppendUint32(sec.data.Data, w)
	return nil
}

// Skip appends n zero bytes to the open section. Sizes over MaxSkip are
// rejected.
func (ctx *Context) Skip(n uint32) error {
	sec, err := ctx.requireSection(".skip")
	if err != nil {
		return err
	}
	if n > MaxSkip {
		return curated.Errorf(SkipTooLarge, n, MaxSkip)
	}
	sec.data.Data = append(sec.data.Data, make([]byte, n)...)
	return nil
}

// Ascii appends the bytes of the string to the open section.
func (ctx *Context) Ascii(s string) error {
	sec, err := ctx.requireSection(".ascii")
	if err != nil {
		return err
	}
	sec.data.Data = append(sec.data.Data, s...)
	return nil
}

// Emit writes an instruction to the open section. Displacements that are not
// yet known should be left as zero.
func (ctx *Context) Emit(ins instructions.Instruction) error {
	sec, err := ctx.requireSection(ins.String())
	if err != nil {
		return err
	}
	return ctx.emit(sec, ins)
}

func (ctx *Context) emit(sec *section, ins instructions.Instruction) error {
	b, err := instructions.Encode(ins)
	if err != nil {
		return curated.Errorf(Encoding, ins.String(), err)
	}
	sec.data.Data = append(sec.data.Data, b[:]...)
	return nil
}

// End closes the open section. Nothing can be written after End().
func (ctx *Context) End() error {
	if ctx.ended {
		return nil
	}
	err := ctx.CloseSection()
	ctx.ended = true
	return err
}
