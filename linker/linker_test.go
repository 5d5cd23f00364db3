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

package linker_test

import (
	"encoding/binary"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/resenje/ss32/assembler"
	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/instructions"
	"github.com/resenje/ss32/linker"
	"github.com/resenje/ss32/objfile"
	"github.com/resenje/ss32/test"
)

// assemble runs fn against a new assembler context and returns the object.
func assemble(t *testing.T, fn func(ctx *assembler.Context)) *objfile.Object {
	t.Helper()
	ctx := assembler.NewContext(nil)
	fn(ctx)
	o, err := ctx.Object()
	test.DemandSuccess(t, err)
	return o
}

func fold(t *testing.T, objs ...*objfile.Object) *linker.Context {
	t.Helper()
	ctx := linker.NewContext(nil)
	for i, o := range objs {
		test.DemandSuccess(t, ctx.Fold(o), i)
	}
	return ctx
}

func section(img *objfile.Object, name string) *objfile.SectionData {
	return img.Section(name)
}

func TestEndToEnd(t *testing.T) {
	a := assemble(t, func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".text"))
		test.DemandSuccess(t, ctx.DefineSymbol("foo", objfile.TypeObject))
		ctx.Global("foo")
		test.DemandSuccess(t, ctx.Instruction("halt", nil))
		test.DemandSuccess(t, ctx.Instruction("halt", nil))
	})

	const referenceOffset = 6

	b := assemble(t, func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".text"))
		ctx.Extern("foo")
		test.DemandSuccess(t, ctx.Instruction("halt", nil))
		test.DemandSuccess(t, ctx.Emit(instructions.Jump{Mode: instructions.BranchEqual, A: instructions.PC, B: 1, C: 2}))
		test.DemandSuccess(t, ctx.RecordUsage("foo", objfile.PCRelative32, referenceOffset, assembler.InstructionAddend))
	})

	var placements linker.Placements
	test.DemandSuccess(t, placements.Set(".text@0x40000000"))

	ctx := fold(t, a, b)
	img, err := ctx.Link(placements)
	test.DemandSuccess(t, err)

	text := section(img, ".text")
	test.DemandEquality(t, text.Address, 0x40000000)
	test.DemandEquality(t, text.Size(), 16)

	lenA := uint32(8)
	site := lenA + referenceOffset
	expected := int64(0x40000000+0) - int64(0x40000000+lenA+referenceOffset) - 2
	test.ExpectEquality(t, int64(instructions.Displacement(text.Data[site:])), expected)

	// the condition register is untouched by the relocation
	ins, err := instructions.Decode(text.Data[site-assembler.InstructionAddend:])
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ins.String(), "beq %r1, %r2, %pc-16")

	test.ExpectEquality(t, img.Symbols["foo"].Value, 0x40000000)

	// the section symbol holds the base address of the placed section
	test.ExpectEquality(t, img.Symbols[".text"].Value, 0x40000000)
	test.ExpectEquality(t, img.Symbols[".text"].Type, objfile.TypeSection)
}

func TestMultipleDefinition(t *testing.T) {
	define := func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".text"))
		test.DemandSuccess(t, ctx.DefineSymbol("foo", objfile.TypeObject))
		ctx.Global("foo")
		test.DemandSuccess(t, ctx.WriteWord(0))
	}
	reference := func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".text"))
		ctx.Extern("foo")
		test.DemandSuccess(t, ctx.Word(assembler.Operand{Kind: assembler.MemoryDirect, Symbol: "foo"}))
	}

	ctx := fold(t, assemble(t, define))
	err := ctx.Fold(assemble(t, define))
	test.ExpectSuccess(t, curated.Is(err, linker.MultipleDefinition), err)

	// the order of definition and reference does not matter
	ctx = fold(t, assemble(t, reference), assemble(t, define))
	img, err := ctx.Link(nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, img.Symbols["foo"].Defined, true)
	test.ExpectEquality(t, img.Symbols["foo"].Type, objfile.TypeObject)
	test.ExpectEquality(t, binary.LittleEndian.Uint32(section(img, ".text").Data), 4)

	ctx = fold(t, assemble(t, define), assemble(t, reference))
	_, err = ctx.Link(nil)
	test.ExpectSuccess(t, err)
}

func TestMergeSections(t *testing.T) {
	a := assemble(t, func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".data"))
		test.DemandSuccess(t, ctx.WriteWord(1))
		test.DemandSuccess(t, ctx.WriteByte(2))
	})

	b := assemble(t, func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".data"))
		test.DemandSuccess(t, ctx.DefineSymbol("bval", objfile.TypeObject))
		ctx.Global("bval")
		test.DemandSuccess(t, ctx.WriteWord(7))
		test.DemandSuccess(t, ctx.DefineSymbol("local", objfile.TypeObject))
		test.DemandSuccess(t, ctx.WriteWord(0))
		test.DemandSuccess(t, ctx.Word(assembler.Operand{Kind: assembler.MemoryDirect, Symbol: "bval"}))
		test.DemandSuccess(t, ctx.OpenSection(".text"))
		test.DemandSuccess(t, ctx.Word(assembler.Operand{Kind: assembler.MemoryDirect, Symbol: "local"}))
	})

	ctx := fold(t, a, b)

	test.DemandEquality(t, len(ctx.Sections), 2)
	test.ExpectEquality(t, ctx.Sections[0].Name, ".data")
	test.ExpectEquality(t, ctx.Sections[0].Size(), 5+12)

	// private symbols are not merged
	_, ok := ctx.Symbols["local"]
	test.ExpectEquality(t, ok, false)
	test.ExpectEquality(t, ctx.Symbols["bval"].Value, 5)

	data := ctx.Relocations[".data"]
	test.DemandEquality(t, len(data), 1, spew.Sdump(data))
	test.ExpectEquality(t, data[0], objfile.Relocation{Offset: 5 + 8, Symbol: "bval", Kind: objfile.Absolute32})

	text := ctx.Relocations[".text"]
	test.DemandEquality(t, len(text), 1, spew.Sdump(text))
	test.ExpectEquality(t, text[0], objfile.Relocation{Offset: 0, Symbol: ".data", Kind: objfile.Absolute32, Addend: 5 + 4})

	img, err := ctx.Link(nil)
	test.DemandSuccess(t, err)

	d := section(img, ".data")
	test.ExpectEquality(t, d.Address, 0)
	test.ExpectEquality(t, binary.LittleEndian.Uint32(d.Data[13:]), 5)

	tx := section(img, ".text")
	test.ExpectEquality(t, tx.Address, 32)
	test.ExpectEquality(t, binary.LittleEndian.Uint32(tx.Data), 9)
}

// sections builds an object with empty sections of the given sizes.
func sections(sizes map[string]int, order ...string) *objfile.Object {
	o := objfile.NewObject()
	for i, name := range order {
		sec := o.AddSection(name)
		sec.Data = make([]byte, sizes[name])
		o.Symbols[name] = &objfile.Symbol{Name: name, Type: objfile.TypeSection, Section: name, Defined: true, Index: i}
	}
	return o
}

func TestSequentialPlacement(t *testing.T) {
	sizes := map[string]int{".a": 5, ".b": 20, ".c": 1}

	ctx := fold(t, sections(sizes, ".a", ".b", ".c"))
	img, err := ctx.Link(nil)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, section(img, ".a").Address, 0)
	test.ExpectEquality(t, section(img, ".b").Address, 16)
	test.ExpectEquality(t, section(img, ".c").Address, 48)

	ctx = fold(t, sections(sizes, ".a", ".b", ".c"))
	img, err = ctx.Link([]linker.Placement{{Section: ".b", Address: 0x1000}})
	test.DemandSuccess(t, err)

	test.DemandEquality(t, len(img.Sections), 3)
	test.ExpectEquality(t, img.Sections[0].Name, ".b")
	test.ExpectEquality(t, img.Sections[1].Name, ".a")
	test.ExpectEquality(t, img.Sections[1].Address, 0x1020)
	test.ExpectEquality(t, img.Sections[2].Name, ".c")
	test.ExpectEquality(t, img.Sections[2].Address, 0x1030)

	for _, sec := range img.Sections {
		test.ExpectEquality(t, img.Symbols[sec.Name].Value, sec.Address, sec.Name)
	}
}

func TestPlacementErrors(t *testing.T) {
	sizes := map[string]int{".a": 16, ".b": 16}

	ctx := fold(t, sections(sizes, ".a", ".b"))
	_, err := ctx.Link([]linker.Placement{{Section: ".a", Address: 0x100}, {Section: ".b", Address: 0x108}})
	test.ExpectSuccess(t, curated.Is(err, linker.SectionOverlap), err)

	ctx = fold(t, sections(sizes, ".a", ".b"))
	_, err = ctx.Link([]linker.Placement{{Section: ".a", Address: 0x100}, {Section: ".b", Address: 0x110}})
	test.ExpectSuccess(t, err)

	ctx = fold(t, sections(sizes, ".a", ".b"))
	_, err = ctx.Link([]linker.Placement{{Section: ".a", Address: 0xfffffff8}})
	test.ExpectSuccess(t, curated.Is(err, linker.AddressRange), err)

	ctx = fold(t, sections(sizes, ".a", ".b"))
	_, err = ctx.Link([]linker.Placement{{Section: ".a", Address: 0xffffff00 - 24}})
	test.ExpectSuccess(t, curated.Is(err, linker.AddressRange), err)

	ctx = fold(t, sections(sizes, ".a", ".b"))
	_, err = ctx.Link([]linker.Placement{{Section: ".missing", Address: 0}})
	test.ExpectSuccess(t, curated.Is(err, linker.UnknownSection), err)
}

func TestConflicts(t *testing.T) {
	defined := objfile.NewObject()
	defined.AddSection("text").Data = []byte{0, 0, 0, 0}
	defined.Symbols["x"] = &objfile.Symbol{Name: "x", Binding: objfile.Global, Type: objfile.TypeObject, Section: "text", Defined: true}

	absolute := objfile.NewObject()
	absolute.Symbols["x"] = &objfile.Symbol{Name: "x", Binding: objfile.Global, Type: objfile.TypeNone, Section: objfile.Absolute, Value: 1, Defined: true}

	ctx := fold(t, defined)
	err := ctx.Fold(absolute)
	test.ExpectSuccess(t, curated.Is(err, linker.TypeMismatch), err)

	sectionX := sections(map[string]int{"x": 4}, "x")
	ctx = fold(t, sectionX)
	err = ctx.Fold(defined)
	test.ExpectSuccess(t, curated.Is(err, linker.BindingMismatch), err)

	// local symbols of different objects never conflict
	local := objfile.NewObject()
	local.Symbols["x"] = &objfile.Symbol{Name: "x", Type: objfile.TypeNone, Section: objfile.Absolute, Defined: true}
	ctx = fold(t, defined)
	test.ExpectSuccess(t, ctx.Fold(local))
}

func TestUndefined(t *testing.T) {
	o := assemble(t, func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".text"))
		ctx.Extern("nowhere")
		test.DemandSuccess(t, ctx.Instruction("call", []assembler.Operand{{Kind: assembler.MemoryDirect, Symbol: "nowhere"}}))
	})

	ctx := fold(t, o)
	_, err := ctx.Link(nil)
	test.ExpectSuccess(t, curated.Is(err, linker.UndefinedSymbol), err)
}

func TestRelocationRange(t *testing.T) {
	a := assemble(t, func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".far"))
		test.DemandSuccess(t, ctx.DefineSymbol("far", objfile.TypeObject))
		ctx.Global("far")
		test.DemandSuccess(t, ctx.WriteWord(0))
	})
	b := assemble(t, func(ctx *assembler.Context) {
		test.DemandSuccess(t, ctx.OpenSection(".text"))
		ctx.Extern("far")
		test.DemandSuccess(t, ctx.Emit(instructions.Call{Mode: instructions.CallDirect, A: instructions.PC}))
		test.DemandSuccess(t, ctx.RecordUsage("far", objfile.PCRelative32, 2, assembler.InstructionAddend))
	})

	ctx := fold(t, a, b)
	_, err := ctx.Link([]linker.Placement{{Section: ".far", Address: 0x10000}, {Section: ".text", Address: 0}})
	test.ExpectSuccess(t, curated.Is(err, linker.RelocationRange), err)
}

func TestParsePlacement(t *testing.T) {
	p, err := linker.ParsePlacement(".text@0x40000000")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, linker.Placement{Section: ".text", Address: 0x40000000})

	p, err = linker.ParsePlacement("data@0b1000")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Address, 8)

	for _, s := range []string{".text", "@0", ".text@", ".text@0x100000000", ".text@zz"} {
		_, err := linker.ParsePlacement(s)
		test.ExpectSuccess(t, curated.Is(err, linker.BadPlacement), s)
	}

	var pl linker.Placements
	test.DemandSuccess(t, pl.Set("a@16"))
	test.DemandSuccess(t, pl.Set("b@0x20"))
	err = pl.Set("a@32")
	test.ExpectSuccess(t, curated.Is(err, linker.DuplicatePlacement), err)
	test.ExpectEquality(t, pl.String(), "a@0x00000010,b@0x00000020")
}

func TestGraph(t *testing.T) {
	ctx := fold(t, sections(map[string]int{".a": 4}, ".a"))
	w := &test.CompareWriter{}
	ctx.Graph(w)
	test.ExpectInequality(t, len(w.String()), 0)
}
