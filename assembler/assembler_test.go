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

package assembler_test

import (
	"encoding/binary"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/resenje/ss32/assembler"
	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/instructions"
	"github.com/resenje/ss32/objfile"
	"github.com/resenje/ss32/test"
)

// displacement of the instruction starting at offset.
func displacement(data []byte, offset int) int16 {
	return instructions.Displacement(data[offset+assembler.InstructionAddend:])
}

func reg(r instructions.Register) assembler.Operand {
	return assembler.Operand{Kind: assembler.RegisterDirect, Register: r}
}

func sym(kind assembler.OperandKind, name string) assembler.Operand {
	return assembler.Operand{Kind: kind, Symbol: name}
}

func lit(kind assembler.OperandKind, v uint32) assembler.Operand {
	return assembler.Operand{Kind: kind, Literal: v}
}

func open(t *testing.T, section string) *assembler.Context {
	t.Helper()
	ctx := assembler.NewContext(nil)
	test.DemandSuccess(t, ctx.OpenSection(section))
	return ctx
}

func TestDefinedBeforeUse(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.DefineSymbol("loop", objfile.TypeObject))
	test.DemandSuccess(t, ctx.Instruction("jmp", []assembler.Operand{sym(assembler.MemoryDirect, "loop")}))

	s, ok := ctx.Symbol("loop")
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, len(s.References()), 0)

	test.DemandSuccess(t, ctx.Backpatch())

	data := ctx.Section("text")
	test.DemandEquality(t, len(data), 4)
	test.ExpectEquality(t, data[0], 0x30)
	test.ExpectEquality(t, data[1], 0xf0)
	test.ExpectEquality(t, displacement(data, 0), -4)
	test.ExpectEquality(t, len(ctx.Relocations("text")), 0)
}

func TestUsedBeforeDefinition(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.Instruction("jmp", []assembler.Operand{sym(assembler.MemoryDirect, "end")}))
	test.DemandSuccess(t, ctx.Instruction("halt", nil))
	test.DemandSuccess(t, ctx.DefineSymbol("end", objfile.TypeObject))
	test.DemandSuccess(t, ctx.Instruction("halt", nil))
	test.DemandSuccess(t, ctx.Backpatch())

	// no pool and the jump is rewritten to its direct form
	data := ctx.Section("text")
	test.DemandEquality(t, len(data), 12)
	test.ExpectEquality(t, data[0], 0x30)
	test.ExpectEquality(t, displacement(data, 0), 8-0-4)
	test.ExpectEquality(t, len(ctx.Relocations("text")), 0)
}

func TestExternPool(t *testing.T) {
	ctx := open(t, "text")
	ctx.Extern("ext")
	test.DemandSuccess(t, ctx.Instruction("call", []assembler.Operand{sym(assembler.MemoryDirect, "ext")}))
	test.DemandSuccess(t, ctx.Instruction("jmp", []assembler.Operand{sym(assembler.MemoryDirect, "ext")}))
	test.DemandSuccess(t, ctx.Backpatch())

	// call, jmp, skip jump and a single pool slot
	data := ctx.Section("text")
	test.DemandEquality(t, len(data), 16)

	const slot = 12
	test.ExpectEquality(t, data[0], 0x21)
	test.ExpectEquality(t, displacement(data, 0), slot-0-4)
	test.ExpectEquality(t, data[4], 0x34)
	test.ExpectEquality(t, displacement(data, 4), slot-4-4)

	ins, err := instructions.Decode(data[8:])
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ins.String(), "jmp %pc+4")

	relocs := ctx.Relocations("text")
	test.DemandEquality(t, len(relocs), 1, spew.Sdump(relocs))
	test.ExpectEquality(t, relocs[0], objfile.Relocation{Offset: slot, Symbol: "ext", Kind: objfile.Absolute32})
}

func TestLiteralPool(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.Instruction("ld", []assembler.Operand{lit(assembler.Immediate, 5), reg(1)}))
	test.DemandSuccess(t, ctx.Instruction("ld", []assembler.Operand{lit(assembler.Immediate, 5), reg(2)}))
	test.DemandSuccess(t, ctx.Instruction("ld", []assembler.Operand{lit(assembler.Immediate, 7), reg(3)}))
	test.DemandSuccess(t, ctx.CloseSection())

	// three loads, skip jump and two pool words
	data := ctx.Section("text")
	test.DemandEquality(t, len(data), 24)
	test.ExpectEquality(t, binary.LittleEndian.Uint32(data[16:]), 5)
	test.ExpectEquality(t, binary.LittleEndian.Uint32(data[20:]), 7)
	test.ExpectEquality(t, displacement(data, 0), 16-0-4)
	test.ExpectEquality(t, displacement(data, 4), 16-4-4)
	test.ExpectEquality(t, displacement(data, 8), 20-8-4)
	test.ExpectEquality(t, displacement(data, 12), 8)
}

func TestAbsoluteSymbolPool(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.Equ("k", []assembler.Term{{Literal: 0x1234}}))
	test.DemandSuccess(t, ctx.Instruction("ld", []assembler.Operand{sym(assembler.Immediate, "k"), reg(1)}))
	test.DemandSuccess(t, ctx.Backpatch())

	data := ctx.Section("text")
	test.DemandEquality(t, len(data), 12)
	test.ExpectEquality(t, binary.LittleEndian.Uint32(data[8:]), 0x1234)
	test.ExpectEquality(t, len(ctx.Relocations("text")), 0)
}

func TestPoolTooLarge(t *testing.T) {
	ctx := open(t, "text")
	for i := uint32(0); i < 512; i++ {
		test.DemandSuccess(t, ctx.Instruction("ld", []assembler.Operand{lit(assembler.Immediate, i), reg(1)}))
	}
	err := ctx.CloseSection()
	test.ExpectSuccess(t, curated.Is(err, assembler.PoolTooLarge), err)
}

func TestPCRelativeSameSection(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.WriteWord(0))
	test.DemandSuccess(t, ctx.RecordUsage("foo", objfile.PCRelative32, 2, assembler.InstructionAddend))
	test.DemandSuccess(t, ctx.WriteWord(0))
	test.DemandSuccess(t, ctx.DefineSymbol("foo", objfile.TypeObject))
	test.DemandSuccess(t, ctx.Backpatch())

	data := ctx.Section("text")
	test.ExpectEquality(t, displacement(data, 0), 8-2-2)
	test.ExpectEquality(t, len(ctx.Relocations("text")), 0)

	s, _ := ctx.Symbol("foo")
	test.ExpectEquality(t, len(s.References()), 0)
}

func TestPCRelativeExtern(t *testing.T) {
	ctx := open(t, "text")
	ctx.Extern("foo")
	test.DemandSuccess(t, ctx.WriteWord(0))
	test.DemandSuccess(t, ctx.RecordUsage("foo", objfile.PCRelative32, 2, assembler.InstructionAddend))
	test.DemandSuccess(t, ctx.Backpatch())

	relocs := ctx.Relocations("text")
	test.DemandEquality(t, len(relocs), 1)
	test.ExpectEquality(t, relocs[0], objfile.Relocation{Offset: 2, Symbol: "foo", Kind: objfile.PCRelative32, Addend: -2})
}

func TestPCRelativeToAbsolute(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.Equ("k", []assembler.Term{{Literal: 1}}))
	test.DemandSuccess(t, ctx.WriteWord(0))
	err := ctx.RecordUsage("k", objfile.PCRelative32, 2, assembler.InstructionAddend)
	test.ExpectSuccess(t, curated.Is(err, assembler.PCRelativeToAbsolute), err)
}

func TestLocalRelocation(t *testing.T) {
	ctx := open(t, "data")
	test.DemandSuccess(t, ctx.WriteWord(1))
	test.DemandSuccess(t, ctx.DefineSymbol("val", objfile.TypeObject))
	test.DemandSuccess(t, ctx.WriteWord(2))
	test.DemandSuccess(t, ctx.OpenSection("text"))
	test.DemandSuccess(t, ctx.Word(sym(assembler.MemoryDirect, "val")))
	test.DemandSuccess(t, ctx.Word(lit(assembler.MemoryDirect, 0xdeadbeef)))

	o, err := ctx.Object()
	test.DemandSuccess(t, err)

	// the local symbol is replaced by its section
	relocs := o.Relocations["text"]
	test.DemandEquality(t, len(relocs), 1)
	test.ExpectEquality(t, relocs[0], objfile.Relocation{Offset: 0, Symbol: "data", Kind: objfile.Absolute32, Addend: 4})

	test.ExpectEquality(t, binary.LittleEndian.Uint32(o.Section("text").Data[4:]), 0xdeadbeef)
}

func TestForwardDirectiveUsage(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.Word(sym(assembler.MemoryDirect, "later")))
	test.DemandSuccess(t, ctx.OpenSection("data"))
	test.DemandSuccess(t, ctx.Skip(8))
	test.DemandSuccess(t, ctx.DefineSymbol("later", objfile.TypeObject))
	ctx.Global("later")
	test.DemandSuccess(t, ctx.Backpatch())

	relocs := ctx.Relocations("text")
	test.DemandEquality(t, len(relocs), 1)
	test.ExpectEquality(t, relocs[0], objfile.Relocation{Offset: 0, Symbol: "later", Kind: objfile.Absolute32})
}

func TestSkipLimit(t *testing.T) {
	ctx := open(t, "data")
	test.DemandSuccess(t, ctx.Skip(3))

	err := ctx.Skip(assembler.MaxSkip + 1)
	test.ExpectSuccess(t, curated.Is(err, assembler.SkipTooLarge), err)
	test.ExpectEquality(t, len(ctx.Section("data")), 3)
}

func TestUndefinedSymbol(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.Instruction("call", []assembler.Operand{sym(assembler.MemoryDirect, "missing")}))
	err := ctx.Backpatch()
	test.ExpectSuccess(t, curated.Is(err, assembler.UndefinedSymbol), err)
}

func TestRedefinition(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.DefineSymbol("a", objfile.TypeObject))
	err := ctx.DefineSymbol("a", objfile.TypeObject)
	test.ExpectSuccess(t, curated.Is(err, assembler.SymbolRedefined), err)

	err = ctx.Equ("a", []assembler.Term{{Literal: 1}})
	test.ExpectSuccess(t, curated.Is(err, assembler.SymbolRedefined), err)
}

func TestEqu(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.DefineSymbol("start", objfile.TypeObject))
	test.DemandSuccess(t, ctx.Equ("a", []assembler.Term{{Literal: 5}, {Literal: 3}, {Negate: true, Literal: 1}}))
	test.DemandSuccess(t, ctx.Equ("size", []assembler.Term{{Symbol: "end"}, {Negate: true, Symbol: "start"}}))
	test.DemandSuccess(t, ctx.Equ("mid", []assembler.Term{{Symbol: "start"}, {Literal: 2}}))
	test.DemandSuccess(t, ctx.Skip(12))
	test.DemandSuccess(t, ctx.DefineSymbol("end", objfile.TypeObject))
	test.DemandSuccess(t, ctx.Backpatch())

	s, _ := ctx.Symbol("a")
	test.ExpectEquality(t, s.Value, 7)
	test.ExpectEquality(t, s.Section, objfile.Absolute)
	test.ExpectEquality(t, s.Type, objfile.TypeNone)

	s, _ = ctx.Symbol("size")
	test.ExpectEquality(t, s.Value, 12)
	test.ExpectEquality(t, s.Section, objfile.Absolute)

	s, _ = ctx.Symbol("mid")
	test.ExpectEquality(t, s.Value, 2)
	test.ExpectEquality(t, s.Section, "text")
}

func TestEquNotComputable(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.DefineSymbol("x", objfile.TypeObject))
	err := ctx.Equ("twice", []assembler.Term{{Symbol: "x"}, {Symbol: "x"}})
	test.ExpectSuccess(t, curated.Is(err, assembler.EquNotComputable), err)

	ctx = open(t, "text")
	test.DemandSuccess(t, ctx.Equ("never", []assembler.Term{{Symbol: "nowhere"}}))
	ctx.Extern("nowhere")
	err = ctx.Backpatch()
	test.ExpectSuccess(t, curated.Is(err, assembler.EquNotComputable), err)
}

func TestRegisterOffset(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.Equ("k", []assembler.Term{{Literal: 8}}))

	op := assembler.Operand{Kind: assembler.RegisterOffset, Register: 3, Symbol: "k"}
	test.DemandSuccess(t, ctx.Instruction("ld", []assembler.Operand{op, reg(1)}))

	op = assembler.Operand{Kind: assembler.RegisterOffset, Register: 3, Literal: 4096}
	err := ctx.Instruction("ld", []assembler.Operand{op, reg(1)})
	test.ExpectSuccess(t, curated.Is(err, assembler.LiteralRange), err)

	op = assembler.Operand{Kind: assembler.RegisterOffset, Register: 3, Symbol: "later"}
	err = ctx.Instruction("st", []assembler.Operand{reg(1), op})
	test.ExpectSuccess(t, curated.Is(err, assembler.NotConstant), err)

	ins, err := instructions.Decode(ctx.Section("text"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ins.String(), "ld [%r3+8], %r1")
}

func TestOperandErrors(t *testing.T) {
	ctx := assembler.NewContext(nil)
	err := ctx.Instruction("halt", nil)
	test.ExpectSuccess(t, curated.Is(err, assembler.NoOpenSection), err)

	test.DemandSuccess(t, ctx.OpenSection("text"))

	err = ctx.Instruction("st", []assembler.Operand{reg(1), lit(assembler.Immediate, 5)})
	test.ExpectSuccess(t, curated.Is(err, assembler.InvalidOperand), err)

	err = ctx.Instruction("add", []assembler.Operand{reg(1)})
	test.ExpectSuccess(t, curated.Is(err, assembler.OperandCount), err)

	err = ctx.Instruction("mov", nil)
	test.ExpectSuccess(t, curated.Is(err, assembler.UnknownMnemonic), err)

	err = ctx.Instruction("push", []assembler.Operand{lit(assembler.MemoryDirect, 1)})
	test.ExpectSuccess(t, curated.Is(err, assembler.InvalidOperand), err)

	test.DemandSuccess(t, ctx.End())
	err = ctx.WriteWord(0)
	test.ExpectSuccess(t, curated.Is(err, assembler.AssemblyEnded), err)
}

func TestListing(t *testing.T) {
	csr := func(c instructions.CSR) assembler.Operand {
		return assembler.Operand{Kind: assembler.ControlRegister, CSR: c}
	}
	indirect := assembler.Operand{Kind: assembler.RegisterOffset, Register: 3, Literal: 8}

	source := []struct {
		mnemonic string
		operands []assembler.Operand
	}{
		{"push", []assembler.Operand{reg(3)}},
		{"pop", []assembler.Operand{reg(3)}},
		{"ret", nil},
		{"iret", nil},
		{"add", []assembler.Operand{reg(1), reg(2)}},
		{"shr", []assembler.Operand{reg(4), reg(5)}},
		{"not", []assembler.Operand{reg(6)}},
		{"xchg", []assembler.Operand{reg(1), reg(2)}},
		{"csrrd", []assembler.Operand{csr(instructions.Handler), reg(1)}},
		{"csrwr", []assembler.Operand{reg(1), csr(instructions.Status)}},
		{"st", []assembler.Operand{reg(2), indirect}},
		{"ld", []assembler.Operand{reg(4), reg(5)}},
		{"int", nil},
		{"halt", nil},
	}

	expected := []string{
		"push %r3",
		"pop %r3",
		"ret",
		"ld [%sp+4], %status",
		"ld [%sp]+8!, %pc",
		"add %r1, %r2",
		"shr %r4, %r5",
		"not %r6",
		"xchg %r1, %r2",
		"csrrd %handler, %r1",
		"csrwr %r1, %status",
		"st %r2, [%r3+8]",
		"ld %r4, %r5",
		"int",
		"halt",
	}

	ctx := open(t, "text")
	for _, s := range source {
		test.DemandSuccess(t, ctx.Instruction(s.mnemonic, s.operands), s.mnemonic)
	}
	test.DemandSuccess(t, ctx.Backpatch())

	data := ctx.Section("text")
	test.DemandEquality(t, len(data), len(expected)*instructions.Size)
	for i, e := range expected {
		ins, err := instructions.Decode(data[i*instructions.Size:])
		test.DemandSuccess(t, err)
		test.ExpectEquality(t, ins.String(), e)
	}
}

func TestReopenSection(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.WriteWord(1))
	test.DemandSuccess(t, ctx.OpenSection("data"))
	test.DemandSuccess(t, ctx.OpenSection("text"))

	loc, ok := ctx.Location()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, loc, 4)

	test.DemandSuccess(t, ctx.WriteWord(2))
	o, err := ctx.Object()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(o.Sections), 2)
	test.ExpectEquality(t, o.Section("text").Size(), 8)
}

func TestBackpatchTwice(t *testing.T) {
	ctx := open(t, "text")
	ctx.Extern("ext")
	test.DemandSuccess(t, ctx.Word(sym(assembler.MemoryDirect, "ext")))
	test.DemandSuccess(t, ctx.Backpatch())
	test.DemandSuccess(t, ctx.Backpatch())
	test.ExpectEquality(t, len(ctx.Relocations("text")), 1)
}

func TestObjectSymbols(t *testing.T) {
	ctx := open(t, "text")
	test.DemandSuccess(t, ctx.DefineSymbol("main", objfile.TypeObject))
	ctx.Global("main")
	ctx.Extern("printf")
	test.DemandSuccess(t, ctx.Instruction("call", []assembler.Operand{sym(assembler.MemoryDirect, "printf")}))

	o, err := ctx.Object()
	test.DemandSuccess(t, err)

	sorted := o.Symbols.Sorted()
	test.DemandEquality(t, len(sorted), 3, spew.Sdump(sorted))
	test.ExpectEquality(t, sorted[0].Name, "text")
	test.ExpectEquality(t, sorted[0].Type, objfile.TypeSection)
	test.ExpectEquality(t, sorted[1].Name, "main")
	test.ExpectEquality(t, sorted[1].Binding, objfile.Global)
	test.ExpectEquality(t, sorted[2].Name, "printf")
	test.ExpectEquality(t, sorted[2].Section, objfile.Undefined)
}
