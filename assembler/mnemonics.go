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
	"github.com/resenje/ss32/instructions"
)

// OperandKind is the addressing syntax of an operand.
type OperandKind int

// List of valid operand kinds.
const (
	// $lit or $sym
	Immediate OperandKind = iota

	// lit or sym
	MemoryDirect

	// %r
	RegisterDirect

	// [%r]
	RegisterIndirect

	// [%r + lit] or [%r + sym]
	RegisterOffset

	// %status, %handler or %cause
	ControlRegister
)

// Operand of an instruction. Symbol is empty if the operand is a literal.
type Operand struct {
	Kind     OperandKind
	Register instructions.Register
	CSR      instructions.CSR
	Symbol   string
	Literal  uint32
}

func (op Operand) value() string {
	if op.Symbol != "" {
		return op.Symbol
	}
	return fmt.Sprintf("%d", int32(op.Literal))
}

func (op Operand) String() string {
	switch op.Kind {
	case Immediate:
		return fmt.Sprintf("$%s", op.value())
	case MemoryDirect:
		return op.value()
	case RegisterDirect:
		return op.Register.String()
	case RegisterIndirect:
		return fmt.Sprintf("[%s]", op.Register)
	case RegisterOffset:
		return fmt.Sprintf("[%s + %s]", op.Register, op.value())
	case ControlRegister:
		return op.CSR.String()
	}
	return "?"
}

type mnemonic struct {
	operands int
	assemble func(ctx *Context, name string, ops []Operand) error
}

var mnemonics map[string]mnemonic

func init() {
	mnemonics = map[string]mnemonic{
		"halt":  {0, emitFixed(instructions.Halt{})},
		"int":   {0, emitFixed(instructions.Interrupt{})},
		"iret":  {0, iret},
		"ret":   {0, emitFixed(instructions.Load{Mode: instructions.LoadPostIncrement, A: instructions.PC, B: instructions.SP, D: 4})},
		"call":  {1, call},
		"jmp":   {1, branch(instructions.JumpMemory)},
		"beq":   {3, branch(instructions.BranchEqualMemory)},
		"bne":   {3, branch(instructions.BranchNotEqualMemory)},
		"bgt":   {3, branch(instructions.BranchGreaterMemory)},
		"push":  {1, push},
		"pop":   {1, pop},
		"xchg":  {2, xchg},
		"add":   {2, alu(arithmetic(instructions.Add))},
		"sub":   {2, alu(arithmetic(instructions.Sub))},
		"mul":   {2, alu(arithmetic(instructions.Mul))},
		"div":   {2, alu(arithmetic(instructions.Div))},
		"and":   {2, alu(logic(instructions.And))},
		"or":    {2, alu(logic(instructions.Or))},
		"xor":   {2, alu(logic(instructions.Xor))},
		"shl":   {2, alu(shift(instructions.ShiftLeft))},
		"shr":   {2, alu(shift(instructions.ShiftRight))},
		"not":   {1, not},
		"ld":    {2, load},
		"st":    {2, store},
		"csrrd": {2, csrrd},
		"csrwr": {2, csrwr},
	}
}

// IsMnemonic returns true if the word is an instruction mnemonic.
func IsMnemonic(word string) bool {
	_, ok := mnemonics[word]
	return ok
}

// Instruction assembles one source instruction into the open section. The
// operands are in source order.
func (ctx *Context) Instruction(name string, ops []Operand) error {
	m, ok := mnemonics[name]
	if !ok {
		return curated.Errorf(UnknownMnemonic, name)
	}
	if len(ops) != m.operands {
		return curated.Errorf(OperandCount, name, m.operands, len(ops))
	}
	if _, err := ctx.requireSection(name); err != nil {
		return err
	}
	return m.assemble(ctx, name, ops)
}

func emitFixed(ins instructions.Instruction) func(*Context, string, []Operand) error {
	return func(ctx *Context, _ string, _ []Operand) error {
		return ctx.Emit(ins)
	}
}

// requireRegister returns the register of a register direct operand.
func requireRegister(name string, op Operand) (instructions.Register, error) {
	if op.Kind != RegisterDirect {
		return 0, curated.Errorf(InvalidOperand, name, op)
	}
	return op.Register, nil
}

func requireCSR(name string, op Operand) (instructions.CSR, error) {
	if op.Kind != ControlRegister {
		return 0, curated.Errorf(InvalidOperand, name, op)
	}
	return op.CSR, nil
}

// usage records the reference of the instruction just written to the pool
// word holding the value of the operand.
func (ctx *Context) usage(op Operand) error {
	if op.Symbol != "" {
		return ctx.HandleInstructionSymbolUsage(op.Symbol)
	}
	return ctx.HandleInstructionLiteralUsage(op.Literal)
}

// offset returns the displacement of a register offset operand. A symbol must
// be a constant that is already known.
func (ctx *Context) offset(name string, op Operand) (int16, error) {
	if op.Kind == RegisterIndirect {
		return 0, nil
	}

	v := int64(int32(op.Literal))
	if op.Symbol != "" {
		sym, ok := ctx.symbols[op.Symbol]
		if !ok || !sym.absolute() {
			return 0, curated.Errorf(NotConstant, op.Symbol)
		}
		v = int64(int32(sym.Value))
	}

	if !instructions.FitsDisplacement(v) {
		return 0, curated.Errorf(LiteralRange, name, v)
	}

	return int16(v), nil
}

func iret(ctx *Context, _ string, _ []Operand) error {
	err := ctx.Emit(instructions.Load{
		Mode: instructions.WriteCSRMemory,
		A:    instructions.Register(instructions.Status),
		B:    instructions.SP,
		D:    4,
	})
	if err != nil {
		return err
	}
	return ctx.Emit(instructions.Load{
		Mode: instructions.LoadPostIncrement,
		A:    instructions.PC,
		B:    instructions.SP,
		D:    8,
	})
}

func call(ctx *Context, name string, ops []Operand) error {
	if ops[0].Kind != MemoryDirect {
		return curated.Errorf(InvalidOperand, name, ops[0])
	}
	if err := ctx.Emit(instructions.Call{Mode: instructions.CallMemory, A: instructions.PC}); err != nil {
		return err
	}
	return ctx.usage(ops[0])
}

// branch assembles jmp and the conditional branches. The target is always
// read from the pool unless the instruction is later rewritten to its direct
// form.
func branch(mode instructions.JumpMode) func(*Context, string, []Operand) error {
	return func(ctx *Context, name string, ops []Operand) error {
		ins := instructions.Jump{Mode: mode, A: instructions.PC}

		if len(ops) == 3 {
			var err error
			if ins.B, err = requireRegister(name, ops[0]); err != nil {
				return err
			}
			if ins.C, err = requireRegister(name, ops[1]); err != nil {
				return err
			}
		}

		target := ops[len(ops)-1]
		if target.Kind != MemoryDirect {
			return curated.Errorf(InvalidOperand, name, target)
		}

		if err := ctx.Emit(ins); err != nil {
			return err
		}
		return ctx.usage(target)
	}
}

func push(ctx *Context, name string, ops []Operand) error {
	r, err := requireRegister(name, ops[0])
	if err != nil {
		return err
	}
	return ctx.Emit(instructions.Store{Mode: instructions.StorePreIncrement, A: instructions.SP, C: r, D: -4})
}

func pop(ctx *Context, name string, ops []Operand) error {
	r, err := requireRegister(name, ops[0])
	if err != nil {
		return err
	}
	return ctx.Emit(instructions.Load{Mode: instructions.LoadPostIncrement, A: r, B: instructions.SP, D: 4})
}

func xchg(ctx *Context, name string, ops []Operand) error {
	b, err := requireRegister(name, ops[0])
	if err != nil {
		return err
	}
	c, err := requireRegister(name, ops[1])
	if err != nil {
		return err
	}
	return ctx.Emit(instructions.Exchange{B: b, C: c})
}

// alu assembles the two operand register instructions. The second operand is
// both the destination and the first source.
func alu(build func(s, d instructions.Register) instructions.Instruction) func(*Context, string, []Operand) error {
	return func(ctx *Context, name string, ops []Operand) error {
		s, err := requireRegister(name, ops[0])
		if err != nil {
			return err
		}
		d, err := requireRegister(name, ops[1])
		if err != nil {
			return err
		}
		return ctx.Emit(build(s, d))
	}
}

func arithmetic(mode instructions.ArithmeticMode) func(s, d instructions.Register) instructions.Instruction {
	return func(s, d instructions.Register) instructions.Instruction {
		return instructions.Arithmetic{Mode: mode, A: d, B: d, C: s}
	}
}

func logic(mode instructions.LogicMode) func(s, d instructions.Register) instructions.Instruction {
	return func(s, d instructions.Register) instructions.Instruction {
		return instructions.Logic{Mode: mode, A: d, B: d, C: s}
	}
}

func shift(mode instructions.ShiftMode) func(s, d instructions.Register) instructions.Instruction {
	return func(s, d instructions.Register) instructions.Instruction {
		return instructions.Shift{Mode: mode, A: d, B: d, C: s}
	}
}

func not(ctx *Context, name string, ops []Operand) error {
	r, err := requireRegister(name, ops[0])
	if err != nil {
		return err
	}
	return ctx.Emit(instructions.Logic{Mode: instructions.Not, A: r, B: r})
}

func load(ctx *Context, name string, ops []Operand) error {
	src := ops[0]
	r, err := requireRegister(name, ops[1])
	if err != nil {
		return err
	}

	switch src.Kind {
	case Immediate:
		if err := ctx.Emit(instructions.Load{Mode: instructions.LoadMemory, A: r, B: instructions.PC}); err != nil {
			return err
		}
		return ctx.usage(src)

	case MemoryDirect:
		if err := ctx.Emit(instructions.Load{Mode: instructions.LoadMemory, A: r, B: instructions.PC}); err != nil {
			return err
		}
		if err := ctx.usage(src); err != nil {
			return err
		}
		return ctx.Emit(instructions.Load{Mode: instructions.LoadMemory, A: r, B: r})

	case RegisterDirect:
		return ctx.Emit(instructions.Load{Mode: instructions.LoadAddress, A: r, B: src.Register})

	case RegisterIndirect, RegisterOffset:
		d, err := ctx.offset(name, src)
		if err != nil {
			return err
		}
		return ctx.Emit(instructions.Load{Mode: instructions.LoadMemory, A: r, B: src.Register, D: d})
	}

	return curated.Errorf(InvalidOperand, name, src)
}

func store(ctx *Context, name string, ops []Operand) error {
	r, err := requireRegister(name, ops[0])
	if err != nil {
		return err
	}
	dst := ops[1]

	switch dst.Kind {
	case MemoryDirect:
		if err := ctx.Emit(instructions.Store{Mode: instructions.StoreIndirect, A: instructions.PC, C: r}); err != nil {
			return err
		}
		return ctx.usage(dst)

	case RegisterDirect:
		return ctx.Emit(instructions.Load{Mode: instructions.LoadAddress, A: dst.Register, B: r})

	case RegisterIndirect, RegisterOffset:
		d, err := ctx.offset(name, dst)
		if err != nil {
			return err
		}
		return ctx.Emit(instructions.Store{Mode: instructions.StoreRelative, A: dst.Register, C: r, D: d})
	}

	return curated.Errorf(InvalidOperand, name, dst)
}

func csrrd(ctx *Context, name string, ops []Operand) error {
	c, err := requireCSR(name, ops[0])
	if err != nil {
		return err
	}
	r, err := requireRegister(name, ops[1])
	if err != nil {
		return err
	}
	return ctx.Emit(instructions.Load{Mode: instructions.LoadCSR, A: r, B: instructions.Register(c)})
}

func csrwr(ctx *Context, name string, ops []Operand) error {
	r, err := requireRegister(name, ops[0])
	if err != nil {
		return err
	}
	c, err := requireCSR(name, ops[1])
	if err != nil {
		return err
	}
	return ctx.Emit(instructions.Load{Mode: instructions.WriteCSR, A: instructions.Register(c), B: r})
}

// Word writes the operand of a .word directive.
func (ctx *Context) Word(op Operand) error {
	switch op.Kind {
	case MemoryDirect:
		if op.Symbol != "" {
			return ctx.HandleDirectiveSymbolUsage(op.Symbol)
		}
		return ctx.WriteWord(op.Literal)
	}
	return curated.Errorf(InvalidOperand, ".word", op)
}
