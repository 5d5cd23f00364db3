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

package instructions

import (
	"fmt"
	"strings"
)

// Instruction is implemented by the ten instruction families. The interface
// is sealed and a type switch over the family types is exhaustive.
type Instruction interface {
	// the raw field layout of the instruction
	Fields() Fields

	// the instruction as a listing, using the register syntax of the
	// assembler
	String() string

	Category() Category

	sealed()
}

// Encode the instruction.
func Encode(ins Instruction) ([Size]byte, error) {
	return ins.Fields().Bytes()
}

// disp formats a displacement as a suffix to an address expression.
func disp(d int16) string {
	if d == 0 {
		return ""
	}
	return fmt.Sprintf("%+d", d)
}

// sum formats the non-zero terms of an address expression. Register zero reads
// as zero and is omitted unless it is the only term.
func sum(d int16, regs ...Register) string {
	s := strings.Builder{}
	for _, r := range regs {
		if r == R0 {
			continue
		}
		if s.Len() > 0 {
			s.WriteString("+")
		}
		s.WriteString(r.String())
	}
	if s.Len() == 0 {
		return fmt.Sprintf("%d", d)
	}
	s.WriteString(disp(d))
	return s.String()
}

// Halt stops the processor.
type Halt struct{}

func (Halt) Fields() Fields     { return Fields{OpCode: OpHalt} }
func (Halt) String() string     { return "halt" }
func (Halt) Category() Category { return Control }
func (Halt) sealed()            {}

// Interrupt raises a software interrupt.
type Interrupt struct{}

func (Interrupt) Fields() Fields     { return Fields{OpCode: OpInterrupt} }
func (Interrupt) String() string     { return "int" }
func (Interrupt) Category() Category { return Control }
func (Interrupt) sealed()            {}

// CallMode selects how the target of a Call is found.
type CallMode uint8

// List of valid call modes.
const (
	// push pc; pc = A+B+D
	CallDirect CallMode = iota

	// push pc; pc = mem[A+B+D]
	CallMemory
)

// Call pushes the program counter and jumps to the target.
type Call struct {
	Mode CallMode
	A    Register
	B    Register
	D    int16
}

func (ins Call) Fields() Fields {
	return Fields{OpCode: OpCall, Mode: uint8(ins.Mode), A: ins.A, B: ins.B, D: ins.D}
}

func (ins Call) String() string {
	if ins.Mode == CallMemory {
		return fmt.Sprintf("call [%s]", sum(ins.D, ins.A, ins.B))
	}
	return fmt.Sprintf("call %s", sum(ins.D, ins.A, ins.B))
}

func (Call) Category() Category { return Subroutine }
func (Call) sealed()            {}

// JumpMode selects the condition and how the target of a Jump is found.
type JumpMode uint8

// List of valid jump modes. The conditional modes compare registers B and C.
// The target is A+D for the first four modes and mem[A+D] for the rest.
const (
	JumpDirect JumpMode = iota
	BranchEqual
	BranchNotEqual
	BranchGreater
	JumpMemory
	BranchEqualMemory
	BranchNotEqualMemory
	BranchGreaterMemory
)

// Memory returns true if the jump target is read from memory.
func (m JumpMode) Memory() bool {
	return m >= JumpMemory
}

// Mnemonic of the jump mode.
func (m JumpMode) Mnemonic() string {
	switch m & 0x03 {
	case JumpDirect:
		return "jmp"
	case BranchEqual:
		return "beq"
	case BranchNotEqual:
		return "bne"
	}
	return "bgt"
}

// Jump changes the program counter, conditionally for the branch modes.
type Jump struct {
	Mode JumpMode
	A    Register
	B    Register
	C    Register
	D    int16
}

func (ins Jump) Fields() Fields {
	return Fields{OpCode: OpJump, Mode: uint8(ins.Mode), A: ins.A, B: ins.B, C: ins.C, D: ins.D}
}

func (ins Jump) String() string {
	target := sum(ins.D, ins.A)
	if ins.Mode.Memory() {
		target = fmt.Sprintf("[%s]", target)
	}
	if ins.Mode&0x03 == JumpDirect {
		return fmt.Sprintf("jmp %s", target)
	}
	return fmt.Sprintf("%s %s, %s, %s", ins.Mode.Mnemonic(), ins.B, ins.C, target)
}

func (Jump) Category() Category { return Flow }
func (Jump) sealed()            {}

// Exchange swaps the contents of registers B and C.
type Exchange struct {
	B Register
	C Register
}

func (ins Exchange) Fields() Fields {
	return Fields{OpCode: OpExchange, B: ins.B, C: ins.C}
}

func (ins Exchange) String() string {
	return fmt.Sprintf("xchg %s, %s", ins.B, ins.C)
}

func (Exchange) Category() Category { return ALU }
func (Exchange) sealed()            {}

// ArithmeticMode selects the operation of an Arithmetic instruction.
type ArithmeticMode uint8

// List of valid arithmetic modes.
const (
	Add ArithmeticMode = iota
	Sub
	Mul
	Div
)

func (m ArithmeticMode) String() string {
	switch m {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	}
	return fmt.Sprintf("arithmetic(%d)", uint8(m))
}

// Arithmetic sets A = B op C.
type Arithmetic struct {
	Mode ArithmeticMode
	A    Register
	B    Register
	C    Register
}

func (ins Arithmetic) Fields() Fields {
	return Fields{OpCode: OpArithmetic, Mode: uint8(ins.Mode), A: ins.A, B: ins.B, C: ins.C}
}

func (ins Arithmetic) String() string {
	return twoOperand(ins.Mode.String(), ins.A, ins.B, ins.C)
}

func (Arithmetic) Category() Category { return ALU }
func (Arithmetic) sealed()            {}

// twoOperand formats an ALU instruction using the two operand syntax of the
// assembler when the destination is also the first source.
func twoOperand(mnemonic string, a, b, c Register) string {
	if a == b {
		return fmt.Sprintf("%s %s, %s", mnemonic, c, a)
	}
	return fmt.Sprintf("%s %s, %s, %s", mnemonic, b, c, a)
}

// LogicMode selects the operation of a Logic instruction.
type LogicMode uint8

// List of valid logic modes.
const (
	Not LogicMode = iota
	And
	Or
	Xor
)

func (m LogicMode) String() string {
	switch m {
	case Not:
		return "not"
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	}
	return fmt.Sprintf("logic(%d)", uint8(m))
}

// Logic sets A = B op C, or A = ^B for the Not mode.
type Logic struct {
	Mode LogicMode
	A    Register
	B    Register
	C    Register
}

func (ins Logic) Fields() Fields {
	return Fields{OpCode: OpLogic, Mode: uint8(ins.Mode), A: ins.A, B: ins.B, C: ins.C}
}

func (ins Logic) String() string {
	if ins.Mode == Not {
		if ins.A == ins.B {
			return fmt.Sprintf("not %s", ins.A)
		}
		return fmt.Sprintf("not %s, %s", ins.B, ins.A)
	}
	return twoOperand(ins.Mode.String(), ins.A, ins.B, ins.C)
}

func (Logic) Category() Category { return ALU }
func (Logic) sealed()            {}

// ShiftMode selects the direction of a Shift instruction.
type ShiftMode uint8

// List of valid shift modes.
const (
	ShiftLeft ShiftMode = iota
	ShiftRight
)

func (m ShiftMode) String() string {
	switch m {
	case ShiftLeft:
		return "shl"
	case ShiftRight:
		return "shr"
	}
	return fmt.Sprintf("shift(%d)", uint8(m))
}

// Shift sets A = B shifted by C.
type Shift struct {
	Mode ShiftMode
	A    Register
	B    Register
	C    Register
}

func (ins Shift) Fields() Fields {
	return Fields{OpCode: OpShift, Mode: uint8(ins.Mode), A: ins.A, B: ins.B, C: ins.C}
}

func (ins Shift) String() string {
	return twoOperand(ins.Mode.String(), ins.A, ins.B, ins.C)
}

func (Shift) Category() Category { return ALU }
func (Shift) sealed()            {}

// StoreMode selects the addressing of a Store instruction.
type StoreMode uint8

// List of valid store modes.
const (
	// mem[A+B+D] = C
	StoreRelative StoreMode = iota

	// A = A+D; mem[A] = C
	StorePreIncrement

	// mem[mem[A+B+D]] = C
	StoreIndirect
)

// Store writes register C to memory.
type Store struct {
	Mode StoreMode
	A    Register
	B    Register
	C    Register
	D    int16
}

func (ins Store) Fields() Fields {
	return Fields{OpCode: OpStore, Mode: uint8(ins.Mode), A: ins.A, B: ins.B, C: ins.C, D: ins.D}
}

func (ins Store) String() string {
	switch ins.Mode {
	case StorePreIncrement:
		if ins.A == SP && ins.D == -4 && ins.B == R0 {
			return fmt.Sprintf("push %s", ins.C)
		}
		return fmt.Sprintf("st %s, [%s%s!]", ins.C, ins.A, disp(ins.D))
	case StoreIndirect:
		return fmt.Sprintf("st %s, [[%s]]", ins.C, sum(ins.D, ins.A, ins.B))
	}
	return fmt.Sprintf("st %s, [%s]", ins.C, sum(ins.D, ins.A, ins.B))
}

func (Store) Category() Category { return Memory }
func (Store) sealed()            {}

// LoadMode selects the source and destination of a Load instruction. The
// first four modes write general purpose register A and the last four write
// control register A.
type LoadMode uint8

// List of valid load modes.
const (
	// A = csr[B]
	LoadCSR LoadMode = iota

	// A = B+D
	LoadAddress

	// A = mem[B+C+D]
	LoadMemory

	// A = mem[B]; B = B+D
	LoadPostIncrement

	// csr[A] = B
	WriteCSR

	// csr[A] = B|D
	WriteCSROr

	// csr[A] = mem[B+C+D]
	WriteCSRMemory

	// csr[A] = mem[B]; B = B+D
	WriteCSRPostIncrement
)

// Load reads into a general purpose or control register.
type Load struct {
	Mode LoadMode
	A    Register
	B    Register
	C    Register
	D    int16
}

func (ins Load) Fields() Fields {
	return Fields{OpCode: OpLoad, Mode: uint8(ins.Mode), A: ins.A, B: ins.B, C: ins.C, D: ins.D}
}

func (ins Load) String() string {
	switch ins.Mode {
	case LoadCSR:
		return fmt.Sprintf("csrrd %s, %s", CSR(ins.B), ins.A)
	case LoadAddress:
		return fmt.Sprintf("ld %s, %s", sum(ins.D, ins.B), ins.A)
	case LoadMemory:
		return fmt.Sprintf("ld [%s], %s", sum(ins.D, ins.B, ins.C), ins.A)
	case LoadPostIncrement:
		if ins.B == SP && ins.D == 4 {
			if ins.A == PC {
				return "ret"
			}
			return fmt.Sprintf("pop %s", ins.A)
		}
		return fmt.Sprintf("ld [%s]%s!, %s", ins.B, disp(ins.D), ins.A)
	case WriteCSR:
		return fmt.Sprintf("csrwr %s, %s", ins.B, CSR(ins.A))
	case WriteCSROr:
		return fmt.Sprintf("csrwr %s|%d, %s", ins.B, ins.D, CSR(ins.A))
	case WriteCSRMemory:
		return fmt.Sprintf("ld [%s], %s", sum(ins.D, ins.B, ins.C), CSR(ins.A))
	case WriteCSRPostIncrement:
		return fmt.Sprintf("ld [%s]%s!, %s", ins.B, disp(ins.D), CSR(ins.A))
	}
	return fmt.Sprintf("ld mode(%d)", uint8(ins.Mode))
}

func (Load) Category() Category { return Memory }
func (Load) sealed()            {}
