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

import "fmt"

// Size of every instruction in bytes.
const Size = 4

// OpCode is the high nibble of the first instruction byte.
type OpCode uint8

// List of valid opcodes.
const (
	OpHalt OpCode = iota
	OpInterrupt
	OpCall
	OpJump
	OpExchange
	OpArithmetic
	OpLogic
	OpShift
	OpStore
	OpLoad
)

func (oc OpCode) String() string {
	switch oc {
	case OpHalt:
		return "halt"
	case OpInterrupt:
		return "int"
	case OpCall:
		return "call"
	case OpJump:
		return "jump"
	case OpExchange:
		return "xchg"
	case OpArithmetic:
		return "arithmetic"
	case OpLogic:
		return "logic"
	case OpShift:
		return "shift"
	case OpStore:
		return "store"
	case OpLoad:
		return "load"
	}
	return fmt.Sprintf("opcode(%d)", uint8(oc))
}

// Register is a general purpose register number.
type Register uint8

// Registers with special meaning.
const (
	R0 Register = 0
	SP Register = 14
	PC Register = 15
)

// NumRegisters is the number of general purpose registers.
const NumRegisters = 16

func (r Register) String() string {
	switch r {
	case SP:
		return "%sp"
	case PC:
		return "%pc"
	}
	return fmt.Sprintf("%%r%d", uint8(r))
}

// CSR is a control and status register number.
type CSR uint8

// List of control and status registers.
const (
	Status CSR = iota
	Handler
	Cause
)

// NumCSRs is the number of control and status registers.
const NumCSRs = 3

func (c CSR) String() string {
	switch c {
	case Status:
		return "%status"
	case Handler:
		return "%handler"
	case Cause:
		return "%cause"
	}
	return fmt.Sprintf("%%csr%d", uint8(c))
}
