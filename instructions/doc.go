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

// Package instructions defines the ss32 instruction set. Every instruction is
// four bytes long and has the same layout:
//
//	byte 0: opcode (high nibble) and mode (low nibble)
//	byte 1: register A (high nibble) and register B (low nibble)
//	byte 2: register C (high nibble) and bits 11..8 of the displacement
//	byte 3: bits 7..0 of the displacement
//
// The displacement is a signed 12 bit value in the range -2048 to 2047.
// Registers are numbered from 0 to 15. Register 0 always reads as zero,
// register 14 is the stack pointer and register 15 is the program counter.
// When an instruction reads the program counter it sees the address of the
// following instruction.
//
// The instruction families are represented by a closed set of types that
// implement the Instruction interface. Each family has its own mode type so
// a type switch over an Instruction value covers every encodable instruction:
//
//	switch ins := ins.(type) {
//	case instructions.Halt:
//	case instructions.Interrupt:
//	case instructions.Call:
//	case instructions.Jump:
//	case instructions.Exchange:
//	case instructions.Arithmetic:
//	case instructions.Logic:
//	case instructions.Shift:
//	case instructions.Store:
//	case instructions.Load:
//	}
//
// Assemblers do not always know the displacement when an instruction is
// emitted. The Fields type can be encoded with a zero displacement and the
// displacement patched later with PatchDisplacement(), which leaves the C
// register nibble untouched.
//
// Instructions that take their target from a pool word (for example, Call
// with CallMemory mode) have a direct counterpart that adds the displacement
// to the program counter instead. ToDirect() rewrites the first byte of an
// encoded instruction from the pool form to the direct form.
package instructions
