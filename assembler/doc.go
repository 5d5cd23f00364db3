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

// Package assembler turns a stream of instructions and directives into a
// relocatable object. The stream is normally produced by the parser package
// but the Context type can be driven directly.
//
// Assembly is in two passes. The first pass is the stream itself. Bytes are
// written to the open section and every reference to a symbol or literal is
// recorded:
//
//   - a reference to a symbol already defined in the open section is patched
//     immediately
//   - instruction references to literals and to other symbols are collected
//     until the section is closed. Closing the section writes a pool of words
//     after a jump that skips over it and every referencing instruction is
//     patched to load from its pool word
//   - a reference that still cannot be resolved is recorded as a forward
//     reference on the symbol
//
// The second pass is Backpatch(). It drains the forward references of every
// symbol, patching those that can be resolved within the file and turning the
// rest into relocations for the linker.
//
// An instruction that refers to a symbol defined in the same section does not
// need a pool word. Its addressing mode is rewritten from the pool form to
// the program counter relative form (see instructions.ToDirect).
//
// The displacement of a reference made by an instruction is measured from the
// displacement field, two bytes into the instruction, with an addend of two.
// This means the encoded displacement is relative to the program counter at
// the time the instruction is executed.
package assembler
