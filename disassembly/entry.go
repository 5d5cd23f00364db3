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

package disassembly

import (
	"fmt"
	"strings"

	"github.com/resenje/ss32/instructions"
)

// EntryKind describes what the bytes of an Entry are.
type EntryKind int

// List of valid EntryKind values.
const (
	// a decoded instruction
	EntryInstruction EntryKind = iota

	// a word skipped by a pool jump
	EntryPool

	// a word that does not decode as an instruction or that is the site of
	// an absolute relocation
	EntryData

	// the bytes at the end of a section that do not fill a word
	EntryBytes
)

func (k EntryKind) String() string {
	switch k {
	case EntryInstruction:
		return "instruction"
	case EntryPool:
		return "pool"
	case EntryData:
		return "data"
	case EntryBytes:
		return "bytes"
	}
	return "unknown"
}

// Entry is a single line of a disassembly.
type Entry struct {
	Kind EntryKind

	// offset in the section and the address of the first byte. the address
	// is the same as the offset for a section that has not been placed
	Offset  uint32
	Address uint32

	Bytes []byte

	// nil unless Kind is EntryInstruction
	Instruction instructions.Instruction

	// symbol defined at the offset. empty if there is no symbol
	Label string

	Operator string
	Operand  string

	// relocation or pc relative target information
	Annotation string
}

// Bytecode returns the bytes of the entry in the format used by object files.
func (e *Entry) Bytecode() string {
	s := make([]string, len(e.Bytes))
	for i, b := range e.Bytes {
		s[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(s, " ")
}

func (e *Entry) String() string {
	if e.Operand == "" {
		return e.Operator
	}
	return fmt.Sprintf("%s %s", e.Operator, e.Operand)
}

// pcRelative returns the displacement of an instruction that addresses memory
// relative to the program counter.
func pcRelative(ins instructions.Instruction) (int16, bool) {
	f := ins.Fields()

	switch ins := ins.(type) {
	case instructions.Call, instructions.Store:
		return f.D, f.A == instructions.PC && f.B == instructions.R0
	case instructions.Jump:
		return f.D, f.A == instructions.PC
	case instructions.Load:
		switch ins.Mode {
		case instructions.LoadAddress, instructions.LoadMemory, instructions.WriteCSRMemory:
			return f.D, f.B == instructions.PC && f.C == instructions.R0
		}
	}

	return 0, false
}

// poolJump returns the number of bytes skipped if the instruction is the jump
// in front of a pool.
func poolJump(ins instructions.Instruction) (uint32, bool) {
	j, ok := ins.(instructions.Jump)
	if !ok {
		return 0, false
	}
	if j.Mode != instructions.JumpDirect || j.A != instructions.PC || j.B != instructions.R0 || j.C != instructions.R0 {
		return 0, false
	}
	if j.D <= 0 || j.D%instructions.Size != 0 {
		return 0, false
	}
	return uint32(j.D), true
}
