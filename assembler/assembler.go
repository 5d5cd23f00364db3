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
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// Sentinal error patterns.
const (
	UndefinedSymbol      = "assembler: undefined symbol (%s)"
	SymbolRedefined      = "assembler: symbol redefined (%s)"
	NoOpenSection        = "assembler: %s outside of a section"
	PoolTooLarge         = "assembler: section %s: pool of %d words is too large"
	PoolDisplacement     = "assembler: section %s: pool word out of reach at offset %#x: %v"
	EquNotComputable     = "assembler: .equ %s cannot be computed"
	InvalidOperand       = "assembler: invalid operand for %s (%s)"
	OperandCount         = "assembler: %s expects %d operands (have %d)"
	UnknownMnemonic      = "assembler: unknown mnemonic (%s)"
	LiteralRange         = "assembler: %s: value %d does not fit in the displacement field"
	NotConstant          = "assembler: symbol %s is not a constant known at this point"
	PCRelativeToAbsolute = "assembler: pc relative reference to absolute symbol (%s)"
	AssemblyEnded        = "assembler: %s after end of assembly"
	Encoding             = "assembler: %s: %v"
	SkipTooLarge         = "assembler: .skip of %d bytes (limit is %d)"
)

// Size of a word in bytes.
const WordSize = 4

// MaxSkip is the largest size accepted by Skip().
const MaxSkip = 1 << 24

// InstructionAddend is the addend for displacements measured from the
// displacement field of an instruction.
const InstructionAddend = 2

// logging tags.
const (
	logTag      = "assembler"
	logPool     = "pool"
	logBackpath = "backpatch"
)

// Context is the state of a single assembly. It is not safe for concurrent
// use.
type Context struct {
	perm logger.Permission

	symbols map[string]*Symbol

	// bytes of every section in order of first opening
	obj *objfile.Object

	// relocations keyed by section name
	relocations map[string][]objfile.Relocation

	// the open section or nil
	current *section

	// counter for symbol definitions
	defined int

	// .equ records that could not be computed when they were declared
	equs []equ

	ended       bool
	backpatched bool
}

// NewContext is the preferred method of initialisation for the Context type.
// The Permission value controls logging.
func NewContext(perm logger.Permission) *Context {
	if perm == nil {
		perm = logger.Deny
	}
	return &Context{
		perm:        perm,
		symbols:     make(map[string]*Symbol),
		obj:         objfile.NewObject(),
		relocations: make(map[string][]objfile.Relocation),
	}
}

// Location returns the location counter of the open section. The second
// value is false if there is no open section.
func (ctx *Context) Location() (uint32, bool) {
	if ctx.current == nil {
		return 0, false
	}
	return ctx.current.location(), true
}

// Section returns the bytes written to the named section so far.
func (ctx *Context) Section(name string) []byte {
	sec := ctx.obj.Section(name)
	if sec == nil {
		return nil
	}
	return sec.Data
}

// Relocations returns the relocations recorded for the named section.
func (ctx *Context) Relocations(section string) []objfile.Relocation {
	return ctx.relocations[section]
}
