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
	"github.com/resenje/ss32/curated"
)

// Sentinal error patterns.
const (
	DisplacementRange = "instructions: displacement out of range (%d)"
	RegisterRange     = "instructions: register out of range (%d)"
	UnknownOpcode     = "instructions: unknown opcode (%#02x)"
	UnknownMode       = "instructions: unknown mode (%d) for %v"
	ShortInstruction  = "instructions: instruction needs %d bytes (have %d)"
)

// Limits of the displacement field.
const (
	MinDisplacement = -2048
	MaxDisplacement = 2047
)

// FitsDisplacement returns true if the value can be stored in the signed 12
// bit displacement field.
func FitsDisplacement(v int64) bool {
	return v >= MinDisplacement && v <= MaxDisplacement
}

// Fields is the raw field layout of an instruction.
type Fields struct {
	OpCode OpCode
	Mode   uint8
	A      Register
	B      Register
	C      Register
	D      int16
}

// Bytes encodes the fields. The registers, the mode and the displacement are
// checked against the width of their field.
func (f Fields) Bytes() ([Size]byte, error) {
	var b [Size]byte

	if f.OpCode > 0x0f {
		return b, curated.Errorf(UnknownOpcode, uint8(f.OpCode))
	}
	if f.Mode > 0x0f {
		return b, curated.Errorf(UnknownMode, f.Mode, f.OpCode)
	}
	for _, r := range []Register{f.A, f.B, f.C} {
		if r >= NumRegisters {
			return b, curated.Errorf(RegisterRange, r)
		}
	}
	if !FitsDisplacement(int64(f.D)) {
		return b, curated.Errorf(DisplacementRange, f.D)
	}

	b[0] = uint8(f.OpCode)<<4 | f.Mode
	b[1] = uint8(f.A)<<4 | uint8(f.B)
	b[2] = uint8(f.C)<<4 | uint8(uint16(f.D)>>8)&0x0f
	b[3] = uint8(f.D)
	return b, nil
}

// FieldsOf splits the first four bytes of b into instruction fields. No
// checking of the opcode or mode is done.
func FieldsOf(b []byte) (Fields, error) {
	if len(b) < Size {
		return Fields{}, curated.Errorf(ShortInstruction, Size, len(b))
	}
	return Fields{
		OpCode: OpCode(b[0] >> 4),
		Mode:   b[0] & 0x0f,
		A:      Register(b[1] >> 4),
		B:      Register(b[1] & 0x0f),
		C:      Register(b[2] >> 4),
		D:      Displacement(b[2:]),
	}, nil
}

// Displacement reads the sign extended displacement field. The slice starts at
// the displacement site, which is the third byte of the instruction.
func Displacement(site []byte) int16 {
	v := uint16(site[0]&0x0f)<<8 | uint16(site[1])
	if v&0x0800 != 0 {
		v |= 0xf000
	}
	return int16(v)
}

// PatchDisplacement writes the displacement into the field starting at site,
// the third byte of the instruction. The register C nibble is preserved.
func PatchDisplacement(site []byte, d int64) error {
	if !FitsDisplacement(d) {
		return curated.Errorf(DisplacementRange, d)
	}
	site[0] = site[0]&0xf0 | uint8(uint16(d)>>8)&0x0f
	site[1] = uint8(d)
	return nil
}

// ToDirect returns the first instruction byte with the mode rewritten from
// the pool addressed form to the program counter relative form. The second
// return value is false if the instruction has no pool addressed form.
//
//	call: 1 -> 0
//	jump: 4..7 -> 0..3
//	store: 2 -> 0
//	load: 2 -> 1
func ToDirect(first byte) (byte, bool) {
	oc := OpCode(first >> 4)
	mode := first & 0x0f

	switch oc {
	case OpCall:
		if CallMode(mode) == CallMemory {
			return byte(oc)<<4 | byte(CallDirect), true
		}
	case OpJump:
		if JumpMode(mode) >= JumpMemory && JumpMode(mode) <= BranchGreaterMemory {
			return byte(oc)<<4 | (mode - 4), true
		}
	case OpStore:
		if StoreMode(mode) == StoreIndirect {
			return byte(oc)<<4 | byte(StoreRelative), true
		}
	case OpLoad:
		if LoadMode(mode) == LoadMemory {
			return byte(oc)<<4 | byte(LoadAddress), true
		}
	}

	return first, false
}
