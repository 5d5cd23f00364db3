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

// Decode the first four bytes of b. An unknown opcode or an unknown mode for
// a known opcode is an error.
func Decode(b []byte) (Instruction, error) {
	f, err := FieldsOf(b)
	if err != nil {
		return nil, err
	}

	switch f.OpCode {
	case OpHalt:
		if f.Mode != 0 {
			break
		}
		return Halt{}, nil
	case OpInterrupt:
		if f.Mode != 0 {
			break
		}
		return Interrupt{}, nil
	case OpCall:
		if CallMode(f.Mode) > CallMemory {
			break
		}
		return Call{Mode: CallMode(f.Mode), A: f.A, B: f.B, D: f.D}, nil
	case OpJump:
		if JumpMode(f.Mode) > BranchGreaterMemory {
			break
		}
		return Jump{Mode: JumpMode(f.Mode), A: f.A, B: f.B, C: f.C, D: f.D}, nil
	case OpExchange:
		if f.Mode != 0 {
			break
		}
		return Exchange{B: f.B, C: f.C}, nil
	case OpArithmetic:
		if ArithmeticMode(f.Mode) > Div {
			break
		}
		return Arithmetic{Mode: ArithmeticMode(f.Mode), A: f.A, B: f.B, C: f.C}, nil
	case OpLogic:
		if LogicMode(f.Mode) > Xor {
			break
		}
		return Logic{Mode: LogicMode(f.Mode), A: f.A, B: f.B, C: f.C}, nil
	case OpShift:
		if ShiftMode(f.Mode) > ShiftRight {
			break
		}
		return Shift{Mode: ShiftMode(f.Mode), A: f.A, B: f.B, C: f.C}, nil
	case OpStore:
		if StoreMode(f.Mode) > StoreIndirect {
			break
		}
		return Store{Mode: StoreMode(f.Mode), A: f.A, B: f.B, C: f.C, D: f.D}, nil
	case OpLoad:
		if LoadMode(f.Mode) > WriteCSRPostIncrement {
			break
		}
		return Load{Mode: LoadMode(f.Mode), A: f.A, B: f.B, C: f.C, D: f.D}, nil
	default:
		return nil, curated.Errorf(UnknownOpcode, uint8(f.OpCode))
	}

	return nil, curated.Errorf(UnknownMode, f.Mode, f.OpCode)
}
