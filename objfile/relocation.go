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

package objfile

import "fmt"

// RelocationKind describes how a relocation site is patched.
type RelocationKind int

// List of valid relocation kinds.
const (
	// the site is a little-endian word. it receives the address of the
	// symbol plus the addend
	Absolute32 RelocationKind = iota

	// the site is the displacement field of an instruction. it receives the
	// address of the symbol plus the addend, minus the address of the site
	PCRelative32
)

func (k RelocationKind) String() string {
	switch k {
	case Absolute32:
		return "R_X86_64_32"
	case PCRelative32:
		return "R_X86_64_PC32"
	}
	return "UNDEF"
}

func parseRelocationKind(s string) (RelocationKind, bool) {
	switch s {
	case "R_X86_64_32":
		return Absolute32, true
	case "R_X86_64_PC32":
		return PCRelative32, true
	}
	return 0, false
}

// Relocation is an instruction to the linker to patch a site in a section.
type Relocation struct {
	// offset of the site within the section
	Offset uint32
	Symbol string
	Kind   RelocationKind
	Addend int32
}

func (r Relocation) String() string {
	return fmt.Sprintf("%#08x %s %s%+d", r.Offset, r.Kind, r.Symbol, r.Addend)
}
