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

import (
	"fmt"
	"io"
	"strings"
)

const (
	symtabHeader = "#.symtab"
	relaPrefix   = "#.rela."
	sectionMark  = "#"
)

// bytes per line in section dumps and images.
const lineBytes = 8

func writeSymbols(s *strings.Builder, syms Symbols) {
	s.WriteString(symtabHeader)
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%-6s%-10s%-4s%-9s%-6s%-20s%s\n", "Num", "Value", "Size", "  Type", "Bind", "Sctn", "Name"))

	for i, sym := range syms.Sorted() {
		s.WriteString(fmt.Sprintf("%-5d %08X%6d  %-6s %-5s %-19s %s\n",
			i, sym.Value, 0, sym.Type, sym.Binding, sym.Section, sym.Name))
	}
}

func writeRelocations(s *strings.Builder, section string, relocs []Relocation) {
	s.WriteString(relaPrefix)
	s.WriteString(section)
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("%-10s%-14s%-12s%s\n", "Offset", "Type", "Symbol", "Addend"))

	for _, r := range relocs {
		s.WriteString(fmt.Sprintf("%08X  %-13s %-11s %6d\n", r.Offset, r.Kind, r.Symbol, r.Addend))
	}
}

// writeBytes dumps data eight bytes to a line. If image is true each line is
// prefixed with the address of its first byte and the last line is padded with
// zero bytes.
func writeBytes(s *strings.Builder, data []byte, address uint32, image bool) {
	for i := 0; i < len(data); i += lineBytes {
		line := data[i:min(i+lineBytes, len(data))]

		if image {
			s.WriteString(fmt.Sprintf("%08X: ", address+uint32(i)))
		}

		for j := range lineBytes {
			var b byte
			if j < len(line) {
				b = line[j]
			} else if !image {
				break // for loop
			}

			switch j {
			case 0:
			case 4:
				s.WriteString("   ")
			default:
				s.WriteString(" ")
			}
			s.WriteString(fmt.Sprintf("%02X", b))
		}

		s.WriteString("\n")
	}
}

// Write the relocatable object in text form.
func Write(w io.Writer, o *Object) error {
	s := &strings.Builder{}

	writeSymbols(s, o.Symbols)

	for _, sec := range o.Sections {
		if r := o.Relocations[sec.Name]; len(r) > 0 {
			writeRelocations(s, sec.Name, r)
		}
	}

	for _, sec := range o.Sections {
		s.WriteString(sectionMark)
		s.WriteString(sec.Name)
		s.WriteString("\n")
		writeBytes(s, sec.Data, 0, false)
	}

	_, err := io.WriteString(w, s.String())
	return err
}

// WriteImage writes the symbol table and the placed sections of a linked
// object. Sections are written in the order they appear in the Sections
// slice, each starting at its Address.
func WriteImage(w io.Writer, o *Object) error {
	s := &strings.Builder{}

	writeSymbols(s, o.Symbols)

	for _, sec := range o.Sections {
		writeBytes(s, sec.Data, sec.Address, true)
	}

	_, err := io.WriteString(w, s.String())
	return err
}
