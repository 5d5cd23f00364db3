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
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/resenje/ss32/instructions"
	"github.com/resenje/ss32/objfile"
)

// Section is the disassembly of a single section.
type Section struct {
	Name    string
	Address uint32
	Entries []*Entry

	labels *labels
}

// Disassembly of every section of an object, in the order of the sections in
// the object.
type Disassembly struct {
	Sections []*Section
}

// FromObject disassembles every section of the object. The object can be a
// relocatable object or a linked image.
func FromObject(o *objfile.Object) *Disassembly {
	dsm := &Disassembly{}

	for _, sec := range o.Sections {
		lbl := newLabels()
		for _, sym := range o.Symbols {
			if sym.Type == objfile.TypeSection || !sym.Defined || sym.Section != sec.Name {
				continue // for loop
			}

			// linked images hold addresses not offsets
			offset := sym.Value
			if offset >= sec.Address {
				offset -= sec.Address
			}

			lbl.add(offset, sym.Name, sym.Binding == objfile.Global)
		}

		relocs := make(map[uint32]objfile.Relocation)
		for _, r := range o.Relocations[sec.Name] {
			relocs[r.Offset] = r
		}

		dsm.Sections = append(dsm.Sections, disassemble(sec, lbl, relocs))
	}

	return dsm
}

// Section returns the named section or nil if there is no such section.
func (dsm *Disassembly) Section(name string) *Section {
	for _, s := range dsm.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func relocation(r objfile.Relocation) string {
	if r.Addend == 0 {
		return fmt.Sprintf("%s %s", r.Kind, r.Symbol)
	}
	return fmt.Sprintf("%s %s%+d", r.Kind, r.Symbol, r.Addend)
}

func disassemble(sec *objfile.SectionData, lbl *labels, relocs map[uint32]objfile.Relocation) *Section {
	s := &Section{
		Name:    sec.Name,
		Address: sec.Address,
		labels:  lbl,
	}

	// bytes of pool remaining
	var pool uint32

	offset := uint32(0)
	for offset < sec.Size() {
		e := &Entry{
			Offset:  offset,
			Address: sec.Address + offset,
		}
		e.Label, _ = lbl.get(offset)

		if sec.Size()-offset < instructions.Size {
			e.Kind = EntryBytes
			e.Bytes = sec.Data[offset:]
			e.Operator = ".byte"

			b := make([]string, len(e.Bytes))
			for i, v := range e.Bytes {
				b[i] = fmt.Sprintf("%#02x", v)
			}
			e.Operand = strings.Join(b, ", ")

			s.Entries = append(s.Entries, e)
			break // for loop
		}

		e.Bytes = sec.Data[offset : offset+instructions.Size]
		r, relocated := relocs[offset]

		var ins instructions.Instruction
		var err error
		if pool == 0 && !(relocated && r.Kind == objfile.Absolute32) {
			ins, err = instructions.Decode(e.Bytes)
		}

		if pool > 0 || ins == nil || err != nil {
			e.Kind = EntryData
			if pool > 0 {
				e.Kind = EntryPool
				pool -= instructions.Size
			}
			e.Operator = ".word"
			e.Operand = fmt.Sprintf("%#08x", binary.LittleEndian.Uint32(e.Bytes))
			if relocated {
				e.Annotation = relocation(r)
			}
		} else {
			e.Kind = EntryInstruction
			e.Instruction = ins
			e.Operator, e.Operand, _ = strings.Cut(ins.String(), " ")

			if n, ok := poolJump(ins); ok && offset+instructions.Size+n <= sec.Size() {
				pool = n
				e.Annotation = fmt.Sprintf("pool of %d words", n/instructions.Size)
			} else if r, ok := relocs[offset+2]; ok {
				e.Annotation = relocation(r)
			} else if d, ok := pcRelative(ins); ok {
				target := int64(offset) + instructions.Size + int64(d)
				e.Annotation = fmt.Sprintf("%#08x", int64(sec.Address)+target)
				if target >= 0 {
					if l, ok := lbl.get(uint32(target)); ok {
						e.Annotation = fmt.Sprintf("%s <%s>", e.Annotation, l)
					}
				}
			}
		}

		s.Entries = append(s.Entries, e)
		offset += instructions.Size
	}

	return s
}
