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
	"strconv"
	"strings"

	"github.com/resenje/ss32/curated"
)

func parseSymbol(p []string) (*Symbol, error) {
	if len(p) != 7 {
		return nil, fmt.Errorf("symbol table entry has %d fields", len(p))
	}

	num, err := strconv.Atoi(p[0])
	if err != nil {
		return nil, fmt.Errorf("symbol number: %w", err)
	}

	value, err := strconv.ParseUint(p[1], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("symbol value: %w", err)
	}

	sym := &Symbol{
		Index:   num,
		Value:   uint32(value),
		Section: p[5],
		Name:    p[6],
		Defined: p[5] != Undefined,
	}

	switch p[3] {
	case "NOTYP":
		sym.Type = TypeNone
	case "SCTN":
		sym.Type = TypeSection
	case "OBJ":
		sym.Type = TypeObject
	default:
		return nil, fmt.Errorf("unknown symbol type %s", p[3])
	}

	switch p[4] {
	case "LOC":
		sym.Binding = Local
	case "GLOB":
		sym.Binding = Global
	default:
		return nil, fmt.Errorf("unknown symbol binding %s", p[4])
	}

	return sym, nil
}

func parseRelocation(p []string) (Relocation, error) {
	var r Relocation

	if len(p) != 4 {
		return r, fmt.Errorf("relocation entry has %d fields", len(p))
	}

	offset, err := strconv.ParseUint(p[0], 16, 32)
	if err != nil {
		return r, fmt.Errorf("relocation offset: %w", err)
	}
	r.Offset = uint32(offset)

	var ok bool
	r.Kind, ok = parseRelocationKind(p[1])
	if !ok {
		return r, fmt.Errorf("unknown relocation type %s", p[1])
	}

	r.Symbol = p[2]

	addend, err := strconv.ParseInt(p[3], 10, 32)
	if err != nil {
		return r, fmt.Errorf("relocation addend: %w", err)
	}
	r.Addend = int32(addend)

	return r, nil
}

func parseBytes(p []string) ([]byte, error) {
	b := make([]byte, 0, len(p))
	for _, s := range p {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("section data: %w", err)
		}
		b = append(b, uint8(v))
	}
	return b, nil
}

// Read a relocatable object in the text form produced by Write().
func Read(r io.Reader) (*Object, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf("objfile: %v", err)
	}
	lines := strings.Split(string(d), "\n")

	o := NewObject()

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != symtabHeader {
		return nil, curated.Errorf(MalformedObject, 1, "missing symbol table")
	}

	const (
		inSymbols = iota
		inRelocations
		inSection
	)

	state := inSymbols
	var section string
	var seenData bool

	for i := 1; i < len(lines); i++ {
		ln := strings.TrimSpace(lines[i])
		if ln == "" {
			continue // for loop
		}

		if strings.HasPrefix(ln, sectionMark) {
			// relocation blocks all come before the first section block
			if !seenData && strings.HasPrefix(ln, relaPrefix) {
				state = inRelocations
				section = ln[len(relaPrefix):]
				continue // for loop
			}

			state = inSection
			seenData = true
			section = ln[len(sectionMark):]
			o.AddSection(section)
			continue // for loop
		}

		p := strings.Fields(ln)

		switch state {
		case inSymbols:
			if p[0] == "Num" {
				continue // for loop
			}
			sym, err := parseSymbol(p)
			if err != nil {
				return nil, curated.Errorf(MalformedObject, i+1, err)
			}
			o.Symbols[sym.Name] = sym
		case inRelocations:
			if p[0] == "Offset" {
				continue // for loop
			}
			rel, err := parseRelocation(p)
			if err != nil {
				return nil, curated.Errorf(MalformedObject, i+1, err)
			}
			o.Relocations[section] = append(o.Relocations[section], rel)
		case inSection:
			b, err := parseBytes(p)
			if err != nil {
				return nil, curated.Errorf(MalformedObject, i+1, err)
			}
			sec := o.Section(section)
			sec.Data = append(sec.Data, b...)
		}
	}

	return o, nil
}
