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

package linker

import (
	"encoding/binary"
	"sort"

	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/instructions"
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// Link places the sections, resolves the symbols and applies the relocations
// of every folded object. The returned object has no relocations. Its sections
// are in address order and its symbols hold addresses. Link should only be
// called once for a Context.
func (ctx *Context) Link(placements []Placement) (*objfile.Object, error) {
	names := make([]string, 0, len(ctx.Symbols))
	for name := range ctx.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !ctx.Symbols[name].Defined {
			return nil, curated.Errorf(UndefinedSymbol, name)
		}
	}

	if err := ctx.place(placements); err != nil {
		return nil, err
	}

	base := make(map[string]uint32)
	for _, sec := range ctx.Sections {
		base[sec.Name] = sec.Address
	}

	// section symbols take the base of their section
	for _, sym := range ctx.Symbols {
		if sym.Type == objfile.TypeSection {
			sym.Value = base[sym.Section]
		} else if sym.Relative() {
			sym.Value += base[sym.Section]
		}
	}

	for _, sec := range ctx.Sections {
		for _, r := range ctx.Relocations[sec.Name] {
			if err := ctx.relocate(sec, r, base); err != nil {
				return nil, err
			}
		}
	}

	img := objfile.NewObject()
	img.Symbols = ctx.Symbols
	img.Sections = ctx.Sections

	return img, nil
}

// value of the symbol named by a relocation.
func (ctx *Context) value(name string, base map[string]uint32) (uint32, error) {
	sym, ok := ctx.Symbols[name]
	if !ok {
		if a, ok := base[name]; ok {
			return a, nil
		}
		return 0, curated.Errorf(UndefinedSymbol, name)
	}
	if sym.Type == objfile.TypeSection {
		return base[sym.Section], nil
	}
	return sym.Value, nil
}

func (ctx *Context) relocate(sec *objfile.SectionData, r objfile.Relocation, base map[string]uint32) error {
	s, err := ctx.value(r.Symbol, base)
	if err != nil {
		return err
	}

	p := sec.Address + r.Offset
	v := int64(s) + int64(r.Addend)

	switch r.Kind {
	case objfile.Absolute32:
		if uint64(r.Offset)+4 > uint64(sec.Size()) {
			return curated.Errorf(MalformedReloc, sec.Name, r.Offset)
		}
		binary.LittleEndian.PutUint32(sec.Data[r.Offset:], uint32(v))
		logger.Logf(ctx.perm, logRelocation, "%#08x = %#08x (%s)", p, uint32(v), r.Symbol)

	case objfile.PCRelative32:
		if uint64(r.Offset)+2 > uint64(sec.Size()) {
			return curated.Errorf(MalformedReloc, sec.Name, r.Offset)
		}
		d := v - int64(p)
		if err := instructions.PatchDisplacement(sec.Data[r.Offset:], d); err != nil {
			return curated.Errorf(RelocationRange, sec.Name, r.Offset, err)
		}
		logger.Logf(ctx.perm, logRelocation, "%#08x = pc%+d (%s)", p, d, r.Symbol)
	}

	return nil
}
