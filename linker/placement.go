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
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// Sentinal error patterns.
const (
	BadPlacement       = "linker: bad placement (%s)"
	DuplicatePlacement = "linker: section %s placed more than once"
	UnknownSection     = "linker: placement of unknown section (%s)"
	SectionOverlap     = "linker: section %s overlaps section %s"
	AddressRange       = "linker: section %s at %#08x with %d bytes passes the end of memory"
)

// Boundary is the first address that cannot be used by a section. The
// addresses above it are reserved for memory mapped registers.
const Boundary = 0xffffff00

// Alignment of sequentially placed sections.
const Alignment = 16

// Placement fixes the address of a section.
type Placement struct {
	Section string
	Address uint32
}

func (p Placement) String() string {
	return fmt.Sprintf("%s@%#08x", p.Section, p.Address)
}

// ParsePlacement parses a placement of the form section@address. The address
// can be written in any of the integer notations of the Go language.
func ParsePlacement(s string) (Placement, error) {
	name, address, ok := strings.Cut(s, "@")
	if !ok || name == "" {
		return Placement{}, curated.Errorf(BadPlacement, s)
	}

	v, err := strconv.ParseUint(address, 0, 32)
	if err != nil {
		return Placement{}, curated.Errorf(BadPlacement, s)
	}

	return Placement{Section: name, Address: uint32(v)}, nil
}

// Placements is a list of placements. It implements the flag.Value interface
// so that the flag can be repeated on the command line.
type Placements []Placement

func (p *Placements) String() string {
	s := make([]string, 0, len(*p))
	for _, pl := range *p {
		s = append(s, pl.String())
	}
	return strings.Join(s, ",")
}

// Set implements the flag.Value interface.
func (p *Placements) Set(s string) error {
	pl, err := ParsePlacement(s)
	if err != nil {
		return err
	}
	for _, e := range *p {
		if e.Section == pl.Section {
			return curated.Errorf(DuplicatePlacement, pl.Section)
		}
	}
	*p = append(*p, pl)
	return nil
}

func alignUp(v uint64) uint64 {
	return (v + Alignment - 1) &^ (Alignment - 1)
}

// place sets the address of every section. The explicitly placed sections
// are checked for overlap. The remaining sections follow the highest placed
// section in the order they were first seen.
func (ctx *Context) place(placements []Placement) error {
	placed := make(map[string]bool)

	for _, p := range placements {
		sec := ctx.section(p.Section)
		if sec == nil {
			return curated.Errorf(UnknownSection, p.Section)
		}
		if placed[p.Section] {
			return curated.Errorf(DuplicatePlacement, p.Section)
		}
		placed[p.Section] = true
		sec.Address = p.Address
	}

	var fixed []*objfile.SectionData
	for _, sec := range ctx.Sections {
		if placed[sec.Name] {
			fixed = append(fixed, sec)
		}
	}
	sort.SliceStable(fixed, func(i, j int) bool {
		return fixed[i].Address < fixed[j].Address
	})

	var top uint64
	var last *objfile.SectionData

	for _, sec := range fixed {
		end := uint64(sec.Address) + uint64(sec.Size())
		if end > Boundary {
			return curated.Errorf(AddressRange, sec.Name, sec.Address, sec.Size())
		}
		if last != nil && uint64(sec.Address) < top {
			return curated.Errorf(SectionOverlap, sec.Name, last.Name)
		}
		if end > top {
			top = end
			last = sec
		}
		logger.Logf(ctx.perm, logPlacement, "%s placed at %#08x (%d bytes)", sec.Name, sec.Address, sec.Size())
	}

	next := alignUp(top)
	for _, sec := range ctx.Sections {
		if placed[sec.Name] {
			continue // for loop
		}
		end := next + uint64(sec.Size())
		if end > Boundary {
			return curated.Errorf(AddressRange, sec.Name, next, sec.Size())
		}
		sec.Address = uint32(next)
		logger.Logf(ctx.perm, logPlacement, "%s at %#08x (%d bytes)", sec.Name, sec.Address, sec.Size())
		next = alignUp(end)
	}

	sort.SliceStable(ctx.Sections, func(i, j int) bool {
		return ctx.Sections[i].Address < ctx.Sections[j].Address
	})

	return nil
}
