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
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// Sentinal error patterns.
const (
	UndefinedSymbol    = "linker: undefined symbol (%s)"
	TypeMismatch       = "linker: symbol %s has type %s and %s"
	BindingMismatch    = "linker: symbol %s has binding %s and %s"
	MultipleDefinition = "linker: multiple definition of %s"
	LocalReference     = "linker: relocation in %s refers to local symbol %s"
	MalformedReloc     = "linker: section %s: relocation at %#x outside of section"
	RelocationRange    = "linker: section %s: relocation at %#x: %v"
)

// logging tags.
const (
	logTag        = "linker"
	logPlacement  = "placement"
	logRelocation = "relocation"
)

// Context is the accumulated state of a link. It is not safe for concurrent
// use.
type Context struct {
	perm logger.Permission

	Symbols objfile.Symbols

	// merged sections in order of first appearance
	Sections []*objfile.SectionData

	// merged relocations keyed by section name
	Relocations map[string][]objfile.Relocation

	// symbol index for the next symbol to be merged
	next int

	// number of objects folded
	objects int
}

// NewContext is the preferred method of initialisation for the Context type.
// A nil Permission denies logging.
func NewContext(perm logger.Permission) *Context {
	if perm == nil {
		perm = logger.Deny
	}
	return &Context{
		perm:        perm,
		Symbols:     make(objfile.Symbols),
		Relocations: make(map[string][]objfile.Relocation),
	}
}

func (ctx *Context) section(name string) *objfile.SectionData {
	for _, sec := range ctx.Sections {
		if sec.Name == name {
			return sec
		}
	}
	return nil
}

// private returns true if the symbol is not visible outside of its object.
func private(sym *objfile.Symbol) bool {
	return sym.Binding == objfile.Local && sym.Type != objfile.TypeSection
}

// validate checks the symbols of the incoming object against the accumulated
// symbols.
func (ctx *Context) validate(o *objfile.Object) error {
	for _, sym := range o.Symbols.Sorted() {
		if private(sym) {
			continue // for loop
		}

		existing, ok := ctx.Symbols[sym.Name]
		if !ok {
			continue // for loop
		}

		if existing.Binding != sym.Binding {
			return curated.Errorf(BindingMismatch, sym.Name, existing.Binding, sym.Binding)
		}

		// an undefined symbol takes the type of its definition
		if existing.Defined && sym.Defined {
			if existing.Type != sym.Type {
				return curated.Errorf(TypeMismatch, sym.Name, existing.Type, sym.Type)
			}
			if sym.Type != objfile.TypeSection {
				return curated.Errorf(MultipleDefinition, sym.Name)
			}
		}
	}

	return nil
}

// Fold the object into the link. Sections with a name already in the link are
// appended to the existing section and the values of the symbols and the
// offsets of the relocations that refer to the fragment are shifted
// accordingly.
func (ctx *Context) Fold(o *objfile.Object) error {
	if err := ctx.validate(o); err != nil {
		return err
	}

	// the amount each incoming section fragment is shifted by
	shift := make(map[string]uint32)
	for _, sec := range o.Sections {
		if existing := ctx.section(sec.Name); existing != nil {
			shift[sec.Name] = existing.Size()
			logger.Logf(ctx.perm, logTag, "appending %d bytes to %s at %#x", sec.Size(), sec.Name, existing.Size())
		}
	}

	// relocations that refer to private symbols are rewritten to refer to the
	// section symbol of the owning section
	relocations := make(map[string][]objfile.Relocation)
	for name, relocs := range o.Relocations {
		for _, r := range relocs {
			sym, ok := o.Symbols[r.Symbol]
			section := ok && sym.Type == objfile.TypeSection

			if ok && private(sym) {
				if !sym.Relative() {
					return curated.Errorf(LocalReference, name, r.Symbol)
				}
				r.Symbol = sym.Section
				r.Addend += int32(sym.Value)
				section = true
			}

			if section {
				r.Addend += int32(shift[r.Symbol])
			}

			r.Offset += shift[name]
			relocations[name] = append(relocations[name], r)
		}
	}

	for _, sym := range o.Symbols.Sorted() {
		if private(sym) {
			continue // for loop
		}

		s := *sym
		if s.Type != objfile.TypeSection && s.Relative() {
			s.Value += shift[s.Section]
		}

		if existing, ok := ctx.Symbols[s.Name]; ok {
			if existing.Type == objfile.TypeSection || existing.Defined || !s.Defined {
				continue // for loop
			}
		}

		s.Index = ctx.next
		ctx.next++
		ctx.Symbols[s.Name] = &s
	}

	for _, sec := range o.Sections {
		if existing := ctx.section(sec.Name); existing != nil {
			existing.Data = append(existing.Data, sec.Data...)
		} else {
			ctx.Sections = append(ctx.Sections, &objfile.SectionData{
				Name: sec.Name,
				Data: append([]byte(nil), sec.Data...),
			})
		}
		ctx.Relocations[sec.Name] = append(ctx.Relocations[sec.Name], relocations[sec.Name]...)
	}

	ctx.objects++
	logger.Logf(ctx.perm, logTag, "object %d folded: %d sections, %d symbols", ctx.objects, len(ctx.Sections), len(ctx.Symbols))

	return nil
}

// Graph writes a graphviz description of the Context.
func (ctx *Context) Graph(w io.Writer) {
	memviz.Map(w, ctx)
}
