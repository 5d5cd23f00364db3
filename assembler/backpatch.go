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
	"sort"

	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/logger"
	"github.com/resenje/ss32/objfile"
)

// Backpatch resolves the outstanding forward references of every symbol. It
// closes the open section and computes any deferred .equ symbols first.
//
// It is an error for a symbol to be undefined unless it has been declared
// extern. References that can be resolved without the linker are patched and
// the rest become relocations. Every forward reference is consumed, so calling
// Backpatch() a second time does nothing.
func (ctx *Context) Backpatch() error {
	if err := ctx.End(); err != nil {
		return err
	}

	if ctx.backpatched {
		return nil
	}

	if err := ctx.resolveEqus(); err != nil {
		return err
	}

	names := make([]string, 0, len(ctx.symbols))
	for name := range ctx.symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sym := ctx.symbols[name]
		if !sym.Defined && sym.Section != objfile.Undefined {
			return curated.Errorf(UndefinedSymbol, name)
		}
	}

	var patched, relocated int

	for _, name := range names {
		sym := ctx.symbols[name]

		// drain the forward references
		refs := sym.refs
		sym.refs = nil

		for _, ref := range refs {
			done, err := ctx.resolve(sym, ref)
			if err != nil {
				return err
			}
			if done {
				patched++
				continue // for loop
			}
			ctx.addRelocation(sym, ref)
			relocated++
		}
	}

	for _, r := range ctx.relocations {
		sort.SliceStable(r, func(i, j int) bool {
			return r[i].Offset < r[j].Offset
		})
	}

	ctx.backpatched = true
	logger.Logf(ctx.perm, logBackpath, "%d references patched, %d relocations", patched, relocated)

	return nil
}

// Object returns the relocatable object. Backpatch() is called if it has not
// been called already.
func (ctx *Context) Object() (*objfile.Object, error) {
	if err := ctx.Backpatch(); err != nil {
		return nil, err
	}

	o := objfile.NewObject()
	for name, sym := range ctx.symbols {
		s := sym.Symbol
		o.Symbols[name] = &s
	}
	for _, sec := range ctx.obj.Sections {
		o.Sections = append(o.Sections, &objfile.SectionData{
			Name: sec.Name,
			Data: append([]byte(nil), sec.Data...),
		})
		if r := ctx.relocations[sec.Name]; len(r) > 0 {
			o.Relocations[sec.Name] = append([]objfile.Relocation(nil), r...)
		}
	}

	return o, nil
}
