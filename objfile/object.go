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
	"sort"
	"strings"

	"github.com/resenje/ss32/curated"
)

// Sentinal error patterns.
const (
	ReservedSectionName = "objfile: reserved section name (%s)"
	MalformedObject     = "objfile: line %d: %v"
	MalformedImage      = "objfile: image line %d: %v"
)

// SectionData is the content of a single section.
type SectionData struct {
	Name string
	Data []byte

	// the base address assigned by the linker. zero in relocatable objects
	Address uint32
}

// Size of the section in bytes.
func (sec *SectionData) Size() uint32 {
	return uint32(len(sec.Data))
}

// Object is a relocatable object or, after linking, a placed image.
type Object struct {
	Symbols Symbols

	// sections in order of first appearance
	Sections []*SectionData

	// relocations keyed by section name
	Relocations map[string][]Relocation
}

// NewObject is the preferred method of initialisation for the Object type.
func NewObject() *Object {
	return &Object{
		Symbols:     make(Symbols),
		Relocations: make(map[string][]Relocation),
	}
}

// Section returns the named section or nil if there is no section with that
// name.
func (o *Object) Section(name string) *SectionData {
	for _, sec := range o.Sections {
		if sec.Name == name {
			return sec
		}
	}
	return nil
}

// AddSection adds a new empty section. If the section already exists it is
// returned unchanged.
func (o *Object) AddSection(name string) *SectionData {
	if sec := o.Section(name); sec != nil {
		return sec
	}
	sec := &SectionData{Name: name}
	o.Sections = append(o.Sections, sec)
	return sec
}

// SortRelocations sorts the relocations of every section by offset. The sort
// is stable so relocations at the same offset keep their order.
func (o *Object) SortRelocations() {
	for _, r := range o.Relocations {
		sort.SliceStable(r, func(i, j int) bool {
			return r[i].Offset < r[j].Offset
		})
	}
}

// CheckSectionName returns an error if the name cannot be used for a section
// because it would be mistaken for another part of the object format.
func CheckSectionName(name string) error {
	switch {
	case name == "":
		return curated.Errorf(ReservedSectionName, name)
	case name == Undefined || name == Absolute:
		return curated.Errorf(ReservedSectionName, name)
	case name == symtabHeader[1:]:
		return curated.Errorf(ReservedSectionName, name)
	case strings.HasPrefix(name, relaPrefix[1:]):
		return curated.Errorf(ReservedSectionName, name)
	case strings.ContainsAny(name, " \t\n@"):
		return curated.Errorf(ReservedSectionName, name)
	}
	return nil
}
