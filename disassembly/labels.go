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
	"fmt"
	"sort"
	"strings"
)

// labels maps section offsets to symbol names.
type labels struct {
	// indexed by offset
	entries map[uint32]string

	// index of keys in entries. sortable through the sort.Interface
	idx []uint32
}

// newLabels is the preferred method of initialisation for the labels type.
func newLabels() *labels {
	return &labels{
		entries: make(map[uint32]string),
	}
}

func (t labels) String() string {
	s := strings.Builder{}
	for _, a := range t.idx {
		s.WriteString(fmt.Sprintf("%#08x -> %s\n", a, t.entries[a]))
	}
	return s.String()
}

// add a label. a label already at the offset is replaced only if prefer is
// true.
func (t *labels) add(offset uint32, label string, prefer bool) {
	if _, ok := t.entries[offset]; ok {
		if prefer {
			t.entries[offset] = label
		}
		return
	}

	t.entries[offset] = label
	t.idx = append(t.idx, offset)
	sort.Sort(t)
}

func (t labels) get(offset uint32) (string, bool) {
	l, ok := t.entries[offset]
	return l, ok
}

// Len implements the sort.Interface.
func (t labels) Len() int {
	return len(t.idx)
}

// Less implements the sort.Interface.
func (t labels) Less(i, j int) bool {
	return t.idx[i] < t.idx[j]
}

// Swap implements the sort.Interface.
func (t labels) Swap(i, j int) {
	t.idx[i], t.idx[j] = t.idx[j], t.idx[i]
}
