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

// Memory is a sparse byte addressable memory.
type Memory map[uint32]uint8

// Word returns the little-endian word at the address. Missing bytes read as
// zero.
func (m Memory) Word(address uint32) uint32 {
	return uint32(m[address]) | uint32(m[address+1])<<8 | uint32(m[address+2])<<16 | uint32(m[address+3])<<24
}

// ReadImage loads the memory image produced by WriteImage(). Lines that do not
// begin with an eight digit address are ignored, which skips the symbol
// table. If an address appears more than once the later value wins.
func ReadImage(r io.Reader) (Memory, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf("objfile: %v", err)
	}

	mem := make(Memory)

	for i, ln := range strings.Split(string(d), "\n") {
		addr, data, ok := strings.Cut(ln, ":")
		if !ok || len(addr) != 8 {
			continue // for loop
		}

		a, err := strconv.ParseUint(addr, 16, 32)
		if err != nil {
			continue // for loop
		}

		b, err := parseBytes(strings.Fields(data))
		if err != nil {
			return nil, curated.Errorf(MalformedImage, i+1, err)
		}
		if len(b) > lineBytes {
			return nil, curated.Errorf(MalformedImage, i+1, fmt.Errorf("%d bytes on line", len(b)))
		}

		for j, v := range b {
			mem[uint32(a)+uint32(j)] = v
		}
	}

	return mem, nil
}
