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
	"testing"

	"github.com/resenje/ss32/test"
)

func TestLabels(t *testing.T) {
	lbl := newLabels()
	lbl.add(8, "loop", false)
	lbl.add(0, "local", false)
	lbl.add(0, "global", true)
	lbl.add(0, "ignored", false)

	l, ok := lbl.get(0)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, l, "global")

	_, ok = lbl.get(4)
	test.ExpectFailure(t, ok)

	test.ExpectEquality(t, lbl.String(), "0x00000000 -> global\n0x00000008 -> loop\n")
}
