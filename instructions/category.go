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

package instructions

// Category of an instruction describes its effect.
type Category int

// List of instruction categories.
const (
	Control Category = iota
	Flow
	Subroutine
	ALU
	Memory
)

func (c Category) String() string {
	switch c {
	case Control:
		return "Control"
	case Flow:
		return "Flow"
	case Subroutine:
		return "Subroutine"
	case ALU:
		return "ALU"
	case Memory:
		return "Memory"
	}
	return "unknown category"
}
