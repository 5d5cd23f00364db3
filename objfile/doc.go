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

// Package objfile is the data model shared by the assembler and the linker,
// together with the text formats that carry it between them.
//
// A relocatable object has three parts, written in this order:
//
//	#.symtab
//	Num   Value     Size  Type   Bind  Sctn                Name
//	0     00000000     0  SCTN   LOC   text                text
//	1     00000008     0  OBJ    GLOB  text                main
//	#.rela.text
//	Offset    Type          Symbol      Addend
//	00000010  R_X86_64_32   data             0
//	#text
//	91 1F 00 0C   93 1E 00 04
//
// Symbol table lines are fixed width but the reader splits them on white
// space. The writer guarantees at least one space between columns.
//
// Sections are dumped eight bytes per line. The linker output, the image, uses
// the same byte layout prefixed with the address of the first byte on the
// line:
//
//	40000000: 91 1F 00 0C   93 1E 00 04
//
// ReadImage() loads an image into a sparse memory map.
package objfile
