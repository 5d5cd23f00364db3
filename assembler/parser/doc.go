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

// Package parser reads assembly source line by line and drives an
// assembler.Context through its call interface.
//
// A line is any number of labels followed by an optional directive or
// instruction. Comments start with a '#' character that is not inside a string
// or character literal.
//
//	start:  ld $0x10, %r1     # load the pool word
//	        .word start, 4
//	msg:    .ascii "hello\n"
//	        .equ len, end - msg
//
// Errors are reported with the file name and line number of the failing line.
package parser
