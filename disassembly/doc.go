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

// Package disassembly decodes the sections of an object back into listings of
// instructions and data.
//
// A section is assumed to hold instructions until a word cannot be decoded.
// The words skipped by a pool jump, which is an unconditional jump over a
// whole number of words immediately following it, are listed as data.
// Relocations and symbols of the object annotate the listing.
//
// For quick disassemblies the FromObject() function can be used.
package disassembly
