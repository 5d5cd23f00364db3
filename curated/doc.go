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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface and are created with the
// Errorf() function, which takes a pattern and placeholder values in the same
// way as the Errorf() function in the fmt package.
//
// Every package in the toolchain that can fail exports the patterns it uses
// as string constants. Callers can then test for a particular failure with
// Is() or, when the error may have been wrapped, with Has():
//
//	err := asm.Backpatch()
//	if curated.Has(err, assembler.UndefinedSymbol) {
//		...
//	}
//
// Wrapping is done by using a curated error as a placeholder value:
//
//	return curated.Errorf("linker: %v", err)
//
// The Error() function normalises the message chain by removing duplicate
// adjacent parts. Parts are separated by the sub-string ': ' as suggested on
// p239 of "The Go Programming Language" (Donovan, Kernighan). So the following
// chain:
//
//	linker: linker: undefined symbol: foo
//
// is printed as:
//
//	linker: undefined symbol: foo
//
// This takes away the problem of deciding at which level of the call stack a
// context prefix should be added.
//
// A curated error that has a non-curated error as one of its values will
// return that error from Unwrap(). This means errors.Is() works as expected
// with system errors:
//
//	_, err := objfile.ReadFile("missing.o")
//	if errors.Is(err, fs.ErrNotExist) {
//		...
//	}
package curated
