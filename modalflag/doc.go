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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// At its simplest it can be used as a replacement for the flag package, with
// some differences. Instead of defining flags globally, flags are added to a
// Modes struct after a call to NewArgs():
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	out := md.AddString("o", "out.o", "output object file")
//
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		// help message has already been printed
//		return
//	case modalflag.ParseError:
//		fmt.Println(err)
//		os.Exit(10)
//	}
//
// Modes are added with AddSubModes(). The first sub-mode is the default and
// is selected when the first remaining argument does not name a sub-mode.
// After parsing, Mode() returns the selected sub-mode and NewMode() prepares
// the flags for that mode:
//
//	md.AddSubModes("ASM", "LINK", "OBJDUMP", "VERSION")
//	p, _ := md.Parse()
//	switch md.Mode() {
//	case "LINK":
//		md.NewMode()
//		hex := md.AddBool("hex", false, "produce hex image")
//		md.Parse()
//	}
//
// Sub-modes are matched case insensitively. Path() returns the chain of modes
// selected so far, separated by a forward slash.
//
// Repeatable flags, such as the linker's -place option, are added with
// AddVar() and any type implementing flag.Value.
package modalflag
