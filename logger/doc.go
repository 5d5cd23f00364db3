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

// Package logger is the central log repository for ss32. The assembler and
// linker log their progress (pool emission, backpatching, section placement,
// relocation) to the central log under a short tag. The log is bounded in
// length and adjacent duplicate entries are collapsed into a single entry with
// a repeat count.
//
// Logging is conditional on a Permission value. Use logger.Allow to log
// unconditionally. A Permission implementation that reads a command line flag
// or an environment variable is the normal way of controlling log output.
//
// The detail argument to Log() can be a string, an error or anything that
// implements fmt.Stringer. Other types are formatted with the %v verb.
package logger
