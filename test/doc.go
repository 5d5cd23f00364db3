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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions report a test error and allow the test to continue.
// The Demand*() functions are for values that later parts of a test depend on
// and so stop the test immediately with a fatal error.
//
// ExpectSuccess() and ExpectFailure() test for success or failure under
// generic conditions. For a bool, true is success. For an error, nil is
// success. It is worth noting that the untyped nil is considered a success.
// This is how errors work in Go (nil to indicate no error) and so it is the
// most useful interpretation.
//
// The CompareWriter type implements the io.Writer interface and should be used
// to capture output. The Compare() function can then be used to test for
// equality.
package test
