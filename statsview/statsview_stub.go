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

//go:build !statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/resenje/ss32/logger"
)

// Launch is a stub for builds without the statsview constraint. The returned
// function does nothing.
func Launch(output io.Writer, perm logger.Permission, mode string) func() {
	logger.Logf(perm, logTag, "%s mode: statsview not in this build", mode)
	fmt.Fprintln(output, "stats server not available in this build")
	return func() {}
}

// Available returns false for builds without the statsview constraint.
func Available() bool {
	return false
}
