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

//go:build statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/resenje/ss32/logger"
)

// Address of the stats server.
const Address = "localhost:12632"

const url = "/debug/statsview"

// assembler and linker runs are short so sample more often than the
// statsview default of two seconds. value is in milliseconds.
const interval = 250

// Launch the stats server for the named ss32 mode. The server runs in its own
// goroutine until the returned function is called.
func Launch(output io.Writer, perm logger.Permission, mode string) func() {
	viewer.SetConfiguration(viewer.WithAddr(Address), viewer.WithInterval(interval))
	mgr := statsview.New()
	go mgr.Start()

	logger.Logf(perm, logTag, "%s mode: server at %s", mode, Address)
	fmt.Fprintf(output, "%s mode stats at http://%s%s\n", mode, Address, url)

	return func() {
		mgr.Stop()
		logger.Logf(perm, logTag, "%s mode: server stopped", mode)
	}
}

// Available returns true if the statsview server can be launched.
func Available() bool {
	return true
}
