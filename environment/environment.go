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

// Package environment collects the defaults that ss32 takes from the process
// environment. Command line flags override these values.
//
//	SS32_LOG       echo the central log to stderr as entries are added
//	SS32_ASM_OUT   default output file for the assembler (out.o)
//	SS32_LINK_OUT  default output file for the linker (empty for stdout)
package environment

import (
	"github.com/xyproto/env/v2"
)

// Names of the environment variables.
const (
	LogVar     = "SS32_LOG"
	AsmOutVar  = "SS32_ASM_OUT"
	LinkOutVar = "SS32_LINK_OUT"
)

// DefaultAsmOut is the assembler output file if SS32_ASM_OUT is not set.
const DefaultAsmOut = "out.o"

// Environment is the configuration taken from environment variables.
type Environment struct {
	Log     bool
	AsmOut  string
	LinkOut string
}

// NewEnvironment reads the environment variables. The env package caches the
// process environment so the cache is reloaded on every call.
func NewEnvironment() Environment {
	env.Load()
	return Environment{
		Log:     env.Bool(LogVar),
		AsmOut:  env.Str(AsmOutVar, DefaultAsmOut),
		LinkOut: env.Str(LinkOutVar),
	}
}

// AllowLogging implements the logger.Permission interface.
func (e Environment) AllowLogging() bool {
	return e.Log
}
