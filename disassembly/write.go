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

package disassembly

import (
	"fmt"
	"io"
	"strings"

	"github.com/resenje/ss32/curated"
)

// Sentinal error patterns.
const (
	NoSuchSection = "disassembly: no such section (%s)"
)

// WriteAttr controls what is printed by the Write*() functions.
type WriteAttr struct {
	ByteCode bool
	Annotate bool
}

// Write the entire disassembly to io.Writer.
func (dsm *Disassembly) Write(output io.Writer, attr WriteAttr) error {
	for _, s := range dsm.Sections {
		if err := dsm.WriteSection(output, attr, s.Name); err != nil {
			return err
		}
	}
	return nil
}

// WriteSection writes the disassembly of the named section to io.Writer.
func (dsm *Disassembly) WriteSection(output io.Writer, attr WriteAttr, name string) error {
	s := dsm.Section(name)
	if s == nil {
		return curated.Errorf(NoSuchSection, name)
	}

	if _, err := io.WriteString(output, fmt.Sprintf("--- %s @ %08X ---\n", s.Name, s.Address)); err != nil {
		return err
	}

	for _, e := range s.Entries {
		if _, err := io.WriteString(output, s.line(attr, e)); err != nil {
			return err
		}
	}

	return nil
}

// line formats a single entry. the label, if any, is on a line of its own.
func (s *Section) line(attr WriteAttr, e *Entry) string {
	b := strings.Builder{}

	if e.Label != "" {
		b.WriteString(fmt.Sprintf("%s:\n", e.Label))
	}

	b.WriteString(fmt.Sprintf("  %08X", e.Address))

	if attr.ByteCode {
		b.WriteString(fmt.Sprintf("  %-11s", e.Bytecode()))
	}

	ln := fmt.Sprintf("  %-6s %s", e.Operator, e.Operand)
	if attr.Annotate && e.Annotation != "" {
		ln = fmt.Sprintf("%-32s # %s", ln, e.Annotation)
	}
	b.WriteString(strings.TrimRight(ln, " "))
	b.WriteString("\n")

	return b.String()
}
