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

// Package ansi defines ANSI control sequences for use with terminal output.
package ansi

import (
	"fmt"
	"strings"
)

const (
	colBlack   = 0
	colRed     = 1
	colGreen   = 2
	colYellow  = 3
	colBlue    = 4
	colMagenta = 5
	colCyan    = 6
	colWhite   = 7
	colDefault = 9
)

const (
	targetPen         = 3
	targetPaper       = 4
	targetBrightPen   = 9
	targetBrightPaper = 10
)

const (
	attrBold      = 1
	attrUnderline = 4
)

// Pens is the bright pen sequence for each colour name.
var Pens map[string]string

// DimPens is the normal pen sequence for each colour name.
var DimPens map[string]string

// NormalPen resets the pen to the terminal default.
var NormalPen string

var colours = []string{"red", "green", "yellow", "blue", "magenta", "cyan", "white"}

func init() {
	Pens = make(map[string]string)
	DimPens = make(map[string]string)

	// none of the colour names used here can fail
	NormalPen, _ = ColorBuild("", "", "", false, false)
	for _, c := range colours {
		Pens[c], _ = ColorBuild(c, "normal", "", true, false)
		DimPens[c], _ = ColorBuild(c, "normal", "", false, false)
	}
}

func colour(name string) (int, bool) {
	switch strings.ToUpper(name) {
	case "BLACK":
		return colBlack, true
	case "RED":
		return colRed, true
	case "GREEN":
		return colGreen, true
	case "YELLOW":
		return colYellow, true
	case "BLUE":
		return colBlue, true
	case "MAGENTA":
		return colMagenta, true
	case "CYAN":
		return colCyan, true
	case "WHITE":
		return colWhite, true
	case "NORMAL":
		return colDefault, true
	}
	return 0, false
}

// ColorBuild creates the ANSI sequence for the pen, paper and attribute. Empty
// strings leave that part of the sequence out.
func ColorBuild(pen, paper, attribute string, brightPen, brightPaper bool) (string, error) {
	s := strings.Builder{}
	s.Grow(32)
	s.WriteString("\033[")

	if pen != "" {
		c, ok := colour(pen)
		if !ok {
			return "", fmt.Errorf("unknown ANSI pen (%s)", pen)
		}
		penType := targetPen
		if brightPen {
			penType = targetBrightPen
		}
		s.WriteString(fmt.Sprintf("%d%d", penType, c))
	}

	if paper != "" {
		c, ok := colour(paper)
		if !ok {
			return "", fmt.Errorf("unknown ANSI paper (%s)", paper)
		}
		if s.Len() > 2 {
			s.WriteString(";")
		}
		paperType := targetPaper
		if brightPaper {
			paperType = targetBrightPaper
		}
		s.WriteString(fmt.Sprintf("%d%d", paperType, c))
	}

	if attribute != "" {
		var a int
		switch strings.ToUpper(attribute) {
		case "BOLD":
			a = attrBold
		case "UNDERLINE":
			a = attrUnderline
		case "NORMAL":
		default:
			return "", fmt.Errorf("unknown ANSI attribute (%s)", attribute)
		}
		if a != 0 {
			if s.Len() > 2 {
				s.WriteString(";")
			}
			s.WriteString(fmt.Sprintf("%d", a))
		}
	}

	// terminate ANSI sequence
	s.WriteString("m")

	return s.String(), nil
}
