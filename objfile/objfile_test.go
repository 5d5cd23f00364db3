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

package objfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/resenje/ss32/curated"
	"github.com/resenje/ss32/objfile"
	"github.com/resenje/ss32/test"
)

func exampleObject() *objfile.Object {
	o := objfile.NewObject()

	text := o.AddSection("text")
	text.Data = []byte{0x91, 0x1f, 0x00, 0x08, 0x30, 0xf0, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00}
	data := o.AddSection("data")
	data.Data = []byte{0x01, 0x02}

	o.Symbols["text"] = &objfile.Symbol{Name: "text", Type: objfile.TypeSection, Section: "text", Defined: true, Index: 0}
	o.Symbols["data"] = &objfile.Symbol{Name: "data", Type: objfile.TypeSection, Section: "data", Defined: true, Index: 2}
	o.Symbols["main"] = &objfile.Symbol{Name: "main", Type: objfile.TypeObject, Binding: objfile.Global, Section: "text", Defined: true, Index: 1}
	o.Symbols["printf"] = &objfile.Symbol{Name: "printf", Binding: objfile.Global, Section: objfile.Undefined}

	o.Relocations["text"] = []objfile.Relocation{
		{Offset: 8, Symbol: "printf", Kind: objfile.Absolute32, Addend: 0},
	}
	o.Relocations["data"] = []objfile.Relocation{
		{Offset: 0, Symbol: "text", Kind: objfile.PCRelative32, Addend: -2},
	}

	return o
}

const exampleText = `#.symtab
Num   Value     Size  Type   Bind  Sctn                Name
0     00000000     0  SCTN   LOC   text                text
1     00000000     0  SCTN   LOC   data                data
2     00000000     0  OBJ    GLOB  text                main
3     00000000     0  NOTYP  GLOB  UND                 printf
#.rela.text
Offset    Type          Symbol      Addend
00000008  R_X86_64_32   printf           0
#.rela.data
Offset    Type          Symbol      Addend
00000000  R_X86_64_PC32 text            -2
#text
91 1F 00 08   30 F0 00 04
00 00 00 00
#data
01 02
`

func TestWrite(t *testing.T) {
	w := &test.CompareWriter{}
	test.DemandSuccess(t, objfile.Write(w, exampleObject()))
	test.ExpectEquality(t, w.String(), exampleText)
}

func TestRead(t *testing.T) {
	o, err := objfile.Read(strings.NewReader(exampleText))
	test.DemandSuccess(t, err)

	want := exampleObject()

	test.DemandEquality(t, len(o.Symbols), len(want.Symbols))
	for name, sym := range want.Symbols {
		got, ok := o.Symbols[name]
		test.DemandSuccess(t, ok, name)
		test.ExpectEquality(t, got.Type, sym.Type, name)
		test.ExpectEquality(t, got.Binding, sym.Binding, name)
		test.ExpectEquality(t, got.Section, sym.Section, name)
		test.ExpectEquality(t, got.Defined, sym.Defined, name)
	}

	test.DemandEquality(t, len(o.Sections), 2)
	test.ExpectEquality(t, o.Sections[0].Name, "text")
	test.ExpectSuccess(t, bytes.Equal(o.Sections[0].Data, want.Sections[0].Data), spew.Sdump(o.Sections[0]))
	test.ExpectSuccess(t, bytes.Equal(o.Sections[1].Data, want.Sections[1].Data), spew.Sdump(o.Sections[1]))

	test.DemandEquality(t, len(o.Relocations["data"]), 1)
	test.ExpectEquality(t, o.Relocations["data"][0], want.Relocations["data"][0])
	test.ExpectEquality(t, o.Relocations["text"][0], want.Relocations["text"][0])

	// reading and writing again produces identical text
	w := &test.CompareWriter{}
	test.DemandSuccess(t, objfile.Write(w, o))
	test.ExpectEquality(t, w.String(), exampleText)
}

func TestReadWithoutColumnHeaders(t *testing.T) {
	var lines []string
	for _, ln := range strings.Split(exampleText, "\n") {
		if strings.HasPrefix(ln, "Offset") || strings.HasPrefix(ln, "Num") {
			continue // for loop
		}
		lines = append(lines, ln)
	}

	o, err := objfile.Read(strings.NewReader(strings.Join(lines, "\n")))
	test.DemandSuccess(t, err)

	want := exampleObject()
	test.ExpectEquality(t, len(o.Symbols), len(want.Symbols))
	for _, sec := range []string{"text", "data"} {
		test.DemandEquality(t, len(o.Relocations[sec]), len(want.Relocations[sec]), sec)
		test.ExpectEquality(t, o.Relocations[sec][0], want.Relocations[sec][0], sec)
	}
}

func TestReadLongNames(t *testing.T) {
	o := objfile.NewObject()
	name := "a_section_name_longer_than_its_column"
	o.AddSection(name).Data = []byte{0xaa}
	o.Symbols[name] = &objfile.Symbol{Name: name, Type: objfile.TypeSection, Section: name, Defined: true}
	o.Symbols["a_symbol_longer_than_twelve"] = &objfile.Symbol{Name: "a_symbol_longer_than_twelve", Binding: objfile.Global, Section: objfile.Undefined}
	o.Relocations[name] = []objfile.Relocation{{Offset: 0, Symbol: "a_symbol_longer_than_twelve", Addend: -123456}}

	w := &bytes.Buffer{}
	test.DemandSuccess(t, objfile.Write(w, o))

	r, err := objfile.Read(w)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.Symbols[name].Section, name)
	test.DemandEquality(t, len(r.Relocations[name]), 1)
	test.ExpectEquality(t, r.Relocations[name][0].Addend, -123456)
	test.ExpectEquality(t, r.Relocations[name][0].Symbol, "a_symbol_longer_than_twelve")
}

func TestReadErrors(t *testing.T) {
	_, err := objfile.Read(strings.NewReader("not an object\n"))
	test.ExpectSuccess(t, curated.Is(err, objfile.MalformedObject))

	_, err = objfile.Read(strings.NewReader("#.symtab\n0 XYZ 0 SCTN LOC text text\n"))
	test.ExpectSuccess(t, curated.Is(err, objfile.MalformedObject))

	_, err = objfile.Read(strings.NewReader("#.symtab\n0 00000000 0 WIBBLE LOC text text\n"))
	test.ExpectSuccess(t, curated.Is(err, objfile.MalformedObject))

	_, err = objfile.Read(strings.NewReader("#.symtab\n#text\n01 0G\n"))
	test.ExpectSuccess(t, curated.Is(err, objfile.MalformedObject))
}

func TestSortedSymbols(t *testing.T) {
	s := objfile.Symbols{
		"zed":   {Name: "zed", Section: objfile.Undefined},
		"abc":   {Name: "abc", Section: objfile.Undefined},
		"late":  {Name: "late", Defined: true, Index: 5, Section: "text"},
		"early": {Name: "early", Defined: true, Index: 2, Section: "text"},
		"text":  {Name: "text", Type: objfile.TypeSection, Defined: true, Index: 3, Section: "text"},
	}

	var names []string
	for _, sym := range s.Sorted() {
		names = append(names, sym.Name)
	}
	test.ExpectEquality(t, strings.Join(names, " "), "text early late abc zed")
}

func TestImage(t *testing.T) {
	o := objfile.NewObject()
	o.Symbols["text"] = &objfile.Symbol{Name: "text", Type: objfile.TypeSection, Section: "text", Defined: true, Value: 0x40000000}
	text := o.AddSection("text")
	text.Address = 0x40000000
	text.Data = []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	w := &test.CompareWriter{}
	test.DemandSuccess(t, objfile.WriteImage(w, o))

	expected := "#.symtab\n" +
		"Num   Value     Size  Type   Bind  Sctn                Name\n" +
		"0     40000000     0  SCTN   LOC   text                text\n" +
		"40000000: 01 02 03 04   05 06 07 08\n" +
		"40000008: 09 0A 00 00   00 00 00 00\n"
	test.ExpectEquality(t, w.String(), expected)

	mem, err := objfile.ReadImage(strings.NewReader(w.String()))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(mem), 16)
	test.ExpectEquality(t, mem[0x40000009], 0x0a)
	test.ExpectEquality(t, mem.Word(0x40000000), 0x04030201)

	_, err = objfile.ReadImage(strings.NewReader("00000000: 01 ZZ\n"))
	test.ExpectSuccess(t, curated.Is(err, objfile.MalformedImage))
}

func TestCheckSectionName(t *testing.T) {
	test.ExpectSuccess(t, objfile.CheckSectionName("text"))
	test.ExpectSuccess(t, objfile.CheckSectionName(".data"))
	test.ExpectSuccess(t, curated.Is(objfile.CheckSectionName("UND"), objfile.ReservedSectionName))
	test.ExpectSuccess(t, curated.Is(objfile.CheckSectionName("ABS"), objfile.ReservedSectionName))
	test.ExpectSuccess(t, curated.Is(objfile.CheckSectionName(".symtab"), objfile.ReservedSectionName))
	test.ExpectSuccess(t, curated.Is(objfile.CheckSectionName(".rela.text"), objfile.ReservedSectionName))
}
