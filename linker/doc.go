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

// Package linker merges relocatable objects into a single placed image.
//
// Objects are folded into a Context one at a time with Fold(). The order of
// folding is significant: a section that appears in more than one object is
// built by appending each fragment in turn. Link() then places every section,
// resolves every symbol to an address and applies the relocations.
//
//	ctx := linker.NewContext(logger.Allow)
//	for _, o := range objects {
//		if err := ctx.Fold(o); err != nil {
//			return err
//		}
//	}
//	img, err := ctx.Link(placements)
//
// Any failure leaves the Context in an undefined state. No partial image is
// ever returned.
package linker
