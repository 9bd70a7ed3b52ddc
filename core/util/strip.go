// Copyright (C) INFINI Labs & INFINI LIMITED.
//
// The INFINI Framework is offered under the GNU Affero General Public License v3.0
// and as commercial software.
//
// For commercial licensing, contact us at:
//   - Website: infinilabs.com
//   - Email: hello@infini.ltd
//
// Open Source licensed under AGPL V3:
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package util

import (
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

//kudos to:
//https://rosettacode.org/wiki/Strip_control_codes_and_extended_characters_from_a_string

// StripCtlFromUTF8 drops control characters from a string but keeps tab,
// newline, carriage return and every printable rune, multi byte ones
// included. Error messages coming back from a cluster pass through here
// before they are printed.
func StripCtlFromUTF8(str string) string {
	return strings.Map(func(r rune) rune {
		if r == 9 || r == 10 || r == 13 {
			return r
		}

		if r >= 32 && r != 127 {
			return r
		}
		return -1
	}, str)
}

// StripCtlAndExtFromUnicode folds the input to plain ASCII: the text is
// decomposed with NFKD and everything outside the printable ASCII range,
// combining marks included, is removed. See
// http://godoc.org/golang.org/x/text/unicode/norm for the background.
func StripCtlAndExtFromUnicode(str string) string {
	isOk := func(r rune) bool {
		if r == 9 || r == 10 || r == 13 {
			return true
		}

		return r < 32 || r >= 127
	}
	// The isOk filter is such that there is no need to chain to norm.NFC
	t := transform.Chain(norm.NFKD, transform.RemoveFunc(isOk))
	str, _, _ = transform.String(t, str)
	return str
}
