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

package rotate

import (
	"log"
)

// A RotateWriter is a drop-in io.Writer, so wiring it under the standard
// library's log package is a single SetOutput call at startup.
func Example() {
	log.SetOutput(&RotateWriter{
		Filename:         "/var/log/shift/shift.log",
		MaxFileSize:      100, // megabytes
		MaxRotationCount: 10,
		MaxFileAge:       30,   // days
		Compress:         true, // disabled by default
	})
}
