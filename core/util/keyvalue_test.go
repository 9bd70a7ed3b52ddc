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

/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package util

import (
	"testing"

	"github.com/magiconair/properties/assert"
)

func TestSortKeyValueArray(t *testing.T) {

	kv := []KeyValue{}
	kv = append(kv, KeyValue{"a", 1})
	kv = append(kv, KeyValue{"b", 2})
	kv = append(kv, KeyValue{"c", 3})

	kv = SortKeyValueArray(kv, false)
	assert.Equal(t, kv[0].Key, "c")

	kv = SortKeyValueArray(kv, true)
	assert.Equal(t, kv[0].Key, "a")
}

func TestSortMapStrIntToKV(t *testing.T) {
	sorted := SortMapStrIntToKV(map[string]int{"idle": 2, "busy": 9, "dead": 1})
	assert.Equal(t, sorted[0].Key, "busy")
	assert.Equal(t, sorted[0].Value, int64(9))
	assert.Equal(t, sorted[2].Key, "dead")
	assert.Equal(t, len(sorted), 3)
}
