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

/*
Copyright 2016 Medcl (m AT medcl.net)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

   http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimSpaces(t *testing.T) {
	str := " left"
	assert.Equal(t, "left", TrimSpaces(str))

	str = "right "
	assert.Equal(t, "right", TrimSpaces(str))

	str = " side "
	assert.Equal(t, "side", TrimSpaces(str))
}

func TestToInt64(t *testing.T) {
	v, err := ToInt64("6393600409")
	assert.NoError(t, err)
	assert.Equal(t, int64(6393600409), v)

	_, err = ToInt64("not-a-number")
	assert.Error(t, err)
}

func TestToInt(t *testing.T) {
	v, err := ToInt("42")
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	// fractional counts are truncated, not rejected
	v, err = ToInt("42.7")
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestContainsString(t *testing.T) {
	a := "{\"error\":true,\"message\":\"index_not_found_exception\"}"
	b := "index_not_found_exception"
	assert.Equal(t, true, ContainStr(a, b))
	assert.Equal(t, false, ContainStr(a, "resource_already_exists_exception"))
}

func TestContainsAnyInArray(t *testing.T) {
	body := "resource_already_exists_exception: index [logs_v2]"
	assert.True(t, ContainsAnyInArray(body, []string{"index_not_found_exception", "resource_already_exists_exception"}))
	assert.False(t, ContainsAnyInArray(body, []string{"illegal_argument_exception"}))
}

func TestInt64ToString(t *testing.T) {
	i := 6393600409
	assert.Equal(t, "6393600409", Int64ToString(int64(i)))

	i = 63
	assert.Equal(t, "63", Int64ToString(int64(i)))
}

func TestStringDefault(t *testing.T) {
	assert.Equal(t, "logs_v2", StringDefault("logs_v2", "fallback"))
	assert.Equal(t, "fallback", StringDefault("", "fallback"))
}

func TestSubStringWithSuffix(t *testing.T) {
	assert.Equal(t, "abc...", SubStringWithSuffix("abcdefg", 3, "..."))
	assert.Equal(t, "abc", SubStringWithSuffix("abc", 10, "..."))
}

func TestStringInArray(t *testing.T) {
	phases := []string{"init", "host_checked", "source_verified"}
	assert.True(t, StringInArray(phases, "host_checked"))
	assert.False(t, StringInArray(phases, "done"))
}

func TestVersionCompare(t *testing.T) {
	c, err := VersionCompare("7.10.2", "8.0.0")
	assert.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = VersionCompare("8.1.0", "8.1.0")
	assert.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = VersionCompare("8.2.0", "7.17.9")
	assert.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = VersionCompare("not.a.version.at.all.x", "1.0")
	assert.Error(t, err)
}

func TestToJsonRoundTrip(t *testing.T) {
	in := map[string]interface{}{"alias": "logs", "index": "logs_v2"}
	s := ToJson(in, false)

	out := map[string]interface{}{}
	err := FromJson(s, &out)
	assert.NoError(t, err)
	assert.Equal(t, "logs", out["alias"])
	assert.Equal(t, "logs_v2", out["index"])

	assert.Equal(t, "", ToJson(nil, false))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "logs", ToString("logs"))
	assert.Equal(t, "42", ToString(42))
}
