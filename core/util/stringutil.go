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

/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package util

import (
	"fmt"
	"net/url"
	"strconv"
	. "strings"
	"sync"

	"github.com/hashicorp/go-version"
	"github.com/segmentio/encoding/json"
)

func ContainStr(s, substr string) bool {
	return Index(s, substr) != -1
}

func StringDefault(val, defaultV string) string {
	if val != "" {
		return val
	}
	return defaultV
}

func ContainsAnyInArray(s string, v []string) bool {
	for _, k := range v {
		if ContainStr(s, k) {
			return true
		}
	}
	return false
}

func PrefixStr(s, substr string) bool {
	return HasPrefix(s, substr)
}

func SuffixStr(s, substr string) bool {
	return HasSuffix(s, substr)
}

func SubStringWithSuffix(str string, length int, suffix string) string {
	if len(str) > length {
		str = SubString(str, 0, length) + suffix
	}
	return str
}

func SubString(str string, begin, length int) (substr string) {
	lth := len(str)

	if begin < 0 {
		begin = 0
	}
	if begin >= lth {
		begin = lth
	}
	end := begin + length
	if end > lth {
		end = lth
	}

	return str[begin:end]
}

var locker sync.Mutex

func ToJson(in interface{}, indent bool) string {
	if in == nil {
		return ""
	}

	locker.Lock()
	defer locker.Unlock()

	var b []byte
	if indent {
		b, _ = json.MarshalIndent(in, " ", " ")
	} else {
		b, _ = json.Marshal(in)
	}
	return string(b)
}

func FromJson(str string, to interface{}) error {
	return json.Unmarshal([]byte(str), to)
}

func MustToJSON(in interface{}) string {
	return string(MustToJSONBytes(in))
}

func ToString(obj interface{}) string {
	if obj == nil {
		return ""
	}
	str, ok := obj.(string)
	if ok {
		return str
	}
	return fmt.Sprintf("%v", obj)
}

func Int64ToString(num int64) string {
	return strconv.FormatInt(num, 10)
}

func IntToString(num int) string {
	return strconv.Itoa(num)
}

func TrimSpaces(str string) string {
	return TrimSpace(str)
}

func ToInt64(str string) (int64, error) {
	return strconv.ParseInt(str, 10, 64)
}

func ToInt(str string) (int, error) {
	if IndexAny(str, ".") > 0 {
		nonFractionalPart := Split(str, ".")
		return strconv.Atoi(nonFractionalPart[0])
	} else {
		return strconv.Atoi(str)
	}

}

func UrlEncode(str string) string {
	return url.QueryEscape(str)
}

func VersionCompare(v1, v2 string) (int, error) {
	version1, err := version.NewVersion(v1)
	if err != nil {
		return -2, err
	}
	version2, err := version.NewVersion(v2)
	if err != nil {
		return -2, err
	}
	return version1.Compare(version2), nil
}

func StringInArray(s []string, element string) bool {
	for _, v := range s {
		if v == element {
			return true
		}
	}
	return false
}
