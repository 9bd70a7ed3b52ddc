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
	"fmt"
	"unsafe"

	"github.com/segmentio/encoding/json"
)

func MustToJSONBytes(v interface{}) []byte {
	b, err := ToJSONBytes(v)
	if err != nil {
		panic(err)
	}
	return b
}

func ToJSONBytes(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func FromJSONBytes(b []byte, v interface{}) (err error) {
	if b == nil || len(b) == 0 {
		return
	}
	err = json.Unmarshal(b, v)
	return err
}

// UnsafeStringToBytes returns the string as a byte slice without copying,
// the result must not be modified
func UnsafeStringToBytes(s string) []byte {
	return *(*[]byte)(unsafe.Pointer(&struct {
		string
		Cap int
	}{s, len(s)}))
}

// UnsafeBytesToString is the inverse of UnsafeStringToBytes, the input must
// not be modified afterwards
func UnsafeBytesToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// ByteSize turns a byte count into a human friendly string, eg. 10.5M
func ByteSize(bytes uint64) string {
	const (
		kilobyte = 1024
		megabyte = 1024 * kilobyte
		gigabyte = 1024 * megabyte
		terabyte = 1024 * gigabyte
	)
	unit := ""
	value := float32(bytes)

	switch {
	case bytes >= terabyte:
		unit = "T"
		value = value / terabyte
	case bytes >= gigabyte:
		unit = "G"
		value = value / gigabyte
	case bytes >= megabyte:
		unit = "M"
		value = value / megabyte
	case bytes >= kilobyte:
		unit = "K"
		value = value / kilobyte
	case bytes >= 1:
		unit = "B"
	case bytes == 0:
		return "0"
	}

	stringValue := fmt.Sprintf("%.1f", value)
	return fmt.Sprintf("%s%s", stringValue, unit)
}
