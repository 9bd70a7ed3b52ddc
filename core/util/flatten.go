// Copyright © 2016 Charles Phillips <charles@doublerebel.com>.
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.
// https://github.com/doublerebel/bellows/blob/master/LICENSE

package util

import (
	"reflect"
)

// Flatten folds nested maps and structs into a one level map with dotted
// keys, the shape the prometheus exposition and the statsd key space expect.
// With ignoreNil set, zero values are left out.
func Flatten(value interface{}, ignoreNil bool) map[string]interface{} {
	return FlattenPrefixed(value, "", ignoreNil)
}

func FlattenPrefixed(value interface{}, prefix string, ignoreNil bool) map[string]interface{} {
	m := make(map[string]interface{})
	FlattenPrefixedToResult(value, prefix, m, ignoreNil)
	return m
}

func FlattenPrefixedToResult(value interface{}, prefix string, m map[string]interface{}, ignoreNil bool) {
	base := ""
	if prefix != "" {
		base = prefix + "."
	}

	original := reflect.ValueOf(value)
	kind := original.Kind()
	if kind == reflect.Ptr || kind == reflect.Interface {
		original = reflect.Indirect(original)
		kind = original.Kind()
	}
	t := original.Type()

	switch kind {
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			break
		}
		for _, childKey := range original.MapKeys() {
			childValue := original.MapIndex(childKey)

			if childValue.IsNil() && ignoreNil {
				break
			}

			FlattenPrefixedToResult(childValue.Interface(), base+childKey.String(), m, ignoreNil)
		}
	case reflect.Struct:
		for i := 0; i < original.NumField(); i += 1 {
			childValue := original.Field(i)
			childKey := t.Field(i).Name

			if childValue.Type().Kind() == reflect.Ptr {
				break
			}

			FlattenPrefixedToResult(childValue.Interface(), base+childKey, m, ignoreNil)
		}
	default:

		if ignoreNil && kind == reflect.String && original.String() == "" {
			break
		}

		if ignoreNil && kind == reflect.Bool && original.Bool() == false {
			break
		}

		if ignoreNil && (kind == reflect.Int ||
			kind == reflect.Int8 ||
			kind == reflect.Int16 ||
			kind == reflect.Int32 ||
			kind == reflect.Int64 ||
			kind == reflect.Uint ||
			kind == reflect.Uint8 ||
			kind == reflect.Uint16 ||
			kind == reflect.Uint32 ||
			kind == reflect.Uint64) &&
			original.Int() == 0 {
			break
		}

		if ignoreNil && (kind == reflect.Float64 || kind == reflect.Float32) && original.Float() == 0 {
			break
		}

		if prefix != "" {
			m[prefix] = value
		}
	}
}
