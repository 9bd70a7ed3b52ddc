/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package util

import (
	"sort"
)

type KeyValue struct {
	Key   string
	Value int64
}

// SortMapStrIntToKV turns a counter map into a list sorted by count,
// biggest first. Map iteration order is random, rendering code wants the
// hot entries on top.
func SortMapStrIntToKV(data map[string]int) []KeyValue {
	var keyValuePairs []KeyValue
	for k, v := range data {
		keyValuePairs = append(keyValuePairs, KeyValue{k, int64(v)})
	}
	return SortKeyValueArray(keyValuePairs, false)
}

// SortKeyValueArray sorts by value descending, reverse flips the order.
func SortKeyValueArray(keyValuePairs []KeyValue, reverse bool) []KeyValue {
	sort.Slice(keyValuePairs, func(i, j int) bool {
		if reverse {
			return keyValuePairs[i].Value < keyValuePairs[j].Value
		}
		return keyValuePairs[i].Value > keyValuePairs[j].Value
	})
	return keyValuePairs
}
