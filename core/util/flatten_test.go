/*
Copyright Medcl (m AT medcl.net)

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

func TestFlatten(t *testing.T) {
	metrics := map[string]interface{}{
		"migration": map[string]interface{}{
			"run": map[string]interface{}{
				"total":   1,
				"failed":  0,
				"elapsed": 3.5,
			},
		},
	}

	flat := Flatten(metrics, false)
	assert.Equal(t, 1, flat["migration.run.total"])
	assert.Equal(t, 0, flat["migration.run.failed"])
	assert.Equal(t, 3.5, flat["migration.run.elapsed"])
	assert.Equal(t, 3, len(flat))
}

func TestFlattenPrefixedStruct(t *testing.T) {
	js := struct {
		Name     string `json:"name"`
		Age      int
		Addr     string
		Location struct {
			Lat string
			Lon string
		}
	}{Name: "medcl", Addr: "Internet", Age: 8, Location: struct {
		Lat string
		Lon string
	}{Lat: "123", Lon: "123123"}}

	x := FlattenPrefixed(js, "my", false)

	assert.Equal(t, "medcl", x["my.Name"])
	assert.Equal(t, 8, x["my.Age"])
	assert.Equal(t, "Internet", x["my.Addr"])
	assert.Equal(t, "123", x["my.Location.Lat"])
	assert.Equal(t, "123123", x["my.Location.Lon"])
}

func TestFlattenIgnoreZero(t *testing.T) {
	metrics := map[string]interface{}{
		"a": 0,
		"b": "",
		"c": 42,
	}
	flat := Flatten(metrics, true)
	assert.Equal(t, 42, flat["c"])
	_, ok := flat["a"]
	assert.False(t, ok)
	_, ok = flat["b"]
	assert.False(t, ok)
}
