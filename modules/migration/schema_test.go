/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/util"
)

func TestCleanSettingsStripsStoreAssignedKeys(t *testing.T) {
	settings := map[string]interface{}{
		"index": map[string]interface{}{
			"creation_date":      "1693456789000",
			"uuid":               "e5kMOaMLRiqvoqq9pWnYWg",
			"version":            map[string]interface{}{"created": "7100299"},
			"provided_name":      "logs_v1",
			"number_of_shards":   "3",
			"number_of_replicas": "1",
			"refresh_interval":   "5s",
		},
	}

	out := cleanSettings(settings)

	index := out["index"].(util.MapStr)
	for _, key := range storeAssignedSettings {
		_, found := index[key]
		assert.False(t, found, "expected [%v] to be stripped", key)
	}
	assert.Equal(t, "3", index["number_of_shards"])
	assert.Equal(t, "1", index["number_of_replicas"])
	assert.Equal(t, "5s", index["refresh_interval"])

	// the input was not touched
	_, found := settings["index"].(map[string]interface{})["creation_date"]
	assert.True(t, found)
}

func TestCleanSettingsLeavesLookalikesAlone(t *testing.T) {
	settings := map[string]interface{}{
		// same name outside the index namespace, not store assigned
		"creation_date": "keep-me",
		"index": map[string]interface{}{
			"uuid": "strip-me",
			"analysis": map[string]interface{}{
				"filter": map[string]interface{}{
					// nested deeper than index.<key>, must survive
					"uuid": map[string]interface{}{"type": "unique"},
				},
			},
		},
	}

	out := cleanSettings(settings)

	assert.Equal(t, "keep-me", out["creation_date"])
	v, err := out.GetValue("index.analysis.filter.uuid")
	assert.NoError(t, err)
	assert.NotNil(t, v)
	_, found := out["index"].(util.MapStr)["uuid"]
	assert.False(t, found)
}

func TestSchemaFromEntry(t *testing.T) {
	entry := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{
				"uuid":             "x",
				"number_of_shards": "1",
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"message": map[string]interface{}{"type": "text"},
			},
		},
	}

	def, err := schemaFromEntry(entry)
	assert.NoError(t, err)

	_, err = def.Settings.GetValue("index.uuid")
	assert.Error(t, err)
	v, err := def.Settings.GetValue("index.number_of_shards")
	assert.NoError(t, err)
	assert.Equal(t, "1", v)
	_, ok := def.Mappings["properties"]
	assert.True(t, ok)
}

func TestSchemaFromEntryNeedsSettings(t *testing.T) {
	_, err := schemaFromEntry(map[string]interface{}{
		"mappings": map[string]interface{}{},
	})
	assert.Error(t, err)
}

func TestSchemaFromEntryRejectsMalformedSubtrees(t *testing.T) {
	_, err := schemaFromEntry(map[string]interface{}{
		"settings": []interface{}{"not", "an", "object"},
	})
	assert.Error(t, err)

	_, err = schemaFromEntry(map[string]interface{}{
		"settings": map[string]interface{}{},
		"mappings": "nope",
	})
	assert.Error(t, err)
}

func TestDescribeEntryPicksResolvedName(t *testing.T) {
	idx := elastic.Indexes{
		"logs-2023.08.23": map[string]interface{}{
			"settings": map[string]interface{}{},
		},
	}
	entry, err := describeEntry(&idx, "logs-today")
	assert.NoError(t, err)
	assert.NotNil(t, entry)
}

func TestDescribeEntryRefusesAmbiguousResponse(t *testing.T) {
	idx := elastic.Indexes{
		"a": map[string]interface{}{},
		"b": map[string]interface{}{},
	}
	_, err := describeEntry(&idx, "c")
	assert.Error(t, err)

	empty := elastic.Indexes{}
	_, err = describeEntry(&empty, "c")
	assert.Error(t, err)
}

func TestSalvageSchema(t *testing.T) {
	body := []byte(`{"settings":{"index":{"creation_date":"1693456789000","uuid":"abc","version":{"created":"7100299"},"provided_name":"logs_v1","number_of_shards":"2"}},"mappings":{"properties":{"msg":{"type":"text"}}}}`)

	def, err := SalvageSchema(body)
	assert.NoError(t, err)

	for _, key := range storeAssignedSettings {
		_, err := def.Settings.GetValue("index." + key)
		assert.Error(t, err, "expected [%v] to be stripped", key)
	}
	v, err := def.Settings.GetValue("index.number_of_shards")
	assert.NoError(t, err)
	assert.Equal(t, "2", v)
	assert.NotNil(t, def.Mappings)
}

func TestSalvageSchemaDropsBrokenMappings(t *testing.T) {
	body := []byte(`{"settings":{"index":{"number_of_shards":"1"}},"mappings":42}`)

	def, err := SalvageSchema(body)
	assert.NoError(t, err)
	assert.Nil(t, def.Mappings)
	v, err := def.Settings.GetValue("index.number_of_shards")
	assert.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestSalvageSchemaNeedsSettings(t *testing.T) {
	_, err := SalvageSchema([]byte(`{"mappings":{}}`))
	assert.Error(t, err)
}

// whichever path extracts the schema, the create request sent to the cluster
// has to come out byte-for-byte equivalent
func TestStrictAndSalvagePathsAgree(t *testing.T) {
	entry := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{
				"creation_date":    "1693456789000",
				"uuid":             "abc",
				"provided_name":    "logs_v1",
				"version":          map[string]interface{}{"created": "7100299"},
				"number_of_shards": "2",
				"analysis": map[string]interface{}{
					"analyzer": map[string]interface{}{"raw": map[string]interface{}{"type": "keyword"}},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{"msg": map[string]interface{}{"type": "text"}},
		},
	}

	strict, err := schemaFromEntry(entry)
	assert.NoError(t, err)
	salvaged, err := SalvageSchema(util.MustToJSONBytes(entry))
	assert.NoError(t, err)

	// normalize through json, the strict path holds nested MapStr values
	// while the salvage path holds plain maps
	var a, b util.MapStr
	assert.NoError(t, util.FromJSONBytes(util.MustToJSONBytes(strict), &a))
	assert.NoError(t, util.FromJSONBytes(util.MustToJSONBytes(salvaged), &b))
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("extraction paths disagree (-strict +salvaged):\n%v", diff)
	}
}
