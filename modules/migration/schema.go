/* Copyright © INFINI Ltd. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package migration

import (
	"strings"

	"github.com/buger/jsonparser"
	log "github.com/cihub/seelog"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/util"
)

// storeAssignedSettings are written by the cluster when an index is created
// and are immutable afterwards, replaying any of them in a create request
// gets the whole request rejected.
var storeAssignedSettings = []string{"creation_date", "uuid", "version", "provided_name"}

// SchemaDefinition is a re-creatable index schema: settings already stripped
// of the store-assigned fields, mappings exactly as the source describes them.
type SchemaDefinition struct {
	Settings util.MapStr `json:"settings,omitempty"`
	Mappings util.MapStr `json:"mappings,omitempty"`
}

// ExtractSchema reads the describe document of the source index and derives
// the definition the destination will be created from. The source index is
// never written to.
func ExtractSchema(client elastic.API, source string) (*SchemaDefinition, error) {
	indexes, err := client.GetIndex(source)
	if err != nil {
		msg := err.Error()
		if util.ContainStr(msg, "index_not_found_exception") {
			return nil, errors.NewWithCode(err, errors.SourceNotFound, source)
		}
		if looksLikeParseFailure(msg) {
			return nil, errors.NewWithCode(err, errors.SchemaParseError, source)
		}
		return nil, errors.NewWithCode(err, errors.HostUnreachable, source)
	}

	entry, err := describeEntry(indexes, source)
	if err != nil {
		return nil, errors.NewWithCode(err, errors.SchemaParseError, source)
	}

	def, err := schemaFromEntry(entry)
	if err != nil {
		log.Warnf("describe document of [%v] did not convert cleanly, salvaging: %v", source, err)
		def, err = SalvageSchema(util.MustToJSONBytes(entry))
		if err != nil {
			return nil, errors.NewWithCode(err, errors.SchemaParseError, source)
		}
	}
	return def, nil
}

// describeEntry picks the document of a single-index describe out of the
// keyed response. The key is usually the requested name, but the server
// answers with the resolved name when date math or a write alias is involved.
func describeEntry(indexes *elastic.Indexes, source string) (map[string]interface{}, error) {
	if indexes == nil || len(*indexes) == 0 {
		return nil, errors.Errorf("empty describe response for [%v]", source)
	}
	v, ok := (*indexes)[source]
	if !ok {
		if len(*indexes) != 1 {
			return nil, errors.Errorf("describe response holds %v entries, none named [%v]", len(*indexes), source)
		}
		for _, o := range *indexes {
			v = o
		}
	}
	entry, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("describe entry of [%v] is a %T, not an object", source, v)
	}
	return entry, nil
}

// schemaFromEntry is the strict structural path, both subtrees must be plain
// objects. Settings are mandatory in a describe document, mappings may be
// absent on an empty index.
func schemaFromEntry(entry map[string]interface{}) (*SchemaDefinition, error) {
	def := &SchemaDefinition{}

	v, ok := entry["settings"]
	if !ok {
		return nil, errors.New("describe document has no settings")
	}
	settings, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("settings is a %T, not an object", v)
	}
	def.Settings = cleanSettings(settings)

	if v, ok := entry["mappings"]; ok && v != nil {
		mappings, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("mappings is a %T, not an object", v)
		}
		def.Mappings = util.MapStr(mappings)
	}
	return def, nil
}

// cleanSettings strips the store-assigned keys from the index settings
// namespace and leaves everything else alone, including keys of the same
// name anywhere else in the tree. The input map is not touched.
func cleanSettings(settings map[string]interface{}) util.MapStr {
	out := util.MapStr(settings).Clone()
	for _, key := range storeAssignedSettings {
		out.Delete("index." + key)
	}

	if global.Env().IsDebug {
		changes, err := util.DiffTwoObject(util.MapStr(settings), out)
		if err == nil {
			for _, change := range changes {
				log.Debugf("sanitizer dropped setting [%v]", strings.Join(change.Path, "."))
			}
		}
	}
	return out
}

// SalvageSchema is the degraded-mode extractor. It edits the raw describe
// bytes with path deletes instead of converting the whole tree, and keeps
// whichever subtrees still parse. Best effort, the structural path stays
// primary.
func SalvageSchema(body []byte) (*SchemaDefinition, error) {
	rawSettings, _, _, err := jsonparser.Get(body, "settings")
	if err != nil {
		return nil, errors.Errorf("no usable settings in describe payload: %v", err)
	}
	for _, key := range storeAssignedSettings {
		rawSettings = jsonparser.Delete(rawSettings, "index", key)
	}

	def := &SchemaDefinition{}
	if err := util.FromJSONBytes(rawSettings, &def.Settings); err != nil {
		return nil, errors.Errorf("salvaged settings do not parse: %v", err)
	}

	if rawMappings, _, _, err := jsonparser.Get(body, "mappings"); err == nil {
		if err := util.FromJSONBytes(rawMappings, &def.Mappings); err != nil {
			log.Warnf("mappings could not be salvaged and were dropped: %v", err)
			def.Mappings = nil
		}
	}
	return def, nil
}

// looksLikeParseFailure tells a decode problem apart from a transport one,
// the store client folds both into a plain error.
func looksLikeParseFailure(msg string) bool {
	return util.ContainStr(msg, "invalid character") ||
		util.ContainStr(msg, "unexpected end of JSON") ||
		util.ContainStr(msg, "cannot unmarshal")
}
