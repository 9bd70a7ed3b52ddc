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

package adapter

import (
	"bytes"
	"fmt"
	"net/http"

	log "github.com/cihub/seelog"
	"github.com/segmentio/encoding/json"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/util"
)

type ESAPIV7 struct {
	ESAPIV6
}

const TypeName7 = "_doc"

// CreateIndex handles the typed-mapping leftover on 7.x. An index created on
// 6.x and carried through an upgrade still describes its mappings under a
// custom document type, recreating that shape needs include_type_name on the
// request or the server rejects the body.
func (c *ESAPIV7) CreateIndex(indexName string, settings map[string]interface{}) (err error) {
	body := bytes.Buffer{}
	if len(settings) > 0 {
		enc := json.NewEncoder(&body)
		enc.Encode(settings)
	}

	var docType string

	if mappings, ok := settings["mappings"]; ok {
		if mappings, ok := mappings.(map[string]interface{}); ok && len(mappings) == 1 {
			for key := range mappings {
				if key != "properties" {
					docType = key
				}
			}
		}
	}

	if global.Env().IsDebug {
		log.Trace("start create index: ", indexName, ",", settings, ",", string(body.Bytes()))
	}
	indexName = util.UrlEncode(indexName)

	url := fmt.Sprintf("%s/%s", c.GetEndpoint(), indexName)
	if docType != "" {
		url = fmt.Sprintf("%s/%s?include_type_name=true", c.GetEndpoint(), indexName)
	}

	result, err := c.Request(util.Verb_PUT, url, body.Bytes())

	if err != nil {
		return err
	}

	if result.StatusCode != http.StatusOK {
		return fmt.Errorf("code:%v,response:%v", result.StatusCode, string(result.Body))
	}

	return nil
}
