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

package elastic

import (
	"fmt"
)

// GlobalSystemElasticsearchID is the registry key of the cluster this process
// runs against, migrations are executed on the instance registered under it.
const GlobalSystemElasticsearchID = "SYSTEM_CLUSTER"

var apis = map[string]API{}
var cfgs = map[string]ElasticsearchConfig{}

func RegisterInstance(elastic string, cfg ElasticsearchConfig, handler API) {
	if apis == nil {
		apis = map[string]API{}
	}
	if cfgs == nil {
		cfgs = map[string]ElasticsearchConfig{}
	}
	apis[elastic] = handler
	cfgs[elastic] = cfg
}

// ElasticsearchConfig contains common settings for elasticsearch
type ElasticsearchConfig struct {
	ID        string `json:"id,omitempty" config:"id"`
	Name      string `json:"name,omitempty" config:"name"`
	Enabled   bool   `json:"enabled,omitempty" config:"enabled"`
	HttpProxy string `config:"http_proxy"`
	Endpoint  string `config:"endpoint"`

	// Version pins the cluster version, leave empty to auto-detect on startup.
	Version string `config:"version"`

	// RequestTimeout bounds each management call, in seconds, default 60.
	// The synchronous copy phase uses its own, longer timeout.
	RequestTimeout int `config:"request_timeout"`

	BasicAuth *struct {
		Username string `config:"username"`
		Password string `config:"password"`
	} `config:"basic_auth"`
}

func GetConfig(k string) ElasticsearchConfig {
	v, ok := cfgs[k]
	if !ok {
		panic(fmt.Sprintf("elasticsearch config %v was not found", k))
	}
	return v
}

func GetClient(k string) API {
	v, ok := apis[k]
	if !ok {
		panic(fmt.Sprintf("elasticsearch client %v was not found", k))
	}
	return v
}
