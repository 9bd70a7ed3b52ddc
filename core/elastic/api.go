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
	"time"
)

// API is the subset of the cluster management surface the migration flow
// drives. Implementations live under modules/elastic/adapter, one per major
// version, selected when the instance is registered.
//
// Transport failures come back as plain errors, a non-2xx response comes back
// as an error carrying the status code and the raw body text, callers decide
// what either means for them.
type API interface {
	MappingAPI

	GetMajorVersion() int

	ClusterVersion() string

	GetClusterInfo() (*ClusterInformation, error)

	ClusterHealth() (*ClusterHealth, error)

	CreateIndex(name string, settings map[string]interface{}) error

	// GetIndex fetches the describe document of an index, the response body
	// keyed by concrete index name, carrying settings, mappings and aliases.
	GetIndex(indexName string) (*Indexes, error)

	GetIndexSettings(indexNames string) (*Indexes, error)
	UpdateIndexSettings(indexName string, settings map[string]interface{}) error

	IndexExists(indexName string) (bool, error)
	DeleteIndex(name string) error

	Refresh(name string) (err error)

	Count(indexName string) (*CountResponse, error)

	// GetAlias resolves the current membership of one alias, a missing alias
	// is a valid empty membership, not an error.
	GetAlias(aliasName string) (*map[string]AliasInfo, error)

	// Alias posts a prepared actions body to the alias endpoint, the whole
	// body is applied by the server as a single atomic change.
	Alias(body []byte) error

	// Reindex submits a server-side copy and returns without waiting, the
	// response carries the task handle to poll.
	Reindex(body []byte) (*ReindexResponse, error)

	// ReindexAndWait runs a server-side copy as one blocking request, the
	// response carries the per-document outcome counters.
	ReindexAndWait(body []byte, timeout time.Duration) (*ReindexResponse, error)

	GetTask(taskID string) (*TaskResponse, error)
}

type MappingAPI interface {
	GetMapping(indexNames string) (*Indexes, error)
}

type AliasInfo struct {
	Alias      string   `json:"alias,omitempty"`
	Index      []string `json:"index,omitempty"`
	WriteIndex string   `json:"write_index,omitempty"`
}
