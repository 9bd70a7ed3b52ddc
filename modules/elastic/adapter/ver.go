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
	"github.com/segmentio/encoding/json"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/util"
)

// ClusterVersion hits the cluster root endpoint and reports name, version
// number and distribution. A transport failure here means the host is not
// reachable at all.
func ClusterVersion(cfg *elastic.ElasticsearchConfig) (*elastic.ClusterInformation, error) {

	req := util.NewGetRequest(cfg.Endpoint, nil)
	if cfg.BasicAuth != nil {
		req.SetBasicAuth(cfg.BasicAuth.Username, cfg.BasicAuth.Password)
	}
	if cfg.HttpProxy != "" {
		req.SetProxy(cfg.HttpProxy)
	}

	res, err := util.ExecuteRequestWithCatchFlag(util.NewHTTPClient(requestTimeout(cfg)), req, true)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != 200 {
		return nil, errors.New(string(res.Body))
	}

	version := elastic.ClusterInformation{}
	err = json.Unmarshal(res.Body, &version)
	if err != nil {
		return nil, err
	}
	if version.Version.Distribution == "" {
		version.Version.Distribution = elastic.Elasticsearch
	}
	return &version, nil
}
