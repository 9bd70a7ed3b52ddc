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
	"strings"
	"sync"
	"time"

	log "github.com/cihub/seelog"
	"github.com/segmentio/encoding/json"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/util"
)

// ESAPIV0 is the version-agnostic base adapter, it speaks the common
// management surface shared by every release this tool supports. Version
// specific quirks are layered on top through the ESAPIV5/V6/V7/V8 chain.
type ESAPIV0 struct {
	Config       elastic.ElasticsearchConfig
	Version      string
	majorVersion int

	client     *http.Client
	clientOnce sync.Once
}

const defaultRequestTimeoutInSeconds = 60

// requestTimeout is the per-call bound of one cluster config, the copy phase
// uses its own, longer timeout on top of this.
func requestTimeout(cfg *elastic.ElasticsearchConfig) time.Duration {
	seconds := cfg.RequestTimeout
	if seconds <= 0 {
		seconds = defaultRequestTimeoutInSeconds
	}
	return time.Duration(seconds) * time.Second
}

// httpClient is the client every management call of this instance rides,
// built once from the configured request_timeout.
func (c *ESAPIV0) httpClient() *http.Client {
	c.clientOnce.Do(func() {
		c.client = util.NewHTTPClient(requestTimeout(&c.Config))
	})
	return c.client
}

func (c *ESAPIV0) GetEndpoint() string {
	return c.Config.Endpoint
}

func (c *ESAPIV0) GetVersion() string {
	if c.Version == "" {
		info, err := ClusterVersion(&c.Config)
		if err != nil {
			log.Debugf("failed to detect the version of elasticsearch [%v]: %v", c.Config.Name, err)
			return c.Version
		}
		c.Version = info.Version.Number
	}
	return c.Version
}

func (c *ESAPIV0) GetMajorVersion() int {
	if c.majorVersion > 0 {
		return c.majorVersion
	}

	ver := c.GetVersion()

	if ver != "" {
		vs := strings.Split(ver, ".")
		n, err := util.ToInt(vs[0])
		if err != nil {
			panic(err)
		}
		c.majorVersion = n
		return n
	}

	log.Debugf("failed to get the major version of elasticsearch [%v], fallback to v0", c.Config.Name)
	return 0
}

func (c *ESAPIV0) ClusterVersion() string {
	return c.GetVersion()
}

func (c *ESAPIV0) newRequest(method, url string, body []byte) *util.Request {

	var req *util.Request

	switch method {
	case util.Verb_GET:
		req = util.NewGetRequest(url, body)
		break
	case util.Verb_PUT:
		req = util.NewPutRequest(url, body)
		break
	case util.Verb_POST:
		req = util.NewPostRequest(url, body)
		break
	case util.Verb_DELETE:
		req = util.NewDeleteRequest(url, body)
		break
	}

	req.SetContentType(util.ContentTypeJson)

	if c.Config.BasicAuth != nil {
		req.SetBasicAuth(c.Config.BasicAuth.Username, c.Config.BasicAuth.Password)
	}

	if c.Config.HttpProxy != "" {
		req.SetProxy(c.Config.HttpProxy)
	}

	return req
}

// Request runs one management call against the cluster. A transport failure
// comes back as an error, a non-2xx response comes back as a result, the
// caller decides what the status means for it. Nothing is retried here.
func (c *ESAPIV0) Request(method, url string, body []byte) (result *util.Result, err error) {

	if global.Env().IsDebug {
		log.Trace(method, ",", url, ",", util.SubString(string(body), 0, 3000))
	}

	req := c.newRequest(method, url, body)

	return util.ExecuteRequestWithCatchFlag(c.httpClient(), req, true)
}

func (c *ESAPIV0) GetClusterInfo() (*elastic.ClusterInformation, error) {
	return ClusterVersion(&c.Config)
}

func (c *ESAPIV0) ClusterHealth() (*elastic.ClusterHealth, error) {

	url := fmt.Sprintf("%s/_cluster/health", c.GetEndpoint())

	resp, err := c.Request(util.Verb_GET, url, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	health := &elastic.ClusterHealth{}
	err = json.Unmarshal(resp.Body, health)
	if err != nil {
		return nil, err
	}

	return health, nil
}

func (c *ESAPIV0) IndexExists(indexName string) (bool, error) {
	indexName = util.UrlEncode(indexName)

	url := fmt.Sprintf("%s/%s", c.GetEndpoint(), indexName)
	resp, err := c.Request(util.Verb_GET, url, nil)

	if err != nil {
		return false, err
	}

	if resp.StatusCode == 404 {
		return false, nil
	}

	if resp.StatusCode == 200 {
		return true, nil
	}

	return false, errors.New(string(resp.Body))
}

func (c *ESAPIV0) GetIndex(indexName string) (*elastic.Indexes, error) {
	indexName = util.UrlEncode(indexName)

	url := fmt.Sprintf("%s/%s", c.GetEndpoint(), indexName)
	resp, err := c.Request(util.Verb_GET, url, nil)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	idx := elastic.Indexes{}
	err = json.Unmarshal(resp.Body, &idx)
	if err != nil {
		return nil, err
	}

	return &idx, nil
}

func (c *ESAPIV0) GetIndexSettings(indexNames string) (*elastic.Indexes, error) {
	indexNames = util.UrlEncode(indexNames)

	allSettings := &elastic.Indexes{}

	url := fmt.Sprintf("%s/%s/_settings", c.GetEndpoint(), indexNames)

	resp, err := c.Request(util.Verb_GET, url, nil)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	err = json.Unmarshal(resp.Body, allSettings)
	if err != nil {
		return nil, err
	}

	return allSettings, nil
}

func (s *ESAPIV0) UpdateIndexSettings(name string, settings map[string]interface{}) error {
	if global.Env().IsDebug {
		log.Trace("update index settings: ", name, ", ", settings)
	}
	name = util.UrlEncode(name)

	url := fmt.Sprintf("%s/%s/_settings", s.GetEndpoint(), name)

	body := bytes.Buffer{}
	enc := json.NewEncoder(&body)
	enc.Encode(settings)

	resp, err := s.Request(util.Verb_PUT, url, body.Bytes())
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("code:%v,response:%v", resp.StatusCode, string(resp.Body))
	}

	return nil
}

func (c *ESAPIV0) GetMapping(indexNames string) (*elastic.Indexes, error) {
	indexNames = util.UrlEncode(indexNames)

	url := fmt.Sprintf("%s/%s/_mapping", c.GetEndpoint(), indexNames)

	resp, err := c.Request(util.Verb_GET, url, nil)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	idxs := elastic.Indexes{}
	err = json.Unmarshal(resp.Body, &idxs)
	if err != nil {
		return nil, err
	}

	return &idxs, nil
}

func (c *ESAPIV0) CreateIndex(indexName string, settings map[string]interface{}) (err error) {

	body := bytes.Buffer{}
	if len(settings) > 0 {
		enc := json.NewEncoder(&body)
		enc.Encode(settings)
	}

	if global.Env().IsDebug {
		log.Trace("start create index: ", indexName, ",", settings, ",", string(body.Bytes()))
	}
	indexName = util.UrlEncode(indexName)

	url := fmt.Sprintf("%s/%s", c.GetEndpoint(), indexName)

	result, err := c.Request(util.Verb_PUT, url, body.Bytes())

	if err != nil {
		return err
	}

	if result.StatusCode != http.StatusOK {
		return errors.Errorf("code:%v,response:%v", result.StatusCode, string(result.Body))
	}

	return nil
}

func (c *ESAPIV0) DeleteIndex(indexName string) (err error) {
	if global.Env().IsDebug {
		log.Trace("start delete index: ", indexName)
	}
	indexName = util.UrlEncode(indexName)

	url := fmt.Sprintf("%s/%s", c.GetEndpoint(), indexName)

	resp, err := c.Request(util.Verb_DELETE, url, nil)
	if err != nil {
		return err
	}

	if resp.StatusCode != 200 && resp.StatusCode != 404 {
		return errors.New(string(resp.Body))
	}

	return nil
}

func (s *ESAPIV0) Refresh(name string) (err error) {
	name = util.UrlEncode(name)

	url := fmt.Sprintf("%s/%s/_refresh", s.GetEndpoint(), name)

	resp, err := s.Request(util.Verb_POST, url, nil)
	if err != nil {
		return err
	}

	if resp.StatusCode != 200 {
		return errors.New(string(resp.Body))
	}

	return nil
}

func (c *ESAPIV0) Count(indexName string) (*elastic.CountResponse, error) {
	indexName = util.UrlEncode(indexName)

	url := c.GetEndpoint() + "/" + indexName + "/_count"

	if global.Env().IsDebug {
		log.Debug("doc count: ", url)
	}

	resp, err := c.Request(util.Verb_GET, url, nil)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	if global.Env().IsDebug {
		log.Trace("count response: ", string(resp.Body))
	}

	esResp := &elastic.CountResponse{}
	err = json.Unmarshal(resp.Body, esResp)
	if err != nil {
		return nil, err
	}

	return esResp, nil
}

//"logs_v1" : {
//"aliases" : {
//"logs" : {
//"is_write_index" : true
//}
//}
//},
type AliasesResponse struct {
	Aliases map[string]struct {
		IsWriteIndex  bool        `json:"is_write_index,omitempty"`
		IsHiddenIndex bool        `json:"is_hidden,omitempty"`
		IndexRouting  string      `json:"index_routing,omitempty"`
		SearchRouting string      `json:"search_routing,omitempty"`
		Filter        interface{} `json:"filter,omitempty"`
	} `json:"aliases,omitempty"`
}

// GetAlias resolves the membership of one alias. A 404 means no index holds
// the alias right now, which is a valid empty membership.
func (c *ESAPIV0) GetAlias(aliasName string) (*map[string]elastic.AliasInfo, error) {

	url := fmt.Sprintf("%s/_alias/%s", c.GetEndpoint(), util.UrlEncode(aliasName))
	resp, err := c.Request(util.Verb_GET, url, nil)

	if err != nil {
		return nil, err
	}

	aliasInfo := map[string]elastic.AliasInfo{}

	if resp.StatusCode == 404 {
		return &aliasInfo, nil
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	data := map[string]AliasesResponse{}
	err = json.Unmarshal(resp.Body, &data)
	if err != nil {
		log.Error(url, ",", string(resp.Body), ",", err)
		return nil, err
	}

	for index, v := range data {
		for alias, v1 := range v.Aliases {
			info, ok := aliasInfo[alias]
			if !ok {
				info = elastic.AliasInfo{}
				info.Alias = alias
			}

			info.Index = append(info.Index, index)
			if v1.IsWriteIndex {
				info.WriteIndex = index
			}
			aliasInfo[alias] = info
		}
	}

	if global.Env().IsDebug {
		log.Trace("get alias:", util.ToJson(aliasInfo, false))
	}

	return &aliasInfo, nil
}

// Alias posts a prepared actions body to _aliases, the server applies the
// whole body as one atomic change or rejects it as a whole.
func (c *ESAPIV0) Alias(body []byte) error {
	url := fmt.Sprintf("%s/_aliases", c.GetEndpoint())

	if global.Env().IsDebug {
		log.Trace("update alias: ", string(body))
	}

	resp, err := c.Request(util.Verb_POST, url, body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("code:%v,response:%v", resp.StatusCode, string(resp.Body))
	}

	return nil
}

func (c *ESAPIV0) Reindex(body []byte) (*elastic.ReindexResponse, error) {
	url := fmt.Sprintf("%s/_reindex?wait_for_completion=false", c.GetEndpoint())

	resp, err := c.Request(util.Verb_POST, url, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	reindexResponse := &elastic.ReindexResponse{}
	err = json.Unmarshal(resp.Body, reindexResponse)
	if err != nil {
		return nil, err
	}

	return reindexResponse, nil
}

// ReindexAndWait runs the copy as one blocking call. The request rides a
// dedicated client, the shared one caps every call at the management timeout
// which a large copy will outlive.
func (c *ESAPIV0) ReindexAndWait(body []byte, timeout time.Duration) (*elastic.ReindexResponse, error) {
	url := fmt.Sprintf("%s/_reindex", c.GetEndpoint())

	if global.Env().IsDebug {
		log.Trace("reindex: ", url, ",", util.SubString(string(body), 0, 3000))
	}

	req := c.newRequest(util.Verb_POST, url, body)

	resp, err := util.ExecuteRequestWithCatchFlag(util.NewHTTPClient(timeout), req, true)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	reindexResponse := &elastic.ReindexResponse{}
	err = json.Unmarshal(resp.Body, reindexResponse)
	if err != nil {
		return nil, err
	}

	return reindexResponse, nil
}

func (c *ESAPIV0) GetTask(taskID string) (*elastic.TaskResponse, error) {
	url := fmt.Sprintf("%s/_tasks/%s", c.GetEndpoint(), util.UrlEncode(taskID))

	resp, err := c.Request(util.Verb_GET, url, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, errors.New(string(resp.Body))
	}

	taskResponse := &elastic.TaskResponse{}
	err = json.Unmarshal(resp.Body, taskResponse)
	if err != nil {
		return nil, err
	}

	return taskResponse, nil
}
