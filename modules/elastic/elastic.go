/*
Copyright 2016 Medcl (m AT medcl.net)

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
	"strings"

	log "github.com/cihub/seelog"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/elastic"
	"infini.sh/shift/core/env"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/util"
	"infini.sh/shift/modules/elastic/adapter"
	"infini.sh/shift/modules/elastic/adapter/opensearch"
)

func (module *ElasticModule) Name() string {
	return "Elastic"
}

var (
	defaultConfig = ModuleConfig{
		Elasticsearch: "default",
		HealthCheck:   true,
	}
)

func getDefaultConfig() ModuleConfig {
	return defaultConfig
}

type ModuleConfig struct {
	Elasticsearch string `config:"elasticsearch"`
	HealthCheck   bool   `config:"health_check"`
}

var m = map[string]elastic.ElasticsearchConfig{}

// endpoint set from the command line, wins over whatever the config file says
// for the cluster this process runs against.
var endpointOverride string

func SetEndpoint(endpoint string) {
	endpointOverride = endpoint
}

const defaultEndpoint = "http://localhost:9200"

// the _reindex API this tool is built around first shipped in 2.3
const minElasticsearchVersion = "2.3"

func loadElasticConfig(name string) {

	var configs []elastic.ElasticsearchConfig
	exist, err := env.ParseConfig("elasticsearch", &configs)
	if exist && err != nil {
		panic(err)
	}

	if !exist {
		configs = []elastic.ElasticsearchConfig{{Name: name, Enabled: true, Endpoint: defaultEndpoint}}
	}

	applyElasticConfig(configs, name)
}

func applyElasticConfig(configs []elastic.ElasticsearchConfig, name string) {

	for _, v := range configs {
		if !v.Enabled {
			log.Debug("elasticsearch ", v.Name, " is not enabled")
			continue
		}
		if v.ID == "" {
			if v.Name == "" {
				panic(errors.Errorf("invalid elasticsearch config, %v", v))
			}
			v.ID = v.Name
		}
		if v.Endpoint == "" {
			v.Endpoint = defaultEndpoint
		}
		v.Endpoint = strings.TrimSuffix(v.Endpoint, "/")
		m[v.ID] = v
	}

	if endpointOverride != "" {
		v, ok := m[name]
		if !ok {
			v = elastic.ElasticsearchConfig{ID: name, Name: name, Enabled: true}
		}
		v.Endpoint = strings.TrimSuffix(endpointOverride, "/")
		m[v.ID] = v
	}
}

func initElasticInstances() {

	for k, esConfig := range m {

		var client elastic.API

		var ver string
		var distribution string
		if esConfig.Version == "" || esConfig.Version == "auto" {
			esVersion, err := adapter.ClusterVersion(&esConfig)
			if err != nil {
				panic(errors.NewWithCode(err, errors.HostUnreachable, esConfig.Endpoint))
			}
			ver = esVersion.Version.Number
			distribution = esVersion.Version.Distribution
			esConfig.Version = ver
		} else {
			ver = esConfig.Version
			distribution = elastic.Elasticsearch
		}

		if global.Env().IsDebug {
			log.Debugf("elasticsearch [%v] version: %v, distribution: %v", esConfig.Name, ver, distribution)
		}

		if distribution == elastic.Elasticsearch {
			if r, err := util.VersionCompare(ver, minElasticsearchVersion); err == nil && r < 0 {
				panic(errors.Errorf("cluster [%v] runs elasticsearch %v, at least %v is required for _reindex",
					esConfig.Name, ver, minElasticsearchVersion))
			}
		}

		if distribution == elastic.Opensearch {
			api := new(opensearch.APIV1)
			api.Config = esConfig
			api.Version = ver
			client = api
		} else if strings.HasPrefix(ver, "8.") {
			api := new(adapter.ESAPIV8)
			api.Config = esConfig
			api.Version = ver
			client = api
		} else if strings.HasPrefix(ver, "7.") {
			api := new(adapter.ESAPIV7)
			api.Config = esConfig
			api.Version = ver
			client = api
		} else if strings.HasPrefix(ver, "6.") {
			api := new(adapter.ESAPIV6)
			api.Config = esConfig
			api.Version = ver
			client = api
		} else if strings.HasPrefix(ver, "5.") {
			api := new(adapter.ESAPIV5)
			api.Config = esConfig
			api.Version = ver
			client = api
		} else {
			api := new(adapter.ESAPIV0)
			api.Config = esConfig
			api.Version = ver
			client = api
		}
		elastic.RegisterInstance(k, esConfig, client)
	}

}

func (module *ElasticModule) Setup(cfg *config.Config) {

	moduleConfig := getDefaultConfig()
	if cfg != nil {
		err := cfg.Unpack(&moduleConfig)
		if err != nil {
			panic(err)
		}
	}
	module.config = &moduleConfig

	loadElasticConfig(moduleConfig.Elasticsearch)

	initElasticInstances()

	global.Register(elastic.GlobalSystemElasticsearchID, moduleConfig.Elasticsearch)

	config.NotifyOnConfigSectionChange("elasticsearch", func(pCfg, cCfg *config.Config) {

		defer func() {
			if !global.Env().IsDebug {
				if r := recover(); r != nil {
					log.Errorf("error on applying elasticsearch config change: %v", r)
				}
			}
		}()

		if cCfg == nil {
			return
		}
		var configs []elastic.ElasticsearchConfig
		if err := cCfg.Unpack(&configs); err != nil {
			log.Errorf("invalid elasticsearch config change, keeping the previous one: %v", err)
			return
		}
		applyElasticConfig(configs, module.config.Elasticsearch)
		initElasticInstances()
		log.Info("elasticsearch config change applied")
	})
}

func (module *ElasticModule) Start() error {

	if module.config != nil && module.config.HealthCheck {
		module.reportClusterHealth()
	}

	return nil
}

func (module *ElasticModule) Stop() error {
	return nil
}

func (module *ElasticModule) reportClusterHealth() {
	client := elastic.GetClient(module.config.Elasticsearch)

	health, err := client.ClusterHealth()
	if err != nil {
		log.Debugf("failed to get cluster health: %v", err)
		global.Env().ReportHealth("elasticsearch", env.HEALTH_RED)
		return
	}

	switch health.Status {
	case "green":
		global.Env().ReportHealth("elasticsearch", env.HEALTH_GREEN)
	case "yellow":
		global.Env().ReportHealth("elasticsearch", env.HEALTH_YELLOW)
	default:
		global.Env().ReportHealth("elasticsearch", env.HEALTH_RED)
	}

	log.Trace("cluster health: ", health.Status)
}

type ElasticModule struct {
	config *ModuleConfig
}
