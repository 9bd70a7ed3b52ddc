// Copyright (C) INFINI Labs & INFINI LIMITED.
//
// The INFINI Framework is offered under the GNU Affero General Public License v3.0
// and as commercial software.
//
// For commercial licensing, contact us at:
//   - Website: infinilabs.com
//   - Email: hello@infini.ltd
//
// Open Source licensed under AGPL V3:
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

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

package api

import (
	log "github.com/cihub/seelog"
	"infini.sh/shift/core/api"
	httprouter "infini.sh/shift/core/api/router"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/host"
	"infini.sh/shift/core/util"
	"net/http"
	"sort"
)

// Name return API
func (module *APIModule) Name() string {
	return "api"
}

func init() {
	api.HandleAPIMethod(api.GET, "/_whoami", whoisAPIHandler)
	api.HandleAPIMethod(api.GET, "/_version", versionAPIHandler)
	api.HandleAPIMethod(api.GET, "/_info", infoAPIHandler)
	api.HandleAPIMethod(api.GET, "/health", healthAPIHandler)
}

func whoisAPIHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	w.Write([]byte(global.Env().SystemConfig.APIConfig.NetworkConfig.GetBindingAddr()))
	w.Write([]byte("\n"))
}

func versionAPIHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	w.Write([]byte(global.Env().GetVersion()))
	w.Write([]byte("\n"))
}

func healthAPIHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {

	obj := util.MapStr{
		"status": global.Env().GetOverallHealth().ToString(),
	}

	services := global.Env().GetServicesHealth()
	if len(services) > 0 {
		obj["services"] = services
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(util.MustToJSONBytes(obj))
}

func infoAPIHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	hostName, _, osName, _, osVersion, osArch, err := host.GetOSInfo()
	if err != nil {
		log.Debug("get os info error: ", err)
	}

	physicalCore, logicCore, _, modelName, err := host.GetCPUInfo()
	//ignore error with getting cpu err on platform darwin (not implement)
	if err != nil {
		log.Debug("get cpu info error: ", err)
	}

	memTotal, _, _, _, err := host.GetMemoryInfo()
	if err != nil {
		log.Debug("get memory info error: ", err)
	}

	diskTotal, _, _, _, err := host.GetDiskInfo()
	if err != nil {
		log.Debug("get disk info error: ", err)
	}

	info := util.MapStr{
		"id":   global.Env().SystemConfig.NodeConfig.ID,
		"name": global.Env().SystemConfig.NodeConfig.Name,
		"version": util.MapStr{
			"number":       global.Env().GetVersion(),
			"build_number": global.Env().GetBuildNumber(),
			"build_date":   util.FormatTime(global.Env().GetBuildDate()),
			"build_hash":   global.Env().GetLastCommitHash(),
		},
		"host": util.MapStr{
			"name": hostName,
			"os": util.MapStr{
				"name":         osName,
				"version":      osVersion,
				"architecture": osArch,
			},
			"hardware": util.MapStr{
				"memory_size": util.ByteSize(memTotal),
				"disk_size":   util.ByteSize(diskTotal),
				"processor": util.MapStr{
					"physical_core": physicalCore,
					"logic_core":    logicCore,
					"model":         modelName,
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(util.MustToJSONBytes(info))
}

func defaultHandler(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	w.Write([]byte(global.Env().GetAppCapitalName()))
	w.Write([]byte(", "))
	w.Write([]byte(global.Env().GetVersion()))
	w.Write([]byte(", "))
	w.Write([]byte(global.Env().GetBuildNumber()))
	w.Write([]byte(", "))
	w.Write([]byte(util.FormatTime(global.Env().GetBuildDate())))
	w.Write([]byte(", "))
	w.Write([]byte(util.FormatTime(global.Env().GetEOLDate())))
	w.Write([]byte(", "))
	w.Write([]byte(global.Env().GetLastCommitHash()))
	w.Write([]byte("\n\n"))

	w.Write([]byte("API Directory:\n"))

	apis := util.GetMapKeys(api.APIs)
	sort.Strings(apis)

	for _, k := range apis {
		v, ok := api.APIs[k]
		if ok {
			w.Write([]byte(v.Key))
			w.Write([]byte("\t"))
			w.Write([]byte(v.Value))
			w.Write([]byte("\n"))
		}
	}
}

func (module *APIModule) Setup(cfg *config.Config) {
	api.HandleAPIMethod(api.GET, "/", defaultHandler)
}

func (module *APIModule) Start() error {
	api.StartAPI()
	return nil
}

func (module *APIModule) Stop() error {
	return nil
}

type APIModule struct {
	api.Handler
}
