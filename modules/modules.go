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

package modules

import (
	"infini.sh/shift/core/module"
	"infini.sh/shift/modules/api"
	"infini.sh/shift/modules/elastic"
	"infini.sh/shift/modules/migration"
	"infini.sh/shift/modules/stats"
	"infini.sh/shift/plugins/badger"
	statsd "infini.sh/shift/plugins/stats_statsd"
)

// Migration is the module the command line drives directly, the registry
// owns its lifecycle like any other module.
var Migration = &migration.MigrationModule{}

// Register is where modules are registered
func Register() {
	module.RegisterSystemModule(&elastic.ElasticModule{})
	module.RegisterSystemModule(&stats.SimpleStatsModule{})
	module.RegisterSystemModule(Migration)
	module.RegisterSystemModule(&api.APIModule{})

	module.RegisterUserPlugin(&badger.Module{})
	module.RegisterUserPlugin(statsd.StatsDModule{})
}
