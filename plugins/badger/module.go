/* Copyright © INFINI LTD. All rights reserved.
 * Web: https://infinilabs.com
 * Email: hello#infini.ltd */

package badger

import (
	"path"
	"time"

	"github.com/dgraph-io/badger/v4"
	"infini.sh/shift/core/api"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/global"
	"infini.sh/shift/core/kv"
)

type Config struct {
	Enabled bool `config:"enabled"`

	SingleBucketMode   bool   `config:"single_bucket_mode"`
	Path               string `config:"path"`
	InMemoryMode       bool   `config:"memory_mode"`
	SyncWrites         bool   `config:"sync_writes"`
	MemTableSize       int64  `config:"mem_table_size"`
	ValueLogFileSize   int64  `config:"value_log_file_size"`
	ValueThreshold     int64  `config:"value_threshold"`
	ValueLogMaxEntries uint32 `config:"value_log_max_entries"`
	NumMemtables       int    `config:"num_mem_tables"`

	NumLevelZeroTables      int `config:"num_level0_tables"`
	NumLevelZeroTablesStall int `config:"num_level0_tables_stall"`

	ValueLogGCIntervalInSeconds int `config:"value_log_gc_interval_in_seconds"`
}

type Module struct {
	api.Handler
	cfg    *Config
	bucket *badger.DB
	closed bool
}

func (module *Module) Name() string {
	return "badger"
}

func (module *Module) Setup(cfg *config.Config) {
	module.cfg = &Config{
		Enabled:                 true,
		MemTableSize:            10 * 1024 * 1024,
		ValueLogFileSize:        1<<30 - 1, //1g
		ValueThreshold:          1048576,   //1m
		ValueLogMaxEntries:      1000000,   //1million
		NumMemtables:            1,
		NumLevelZeroTables:      1,
		NumLevelZeroTablesStall: 2,
		SingleBucketMode:        true,

		ValueLogGCIntervalInSeconds: 600,
	}
	if cfg != nil {
		err := cfg.Unpack(module.cfg)
		if err != nil {
			panic(err)
		}
	}
	if module.cfg.Path == "" {
		module.cfg.Path = path.Join(global.Env().GetDataDir(), "badger")
	}

	if module.cfg.Enabled {
		kv.Register("badger", module)
		api.HandleAPIMethod(api.GET, "/badger/_stats", module.dumpKeyStats)
	}

}

func (module *Module) Start() error {
	if module.cfg == nil {
		return nil
	}

	if module.cfg.Enabled {
		module.closed = false
		if err := module.Open(); err != nil {
			return err
		}
		if !module.cfg.InMemoryMode {
			go module.valueLogGC()
		}
	}

	return nil
}

// valueLogGC reclaims value log space in the background, which only matters
// for a long-lived serve process, a one-shot run exits before the first tick.
func (module *Module) valueLogGC() {
	for {
		time.Sleep(time.Duration(module.cfg.ValueLogGCIntervalInSeconds) * time.Second)
		if module.closed || global.ShuttingDown() {
			return
		}
		buckets.Range(func(key, value any) bool {
			db, ok := value.(*badger.DB)
			if !ok || db == nil {
				return true
			}
			for {
				if err := db.RunValueLogGC(0.5); err != nil {
					break
				}
			}
			return true
		})
	}
}

func (module *Module) Stop() error {

	if module.cfg == nil {
		return nil
	}

	if module.cfg != nil && module.cfg.Enabled {
		module.closed = true
		return module.Close()
	}

	return nil

}
