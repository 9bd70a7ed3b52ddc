/* Copyright © INFINI Ltd. All rights reserved.
 * web: https://infinilabs.com
 * mail: hello#infini.ltd */

package config

import (
	"sync"
	"time"

	log "github.com/cihub/seelog"
	"github.com/fsnotify/fsnotify"

	"infini.sh/shift/core/util"
)

// CallbackFunc runs after a change under a watched path has settled down.
type CallbackFunc func(file string, op fsnotify.Op)

// One OS watcher serves every registered path, started on first use.
var fsWatcher *fsnotify.Watcher
var watcherOnce = sync.Once{}

var callbackLock = sync.RWMutex{}
var pathCallbacks = map[string][]CallbackFunc{}

// events carries debounced file changes to the reload loop.
var events = make(chan fsnotify.Event, 10)

func loadConfigFile(file string) *Config {
	if util.SuffixStr(file, ".yml") || util.SuffixStr(file, ".yaml") {
		if !util.FileExists(file) {
			return nil
		}
		v1, err := LoadFile(file)
		if err != nil {
			log.Error(err)
			return nil
		}
		return v1
	}
	return nil
}

// EnableWatcher reloads a configuration path whenever it changes on disk.
// Subscribers registered through NotifyOnConfigSectionChange get the old and
// the new section once the file has been parsed again.
func EnableWatcher(path string) {
	if !util.FileExists(path) {
		log.Debugf("path: %v not exists, skip watcher", path)
		return
	}
	AddPathToWatch(path, func(file string, op fsnotify.Op) {
		loadConfigFile(file)
	})

	log.Debugf("enable watcher on path: %v", path)
}

// AddPathToWatch registers a callback for changes under path, which may be a
// file or a directory.
func AddPathToWatch(path string, callback CallbackFunc) {
	callbackLock.Lock()
	existing, watched := pathCallbacks[path]
	pathCallbacks[path] = append(existing, callback)
	callbackLock.Unlock()
	if watched {
		return
	}

	watcherOnce.Do(startWatcher)
	if fsWatcher == nil {
		return
	}

	if err := fsWatcher.Add(path); err != nil {
		log.Error(err)
	}
}

func startWatcher() {
	var err error
	fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		log.Error(err)
		fsWatcher = nil
		return
	}

	// debounce raw events, editors fire several per save
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Trace("error on handle configs,", r)
			}
		}()

		cache := util.NewCacheWithExpireOnAdd(1*time.Second, 5)
		for {
			select {
			case ev, ok := <-fsWatcher.Events:
				if !ok {
					close(events)
					return
				}
				if util.SuffixStr(ev.Name, "~") {
					log.Trace("skip temp file:", ev.String())
					continue
				}
				if v := cache.Put(ev.Name, ev.Op); v != nil {
					log.Trace("change within 1s, skip:", ev.String())
					continue
				}
				log.Trace("config changed:", ev.String())
				events <- ev
			case err, ok := <-fsWatcher.Errors:
				if !ok {
					return
				}
				log.Debug("watcher error: ", err)
			}
		}
	}()

	// apply reloads
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Trace("error on handle configs,", r)
			}
		}()

		for ev := range events {
			// let the writer finish before reading the file back
			time.Sleep(2 * time.Second)

			for _, v := range callbacksFor(ev.Name) {
				v(ev.Name, ev.Op)
			}

			cfg := loadConfigFile(ev.Name)
			if cfg == nil {
				continue
			}
			notifySectionChanges(cfg)
		}
	}()
}

// callbacksFor collects the callbacks whose registered path covers the
// changed file, a directory watch covers everything under it.
func callbacksFor(file string) []CallbackFunc {
	callbackLock.RLock()
	defer callbackLock.RUnlock()

	var cbs []CallbackFunc
	for p, list := range pathCallbacks {
		if file == p || util.PrefixStr(file, p) {
			cbs = append(cbs, list...)
		}
	}
	return cbs
}

// StopWatchers closes the OS watcher, events already debounced still drain.
func StopWatchers() {
	if fsWatcher != nil {
		fsWatcher.Close()
	}
}

var notify = map[string][]func(pCfg, cCfg *Config){}
var latestConfig = map[string]*Config{}
var cfgLocker = sync.RWMutex{}

// NotifyOnConfigSectionChange subscribes to one top level section of a
// reloaded file, the previous section is nil on the first reload.
func NotifyOnConfigSectionChange(configKey string, f func(pCfg, cCfg *Config)) {
	cfgLocker.Lock()
	defer cfgLocker.Unlock()

	notify[configKey] = append(notify[configKey], f)
}

func notifySectionChanges(cfg *Config) {
	cfgLocker.Lock()
	defer cfgLocker.Unlock()

	for k, fns := range notify {
		if !cfg.HasField(k) {
			continue
		}
		currentCfg, err := cfg.Child(k, -1)
		if err != nil {
			log.Error(err)
			continue
		}
		previousCfg := latestConfig[k]
		for _, f := range fns {
			f(previousCfg, currentCfg)
		}
		latestConfig[k] = currentCfg
	}
}
