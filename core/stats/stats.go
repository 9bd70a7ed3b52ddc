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

package stats

import (
	"strings"
	"sync"
	"time"

	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/util"
)

// StatsInterface is a backend that receives the counters a run emits, phase
// timings and document counts mostly. Every registered backend sees every
// call, so an in-memory store and a statsd exporter can run side by side.
type StatsInterface interface {
	Increment(category, key string)

	IncrementBy(category, key string, value int64)

	Decrement(category, key string)

	DecrementBy(category, key string, value int64)

	Absolute(category, key string, value int64)

	Timing(category, key string, v int64)

	Gauge(category, key string, v int64)

	Stat(category, key string) int64

	StatsAll() string

	// RecordTimestamp remembers when an operation last happened.
	RecordTimestamp(category, key string, value time.Time)
	// GetTimestamp returns when an operation last happened, an error when it
	// never has.
	GetTimestamp(category, key string) (time.Time, error)
}

// Backends register during module setup, before any phase emits, so the
// slice is read without a lock afterwards.
var handlers = []StatsInterface{}

// Register wires a backend into the facade.
func Register(h StatsInterface) {
	handlers = append(handlers, h)
}

// JoinArray glues key parts into one dotted stats key.
func JoinArray(array []string, delimiter string) string {
	if len(array) > 10 {
		return strings.Join(array, delimiter)
	}

	var str string
	x := len(array) - 1
	for i, v := range array {
		str += v
		if i < x {
			str += delimiter
		}
	}
	return str
}

// Increment bumps a counter by one, key parts are joined with dots.
func Increment(category string, key ...string) {
	if len(handlers) == 0 {
		return
	}

	IncrementBy(category, JoinArray(key, "."), 1)
}

func IncrementBy(category, key string, value int64) {
	for _, v := range handlers {
		v.IncrementBy(category, key, value)
	}
}

func Decrement(category, key string) {
	DecrementBy(category, key, 1)
}

func DecrementBy(category, key string, value int64) {
	for _, v := range handlers {
		v.DecrementBy(category, key, value)
	}
}

// Absolute overwrites a counter instead of moving it.
func Absolute(category, key string, value int64) {
	for _, v := range handlers {
		v.Absolute(category, key, value)
	}
}

// Timing records a duration in milliseconds, one sample per phase.
func Timing(category, key string, value int64) {
	for _, v := range handlers {
		v.Timing(category, key, value)
	}
}

// Gauge records a point-in-time value, the copy percentage for one.
func Gauge(category, key string, value int64) {
	for _, v := range handlers {
		v.Gauge(category, key, value)
	}
}

// Stat reads a counter back, the first backend that knows it wins.
func Stat(category, key string) int64 {
	for _, v := range handlers {
		b := v.Stat(category, key)
		if b > 0 {
			return b
		}
	}
	return 0
}

// TimestampNow stamps an operation with the current time.
func TimestampNow(category string, key ...string) {
	t := util.GetLowPrecisionCurrentTime()
	Timestamp(category, JoinArray(key, "."), t)
}

func Timestamp(category, key string, value time.Time) {
	for _, v := range handlers {
		v.RecordTimestamp(category, key, value)
	}
}

// GetTimestamp returns when an operation last ran, nil when no backend has
// seen it.
func GetTimestamp(category string, key ...string) *time.Time {
	for _, v := range handlers {
		o, err := v.GetTimestamp(category, JoinArray(key, "."))
		if err == nil {
			return &o
		}
	}
	return nil
}

func statsAll() string {
	for _, v := range handlers {
		b := v.StatsAll()
		if b != "" {
			return b
		}
	}
	return ""
}

var registeredStats = map[string]func() interface{}{}
var registerLock = sync.Mutex{}

// RegisterStats lets a module surface its own section in the stats payload,
// the callback runs on every StatsMap call.
func RegisterStats(statsKey string, callback func() interface{}) {
	registerLock.Lock()
	registeredStats[statsKey] = callback
	registerLock.Unlock()
}

// StatsMap merges the backend counters with every registered section into
// one document, the shape the stats API serves.
func StatsMap() (util.MapStr, error) {
	metricsJSON := statsAll()
	if metricsJSON == "" {
		return nil, errors.New("no stats backend registered")
	}
	metrics := util.MapStr{}
	err := util.FromJSONBytes([]byte(metricsJSON), &metrics)
	if err != nil {
		return nil, err
	}

	registerLock.Lock()
	for k, v := range registeredStats {
		metrics[k] = v()
	}
	registerLock.Unlock()

	return metrics, nil
}
