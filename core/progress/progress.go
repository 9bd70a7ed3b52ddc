// Package progress renders terminal progress bars for the long phases of a
// run, the copy mostly. Bars stay off unless `progress_bar.enabled` is set,
// the completion gauge is fed either way so the stats API can still report
// how far along a copy is.
package progress

import (
	"fmt"
	"sync"

	log "github.com/cihub/seelog"
	"gopkg.in/cheggaaa/pb.v1"

	"infini.sh/shift/core/env"
	"infini.sh/shift/core/stats"
)

var statsLock sync.RWMutex
var barsMap = map[string]*pb.ProgressBar{}
var statsMap = map[string]int{}

// RegisterBar announces a bar before its total is known. A zero total is
// fine, IncreaseWithTotal adjusts it once the server reports one.
func RegisterBar(category, key string, total int) {
	if ShowProgress() {
		statsKey := fmt.Sprintf("[%v][%v]:", category, key)
		statsLock.Lock()
		defer statsLock.Unlock()
		statsMap[statsKey] = 0
		bar := pb.New(total).Prefix(statsKey)
		barsMap[statsKey] = bar
	}
}

// IncreaseWithTotal adds count to the bar and resizes it to total, which can
// still drift while the server side task is scanning.
func IncreaseWithTotal(category, key string, count, total int) {
	if total <= 0 {
		return
	}

	statsKey := fmt.Sprintf("[%v][%v]:", category, key)
	statsLock.Lock()
	defer statsLock.Unlock()
	sumCount := count
	if v, ok := statsMap[statsKey]; ok {
		sumCount = count + v
	}

	statsMap[statsKey] = sumCount
	if ShowProgress() {
		bar, ok := barsMap[statsKey]
		if !ok {
			bar = pb.New(total).Prefix(statsKey)
			barsMap[statsKey] = bar
		}
		if bar.Total != int64(total) {
			bar.SetTotal(total)
		}
		bar.Set(sumCount)
		bar.Update()
	}
	stats.Gauge(category, key, int64(sumCount*100/total))
}

var pool *pb.Pool
var started bool

// Start renders the registered bars. Calling it again picks up bars that
// were registered after the pool went live.
func Start() {
	if !ShowProgress() {
		return
	}

	statsLock.Lock()
	defer statsLock.Unlock()

	if !started {
		bars := []*pb.ProgressBar{}
		for _, v := range barsMap {
			bars = append(bars, v)
		}
		var err error
		pool, err = pb.StartPool(bars...)
		if err != nil {
			// a bar is cosmetic, a run must not die over one
			log.Warnf("progress bars unavailable: %v", err)
			pool = nil
			return
		}
		started = true
		return
	}

	for k := range statsMap {
		if _, ok := barsMap[k]; !ok {
			bar := pb.New(100).Prefix(k)
			barsMap[k] = bar
			pool.Add(bar)
		}
	}
}

// ShowProgress reports whether bars should render, from the `progress_bar`
// block of the configuration. Off by default so scripted runs keep a clean
// stdout.
func ShowProgress() bool {
	cfg := struct {
		Enabled bool `config:"enabled" json:"enabled,omitempty"`
	}{}

	exists, _ := env.ParseConfig("progress_bar", &cfg)
	if exists {
		return cfg.Enabled
	}
	return false
}

// Stop finishes the bars that reached their total, shuts the pool down and
// forgets everything, so a later phase can register fresh bars.
func Stop() {
	if !ShowProgress() {
		return
	}

	statsLock.Lock()
	defer statsLock.Unlock()

	for k, v := range statsMap {
		bar, ok := barsMap[k]
		if !ok {
			continue
		}
		if int(bar.Total) == v && !bar.IsFinished() {
			bar.Finish()
		}
	}
	if pool != nil {
		pool.Stop()
	}
	barsMap = map[string]*pb.ProgressBar{}
	statsMap = map[string]int{}
	started = false
}
