/* ©INFINI, All Rights Reserved.
 * mail: contact#infini.ltd */

package util

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/cihub/seelog"
)

func FormatTime(date time.Time) string {
	return date.Format("2006-01-02 15:04:05")
}

func FormatTimeForFileName(date time.Time) string {
	return date.Format("2006-01-02_150405")
}

func GetDurationOrDefault(str string, defaultV time.Duration) time.Duration {
	t, err := time.ParseDuration(str)
	if err != nil {
		return defaultV
	}
	return t
}

var nowNano int64
var refreshRunning bool
var setupLock sync.RWMutex

func GetLowPrecisionCurrentTime() time.Time {
	if nowNano <= 0 {
		SetupTimeNowRefresh()
		t := time.Now()
		return t
	}
	return time.Unix(0, atomic.LoadInt64(&nowNano))
}

func SetupTimeNowRefresh() {

	if !refreshRunning {
		setupLock.Lock()
		defer setupLock.Unlock()

		if refreshRunning {
			return
		}

		once := sync.Once{}
		once.Do(func() {
			go func(nowNano int64) {
				log.Debug("refresh low precision time in background")
				for {
					t := time.Now()
					atomic.StoreInt64(&nowNano, t.UnixNano())
					time.Sleep(500 * time.Millisecond)
				}
			}(nowNano)
			refreshRunning = true
		})
	}
}
