package statsd

import (
	"fmt"
	log "github.com/cihub/seelog"
	"github.com/quipo/statsd"
	"infini.sh/shift/core/config"
	"infini.sh/shift/core/env"
	"infini.sh/shift/core/errors"
	"infini.sh/shift/core/stats"
	"infini.sh/shift/core/util"
	"strings"
	"sync"
	"time"
)

// metricKey joins category and key into one statsd bucket name. The wire
// protocol is plain text, so the name is folded to ASCII and the separator
// characters statsd reserves are replaced.
func metricKey(category, key string) string {
	k := util.StripCtlAndExtFromUnicode(category + "." + key)
	return strings.NewReplacer(":", "_", "|", "_", "@", "_", " ", "_").Replace(k)
}

type StatsDConfig struct {
	Enabled           bool          `config:"enabled"`
	Host              string        `config:"host"`
	Port              int           `config:"port"`
	Namespace         string        `config:"namespace"`
	Protocol          string        `config:"protocol"`
	IntervalInSeconds time.Duration `config:"interval_in_seconds"`
}

type StatsDModule struct {
}

var cfg *config.Config

func (module StatsDModule) Setup(config *config.Config) {
	cfg = config
}

var statsdInited bool
var statsdclient *statsd.StatsdClient
var buffer *statsd.StatsdBuffer
var l1 sync.RWMutex

var defaultStatsdConfig = StatsDConfig{
	Enabled:           false,
	Host:              "localhost",
	Port:              8125,
	Namespace:         "shift.",
	Protocol:          "udp",
	IntervalInSeconds: 1,
}

func (module StatsDModule) Name() string {
	return "statsd"
}

func (module StatsDModule) Start() error {
	if statsdInited {
		panic(errors.New("statsd already started"))
	}

	config := defaultStatsdConfig
	env.ParseConfig("statsd", &config)
	if !config.Enabled {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	l1.Lock()
	defer l1.Unlock()
	statsdclient = statsd.NewStatsdClient(addr, config.Namespace)

	log.Debug("statsd connec to, ", addr, ",prefix:", config.Namespace)

	var err error
	if config.Protocol == "tcp" {
		err = statsdclient.CreateTCPSocket()
	} else {
		err = statsdclient.CreateSocket()
	}
	if nil != err {
		log.Warn(err)
		return err
	}

	interval := time.Second * config.IntervalInSeconds // aggregate stats and flush every interval
	buffer = statsd.NewStatsdBuffer(interval, statsdclient)

	statsdInited = true

	stats.Register(module)
	return nil
}

func (module StatsDModule) Stop() error {
	if statsdclient != nil {
		statsdclient.Close()
	}
	return nil
}

func (module StatsDModule) Absolute(category, key string, value int64) {

	if !statsdInited {
		return
	}
	buffer.Absolute(metricKey(category, key), value)
}

func (module StatsDModule) Increment(category, key string) {

	module.IncrementBy(category, key, 1)
}

func (module StatsDModule) IncrementBy(category, key string, value int64) {
	if !statsdInited {
		return
	}
	buffer.Incr(metricKey(category, key), value)
}

func (module StatsDModule) Decrement(category, key string) {
	module.DecrementBy(category, key, 1)
}

func (module StatsDModule) DecrementBy(category, key string, value int64) {
	if !statsdInited {
		return
	}
	buffer.Decr(metricKey(category, key), value)
}

func (module StatsDModule) Timing(category, key string, v int64) {
	if !statsdInited {
		return
	}
	buffer.Timing(metricKey(category, key), v)

}

func (module StatsDModule) Gauge(category, key string, v int64) {
	if !statsdInited {
		return
	}
	buffer.Gauge(metricKey(category, key), v)
}

func (module StatsDModule) Stat(category, key string) int64 {
	return 0
}

func (module StatsDModule) StatsAll() string {
	return ""
}

func (module StatsDModule) RecordTimestamp(category, key string, value time.Time) {
	if !statsdInited {
		return
	}
	buffer.Gauge(metricKey(category, key)+".timestamp", value.Unix())
}

func (module StatsDModule) GetTimestamp(category, key string) (time.Time, error) {
	return time.Time{}, errors.New("statsd is write only")
}
