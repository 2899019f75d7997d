/*Package metrics wraps datadog-go to facilitate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Warning: *.warn
*/
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/deserthomes/goapi/base/log"
)

const (
	// ddRate is the rate to pass metrics to the datadog agent. 1 means always
	ddRate = 1
	// buffer 10 counters before sending to statsd
	bufferMetrics = 10

	defaultDdPort = 8125
)

// Ender finishes a timer started by BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)
	BumpTime(key string, tags ...string) Ender
}

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

var (
	initOnce sync.Once
	ddClient statsCli
)

func initDDClient() {
	host := viper.GetString("datadog_host")
	if host == "" {
		// no agent configured, keep metrics observable through debug logs
		ddClient = &LogClient{}
		return
	}
	addr := fmt.Sprintf("%s:%d", host, defaultDdPort)
	cli, err := statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Panic("can't talk to datadog agent")
	}
	log.Log().WithField("addr", addr).Info("connected to datadog agent")
	ddClient = cli
}

// New creates a metric client with package name as prefix
func New(pkgName string) Service {
	ddTags := []string{
		"env:" + viper.GetString("env_name"),
		"app:" + viper.GetString("app_name"),
	}
	return &Metrics{
		pkgName: pkgName,
		ddTags:  ddTags,
	}
}

// Metrics bumps counters and timers against one statsd client
type Metrics struct {
	pkgName string
	ddTags  []string
}

func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	initOnce.Do(initDDClient)
	// datadog has no plain average, gauge is the closest fit
	if err := ddClient.Gauge(mt.pkgName+"."+key, val, append(mt.ddTags, parseTag(tags)...), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key}).Error("BumpAvg fail")
	}
}

func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	initOnce.Do(initDDClient)
	if err := ddClient.Count(mt.pkgName+"."+key, int64(val), append(mt.ddTags, parseTag(tags)...), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key}).Error("BumpSum fail")
	}
}

func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	initOnce.Do(initDDClient)
	if err := ddClient.Histogram(mt.pkgName+"."+key, val, append(mt.ddTags, parseTag(tags)...), ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key}).Error("BumpHistogram fail")
	}
}

// BumpTime starts a timer. A convenient way of recording the duration of a
// function is calling it like such at the top of the function:
//
//	defer met.BumpTime("my.function").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	initOnce.Do(initDDClient)
	return &timeTracker{
		key:   mt.pkgName + "." + key,
		tags:  append(mt.ddTags, parseTag(tags)...),
		start: time.Now(),
	}
}

type timeTracker struct {
	key   string
	tags  []string
	start time.Time
}

func (t *timeTracker) End() {
	elapsed := float64(time.Since(t.start)) / float64(time.Millisecond)
	if err := ddClient.TimeInMilliseconds(t.key, elapsed, t.tags, ddRate); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": t.key}).Error("BumpTime fail")
	}
}

// parseTag converts ("k1", "v1", "k2", "v2") into datadog "k:v" tags
func parseTag(kvs []string) []string {
	tags := make([]string, 0, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		tags = append(tags, kvs[i]+":"+kvs[i+1])
	}
	return tags
}
