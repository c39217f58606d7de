package sessioncache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sessioncache_writes_total",
	Help: "Debounced backend writes, by backend and result",
}, []string{"backend", "result"})

var writesCoalesced = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sessioncache_writes_coalesced_total",
	Help: "Pending writes replaced by a newer upsert of the same session",
})

var writesAborted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sessioncache_writes_aborted_total",
	Help: "Debounced writes dropped at flush time, by reason",
}, []string{"reason"})

var deletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sessioncache_deletes_total",
	Help: "Backend deletes, by backend and result",
}, []string{"backend", "result"})

var sweptTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sessioncache_swept_total",
	Help: "Expired sessions evicted from memory by the sweeper",
})

var recordsGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "sessioncache_records",
	Help: "Sessions currently held in memory, expired ones included until swept",
})

var restoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sessioncache_restored_total",
	Help: "Sessions read from backends at startup, by backend and result",
}, []string{"backend", "result"})

const (
	resultOK      = "ok"
	resultError   = "error"
	resultSkipped = "skipped"

	reasonRemoved = "removed"
	reasonExpired = "expired"
	reasonEncode  = "encode"
)
