// Package telemetry wires the SMS core's counters (spec.md §6.3) to
// Prometheus, grounded on the pack's rcornwell-S370 simulator, which
// exposes its own architectural counters the same way via
// github.com/prometheus/client_golang.
package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Counters bundles every metric spec.md §6.3 requires: a {table ×
// operation} matrix covering access/check/insert/update/invalidate/
// transfer/eviction outcomes for FT, AT, and PHT, plus the standalone
// pattern-overflow, trigger-access, and Active Generation Table
// hit/miss counters.
type Counters struct {
	TableOps        *prometheus.CounterVec // proc_id, table, op
	PatternOverflow *prometheus.CounterVec
	TriggerAccess   *prometheus.CounterVec
	AGTHit          *prometheus.CounterVec
	AGTMiss         *prometheus.CounterVec
}

// NewCounters registers a fresh Counters set against reg. Passing a
// prometheus.NewRegistry() per SMS instance keeps multi-core label sets
// (one SMS per proc_id, per spec.md §5) from colliding when several
// instances run in the same process.
func NewCounters(reg prometheus.Registerer) *Counters {
	c := &Counters{
		TableOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "table_ops_total",
			Help:      "Table backend operations by table name and op (access, check, insert, update, invalidate, transfer, same-eviction, different-eviction, no-eviction).",
		}, []string{"proc_id", "table", "op"}),
		PatternOverflow: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "pattern_overflow_total",
			Help:      "Accesses whose offset fell outside the region's bitmap width.",
		}, []string{"proc_id"}),
		TriggerAccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "trigger_access_total",
			Help:      "Accesses that opened a new generation (neither FT nor AT contained K).",
		}, []string{"proc_id"}),
		AGTHit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "active_generation_hit_total",
			Help:      "Accesses whose fingerprint was already live in FT or AT (the Active Generation Table, FT∪AT).",
		}, []string{"proc_id"}),
		AGTMiss: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "active_generation_miss_total",
			Help:      "Accesses whose fingerprint was live in neither FT nor AT — true trigger accesses.",
		}, []string{"proc_id"}),
	}

	reg.MustRegister(c.TableOps, c.PatternOverflow, c.TriggerAccess, c.AGTHit, c.AGTMiss)
	return c
}

// TableObserver is a proc_id-bound view onto Counters.TableOps. It
// satisfies internal/table's Observer interface without that lower-level
// package needing to know about Prometheus or proc_id labeling.
type TableObserver struct {
	counters *Counters
	procID   string
}

// ObserverFor binds c to procID for use as a table.Observer.
func (c *Counters) ObserverFor(procID uint64) TableObserver {
	return TableObserver{counters: c, procID: strconv.FormatUint(procID, 10)}
}

// ObserveTableOp implements table.Observer.
func (o TableObserver) ObserveTableOp(tableName, op string) {
	o.counters.TableOps.WithLabelValues(o.procID, tableName, op).Inc()
}

// ObserveTransfer records an AT→PHT generation close (spec.md §3's
// lifecycle diagram) — a controller-level event, not something the
// table backend itself can see.
func (c *Counters) ObserveTransfer(procID uint64) {
	c.TableOps.WithLabelValues(strconv.FormatUint(procID, 10), "pht", "transfer").Inc()
}
