// Package sms implements a Spatial Memory Streaming prefetcher core: a
// hardware-style predictor plug-in for a CPU microarchitectural
// simulator's L1 data cache. It tracks which lines of a spatial region
// get touched together, records the pattern once a region's access
// sequence closes out, and streams prefetches for the rest of a region
// the next time its trigger key recurs.
//
// SMS never reimplements the dcache, the generic set-associative cache
// library backing its own tables, or the simulator's instruction
// pipeline — those are external collaborators it plugs into through the
// interfaces in internal/dcache and internal/table.
package sms

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/camsterrrr/scarab-sms/internal/accumulate"
	"github.com/camsterrrr/scarab-sms/internal/dcache"
	"github.com/camsterrrr/scarab-sms/internal/filter"
	"github.com/camsterrrr/scarab-sms/internal/obslog"
	"github.com/camsterrrr/scarab-sms/internal/pattern"
	"github.com/camsterrrr/scarab-sms/internal/pht"
	"github.com/camsterrrr/scarab-sms/internal/stream"
	"github.com/camsterrrr/scarab-sms/internal/telemetry"
)

// SMS is the Generation Controller (C6): one instance tracks one
// processor's stream of dcache accesses, per spec.md §5 ("a multi-core
// simulator instantiates one independent SMS per processor id; no state
// is shared across instances").
type SMS struct {
	cfg    Config
	layout pattern.Layout
	desc   dcache.Descriptor
	procID uint64

	ft  *filter.Table
	at  *accumulate.Table
	pht *pht.Table

	counters *telemetry.Counters
	log      *zap.Logger
}

// New constructs an SMS instance bound to one host dcache descriptor.
// It fails only at construction (spec.md §7: "errors are a
// construction-time concern; no steady-state operation can fail") —
// every later OnDCacheAccess/OnDCacheInsert call is infallible. log may
// be nil (defaults to obslog.Nop()); reg may be nil (defaults to a fresh
// prometheus.NewRegistry()) for callers that don't want either.
func New(cfg Config, desc dcache.Descriptor, reg prometheus.Registerer, log *zap.Logger) (*SMS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lineSize := desc.LineSize()
	if !isPowerOfTwo(lineSize) {
		return nil, ErrLineSizeNotPowerOfTwo
	}
	if cfg.RegionSize < lineSize {
		return nil, ErrRegionSmallerThanLine
	}

	layout := pattern.Layout{RegionSize: cfg.RegionSize, LineSize: lineSize}
	if layout.Lines() > 64 {
		return nil, ErrBitmapTooWide
	}

	if log == nil {
		log = obslog.Nop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	procID := desc.ProcID()
	counters := telemetry.NewCounters(reg)
	obs := counters.ObserverFor(procID)

	return &SMS{
		cfg:      cfg,
		layout:   layout,
		desc:     desc,
		procID:   procID,
		ft:       filter.New(cfg.FTEntries, obs),
		at:       accumulate.New(cfg.ATEntries, obs),
		pht:      pht.New(cfg.PHTEntries, cfg.PHTSets, obs),
		counters: counters,
		log:      log,
	}, nil
}

// OnDCacheAccess implements spec.md §4.6's sms_on_dcache_access: the
// per-access entry point that drives the whole generation lifecycle.
//
// Ordering matters and is load-bearing (spec.md property P6): a brand
// new trigger access predicts and streams from the PHT *before* it opens
// its own Filter Table entry, so a stream emission can never
// accidentally feed back into the very generation it was triggered by.
func (s *SMS) OnDCacheAccess(op dcache.Op, procID, lineAddr uint64) {
	k := s.layout.Fingerprint(s.cfg.FingerprintMode, op.PC, lineAddr)

	p, overflow := s.layout.PatternOf(lineAddr)
	if overflow {
		s.counters.PatternOverflow.WithLabelValues(s.label()).Inc()
		return
	}

	// contains_active(K) (spec.md §4.6): K is live if it's in AT or FT.
	// AT is checked first since an AT hit fully resolves the access by
	// itself (accumulation_table_access, §4.4); an FT hit still needs
	// §4.3's same-line/promote logic.
	if merged, hit := s.at.Accumulate(k, p); hit {
		s.counters.AGTHit.WithLabelValues(s.label()).Inc()
		s.log.Debug("accumulation table hit", zap.Uint64("k", k), zap.Uint64("pattern", uint64(merged)))
		return
	}

	if s.ft.Contains(k) {
		s.counters.AGTHit.WithLabelValues(s.label()).Inc()
		outcome, merged := s.ft.Access(k, p)
		if outcome == filter.Promoted {
			s.openGeneration(procID, k, merged)
		}
		return
	}

	// Neither table holds K: this is a true trigger access.
	s.counters.AGTMiss.WithLabelValues(s.label()).Inc()
	s.counters.TriggerAccess.WithLabelValues(s.label()).Inc()
	s.predictAndStream(procID, k, lineAddr)
	s.ft.Access(k, p)
}

// predictAndStream looks K up in the PHT and, on a hit, streams the
// predicted lines into the host dcache before the caller opens K's own
// Filter Table entry.
func (s *SMS) predictAndStream(procID, k, triggerLineAddr uint64) {
	predicted, found := s.pht.Predict(k)
	if !found {
		return
	}

	regionBase := s.layout.RegionBase(triggerLineAddr)
	triggerLine := s.layout.LineBase(triggerLineAddr)
	evictions := stream.Emit(s.desc, s.layout, procID, regionBase, triggerLine, predicted)
	s.log.Debug("streamed prefetches",
		zap.Uint64("k", k),
		zap.Int("count", pattern.PopCount(predicted)),
	)

	// Installs may themselves evict resident lines; those evictions
	// re-enter generation closure in the same call stack that produced
	// them (spec.md §4.7, §5's re-entrancy note).
	for _, ev := range evictions {
		s.OnDCacheInsert(procID, 0, ev.Addr)
	}
}

// openGeneration moves a newly-promoted region from the Filter Table
// into the Accumulation Table. If that eviction bumps another live
// generation out of the Accumulation Table, its final pattern is
// recorded into the PHT — captured into a local before the recording
// call, so a PHT eviction reentering this same table can't clobber it
// (spec.md §5).
func (s *SMS) openGeneration(procID, k uint64, p pattern.Bitmap) {
	evicted, evTag, evPattern := s.at.Open(k, p)
	if !evicted {
		return
	}
	tag, pat := evTag, evPattern
	s.pht.Record(tag, pat)
	s.counters.ObserveTransfer(s.procID)
}

// OnDCacheInsert implements spec.md §4.6's sms_on_dcache_insert: the
// host calls this whenever a line is evicted from the dcache, whether
// from a demand install, a prefetch install, or background replacement.
// lineAddr is the line that was just installed (unused by SMS's own
// bookkeeping; carried only for host-facing signature fidelity with
// spec.md §6.1); replacedLineAddr is the evicted line, or 0 if none.
//
// Closure keys off the evicted address's region base regardless of the
// configured fingerprint mode: under ModePCPlusOffset the PC that opened
// a generation is generally gone by the time its line is evicted, so
// there is no way to recover the original K from the address alone
// (spec.md §13; this mirrors what the original Scarab source actually
// does rather than the paper's idealized trigger key).
func (s *SMS) OnDCacheInsert(procID, lineAddr, replacedLineAddr uint64) {
	if replacedLineAddr == 0 {
		return
	}
	k := s.layout.RegionBase(replacedLineAddr)

	if p, ok := s.at.Close(k); ok {
		s.pht.Record(k, p)
		s.counters.ObserveTransfer(s.procID)
		return
	}
	s.ft.Invalidate(k)
}

func (s *SMS) label() string {
	return uint64ToLabel(s.procID)
}
