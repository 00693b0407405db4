// Package reconcile collapses paginated, multi-source step records into a
// single trustworthy aggregate: deduplicated by record ID, filtered to one
// preferred source, bucketed by local calendar hour.
package reconcile

import (
	"time"

	"github.com/sadopc/stepr/internal/health"
	"github.com/sadopc/stepr/internal/timeutil"
)

// Aggregate is the result of reconciling a record sequence.
type Aggregate struct {
	// Total is the authoritative step count: first-seen records from the
	// preferred source only.
	Total int64

	// ByHour maps local hour index (0..23) to preferred-source steps.
	ByHour map[int]int64

	// BySource maps every source ID to its first-seen step total.
	// Diagnostic only; non-preferred sources never reach Total.
	BySource map[string]int64

	// Duplicates counts records dropped because their ID was already seen.
	Duplicates int

	// Dropped counts malformed records (empty ID or negative count).
	Dropped int
}

// Reconciler accumulates records page by page. If an upstream page fetch
// fails, the aggregate built so far remains valid; callers decide whether to
// use the partial result.
type Reconciler struct {
	preferred string
	loc       *time.Location
	seen      map[string]struct{}
	agg       Aggregate
}

// New creates a Reconciler that trusts preferredSource and buckets hours in
// loc.
func New(preferredSource string, loc *time.Location) *Reconciler {
	return &Reconciler{
		preferred: preferredSource,
		loc:       loc,
		seen:      make(map[string]struct{}),
		agg: Aggregate{
			ByHour:   make(map[int]int64),
			BySource: make(map[string]int64),
		},
	}
}

// Add feeds one record into the aggregate. Duplicate IDs and malformed
// records are counted and otherwise ignored.
func (r *Reconciler) Add(rec health.Record) {
	if rec.ID == "" || rec.Count < 0 {
		r.agg.Dropped++
		return
	}
	if _, ok := r.seen[rec.ID]; ok {
		r.agg.Duplicates++
		return
	}
	r.seen[rec.ID] = struct{}{}

	r.agg.BySource[rec.SourceID] += rec.Count

	if rec.SourceID != r.preferred {
		return
	}
	r.agg.Total += rec.Count
	// A record spanning an hour boundary is attributed entirely to the hour
	// of its start time. Known approximation inherited from the provider.
	r.agg.ByHour[timeutil.HourIndex(rec.StartTime, r.loc)] += rec.Count
}

// Result returns the aggregate accumulated so far. Maps are copies; the
// Reconciler can keep accepting records afterwards.
func (r *Reconciler) Result() Aggregate {
	out := r.agg
	out.ByHour = make(map[int]int64, len(r.agg.ByHour))
	for h, n := range r.agg.ByHour {
		out.ByHour[h] = n
	}
	out.BySource = make(map[string]int64, len(r.agg.BySource))
	for s, n := range r.agg.BySource {
		out.BySource[s] = n
	}
	return out
}

// Reconcile runs the whole sequence through a fresh Reconciler.
func Reconcile(records []health.Record, preferredSource string, loc *time.Location) Aggregate {
	r := New(preferredSource, loc)
	for _, rec := range records {
		r.Add(rec)
	}
	return r.Result()
}
