// Package metrics maintains the per-day counter buckets behind the
// hydration and pomodoro displays and derives today's counters across
// day boundaries and reloads.
package metrics

import "github.com/zenfocus/zenfocus/internal/model"

// History wraps an ordered bucket list with a date index so lookups are
// O(1) while the slice stays the persisted and display form. At most
// one bucket exists per date: all writes go through find-or-append.
type History struct {
	buckets []model.Bucket
	byDate  map[string]int
}

// NewHistory builds a History over existing buckets. Duplicate dates,
// should corrupt data ever contain them, collapse onto the last entry.
func NewHistory(buckets []model.Bucket) *History {
	h := &History{
		buckets: make([]model.Bucket, len(buckets)),
		byDate:  make(map[string]int, len(buckets)),
	}
	copy(h.buckets, buckets)
	for i, b := range h.buckets {
		h.byDate[b.Date] = i
	}
	return h
}

// Get returns the count recorded for date and whether a bucket exists.
func (h *History) Get(date string) (int, bool) {
	i, ok := h.byDate[date]
	if !ok {
		return 0, false
	}
	return h.buckets[i].Count, true
}

// Increment adds one to the bucket for date, appending a fresh bucket
// when none exists, and returns the new count.
func (h *History) Increment(date string) int {
	if i, ok := h.byDate[date]; ok {
		h.buckets[i].Count++
		return h.buckets[i].Count
	}
	h.buckets = append(h.buckets, model.Bucket{Date: date, Count: 1})
	h.byDate[date] = len(h.buckets) - 1
	return 1
}

// Total sums every bucket in the history.
func (h *History) Total() int {
	total := 0
	for _, b := range h.buckets {
		total += b.Count
	}
	return total
}

// DaysAtOrAbove counts the days whose bucket reached the given target.
func (h *History) DaysAtOrAbove(target int) int {
	if target <= 0 {
		return 0
	}
	days := 0
	for _, b := range h.buckets {
		if b.Count >= target {
			days++
		}
	}
	return days
}

// Buckets returns the ordered bucket list for persistence or display.
func (h *History) Buckets() []model.Bucket {
	out := make([]model.Bucket, len(h.buckets))
	copy(out, h.buckets)
	return out
}
