package scan

import (
	"container/heap"
	"sort"
	"time"
)

// Entry is one row of a top-k list.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Owner   string    `json:"owner"`
	Group   string    `json:"group"`
	Perms   string    `json:"perms"`
}

// Orderings for the three trackers. Each reports whether a ranks
// strictly before b in the final output.
func LargerSize(a, b Entry) bool { return a.Size > b.Size }
func OlderMtime(a, b Entry) bool { return a.ModTime.Before(b.ModTime) }
func NewerMtime(a, b Entry) bool { return a.ModTime.After(b.ModTime) }

// Tracker keeps the best entries seen so far under a bounded working
// capacity. It is a min-heap on the ordering: the root is always the
// weakest retained entry, evicted when a better one arrives.
type Tracker struct {
	h entryHeap
}

// NewTracker builds a tracker holding at most capacity entries ranked
// by better.
func NewTracker(capacity int, better func(a, b Entry) bool) *Tracker {
	if capacity < 1 {
		capacity = 1
	}

	return &Tracker{
		h: entryHeap{
			capacity: capacity,
			better:   better,
			items:    make([]Entry, 0, capacity),
		},
	}
}

// Capacity returns the working buffer limit.
func (t *Tracker) Capacity() int {
	return t.h.capacity
}

// Len returns the number of retained entries.
func (t *Tracker) Len() int {
	return len(t.h.items)
}

// Offer submits one entry. Entries ranking below the current weakest
// retained entry are dropped once the buffer is full.
func (t *Tracker) Offer(e Entry) {
	if len(t.h.items) < t.h.capacity {
		heap.Push(&t.h, e)

		return
	}

	if t.h.better(e, t.h.items[0]) {
		t.h.items[0] = e
		heap.Fix(&t.h, 0)
	}
}

// Finalize sorts the retained entries by the ordering and returns the
// first k. The sort is stable so equal keys keep insertion order.
func (t *Tracker) Finalize(k int) []Entry {
	out := make([]Entry, len(t.h.items))
	copy(out, t.h.items)

	sort.SliceStable(out, func(i, j int) bool {
		return t.h.better(out[i], out[j])
	})

	if k >= 0 && len(out) > k {
		out = out[:k]
	}

	return out
}

// entryHeap orders the buffer weakest-first so the root is the
// eviction candidate.
type entryHeap struct {
	capacity int
	better   func(a, b Entry) bool
	items    []Entry
}

func (h *entryHeap) Len() int { return len(h.items) }

func (h *entryHeap) Less(i, j int) bool {
	return h.better(h.items[j], h.items[i])
}

func (h *entryHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *entryHeap) Push(x any) {
	h.items = append(h.items, x.(Entry))
}

func (h *entryHeap) Pop() any {
	last := len(h.items) - 1
	e := h.items[last]
	h.items = h.items[:last]

	return e
}
