// Package pqueue provides an indexed binary min-heap used as the open set of
// both A* engines.
package pqueue

import (
	"cmp"
	"container/heap"
	"errors"
)

// ErrEmptyQueue is returned by ExtractMin when the heap holds no items.
var ErrEmptyQueue = errors.New("priority queue is empty")

// entry is a single heap slot. seq records first insertion so equal
// priorities pop in insertion order.
type entry[I comparable, P cmp.Ordered] struct {
	item     I
	priority P
	seq      uint64
	index    int
}

// entries implements heap.Interface and keeps the side index in sync on every swap.
type entries[I comparable, P cmp.Ordered] struct {
	slots   []*entry[I, P]
	indexOf map[I]*entry[I, P]
}

func (e *entries[I, P]) Len() int { return len(e.slots) }

func (e *entries[I, P]) Less(i, j int) bool {
	a, b := e.slots[i], e.slots[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (e *entries[I, P]) Swap(i, j int) {
	e.slots[i], e.slots[j] = e.slots[j], e.slots[i]
	e.slots[i].index = i
	e.slots[j].index = j
}

func (e *entries[I, P]) Push(x any) {
	slot := x.(*entry[I, P])
	slot.index = len(e.slots)
	e.slots = append(e.slots, slot)
	e.indexOf[slot.item] = slot
}

func (e *entries[I, P]) Pop() any {
	old := e.slots
	n := len(old)
	slot := old[n-1]
	old[n-1] = nil
	slot.index = -1
	e.slots = old[:n-1]
	delete(e.indexOf, slot.item)
	return slot
}

// IndexedMinHeap is an array-backed binary heap with an item -> slot index,
// giving O(log n) upsert and extract-min with at most one entry per item.
// It is not safe for concurrent use; each search owns its own heap.
type IndexedMinHeap[I comparable, P cmp.Ordered] struct {
	entries entries[I, P]
	nextSeq uint64
	ops     int
}

// New creates an empty heap. sizeHint pre-allocates storage and may be zero.
func New[I comparable, P cmp.Ordered](sizeHint int) *IndexedMinHeap[I, P] {
	return &IndexedMinHeap[I, P]{
		entries: entries[I, P]{
			slots:   make([]*entry[I, P], 0, sizeHint),
			indexOf: make(map[I]*entry[I, P], sizeHint),
		},
	}
}

// Upsert inserts item when absent. When item is present and priority is
// strictly lower than the stored one, the priority is lowered and the entry
// sifted up. Otherwise the call is a no-op. It reports whether the heap changed.
func (h *IndexedMinHeap[I, P]) Upsert(item I, priority P) bool {
	h.ops++
	if slot, ok := h.entries.indexOf[item]; ok {
		if priority >= slot.priority {
			return false
		}
		slot.priority = priority
		// priority only decreases here, so Fix sifts up
		heap.Fix(&h.entries, slot.index)
		return true
	}

	heap.Push(&h.entries, &entry[I, P]{item: item, priority: priority, seq: h.nextSeq})
	h.nextSeq++
	return true
}

// ExtractMin removes and returns the item with the lowest priority.
func (h *IndexedMinHeap[I, P]) ExtractMin() (I, P, error) {
	if h.entries.Len() == 0 {
		var zeroItem I
		var zeroPriority P
		return zeroItem, zeroPriority, ErrEmptyQueue
	}
	h.ops++
	slot := heap.Pop(&h.entries).(*entry[I, P])
	return slot.item, slot.priority, nil
}

// Priority returns the stored priority of item, if present.
func (h *IndexedMinHeap[I, P]) Priority(item I) (P, bool) {
	slot, ok := h.entries.indexOf[item]
	if !ok {
		var zero P
		return zero, false
	}
	return slot.priority, true
}

// Contains reports whether item is currently queued.
func (h *IndexedMinHeap[I, P]) Contains(item I) bool {
	_, ok := h.entries.indexOf[item]
	return ok
}

// IsEmpty reports whether the heap holds no items.
func (h *IndexedMinHeap[I, P]) IsEmpty() bool { return h.entries.Len() == 0 }

// Len returns the number of queued items.
func (h *IndexedMinHeap[I, P]) Len() int { return h.entries.Len() }

// Ops returns the number of Upsert and successful ExtractMin calls made so far.
func (h *IndexedMinHeap[I, P]) Ops() int { return h.ops }
