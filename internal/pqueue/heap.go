// internal/pqueue/heap.go

// Package pqueue implements an array-backed binary heap whose items are
// addressed by an explicit identity, so their priority can be changed in
// place without scanning the heap.
package pqueue

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when extracting from a heap with no items.
	ErrEmpty = errors.New("pqueue: heap is empty")
	// ErrItemNotFound is returned (wrapped) by UpdateKey for an unknown identity.
	ErrItemNotFound = errors.New("pqueue: item not found")
	// ErrNoSetter is returned by UpdateKey when Keys.SetPriority is nil.
	ErrNoSetter = errors.New("pqueue: no priority setter configured")
)

// Keys tells a Heap how to read an item. Priority and Identity are required.
// SetPriority is only needed for UpdateKey; it must return the item carrying
// the new priority (for pointer items it usually mutates and returns the same
// pointer).
type Keys[K comparable, T any] struct {
	Priority    func(T) int
	Identity    func(T) K
	SetPriority func(T, int) T
}

// slot holds one item together with its current position in the heap.
type slot[K comparable, T any] struct {
	item  T
	id    K
	index int
}

// Heap is a binary heap ordered by Keys.Priority. It is not safe for
// concurrent use.
type Heap[K comparable, T any] struct {
	slots []*slot[K, T]
	ids   map[K]*slot[K, T] // identity -> slot, newest insertion wins
	keys  Keys[K, T]
	mode  Mode
}

// New creates an empty heap. It panics if keys.Priority or keys.Identity is nil.
func New[K comparable, T any](keys Keys[K, T], opts ...Option) *Heap[K, T] {
	if keys.Priority == nil || keys.Identity == nil {
		panic("pqueue: Keys.Priority and Keys.Identity must be set")
	}
	o := options{mode: Max}
	for _, opt := range opts {
		opt(&o)
	}
	return &Heap[K, T]{
		ids:  make(map[K]*slot[K, T]),
		keys: keys,
		mode: o.mode,
	}
}

// Mode reports the ordering the heap was built with.
func (h *Heap[K, T]) Mode() Mode { return h.mode }

// Len returns the number of items in the heap.
func (h *Heap[K, T]) Len() int { return len(h.slots) }

// IsEmpty reports whether the heap holds no items.
func (h *Heap[K, T]) IsEmpty() bool { return len(h.slots) == 0 }

// Contains reports whether an item with the given identity is in the heap.
func (h *Heap[K, T]) Contains(id K) bool {
	_, ok := h.ids[id]
	return ok
}

// Insert adds item to the heap. O(log n).
func (h *Heap[K, T]) Insert(item T) {
	s := &slot[K, T]{
		item:  item,
		id:    h.keys.Identity(item),
		index: len(h.slots),
	}
	h.slots = append(h.slots, s)
	h.ids[s.id] = s
	h.siftUp(s.index)
}

// Peek returns the root without removing it. ok is false if the heap is empty.
func (h *Heap[K, T]) Peek() (item T, ok bool) {
	if len(h.slots) == 0 {
		return item, false
	}
	return h.slots[0].item, true
}

// ExtractTop removes and returns the root. O(log n).
func (h *Heap[K, T]) ExtractTop() (T, error) {
	n := len(h.slots)
	if n == 0 {
		var zero T
		return zero, ErrEmpty
	}

	top := h.slots[0]
	last := h.slots[n-1]
	h.slots[n-1] = nil
	h.slots = h.slots[:n-1]

	if n > 1 {
		last.index = 0
		h.slots[0] = last
		h.siftDown(0)
	}

	h.forget(top)
	return top.item, nil
}

// UpdateKey sets a new priority on the item with the given identity and
// restores heap order, whichever direction the priority moved. The heap
// size never changes. An unknown identity yields an error wrapping
// ErrItemNotFound, which callers can treat as "already extracted".
func (h *Heap[K, T]) UpdateKey(id K, priority int) error {
	if h.keys.SetPriority == nil {
		return ErrNoSetter
	}
	s, ok := h.ids[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrItemNotFound, id)
	}

	s.item = h.keys.SetPriority(s.item, priority)
	if !h.siftUp(s.index) {
		h.siftDown(s.index)
	}
	return nil
}

// forget drops the identity entry for a slot that has left the heap, unless
// a newer insertion with the same identity owns it.
func (h *Heap[K, T]) forget(s *slot[K, T]) {
	if cur, ok := h.ids[s.id]; ok && cur == s {
		delete(h.ids, s.id)
	}
	s.index = -1
}

// displaces reports whether the item at i belongs above the item at j.
func (h *Heap[K, T]) displaces(i, j int) bool {
	pi := h.keys.Priority(h.slots[i].item)
	pj := h.keys.Priority(h.slots[j].item)
	if h.mode == Min {
		return pi < pj
	}
	return pi > pj
}

func (h *Heap[K, T]) swap(i, j int) {
	h.slots[i], h.slots[j] = h.slots[j], h.slots[i]
	h.slots[i].index = i
	h.slots[j].index = j
}

// siftUp moves the item at idx toward the root and reports whether it moved.
func (h *Heap[K, T]) siftUp(idx int) bool {
	moved := false
	for idx > 0 {
		parent := (idx - 1) / 2
		if !h.displaces(idx, parent) {
			break
		}
		h.swap(idx, parent)
		idx = parent
		moved = true
	}
	return moved
}

// siftDown moves the item at idx toward the leaves. On a tie between the
// two children the left one is preferred.
func (h *Heap[K, T]) siftDown(idx int) {
	n := len(h.slots)
	for {
		left := 2*idx + 1
		if left >= n {
			return
		}
		child := left
		if right := left + 1; right < n && h.displaces(right, left) {
			child = right
		}
		if !h.displaces(child, idx) {
			return
		}
		h.swap(idx, child)
		idx = child
	}
}
