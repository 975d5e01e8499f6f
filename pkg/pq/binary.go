package pq

import "cmp"

const defaultCapacity = 64

type entry[K comparable, P cmp.Ordered] struct {
	key      K
	priority P
}

// BinaryHeap is an array-backed min-heap with a key→slot index for
// O(log n) decrease-key.
type BinaryHeap[K comparable, P cmp.Ordered] struct {
	items []entry[K, P]
	index map[K]int
}

// NewBinaryHeap creates an empty binary heap.
func NewBinaryHeap[K comparable, P cmp.Ordered]() *BinaryHeap[K, P] {
	return &BinaryHeap[K, P]{
		items: make([]entry[K, P], 0, defaultCapacity),
		index: make(map[K]int, defaultCapacity),
	}
}

func (h *BinaryHeap[K, P]) Len() int    { return len(h.items) }
func (h *BinaryHeap[K, P]) Empty() bool { return len(h.items) == 0 }

func (h *BinaryHeap[K, P]) Contains(key K) bool {
	_, ok := h.index[key]
	return ok
}

func (h *BinaryHeap[K, P]) Priority(key K) (P, bool) {
	i, ok := h.index[key]
	if !ok {
		var zero P
		return zero, false
	}
	return h.items[i].priority, true
}

func (h *BinaryHeap[K, P]) Insert(key K, priority P) {
	if _, ok := h.index[key]; ok {
		return
	}
	h.items = append(h.items, entry[K, P]{key, priority})
	h.index[key] = len(h.items) - 1
	h.siftUp(len(h.items) - 1)
}

func (h *BinaryHeap[K, P]) DecreasePriority(key K, priority P) bool {
	i, ok := h.index[key]
	if !ok || priority >= h.items[i].priority {
		return false
	}
	h.items[i].priority = priority
	h.siftUp(i)
	return true
}

func (h *BinaryHeap[K, P]) Min() (K, error) {
	if len(h.items) == 0 {
		var zero K
		return zero, ErrEmptyQueue
	}
	return h.items[0].key, nil
}

func (h *BinaryHeap[K, P]) ExtractMin() (K, error) {
	n := len(h.items)
	if n == 0 {
		var zero K
		return zero, ErrEmptyQueue
	}
	top := h.items[0]
	h.swap(0, n-1)
	h.items = h.items[:n-1]
	delete(h.index, top.key)
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top.key, nil
}

// Clear empties the heap but keeps its backing storage.
func (h *BinaryHeap[K, P]) Clear() {
	h.items = h.items[:0]
	clear(h.index)
}

func (h *BinaryHeap[K, P]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].key] = i
	h.index[h.items[j].key] = j
}

func (h *BinaryHeap[K, P]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].priority >= h.items[parent].priority {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *BinaryHeap[K, P]) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.items[left].priority < h.items[smallest].priority {
			smallest = left
		}
		if right < n && h.items[right].priority < h.items[smallest].priority {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.swap(i, smallest)
		i = smallest
	}
}
