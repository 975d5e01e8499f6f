package pq

import (
	"cmp"
	"math"
)

var logPhi = math.Log((1 + math.Sqrt(5)) / 2)

type fibNode[K comparable, P cmp.Ordered] struct {
	key      K
	priority P

	parent *fibNode[K, P]
	child  *fibNode[K, P]
	left   *fibNode[K, P]
	right  *fibNode[K, P]

	degree int
	marked bool
}

// FibonacciHeap is a min-heap of heap-ordered trees kept in a circular root
// list. Insert and DecreasePriority run in amortized O(1), ExtractMin in
// amortized O(log n).
type FibonacciHeap[K comparable, P cmp.Ordered] struct {
	min   *fibNode[K, P]
	nodes map[K]*fibNode[K, P]
}

// NewFibonacciHeap creates an empty Fibonacci heap.
func NewFibonacciHeap[K comparable, P cmp.Ordered]() *FibonacciHeap[K, P] {
	return &FibonacciHeap[K, P]{nodes: make(map[K]*fibNode[K, P], defaultCapacity)}
}

func (h *FibonacciHeap[K, P]) Len() int    { return len(h.nodes) }
func (h *FibonacciHeap[K, P]) Empty() bool { return len(h.nodes) == 0 }

func (h *FibonacciHeap[K, P]) Contains(key K) bool {
	_, ok := h.nodes[key]
	return ok
}

func (h *FibonacciHeap[K, P]) Priority(key K) (P, bool) {
	n, ok := h.nodes[key]
	if !ok {
		var zero P
		return zero, false
	}
	return n.priority, true
}

func (h *FibonacciHeap[K, P]) Insert(key K, priority P) {
	if _, ok := h.nodes[key]; ok {
		return
	}
	n := &fibNode[K, P]{key: key, priority: priority}
	h.addRoot(n)
	if n.priority < h.min.priority {
		h.min = n
	}
	h.nodes[key] = n
}

func (h *FibonacciHeap[K, P]) DecreasePriority(key K, priority P) bool {
	x, ok := h.nodes[key]
	if !ok || priority >= x.priority {
		return false
	}
	x.priority = priority
	if y := x.parent; y != nil && x.priority < y.priority {
		h.cut(x, y)
		h.cascadingCut(y)
	}
	if x.priority < h.min.priority {
		h.min = x
	}
	return true
}

func (h *FibonacciHeap[K, P]) Min() (K, error) {
	if h.min == nil {
		var zero K
		return zero, ErrEmptyQueue
	}
	return h.min.key, nil
}

func (h *FibonacciHeap[K, P]) ExtractMin() (K, error) {
	z := h.min
	if z == nil {
		var zero K
		return zero, ErrEmptyQueue
	}

	// Children of z become roots.
	for _, c := range siblings(z.child) {
		c.left, c.right = c, c
		h.addRoot(c)
	}
	z.child = nil

	if z.right == z {
		h.min = nil
	} else {
		z.left.right = z.right
		z.right.left = z.left
		h.min = z.right
		h.consolidate()
	}

	delete(h.nodes, z.key)
	return z.key, nil
}

// Clear drops all trees.
func (h *FibonacciHeap[K, P]) Clear() {
	h.min = nil
	clear(h.nodes)
}

// addRoot splices a detached node into the root list next to min.
func (h *FibonacciHeap[K, P]) addRoot(n *fibNode[K, P]) {
	n.parent = nil
	if h.min == nil {
		n.left, n.right = n, n
		h.min = n
		return
	}
	n.left = h.min
	n.right = h.min.right
	h.min.right.left = n
	h.min.right = n
}

// consolidate links roots of equal degree until every root degree is unique,
// then rebuilds the root list and finds the new minimum.
func (h *FibonacciHeap[K, P]) consolidate() {
	table := make([]*fibNode[K, P], degreeBound(len(h.nodes)))

	for _, x := range siblings(h.min) {
		d := x.degree
		for {
			for d >= len(table) {
				table = append(table, nil)
			}
			y := table[d]
			if y == nil {
				break
			}
			if y.priority < x.priority {
				x, y = y, x
			}
			link(y, x)
			table[d] = nil
			d++
		}
		for d >= len(table) {
			table = append(table, nil)
		}
		table[d] = x
	}

	h.min = nil
	for _, n := range table {
		if n == nil {
			continue
		}
		n.left, n.right = n, n
		h.addRoot(n)
		if n.priority < h.min.priority {
			h.min = n
		}
	}
}

// link makes root y a child of root x.
func link[K comparable, P cmp.Ordered](y, x *fibNode[K, P]) {
	y.parent = x
	y.marked = false
	if x.child == nil {
		x.child = y
		y.left, y.right = y, y
	} else {
		y.left = x.child
		y.right = x.child.right
		x.child.right.left = y
		x.child.right = y
	}
	x.degree++
}

// cut moves x from the child list of y to the root list.
func (h *FibonacciHeap[K, P]) cut(x, y *fibNode[K, P]) {
	if x.right == x {
		y.child = nil
	} else {
		x.left.right = x.right
		x.right.left = x.left
		if y.child == x {
			y.child = x.right
		}
	}
	y.degree--
	x.left, x.right = x, x
	x.marked = false
	h.addRoot(x)
}

func (h *FibonacciHeap[K, P]) cascadingCut(y *fibNode[K, P]) {
	for z := y.parent; z != nil; z = y.parent {
		if !y.marked {
			y.marked = true
			return
		}
		h.cut(y, z)
		y = z
	}
}

// siblings snapshots a circular sibling list starting at n.
func siblings[K comparable, P cmp.Ordered](n *fibNode[K, P]) []*fibNode[K, P] {
	if n == nil {
		return nil
	}
	var out []*fibNode[K, P]
	for x := n; ; {
		out = append(out, x)
		x = x.right
		if x == n {
			break
		}
	}
	return out
}

// degreeBound returns floor(log_phi(n)) + 2, an upper bound on the degree of
// any root in a heap of n nodes.
func degreeBound(n int) int {
	if n < 2 {
		return 2
	}
	return int(math.Floor(math.Log(float64(n))/logPhi)) + 2
}
