// Package pq provides decrease-key min-priority queues used by the search
// algorithms. Two backends share the Queue contract: an array-backed binary
// heap and a Fibonacci heap.
package pq

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrEmptyQueue is returned by Min and ExtractMin on an empty queue.
var ErrEmptyQueue = errors.New("pq: empty queue")

// ErrUnknownKind is returned by ParseKind and New for a name outside Kinds.
var ErrUnknownKind = errors.New("pq: unknown queue kind")

// Queue is a min-priority queue keyed by element identity.
//
// Insert on a present key and DecreasePriority to a value that is not
// strictly smaller than the current one are both no-ops.
type Queue[K comparable, P cmp.Ordered] interface {
	Insert(key K, priority P)
	DecreasePriority(key K, priority P) bool
	Min() (K, error)
	ExtractMin() (K, error)
	Contains(key K) bool
	Priority(key K) (P, bool)
	Clear()
	Len() int
	Empty() bool
}

// Kind names a queue backend.
type Kind string

const (
	Binary    Kind = "binary"
	Fibonacci Kind = "fibonacci"
)

// Kinds lists all supported backends.
var Kinds = []Kind{Binary, Fibonacci}

// ParseKind converts a backend name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Binary, Fibonacci:
		return k, nil
	case "":
		return Binary, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// New returns an empty queue of the given kind. The empty kind is the
// binary heap.
func New[K comparable, P cmp.Ordered](kind Kind) (Queue[K, P], error) {
	switch kind {
	case Binary, "":
		return NewBinaryHeap[K, P](), nil
	case Fibonacci:
		return NewFibonacciHeap[K, P](), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}
