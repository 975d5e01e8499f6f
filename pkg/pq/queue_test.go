package pq

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends() map[Kind]func() Queue[int, float64] {
	return map[Kind]func() Queue[int, float64]{
		Binary:    func() Queue[int, float64] { return NewBinaryHeap[int, float64]() },
		Fibonacci: func() Queue[int, float64] { return NewFibonacciHeap[int, float64]() },
	}
}

func TestEmptyQueue(t *testing.T) {
	for kind, mk := range backends() {
		t.Run(string(kind), func(t *testing.T) {
			q := mk()
			assert.True(t, q.Empty())
			assert.Equal(t, 0, q.Len())

			_, err := q.Min()
			assert.ErrorIs(t, err, ErrEmptyQueue)
			_, err = q.ExtractMin()
			assert.ErrorIs(t, err, ErrEmptyQueue)
		})
	}
}

func TestInsertPresentKeyIsNoop(t *testing.T) {
	for kind, mk := range backends() {
		t.Run(string(kind), func(t *testing.T) {
			q := mk()
			q.Insert(1, 5)
			q.Insert(1, 1)

			assert.Equal(t, 1, q.Len())
			p, ok := q.Priority(1)
			require.True(t, ok)
			assert.Equal(t, 5.0, p)
		})
	}
}

func TestDecreasePriority(t *testing.T) {
	for kind, mk := range backends() {
		t.Run(string(kind), func(t *testing.T) {
			q := mk()
			q.Insert(1, 10)
			q.Insert(2, 20)
			q.Insert(3, 30)

			assert.False(t, q.DecreasePriority(1, 15), "worse priority must be ignored")
			assert.False(t, q.DecreasePriority(1, 10), "equal priority must be ignored")
			assert.False(t, q.DecreasePriority(42, 0), "absent key must be ignored")
			p, _ := q.Priority(1)
			assert.Equal(t, 10.0, p)

			assert.True(t, q.DecreasePriority(3, 5))
			k, err := q.Min()
			require.NoError(t, err)
			assert.Equal(t, 3, k)
			assert.Equal(t, 3, q.Len())
		})
	}
}

func TestExtractMinOrder(t *testing.T) {
	for kind, mk := range backends() {
		t.Run(string(kind), func(t *testing.T) {
			q := mk()
			for i, p := range []float64{7, 3, 9, 1, 4, 8, 2, 6, 5, 0} {
				q.Insert(i, p)
			}
			var got []int
			for !q.Empty() {
				before := q.Len()
				k, err := q.ExtractMin()
				require.NoError(t, err)
				assert.Equal(t, before-1, q.Len())
				assert.False(t, q.Contains(k))
				got = append(got, k)
			}
			// Keys in order of ascending priority.
			assert.Equal(t, []int{9, 3, 6, 1, 4, 8, 7, 0, 5, 2}, got)
		})
	}
}

func TestClear(t *testing.T) {
	for kind, mk := range backends() {
		t.Run(string(kind), func(t *testing.T) {
			q := mk()
			for i := range 10 {
				q.Insert(i, float64(i))
			}
			q.Clear()
			assert.True(t, q.Empty())
			assert.False(t, q.Contains(3))

			q.Insert(3, 1)
			k, err := q.ExtractMin()
			require.NoError(t, err)
			assert.Equal(t, 3, k)
		})
	}
}

// TestRandomOperations drives both backends with the same random sequence of
// inserts, decreases and extracts, and checks every extract against a naive
// reference map.
func TestRandomOperations(t *testing.T) {
	for kind, mk := range backends() {
		t.Run(string(kind), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(7, 11))
			q := mk()
			ref := make(map[int]float64)

			for step := range 5000 {
				switch op := rng.IntN(10); {
				case op < 5:
					k := rng.IntN(400)
					p := float64(rng.IntN(1000))
					q.Insert(k, p)
					if _, ok := ref[k]; !ok {
						ref[k] = p
					}
				case op < 8:
					if len(ref) == 0 {
						continue
					}
					k := rng.IntN(400)
					p := float64(rng.IntN(1000))
					cur, present := ref[k]
					changed := q.DecreasePriority(k, p)
					want := present && p < cur
					require.Equal(t, want, changed, "step %d", step)
					if want {
						ref[k] = p
					}
				default:
					if len(ref) == 0 {
						_, err := q.ExtractMin()
						require.ErrorIs(t, err, ErrEmptyQueue)
						continue
					}
					k, err := q.ExtractMin()
					require.NoError(t, err)
					minP := minPriority(ref)
					require.Equal(t, minP, ref[k], "step %d: extracted non-minimum", step)
					delete(ref, k)
				}
				require.Equal(t, len(ref), q.Len())
			}

			var drained []float64
			for !q.Empty() {
				k, err := q.ExtractMin()
				require.NoError(t, err)
				drained = append(drained, ref[k])
			}
			assert.True(t, slices.IsSorted(drained))
		})
	}
}

func minPriority(m map[int]float64) float64 {
	first := true
	var best float64
	for _, p := range m {
		if first || p < best {
			best, first = p, false
		}
	}
	return best
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("fibonacci")
	require.NoError(t, err)
	assert.Equal(t, Fibonacci, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Binary, k)

	_, err = ParseKind("pairing")
	assert.ErrorIs(t, err, ErrUnknownKind)

}

func TestNew(t *testing.T) {
	q, err := New[string, int](Fibonacci)
	require.NoError(t, err)
	assert.IsType(t, &FibonacciHeap[string, int]{}, q)

	q, err = New[string, int]("")
	require.NoError(t, err)
	assert.IsType(t, &BinaryHeap[string, int]{}, q)

	_, err = New[string, int]("pairing")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func BenchmarkDecreaseKey(b *testing.B) {
	for kind, mk := range backends() {
		b.Run(string(kind), func(b *testing.B) {
			for b.Loop() {
				q := mk()
				for i := range 1024 {
					q.Insert(i, float64(2048+i))
				}
				for i := range 1024 {
					q.DecreasePriority(i, float64(1024-i))
				}
				for !q.Empty() {
					q.ExtractMin()
				}
			}
		})
	}
}
