package world

import (
	"fmt"
	"sort"
	"strings"
)

// World is an assignment of values to network nodes, keyed by node index.
// It may be partial (conditioning evidence) or complete (one value per node).
// Discrete values are whole numbers; continuous values are arbitrary floats.
type World struct {
	data map[int]float64
}

// New creates an empty world.
func New() *World {
	return &World{data: make(map[int]float64)}
}

// FromMap creates a world from an index-to-value map. The map is copied.
func FromMap(values map[int]float64) *World {
	w := &World{data: make(map[int]float64, len(values))}
	for index, value := range values {
		w.data[index] = value
	}
	return w
}

// Has reports whether the node at index has a value.
func (w *World) Has(index int) bool {
	_, ok := w.data[index]
	return ok
}

// Value returns the value assigned to the node at index.
func (w *World) Value(index int) (float64, bool) {
	value, ok := w.data[index]
	return value, ok
}

// Set assigns a value in place, replacing any existing value.
func (w *World) Set(index int, value float64) {
	w.data[index] = value
}

// Extend returns a copy of w with index set to value. The receiver is left
// unchanged, so evidence passed in by a caller is never mutated.
func (w *World) Extend(index int, value float64) *World {
	next := w.Copy()
	next.data[index] = value
	return next
}

// Copy returns an independent copy of the world.
func (w *World) Copy() *World {
	next := &World{data: make(map[int]float64, len(w.data))}
	for index, value := range w.data {
		next.data[index] = value
	}
	return next
}

// Len returns the number of assigned nodes.
func (w *World) Len() int {
	return len(w.data)
}

// Indices returns the assigned node indices in ascending order.
func (w *World) Indices() []int {
	indices := make([]int, 0, len(w.data))
	for index := range w.data {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

// Equal reports whether two worlds assign exactly the same values.
func (w *World) Equal(other *World) bool {
	if len(w.data) != len(other.data) {
		return false
	}
	for index, value := range w.data {
		otherValue, ok := other.data[index]
		if !ok || otherValue != value {
			return false
		}
	}
	return true
}

// String renders the assignment as {index: value, ...} in index order.
func (w *World) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, index := range w.Indices() {
		if i > 0 {
			b.WriteString(", ")
		}
		value := w.data[index]
		if value == float64(int64(value)) {
			fmt.Fprintf(&b, "%d: %d", index, int64(value))
		} else {
			fmt.Fprintf(&b, "%d: %g", index, value)
		}
	}
	b.WriteByte('}')
	return b.String()
}
