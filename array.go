package foundation

import "fmt"

const defaultArrayCapacity = 16

// Array is a growable sequence with an explicit capacity policy:
// on overflow the capacity becomes max(needed, cap*2), or 16 for an empty array.
//
// The zero value is an empty array that has never been grown.
// A nil *Array answers Size, Capacity and IsEmpty.
type Array[T any] struct {
	data []T
}

// NewArray returns an array with room for capacity elements.
func NewArray[T any](capacity int) *Array[T] {
	a := &Array[T]{}
	if capacity > 0 {
		a.data = make([]T, 0, capacity)
	}
	return a
}

func growCapacity(current, needed int) int {
	next := defaultArrayCapacity
	if current > 0 {
		next = current * 2
	}
	return max(needed, next)
}

// Size returns the number of elements.
func (a *Array[T]) Size() int {
	if a == nil {
		return 0
	}
	return len(a.data)
}

// Capacity returns the number of elements the array holds without growing.
func (a *Array[T]) Capacity() int {
	if a == nil {
		return 0
	}
	return cap(a.data)
}

// IsEmpty reports whether the array has no elements.
func (a *Array[T]) IsEmpty() bool {
	return a.Size() == 0
}

// Reserve grows the capacity to hold at least n elements.
// Existing elements keep their order.
func (a *Array[T]) Reserve(n int) {
	if n <= cap(a.data) {
		return
	}
	data := make([]T, len(a.data), growCapacity(cap(a.data), n))
	copy(data, a.data)
	a.data = data
}

// Resize sets the size to n. New elements are zero values.
func (a *Array[T]) Resize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("foundation: negative array size %d", n))
	}
	old := len(a.data)
	a.Reserve(n)
	a.data = a.data[:n]
	if n > old {
		clear(a.data[old:n])
	}
}

// PushBack appends v.
func (a *Array[T]) PushBack(v T) {
	if len(a.data) == cap(a.data) {
		a.Reserve(len(a.data) + 1)
	}
	a.data = append(a.data, v)
}

// PushFront inserts v at index 0.
func (a *Array[T]) PushFront(v T) {
	a.Insert(0, v)
}

// PushArray appends every element of other in order, growing at most once.
func (a *Array[T]) PushArray(other *Array[T]) {
	if other.IsEmpty() {
		return
	}
	a.Reserve(len(a.data) + len(other.data))
	a.data = append(a.data, other.data...)
}

// Insert places v at index i, shifting the tail up by one.
func (a *Array[T]) Insert(i int, v T) {
	n := len(a.data)
	if i < 0 || i > n {
		panic(fmt.Sprintf("foundation: insert index %d out of range [0:%d]", i, n))
	}
	a.Reserve(n + 1)
	a.data = a.data[:n+1]
	copy(a.data[i+1:], a.data[i:n])
	a.data[i] = v
}

// Erase removes the element at index i, shifting the tail down by one.
func (a *Array[T]) Erase(i int) {
	a.EraseRange(i, i+1)
}

// EraseRange removes the elements in [i, j).
func (a *Array[T]) EraseRange(i, j int) {
	n := len(a.data)
	if i < 0 || j > n || i > j {
		panic(fmt.Sprintf("foundation: erase range [%d:%d] out of range [0:%d]", i, j, n))
	}
	copy(a.data[i:], a.data[j:])
	clear(a.data[n-(j-i):])
	a.data = a.data[:n-(j-i)]
}

// Pop removes and returns the last element.
// It returns false on an empty array.
func (a *Array[T]) Pop() (v T, ok bool) {
	n := len(a.data)
	if n == 0 {
		return v, false
	}
	v = a.data[n-1]
	clear(a.data[n-1:])
	a.data = a.data[:n-1]
	return v, true
}

// At returns the element at index i.
func (a *Array[T]) At(i int) T {
	return a.data[i]
}

// Set replaces the element at index i.
func (a *Array[T]) Set(i int, v T) {
	a.data[i] = v
}

// Back returns the last element.
func (a *Array[T]) Back() (v T, ok bool) {
	if len(a.data) == 0 {
		return v, false
	}
	return a.data[len(a.data)-1], true
}

// Slice returns the elements as a slice sharing the array's storage.
// The slice is invalidated by the next growth.
func (a *Array[T]) Slice() []T {
	if a == nil {
		return nil
	}
	return a.data
}

// All calls f for each element in order until f returns false.
func (a *Array[T]) All(f func(int, T) bool) {
	if a == nil {
		return
	}
	for i, v := range a.data {
		if !f(i, v) {
			return
		}
	}
}

// Clear removes every element and keeps the capacity.
func (a *Array[T]) Clear() {
	clear(a.data)
	a.data = a.data[:0]
}

// Free releases the storage; the array returns to its never-grown state.
func (a *Array[T]) Free() {
	a.data = nil
}
