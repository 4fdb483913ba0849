package list

import (
	"fmt"
	"iter"
	"slices"
)

// IndexedList is a doubly linked list with index-based access.
//
// Indices count from the head when non-negative and back from the tail when
// negative (-1 is the last element). Accessors never fail on out-of-range
// indices: At reports absence, Slice and Splice clamp into [0, Len].
//
// Concat and Splice move nodes between lists. A list passed to Concat is
// left empty; callers must not expect it to still hold its elements.
//
// This type is not safe for concurrent use.
// The zero value is an empty list ready to use.
type IndexedList[T any] struct {
	head *Node[T]
	tail *Node[T]
	size int
}

// New returns an empty list.
func New[T any]() *IndexedList[T] { return &IndexedList[T]{} }

// From builds a list holding the elements of seq in order.
func From[T any](seq []T) *IndexedList[T] {
	l := New[T]()
	for _, v := range seq {
		l.Push(v)
	}
	return l
}

// FromSeq builds a list from a finite iterator.
func FromSeq[T any](seq iter.Seq[T]) *IndexedList[T] {
	l := New[T]()
	for v := range seq {
		l.Push(v)
	}
	return l
}

// Concat joins lists in argument order and returns the result.
//
// Nodes are relinked, not copied: each boundary rewrites exactly two links.
// Every argument is reset to empty, except when a single non-empty list
// remains, which is returned as-is. With no non-empty arguments a fresh empty
// list is returned. Nil arguments and repeats of a list already joined are
// skipped.
func Concat[T any](lists ...*IndexedList[T]) *IndexedList[T] {
	var parts []*IndexedList[T]
	for _, l := range lists {
		if l != nil && l.size > 0 && !slices.Contains(parts, l) {
			parts = append(parts, l)
		}
	}
	switch len(parts) {
	case 0:
		for _, l := range lists {
			if l != nil {
				l.reset()
			}
		}
		return New[T]()
	case 1:
		return parts[0]
	}

	out := &IndexedList[T]{head: parts[0].head, tail: parts[0].tail, size: parts[0].size}
	for _, p := range parts[1:] {
		out.tail.next = p.head
		p.head.prev = out.tail
		out.tail = p.tail
		out.size += p.size
	}
	for _, l := range lists {
		if l != nil {
			l.reset()
		}
	}
	return out
}

// Len returns the number of elements.
func (l *IndexedList[T]) Len() int { return l.size }

// Front returns the head node, or nil if the list is empty.
func (l *IndexedList[T]) Front() *Node[T] { return l.head }

// Back returns the tail node, or nil if the list is empty.
func (l *IndexedList[T]) Back() *Node[T] { return l.tail }

// At returns the element at index i. Negative i counts from the tail.
// The walk starts from whichever end is closer to i.
func (l *IndexedList[T]) At(i int) (T, bool) {
	n := l.nodeAt(l.normalize(i))
	if n == nil {
		var zero T
		return zero, false
	}
	return n.value, true
}

// Slice returns a copy of the elements in [start, end) after clamping.
//
// The walk runs backward from the tail when start lies farther from the head
// than end lies from the tail, forward from the head otherwise.
func (l *IndexedList[T]) Slice(start, end int) []T {
	start, end = l.clamp(start), l.clamp(end)
	if start >= end {
		return []T{}
	}
	out := make([]T, end-start)

	if start > l.size-end {
		n := l.tail
		for i := l.size - 1; i >= end; i-- {
			n = n.prev
		}
		for i := end - 1; i >= start; i-- {
			out[i-start] = n.value
			n = n.prev
		}
		return out
	}

	n := l.head
	for i := 0; i < start; i++ {
		n = n.next
	}
	for i := range out {
		out[i] = n.value
		n = n.next
	}
	return out
}

// SliceFrom is Slice(start, Len()).
func (l *IndexedList[T]) SliceFrom(start int) []T { return l.Slice(start, l.size) }

// Values returns a copy of all elements in list order.
func (l *IndexedList[T]) Values() []T { return l.Slice(0, l.size) }

// Push appends v at the tail and returns the new length.
func (l *IndexedList[T]) Push(v T) int {
	n := &Node[T]{value: v, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.size++
	return l.size
}

// Unshift prepends v at the head and returns the new length.
func (l *IndexedList[T]) Unshift(v T) int {
	n := &Node[T]{value: v, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.size++
	return l.size
}

// Pop removes and returns the tail element.
func (l *IndexedList[T]) Pop() (T, bool) {
	n := l.tail
	if n == nil {
		var zero T
		return zero, false
	}
	if l.size == 1 {
		l.reset()
		return n.value, true
	}
	l.tail = n.prev
	l.tail.next = nil
	n.prev = nil
	l.size--
	return n.value, true
}

// Shift removes and returns the head element.
func (l *IndexedList[T]) Shift() (T, bool) {
	n := l.head
	if n == nil {
		var zero T
		return zero, false
	}
	if l.size == 1 {
		l.reset()
		return n.value, true
	}
	l.head = n.next
	l.head.prev = nil
	n.next = nil
	l.size--
	return n.value, true
}

// Splice removes deleteCount elements starting at start, inserts items in
// their place and returns the removed elements.
//
// The list is cut into three runs (before start, the removed run, after it);
// the removed run is detached and the rest is rejoined with Concat around a
// list built from items. deleteCount <= 0 with items is a pure insertion.
func (l *IndexedList[T]) Splice(start, deleteCount int, items ...T) []T {
	start = l.clamp(start)
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > l.size-start {
		deleteCount = l.size - start
	}
	if deleteCount == 0 && len(items) == 0 {
		return []T{}
	}

	// Boundary nodes are located before any link is cut.
	first := l.nodeAt(start)
	after := l.nodeAt(start + deleteCount)

	var left, middle, right IndexedList[T]
	if start > 0 {
		left.head = l.head
		left.tail = l.tail
		if first != nil {
			left.tail = first.prev
		}
		left.size = start
	}
	if deleteCount > 0 {
		middle.head = first
		middle.tail = l.tail
		if after != nil {
			middle.tail = after.prev
		}
		middle.size = deleteCount
	}
	if after != nil {
		right.head = after
		right.tail = l.tail
		right.size = l.size - start - deleteCount
	}

	if left.tail != nil {
		left.tail.next = nil
	}
	if middle.head != nil {
		middle.head.prev = nil
		middle.tail.next = nil
	}
	if right.head != nil {
		right.head.prev = nil
	}
	l.reset()

	l.adopt(Concat(&left, From(items), &right))
	return middle.Values()
}

// IndexFunc returns the index of the first element satisfying f, or -1.
func (l *IndexedList[T]) IndexFunc(f func(T) bool) int {
	i := 0
	for n := l.head; n != nil; n = n.next {
		if f(n.value) {
			return i
		}
		i++
	}
	return -1
}

// All iterates the elements from head to tail. Every call to the returned
// sequence starts again from the current head.
func (l *IndexedList[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Backward iterates the elements from tail to head.
func (l *IndexedList[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.tail; n != nil; n = n.prev {
			if !yield(n.value) {
				return
			}
		}
	}
}

// String formats the list like a slice.
func (l *IndexedList[T]) String() string { return fmt.Sprint(l.Values()) }

// -------------------- internals --------------------

// normalize maps a possibly negative index to a head-relative one.
// The result may still be out of range.
func (l *IndexedList[T]) normalize(i int) int {
	if i < 0 {
		return i + l.size
	}
	return i
}

// clamp normalizes i and bounds it to [0, size].
func (l *IndexedList[T]) clamp(i int) int {
	i = l.normalize(i)
	if i < 0 {
		return 0
	}
	if i > l.size {
		return l.size
	}
	return i
}

// nodeAt returns the node at head-relative index i, or nil when out of range.
func (l *IndexedList[T]) nodeAt(i int) *Node[T] {
	if i < 0 || i >= l.size {
		return nil
	}
	if i <= l.size-1-i {
		n := l.head
		for ; i > 0; i-- {
			n = n.next
		}
		return n
	}
	n := l.tail
	for j := l.size - 1; j > i; j-- {
		n = n.prev
	}
	return n
}

// adopt takes ownership of other's nodes and leaves other empty.
func (l *IndexedList[T]) adopt(other *IndexedList[T]) {
	if other == l {
		return
	}
	l.head, l.tail, l.size = other.head, other.tail, other.size
	other.reset()
}

func (l *IndexedList[T]) reset() {
	l.head, l.tail, l.size = nil, nil, 0
}
