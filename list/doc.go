// Package list provides IndexedList, a generic doubly linked list with
// index-based access.
//
// Besides O(1) Push/Pop/Unshift/Shift it supports negative indices (counted
// from the tail), clamped range queries and structural splicing:
//
//	l := list.From([]string{"a", "b", "c", "d"})
//	v, _ := l.At(-1)          // "d"
//	mid := l.Slice(1, 3)      // ["b" "c"]
//	gone := l.Splice(0, 2)    // ["a" "b"], l is now [c d]
//	all := list.Concat(l, list.From([]string{"e"}))
//
// Index lookups walk from whichever end is closer, so access near either end
// stays cheap on long lists.
//
// Ownership: a node belongs to exactly one list. Concat relinks nodes instead
// of copying them and leaves its arguments empty; treat an argument as
// consumed once passed to Concat.
package list
