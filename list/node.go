package list

// Node is a doubly linked list element owned by exactly one IndexedList.
//
// Links are maintained by the owning list: if n.next != nil then
// n.next.prev == n, and symmetrically for prev.
type Node[T any] struct {
	value T

	prev *Node[T] // nil at head
	next *Node[T] // nil at tail
}

// Value returns the stored value.
func (n *Node[T]) Value() T { return n.value }

// Next returns the following node, or nil if n is the tail.
func (n *Node[T]) Next() *Node[T] { return n.next }

// Prev returns the preceding node, or nil if n is the head.
func (n *Node[T]) Prev() *Node[T] { return n.prev }
