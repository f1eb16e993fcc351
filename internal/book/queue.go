package book

import "github.com/madjabal/orderbook/internal/common"

// Entry is a resting order record. Entries live in exactly one ladder
// or holding queue at a time and are mutated only during matching.
// Price is zero on held market entries and never read for them.
type Entry struct {
	ID        uint64
	Remaining uint64
	Price     common.Price
}

// node is the intrusive link wrapping an Entry. level points back at
// the owning price level so a cancel can evict an emptied level; it is
// nil while the node sits in a holding queue.
type node struct {
	entry *Entry
	level *level
	prev  *node
	next  *node
}

// timeQueue is a doubly linked FIFO in arrival order. The head always
// holds the highest time priority. Append and unlink are O(1); unlink
// of a node that is not a member is undefined, so owners guard
// membership through their id index.
type timeQueue struct {
	head   *node
	tail   *node
	length int
}

func (q *timeQueue) append(n *node) {
	if q.length == 0 {
		q.head = n
		q.tail = n
	} else {
		q.tail.next = n
		n.prev = q.tail
		q.tail = n
	}
	q.length++
}

func (q *timeQueue) unlink(n *node) {
	q.length--
	switch {
	case n == q.head && n == q.tail:
		q.head = nil
		q.tail = nil
	case n == q.head:
		q.head = n.next
		n.next.prev = nil
	case n == q.tail:
		q.tail = n.prev
		n.prev.next = nil
	default:
		n.prev.next = n.next
		n.next.prev = n.prev
	}
	n.prev = nil
	n.next = nil
}
