package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func entryNode(id uint64) *node {
	return &node{entry: &Entry{ID: id, Remaining: 1}}
}

func queueIDs(q *timeQueue) []uint64 {
	var ids []uint64
	for n := q.head; n != nil; n = n.next {
		ids = append(ids, n.entry.ID)
	}
	return ids
}

func TestTimeQueueAppend(t *testing.T) {
	var q timeQueue

	first := entryNode(1)
	q.append(first)
	assert.Equal(t, first, q.head)
	assert.Equal(t, first, q.tail)
	assert.Equal(t, 1, q.length)

	second := entryNode(2)
	q.append(second)
	assert.Equal(t, first, q.head, "head must not move on append")
	assert.Equal(t, second, q.tail)
	assert.Equal(t, []uint64{1, 2}, queueIDs(&q))
}

func TestTimeQueueUnlink(t *testing.T) {
	var q timeQueue
	nodes := make([]*node, 4)
	for i := range nodes {
		nodes[i] = entryNode(uint64(i + 1))
		q.append(nodes[i])
	}

	// Middle
	q.unlink(nodes[1])
	assert.Equal(t, []uint64{1, 3, 4}, queueIDs(&q))

	// Head
	q.unlink(nodes[0])
	assert.Equal(t, []uint64{3, 4}, queueIDs(&q))
	assert.Equal(t, nodes[2], q.head)

	// Tail
	q.unlink(nodes[3])
	assert.Equal(t, []uint64{3}, queueIDs(&q))
	assert.Equal(t, nodes[2], q.tail)

	// Last remaining node
	q.unlink(nodes[2])
	assert.Nil(t, q.head)
	assert.Nil(t, q.tail)
	assert.Equal(t, 0, q.length)
}

func TestHoldingAppendCancelHead(t *testing.T) {
	h := NewHolding()
	assert.Nil(t, h.Head())

	h.Append(&Entry{ID: 7, Remaining: 10})
	h.Append(&Entry{ID: 8, Remaining: 4})
	h.Append(&Entry{ID: 9, Remaining: 2})
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, uint64(7), h.Head().ID)

	assert.NoError(t, h.Cancel(7))
	assert.Equal(t, uint64(8), h.Head().ID)
	assert.Equal(t, 2, h.Len())

	assert.ErrorIs(t, h.Cancel(7), ErrUnknownEntry)
}
