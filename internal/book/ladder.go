package book

import (
	"errors"

	"github.com/tidwall/btree"

	"github.com/madjabal/orderbook/internal/common"
)

var ErrUnknownEntry = errors.New("unknown entry id")

// level is the FIFO of resting entries at one price. Levels never
// persist empty: the last cancel at a price evicts it from the tree.
type level struct {
	price common.Price
	queue timeQueue
}

// Fill is one head-of-book consumption step: the price the fragment
// traded at and the struck side's best price after the mutation (nil
// once the side is empty).
type Fill struct {
	TradePrice  common.Price
	RestingBest *common.Price
}

// Ladder is one side of the book: price levels ordered by aggression
// (highest bid first, lowest ask first) with a per-price time-priority
// queue and an entry-id index for constant-time cancels.
type Ladder struct {
	side   common.Side
	levels *btree.BTreeG[*level]
	index  map[uint64]*node
}

func NewLadder(side common.Side) *Ladder {
	var less func(a, b *level) bool
	if side == common.Buy {
		// Sorted greatest first.
		less = func(a, b *level) bool { return a.price > b.price }
	} else {
		// Sorted least first.
		less = func(a, b *level) bool { return a.price < b.price }
	}
	return &Ladder{
		side:   side,
		levels: btree.NewBTreeG(less),
		index:  make(map[uint64]*node),
	}
}

func (l *Ladder) Side() common.Side { return l.side }

// Len reports the number of populated price levels.
func (l *Ladder) Len() int { return l.levels.Len() }

// Size reports the number of resting entries across all levels.
func (l *Ladder) Size() int { return len(l.index) }

// Insert rests an entry at its price, behind anything already queued
// there. A first entry at a price creates the level.
func (l *Ladder) Insert(entry *Entry) {
	n := &node{entry: entry}
	if lvl, ok := l.levels.GetMut(&level{price: entry.Price}); ok {
		n.level = lvl
		lvl.queue.append(n)
	} else {
		lvl := &level{price: entry.Price}
		n.level = lvl
		lvl.queue.append(n)
		l.levels.Set(lvl)
	}
	l.index[entry.ID] = n
}

// Cancel unlinks the entry wherever it sits in its level and evicts
// the level if it empties. Returns ErrUnknownEntry for ids this ladder
// does not hold.
func (l *Ladder) Cancel(id uint64) error {
	n, ok := l.index[id]
	if !ok {
		return ErrUnknownEntry
	}
	lvl := n.level
	lvl.queue.unlink(n)
	delete(l.index, id)
	if lvl.queue.length == 0 {
		l.levels.Delete(lvl)
	}
	return nil
}

// BestPrice returns the most aggressive populated price.
func (l *Ladder) BestPrice() (common.Price, bool) {
	lvl, ok := l.levels.Min()
	if !ok {
		return 0, false
	}
	return lvl.price, true
}

// DepthAt reports the total resting quantity at a price.
func (l *Ladder) DepthAt(price common.Price) uint64 {
	lvl, ok := l.levels.GetMut(&level{price: price})
	if !ok {
		return 0
	}
	var total uint64
	for n := lvl.queue.head; n != nil; n = n.next {
		total += n.entry.Remaining
	}
	return total
}

// crosses reports whether an incoming limit at the given price would
// execute against this ladder's best. False on an empty ladder.
func (l *Ladder) crosses(limit common.Price) bool {
	best, ok := l.BestPrice()
	if !ok {
		return false
	}
	if l.side == common.Sell {
		return best <= limit
	}
	return best >= limit
}

// matchSingle consumes one fragment off the absolute top of this side:
// the head of the best level. Precondition: the ladder is non-empty
// and incoming has remaining quantity.
func (l *Ladder) matchSingle(incoming *Entry) Fill {
	lvl, _ := l.levels.MinMut()
	head := lvl.queue.head.entry
	tradePrice := head.Price
	if head.Remaining <= incoming.Remaining {
		incoming.Remaining -= head.Remaining
		// The head is always indexed, so this cannot fail.
		l.Cancel(head.ID)
	} else {
		head.Remaining -= incoming.Remaining
		incoming.Remaining = 0
	}
	var best *common.Price
	if p, ok := l.BestPrice(); ok {
		best = &p
	}
	return Fill{TradePrice: tradePrice, RestingBest: best}
}

// ExecuteMarket sweeps this side until the incoming entry is filled or
// the side empties. The entry may return with remaining quantity.
func (l *Ladder) ExecuteMarket(entry *Entry) []Fill {
	var fills []Fill
	for entry.Remaining > 0 && l.levels.Len() > 0 {
		fills = append(fills, l.matchSingle(entry))
	}
	return fills
}

// ExecuteCrossedLimit sweeps this side while its best still crosses
// the incoming limit price and the entry has remaining quantity.
func (l *Ladder) ExecuteCrossedLimit(entry *Entry) []Fill {
	var fills []Fill
	for entry.Remaining > 0 && l.crosses(entry.Price) {
		fills = append(fills, l.matchSingle(entry))
	}
	return fills
}
