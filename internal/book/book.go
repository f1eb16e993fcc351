package book

import (
	"github.com/rs/zerolog/log"

	"github.com/madjabal/orderbook/internal/common"
)

// Book is the single-symbol matching core. It owns two resting limit
// ladders, two holding queues for unexecuted market orders, and the
// sequence counter entry ids are allocated from. All methods assume
// calls are serialized by the owner; nothing here blocks or yields.
type Book struct {
	seq      uint64
	bids     *Ladder
	asks     *Ladder
	heldBids *Holding
	heldAsks *Holding
}

func New() *Book {
	return &Book{
		bids:     NewLadder(common.Buy),
		asks:     NewLadder(common.Sell),
		heldBids: NewHolding(),
		heldAsks: NewHolding(),
	}
}

// newEntry allocates the next entry id. Every accepted order consumes
// one, whatever its fate — including the fresh order a crossing limit's
// remainder is resubmitted as.
func (b *Book) newEntry(quantity uint64, price common.Price) *Entry {
	b.seq++
	return &Entry{ID: b.seq, Remaining: quantity, Price: price}
}

// ladders returns the submitting side's own and opposite ladders.
func (b *Book) ladders(side common.Side) (own, opposite *Ladder) {
	if side == common.Buy {
		return b.bids, b.asks
	}
	return b.asks, b.bids
}

func (b *Book) holding(side common.Side) *Holding {
	if side == common.Buy {
		return b.heldBids
	}
	return b.heldAsks
}

// Submit processes one order and returns the market-data messages it
// produced, including any from market orders the resulting book state
// released from the holding queues. An order that fails validation is
// rejected without touching the book.
func (b *Book) Submit(order common.Order) []common.Message {
	if err := order.Validate(); err != nil {
		log.Error().Err(err).Stringer("order", order).Msg("rejecting invalid order")
		return nil
	}

	var msgs []common.Message
	switch order.Kind {
	case common.LimitOrder:
		msgs = b.processLimit(order)
	case common.MarketOrder:
		msgs = b.processMarket(order)
	}
	return append(msgs, b.flush()...)
}

// processLimit routes a limit order: passive limits rest on their own
// side, crossing limits sweep the opposite side. A remainder left after
// draining all crossing liquidity is resubmitted as a brand-new order
// under a fresh entry id; since nothing can refill the opposite side
// mid-submission, the second pass always rests and the loop ends.
// Messages are synthesized only after any remainder has rested, so the
// taker-side best they carry reflects it.
func (b *Book) processLimit(order common.Order) []common.Message {
	var fills []Fill
	quantity := order.Quantity
	for {
		own, opposite := b.ladders(order.Side)
		if !opposite.crosses(order.Price) {
			own.Insert(b.newEntry(quantity, order.Price))
			break
		}
		entry := b.newEntry(quantity, order.Price)
		fills = append(fills, opposite.ExecuteCrossedLimit(entry)...)
		if entry.Remaining == 0 {
			break
		}
		quantity = entry.Remaining
	}
	return b.synthesize(fills, order.Side)
}

// processMarket sweeps the opposite side; whatever cannot fill is held
// until future liquidity arrives.
func (b *Book) processMarket(order common.Order) []common.Message {
	_, opposite := b.ladders(order.Side)
	entry := b.newEntry(order.Quantity, 0)
	fills := opposite.ExecuteMarket(entry)
	if entry.Remaining > 0 {
		b.holding(order.Side).Append(entry)
	}
	return b.synthesize(fills, order.Side)
}

// flush re-examines the holding queues until no held market order can
// make progress. Of the sides whose holding queue and opposite ladder
// are both non-empty, the one with the older head executes first, which
// preserves time priority across market and limit traffic. Each pass
// either fully consumes a holding head or empties an opposite ladder,
// so the loop terminates.
func (b *Book) flush() []common.Message {
	var msgs []common.Message
	for {
		side, ok := b.flushCandidate()
		if !ok {
			return msgs
		}
		held := b.holding(side)
		_, opposite := b.ladders(side)
		entry := held.Head()
		fills := opposite.ExecuteMarket(entry)
		if entry.Remaining == 0 {
			held.Cancel(entry.ID)
		}
		msgs = append(msgs, b.synthesize(fills, side)...)
	}
}

func (b *Book) flushCandidate() (common.Side, bool) {
	bidReady := b.heldBids.Len() > 0 && b.asks.Len() > 0
	askReady := b.heldAsks.Len() > 0 && b.bids.Len() > 0
	switch {
	case bidReady && askReady:
		if b.heldBids.Head().ID < b.heldAsks.Head().ID {
			return common.Buy, true
		}
		return common.Sell, true
	case bidReady:
		return common.Buy, true
	case askReady:
		return common.Sell, true
	}
	return 0, false
}

// synthesize converts one batch of fills into messages. The taker only
// mutates the side it strikes, so the taker's own side carries a single
// best across the batch, read once here; the struck side's best moves
// fill by fill.
func (b *Book) synthesize(fills []Fill, taker common.Side) []common.Message {
	if len(fills) == 0 {
		return nil
	}
	msgs := make([]common.Message, 0, len(fills))
	if taker == common.Buy {
		var bid *common.Price
		if p, ok := b.bids.BestPrice(); ok {
			bid = &p
		}
		for _, f := range fills {
			msgs = append(msgs, common.Message{Bid: bid, Ask: f.RestingBest, TradePrice: f.TradePrice})
		}
	} else {
		var ask *common.Price
		if p, ok := b.asks.BestPrice(); ok {
			ask = &p
		}
		for _, f := range fills {
			msgs = append(msgs, common.Message{Bid: f.RestingBest, Ask: ask, TradePrice: f.TradePrice})
		}
	}
	return msgs
}

// Cancel removes the entry wherever it rests: bid ladder, ask ladder,
// then the two holding queues. An unknown id is logged and swallowed.
func (b *Book) Cancel(id uint64) {
	for _, holder := range []interface{ Cancel(uint64) error }{
		b.bids, b.asks, b.heldBids, b.heldAsks,
	} {
		if holder.Cancel(id) == nil {
			return
		}
	}
	log.Info().Uint64("entryID", id).Msg("cancel for unrecognized entry id")
}

// BestBid returns the highest resting bid price.
func (b *Book) BestBid() (common.Price, bool) { return b.bids.BestPrice() }

// BestAsk returns the lowest resting ask price.
func (b *Book) BestAsk() (common.Price, bool) { return b.asks.BestPrice() }

// BidDepthAt reports total resting bid quantity at a price.
func (b *Book) BidDepthAt(price common.Price) uint64 { return b.bids.DepthAt(price) }

// AskDepthAt reports total resting ask quantity at a price.
func (b *Book) AskDepthAt(price common.Price) uint64 { return b.asks.DepthAt(price) }

// HoldingLen reports how many market orders a side has waiting.
func (b *Book) HoldingLen(side common.Side) int { return b.holding(side).Len() }

// SequenceNumber returns the id most recently allocated.
func (b *Book) SequenceNumber() uint64 { return b.seq }
