package engine

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/madjabal/orderbook/internal/book"
	"github.com/madjabal/orderbook/internal/common"
)

// Reporter receives the market-data stream produced by matching.
type Reporter interface {
	PublishMessages(msgs []common.Message) error
}

// Engine is the serialized front of the matching core. The book itself
// is single-threaded; the engine's mutex is the outer serialization the
// core requires of its caller. Messages are published after the lock is
// released, so a reporter can never re-enter the book mid-mutation.
type Engine struct {
	mu       sync.Mutex
	book     *book.Book
	reporter Reporter
}

func New() *Engine {
	return &Engine{book: book.New()}
}

// SetReporter wires the market-data consumer. Must be called before
// traffic starts; the engine works without one (messages are dropped).
func (e *Engine) SetReporter(r Reporter) {
	e.reporter = r
}

// PlaceOrder validates and submits an order, returning the entry id it
// was accepted under. Clients cancel by this id. A crossing limit whose
// remainder is resubmitted consumes further ids beyond the returned one.
func (e *Engine) PlaceOrder(order common.Order) (uint64, error) {
	if err := order.Validate(); err != nil {
		return 0, err
	}

	e.mu.Lock()
	entryID := e.book.SequenceNumber() + 1
	msgs := e.book.Submit(order)
	e.mu.Unlock()

	log.Info().
		Stringer("order", order).
		Uint64("entryID", entryID).
		Int("messages", len(msgs)).
		Msg("order placed")

	if e.reporter != nil && len(msgs) > 0 {
		if err := e.reporter.PublishMessages(msgs); err != nil {
			log.Error().Err(err).Msg("failed publishing market data")
		}
	}
	return entryID, nil
}

// CancelOrder removes a resting or held order. Unknown ids are silent
// to the caller; the book logs them.
func (e *Engine) CancelOrder(entryID uint64) error {
	e.mu.Lock()
	e.book.Cancel(entryID)
	e.mu.Unlock()
	return nil
}

// LogBook emits a structured snapshot of the book state.
func (e *Engine) LogBook() {
	e.mu.Lock()
	defer e.mu.Unlock()

	event := log.Info()
	if bid, ok := e.book.BestBid(); ok {
		event = event.Int64("bestBid", int64(bid))
	}
	if ask, ok := e.book.BestAsk(); ok {
		event = event.Int64("bestAsk", int64(ask))
	}
	event.
		Int("heldBids", e.book.HoldingLen(common.Buy)).
		Int("heldAsks", e.book.HoldingLen(common.Sell)).
		Uint64("sequence", e.book.SequenceNumber()).
		Msg("book snapshot")
}

// Book exposes the underlying core for read-only inspection.
func (e *Engine) Book() *book.Book {
	return e.book
}
