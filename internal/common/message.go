package common

import (
	"fmt"
	"strings"
)

// Message is one entry of the market-data stream: a matched fragment
// together with the struck side's best after that fill and the taker
// side's best, read once for the whole batch the fill belongs to. A nil
// best means the corresponding side of the book is empty.
type Message struct {
	Bid        *Price
	Ask        *Price
	TradePrice Price
}

// PricePtr is a convenience for building messages with present bests.
func PricePtr(p Price) *Price {
	return &p
}

func (m Message) String() string {
	var b strings.Builder
	b.WriteString("{bid: ")
	writeOptPrice(&b, m.Bid)
	b.WriteString(", ask: ")
	writeOptPrice(&b, m.Ask)
	fmt.Fprintf(&b, ", trade_price: %d}", m.TradePrice)
	return b.String()
}

func writeOptPrice(b *strings.Builder, p *Price) {
	if p == nil {
		b.WriteString("-")
		return
	}
	fmt.Fprintf(b, "%d", *p)
}
