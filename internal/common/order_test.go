package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLimitOrder(t *testing.T) {
	order, err := NewLimitOrder(Buy, 10, 100)
	assert.NoError(t, err)
	assert.Equal(t, Order{Side: Buy, Kind: LimitOrder, Quantity: 10, Price: 100}, order)
}

func TestNewMarketOrder(t *testing.T) {
	order, err := NewMarketOrder(Sell, 10)
	assert.NoError(t, err)
	assert.Equal(t, Order{Side: Sell, Kind: MarketOrder, Quantity: 10}, order)
}

func TestOrderValidation(t *testing.T) {
	cases := []struct {
		name  string
		order Order
	}{
		{"zero quantity", Order{Side: Buy, Kind: LimitOrder, Quantity: 0, Price: 100}},
		{"zero limit price", Order{Side: Buy, Kind: LimitOrder, Quantity: 10}},
		{"negative limit price", Order{Side: Sell, Kind: LimitOrder, Quantity: 10, Price: -5}},
		{"priced market order", Order{Side: Sell, Kind: MarketOrder, Quantity: 10, Price: 100}},
		{"unknown side", Order{Side: Side(9), Kind: LimitOrder, Quantity: 10, Price: 100}},
		{"unknown kind", Order{Side: Buy, Kind: OrderKind(9), Quantity: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.order.Validate(), ErrInvalidOrder)
		})
	}
}

func TestMessageString(t *testing.T) {
	assert.Equal(t, "{bid: 99, ask: -, trade_price: 100}",
		Message{Bid: PricePtr(99), TradePrice: 100}.String())
	assert.Equal(t, "{bid: -, ask: 101, trade_price: 101}",
		Message{Ask: PricePtr(101), TradePrice: 101}.String())
}
